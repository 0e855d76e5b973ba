package repository

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"despachos/models"
)

// MemoryStore keeps every aggregate in process memory. It backs
// DB_TYPE=memory for local runs and the package tests; nothing survives a
// restart.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    int64
	configs   []*models.Configuration
	sites     map[string]*models.Site
	vehicles  map[string]*models.Vehicle
	parties   map[string]*models.Party
	sequences map[string]int64
	orders    []*models.CargoOrder
	manifests []*models.Manifest
	docs      []*models.AuditDocument
	logs      []*models.LogEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sites:     map[string]*models.Site{},
		vehicles:  map[string]*models.Vehicle{},
		parties:   map[string]*models.Party{},
		sequences: map[string]int64{},
	}
}

// Store exposes m through the repository set.
func (m *MemoryStore) Store() *Store {
	return &Store{
		Config:      m,
		Sites:       m,
		Vehicles:    m,
		Parties:     m,
		Sequences:   m,
		CargoOrders: m,
		Manifests:   m,
		Audit:       m,
	}
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

// ------------------------ Configuration ------------------------

func (m *MemoryStore) SaveConfig(cfg *models.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.Active {
		for _, c := range m.configs {
			c.Active = false
		}
	}
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}
	cfg.ID = m.id()
	m.configs = append(m.configs, clone(cfg))
	return nil
}

func (m *MemoryStore) GetActiveConfig() (*models.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.configs {
		if c.Active {
			return clone(c), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListConfigs() ([]*models.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Configuration, 0, len(m.configs))
	for i := len(m.configs) - 1; i >= 0; i-- {
		out = append(out, clone(m.configs[i]))
	}
	return out, nil
}

// ------------------------ Catalogue ------------------------

func (m *MemoryStore) SaveSite(site *models.Site) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sites[site.Code]; ok {
		site.ID = old.ID
	} else {
		site.ID = m.id()
	}
	m.sites[site.Code] = clone(site)
	return nil
}

func (m *MemoryStore) GetSiteByName(name string) (*models.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToUpper(strings.TrimSpace(name))
	var found *models.Site
	for _, s := range m.sites {
		if strings.ToUpper(strings.TrimSpace(s.Name)) != key {
			continue
		}
		if found == nil || s.ID < found.ID {
			found = s
		}
	}
	return clone(found), nil
}

func (m *MemoryStore) GetSiteByCode(code string) (*models.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.sites[code]), nil
}

func (m *MemoryStore) ListSites() ([]*models.Site, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Site, 0, len(m.sites))
	for _, s := range m.sites {
		out = append(out, clone(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *MemoryStore) SaveVehicle(v *models.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	if old, ok := m.vehicles[v.Plate]; ok {
		v.ID = old.ID
	} else {
		v.ID = m.id()
	}
	m.vehicles[v.Plate] = clone(v)
	return nil
}

func (m *MemoryStore) GetVehicleByPlate(plate string) (*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.vehicles[strings.ToUpper(strings.TrimSpace(plate))]), nil
}

func (m *MemoryStore) ListVehicles() ([]*models.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Vehicle, 0, len(m.vehicles))
	for _, v := range m.vehicles {
		out = append(out, clone(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Plate < out[j].Plate })
	return out, nil
}

func (m *MemoryStore) SaveParty(p *models.Party) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := p.DocType + ":" + p.DocNumber
	if old, ok := m.parties[key]; ok {
		p.ID = old.ID
	} else {
		p.ID = m.id()
	}
	m.parties[key] = clone(p)
	return nil
}

func (m *MemoryStore) GetPartyByDocument(number string) (*models.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	number = strings.TrimSpace(number)
	for _, p := range m.parties {
		if p.DocNumber == number {
			return clone(p), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListParties() ([]*models.Party, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Party, 0, len(m.parties))
	for _, p := range m.parties {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ------------------------ Sequences ------------------------

func (m *MemoryStore) NextSequence(docType string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s:%d", docType, year)
	m.sequences[key]++
	return m.sequences[key], nil
}

// ------------------------ Cargo orders ------------------------

func cargoOrderColumn(o *models.CargoOrder, col string) string {
	switch col {
	case "estado":
		return o.Status
	case "placa":
		return o.Plate
	case "sede_origen":
		return o.OriginSiteCode
	case "sede_destino":
		return o.DestSiteCode
	case "conductor_id":
		return o.DriverID
	case "fecha_cita_cargue":
		return o.PickupDate
	}
	return ""
}

func manifestColumn(mf *models.Manifest, col string) string {
	switch col {
	case "estado":
		return mf.Status
	case "placa":
		return mf.Plate
	case "conductor_id":
		return mf.DriverID
	case "remesa_consecutivo":
		return mf.CargoOrderConsecutive
	}
	return ""
}

func checkFilters(filters map[string]interface{}, allowed map[string]bool) error {
	for k := range filters {
		if !allowed[k] {
			return fmt.Errorf("unsupported filter %q", k)
		}
	}
	return nil
}

func matches(filters map[string]interface{}, column func(string) string) bool {
	for k, v := range filters {
		if column(k) != fmt.Sprint(v) {
			return false
		}
	}
	return true
}

func (m *MemoryStore) CreateCargoOrder(o *models.CargoOrder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.orders {
		if x.Consecutive == o.Consecutive {
			return fmt.Errorf("cargo order %s already exists", o.Consecutive)
		}
	}
	o.ID = m.id()
	m.orders = append(m.orders, clone(o))
	return nil
}

func (m *MemoryStore) UpdateCargoOrder(id int64, patch models.SubmissionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		o.Status = patch.Status
		if patch.LastXML != nil {
			o.LastXML = clone(patch.LastXML)
		}
		if patch.LastResponse != nil {
			o.LastResponse = clone(patch.LastResponse)
		}
		if patch.Message != nil {
			o.Message = clone(patch.Message)
		}
		if patch.LoadedQuantity != nil {
			o.LoadedQuantity = *patch.LoadedQuantity
		}
		now := time.Now().UTC()
		o.UpdatedAt = &now
		return nil
	}
	return fmt.Errorf("cargo order %d not found", id)
}

func (m *MemoryStore) GetCargoOrderByConsecutive(consecutive string) (*models.CargoOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.Consecutive == consecutive {
			return clone(o), nil
		}
	}
	return nil, nil
}

// ListCargoOrders returns newest first.
func (m *MemoryStore) ListCargoOrders(filters map[string]interface{}) ([]*models.CargoOrder, error) {
	if err := checkFilters(filters, cargoOrderFilterCols); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.CargoOrder{}
	for i := len(m.orders) - 1; i >= 0; i-- {
		o := m.orders[i]
		if matches(filters, func(col string) string { return cargoOrderColumn(o, col) }) {
			out = append(out, clone(o))
		}
	}
	return out, nil
}

// ------------------------ Manifests ------------------------

func (m *MemoryStore) CreateManifest(mf *models.Manifest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.manifests {
		if x.Number == mf.Number {
			return fmt.Errorf("manifest %s already exists", mf.Number)
		}
	}
	mf.ID = m.id()
	m.manifests = append(m.manifests, clone(mf))
	return nil
}

func (m *MemoryStore) UpdateManifest(id int64, patch models.SubmissionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.manifests {
		if x.ID != id {
			continue
		}
		x.Status = patch.Status
		if patch.LastXML != nil {
			x.LastXML = clone(patch.LastXML)
		}
		if patch.LastResponse != nil {
			x.LastResponse = clone(patch.LastResponse)
		}
		if patch.Message != nil {
			x.Message = clone(patch.Message)
		}
		if patch.IngresoID != nil {
			x.IngresoID = clone(patch.IngresoID)
		}
		if patch.SecurityCode != nil {
			x.SecurityCode = clone(patch.SecurityCode)
		}
		now := time.Now().UTC()
		x.UpdatedAt = &now
		return nil
	}
	return fmt.Errorf("manifest %d not found", id)
}

func (m *MemoryStore) GetManifestByNumber(number string) (*models.Manifest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.manifests {
		if x.Number == number {
			return clone(x), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ListManifests(filters map[string]interface{}) ([]*models.Manifest, error) {
	if err := checkFilters(filters, manifestFilterCols); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.Manifest{}
	for i := len(m.manifests) - 1; i >= 0; i-- {
		x := m.manifests[i]
		if matches(filters, func(col string) string { return manifestColumn(x, col) }) {
			out = append(out, clone(x))
		}
	}
	return out, nil
}

func (m *MemoryStore) UpdatePDFInfo(id int64, path string, createdAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.manifests {
		if x.ID == id {
			x.PdfPath = &path
			x.PdfCreatedAt = &createdAt
			return nil
		}
	}
	return fmt.Errorf("manifest %d not found", id)
}

// ------------------------ Audit ------------------------

func (m *MemoryStore) CreateAuditDocument(doc *models.AuditDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc.ID = m.id()
	m.docs = append(m.docs, clone(doc))
	return nil
}

func (m *MemoryStore) CreateLogEntry(entry *models.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry.ID = m.id()
	m.logs = append(m.logs, clone(entry))
	return nil
}

// ListAuditDocuments returns the trail for one consecutive, oldest first.
// An empty consecutive returns every document.
func (m *MemoryStore) ListAuditDocuments(consecutive string) ([]*models.AuditDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.AuditDocument{}
	for _, d := range m.docs {
		if consecutive == "" || d.Consecutive == consecutive {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

// ListLogEntries returns the latest entries first; limit <= 0 means all.
func (m *MemoryStore) ListLogEntries(limit int) ([]*models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.LogEntry{}
	for i := len(m.logs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, clone(m.logs[i]))
	}
	return out, nil
}
