package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"despachos/models"
)

// Columns accepted as list filters.
var (
	cargoOrderFilterCols = map[string]bool{"estado": true, "placa": true, "sede_origen": true, "sede_destino": true, "conductor_id": true, "fecha_cita_cargue": true}
	manifestFilterCols   = map[string]bool{"estado": true, "placa": true, "conductor_id": true, "remesa_consecutivo": true}
)

// whereClause builds a deterministic AND clause from whitelisted filters.
func whereClause(filters map[string]interface{}, allowed map[string]bool) (string, []interface{}, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		if !allowed[k] {
			return "", nil, fmt.Errorf("unsupported filter %q", k)
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := []interface{}{}
	where := []string{}
	for i, k := range keys {
		where = append(where, fmt.Sprintf("%s = $%d", k, i+1))
		args = append(args, filters[k])
	}
	if len(where) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(where, " AND "), args, nil
}

// patchSet renders the SET list for a SubmissionPatch; $1 is the row id.
func patchSet(patch models.SubmissionPatch, extra bool) (string, []interface{}) {
	sets := []string{"estado = $2", "updated_at = $3"}
	args := []interface{}{patch.Status, time.Now().UTC()}
	add := func(col string, v *string) {
		if v == nil {
			return
		}
		args = append(args, *v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)+1))
	}
	add("xml_enviado", patch.LastXML)
	add("respuesta", patch.LastResponse)
	add("mensaje", patch.Message)
	if extra {
		add("ingreso_id", patch.IngresoID)
		add("codigo_seguridad", patch.SecurityCode)
	}
	if patch.LoadedQuantity != nil {
		args = append(args, *patch.LoadedQuantity)
		sets = append(sets, fmt.Sprintf("cantidad_cargada = $%d", len(args)+1))
	}
	return strings.Join(sets, ", "), args
}

// ------------------------ Cargo orders ------------------------

type PostgresCargoOrderRepo struct {
	DB *sql.DB
}

func NewPostgresCargoOrderRepo(db *sql.DB) *PostgresCargoOrderRepo {
	return &PostgresCargoOrderRepo{DB: db}
}

func (r *PostgresCargoOrderRepo) CreateCargoOrder(o *models.CargoOrder) error {
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO remesa(
			consecutivo, sede_origen, sede_destino, placa, cantidad_cargada, conductor_id, toneladas,
			fecha_cita_cargue, hora_cita_cargue, fecha_cita_descargue, hora_cita_descargue,
			estado, xml_enviado, respuesta, mensaje, created_at
		)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
		RETURNING id
	`,
		o.Consecutive, o.OriginSiteCode, o.DestSiteCode, o.Plate, o.LoadedQuantity, o.DriverID, o.Tonnage,
		o.PickupDate, o.PickupTime, o.DeliveryDate, o.DeliveryTime,
		o.Status, o.LastXML, o.LastResponse, o.Message, o.CreatedAt,
	).Scan(&o.ID)
}

func (r *PostgresCargoOrderRepo) UpdateCargoOrder(id int64, patch models.SubmissionPatch) error {
	set, args := patchSet(patch, false)
	res, err := r.DB.Exec(`UPDATE remesa SET `+set+` WHERE id = $1`, append([]interface{}{id}, args...)...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("cargo order %d not found", id)
	}
	return nil
}

const cargoOrderSelectCols = `id, consecutivo, sede_origen, sede_destino, placa, cantidad_cargada, conductor_id, toneladas,
	fecha_cita_cargue, hora_cita_cargue, fecha_cita_descargue, hora_cita_descargue,
	estado, xml_enviado, respuesta, mensaje, created_at, updated_at`

func scanCargoOrder(row interface{ Scan(...any) error }) (*models.CargoOrder, error) {
	o := &models.CargoOrder{}
	err := row.Scan(&o.ID, &o.Consecutive, &o.OriginSiteCode, &o.DestSiteCode, &o.Plate,
		&o.LoadedQuantity, &o.DriverID, &o.Tonnage,
		&o.PickupDate, &o.PickupTime, &o.DeliveryDate, &o.DeliveryTime,
		&o.Status, &o.LastXML, &o.LastResponse, &o.Message, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresCargoOrderRepo) GetCargoOrderByConsecutive(consecutive string) (*models.CargoOrder, error) {
	o, err := scanCargoOrder(r.DB.QueryRow(`SELECT `+cargoOrderSelectCols+` FROM remesa WHERE consecutivo=$1`, consecutive))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return o, err
}

func (r *PostgresCargoOrderRepo) ListCargoOrders(filters map[string]interface{}) ([]*models.CargoOrder, error) {
	where, args, err := whereClause(filters, cargoOrderFilterCols)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.Query(`SELECT `+cargoOrderSelectCols+` FROM remesa`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.CargoOrder
	for rows.Next() {
		o, err := scanCargoOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	return result, rows.Err()
}

// ------------------------ Manifests ------------------------

type PostgresManifestRepo struct {
	DB *sql.DB
}

func NewPostgresManifestRepo(db *sql.DB) *PostgresManifestRepo {
	return &PostgresManifestRepo{DB: db}
}

func (r *PostgresManifestRepo) CreateManifest(m *models.Manifest) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO manifiesto(
			numero, remesa_consecutivo, fecha_expedicion, municipio_origen, municipio_destino,
			placa, conductor_id, valor_flete, estado, ingreso_id, codigo_seguridad,
			xml_enviado, respuesta, mensaje, created_at
		)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING id
	`,
		m.Number, m.CargoOrderConsecutive, m.IssueDate, m.OriginMunicipality, m.DestMunicipality,
		m.Plate, m.DriverID, m.FreightValue, m.Status, m.IngresoID, m.SecurityCode,
		m.LastXML, m.LastResponse, m.Message, m.CreatedAt,
	).Scan(&m.ID)
}

func (r *PostgresManifestRepo) UpdateManifest(id int64, patch models.SubmissionPatch) error {
	set, args := patchSet(patch, true)
	res, err := r.DB.Exec(`UPDATE manifiesto SET `+set+` WHERE id = $1`, append([]interface{}{id}, args...)...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("manifest %d not found", id)
	}
	return nil
}

const manifestSelectCols = `id, numero, remesa_consecutivo, fecha_expedicion, municipio_origen, municipio_destino,
	placa, conductor_id, valor_flete, estado, ingreso_id, codigo_seguridad,
	xml_enviado, respuesta, mensaje, pdf_path, created_at, updated_at, pdf_created_at`

func scanManifest(row interface{ Scan(...any) error }) (*models.Manifest, error) {
	m := &models.Manifest{}
	err := row.Scan(&m.ID, &m.Number, &m.CargoOrderConsecutive, &m.IssueDate, &m.OriginMunicipality, &m.DestMunicipality,
		&m.Plate, &m.DriverID, &m.FreightValue, &m.Status, &m.IngresoID, &m.SecurityCode,
		&m.LastXML, &m.LastResponse, &m.Message, &m.PdfPath, &m.CreatedAt, &m.UpdatedAt, &m.PdfCreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *PostgresManifestRepo) GetManifestByNumber(number string) (*models.Manifest, error) {
	m, err := scanManifest(r.DB.QueryRow(`SELECT `+manifestSelectCols+` FROM manifiesto WHERE numero=$1`, number))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

func (r *PostgresManifestRepo) ListManifests(filters map[string]interface{}) ([]*models.Manifest, error) {
	where, args, err := whereClause(filters, manifestFilterCols)
	if err != nil {
		return nil, err
	}
	rows, err := r.DB.Query(`SELECT `+manifestSelectCols+` FROM manifiesto`+where+` ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Manifest
	for rows.Next() {
		m, err := scanManifest(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	return result, rows.Err()
}

// ------------------------ PDF Helpers ------------------------

func (r *PostgresManifestRepo) UpdatePDFInfo(id int64, path string, createdAt time.Time) error {
	_, err := r.DB.Exec(`
		UPDATE manifiesto
		SET pdf_path = $1, pdf_created_at = $2
		WHERE id = $3
	`, path, createdAt, id)
	return err
}
