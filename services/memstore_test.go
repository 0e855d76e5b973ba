package services

import (
	"despachos/models"
	"despachos/repository"
)

// memStore wraps the in-memory backend with a switch to fail audit writes.
type memStore struct {
	*repository.MemoryStore
	failAudit error
}

func newMemStore() *memStore {
	return &memStore{MemoryStore: repository.NewMemoryStore()}
}

func (m *memStore) store() *repository.Store {
	s := m.MemoryStore.Store()
	s.Audit = m
	return s
}

func (m *memStore) CreateAuditDocument(doc *models.AuditDocument) error {
	if m.failAudit != nil {
		return m.failAudit
	}
	return m.MemoryStore.CreateAuditDocument(doc)
}

func (m *memStore) order(consecutive string) *models.CargoOrder {
	o, _ := m.GetCargoOrderByConsecutive(consecutive)
	return o
}

func (m *memStore) manifest(number string) *models.Manifest {
	mf, _ := m.GetManifestByNumber(number)
	return mf
}

func (m *memStore) orders() []*models.CargoOrder {
	out, _ := m.ListCargoOrders(nil)
	return out
}

func (m *memStore) manifests() []*models.Manifest {
	out, _ := m.ListManifests(nil)
	return out
}

func (m *memStore) docs() []*models.AuditDocument {
	out, _ := m.ListAuditDocuments("")
	return out
}

func (m *memStore) logs() []*models.LogEntry {
	out, _ := m.ListLogEntries(0)
	return out
}
