package db

import (
	"context"

	"despachos/repository"
)

type MemoryDB struct {
	mem *repository.MemoryStore
}

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{mem: repository.NewMemoryStore()}
}

func (m *MemoryDB) Connect() error              { return nil }
func (m *MemoryDB) Disconnect() error           { return nil }
func (m *MemoryDB) GetContext() context.Context { return context.Background() }
func (m *MemoryDB) Store() *repository.Store    { return m.mem.Store() }
