package db

import (
	"context"

	"despachos/repository"
)

type DBType string

const (
	Postgres DBType = "postgres"
	Mongo    DBType = "mongo"
	Memory   DBType = "memory"
)

// DB is a storage backend able to hand out the repository set.
type DB interface {
	Connect() error
	Disconnect() error
	GetContext() context.Context
	Store() *repository.Store
}
