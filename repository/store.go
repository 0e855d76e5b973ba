package repository

import (
	"database/sql"

	"go.mongodb.org/mongo-driver/mongo"
)

// Store groups the repositories of one backend.
type Store struct {
	Config      ConfigRepository
	Sites       SiteRepository
	Vehicles    VehicleRepository
	Parties     PartyRepository
	Sequences   SequenceRepository
	CargoOrders CargoOrderRepository
	Manifests   ManifestRepository
	Audit       AuditRepository
}

func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Config:      NewPostgresConfigRepo(db),
		Sites:       NewPostgresSiteRepo(db),
		Vehicles:    NewPostgresVehicleRepo(db),
		Parties:     NewPostgresPartyRepo(db),
		Sequences:   NewPostgresSequenceRepo(db),
		CargoOrders: NewPostgresCargoOrderRepo(db),
		Manifests:   NewPostgresManifestRepo(db),
		Audit:       NewPostgresAuditRepo(db),
	}
}

func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Config:      NewMongoConfigRepo(db),
		Sites:       NewMongoSiteRepo(db),
		Vehicles:    NewMongoVehicleRepo(db),
		Parties:     NewMongoPartyRepo(db),
		Sequences:   NewMongoSequenceRepo(db),
		CargoOrders: NewMongoCargoOrderRepo(db),
		Manifests:   NewMongoManifestRepo(db),
		Audit:       NewMongoAuditRepo(db),
	}
}
