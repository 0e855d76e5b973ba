package repository

import "database/sql"

type PostgresSequenceRepo struct {
	DB *sql.DB
}

func NewPostgresSequenceRepo(db *sql.DB) *PostgresSequenceRepo {
	return &PostgresSequenceRepo{DB: db}
}

// NextSequence relies on the row lock taken by ON CONFLICT DO UPDATE, so
// concurrent callers never receive the same value.
func (r *PostgresSequenceRepo) NextSequence(docType string, year int) (int64, error) {
	var next int64
	err := r.DB.QueryRow(`
		INSERT INTO consecutivo(tipo, anio, ultimo)
		VALUES($1, $2, 1)
		ON CONFLICT(tipo, anio) DO UPDATE SET ultimo = consecutivo.ultimo + 1
		RETURNING ultimo
	`, docType, year).Scan(&next)
	return next, err
}
