package repository

import (
	"database/sql"
	"time"

	"despachos/models"
)

type PostgresConfigRepo struct {
	DB *sql.DB
}

func NewPostgresConfigRepo(db *sql.DB) *PostgresConfigRepo {
	return &PostgresConfigRepo{DB: db}
}

// SaveConfig inserts or updates an RNDC configuration. Activating a record
// deactivates every other one in the same transaction.
func (r *PostgresConfigRepo) SaveConfig(cfg *models.Configuration) error {
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = time.Now().UTC()
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if cfg.Active {
		if _, err := tx.Exec(`UPDATE configuracion_rndc SET activo = FALSE WHERE activo AND id <> $1`, cfg.ID); err != nil {
			return err
		}
	}

	// If ID is passed → UPDATE, else INSERT
	if cfg.ID > 0 {
		_, err = tx.Exec(`
			UPDATE configuracion_rndc
			SET username=$1, password=$2, company_nit=$3, company_name=$4,
				primary_url=$5, backup_url=$6, timeout_ms=$7, activo=$8
			WHERE id=$9
		`, cfg.Username, cfg.Password, cfg.CompanyNIT, cfg.CompanyName,
			cfg.PrimaryURL, cfg.BackupURL, cfg.TimeoutMS, cfg.Active, cfg.ID)
	} else {
		err = tx.QueryRow(`
			INSERT INTO configuracion_rndc
			(username, password, company_nit, company_name, primary_url, backup_url, timeout_ms, activo, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
			RETURNING id
		`, cfg.Username, cfg.Password, cfg.CompanyNIT, cfg.CompanyName,
			cfg.PrimaryURL, cfg.BackupURL, cfg.TimeoutMS, cfg.Active, cfg.CreatedAt).Scan(&cfg.ID)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

const configSelectCols = `id, username, password, company_nit, company_name, primary_url, backup_url, timeout_ms, activo, created_at`

func scanConfig(row interface{ Scan(...any) error }) (*models.Configuration, error) {
	c := &models.Configuration{}
	err := row.Scan(&c.ID, &c.Username, &c.Password, &c.CompanyNIT, &c.CompanyName,
		&c.PrimaryURL, &c.BackupURL, &c.TimeoutMS, &c.Active, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetActiveConfig returns nil, nil when no record is active.
func (r *PostgresConfigRepo) GetActiveConfig() (*models.Configuration, error) {
	c, err := scanConfig(r.DB.QueryRow(`
		SELECT ` + configSelectCols + `
		FROM configuracion_rndc
		WHERE activo
		ORDER BY id DESC LIMIT 1
	`))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return c, err
}

func (r *PostgresConfigRepo) ListConfigs() ([]*models.Configuration, error) {
	rows, err := r.DB.Query(`SELECT ` + configSelectCols + ` FROM configuracion_rndc ORDER BY id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.Configuration
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}
