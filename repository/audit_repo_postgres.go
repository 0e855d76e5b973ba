package repository

import (
	"database/sql"
	"time"

	"despachos/models"
)

type PostgresAuditRepo struct {
	DB *sql.DB
}

func NewPostgresAuditRepo(db *sql.DB) *PostgresAuditRepo {
	return &PostgresAuditRepo{DB: db}
}

func (r *PostgresAuditRepo) CreateAuditDocument(d *models.AuditDocument) error {
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO documento_rndc(tipo, consecutivo, xml_enviado, respuesta, estado, mensaje, endpoint, created_at)
		VALUES($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id
	`, d.Type, d.Consecutive, d.RequestXML, d.Response, d.Status, d.Message, d.Endpoint, d.CreatedAt).Scan(&d.ID)
}

func (r *PostgresAuditRepo) CreateLogEntry(e *models.LogEntry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return r.DB.QueryRow(`
		INSERT INTO log_rndc(accion, detalle, nivel, batch_id, created_at)
		VALUES($1,$2,$3,$4,$5)
		RETURNING id
	`, e.Action, e.Detail, e.Level, e.BatchID, e.CreatedAt).Scan(&e.ID)
}

// ListAuditDocuments returns the trail for one consecutive, oldest first.
func (r *PostgresAuditRepo) ListAuditDocuments(consecutive string) ([]*models.AuditDocument, error) {
	rows, err := r.DB.Query(`
		SELECT id, tipo, consecutivo, xml_enviado, respuesta, estado, mensaje, endpoint, created_at
		FROM documento_rndc
		WHERE consecutivo = $1
		ORDER BY id
	`, consecutive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.AuditDocument
	for rows.Next() {
		d := &models.AuditDocument{}
		if err := rows.Scan(&d.ID, &d.Type, &d.Consecutive, &d.RequestXML, &d.Response,
			&d.Status, &d.Message, &d.Endpoint, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

// ListLogEntries returns the newest entries first.
func (r *PostgresAuditRepo) ListLogEntries(limit int) ([]*models.LogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(`
		SELECT id, accion, detalle, nivel, batch_id, created_at
		FROM log_rndc
		ORDER BY id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.LogEntry
	for rows.Next() {
		e := &models.LogEntry{}
		if err := rows.Scan(&e.ID, &e.Action, &e.Detail, &e.Level, &e.BatchID, &e.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
