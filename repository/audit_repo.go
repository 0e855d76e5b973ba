package repository

import "despachos/models"

type AuditRepository interface {
	CreateAuditDocument(doc *models.AuditDocument) error
	CreateLogEntry(entry *models.LogEntry) error
	ListAuditDocuments(consecutive string) ([]*models.AuditDocument, error)
	ListLogEntries(limit int) ([]*models.LogEntry, error)
}
