package models

import "time"

// Audit document types.
const (
	DocCargoOrder            = "remesa"
	DocManifest              = "manifiesto"
	DocCargoOrderFulfillment = "cumplido_remesa"
	DocManifestFulfillment   = "cumplido_manifiesto"
)

// AuditDocument is the durable evidence of one RNDC submission attempt:
// the exact XML sent and the raw body received.
type AuditDocument struct {
	ID          int64     `json:"id" bson:"_id,omitempty" db:"id"`
	Type        string    `json:"tipo" bson:"tipo" db:"tipo"`
	Consecutive string    `json:"consecutivo" bson:"consecutivo" db:"consecutivo"`
	RequestXML  string    `json:"xml_enviado" bson:"xml_enviado" db:"xml_enviado"`
	Response    string    `json:"respuesta" bson:"respuesta" db:"respuesta"`
	Status      string    `json:"estado" bson:"estado" db:"estado"`
	Message     string    `json:"mensaje" bson:"mensaje" db:"mensaje"`
	Endpoint    string    `json:"endpoint" bson:"endpoint" db:"endpoint"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// LogEntry levels.
const (
	LogInfo  = "info"
	LogError = "error"
)

type LogEntry struct {
	ID        int64     `json:"id" bson:"_id,omitempty" db:"id"`
	Action    string    `json:"accion" bson:"accion" db:"accion"`
	Detail    string    `json:"detalle" bson:"detalle" db:"detalle"`
	Level     string    `json:"nivel" bson:"nivel" db:"nivel"`
	BatchID   *string   `json:"batch_id,omitempty" bson:"batch_id,omitempty" db:"batch_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
