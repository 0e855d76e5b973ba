package models

import "time"

// Manifest lifecycle states.
const (
	ManifestGenerated         = "generado"
	ManifestSuccess           = "exitoso"
	ManifestError             = "error"
	ManifestFulfilled         = "cumplido"
	ManifestFulfillmentFailed = "error_cumplimiento"
)

// Manifest is a manifiesto de carga. Number always equals the consecutive
// of the cargo order it was created from.
type Manifest struct {
	ID                    int64     `json:"id" bson:"_id,omitempty" db:"id"`
	Number                string    `json:"numero" bson:"numero" db:"numero"`
	CargoOrderConsecutive string    `json:"remesa_consecutivo" bson:"remesa_consecutivo" db:"remesa_consecutivo"`
	IssueDate             time.Time `json:"fecha_expedicion" bson:"fecha_expedicion" db:"fecha_expedicion"`
	OriginMunicipality    string    `json:"municipio_origen" bson:"municipio_origen" db:"municipio_origen"`
	DestMunicipality      string    `json:"municipio_destino" bson:"municipio_destino" db:"municipio_destino"`
	Plate                 string    `json:"placa" bson:"placa" db:"placa"`
	DriverID              string    `json:"conductor_id" bson:"conductor_id" db:"conductor_id"`
	FreightValue          float64   `json:"valor_flete" bson:"valor_flete" db:"valor_flete"`
	Status                string    `json:"estado" bson:"estado" db:"estado"`
	IngresoID             *string   `json:"ingreso_id,omitempty" bson:"ingreso_id,omitempty" db:"ingreso_id"`
	SecurityCode          *string   `json:"codigo_seguridad,omitempty" bson:"codigo_seguridad,omitempty" db:"codigo_seguridad"`
	LastXML               *string   `json:"xml_enviado,omitempty" bson:"xml_enviado,omitempty" db:"xml_enviado"`
	LastResponse          *string   `json:"respuesta,omitempty" bson:"respuesta,omitempty" db:"respuesta"`
	Message               *string   `json:"mensaje,omitempty" bson:"mensaje,omitempty" db:"mensaje"`
	PdfPath               *string   `json:"pdf_path,omitempty" bson:"pdf_path,omitempty" db:"pdf_path"`

	CreatedAt    time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" db:"updated_at"`
	PdfCreatedAt *time.Time `json:"pdf_created_at,omitempty" bson:"pdf_created_at,omitempty" db:"pdf_created_at"`
}
