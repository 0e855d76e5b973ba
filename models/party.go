package models

import "time"

// Party is a tercero: a person or company identified by document type and
// number. Drivers carry license data.
type Party struct {
	ID               int64      `json:"id" bson:"_id,omitempty" db:"id"`
	DocType          string     `json:"tipo_documento" bson:"tipo_documento" db:"tipo_documento"`
	DocNumber        string     `json:"numero_documento" bson:"numero_documento" db:"numero_documento"`
	Name             string     `json:"nombre" bson:"nombre" db:"nombre"`
	Phone            *string    `json:"telefono,omitempty" bson:"telefono,omitempty" db:"telefono"`
	Address          *string    `json:"direccion,omitempty" bson:"direccion,omitempty" db:"direccion"`
	MunicipalityCode *string    `json:"municipio_codigo,omitempty" bson:"municipio_codigo,omitempty" db:"municipio_codigo"`
	License          *string    `json:"licencia,omitempty" bson:"licencia,omitempty" db:"licencia"`
	LicenseCategory  *string    `json:"categoria_licencia,omitempty" bson:"categoria_licencia,omitempty" db:"categoria_licencia"`
	LicenseExpiry    *time.Time `json:"vencimiento_licencia,omitempty" bson:"vencimiento_licencia,omitempty" db:"vencimiento_licencia"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
}
