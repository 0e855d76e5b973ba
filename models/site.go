package models

import "time"

// Site is a sede: a plant (PLANTA, origin) or farm (GRANJA, destination).
type Site struct {
	ID               int64     `json:"id" bson:"_id,omitempty" db:"id"`
	Code             string    `json:"codigo" bson:"codigo" db:"codigo"`
	Name             string    `json:"nombre" bson:"nombre" db:"nombre"`
	MunicipalityCode string    `json:"municipio_codigo" bson:"municipio_codigo" db:"municipio_codigo"`
	RatePerTonne     float64   `json:"tarifa_tonelada" bson:"tarifa_tonelada" db:"tarifa_tonelada"`
	PartyDocType     string    `json:"tercero_tipo_documento" bson:"tercero_tipo_documento" db:"tercero_tipo_documento"`
	PartyDocNumber   string    `json:"tercero_numero_documento" bson:"tercero_numero_documento" db:"tercero_numero_documento"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}
