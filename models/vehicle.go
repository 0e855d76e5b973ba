package models

import "time"

// Vehicle is keyed by plate. CargoCapacity (kg) is the loaded quantity
// reported to RNDC for every cargo order the vehicle carries.
type Vehicle struct {
	ID             int64  `json:"id" bson:"_id,omitempty" db:"id"`
	Plate          string `json:"placa" bson:"placa" db:"placa"`
	CargoCapacity  int    `json:"capacidad_carga" bson:"capacidad_carga" db:"capacidad_carga"`
	OwnerDocType   string `json:"propietario_tipo_documento" bson:"propietario_tipo_documento" db:"propietario_tipo_documento"`
	OwnerDocNumber string `json:"propietario_numero_documento" bson:"propietario_numero_documento" db:"propietario_numero_documento"`
	OwnerName      string `json:"propietario_nombre" bson:"propietario_nombre" db:"propietario_nombre"`

	// Holder (tenedor) when different from the owner.
	HolderDocType   *string `json:"tenedor_tipo_documento,omitempty" bson:"tenedor_tipo_documento,omitempty" db:"tenedor_tipo_documento"`
	HolderDocNumber *string `json:"tenedor_numero_documento,omitempty" bson:"tenedor_numero_documento,omitempty" db:"tenedor_numero_documento"`
	HolderName      *string `json:"tenedor_nombre,omitempty" bson:"tenedor_nombre,omitempty" db:"tenedor_nombre"`

	CreatedAt time.Time `json:"created_at" bson:"created_at" db:"created_at"`
}

// Titular returns the identity reported as manifest holder: the tenedor when
// present, the owner otherwise.
func (v *Vehicle) Titular() (docType, docNumber string) {
	if v.HolderDocNumber != nil && *v.HolderDocNumber != "" {
		dt := v.OwnerDocType
		if v.HolderDocType != nil && *v.HolderDocType != "" {
			dt = *v.HolderDocType
		}
		return dt, *v.HolderDocNumber
	}
	return v.OwnerDocType, v.OwnerDocNumber
}
