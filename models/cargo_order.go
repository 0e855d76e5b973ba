package models

import "time"

// CargoOrder lifecycle states.
const (
	CargoOrderGenerated         = "generada"
	CargoOrderSent              = "enviada"
	CargoOrderSuccess           = "exitoso"
	CargoOrderError             = "error"
	CargoOrderFulfilled         = "cumplida"
	CargoOrderFulfillmentFailed = "error_cumplimiento"
)

// CargoOrder is a remesa: one shipment assignment registered with RNDC.
type CargoOrder struct {
	ID             int64   `json:"id" bson:"_id,omitempty" db:"id"`
	Consecutive    string  `json:"consecutivo" bson:"consecutivo" db:"consecutivo"`
	OriginSiteCode string  `json:"sede_origen" bson:"sede_origen" db:"sede_origen"`
	DestSiteCode   string  `json:"sede_destino" bson:"sede_destino" db:"sede_destino"`
	Plate          string  `json:"placa" bson:"placa" db:"placa"`
	LoadedQuantity int     `json:"cantidad_cargada" bson:"cantidad_cargada" db:"cantidad_cargada"`
	DriverID       string  `json:"conductor_id" bson:"conductor_id" db:"conductor_id"`
	Tonnage        float64 `json:"toneladas" bson:"toneladas" db:"toneladas"`
	PickupDate     string  `json:"fecha_cita_cargue" bson:"fecha_cita_cargue" db:"fecha_cita_cargue"`
	PickupTime     string  `json:"hora_cita_cargue" bson:"hora_cita_cargue" db:"hora_cita_cargue"`
	DeliveryDate   string  `json:"fecha_cita_descargue" bson:"fecha_cita_descargue" db:"fecha_cita_descargue"`
	DeliveryTime   string  `json:"hora_cita_descargue" bson:"hora_cita_descargue" db:"hora_cita_descargue"`
	Status         string  `json:"estado" bson:"estado" db:"estado"`
	LastXML        *string `json:"xml_enviado,omitempty" bson:"xml_enviado,omitempty" db:"xml_enviado"`
	LastResponse   *string `json:"respuesta,omitempty" bson:"respuesta,omitempty" db:"respuesta"`
	Message        *string `json:"mensaje,omitempty" bson:"mensaje,omitempty" db:"mensaje"`

	CreatedAt time.Time  `json:"created_at" bson:"created_at" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty" db:"updated_at"`
}

// CargoOrderInput is one batch-import row. Origin and destination are site
// names (spreadsheet columns PLANTA and GRANJA). Quantity is informative
// only; the vehicle's stored capacity is what gets reported.
type CargoOrderInput struct {
	Plant        string  `json:"planta"`
	Farm         string  `json:"granja"`
	Plate        string  `json:"placa"`
	Date         string  `json:"fecha"`
	PickupTime   string  `json:"hora_cargue,omitempty"`
	DeliveryTime string  `json:"hora_descargue,omitempty"`
	DriverID     string  `json:"conductor"`
	Tonnage      float64 `json:"toneladas"`
	Quantity     int     `json:"cantidad,omitempty"`
}

// CargoOrderFulfillment carries the arrival data for both legs. Empty
// fields fall back to the cargo order's appointment.
type CargoOrderFulfillment struct {
	Consecutive         string `json:"consecutivo"`
	PickupArrivalDate   string `json:"fecha_llegada_cargue,omitempty"`
	PickupArrivalTime   string `json:"hora_llegada_cargue,omitempty"`
	DeliveryArrivalDate string `json:"fecha_llegada_descargue,omitempty"`
	DeliveryArrivalTime string `json:"hora_llegada_descargue,omitempty"`
}
