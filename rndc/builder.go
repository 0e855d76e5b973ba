package rndc

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// Process ids understood by AtenderMensajeRNDC.
const (
	ProcessCargoOrder            = 3
	ProcessManifest              = 4
	ProcessCargoOrderFulfillment = 5
	ProcessManifestFulfillment   = 6
)

// Operational constants fixed for this deployment (bulk animal feed hauled
// from plants to farms).
const (
	TransportOperation = "G" // general cargo
	CargoNature        = "1" // normal cargo
	CapacityUnit       = "1" // kilograms
	PackagingCode      = "0" // bulk
	CommodityCode      = "009880"
	CommodityDesc      = "ALIMENTO PARA ANIMALES"
	PolicyOwner        = "N" // no policy
	AgreedHours        = "2"
	AgreedMinutes      = "0"
	DriverDocType      = "C"
	FulfillmentType    = "C" // normal fulfillment
	PaymentTermDays    = 30
	LegDurationHours   = 2
	submitRequestType  = "1"
	soapEnvelopeOpen   = `<?xml version="1.0" encoding="UTF-8"?>` +
		`<soapenv:Envelope xmlns:soapenv="http://schemas.xmlsoap.org/soap/envelope/" xmlns:ns1="urn:BPMServicesIntf-IBPMServices">` +
		`<soapenv:Header/><soapenv:Body><ns1:AtenderMensajeRNDC><Request>`
	soapEnvelopeClose = `</Request></ns1:AtenderMensajeRNDC></soapenv:Body></soapenv:Envelope>`
)

// Credentials identify the transport company against RNDC.
type Credentials struct {
	Username   string
	Password   string
	CompanyNIT string
}

type CargoOrderData struct {
	Consecutive       string
	SenderDocType     string
	SenderDocNumber   string
	SenderSiteCode    string
	ReceiverDocType   string
	ReceiverDocNumber string
	ReceiverSiteCode  string
	LoadedQuantity    int
	PickupDate        string // DD/MM/YYYY
	PickupTime        string // HH:MM
	DeliveryDate      string // DD/MM/YYYY
	DeliveryTime      string // HH:MM
}

type ManifestData struct {
	Number                string
	CargoOrderConsecutive string
	IssueDate             time.Time
	OriginMunicipality    string
	DestMunicipality      string
	TitularDocType        string
	TitularDocNumber      string
	Plate                 string
	DriverID              string
	FreightValue          float64
}

type CargoOrderFulfillmentData struct {
	Consecutive         string
	LoadedQuantity      int
	DeliveredQuantity   int
	PickupArrivalDate   string // DD/MM/YYYY
	PickupArrivalTime   string // HH:MM
	DeliveryArrivalDate string // DD/MM/YYYY
	DeliveryArrivalTime string // HH:MM
}

type ManifestFulfillmentData struct {
	Number    string
	IssueDate time.Time
}

type field struct {
	tag   string
	value string
}

type document struct {
	b strings.Builder
}

func (d *document) open(tag string)  { d.b.WriteString("<" + tag + ">") }
func (d *document) close(tag string) { d.b.WriteString("</" + tag + ">") }

func (d *document) fields(fs ...field) {
	for _, f := range fs {
		d.open(f.tag)
		_ = xml.EscapeText(&d.b, []byte(f.value))
		d.close(f.tag)
	}
}

// envelope renders the SOAP wrapper and the acceso/solicitud header, then
// lets body write the variables section.
func envelope(creds Credentials, process int, body func(d *document)) string {
	d := &document{}
	d.b.WriteString(soapEnvelopeOpen)
	d.open("root")
	d.open("acceso")
	d.fields(
		field{"username", creds.Username},
		field{"password", creds.Password},
	)
	d.close("acceso")
	d.open("solicitud")
	d.fields(
		field{"tipo", submitRequestType},
		field{"procesoid", strconv.Itoa(process)},
	)
	d.close("solicitud")
	d.open("variables")
	d.fields(field{"NUMNITEMPRESATRANSPORTE", creds.CompanyNIT})
	body(d)
	d.close("variables")
	d.close("root")
	d.b.WriteString(soapEnvelopeClose)
	return d.b.String()
}

// FormatAmount renders an amount as plain decimal text.
func FormatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildCargoOrderXML renders the create-remesa message (procesoid 3).
func BuildCargoOrderXML(creds Credentials, data CargoOrderData) string {
	return envelope(creds, ProcessCargoOrder, func(d *document) {
		d.fields(
			field{"CONSECUTIVOREMESA", data.Consecutive},
			field{"CODOPERACIONTRANSPORTE", TransportOperation},
			field{"CODNATURALEZACARGA", CargoNature},
			field{"CANTIDADCARGADA", strconv.Itoa(data.LoadedQuantity)},
			field{"UNIDADMEDIDACAPACIDAD", CapacityUnit},
			field{"CODTIPOEMPAQUE", PackagingCode},
			field{"MERCANCIAREMESA", CommodityCode},
			field{"DESCRIPCIONCORTAPRODUCTO", CommodityDesc},
			field{"CODTIPOIDREMITENTE", data.SenderDocType},
			field{"NUMIDREMITENTE", data.SenderDocNumber},
			field{"CODSEDEREMITENTE", data.SenderSiteCode},
			field{"CODTIPOIDDESTINATARIO", data.ReceiverDocType},
			field{"NUMIDDESTINATARIO", data.ReceiverDocNumber},
			field{"CODSEDEDESTINATARIO", data.ReceiverSiteCode},
			field{"DUENOPOLIZA", PolicyOwner},
			field{"HORASPACTOCARGA", AgreedHours},
			field{"MINUTOSPACTOCARGA", AgreedMinutes},
			field{"HORASPACTODESCARGUE", AgreedHours},
			field{"MINUTOSPACTODESCARGUE", AgreedMinutes},
			field{"FECHACITAPACTADACARGUE", data.PickupDate},
			field{"HORACITAPACTADACARGUE", data.PickupTime},
			field{"FECHACITAPACTADADESCARGUE", data.DeliveryDate},
			field{"HORACITAPACTADADESCARGUEREMESA", data.DeliveryTime},
		)
	})
}

// BuildManifestXML renders the create-manifiesto message (procesoid 4). The
// balance is due PaymentTermDays after issue.
func BuildManifestXML(creds Credentials, data ManifestData) string {
	return envelope(creds, ProcessManifest, func(d *document) {
		d.fields(
			field{"NUMMANIFIESTOCARGA", data.Number},
			field{"CODOPERACIONTRANSPORTE", TransportOperation},
			field{"FECHAEXPEDICIONMANIFIESTO", FormatDate(data.IssueDate)},
			field{"CODMUNICIPIOORIGENMANIFIESTO", data.OriginMunicipality},
			field{"CODMUNICIPIODESTINOMANIFIESTO", data.DestMunicipality},
			field{"CODIDTITULARMANIFIESTO", data.TitularDocType},
			field{"NUMIDTITULARMANIFIESTO", data.TitularDocNumber},
			field{"NUMPLACA", data.Plate},
			field{"CODIDCONDUCTOR", DriverDocType},
			field{"NUMIDCONDUCTOR", data.DriverID},
			field{"VALORFLETEPACTADOVIAJE", FormatAmount(data.FreightValue)},
			field{"RETENCIONICAMANIFIESTOCARGA", "0"},
			field{"VALORANTICIPOMANIFIESTO", "0"},
			field{"CODMUNICIPIOPAGOSALDO", data.OriginMunicipality},
			field{"FECHAPAGOSALDOMANIFIESTO", FormatDate(data.IssueDate.AddDate(0, 0, PaymentTermDays))},
			field{"CODRESPONSABLEPAGOCARGUE", "E"},
			field{"CODRESPONSABLEPAGODESCARGUE", "E"},
		)
		d.open("REMESASMAN")
		d.open("REMESA")
		d.fields(field{"CONSECUTIVOREMESA", data.CargoOrderConsecutive})
		d.close("REMESA")
		d.close("REMESASMAN")
	})
}

// BuildCargoOrderFulfillmentXML renders the cumplido-remesa message
// (procesoid 5). Entry equals arrival and exit is arrival plus
// LegDurationHours on the same date, wrapping past midnight.
func BuildCargoOrderFulfillmentXML(creds Credentials, data CargoOrderFulfillmentData) (string, error) {
	pickupExit, err := AddHoursWrapped(data.PickupArrivalTime, LegDurationHours)
	if err != nil {
		return "", err
	}
	deliveryExit, err := AddHoursWrapped(data.DeliveryArrivalTime, LegDurationHours)
	if err != nil {
		return "", err
	}
	return envelope(creds, ProcessCargoOrderFulfillment, func(d *document) {
		d.fields(
			field{"CONSECUTIVOREMESA", data.Consecutive},
			field{"TIPOCUMPLIDOREMESA", FulfillmentType},
			field{"CANTIDADCARGADA", strconv.Itoa(data.LoadedQuantity)},
			field{"CANTIDADENTREGADA", strconv.Itoa(data.DeliveredQuantity)},
			field{"UNIDADMEDIDACAPACIDAD", CapacityUnit},
			field{"FECHALLEGADACARGUE", data.PickupArrivalDate},
			field{"HORALLEGADACARGUEREMESA", data.PickupArrivalTime},
			field{"FECHAENTRADACARGUE", data.PickupArrivalDate},
			field{"HORAENTRADACARGUEREMESA", data.PickupArrivalTime},
			field{"FECHASALIDACARGUE", data.PickupArrivalDate},
			field{"HORASALIDACARGUEREMESA", pickupExit},
			field{"FECHALLEGADADESCARGUE", data.DeliveryArrivalDate},
			field{"HORALLEGADADESCARGUECUMPLIDO", data.DeliveryArrivalTime},
			field{"FECHAENTRADADESCARGUE", data.DeliveryArrivalDate},
			field{"HORAENTRADADESCARGUECUMPLIDO", data.DeliveryArrivalTime},
			field{"FECHASALIDADESCARGUE", data.DeliveryArrivalDate},
			field{"HORASALIDADESCARGUECUMPLIDO", deliveryExit},
		)
	}), nil
}

// BuildManifestFulfillmentXML renders the cumplido-manifiesto message
// (procesoid 6). Documents are reported delivered the day after issue.
func BuildManifestFulfillmentXML(creds Credentials, data ManifestFulfillmentData) string {
	return envelope(creds, ProcessManifestFulfillment, func(d *document) {
		d.fields(
			field{"NUMMANIFIESTOCARGA", data.Number},
			field{"TIPOCUMPLIDOMANIFIESTO", FulfillmentType},
			field{"FECHAENTREGADOCUMENTOS", FormatDate(data.IssueDate.AddDate(0, 0, 1))},
			field{"VALORADICIONALHORASCARGUE", "0"},
			field{"VALORADICIONALHORASDESCARGUE", "0"},
			field{"VALORADICIONALFLETE", "0"},
			field{"VALORDESCUENTOFLETE", "0"},
			field{"VALORSOBREANTICIPO", "0"},
		)
	})
}
