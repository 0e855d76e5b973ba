package rndc

import "strings"

// QRData feeds the text encoded in the manifest QR.
type QRData struct {
	IngresoID    string
	IssueDate    string
	Plate        string
	Origin       string
	Destination  string
	DriverID     string
	CompanyNIT   string
	FreightValue float64
	SecurityCode string
}

// QRPayload renders the manifest QR text, one "Key:value" per line.
func QRPayload(d QRData) string {
	lines := []string{
		"MEC:" + d.IngresoID,
		"Fecha:" + d.IssueDate,
		"Placa:" + d.Plate,
		"Orig:" + d.Origin,
		"Dest:" + d.Destination,
		"Conductor:" + d.DriverID,
		"Empresa:" + d.CompanyNIT,
		"Valor:" + FormatAmount(d.FreightValue),
		"Seguro:" + d.SecurityCode,
	}
	return strings.Join(lines, "\n")
}
