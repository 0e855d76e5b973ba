package models

type ManifestPDFData struct {
	Config      *Configuration
	Manifest    *Manifest
	CargoOrder  *CargoOrder
	Vehicle     *Vehicle
	Driver      *Party
	Origin      *Site
	Destination *Site
	IssueDate   string
	PaymentDate string
	FreightText string
	FreightWord string
	QRPayload   string
	CopyTitle   string
}
