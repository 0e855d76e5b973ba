package rndc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQRPayload(t *testing.T) {
	got := QRPayload(QRData{
		IngresoID:    "999",
		IssueDate:    "05/03/2026",
		Plate:        "GIT990",
		Origin:       "05001000",
		Destination:  "05088000",
		DriverID:     "1020304050",
		CompanyNIT:   "900123456",
		FreightValue: 525000,
		SecurityCode: "QRX1",
	})
	want := "MEC:999\nFecha:05/03/2026\nPlaca:GIT990\nOrig:05001000\nDest:05088000\n" +
		"Conductor:1020304050\nEmpresa:900123456\nValor:525000\nSeguro:QRX1"
	assert.Equal(t, want, got)
}
