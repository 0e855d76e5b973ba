package utils

import (
	"html/template"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"despachos/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderManifestHTML(t *testing.T) {
	tmpl, err := template.ParseFiles(filepath.Join("..", "templates", manifestTemplate))
	require.NoError(t, err)

	ingreso := "5001"
	security := "ABC123"
	data := models.ManifestPDFData{
		Config: &models.Configuration{CompanyName: "TRANSPORTES DEL VALLE SAS", CompanyNIT: "900123456"},
		Manifest: &models.Manifest{
			Number:                "202600001",
			CargoOrderConsecutive: "202600001",
			IssueDate:             time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			OriginMunicipality:    "76111000",
			DestMunicipality:      "76520000",
			Plate:                 "GIT990",
			DriverID:              "94555666",
			FreightValue:          525000,
			Status:                models.ManifestSuccess,
			IngresoID:             &ingreso,
			SecurityCode:          &security,
		},
		Vehicle: &models.Vehicle{Plate: "GIT990", CargoCapacity: 7000, OwnerName: "JUAN PEREZ", OwnerDocType: "C", OwnerDocNumber: "16123456"},
	}

	html, err := RenderManifestHTML(tmpl, data)
	require.NoError(t, err)

	assert.Equal(t, 3, strings.Count(html, "class='manifest-copy'"))
	for _, title := range copyTitles {
		assert.Contains(t, html, title)
	}
	assert.Contains(t, html, "$525.000")
	assert.Contains(t, html, "QUINIENTOS VEINTICINCO MIL PESOS M/CTE")
	assert.Contains(t, html, "09/04/2026")
	assert.Contains(t, html, "MEC:5001")
	assert.Contains(t, html, "Seguro:ABC123")
	assert.Contains(t, html, "JUAN PEREZ")
	// driver and sites are missing: the template falls back to the manifest
	assert.Contains(t, html, "C 94555666")
	assert.Contains(t, html, "76520000")
}
