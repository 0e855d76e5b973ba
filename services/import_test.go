package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCargoOrderCSV(t *testing.T) {
	sheet := "\ufeff planta ,GRANJA,Placa,FECHA,CONDUCTOR,TONELADAS,HORA_CARGUE,CANTIDAD\n" +
		"PLANTA BUGA,GRANJA LA ESPERANZA,git990,10/03/2026,94555666,\"7,5\",6:30,7000\n" +
		"\n" +
		"PLANTA BUGA,GRANJA LA ESPERANZA,GIT990,2026-03-11,94555666,7,,\n"

	rows, rowErrs, err := ParseCargoOrderCSV(strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, rows, 2)

	assert.Equal(t, "PLANTA BUGA", rows[0].Plant)
	assert.Equal(t, "GIT990", rows[0].Plate)
	assert.Equal(t, "10/03/2026", rows[0].Date)
	assert.Equal(t, 7.5, rows[0].Tonnage)
	assert.Equal(t, "6:30", rows[0].PickupTime)
	assert.Equal(t, 7000, rows[0].Quantity)

	assert.Equal(t, "11/03/2026", rows[1].Date)
	assert.Equal(t, 7.0, rows[1].Tonnage)
	assert.Empty(t, rows[1].PickupTime)
	assert.Zero(t, rows[1].Quantity)
}

func TestParseCargoOrderCSV_RowErrors(t *testing.T) {
	sheet := "PLANTA,GRANJA,PLACA,FECHA,CONDUCTOR,TONELADAS,HORA_DESCARGUE\n" +
		"PLANTA BUGA,GRANJA LA ESPERANZA,GIT990,10/03/2026,94555666,7,\n" +
		",GRANJA LA ESPERANZA,GIT990,10/03/2026,94555666,7,\n" +
		"PLANTA BUGA,GRANJA LA ESPERANZA,GIT990,10.03.2026,94555666,7,\n" +
		"PLANTA BUGA,GRANJA LA ESPERANZA,GIT990,10/03/2026,94555666,-1,\n" +
		"PLANTA BUGA,GRANJA LA ESPERANZA,GIT990,10/03/2026,94555666,7,25:00\n"

	rows, rowErrs, err := ParseCargoOrderCSV(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rowErrs, 4)

	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Reason, "PLANTA")
	assert.Equal(t, 4, rowErrs[1].Line)
	assert.Contains(t, rowErrs[1].Reason, "invalid date")
	assert.Equal(t, 5, rowErrs[2].Line)
	assert.Contains(t, rowErrs[2].Reason, "TONELADAS")
	assert.Equal(t, 6, rowErrs[3].Line)
	assert.Contains(t, rowErrs[3].Reason, "invalid time")
}

func TestParseCargoOrderCSV_BadSheet(t *testing.T) {
	_, _, err := ParseCargoOrderCSV(strings.NewReader(""))
	require.ErrorIs(t, err, ErrInvalidInput)

	_, _, err = ParseCargoOrderCSV(strings.NewReader("PLANTA,GRANJA,PLACA\n"))
	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "FECHA")

	_, _, err = ParseCargoOrderCSV(strings.NewReader("PLANTA;GRANJA;PLACA;FECHA;CONDUCTOR;TONELADAS\n"))
	require.ErrorIs(t, err, ErrInvalidInput)
}
