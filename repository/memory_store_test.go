package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"despachos/models"
)

func TestMemoryStore_SingleActiveConfig(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.SaveConfig(&models.Configuration{Username: "a", Active: true}))
	require.NoError(t, m.SaveConfig(&models.Configuration{Username: "b", Active: true}))

	active, err := m.GetActiveConfig()
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "b", active.Username)

	all, err := m.ListConfigs()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.False(t, all[1].Active)
}

func TestMemoryStore_CatalogueUpsert(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.SaveVehicle(&models.Vehicle{Plate: " git990 ", CargoCapacity: 7000}))
	require.NoError(t, m.SaveVehicle(&models.Vehicle{Plate: "GIT990", CargoCapacity: 8000}))

	v, err := m.GetVehicleByPlate("git990")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 8000, v.CargoCapacity)

	list, err := m.ListVehicles()
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, m.SaveSite(&models.Site{Code: "002", Name: "Planta Buga"}))
	s, err := m.GetSiteByName("  PLANTA BUGA ")
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "002", s.Code)

	missing, err := m.GetPartyByDocument("1")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryStore_SequencesPerTypeAndYear(t *testing.T) {
	m := NewMemoryStore()
	for want := int64(1); want <= 3; want++ {
		n, err := m.NextSequence(models.DocCargoOrder, 2026)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
	n, err := m.NextSequence(models.DocCargoOrder, 2027)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestMemoryStore_CargoOrderPatchAndFilters(t *testing.T) {
	m := NewMemoryStore()
	order := &models.CargoOrder{Consecutive: "202600001", Plate: "GIT990", Status: models.CargoOrderGenerated}
	require.NoError(t, m.CreateCargoOrder(order))
	require.Error(t, m.CreateCargoOrder(&models.CargoOrder{Consecutive: "202600001"}))

	qty := 7000
	msg := "ok"
	require.NoError(t, m.UpdateCargoOrder(order.ID, models.SubmissionPatch{
		Status:         models.CargoOrderSuccess,
		Message:        &msg,
		LoadedQuantity: &qty,
	}))

	got, err := m.GetCargoOrderByConsecutive("202600001")
	require.NoError(t, err)
	assert.Equal(t, models.CargoOrderSuccess, got.Status)
	assert.Equal(t, 7000, got.LoadedQuantity)
	require.NotNil(t, got.UpdatedAt)

	hits, err := m.ListCargoOrders(map[string]interface{}{"estado": models.CargoOrderSuccess})
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	none, err := m.ListCargoOrders(map[string]interface{}{"placa": "XYZ000"})
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = m.ListCargoOrders(map[string]interface{}{"xml_enviado": "x"})
	assert.ErrorContains(t, err, "unsupported filter")
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	m := NewMemoryStore()
	require.NoError(t, m.CreateManifest(&models.Manifest{Number: "202600001", Status: models.ManifestGenerated}))

	got, err := m.GetManifestByNumber("202600001")
	require.NoError(t, err)
	got.Status = models.ManifestSuccess

	again, err := m.GetManifestByNumber("202600001")
	require.NoError(t, err)
	assert.Equal(t, models.ManifestGenerated, again.Status)
}

func TestMemoryStore_LogLimit(t *testing.T) {
	m := NewMemoryStore()
	for _, action := range []string{"a", "b", "c"} {
		require.NoError(t, m.CreateLogEntry(&models.LogEntry{Action: action}))
	}
	latest, err := m.ListLogEntries(2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "c", latest[0].Action)
	assert.Equal(t, "b", latest[1].Action)
}

func TestMemoryStore_SiteNameTiesGoToLowestID(t *testing.T) {
	m := NewMemoryStore()
	for _, code := range []string{"010", "003", "007"} {
		require.NoError(t, m.SaveSite(&models.Site{Code: code, Name: "PLANTA BUGA"}))
	}
	for i := 0; i < 20; i++ {
		s, err := m.GetSiteByName("planta buga")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "010", s.Code)
	}
}
