package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"despachos/models"
	"despachos/rndc"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	accepted = "<root><ingresoid>%d</ingresoid></root>"
	rejected = "<root><ErrorMSG>Error RNDC: placa no habilitada</ErrorMSG></root>"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

// scriptedSender answers with queued replies, then accepts everything.
type scriptedSender struct {
	mu      sync.Mutex
	bodies  []string
	replies []rndc.TransportResult
	next    int
}

func (s *scriptedSender) Send(_ context.Context, body string) rndc.TransportResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	if len(s.replies) > 0 {
		r := s.replies[0]
		s.replies = s.replies[1:]
		return r
	}
	s.next++
	return rndc.TransportResult{Success: true, RawBody: fmt.Sprintf(accepted, 1000+s.next), Endpoint: "primary"}
}

func (s *scriptedSender) reply(raw string) {
	s.replies = append(s.replies, rndc.TransportResult{Success: true, RawBody: raw, Endpoint: "primary"})
}

func (s *scriptedSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.bodies) == 0 {
		return ""
	}
	return s.bodies[len(s.bodies)-1]
}

type fixture struct {
	mem    *memStore
	sender *scriptedSender
	cfg    *models.Configuration
	sleeps []time.Duration
	d      *Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mem: newMemStore(), sender: &scriptedSender{}}
	f.cfg = &models.Configuration{
		Username:    "usuario",
		Password:    "clave",
		CompanyNIT:  "900123456",
		CompanyName: "TRANSPORTES DEL VALLE SAS",
		PrimaryURL:  "http://primary.invalid",
		Active:      true,
	}
	require.NoError(t, f.mem.SaveConfig(f.cfg))
	require.NoError(t, f.mem.SaveSite(&models.Site{Code: "002", Name: "PLANTA BUGA", MunicipalityCode: "76111000"}))
	require.NoError(t, f.mem.SaveSite(&models.Site{Code: "009", Name: "GRANJA LA ESPERANZA", MunicipalityCode: "76520000", RatePerTonne: 75000}))
	require.NoError(t, f.mem.SaveVehicle(&models.Vehicle{
		Plate: "GIT990", CargoCapacity: 7000,
		OwnerDocType: "C", OwnerDocNumber: "16123456", OwnerName: "JUAN PEREZ",
	}))
	require.NoError(t, f.mem.SaveParty(&models.Party{DocType: "C", DocNumber: "94555666", Name: "PEDRO GOMEZ"}))

	f.d = NewDispatcher(f.mem.store(), nil,
		WithSenderFactory(func(*models.Configuration) Sender { return f.sender }),
		WithClock(func() time.Time { return fixedNow }),
		WithSleep(func(d time.Duration) { f.sleeps = append(f.sleeps, d) }),
	)
	return f
}

func row() models.CargoOrderInput {
	return models.CargoOrderInput{
		Plant:    "planta buga",
		Farm:     "Granja La Esperanza",
		Plate:    "git990",
		Date:     "2026-03-10",
		DriverID: "94555666",
		Tonnage:  7.0,
	}
}

// acceptedOrder submits row() and returns its consecutive.
func (f *fixture) acceptedOrder(t *testing.T) string {
	t.Helper()
	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	return res.Consecutive
}

func TestSubmitCargoOrder_Accepted(t *testing.T) {
	f := newFixture(t)

	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "202600001", res.Consecutive)
	assert.Equal(t, "1001", res.IngresoID)

	order := f.mem.order("202600001")
	require.NotNil(t, order)
	assert.Equal(t, models.CargoOrderSuccess, order.Status)
	assert.Equal(t, "002", order.OriginSiteCode)
	assert.Equal(t, "009", order.DestSiteCode)
	assert.Equal(t, "10/03/2026", order.PickupDate)
	assert.Equal(t, DefaultPickupTime, order.PickupTime)
	assert.Equal(t, DefaultDeliveryTime, order.DeliveryTime)
	require.NotNil(t, order.LastXML)
	assert.Contains(t, *order.LastXML, "<procesoid>3</procesoid>")
	assert.Contains(t, *order.LastXML, "<CONSECUTIVOREMESA>202600001</CONSECUTIVOREMESA>")
	assert.Contains(t, *order.LastXML, "<NUMIDREMITENTE>900123456</NUMIDREMITENTE>")

	require.Len(t, f.mem.docs(), 1)
	assert.Equal(t, models.DocCargoOrder, f.mem.docs()[0].Type)
	assert.Equal(t, models.CargoOrderSuccess, f.mem.docs()[0].Status)
	require.Len(t, f.mem.logs(), 1)
	assert.Equal(t, models.LogInfo, f.mem.logs()[0].Level)
	assert.Nil(t, f.mem.logs()[0].BatchID)
}

func TestSubmitCargoOrder_UsesStoredCapacity(t *testing.T) {
	f := newFixture(t)
	in := row()
	in.Quantity = 9999

	_, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, in)
	require.NoError(t, err)

	body := f.sender.last()
	assert.Contains(t, body, "<CANTIDADCARGADA>7000</CANTIDADCARGADA>")
	assert.NotContains(t, body, "9999")
	assert.Equal(t, 7000, f.mem.order("202600001").LoadedQuantity)
}

func TestSubmitCargoOrder_CapacityReadAtSubmission(t *testing.T) {
	f := newFixture(t)
	f.acceptedOrder(t)

	require.NoError(t, f.mem.SaveVehicle(&models.Vehicle{Plate: "GIT990", CargoCapacity: 8000, OwnerDocType: "C", OwnerDocNumber: "16123456"}))
	f.acceptedOrder(t)

	assert.Contains(t, f.sender.last(), "<CANTIDADCARGADA>8000</CANTIDADCARGADA>")
}

func TestSubmitCargoOrder_SequentialNumbering(t *testing.T) {
	f := newFixture(t)

	first := f.acceptedOrder(t)
	second := f.acceptedOrder(t)

	assert.Equal(t, "202600001", first)
	assert.Equal(t, "202600002", second)
}

func TestSubmitCargoOrder_ResolutionFailuresSendNothing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*models.CargoOrderInput)
		want   error
	}{
		{"unknown vehicle", func(in *models.CargoOrderInput) { in.Plate = "XXX000" }, ErrNotFound},
		{"unknown origin", func(in *models.CargoOrderInput) { in.Plant = "PLANTA CALI" }, ErrNotFound},
		{"unknown destination", func(in *models.CargoOrderInput) { in.Farm = "GRANJA NUEVA" }, ErrNotFound},
		{"unknown driver", func(in *models.CargoOrderInput) { in.DriverID = "1" }, ErrNotFound},
		{"bad date", func(in *models.CargoOrderInput) { in.Date = "March 10" }, ErrInvalidDate},
		{"bad time", func(in *models.CargoOrderInput) { in.PickupTime = "8am" }, ErrInvalidTime},
		{"no tonnage", func(in *models.CargoOrderInput) { in.Tonnage = 0 }, ErrInvalidInput},
		{"no plate", func(in *models.CargoOrderInput) { in.Plate = " " }, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			in := row()
			tc.mutate(&in)

			_, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, in)
			require.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.sender.bodies)
			next, err := f.mem.NextSequence(models.DocCargoOrder, fixedNow.Year())
			require.NoError(t, err)
			assert.Equal(t, int64(1), next)
			assert.Empty(t, f.mem.orders())
			require.Len(t, f.mem.logs(), 1)
			assert.Equal(t, models.LogError, f.mem.logs()[0].Level)
		})
	}
}

func TestSubmitCargoOrder_NoConfiguration(t *testing.T) {
	f := newFixture(t)

	_, err := f.d.SubmitCargoOrder(context.Background(), nil, row())
	require.ErrorIs(t, err, ErrConfigMissing)
	_, err = f.d.SubmitCargoOrders(context.Background(), nil, []models.CargoOrderInput{row()})
	require.ErrorIs(t, err, ErrConfigMissing)
	assert.Empty(t, f.sender.bodies)
}

func TestSubmitCargoOrder_Rejected(t *testing.T) {
	f := newFixture(t)
	f.sender.reply(rejected)

	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Error RNDC: placa no habilitada", res.Message)

	order := f.mem.order(res.Consecutive)
	assert.Equal(t, models.CargoOrderError, order.Status)
	assert.Equal(t, rejected, *order.LastResponse)
	require.Len(t, f.mem.docs(), 1)
	assert.Equal(t, models.CargoOrderError, f.mem.docs()[0].Status)
	assert.Equal(t, rejected, f.mem.docs()[0].Response)
	assert.Equal(t, models.LogError, f.mem.logs()[0].Level)
}

func TestSubmitCargoOrder_AcceptedWithoutIngresoID(t *testing.T) {
	f := newFixture(t)
	f.sender.reply("<root><ingresoid></ingresoid></root>")

	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, models.CargoOrderError, f.mem.order(res.Consecutive).Status)
}

func TestSubmitCargoOrder_TransportFailure(t *testing.T) {
	f := newFixture(t)
	f.sender.replies = append(f.sender.replies, rndc.TransportResult{ErrorMessage: "primary: timeout; backup: timeout"})

	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Message, "unreachable")

	assert.Equal(t, models.CargoOrderError, f.mem.order(res.Consecutive).Status)
	require.Len(t, f.mem.docs(), 1)
	assert.Equal(t, "primary: timeout; backup: timeout", f.mem.docs()[0].Response)
}

func TestSubmitCargoOrder_AuditFailureStillSettlesState(t *testing.T) {
	f := newFixture(t)
	f.mem.failAudit = errors.New("disk full")

	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, res.Success)
	assert.Equal(t, "1001", res.IngresoID)

	order := f.mem.order(res.Consecutive)
	assert.Equal(t, models.CargoOrderSuccess, order.Status)
	require.NotNil(t, order.Message)

	// The accepted order can go on to its manifest.
	f.mem.failAudit = nil
	candidates, err := f.d.ManifestCandidates()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, res.Consecutive, candidates[0].Consecutive)
}

func TestCreateManifest_AuditFailureStillSettlesState(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)
	f.mem.failAudit = errors.New("disk full")

	res, err := f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.ErrorContains(t, err, "disk full")
	assert.True(t, res.Success)

	m := f.mem.manifest(consecutive)
	require.NotNil(t, m)
	assert.Equal(t, models.ManifestSuccess, m.Status)
	require.NotNil(t, m.IngresoID)
	assert.Equal(t, res.IngresoID, *m.IngresoID)
}

func TestFulfillCargoOrder_AuditFailureStillSettlesState(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)
	f.mem.failAudit = errors.New("disk full")

	_, err := f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{Consecutive: consecutive})
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, models.CargoOrderFulfilled, f.mem.order(consecutive).Status)
}

func TestSubmitCargoOrder_FailoverEndToEnd(t *testing.T) {
	const backupBody = "<soap:Envelope><soap:Body><return>&lt;root&gt;&lt;ingresoid&gt;999&lt;/ingresoid&gt;&lt;/root&gt;</return></soap:Body></soap:Envelope>"
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer primary.Close()
	backup := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(backupBody))
	}))
	defer backup.Close()

	f := newFixture(t)
	f.cfg.PrimaryURL = primary.URL
	f.cfg.BackupURL = backup.URL
	f.cfg.TimeoutMS = 2000
	d := NewDispatcher(f.mem.store(), nil, WithClock(func() time.Time { return fixedNow }))

	res, err := d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "999", res.IngresoID)
	assert.Equal(t, backup.URL, res.Endpoint)

	assert.Equal(t, models.CargoOrderSuccess, f.mem.order(res.Consecutive).Status)
	require.Len(t, f.mem.docs(), 1)
	assert.Equal(t, backupBody, f.mem.docs()[0].Response)
	assert.Equal(t, backup.URL, f.mem.docs()[0].Endpoint)
}

func TestResubmitCargoOrder(t *testing.T) {
	f := newFixture(t)
	f.sender.reply(rejected)
	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	require.False(t, res.Success)

	require.NoError(t, f.mem.SaveVehicle(&models.Vehicle{Plate: "GIT990", CargoCapacity: 8000, OwnerDocType: "C", OwnerDocNumber: "16123456"}))
	again, err := f.d.ResubmitCargoOrder(context.Background(), f.cfg, res.Consecutive)
	require.NoError(t, err)
	assert.True(t, again.Success)
	assert.Equal(t, res.Consecutive, again.Consecutive)
	assert.Contains(t, f.sender.last(), "<CANTIDADCARGADA>8000</CANTIDADCARGADA>")

	order := f.mem.order(res.Consecutive)
	assert.Equal(t, models.CargoOrderSuccess, order.Status)
	assert.Equal(t, 8000, order.LoadedQuantity)
	assert.Len(t, f.mem.orders(), 1)

	_, err = f.d.ResubmitCargoOrder(context.Background(), f.cfg, res.Consecutive)
	require.ErrorIs(t, err, ErrInvalidState)
}

// barrierLock holds every caller in Acquire until n of them have arrived,
// then hands out the wrapped lock one at a time.
type barrierLock struct {
	inner   SubmissionLock
	n       int
	mu      sync.Mutex
	arrived int
	all     chan struct{}
}

func newBarrierLock(n int) *barrierLock {
	return &barrierLock{inner: NewLocalLock(), n: n, all: make(chan struct{})}
}

func (b *barrierLock) Acquire(ctx context.Context) (func(), error) {
	b.mu.Lock()
	b.arrived++
	if b.arrived == b.n {
		close(b.all)
	}
	b.mu.Unlock()
	select {
	case <-b.all:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return b.inner.Acquire(ctx)
}

func TestResubmitCargoOrder_ConcurrentCallsSendOnce(t *testing.T) {
	f := newFixture(t)
	f.sender.reply(rejected)
	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	require.False(t, res.Success)

	f.d.lock = newBarrierLock(2)
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.d.ResubmitCargoOrder(context.Background(), f.cfg, res.Consecutive)
		}(i)
	}
	wg.Wait()

	var ok, invalid int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrInvalidState):
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, invalid)
	assert.Len(t, f.sender.bodies, 2)
	assert.Len(t, f.mem.docs(), 2)
	assert.Equal(t, models.CargoOrderSuccess, f.mem.order(res.Consecutive).Status)
}

func TestSubmitCargoOrders_ContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)
	bad := row()
	bad.Plate = "ZZZ111"
	f.d.pause = 2 * time.Second

	batch, err := f.d.SubmitCargoOrders(context.Background(), f.cfg, []models.CargoOrderInput{row(), bad, row()})
	require.NoError(t, err)

	assert.NotEmpty(t, batch.BatchID)
	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 2, batch.Successes)
	assert.Equal(t, 1, batch.Failures)
	require.Len(t, batch.Results, 3)
	assert.True(t, batch.Results[0].Success)
	assert.False(t, batch.Results[1].Success)
	assert.Equal(t, "ZZZ111", batch.Results[1].Consecutive)
	assert.Contains(t, batch.Results[1].Message, "ZZZ111")
	assert.Equal(t, "202600002", batch.Results[2].Consecutive)

	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, f.sleeps)
	assert.Len(t, f.sender.bodies, 2)
	for _, l := range f.mem.logs() {
		require.NotNil(t, l.BatchID)
		assert.Equal(t, batch.BatchID, *l.BatchID)
	}
}

func TestSubmitCargoOrders_SingleRowDoesNotPause(t *testing.T) {
	f := newFixture(t)

	_, err := f.d.SubmitCargoOrders(context.Background(), f.cfg, []models.CargoOrderInput{row()})
	require.NoError(t, err)
	assert.Empty(t, f.sleeps)
}

func TestCreateManifest_Freight(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)
	f.sender.reply("<root><ingresoid>5001</ingresoid><seguridadqr>ABC123</seguridadqr></root>")

	res, err := f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.NoError(t, err)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, consecutive, res.Consecutive)

	body := f.sender.last()
	assert.Contains(t, body, "<procesoid>4</procesoid>")
	assert.Contains(t, body, "<VALORFLETEPACTADOVIAJE>525000</VALORFLETEPACTADOVIAJE>")
	assert.Contains(t, body, "<CODMUNICIPIOORIGENMANIFIESTO>76111000</CODMUNICIPIOORIGENMANIFIESTO>")
	assert.Contains(t, body, "<CODMUNICIPIODESTINOMANIFIESTO>76520000</CODMUNICIPIODESTINOMANIFIESTO>")
	assert.Contains(t, body, "<NUMIDTITULARMANIFIESTO>16123456</NUMIDTITULARMANIFIESTO>")
	assert.Contains(t, body, "<FECHAEXPEDICIONMANIFIESTO>10/03/2026</FECHAEXPEDICIONMANIFIESTO>")

	m := f.mem.manifest(consecutive)
	require.NotNil(t, m)
	assert.Equal(t, consecutive, m.CargoOrderConsecutive)
	assert.Equal(t, 525000.0, m.FreightValue)
	assert.Equal(t, models.ManifestSuccess, m.Status)
	assert.Equal(t, "5001", *m.IngresoID)
	assert.Equal(t, "ABC123", *m.SecurityCode)
}

func TestFreight(t *testing.T) {
	assert.Equal(t, 525000.0, Freight(7.0, 75000))
	assert.Equal(t, 1502.0, Freight(1.5, 1001))
	assert.Equal(t, 0.0, Freight(3, 0))
}

func TestCreateManifest_RequiresAcceptedOrder(t *testing.T) {
	f := newFixture(t)
	f.sender.reply(rejected)
	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)

	_, err = f.d.CreateManifest(context.Background(), f.cfg, res.Consecutive)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = f.d.CreateManifest(context.Background(), f.cfg, "202699999")
	require.ErrorIs(t, err, ErrNotFound)
	assert.Empty(t, f.mem.manifests())
}

func TestCreateManifest_OnlyOnce(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)

	_, err := f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.NoError(t, err)
	_, err = f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCreateManifest_RetryAfterRejection(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)
	f.sender.reply(rejected)

	res, err := f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.NoError(t, err)
	require.False(t, res.Success)
	assert.Equal(t, models.ManifestError, f.mem.manifest(consecutive).Status)

	res, err = f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.ManifestSuccess, f.mem.manifest(consecutive).Status)
	assert.Len(t, f.mem.manifests(), 1)
}

func TestCreateManifests_Batch(t *testing.T) {
	f := newFixture(t)
	a := f.acceptedOrder(t)
	b := f.acceptedOrder(t)

	batch, err := f.d.CreateManifests(context.Background(), f.cfg, []string{a, "202600077", b})
	require.NoError(t, err)
	assert.Equal(t, 2, batch.Successes)
	assert.Equal(t, 1, batch.Failures)
	assert.Equal(t, "202600077", batch.Results[1].Consecutive)
	assert.Len(t, f.sleeps, 2)
}

func TestManifestCandidates(t *testing.T) {
	f := newFixture(t)
	a := f.acceptedOrder(t)
	b := f.acceptedOrder(t)
	f.sender.reply(rejected)
	_, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)
	_, err = f.d.CreateManifest(context.Background(), f.cfg, a)
	require.NoError(t, err)

	candidates, err := f.d.ManifestCandidates()
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, b, candidates[0].Consecutive)
}

func TestFulfillCargoOrder_WrapsExitTime(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)

	res, err := f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{
		Consecutive:         consecutive,
		PickupArrivalDate:   "10/03/2026",
		PickupArrivalTime:   "23:30",
		DeliveryArrivalDate: "2026-03-11",
		DeliveryArrivalTime: "4:15",
	})
	require.NoError(t, err)
	require.True(t, res.Success)

	body := f.sender.last()
	assert.Contains(t, body, "<procesoid>5</procesoid>")
	assert.Contains(t, body, "<HORALLEGADACARGUEREMESA>23:30</HORALLEGADACARGUEREMESA>")
	assert.Contains(t, body, "<FECHASALIDACARGUE>10/03/2026</FECHASALIDACARGUE>")
	assert.Contains(t, body, "<HORASALIDACARGUEREMESA>01:30</HORASALIDACARGUEREMESA>")
	assert.Contains(t, body, "<FECHALLEGADADESCARGUE>11/03/2026</FECHALLEGADADESCARGUE>")
	assert.Contains(t, body, "<HORASALIDADESCARGUECUMPLIDO>06:15</HORASALIDADESCARGUECUMPLIDO>")
	assert.Contains(t, body, "<CANTIDADENTREGADA>7000</CANTIDADENTREGADA>")
	assert.Equal(t, models.CargoOrderFulfilled, f.mem.order(consecutive).Status)
	assert.Equal(t, models.DocCargoOrderFulfillment, f.mem.docs()[len(f.mem.docs())-1].Type)
}

func TestFulfillCargoOrder_DefaultsToAppointment(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)

	_, err := f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{Consecutive: consecutive})
	require.NoError(t, err)

	body := f.sender.last()
	assert.Contains(t, body, "<FECHALLEGADACARGUE>10/03/2026</FECHALLEGADACARGUE>")
	assert.Contains(t, body, "<HORALLEGADACARGUEREMESA>08:00</HORALLEGADACARGUEREMESA>")
	assert.Contains(t, body, "<HORALLEGADADESCARGUECUMPLIDO>12:00</HORALLEGADADESCARGUECUMPLIDO>")
}

func TestFulfillCargoOrder_States(t *testing.T) {
	f := newFixture(t)
	f.sender.reply(rejected)
	res, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
	require.NoError(t, err)

	_, err = f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{Consecutive: res.Consecutive})
	require.ErrorIs(t, err, ErrInvalidState)

	consecutive := f.acceptedOrder(t)
	f.sender.reply(rejected)
	res, err = f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{Consecutive: consecutive})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, models.CargoOrderFulfillmentFailed, f.mem.order(consecutive).Status)

	res, err = f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{Consecutive: consecutive})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, models.CargoOrderFulfilled, f.mem.order(consecutive).Status)
}

func TestFulfillManifest(t *testing.T) {
	f := newFixture(t)
	consecutive := f.acceptedOrder(t)
	_, err := f.d.CreateManifest(context.Background(), f.cfg, consecutive)
	require.NoError(t, err)

	_, err = f.d.FulfillManifest(context.Background(), f.cfg, consecutive)
	require.ErrorIs(t, err, ErrInvalidState)

	_, err = f.d.FulfillCargoOrder(context.Background(), f.cfg, models.CargoOrderFulfillment{Consecutive: consecutive})
	require.NoError(t, err)

	res, err := f.d.FulfillManifest(context.Background(), f.cfg, consecutive)
	require.NoError(t, err)
	require.True(t, res.Success)

	body := f.sender.last()
	assert.Contains(t, body, "<procesoid>6</procesoid>")
	assert.Contains(t, body, "<FECHAENTREGADOCUMENTOS>11/03/2026</FECHAENTREGADOCUMENTOS>")
	assert.Equal(t, models.ManifestFulfilled, f.mem.manifest(consecutive).Status)

	_, err = f.d.FulfillManifest(context.Background(), f.cfg, consecutive)
	require.ErrorIs(t, err, ErrInvalidState)
	_, err = f.d.FulfillManifest(context.Background(), f.cfg, "202600404")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFulfillBatches(t *testing.T) {
	f := newFixture(t)
	a := f.acceptedOrder(t)
	b := f.acceptedOrder(t)
	for _, c := range []string{a, b} {
		_, err := f.d.CreateManifest(context.Background(), f.cfg, c)
		require.NoError(t, err)
	}

	orders, err := f.d.FulfillCargoOrders(context.Background(), f.cfg, []models.CargoOrderFulfillment{{Consecutive: a}, {Consecutive: b}})
	require.NoError(t, err)
	assert.Equal(t, 2, orders.Successes)

	manifests, err := f.d.FulfillManifests(context.Background(), f.cfg, []string{a, b})
	require.NoError(t, err)
	assert.Equal(t, 2, manifests.Successes)
	assert.NotEqual(t, orders.BatchID, manifests.BatchID)
	assert.Len(t, f.sleeps, 2)
}

func TestDispatcher_SerializesSubmissions(t *testing.T) {
	f := newFixture(t)
	var (
		mu       sync.Mutex
		inFlight int
		peak     int
	)
	f.d.newSender = func(*models.Configuration) Sender {
		return senderFunc(func(ctx context.Context, body string) rndc.TransportResult {
			mu.Lock()
			inFlight++
			if inFlight > peak {
				peak = inFlight
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			inFlight--
			mu.Unlock()
			return rndc.TransportResult{Success: true, RawBody: fmt.Sprintf(accepted, 1), Endpoint: "primary"}
		})
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.d.SubmitCargoOrder(context.Background(), f.cfg, row())
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
	seen := map[string]bool{}
	for _, o := range f.mem.orders() {
		assert.False(t, seen[o.Consecutive], "duplicate consecutive %s", o.Consecutive)
		seen[o.Consecutive] = true
	}
	assert.Len(t, seen, 5)
	assert.True(t, strings.HasPrefix(f.mem.orders()[0].Consecutive, "2026"))
}

type senderFunc func(ctx context.Context, body string) rndc.TransportResult

func (f senderFunc) Send(ctx context.Context, body string) rndc.TransportResult { return f(ctx, body) }
