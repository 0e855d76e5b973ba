package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"despachos/models"
	"despachos/rndc"
)

// Freight is tonnage times the destination rate, rounded to whole pesos.
func Freight(tonnage, ratePerTonne float64) float64 {
	return math.Round(tonnage * ratePerTonne)
}

// ManifestCandidates lists accepted cargo orders that have no manifest yet.
func (d *Dispatcher) ManifestCandidates() ([]*models.CargoOrder, error) {
	orders, err := d.store.CargoOrders.ListCargoOrders(map[string]interface{}{"estado": models.CargoOrderSuccess})
	if err != nil {
		return nil, fmt.Errorf("list cargo orders: %w", err)
	}
	out := make([]*models.CargoOrder, 0, len(orders))
	for _, o := range orders {
		m, err := d.store.Manifests.GetManifestByNumber(o.Consecutive)
		if err != nil {
			return nil, fmt.Errorf("load manifest %s: %w", o.Consecutive, err)
		}
		if m == nil {
			out = append(out, o)
		}
	}
	return out, nil
}

// CreateManifest registers the manifest of an accepted cargo order. The
// manifest number is the cargo order consecutive. A manifest left in error
// is sent again under the same number.
func (d *Dispatcher) CreateManifest(ctx context.Context, cfg *models.Configuration, consecutive string) (models.SubmissionResult, error) {
	if cfg == nil {
		return models.SubmissionResult{}, ErrConfigMissing
	}
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	defer release()
	return d.createManifest(ctx, cfg, d.newSender(cfg), consecutive, nil)
}

// CreateManifests creates manifests for the given consecutives in order.
func (d *Dispatcher) CreateManifests(ctx context.Context, cfg *models.Configuration, consecutives []string) (*models.BatchResult, error) {
	return runBatch(ctx, d, cfg, "manifest", consecutives, identity, d.createManifest)
}

func (d *Dispatcher) createManifest(ctx context.Context, cfg *models.Configuration, sender Sender, consecutive string, batchID *string) (models.SubmissionResult, error) {
	m, order, err := d.prepareManifest(consecutive)
	if err != nil {
		return models.SubmissionResult{Consecutive: consecutive}, d.reject(models.DocManifest, consecutive, err, batchID)
	}

	vehicle, err := d.store.Vehicles.GetVehicleByPlate(order.Plate)
	if err != nil {
		return models.SubmissionResult{Consecutive: consecutive}, d.reject(models.DocManifest, consecutive, fmt.Errorf("load vehicle: %w", err), batchID)
	}
	if vehicle == nil {
		return models.SubmissionResult{Consecutive: consecutive}, d.reject(models.DocManifest, consecutive, fmt.Errorf("%w: vehicle %q", ErrNotFound, order.Plate), batchID)
	}
	titularType, titularNumber := vehicle.Titular()

	body := rndc.BuildManifestXML(credentials(cfg), rndc.ManifestData{
		Number:                m.Number,
		CargoOrderConsecutive: order.Consecutive,
		IssueDate:             m.IssueDate,
		OriginMunicipality:    m.OriginMunicipality,
		DestMunicipality:      m.DestMunicipality,
		TitularDocType:        titularType,
		TitularDocNumber:      titularNumber,
		Plate:                 m.Plate,
		DriverID:              m.DriverID,
		FreightValue:          m.FreightValue,
	})

	out := d.transmit(ctx, sender, body)
	d.logOutcome(models.DocManifest, m.Number, out)

	status := models.ManifestError
	patch := models.SubmissionPatch{
		LastXML:      &body,
		LastResponse: strPtr(out.raw),
		Message:      strPtr(out.message),
	}
	if out.success {
		status = models.ManifestSuccess
		patch.IngresoID = strPtr(out.trackID)
		if out.secCode != "" {
			patch.SecurityCode = strPtr(out.secCode)
		}
	}
	patch.Status = status

	res := result(m.Number, out)
	auditErr := d.record(models.DocManifest, m.Number, body, status, out, batchID)
	var updateErr error
	if err := d.store.Manifests.UpdateManifest(m.ID, patch); err != nil {
		updateErr = fmt.Errorf("update manifest %s: %w", m.Number, err)
	}
	return res, errors.Join(auditErr, updateErr)
}

// prepareManifest checks the cargo order and returns the manifest record to
// send, creating it when it does not exist yet.
func (d *Dispatcher) prepareManifest(consecutive string) (*models.Manifest, *models.CargoOrder, error) {
	order, err := d.store.CargoOrders.GetCargoOrderByConsecutive(consecutive)
	if err != nil {
		return nil, nil, fmt.Errorf("load cargo order: %w", err)
	}
	if order == nil {
		return nil, nil, fmt.Errorf("%w: cargo order %q", ErrNotFound, consecutive)
	}
	if order.Status != models.CargoOrderSuccess {
		return nil, nil, fmt.Errorf("%w: cargo order %s is %s", ErrInvalidState, consecutive, order.Status)
	}

	existing, err := d.store.Manifests.GetManifestByNumber(order.Consecutive)
	if err != nil {
		return nil, nil, fmt.Errorf("load manifest: %w", err)
	}
	if existing != nil && existing.Status != models.ManifestError && existing.Status != models.ManifestGenerated {
		return nil, nil, fmt.Errorf("%w: manifest %s is %s", ErrInvalidState, existing.Number, existing.Status)
	}

	origin, err := d.siteByCode(order.OriginSiteCode)
	if err != nil {
		return nil, nil, err
	}
	dest, err := d.siteByCode(order.DestSiteCode)
	if err != nil {
		return nil, nil, err
	}

	now := d.now()
	m := &models.Manifest{
		Number:                order.Consecutive,
		CargoOrderConsecutive: order.Consecutive,
		IssueDate:             time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		OriginMunicipality:    origin.MunicipalityCode,
		DestMunicipality:      dest.MunicipalityCode,
		Plate:                 order.Plate,
		DriverID:              order.DriverID,
		FreightValue:          Freight(order.Tonnage, dest.RatePerTonne),
		Status:                models.ManifestGenerated,
		CreatedAt:             now.UTC(),
	}
	if m.Number != m.CargoOrderConsecutive {
		return nil, nil, fmt.Errorf("manifest number %s differs from cargo order %s", m.Number, m.CargoOrderConsecutive)
	}
	if existing != nil {
		// A re-sent manifest keeps its stored issue date and freight.
		return existing, order, nil
	}
	if err := d.store.Manifests.CreateManifest(m); err != nil {
		return nil, nil, fmt.Errorf("save manifest: %w", err)
	}
	return m, order, nil
}
