package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"despachos/models"
	"despachos/rndc"
)

// FulfillCargoOrder reports the delivery of an accepted cargo order. Missing
// arrival data falls back to the appointment stored on the order.
func (d *Dispatcher) FulfillCargoOrder(ctx context.Context, cfg *models.Configuration, f models.CargoOrderFulfillment) (models.SubmissionResult, error) {
	if cfg == nil {
		return models.SubmissionResult{}, ErrConfigMissing
	}
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	defer release()
	return d.fulfillCargoOrder(ctx, cfg, d.newSender(cfg), f, nil)
}

func (d *Dispatcher) FulfillCargoOrders(ctx context.Context, cfg *models.Configuration, items []models.CargoOrderFulfillment) (*models.BatchResult, error) {
	key := func(f models.CargoOrderFulfillment) string { return f.Consecutive }
	return runBatch(ctx, d, cfg, "cargo order fulfillment", items, key, d.fulfillCargoOrder)
}

func (d *Dispatcher) fulfillCargoOrder(ctx context.Context, cfg *models.Configuration, sender Sender, f models.CargoOrderFulfillment, batchID *string) (models.SubmissionResult, error) {
	action := models.DocCargoOrderFulfillment
	order, err := d.store.CargoOrders.GetCargoOrderByConsecutive(f.Consecutive)
	if err != nil {
		return models.SubmissionResult{Consecutive: f.Consecutive}, d.reject(action, f.Consecutive, fmt.Errorf("load cargo order: %w", err), batchID)
	}
	if order == nil {
		return models.SubmissionResult{Consecutive: f.Consecutive}, d.reject(action, f.Consecutive, fmt.Errorf("%w: cargo order %q", ErrNotFound, f.Consecutive), batchID)
	}
	if order.Status != models.CargoOrderSuccess && order.Status != models.CargoOrderFulfillmentFailed {
		return models.SubmissionResult{Consecutive: f.Consecutive}, d.reject(action, f.Consecutive, fmt.Errorf("%w: cargo order %s is %s", ErrInvalidState, order.Consecutive, order.Status), batchID)
	}

	data, err := fulfillmentData(order, f)
	if err != nil {
		return models.SubmissionResult{Consecutive: f.Consecutive}, d.reject(action, f.Consecutive, err, batchID)
	}
	body, err := rndc.BuildCargoOrderFulfillmentXML(credentials(cfg), data)
	if err != nil {
		return models.SubmissionResult{Consecutive: f.Consecutive}, d.reject(action, f.Consecutive, err, batchID)
	}

	out := d.transmit(ctx, sender, body)
	d.logOutcome(action, order.Consecutive, out)

	status := models.CargoOrderFulfillmentFailed
	if out.success {
		status = models.CargoOrderFulfilled
	}
	res := result(order.Consecutive, out)
	auditErr := d.record(action, order.Consecutive, body, status, out, batchID)
	var updateErr error
	if err := d.store.CargoOrders.UpdateCargoOrder(order.ID, models.SubmissionPatch{
		Status:       status,
		LastXML:      &body,
		LastResponse: strPtr(out.raw),
		Message:      strPtr(out.message),
	}); err != nil {
		updateErr = fmt.Errorf("update cargo order %s: %w", order.Consecutive, err)
	}
	return res, errors.Join(auditErr, updateErr)
}

// fulfillmentData merges reported arrivals with the stored appointment.
// The delivered quantity is the loaded quantity.
func fulfillmentData(order *models.CargoOrder, f models.CargoOrderFulfillment) (rndc.CargoOrderFulfillmentData, error) {
	pick := func(v, def string) string {
		if strings.TrimSpace(v) == "" {
			return def
		}
		return v
	}
	pickupDate, err := rndc.NormalizeDate(pick(f.PickupArrivalDate, order.PickupDate))
	if err != nil {
		return rndc.CargoOrderFulfillmentData{}, err
	}
	deliveryDate, err := rndc.NormalizeDate(pick(f.DeliveryArrivalDate, order.DeliveryDate))
	if err != nil {
		return rndc.CargoOrderFulfillmentData{}, err
	}
	pickupTime, err := rndc.NormalizeTime(pick(f.PickupArrivalTime, order.PickupTime))
	if err != nil {
		return rndc.CargoOrderFulfillmentData{}, err
	}
	deliveryTime, err := rndc.NormalizeTime(pick(f.DeliveryArrivalTime, order.DeliveryTime))
	if err != nil {
		return rndc.CargoOrderFulfillmentData{}, err
	}
	return rndc.CargoOrderFulfillmentData{
		Consecutive:         order.Consecutive,
		LoadedQuantity:      order.LoadedQuantity,
		DeliveredQuantity:   order.LoadedQuantity,
		PickupArrivalDate:   pickupDate,
		PickupArrivalTime:   pickupTime,
		DeliveryArrivalDate: deliveryDate,
		DeliveryArrivalTime: deliveryTime,
	}, nil
}

// FulfillManifest closes an accepted manifest whose cargo order has already
// been fulfilled.
func (d *Dispatcher) FulfillManifest(ctx context.Context, cfg *models.Configuration, number string) (models.SubmissionResult, error) {
	if cfg == nil {
		return models.SubmissionResult{}, ErrConfigMissing
	}
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	defer release()
	return d.fulfillManifest(ctx, cfg, d.newSender(cfg), number, nil)
}

func (d *Dispatcher) FulfillManifests(ctx context.Context, cfg *models.Configuration, numbers []string) (*models.BatchResult, error) {
	return runBatch(ctx, d, cfg, "manifest fulfillment", numbers, identity, d.fulfillManifest)
}

func (d *Dispatcher) fulfillManifest(ctx context.Context, cfg *models.Configuration, sender Sender, number string, batchID *string) (models.SubmissionResult, error) {
	action := models.DocManifestFulfillment
	m, err := d.checkManifestFulfillment(number)
	if err != nil {
		return models.SubmissionResult{Consecutive: number}, d.reject(action, number, err, batchID)
	}

	body := rndc.BuildManifestFulfillmentXML(credentials(cfg), rndc.ManifestFulfillmentData{
		Number:    m.Number,
		IssueDate: m.IssueDate,
	})
	out := d.transmit(ctx, sender, body)
	d.logOutcome(action, m.Number, out)

	status := models.ManifestFulfillmentFailed
	if out.success {
		status = models.ManifestFulfilled
	}
	res := result(m.Number, out)
	auditErr := d.record(action, m.Number, body, status, out, batchID)
	var updateErr error
	if err := d.store.Manifests.UpdateManifest(m.ID, models.SubmissionPatch{
		Status:       status,
		LastXML:      &body,
		LastResponse: strPtr(out.raw),
		Message:      strPtr(out.message),
	}); err != nil {
		updateErr = fmt.Errorf("update manifest %s: %w", m.Number, err)
	}
	return res, errors.Join(auditErr, updateErr)
}

func (d *Dispatcher) checkManifestFulfillment(number string) (*models.Manifest, error) {
	m, err := d.store.Manifests.GetManifestByNumber(number)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	if m == nil {
		return nil, fmt.Errorf("%w: manifest %q", ErrNotFound, number)
	}
	if m.Status != models.ManifestSuccess && m.Status != models.ManifestFulfillmentFailed {
		return nil, fmt.Errorf("%w: manifest %s is %s", ErrInvalidState, m.Number, m.Status)
	}
	order, err := d.store.CargoOrders.GetCargoOrderByConsecutive(m.CargoOrderConsecutive)
	if err != nil {
		return nil, fmt.Errorf("load cargo order: %w", err)
	}
	if order == nil {
		return nil, fmt.Errorf("%w: cargo order %q", ErrNotFound, m.CargoOrderConsecutive)
	}
	if order.Status != models.CargoOrderFulfilled {
		return nil, fmt.Errorf("%w: cargo order %s is %s, fulfill it first", ErrInvalidState, order.Consecutive, order.Status)
	}
	return m, nil
}
