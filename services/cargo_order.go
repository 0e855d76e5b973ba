package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"despachos/models"
	"despachos/rndc"
)

// Appointment hours used when an input row leaves them empty.
const (
	DefaultPickupTime   = "08:00"
	DefaultDeliveryTime = "12:00"
)

// companyDocType is the RNDC document type of a tax id (NIT).
const companyDocType = "N"

type cargoOrderPlan struct {
	origin   *models.Site
	dest     *models.Site
	vehicle  *models.Vehicle
	date     string
	pickup   string
	delivery string
}

// resolveCargoOrder loads every referenced entity and normalizes the row.
// Nothing is numbered or sent when it fails.
func (d *Dispatcher) resolveCargoOrder(in models.CargoOrderInput) (*cargoOrderPlan, error) {
	required := []struct{ name, value string }{
		{"planta", in.Plant},
		{"granja", in.Farm},
		{"placa", in.Plate},
		{"conductor", in.DriverID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return nil, fmt.Errorf("%w: %s is required", ErrInvalidInput, f.name)
		}
	}
	if in.Tonnage <= 0 {
		return nil, fmt.Errorf("%w: toneladas must be positive", ErrInvalidInput)
	}

	origin, err := d.store.Sites.GetSiteByName(in.Plant)
	if err != nil {
		return nil, fmt.Errorf("load origin site: %w", err)
	}
	if origin == nil {
		return nil, fmt.Errorf("%w: origin site %q", ErrNotFound, in.Plant)
	}
	dest, err := d.store.Sites.GetSiteByName(in.Farm)
	if err != nil {
		return nil, fmt.Errorf("load destination site: %w", err)
	}
	if dest == nil {
		return nil, fmt.Errorf("%w: destination site %q", ErrNotFound, in.Farm)
	}
	vehicle, err := d.store.Vehicles.GetVehicleByPlate(in.Plate)
	if err != nil {
		return nil, fmt.Errorf("load vehicle: %w", err)
	}
	if vehicle == nil {
		return nil, fmt.Errorf("%w: vehicle %q", ErrNotFound, in.Plate)
	}
	driver, err := d.store.Parties.GetPartyByDocument(in.DriverID)
	if err != nil {
		return nil, fmt.Errorf("load driver: %w", err)
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: driver %q", ErrNotFound, in.DriverID)
	}

	date, err := rndc.NormalizeDate(in.Date)
	if err != nil {
		return nil, err
	}
	pickup, err := normalizeTimeOr(in.PickupTime, DefaultPickupTime)
	if err != nil {
		return nil, err
	}
	delivery, err := normalizeTimeOr(in.DeliveryTime, DefaultDeliveryTime)
	if err != nil {
		return nil, err
	}
	return &cargoOrderPlan{
		origin:   origin,
		dest:     dest,
		vehicle:  vehicle,
		date:     date,
		pickup:   pickup,
		delivery: delivery,
	}, nil
}

func normalizeTimeOr(v, def string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return def, nil
	}
	return rndc.NormalizeTime(v)
}

func siteParty(site *models.Site, cfg *models.Configuration) (docType, docNumber string) {
	if site.PartyDocNumber == "" {
		return companyDocType, cfg.CompanyNIT
	}
	docType = site.PartyDocType
	if docType == "" {
		docType = companyDocType
	}
	return docType, site.PartyDocNumber
}

func cargoOrderData(cfg *models.Configuration, order *models.CargoOrder, origin, dest *models.Site) rndc.CargoOrderData {
	senderType, senderNumber := siteParty(origin, cfg)
	receiverType, receiverNumber := siteParty(dest, cfg)
	return rndc.CargoOrderData{
		Consecutive:       order.Consecutive,
		SenderDocType:     senderType,
		SenderDocNumber:   senderNumber,
		SenderSiteCode:    origin.Code,
		ReceiverDocType:   receiverType,
		ReceiverDocNumber: receiverNumber,
		ReceiverSiteCode:  dest.Code,
		LoadedQuantity:    order.LoadedQuantity,
		PickupDate:        order.PickupDate,
		PickupTime:        order.PickupTime,
		DeliveryDate:      order.DeliveryDate,
		DeliveryTime:      order.DeliveryTime,
	}
}

// SubmitCargoOrder numbers, persists and registers one cargo order. The
// loaded quantity is always the stored vehicle capacity; in.Quantity is
// ignored. A returned error means nothing was sent.
func (d *Dispatcher) SubmitCargoOrder(ctx context.Context, cfg *models.Configuration, in models.CargoOrderInput) (models.SubmissionResult, error) {
	if cfg == nil {
		return models.SubmissionResult{}, ErrConfigMissing
	}
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	defer release()
	return d.submitCargoOrder(ctx, cfg, d.newSender(cfg), in, nil)
}

// SubmitCargoOrders runs rows one after another with the configured pause
// between them. A failing row never stops the batch.
func (d *Dispatcher) SubmitCargoOrders(ctx context.Context, cfg *models.Configuration, rows []models.CargoOrderInput) (*models.BatchResult, error) {
	return runBatch(ctx, d, cfg, "cargo order", rows, func(in models.CargoOrderInput) string { return in.Plate }, d.submitCargoOrder)
}

func (d *Dispatcher) submitCargoOrder(ctx context.Context, cfg *models.Configuration, sender Sender, in models.CargoOrderInput, batchID *string) (models.SubmissionResult, error) {
	plan, err := d.resolveCargoOrder(in)
	if err != nil {
		return models.SubmissionResult{}, d.reject(models.DocCargoOrder, in.Plate, err, batchID)
	}
	consecutive, err := d.nextConsecutive(models.DocCargoOrder)
	if err != nil {
		return models.SubmissionResult{}, d.reject(models.DocCargoOrder, in.Plate, err, batchID)
	}

	order := &models.CargoOrder{
		Consecutive:    consecutive,
		OriginSiteCode: plan.origin.Code,
		DestSiteCode:   plan.dest.Code,
		Plate:          plan.vehicle.Plate,
		LoadedQuantity: plan.vehicle.CargoCapacity,
		DriverID:       strings.TrimSpace(in.DriverID),
		Tonnage:        in.Tonnage,
		PickupDate:     plan.date,
		PickupTime:     plan.pickup,
		DeliveryDate:   plan.date,
		DeliveryTime:   plan.delivery,
		Status:         models.CargoOrderGenerated,
		CreatedAt:      d.now().UTC(),
	}
	if err := d.store.CargoOrders.CreateCargoOrder(order); err != nil {
		return models.SubmissionResult{Consecutive: consecutive}, d.reject(models.DocCargoOrder, consecutive, fmt.Errorf("save cargo order: %w", err), batchID)
	}
	return d.sendCargoOrder(ctx, cfg, sender, order, plan.origin, plan.dest, batchID)
}

func (d *Dispatcher) sendCargoOrder(ctx context.Context, cfg *models.Configuration, sender Sender, order *models.CargoOrder, origin, dest *models.Site, batchID *string) (models.SubmissionResult, error) {
	body := rndc.BuildCargoOrderXML(credentials(cfg), cargoOrderData(cfg, order, origin, dest))
	if err := d.store.CargoOrders.UpdateCargoOrder(order.ID, models.SubmissionPatch{
		Status:         models.CargoOrderSent,
		LastXML:        &body,
		LoadedQuantity: &order.LoadedQuantity,
	}); err != nil {
		return models.SubmissionResult{Consecutive: order.Consecutive}, d.reject(models.DocCargoOrder, order.Consecutive, fmt.Errorf("mark cargo order sent: %w", err), batchID)
	}

	out := d.transmit(ctx, sender, body)
	d.logOutcome(models.DocCargoOrder, order.Consecutive, out)

	status := models.CargoOrderError
	if out.success {
		status = models.CargoOrderSuccess
	}
	res := result(order.Consecutive, out)
	// The final state is written even when the audit write fails, so an
	// order RNDC already answered never stays enviada.
	auditErr := d.record(models.DocCargoOrder, order.Consecutive, body, status, out, batchID)
	var updateErr error
	if err := d.store.CargoOrders.UpdateCargoOrder(order.ID, models.SubmissionPatch{
		Status:       status,
		LastResponse: strPtr(out.raw),
		Message:      strPtr(out.message),
	}); err != nil {
		updateErr = fmt.Errorf("update cargo order %s: %w", order.Consecutive, err)
	}
	return res, errors.Join(auditErr, updateErr)
}

// ResubmitCargoOrder sends a cargo order left in error again under the same
// consecutive. Capacity is re-read from the vehicle.
func (d *Dispatcher) ResubmitCargoOrder(ctx context.Context, cfg *models.Configuration, consecutive string) (models.SubmissionResult, error) {
	if cfg == nil {
		return models.SubmissionResult{}, ErrConfigMissing
	}
	// The state check has to run under the lock: two resubmits of one order
	// must not both see it in error.
	release, err := d.lock.Acquire(ctx)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	defer release()

	order, err := d.store.CargoOrders.GetCargoOrderByConsecutive(consecutive)
	if err != nil {
		return models.SubmissionResult{}, fmt.Errorf("load cargo order: %w", err)
	}
	if order == nil {
		return models.SubmissionResult{}, fmt.Errorf("%w: cargo order %q", ErrNotFound, consecutive)
	}
	if order.Status != models.CargoOrderError && order.Status != models.CargoOrderGenerated {
		return models.SubmissionResult{}, fmt.Errorf("%w: cargo order %s is %s", ErrInvalidState, consecutive, order.Status)
	}
	origin, err := d.siteByCode(order.OriginSiteCode)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	dest, err := d.siteByCode(order.DestSiteCode)
	if err != nil {
		return models.SubmissionResult{}, err
	}
	vehicle, err := d.store.Vehicles.GetVehicleByPlate(order.Plate)
	if err != nil {
		return models.SubmissionResult{}, fmt.Errorf("load vehicle: %w", err)
	}
	if vehicle == nil {
		return models.SubmissionResult{}, fmt.Errorf("%w: vehicle %q", ErrNotFound, order.Plate)
	}
	order.LoadedQuantity = vehicle.CargoCapacity
	return d.sendCargoOrder(ctx, cfg, d.newSender(cfg), order, origin, dest, nil)
}

func (d *Dispatcher) siteByCode(code string) (*models.Site, error) {
	site, err := d.store.Sites.GetSiteByCode(code)
	if err != nil {
		return nil, fmt.Errorf("load site %s: %w", code, err)
	}
	if site == nil {
		return nil, fmt.Errorf("%w: site %q", ErrNotFound, code)
	}
	return site, nil
}
