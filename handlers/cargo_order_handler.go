package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"despachos/models"
	"despachos/repository"
	"despachos/services"

	"github.com/go-chi/chi/v5"
)

const maxImportBytes = 5 << 20

type CargoOrderHandler struct {
	Dispatcher *services.Dispatcher
	Store      *repository.Store
}

// queryFilters keeps the non-empty query parameters named in allowed.
func queryFilters(r *http.Request, allowed ...string) map[string]interface{} {
	filters := make(map[string]interface{})
	q := r.URL.Query()
	for _, key := range allowed {
		if v := q.Get(key); v != "" {
			filters[key] = v
		}
	}
	return filters
}

// detached lets a submission finish after the client goes away.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func submissionMessage(res models.SubmissionResult) string {
	if res.Success {
		return fmt.Sprintf("%s accepted", res.Consecutive)
	}
	return fmt.Sprintf("%s not accepted: %s", res.Consecutive, res.Message)
}

func batchMessage(b *models.BatchResult) string {
	return fmt.Sprintf("%d of %d accepted", b.Successes, b.Total)
}

// SubmitCargoOrder handles one input row.
func (h *CargoOrderHandler) SubmitCargoOrder(w http.ResponseWriter, r *http.Request) {
	var in models.CargoOrderInput
	if !decodeJSON(w, r, &in) {
		return
	}
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Dispatcher.SubmitCargoOrder(detached(r), cfg, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: res.Success, Message: submissionMessage(res), Data: res})
}

func (h *CargoOrderHandler) SubmitBatch(w http.ResponseWriter, r *http.Request) {
	var rows []models.CargoOrderInput
	if !decodeJSON(w, r, &rows) {
		return
	}
	if len(rows) == 0 {
		badRequest(w, "no rows to submit")
		return
	}
	h.runCargoOrderBatch(w, r, rows, nil)
}

// ImportCSV submits the valid rows of an uploaded sheet. With ?validar=1
// the sheet is only checked.
func (h *CargoOrderHandler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	rows, rowErrs, err := services.ParseCargoOrderCSV(http.MaxBytesReader(w, r.Body, maxImportBytes))
	if err != nil {
		writeError(w, err)
		return
	}
	if rowErrs == nil {
		rowErrs = []services.RowError{}
	}
	if r.URL.Query().Get("validar") != "" || len(rows) == 0 {
		writeJSON(w, http.StatusOK, ApiResponse{
			Success: len(rowErrs) == 0,
			Message: fmt.Sprintf("%d valid rows, %d rejected", len(rows), len(rowErrs)),
			Data:    map[string]interface{}{"filas": rows, "rechazadas": rowErrs},
		})
		return
	}
	h.runCargoOrderBatch(w, r, rows, rowErrs)
}

func (h *CargoOrderHandler) runCargoOrderBatch(w http.ResponseWriter, r *http.Request, rows []models.CargoOrderInput, rowErrs []services.RowError) {
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	batch, err := h.Dispatcher.SubmitCargoOrders(detached(r), cfg, rows)
	if err != nil {
		writeError(w, err)
		return
	}
	var data interface{} = batch
	if rowErrs != nil {
		data = map[string]interface{}{"lote": batch, "rechazadas": rowErrs}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: batch.Failures == 0 && len(rowErrs) == 0, Message: batchMessage(batch), Data: data})
}

func (h *CargoOrderHandler) ListCargoOrders(w http.ResponseWriter, r *http.Request) {
	filters := queryFilters(r, "estado", "placa", "sede_origen", "sede_destino", "conductor_id", "fecha_cita_cargue")
	list, err := h.Store.CargoOrders.ListCargoOrders(filters)
	if err != nil {
		serverError(w, "Failed to list cargo orders", err)
		return
	}
	if list == nil {
		list = []*models.CargoOrder{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Cargo orders", Data: list})
}

func (h *CargoOrderHandler) GetCargoOrder(w http.ResponseWriter, r *http.Request) {
	consecutive := chi.URLParam(r, "consecutivo")
	order, err := h.Store.CargoOrders.GetCargoOrderByConsecutive(consecutive)
	if err != nil {
		serverError(w, "Failed to load cargo order", err)
		return
	}
	if order == nil {
		writeJSON(w, http.StatusNotFound, ApiResponse{Success: false, Message: "Cargo order not found"})
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Cargo order", Data: order})
}

// Resubmit sends a cargo order left in error again.
func (h *CargoOrderHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Dispatcher.ResubmitCargoOrder(detached(r), cfg, chi.URLParam(r, "consecutivo"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: res.Success, Message: submissionMessage(res), Data: res})
}

// Fulfill reports delivery of one cargo order. The body is optional; empty
// arrival fields default to the appointment.
func (h *CargoOrderHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var f models.CargoOrderFulfillment
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "Invalid request payload: "+err.Error())
		return
	}
	f.Consecutive = chi.URLParam(r, "consecutivo")
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Dispatcher.FulfillCargoOrder(detached(r), cfg, f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: res.Success, Message: submissionMessage(res), Data: res})
}

func (h *CargoOrderHandler) FulfillBatch(w http.ResponseWriter, r *http.Request) {
	var items []models.CargoOrderFulfillment
	if !decodeJSON(w, r, &items) {
		return
	}
	if len(items) == 0 {
		badRequest(w, "no cargo orders to fulfill")
		return
	}
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	batch, err := h.Dispatcher.FulfillCargoOrders(detached(r), cfg, items)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: batch.Failures == 0, Message: batchMessage(batch), Data: batch})
}
