package handlers

import (
	"net/http"

	"despachos/models"
	"despachos/repository"
	"despachos/services"

	"github.com/go-chi/chi/v5"
)

type ManifestHandler struct {
	Dispatcher *services.Dispatcher
	Store      *repository.Store
}

type manifestRequest struct {
	Consecutives []string `json:"consecutivos"`
}

type manifestFulfillRequest struct {
	Numbers []string `json:"numeros"`
}

// CreateManifests issues manifests for accepted cargo orders, in the order
// given.
func (h *ManifestHandler) CreateManifests(w http.ResponseWriter, r *http.Request) {
	var req manifestRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Consecutives) == 0 {
		badRequest(w, "consecutivos is required")
		return
	}
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	batch, err := h.Dispatcher.CreateManifests(detached(r), cfg, req.Consecutives)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: batch.Failures == 0, Message: batchMessage(batch), Data: batch})
}

// Candidates lists accepted cargo orders still waiting for a manifest.
func (h *ManifestHandler) Candidates(w http.ResponseWriter, r *http.Request) {
	list, err := h.Dispatcher.ManifestCandidates()
	if err != nil {
		serverError(w, "Failed to list candidates", err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Cargo orders without manifest", Data: list})
}

func (h *ManifestHandler) ListManifests(w http.ResponseWriter, r *http.Request) {
	filters := queryFilters(r, "estado", "placa", "conductor_id", "remesa_consecutivo")
	list, err := h.Store.Manifests.ListManifests(filters)
	if err != nil {
		serverError(w, "Failed to list manifests", err)
		return
	}
	if list == nil {
		list = []*models.Manifest{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Manifests", Data: list})
}

func (h *ManifestHandler) GetManifest(w http.ResponseWriter, r *http.Request) {
	m, err := h.Store.Manifests.GetManifestByNumber(chi.URLParam(r, "numero"))
	if err != nil {
		serverError(w, "Failed to load manifest", err)
		return
	}
	if m == nil {
		writeJSON(w, http.StatusNotFound, ApiResponse{Success: false, Message: "Manifest not found"})
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Manifest", Data: m})
}

func (h *ManifestHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := h.Dispatcher.FulfillManifest(detached(r), cfg, chi.URLParam(r, "numero"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: res.Success, Message: submissionMessage(res), Data: res})
}

func (h *ManifestHandler) FulfillBatch(w http.ResponseWriter, r *http.Request) {
	var req manifestFulfillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if len(req.Numbers) == 0 {
		badRequest(w, "numeros is required")
		return
	}
	cfg, err := activeConfig(h.Store.Config)
	if err != nil {
		writeError(w, err)
		return
	}
	batch, err := h.Dispatcher.FulfillManifests(detached(r), cfg, req.Numbers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: batch.Failures == 0, Message: batchMessage(batch), Data: batch})
}
