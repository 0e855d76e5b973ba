package handlers

import (
	"net/http"
	"strings"
	"time"

	"despachos/models"
	"despachos/repository"
)

// CatalogHandler maintains the sites, vehicles and parties referenced by
// cargo orders.
type CatalogHandler struct {
	Store *repository.Store
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, ApiResponse{Success: false, Message: msg})
}

func serverError(w http.ResponseWriter, prefix string, err error) {
	writeJSON(w, http.StatusInternalServerError, ApiResponse{Success: false, Message: prefix + ": " + err.Error()})
}

func (h *CatalogHandler) SaveSite(w http.ResponseWriter, r *http.Request) {
	var site models.Site
	if !decodeJSON(w, r, &site) {
		return
	}
	site.Code = strings.TrimSpace(site.Code)
	site.Name = strings.TrimSpace(site.Name)
	if site.Code == "" || site.Name == "" || site.MunicipalityCode == "" {
		badRequest(w, "codigo, nombre and municipio_codigo are required")
		return
	}
	if site.RatePerTonne < 0 {
		badRequest(w, "tarifa_tonelada must not be negative")
		return
	}
	site.CreatedAt = time.Now().UTC()
	if err := h.Store.Sites.SaveSite(&site); err != nil {
		serverError(w, "Failed to save site", err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Site saved", Data: site})
}

func (h *CatalogHandler) ListSites(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.Sites.ListSites()
	if err != nil {
		serverError(w, "Failed to list sites", err)
		return
	}
	if list == nil {
		list = []*models.Site{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Sites", Data: list})
}

func (h *CatalogHandler) SaveVehicle(w http.ResponseWriter, r *http.Request) {
	var v models.Vehicle
	if !decodeJSON(w, r, &v) {
		return
	}
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	if v.Plate == "" || v.OwnerDocType == "" || v.OwnerDocNumber == "" {
		badRequest(w, "placa and propietario document are required")
		return
	}
	if v.CargoCapacity <= 0 {
		badRequest(w, "capacidad_carga must be positive")
		return
	}
	v.CreatedAt = time.Now().UTC()
	if err := h.Store.Vehicles.SaveVehicle(&v); err != nil {
		serverError(w, "Failed to save vehicle", err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Vehicle saved", Data: v})
}

func (h *CatalogHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.Vehicles.ListVehicles()
	if err != nil {
		serverError(w, "Failed to list vehicles", err)
		return
	}
	if list == nil {
		list = []*models.Vehicle{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Vehicles", Data: list})
}

func (h *CatalogHandler) SaveParty(w http.ResponseWriter, r *http.Request) {
	var p models.Party
	if !decodeJSON(w, r, &p) {
		return
	}
	p.DocType = strings.ToUpper(strings.TrimSpace(p.DocType))
	p.DocNumber = strings.TrimSpace(p.DocNumber)
	if p.DocType == "" || p.DocNumber == "" || strings.TrimSpace(p.Name) == "" {
		badRequest(w, "tipo_documento, numero_documento and nombre are required")
		return
	}
	p.CreatedAt = time.Now().UTC()
	if err := h.Store.Parties.SaveParty(&p); err != nil {
		serverError(w, "Failed to save party", err)
		return
	}
	writeJSON(w, http.StatusCreated, ApiResponse{Success: true, Message: "Party saved", Data: p})
}

func (h *CatalogHandler) ListParties(w http.ResponseWriter, r *http.Request) {
	list, err := h.Store.Parties.ListParties()
	if err != nil {
		serverError(w, "Failed to list parties", err)
		return
	}
	if list == nil {
		list = []*models.Party{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Parties", Data: list})
}
