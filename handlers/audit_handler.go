package handlers

import (
	"net/http"
	"strconv"

	"despachos/models"
	"despachos/repository"
)

type AuditHandler struct {
	Repo repository.AuditRepository
}

// ListDocuments returns every message exchanged with RNDC for one
// consecutive, oldest first.
func (h *AuditHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	consecutive := r.URL.Query().Get("consecutivo")
	if consecutive == "" {
		badRequest(w, "consecutivo is required")
		return
	}
	list, err := h.Repo.ListAuditDocuments(consecutive)
	if err != nil {
		serverError(w, "Failed to list documents", err)
		return
	}
	if list == nil {
		list = []*models.AuditDocument{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Documents", Data: list})
}

func (h *AuditHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 1000 {
			badRequest(w, "limit must be between 1 and 1000")
			return
		}
		limit = n
	}
	list, err := h.Repo.ListLogEntries(limit)
	if err != nil {
		serverError(w, "Failed to list log entries", err)
		return
	}
	if list == nil {
		list = []*models.LogEntry{}
	}
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Log entries", Data: list})
}
