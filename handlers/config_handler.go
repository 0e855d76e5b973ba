package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"despachos/models"
	"despachos/repository"
	"despachos/services"
)

// EndpointDefaults fill in configuration records saved without endpoints.
type EndpointDefaults struct {
	PrimaryURL string
	BackupURL  string
	TimeoutMS  int
}

type ConfigHandler struct {
	Repo     repository.ConfigRepository
	Defaults EndpointDefaults
}

// SaveConfig stores a new configuration and makes it the active one.
func (h *ConfigHandler) SaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.Configuration
	if !decodeJSON(w, r, &cfg) {
		return
	}
	cfg.Username = strings.TrimSpace(cfg.Username)
	cfg.CompanyNIT = strings.TrimSpace(cfg.CompanyNIT)
	if cfg.Username == "" || cfg.Password == "" || cfg.CompanyNIT == "" {
		writeJSON(w, http.StatusBadRequest, ApiResponse{
			Success: false,
			Message: "username, password and company_nit are required",
		})
		return
	}
	if cfg.PrimaryURL == "" {
		cfg.PrimaryURL = h.Defaults.PrimaryURL
	}
	if cfg.BackupURL == "" {
		cfg.BackupURL = h.Defaults.BackupURL
	}
	if cfg.TimeoutMS <= 0 {
		cfg.TimeoutMS = h.Defaults.TimeoutMS
	}
	cfg.ID = 0
	cfg.Active = true
	cfg.CreatedAt = time.Now().UTC()

	if err := h.Repo.SaveConfig(&cfg); err != nil {
		writeJSON(w, http.StatusInternalServerError, ApiResponse{
			Success: false,
			Message: "Failed to save configuration: " + err.Error(),
		})
		return
	}

	cfg.Password = ""
	writeJSON(w, http.StatusCreated, ApiResponse{
		Success: true,
		Message: "Configuration saved",
		Data:    cfg,
	})
}

func (h *ConfigHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := activeConfig(h.Repo)
	if err != nil {
		writeError(w, err)
		return
	}
	out := *cfg
	out.Password = ""
	writeJSON(w, http.StatusOK, ApiResponse{Success: true, Message: "Active configuration", Data: out})
}

// activeConfig resolves the configuration handed to the dispatcher.
func activeConfig(repo repository.ConfigRepository) (*models.Configuration, error) {
	cfg, err := repo.GetActiveConfig()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg == nil {
		return nil, services.ErrConfigMissing
	}
	return cfg, nil
}
