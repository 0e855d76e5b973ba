package repository

import "despachos/models"

// ConfigRepository stores RNDC access configurations. At most one record
// is active.
type ConfigRepository interface {
	SaveConfig(cfg *models.Configuration) error
	GetActiveConfig() (*models.Configuration, error)
	ListConfigs() ([]*models.Configuration, error)
}
