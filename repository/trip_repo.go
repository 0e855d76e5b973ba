package repository

import (
	"time"

	"despachos/models"
)

type CargoOrderRepository interface {
	CreateCargoOrder(order *models.CargoOrder) error
	UpdateCargoOrder(id int64, patch models.SubmissionPatch) error
	GetCargoOrderByConsecutive(consecutive string) (*models.CargoOrder, error)
	ListCargoOrders(filters map[string]interface{}) ([]*models.CargoOrder, error)
}

type ManifestRepository interface {
	CreateManifest(manifest *models.Manifest) error
	UpdateManifest(id int64, patch models.SubmissionPatch) error
	GetManifestByNumber(number string) (*models.Manifest, error)
	ListManifests(filters map[string]interface{}) ([]*models.Manifest, error)
	UpdatePDFInfo(id int64, path string, createdAt time.Time) error
}
