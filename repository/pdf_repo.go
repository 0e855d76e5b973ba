package repository

import (
	"fmt"

	"despachos/models"
)

// PDFRepository gathers everything printed on a manifest.
type PDFRepository struct {
	Store *Store
}

func NewPDFRepository(store *Store) *PDFRepository {
	return &PDFRepository{Store: store}
}

// GetManifestForPDF returns nil, nil when the manifest does not exist.
// Related records that are missing are left nil.
func (r *PDFRepository) GetManifestForPDF(number string) (*models.ManifestPDFData, error) {
	manifest, err := r.Store.Manifests.GetManifestByNumber(number)
	if err != nil {
		return nil, err
	}
	if manifest == nil {
		return nil, nil
	}

	cfg, err := r.Store.Config.GetActiveConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("no active RNDC configuration")
	}

	data := &models.ManifestPDFData{Config: cfg, Manifest: manifest}

	if data.CargoOrder, err = r.Store.CargoOrders.GetCargoOrderByConsecutive(manifest.CargoOrderConsecutive); err != nil {
		return nil, err
	}
	if data.Vehicle, err = r.Store.Vehicles.GetVehicleByPlate(manifest.Plate); err != nil {
		return nil, err
	}
	if data.Driver, err = r.Store.Parties.GetPartyByDocument(manifest.DriverID); err != nil {
		return nil, err
	}
	if data.CargoOrder != nil {
		if data.Origin, err = r.Store.Sites.GetSiteByCode(data.CargoOrder.OriginSiteCode); err != nil {
			return nil, err
		}
		if data.Destination, err = r.Store.Sites.GetSiteByCode(data.CargoOrder.DestSiteCode); err != nil {
			return nil, err
		}
	}
	return data, nil
}
