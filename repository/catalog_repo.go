package repository

import "despachos/models"

type SiteRepository interface {
	SaveSite(site *models.Site) error
	GetSiteByName(name string) (*models.Site, error)
	GetSiteByCode(code string) (*models.Site, error)
	ListSites() ([]*models.Site, error)
}

type VehicleRepository interface {
	SaveVehicle(vehicle *models.Vehicle) error
	GetVehicleByPlate(plate string) (*models.Vehicle, error)
	ListVehicles() ([]*models.Vehicle, error)
}

type PartyRepository interface {
	SaveParty(party *models.Party) error
	GetPartyByDocument(number string) (*models.Party, error)
	ListParties() ([]*models.Party, error)
}
