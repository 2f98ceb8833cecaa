package http

import (
	"github.com/nekogravitycat/venue-booking-backend/internal/pricing"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
)

type CreatePackageRequest struct {
	VenueID        string              `json:"venueId" binding:"required"`
	Name           string              `json:"name"`
	Type           servicepackage.Type `json:"type"`
	Description    string              `json:"description"`
	PricingUnit    pricing.Unit        `json:"pricingUnit"`
	Price          int64               `json:"price"`
	PricePerPerson int64               `json:"pricePerPerson"`
	Inclusions     []string            `json:"inclusions"`
}

func (r CreatePackageRequest) toPackage() servicepackage.Package {
	return servicepackage.Package{
		VenueID:        r.VenueID,
		Name:           r.Name,
		Type:           r.Type,
		Description:    r.Description,
		PricingUnit:    r.PricingUnit,
		Price:          r.Price,
		PricePerPerson: r.PricePerPerson,
		Inclusions:     r.Inclusions,
	}
}

// UpdatePackageRequest defines fields allowed to be updated via PATCH /packages/:id.
type UpdatePackageRequest struct {
	Name           *string              `json:"name"`
	Type           *servicepackage.Type `json:"type"`
	Description    *string              `json:"description"`
	PricingUnit    *pricing.Unit        `json:"pricingUnit"`
	Price          *int64               `json:"price"`
	PricePerPerson *int64               `json:"pricePerPerson"`
	Inclusions     *[]string            `json:"inclusions"`
}

func (r UpdatePackageRequest) toPatch() servicepackage.Patch {
	return servicepackage.Patch{
		Name:           r.Name,
		Type:           r.Type,
		Description:    r.Description,
		PricingUnit:    r.PricingUnit,
		Price:          r.Price,
		PricePerPerson: r.PricePerPerson,
		Inclusions:     r.Inclusions,
	}
}

// PackageResponse is a package plus whether it is a read-only system package.
type PackageResponse struct {
	servicepackage.Package
	System bool `json:"system"`
}
