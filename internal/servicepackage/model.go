package servicepackage

import (
	"net/http"
	"slices"
	"time"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pricing"
)

var (
	ErrNotFound      = apperror.New(http.StatusNotFound, "service package not found")
	ErrSystemPackage = apperror.New(http.StatusForbidden, "system packages cannot be modified")
	ErrVenueNotFound = apperror.New(http.StatusNotFound, "venue not found")
)

// Type is the kind of service a package provides.
type Type string

const (
	TypeCatering      Type = "catering"
	TypeDecoration    Type = "decoration"
	TypePhotography   Type = "photography"
	TypeEntertainment Type = "entertainment"
	TypeOther         Type = "other"
)

type Package struct {
	ID             string       `json:"id" yaml:"id"`
	VenueID        string       `json:"venueId" yaml:"venueId" validate:"required"`
	Name           string       `json:"name" yaml:"name" validate:"required"`
	Type           Type         `json:"type" yaml:"type" validate:"required,oneof=catering decoration photography entertainment other"`
	Description    string       `json:"description" yaml:"description"`
	PricingUnit    pricing.Unit `json:"pricingUnit" yaml:"pricingUnit" validate:"required,oneof=flat_rate per_person per_hour"`
	Price          int64        `json:"price,omitempty" yaml:"price,omitempty" validate:"gte=0"`
	PricePerPerson int64        `json:"pricePerPerson,omitempty" yaml:"pricePerPerson,omitempty" validate:"gte=0"`
	Inclusions     []string     `json:"inclusions,omitempty" yaml:"inclusions,omitempty"`
	CreatedAt      *time.Time   `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt      *time.Time   `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// LineItem resolves the package price for a booking with guestCount guests.
func (p Package) LineItem(guestCount int) pricing.LineItem {
	return pricing.LineItem{
		PackageID: p.ID,
		Label:     p.Name,
		Amount:    pricing.ResolveLineItem(p.PricingUnit, p.Price, p.PricePerPerson, guestCount),
	}
}

func (p Package) clone() Package {
	p.Inclusions = slices.Clone(p.Inclusions)
	return p
}

// Patch holds optional changes to a package. Nil fields are left untouched.
type Patch struct {
	Name           *string
	Type           *Type
	Description    *string
	PricingUnit    *pricing.Unit
	Price          *int64
	PricePerPerson *int64
	Inclusions     *[]string
}

// Apply returns base with the patch merged in.
func (p Patch) Apply(base Package) Package {
	pkg := base.clone()
	if p.Name != nil {
		pkg.Name = *p.Name
	}
	if p.Type != nil {
		pkg.Type = *p.Type
	}
	if p.Description != nil {
		pkg.Description = *p.Description
	}
	if p.PricingUnit != nil {
		pkg.PricingUnit = *p.PricingUnit
	}
	if p.Price != nil {
		pkg.Price = *p.Price
	}
	if p.PricePerPerson != nil {
		pkg.PricePerPerson = *p.PricePerPerson
	}
	if p.Inclusions != nil {
		pkg.Inclusions = slices.Clone(*p.Inclusions)
	}
	return pkg
}
