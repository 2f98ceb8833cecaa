package http

import (
	"strings"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

// ListVenuesRequest defines query parameters for browsing the catalog.
type ListVenuesRequest struct {
	request.ListParams
	Query       string `form:"q"`
	Category    string `form:"category"`
	MinPrice    *int64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice    *int64 `form:"max_price" binding:"omitempty,min=0"`
	MinCapacity *int64 `form:"min_capacity" binding:"omitempty,min=0"`
	MaxCapacity *int64 `form:"max_capacity" binding:"omitempty,min=0"`
	Amenities   string `form:"amenities"`
	Featured    bool   `form:"featured"`
	Sort        string `form:"sort"`
}

// Criteria converts the query into catalog filter criteria.
func (r ListVenuesRequest) Criteria() venue.Criteria {
	var amenities []string
	for _, a := range strings.Split(r.Amenities, ",") {
		if a = strings.TrimSpace(a); a != "" {
			amenities = append(amenities, a)
		}
	}
	return venue.Criteria{
		Category:    r.Category,
		MinPrice:    r.MinPrice,
		MaxPrice:    r.MaxPrice,
		MinCapacity: r.MinCapacity,
		MaxCapacity: r.MaxCapacity,
		Amenities:   amenities,
		Featured:    r.Featured,
		Query:       r.Query,
	}
}

// CreateVenueRequest is the payload for an owner-created venue.
type CreateVenueRequest struct {
	Name           string         `json:"name"`
	Category       venue.Category `json:"category"`
	Location       venue.Location `json:"location"`
	Capacity       venue.Range    `json:"capacity"`
	PriceRange     venue.Range    `json:"priceRange"`
	Images         []string       `json:"images"`
	CoverImage     string         `json:"coverImage"`
	Amenities      []string       `json:"amenities"`
	Description    string         `json:"description"`
	IsFeatured     bool           `json:"isFeatured"`
	HouseRules     string         `json:"houseRules"`
	OperatingHours string         `json:"operatingHours"`
}

func (r CreateVenueRequest) toVenue() venue.Venue {
	return venue.Venue{
		Name:           r.Name,
		Category:       r.Category,
		Location:       r.Location,
		Capacity:       r.Capacity,
		PriceRange:     r.PriceRange,
		Images:         r.Images,
		CoverImage:     r.CoverImage,
		Amenities:      r.Amenities,
		Description:    r.Description,
		IsFeatured:     r.IsFeatured,
		HouseRules:     r.HouseRules,
		OperatingHours: r.OperatingHours,
	}
}

// UpdateVenueRequest defines fields allowed to be updated via PATCH /venues/:id.
// Use pointers to distinguish between "field not sent" and "field sent as empty".
type UpdateVenueRequest struct {
	Name           *string         `json:"name"`
	Category       *venue.Category `json:"category"`
	Location       *venue.Location `json:"location"`
	Capacity       *venue.Range    `json:"capacity"`
	PriceRange     *venue.Range    `json:"priceRange"`
	Images         *[]string       `json:"images"`
	CoverImage     *string         `json:"coverImage"`
	Amenities      *[]string       `json:"amenities"`
	Description    *string         `json:"description"`
	IsFeatured     *bool           `json:"isFeatured"`
	HouseRules     *string         `json:"houseRules"`
	OperatingHours *string         `json:"operatingHours"`
}

func (r UpdateVenueRequest) toPatch() venue.Patch {
	return venue.Patch{
		Name:           r.Name,
		Category:       r.Category,
		Location:       r.Location,
		Capacity:       r.Capacity,
		PriceRange:     r.PriceRange,
		Images:         r.Images,
		CoverImage:     r.CoverImage,
		Amenities:      r.Amenities,
		Description:    r.Description,
		IsFeatured:     r.IsFeatured,
		HouseRules:     r.HouseRules,
		OperatingHours: r.OperatingHours,
	}
}

// VenueResponse is a venue plus whether the caller may edit it.
type VenueResponse struct {
	venue.Venue
	Origin venue.Origin `json:"origin"`
}

func NewVenueResponse(rec venue.Record) VenueResponse {
	return VenueResponse{Venue: rec.Venue, Origin: rec.Origin}
}
