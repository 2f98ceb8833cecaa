package venue

import (
	"net/http"
	"slices"
	"time"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.New(http.StatusNotFound, "venue not found")
	ErrPermissionDenied = apperror.New(http.StatusForbidden, "permission denied")
	ErrInvalidSortKey   = apperror.New(http.StatusBadRequest, "invalid sort key")
)

// Category is the kind of venue.
type Category string

const (
	CategoryRestaurant  Category = "restaurant"
	CategoryBallroom    Category = "ballroom"
	CategoryGarden      Category = "garden"
	CategoryConference  Category = "conference"
	CategoryEventsHall  Category = "events_hall"
	CategoryWeddingHall Category = "wedding_hall"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryRestaurant, CategoryBallroom, CategoryGarden,
	CategoryConference, CategoryEventsHall, CategoryWeddingHall,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

type Location struct {
	City      string   `json:"city" yaml:"city" validate:"required"`
	Province  string   `json:"province" yaml:"province" validate:"required"`
	Address   string   `json:"address" yaml:"address" validate:"required"`
	Latitude  *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty" validate:"omitempty,longitude"`
}

// Range is an inclusive min..max bound.
type Range struct {
	Min int64 `json:"min" yaml:"min" validate:"gte=0"`
	Max int64 `json:"max" yaml:"max" validate:"gtefield=Min"`
}

type Venue struct {
	ID             string     `json:"id" yaml:"id"`
	Name           string     `json:"name" yaml:"name" validate:"required"`
	Category       Category   `json:"category" yaml:"category" validate:"required,oneof=restaurant ballroom garden conference events_hall wedding_hall"`
	Location       Location   `json:"location" yaml:"location"`
	Rating         float64    `json:"rating" yaml:"rating" validate:"gte=0,lte=5"`
	TotalReviews   int        `json:"totalReviews" yaml:"totalReviews" validate:"gte=0"`
	Capacity       Range      `json:"capacity" yaml:"capacity"`
	PriceRange     Range      `json:"priceRange" yaml:"priceRange"`
	Images         []string   `json:"images" yaml:"images"`
	CoverImage     string     `json:"coverImage" yaml:"coverImage"`
	Amenities      []string   `json:"amenities" yaml:"amenities"`
	Description    string     `json:"description" yaml:"description"`
	IsFeatured     bool       `json:"isFeatured" yaml:"isFeatured"`
	OwnerID        string     `json:"ownerId" yaml:"ownerId"`
	HouseRules     string     `json:"houseRules,omitempty" yaml:"houseRules,omitempty"`
	OperatingHours string     `json:"operatingHours,omitempty" yaml:"operatingHours,omitempty"`
	CreatedAt      *time.Time `json:"createdAt,omitempty" yaml:"createdAt,omitempty"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// BasePrice is the venue's price used when quoting a booking.
func (v Venue) BasePrice() int64 {
	return v.PriceRange.Min
}

// Clone returns a deep copy so callers cannot alias slices held by the catalog.
func (v Venue) Clone() Venue {
	v.Images = slices.Clone(v.Images)
	v.Amenities = slices.Clone(v.Amenities)
	if v.Location.Latitude != nil {
		lat := *v.Location.Latitude
		v.Location.Latitude = &lat
	}
	if v.Location.Longitude != nil {
		lng := *v.Location.Longitude
		v.Location.Longitude = &lng
	}
	return v
}

// Origin tells whether a record comes from the built-in catalog or was written by an owner.
type Origin string

const (
	OriginSeed  Origin = "seed"
	OriginOwned Origin = "owned"
)

// Record is a venue tagged with its origin. Owned records shadow seed records with the same id.
type Record struct {
	Origin Origin `json:"origin"`
	Venue  Venue  `json:"venue"`
}

// Owned reports whether owners may edit or delete the record.
func (r Record) Owned() bool {
	return r.Origin == OriginOwned
}

// CanManage reports whether userID may edit the venue and see its bookings. A venue
// belongs to its ownerId; a seed venue without one is open to any owner account
// until the first edit claims it.
func (r Record) CanManage(userID string) bool {
	if userID == "" {
		return false
	}
	if r.Origin == OriginSeed && r.Venue.OwnerID == "" {
		return true
	}
	return r.Venue.OwnerID == userID
}

// Patch holds optional changes to a venue. Nil fields are left untouched.
type Patch struct {
	Name           *string
	Category       *Category
	Location       *Location
	Capacity       *Range
	PriceRange     *Range
	Images         *[]string
	CoverImage     *string
	Amenities      *[]string
	Description    *string
	IsFeatured     *bool
	HouseRules     *string
	OperatingHours *string
}

// Apply returns base with the patch merged in. base is not modified.
func (p Patch) Apply(base Venue) Venue {
	v := base.Clone()
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Category != nil {
		v.Category = *p.Category
	}
	if p.Location != nil {
		v.Location = *p.Location
	}
	if p.Capacity != nil {
		v.Capacity = *p.Capacity
	}
	if p.PriceRange != nil {
		v.PriceRange = *p.PriceRange
	}
	if p.Images != nil {
		v.Images = slices.Clone(*p.Images)
	}
	if p.CoverImage != nil {
		v.CoverImage = *p.CoverImage
	}
	if p.Amenities != nil {
		v.Amenities = slices.Clone(*p.Amenities)
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.IsFeatured != nil {
		v.IsFeatured = *p.IsFeatured
	}
	if p.HouseRules != nil {
		v.HouseRules = *p.HouseRules
	}
	if p.OperatingHours != nil {
		v.OperatingHours = *p.OperatingHours
	}
	return v
}

// Criteria narrows the merged venue view. Zero values mean "no constraint".
type Criteria struct {
	Category    string
	MinPrice    *int64
	MaxPrice    *int64
	MinCapacity *int64
	MaxCapacity *int64
	Amenities   []string
	Featured    bool
	Query       string
	OwnerID     string
}
