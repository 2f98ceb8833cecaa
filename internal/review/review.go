// Package review stores customer reviews and venue rating summaries.
package review

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/validate"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

var ErrAlreadyReviewed = apperror.New(http.StatusConflict, "venue already reviewed by this customer")

type Review struct {
	ID                   string    `json:"id"`
	VenueID              string    `json:"venueId"`
	CustomerID           string    `json:"customerId"`
	CustomerName         string    `json:"customerName"`
	Rating               int       `json:"rating"`
	ReviewText           string    `json:"reviewText"`
	Photos               []string  `json:"photos"`
	EventType            string    `json:"eventType,omitempty"`
	VenueQualityRating   *int      `json:"venueQualityRating,omitempty"`
	ServiceQualityRating *int      `json:"serviceQualityRating,omitempty"`
	ValueRating          *int      `json:"valueRating,omitempty"`
	CleanlinessRating    *int      `json:"cleanlinessRating,omitempty"`
	CreatedAt            time.Time `json:"createdAt"`
}

type SubmitRequest struct {
	VenueID              string   `json:"venueId" validate:"required"`
	CustomerID           string   `json:"customerId" validate:"required"`
	CustomerName         string   `json:"customerName"`
	Rating               int      `json:"rating" validate:"gte=1,lte=5"`
	ReviewText           string   `json:"reviewText" validate:"max=4000"`
	Photos               []string `json:"photos"`
	EventType            string   `json:"eventType"`
	VenueQualityRating   *int     `json:"venueQualityRating" validate:"omitempty,gte=1,lte=5"`
	ServiceQualityRating *int     `json:"serviceQualityRating" validate:"omitempty,gte=1,lte=5"`
	ValueRating          *int     `json:"valueRating" validate:"omitempty,gte=1,lte=5"`
	CleanlinessRating    *int     `json:"cleanlinessRating" validate:"omitempty,gte=1,lte=5"`
}

// Summary is a venue's average rating rounded to one decimal.
type Summary struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (Review, error)
	ListForVenue(ctx context.Context, venueID string) ([]Review, error)
	ListForCustomer(ctx context.Context, customerID string) ([]Review, error)
	HasReviewed(ctx context.Context, customerID, venueID string) (bool, error)
	AverageRating(ctx context.Context, venueID string) (Summary, error)
}

type service struct {
	store  store.Store
	table  store.Table[Review]
	venues venue.Service
	now    func() time.Time
}

func NewService(st store.Store, venues venue.Service) Service {
	return &service{
		store:  st,
		table:  store.NewTable(store.Reviews, func(r Review) string { return r.ID }),
		venues: venues,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores a review. Each customer may review a venue once.
func (s *service) Submit(ctx context.Context, req SubmitRequest) (Review, error) {
	if err := validate.Struct(req); err != nil {
		return Review{}, err
	}
	if _, err := s.venues.GetByID(ctx, req.VenueID); err != nil {
		return Review{}, err
	}

	var created Review
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		all, err := s.table.List(ctx, p)
		if err != nil {
			return err
		}
		for _, r := range all {
			if r.CustomerID == req.CustomerID && r.VenueID == req.VenueID {
				return ErrAlreadyReviewed
			}
		}

		photos := req.Photos
		if photos == nil {
			photos = []string{}
		}
		created = Review{
			ID:                   uuid.NewString(),
			VenueID:              req.VenueID,
			CustomerID:           req.CustomerID,
			CustomerName:         req.CustomerName,
			Rating:               req.Rating,
			ReviewText:           req.ReviewText,
			Photos:               photos,
			EventType:            req.EventType,
			VenueQualityRating:   req.VenueQualityRating,
			ServiceQualityRating: req.ServiceQualityRating,
			ValueRating:          req.ValueRating,
			CleanlinessRating:    req.CleanlinessRating,
			CreatedAt:            s.now(),
		}
		return s.table.Append(ctx, p, created)
	})
	if err != nil {
		return Review{}, err
	}
	return created, nil
}

func (s *service) list(ctx context.Context, keep func(Review) bool) ([]Review, error) {
	all, err := s.table.List(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := make([]Review, 0)
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *service) ListForVenue(ctx context.Context, venueID string) ([]Review, error) {
	return s.list(ctx, func(r Review) bool { return r.VenueID == venueID })
}

func (s *service) ListForCustomer(ctx context.Context, customerID string) ([]Review, error) {
	return s.list(ctx, func(r Review) bool { return r.CustomerID == customerID })
}

func (s *service) HasReviewed(ctx context.Context, customerID, venueID string) (bool, error) {
	list, err := s.list(ctx, func(r Review) bool { return r.CustomerID == customerID && r.VenueID == venueID })
	if err != nil {
		return false, err
	}
	return len(list) > 0, nil
}

func (s *service) AverageRating(ctx context.Context, venueID string) (Summary, error) {
	list, err := s.ListForVenue(ctx, venueID)
	if err != nil {
		return Summary{}, err
	}
	if len(list) == 0 {
		return Summary{}, nil
	}
	sum := 0
	for _, r := range list {
		sum += r.Rating
	}
	avg := float64(sum) / float64(len(list))
	return Summary{Average: math.Round(avg*10) / 10, Count: len(list)}, nil
}

