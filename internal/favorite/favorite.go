// Package favorite keeps each user's saved venues.
package favorite

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

type Favorite struct {
	UserID  string    `json:"userId"`
	VenueID string    `json:"venueId"`
	AddedAt time.Time `json:"addedAt"`
}

func (f Favorite) key() string { return f.UserID + "/" + f.VenueID }

type Service interface {
	Add(ctx context.Context, userID, venueID string) error
	Remove(ctx context.Context, userID, venueID string) error
	IsFavorite(ctx context.Context, userID, venueID string) (bool, error)
	ListVenues(ctx context.Context, userID string) ([]venue.Venue, error)
}

type service struct {
	store  store.Store
	table  store.Table[Favorite]
	venues venue.Service
	now    func() time.Time
}

func NewService(st store.Store, venues venue.Service) Service {
	return &service{
		store:  st,
		table:  store.NewTable(store.Favorites, Favorite.key),
		venues: venues,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Add saves venueID for userID. Adding twice is a no-op.
func (s *service) Add(ctx context.Context, userID, venueID string) error {
	if _, err := s.venues.GetByID(ctx, venueID); err != nil {
		return err
	}
	return s.store.Atomic(ctx, func(p store.Partitions) error {
		f := Favorite{UserID: userID, VenueID: venueID}
		if _, ok, err := s.table.Get(ctx, p, f.key()); err != nil || ok {
			return err
		}
		f.AddedAt = s.now()
		return s.table.Append(ctx, p, f)
	})
}

func (s *service) Remove(ctx context.Context, userID, venueID string) error {
	return s.store.Atomic(ctx, func(p store.Partitions) error {
		_, err := s.table.Delete(ctx, p, Favorite{UserID: userID, VenueID: venueID}.key())
		return err
	})
}

func (s *service) IsFavorite(ctx context.Context, userID, venueID string) (bool, error) {
	_, ok, err := s.table.Get(ctx, s.store, Favorite{UserID: userID, VenueID: venueID}.key())
	return ok, err
}

// ListVenues resolves favorites through the merged catalog in the order they were added.
// Favorites pointing at deleted venues are skipped.
func (s *service) ListVenues(ctx context.Context, userID string) ([]venue.Venue, error) {
	all, err := s.table.List(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := make([]venue.Venue, 0)
	for _, f := range all {
		if f.UserID != userID {
			continue
		}
		v, err := s.venues.GetByID(ctx, f.VenueID)
		if errors.Is(err, venue.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
