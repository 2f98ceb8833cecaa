package booking

import (
	"context"
	"time"

	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// idempotencyRecord maps a client-supplied key to the booking it created.
type idempotencyRecord struct {
	Key        string    `json:"key"`
	CustomerID string    `json:"customerId"`
	BookingID  string    `json:"bookingId"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (r idempotencyRecord) id() string {
	return r.CustomerID + "/" + r.Key
}

// Repository persists bookings in the bookings partition.
type Repository interface {
	List(ctx context.Context, p store.Partitions, filter Filter) ([]Booking, error)
	Get(ctx context.Context, p store.Partitions, id string) (Booking, bool, error)
	Save(ctx context.Context, p store.Partitions, b Booking) error
	ReferenceExists(ctx context.Context, p store.Partitions, ref string) (bool, error)

	// FindByIdempotencyKey returns the booking id previously created with key by customerID.
	FindByIdempotencyKey(ctx context.Context, p store.Partitions, customerID, key string) (string, bool, error)
	SaveIdempotencyKey(ctx context.Context, p store.Partitions, customerID, key, bookingID string, at time.Time) error
}

type partitionRepository struct {
	bookings store.Table[Booking]
	keys     store.Table[idempotencyRecord]
}

func NewRepository() Repository {
	return &partitionRepository{
		bookings: store.NewTable(store.Bookings, func(b Booking) string { return b.ID }),
		keys:     store.NewTable(store.Idempotency, idempotencyRecord.id),
	}
}

func (r *partitionRepository) List(ctx context.Context, p store.Partitions, filter Filter) ([]Booking, error) {
	all, err := r.bookings.List(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]Booking, 0, len(all))
	for _, b := range all {
		if filter.Matches(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *partitionRepository) Get(ctx context.Context, p store.Partitions, id string) (Booking, bool, error) {
	return r.bookings.Get(ctx, p, id)
}

func (r *partitionRepository) Save(ctx context.Context, p store.Partitions, b Booking) error {
	return r.bookings.Upsert(ctx, p, b)
}

func (r *partitionRepository) ReferenceExists(ctx context.Context, p store.Partitions, ref string) (bool, error) {
	all, err := r.bookings.List(ctx, p)
	if err != nil {
		return false, err
	}
	for _, b := range all {
		if b.Reference == ref {
			return true, nil
		}
	}
	return false, nil
}

func (r *partitionRepository) FindByIdempotencyKey(ctx context.Context, p store.Partitions, customerID, key string) (string, bool, error) {
	rec, ok, err := r.keys.Get(ctx, p, idempotencyRecord{Key: key, CustomerID: customerID}.id())
	if err != nil || !ok {
		return "", false, err
	}
	return rec.BookingID, true, nil
}

func (r *partitionRepository) SaveIdempotencyKey(ctx context.Context, p store.Partitions, customerID, key, bookingID string, at time.Time) error {
	return r.keys.Upsert(ctx, p, idempotencyRecord{
		Key:        key,
		CustomerID: customerID,
		BookingID:  bookingID,
		CreatedAt:  at,
	})
}
