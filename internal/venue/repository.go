package venue

import (
	"context"

	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// Repository persists owned venue records in the userVenues partition.
// Seed venues never pass through it.
type Repository interface {
	List(ctx context.Context, p store.Partitions) ([]Venue, error)
	Get(ctx context.Context, p store.Partitions, id string) (Venue, bool, error)
	Save(ctx context.Context, p store.Partitions, v Venue) error
	Delete(ctx context.Context, p store.Partitions, id string) (bool, error)
}

type partitionRepository struct {
	table store.Table[Venue]
}

// NewRepository returns a Repository over the userVenues partition.
func NewRepository() Repository {
	return &partitionRepository{
		table: store.NewTable(store.UserVenues, func(v Venue) string { return v.ID }),
	}
}

func (r *partitionRepository) List(ctx context.Context, p store.Partitions) ([]Venue, error) {
	return r.table.List(ctx, p)
}

func (r *partitionRepository) Get(ctx context.Context, p store.Partitions, id string) (Venue, bool, error) {
	return r.table.Get(ctx, p, id)
}

func (r *partitionRepository) Save(ctx context.Context, p store.Partitions, v Venue) error {
	return r.table.Upsert(ctx, p, v)
}

func (r *partitionRepository) Delete(ctx context.Context, p store.Partitions, id string) (bool, error) {
	return r.table.Delete(ctx, p, id)
}
