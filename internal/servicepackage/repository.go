package servicepackage

import (
	"context"

	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// Repository persists owned packages in the servicePackages partition.
type Repository interface {
	List(ctx context.Context, p store.Partitions) ([]Package, error)
	Get(ctx context.Context, p store.Partitions, id string) (Package, bool, error)
	Save(ctx context.Context, p store.Partitions, pkg Package) error
	Delete(ctx context.Context, p store.Partitions, id string) (bool, error)
	DeleteForVenue(ctx context.Context, p store.Partitions, venueID string) (int, error)
}

type partitionRepository struct {
	table store.Table[Package]
}

func NewRepository() Repository {
	return &partitionRepository{
		table: store.NewTable(store.ServicePackages, func(p Package) string { return p.ID }),
	}
}

func (r *partitionRepository) List(ctx context.Context, p store.Partitions) ([]Package, error) {
	return r.table.List(ctx, p)
}

func (r *partitionRepository) Get(ctx context.Context, p store.Partitions, id string) (Package, bool, error) {
	return r.table.Get(ctx, p, id)
}

func (r *partitionRepository) Save(ctx context.Context, p store.Partitions, pkg Package) error {
	return r.table.Upsert(ctx, p, pkg)
}

func (r *partitionRepository) Delete(ctx context.Context, p store.Partitions, id string) (bool, error) {
	return r.table.Delete(ctx, p, id)
}

func (r *partitionRepository) DeleteForVenue(ctx context.Context, p store.Partitions, venueID string) (int, error) {
	return r.table.DeleteWhere(ctx, p, func(pkg Package) bool { return pkg.VenueID == venueID })
}
