package file

import (
	"context"

	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

type Repository interface {
	Create(ctx context.Context, p store.Partitions, f File) error
	GetByID(ctx context.Context, p store.Partitions, id string) (File, bool, error)
	Delete(ctx context.Context, p store.Partitions, id string) error
}

type repository struct {
	table store.Table[File]
}

// NewRepository returns a Repository over the files partition.
func NewRepository() Repository {
	return &repository{
		table: store.NewTable(store.Files, func(f File) string { return f.ID }),
	}
}

func (r *repository) Create(ctx context.Context, p store.Partitions, f File) error {
	return r.table.Append(ctx, p, f)
}

func (r *repository) GetByID(ctx context.Context, p store.Partitions, id string) (File, bool, error) {
	return r.table.Get(ctx, p, id)
}

func (r *repository) Delete(ctx context.Context, p store.Partitions, id string) error {
	_, err := r.table.Delete(ctx, p, id)
	return err
}
