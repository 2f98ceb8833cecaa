package user

import (
	"context"
	"strings"

	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// Repository defines methods for accessing user data from storage.
type Repository interface {
	GetByEmail(ctx context.Context, p store.Partitions, email string) (User, bool, error)
	GetByID(ctx context.Context, p store.Partitions, id string) (User, bool, error)
	Save(ctx context.Context, p store.Partitions, u User) error
}

type partitionRepository struct {
	table store.Table[User]
}

// NewRepository returns a Repository over the users partition.
func NewRepository() Repository {
	return &partitionRepository{
		table: store.NewTable(store.Users, func(u User) string { return u.ID }),
	}
}

func (r *partitionRepository) GetByEmail(ctx context.Context, p store.Partitions, email string) (User, bool, error) {
	users, err := r.table.List(ctx, p)
	if err != nil {
		return User{}, false, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return User{}, false, nil
}

func (r *partitionRepository) GetByID(ctx context.Context, p store.Partitions, id string) (User, bool, error) {
	return r.table.Get(ctx, p, id)
}

func (r *partitionRepository) Save(ctx context.Context, p store.Partitions, u User) error {
	return r.table.Upsert(ctx, p, u)
}
