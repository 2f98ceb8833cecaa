// Package store persists the application's named record partitions.
//
// Every partition holds an ordered JSON array of records. Services never touch
// a backend directly: they receive a Store, read and write whole partitions, and
// wrap read-validate-write sequences in Atomic.
package store

import (
	"context"
	"errors"
)

// Partition names.
const (
	Bookings        = "bookings"
	UserVenues      = "userVenues"
	ServicePackages = "servicePackages"
	Favorites       = "favorites"
	Reviews         = "reviews"
	Users           = "users"
	Files           = "files"
	Idempotency     = "idempotency"
)

// ErrUnknownDriver is returned by callers that pick a backend by name.
var ErrUnknownDriver = errors.New("unknown store driver")

// Partitions reads and writes whole partitions.
type Partitions interface {
	// Load decodes the named partition into dst, which must be a pointer to a slice.
	// A partition that was never written leaves dst untouched.
	Load(ctx context.Context, name string, dst any) error

	// Save replaces the named partition with v.
	Save(ctx context.Context, name string, v any) error
}

// Store is a Partitions with a transaction boundary.
type Store interface {
	Partitions

	// Atomic runs fn with exclusive access to the store. Writes made through p are
	// committed only when fn returns nil.
	Atomic(ctx context.Context, fn func(p Partitions) error) error
}
