// Package guard answers whether venues and service packages may be deleted and
// clears the packages a deleted venue leaves behind.
//
// The same checks run twice: once for display (CanDelete*) and again inside the
// delete transaction (Check*), so a stale answer never lets a delete through.
package guard

import (
	"context"
	"fmt"

	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

const (
	ReasonSystemVenue   = "system venue"
	ReasonSystemPackage = "system package"
	ReasonPackageInUse  = "used in existing bookings"
)

// Result is the answer to "can this record be deleted".
type Result struct {
	CanDelete bool   `json:"canDelete"`
	Reason    string `json:"reason,omitempty"`
}

func allowed() Result { return Result{CanDelete: true} }

func blocked(reason string) Result { return Result{CanDelete: false, Reason: reason} }

// Guard evaluates deletion rules against one view of the partitions.
type Guard struct {
	p        store.Partitions
	bookings booking.Repository
	venues   venue.Repository
	packages servicepackage.Repository
}

// New returns a Guard reading from p. Pass the Store for display checks and the
// transaction's Partitions when re-checking inside Atomic.
func New(p store.Partitions) *Guard {
	return &Guard{
		p:        p,
		bookings: booking.NewRepository(),
		venues:   venue.NewRepository(),
		packages: servicepackage.NewRepository(),
	}
}

// CanDeleteVenue blocks venues with any booking, then venues that are not owned records.
func (g *Guard) CanDeleteVenue(ctx context.Context, venueID string) (Result, error) {
	list, err := g.bookings.List(ctx, g.p, booking.Filter{VenueID: venueID})
	if err != nil {
		return Result{}, err
	}
	if n := len(list); n > 0 {
		return blocked(fmt.Sprintf("has %d existing booking(s)", n)), nil
	}

	_, owned, err := g.venues.Get(ctx, g.p, venueID)
	if err != nil {
		return Result{}, err
	}
	if !owned {
		return blocked(ReasonSystemVenue), nil
	}
	return allowed(), nil
}

// CanDeletePackage blocks packages referenced by any booking, then packages that are not owned.
func (g *Guard) CanDeletePackage(ctx context.Context, packageID string) (Result, error) {
	list, err := g.bookings.List(ctx, g.p, booking.Filter{PackageID: packageID})
	if err != nil {
		return Result{}, err
	}
	if len(list) > 0 {
		return blocked(ReasonPackageInUse), nil
	}

	_, owned, err := g.packages.Get(ctx, g.p, packageID)
	if err != nil {
		return Result{}, err
	}
	if !owned {
		return blocked(ReasonSystemPackage), nil
	}
	return allowed(), nil
}

// CheckVenueDeletion is CanDeleteVenue as an error: a blocked delete yields a ConsistencyViolation.
func (g *Guard) CheckVenueDeletion(ctx context.Context, venueID string) error {
	return asError(g.CanDeleteVenue(ctx, venueID))
}

// RemoveVenuePackages deletes the owned packages of venueID. It runs in the venue
// delete transaction before the booking check so the package partition is
// locked ahead of the bookings.
func (g *Guard) RemoveVenuePackages(ctx context.Context, venueID string) (int, error) {
	return g.packages.DeleteForVenue(ctx, g.p, venueID)
}

// CheckPackageDeletion is CanDeletePackage as an error.
func (g *Guard) CheckPackageDeletion(ctx context.Context, packageID string) error {
	return asError(g.CanDeletePackage(ctx, packageID))
}

func asError(r Result, err error) error {
	if err != nil {
		return err
	}
	if !r.CanDelete {
		return apperror.Consistency(r.Reason)
	}
	return nil
}

// VenueChecker adapts New to venue.CheckerFactory.
func VenueChecker(p store.Partitions) venue.DeleteChecker { return New(p) }

// PackageChecker adapts New to servicepackage.CheckerFactory.
func PackageChecker(p store.Partitions) servicepackage.DeleteChecker { return New(p) }
