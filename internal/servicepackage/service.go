package servicepackage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/venue-booking-backend/internal/metrics"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/validate"
	"github.com/nekogravitycat/venue-booking-backend/internal/pricing"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

// DeleteChecker re-validates a package deletion inside the delete transaction.
type DeleteChecker interface {
	CheckPackageDeletion(ctx context.Context, packageID string) error
}

// CheckerFactory binds a DeleteChecker to the partitions of a running transaction.
type CheckerFactory func(p store.Partitions) DeleteChecker

// Service merges seed packages with owned packages.
type Service interface {
	ListForVenue(ctx context.Context, venueID string) ([]Package, error)
	GetByID(ctx context.Context, id string) (Package, error)
	// Resolve looks a package up through the partitions of a running transaction.
	Resolve(ctx context.Context, p store.Partitions, id string) (Package, error)
	IsOwned(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, pkg Package) (Package, error)
	Update(ctx context.Context, id string, patch Patch) (Package, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	store   store.Store
	repo    Repository
	seeds   []Package
	venues  venue.Service
	checker CheckerFactory
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(st store.Store, repo Repository, seeds []Package, venues venue.Service, checker CheckerFactory, logger *slog.Logger, m *metrics.Metrics) Service {
	copied := make([]Package, len(seeds))
	for i, p := range seeds {
		copied[i] = p.clone()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:   st,
		repo:    repo,
		seeds:   copied,
		venues:  venues,
		checker: checker,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *service) all(ctx context.Context) ([]Package, error) {
	owned, err := s.repo.List(ctx, s.store)
	if err != nil {
		return nil, err
	}
	out := make([]Package, 0, len(s.seeds)+len(owned))
	for _, p := range s.seeds {
		out = append(out, p.clone())
	}
	return append(out, owned...), nil
}

func (s *service) ListForVenue(ctx context.Context, venueID string) ([]Package, error) {
	all, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Package, 0)
	for _, p := range all {
		if p.VenueID == venueID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) GetByID(ctx context.Context, id string) (Package, error) {
	return s.Resolve(ctx, s.store, id)
}

func (s *service) Resolve(ctx context.Context, p store.Partitions, id string) (Package, error) {
	if pkg, ok, err := s.repo.Get(ctx, p, id); err != nil {
		return Package{}, err
	} else if ok {
		return pkg, nil
	}
	for _, p := range s.seeds {
		if p.ID == id {
			return p.clone(), nil
		}
	}
	return Package{}, ErrNotFound
}

func (s *service) IsOwned(ctx context.Context, id string) (bool, error) {
	_, ok, err := s.repo.Get(ctx, s.store, id)
	return ok, err
}

func (s *service) Create(ctx context.Context, pkg Package) (Package, error) {
	if err := Validate(pkg); err != nil {
		return Package{}, err
	}

	now := s.now()
	pkg = pkg.clone()
	pkg.ID = uuid.NewString()
	pkg.CreatedAt = &now
	pkg.UpdatedAt = &now

	// The venue is resolved in the same transaction as the save so a concurrent
	// venue delete cannot leave the package orphaned.
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		if _, err := s.venues.Resolve(ctx, p, pkg.VenueID); err != nil {
			if errors.Is(err, venue.ErrNotFound) {
				return ErrVenueNotFound
			}
			return err
		}
		return s.repo.Save(ctx, p, pkg)
	})
	if err != nil {
		return Package{}, err
	}
	s.logger.InfoContext(ctx, "service package created", "package_id", pkg.ID, "venue_id", pkg.VenueID)
	return pkg, nil
}

// Update changes an owned package. Seed packages are read-only.
func (s *service) Update(ctx context.Context, id string, patch Patch) (Package, error) {
	var updated Package
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		existing, ok, err := s.repo.Get(ctx, p, id)
		if err != nil {
			return err
		}
		if !ok {
			return s.missing(id)
		}

		pkg := patch.Apply(existing)
		if err := Validate(pkg); err != nil {
			return err
		}
		now := s.now()
		pkg.UpdatedAt = &now
		if err := s.repo.Save(ctx, p, pkg); err != nil {
			return err
		}
		updated = pkg
		return nil
	})
	return updated, err
}

// Delete removes an owned package after re-running the deletion guard in the transaction.
func (s *service) Delete(ctx context.Context, id string) error {
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		_, owned, err := s.repo.Get(ctx, p, id)
		if err != nil {
			return err
		}
		if !owned && !s.isSeed(id) {
			return ErrNotFound
		}
		if s.checker != nil {
			if err := s.checker(p).CheckPackageDeletion(ctx, id); err != nil {
				return err
			}
		}
		_, err = s.repo.Delete(ctx, p, id)
		return err
	})
	if err != nil {
		var blocked *apperror.ConsistencyViolation
		if errors.As(err, &blocked) {
			s.metrics.DeletionBlocked("package")
			s.logger.WarnContext(ctx, "package deletion blocked", "package_id", id, "reason", blocked.Reason)
		}
		return err
	}
	s.logger.InfoContext(ctx, "service package deleted", "package_id", id)
	return nil
}

func (s *service) isSeed(id string) bool {
	for _, p := range s.seeds {
		if p.ID == id {
			return true
		}
	}
	return false
}

func (s *service) missing(id string) error {
	if s.isSeed(id) {
		return ErrSystemPackage
	}
	return ErrNotFound
}

// Validate checks field constraints. The pricing unit decides which price field is required.
func Validate(pkg Package) error {
	verr := &apperror.ValidationError{}
	if err := validate.Struct(pkg); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	if pkg.PricingUnit == pricing.UnitPerPerson && pkg.PricePerPerson <= 0 {
		verr.Add("pricePerPerson", "is required for per_person pricing")
	}
	return verr.OrNil()
}
