package venue

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/venue-booking-backend/internal/metrics"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/validate"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
)

// DeleteChecker re-validates a deletion against the current state inside the delete
// transaction and removes the records that cannot outlive the venue.
type DeleteChecker interface {
	CheckVenueDeletion(ctx context.Context, venueID string) error
	RemoveVenuePackages(ctx context.Context, venueID string) (int, error)
}

// CheckerFactory binds a DeleteChecker to the partitions of a running transaction.
type CheckerFactory func(p store.Partitions) DeleteChecker

// Service is the merged venue catalog: seed venues overlaid with owned records.
type Service interface {
	GetAll(ctx context.Context) ([]Venue, error)
	GetRecords(ctx context.Context) ([]Record, error)
	GetByID(ctx context.Context, id string) (Venue, error)
	GetRecord(ctx context.Context, id string) (Record, error)
	// Resolve looks a venue up through the partitions of a running transaction.
	Resolve(ctx context.Context, p store.Partitions, id string) (Venue, error)
	Create(ctx context.Context, ownerID string, v Venue) (Venue, error)
	Update(ctx context.Context, actorID, id string, patch Patch) (Venue, error)
	Delete(ctx context.Context, id string) error
	AddImage(ctx context.Context, actorID, id, url string) (Venue, error)
	FilterByCategory(ctx context.Context, category string) ([]Venue, error)
	Filter(ctx context.Context, c Criteria) ([]Venue, error)
	Search(ctx context.Context, query string) ([]Venue, error)
	Featured(ctx context.Context) ([]Venue, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Venue, error)
}

type service struct {
	store   store.Store
	repo    Repository
	seeds   []Venue
	checker CheckerFactory
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewService creates the catalog. seeds are copied and never modified afterwards.
func NewService(st store.Store, repo Repository, seeds []Venue, checker CheckerFactory, logger *slog.Logger, m *metrics.Metrics) Service {
	copied := make([]Venue, len(seeds))
	for i, v := range seeds {
		copied[i] = v.Clone()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:   st,
		repo:    repo,
		seeds:   copied,
		checker: checker,
		logger:  logger,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// merge overlays owned records onto the seeds. Shadowed seeds keep their position;
// owner-created venues follow in partition order.
func (s *service) merge(owned []Venue) []Record {
	byID := make(map[string]Venue, len(owned))
	for _, v := range owned {
		byID[v.ID] = v
	}

	out := make([]Record, 0, len(s.seeds)+len(owned))
	seen := make(map[string]bool, len(s.seeds))
	for _, seed := range s.seeds {
		seen[seed.ID] = true
		if v, ok := byID[seed.ID]; ok {
			out = append(out, Record{Origin: OriginOwned, Venue: v})
			continue
		}
		out = append(out, Record{Origin: OriginSeed, Venue: seed.Clone()})
	}
	for _, v := range owned {
		if !seen[v.ID] {
			out = append(out, Record{Origin: OriginOwned, Venue: v})
		}
	}
	return out
}

func (s *service) seed(id string) (Venue, bool) {
	for _, v := range s.seeds {
		if v.ID == id {
			return v.Clone(), true
		}
	}
	return Venue{}, false
}

// lookup prefers the owned record and falls back to the seed.
func (s *service) lookup(ctx context.Context, p store.Partitions, id string) (Record, error) {
	v, ok, err := s.repo.Get(ctx, p, id)
	if err != nil {
		return Record{}, err
	}
	if ok {
		return Record{Origin: OriginOwned, Venue: v}, nil
	}
	if seed, ok := s.seed(id); ok {
		return Record{Origin: OriginSeed, Venue: seed}, nil
	}
	return Record{}, ErrNotFound
}

func (s *service) GetRecords(ctx context.Context) ([]Record, error) {
	owned, err := s.repo.List(ctx, s.store)
	if err != nil {
		return nil, err
	}
	return s.merge(owned), nil
}

func (s *service) GetAll(ctx context.Context) ([]Venue, error) {
	records, err := s.GetRecords(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Venue, len(records))
	for i, r := range records {
		out[i] = r.Venue
	}
	return out, nil
}

func (s *service) GetRecord(ctx context.Context, id string) (Record, error) {
	return s.lookup(ctx, s.store, id)
}

func (s *service) GetByID(ctx context.Context, id string) (Venue, error) {
	return s.Resolve(ctx, s.store, id)
}

func (s *service) Resolve(ctx context.Context, p store.Partitions, id string) (Venue, error) {
	r, err := s.lookup(ctx, p, id)
	if err != nil {
		return Venue{}, err
	}
	return r.Venue, nil
}

// promote returns the venue to write back for rec. An ownerless seed is claimed by
// the acting user.
func promote(rec Record, actorID string) Venue {
	v := rec.Venue
	if !rec.Owned() && v.OwnerID == "" {
		v.OwnerID = actorID
	}
	return v
}

func (s *service) logPromotion(ctx context.Context, rec Record, v Venue) {
	if !rec.Owned() {
		s.logger.InfoContext(ctx, "seed venue promoted to owned record", "venue_id", v.ID, "owner_id", v.OwnerID)
	}
}

func (s *service) Create(ctx context.Context, ownerID string, v Venue) (Venue, error) {
	now := s.now()
	v = v.Clone()
	v.ID = uuid.NewString()
	v.OwnerID = ownerID
	v.Rating = 0
	v.TotalReviews = 0
	v.CreatedAt = &now
	v.UpdatedAt = &now
	normalize(&v)

	if err := Validate(v); err != nil {
		return Venue{}, err
	}

	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		return s.repo.Save(ctx, p, v)
	})
	if err != nil {
		return Venue{}, err
	}
	s.logger.InfoContext(ctx, "venue created", "venue_id", v.ID, "owner_id", ownerID)
	return v, nil
}

// Update merges patch into the owned record. A seed venue is promoted to an owned
// copy with the same id; the seed itself stays as it was.
func (s *service) Update(ctx context.Context, actorID, id string, patch Patch) (Venue, error) {
	var updated Venue
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		rec, err := s.lookup(ctx, p, id)
		if err != nil {
			return err
		}

		v := patch.Apply(promote(rec, actorID))
		now := s.now()
		v.UpdatedAt = &now
		if v.CreatedAt == nil {
			v.CreatedAt = &now
		}
		normalize(&v)
		if err := Validate(v); err != nil {
			return err
		}

		if err := s.repo.Save(ctx, p, v); err != nil {
			return err
		}
		s.logPromotion(ctx, rec, v)
		updated = v
		return nil
	})
	if err != nil {
		return Venue{}, err
	}
	return updated, nil
}

// Delete removes an owned venue. The deletion guard runs again inside the transaction.
// Deleting the owned copy of a seed venue makes the seed visible again with its
// packages; any other venue takes its owner-created packages with it.
func (s *service) Delete(ctx context.Context, id string) error {
	removed := 0
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		if _, err := s.lookup(ctx, p, id); err != nil {
			return err
		}
		if s.checker != nil {
			checker := s.checker(p)
			if _, isSeed := s.seed(id); !isSeed {
				n, err := checker.RemoveVenuePackages(ctx, id)
				if err != nil {
					return err
				}
				removed = n
			}
			if err := checker.CheckVenueDeletion(ctx, id); err != nil {
				return err
			}
		}
		_, err := s.repo.Delete(ctx, p, id)
		return err
	})
	if err != nil {
		var blocked *apperror.ConsistencyViolation
		if errors.As(err, &blocked) {
			s.metrics.DeletionBlocked("venue")
			s.logger.WarnContext(ctx, "venue deletion blocked", "venue_id", id, "reason", blocked.Reason)
		}
		return err
	}
	s.logger.InfoContext(ctx, "venue deleted", "venue_id", id, "packages_removed", removed)
	return nil
}

// AddImage appends url to the venue's images, promoting a seed venue if needed.
func (s *service) AddImage(ctx context.Context, actorID, id, url string) (Venue, error) {
	var updated Venue
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		rec, err := s.lookup(ctx, p, id)
		if err != nil {
			return err
		}
		v := promote(rec, actorID)
		if !slices.Contains(v.Images, url) {
			v.Images = append(v.Images, url)
		}
		now := s.now()
		v.UpdatedAt = &now
		normalize(&v)
		if err := s.repo.Save(ctx, p, v); err != nil {
			return err
		}
		s.logPromotion(ctx, rec, v)
		updated = v
		return nil
	})
	return updated, err
}

func (s *service) Filter(ctx context.Context, c Criteria) ([]Venue, error) {
	all, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(all, c), nil
}

// FilterByCategory returns every venue for "all" or an empty category.
func (s *service) FilterByCategory(ctx context.Context, category string) ([]Venue, error) {
	return s.Filter(ctx, Criteria{Category: category})
}

func (s *service) Search(ctx context.Context, query string) ([]Venue, error) {
	return s.Filter(ctx, Criteria{Query: query})
}

func (s *service) Featured(ctx context.Context) ([]Venue, error) {
	return s.Filter(ctx, Criteria{Featured: true})
}

func (s *service) ListByOwner(ctx context.Context, ownerID string) ([]Venue, error) {
	if ownerID == "" {
		return []Venue{}, nil
	}
	return s.Filter(ctx, Criteria{OwnerID: ownerID})
}

// normalize defaults the cover image to the first image.
func normalize(v *Venue) {
	if v.Images == nil {
		v.Images = []string{}
	}
	if v.Amenities == nil {
		v.Amenities = []string{}
	}
	if v.CoverImage == "" && len(v.Images) > 0 {
		v.CoverImage = v.Images[0]
	}
}

// Validate checks field constraints and that the cover image is one of the images.
func Validate(v Venue) error {
	verr := &apperror.ValidationError{}
	if err := validate.Struct(v); err != nil {
		if !errors.As(err, &verr) {
			return err
		}
	}
	if v.CoverImage != "" && !slices.Contains(v.Images, v.CoverImage) {
		verr.Add("coverImage", "must be one of images")
	}
	return verr.OrNil()
}
