package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/venue-booking-backend/internal/metrics"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/validate"
	"github.com/nekogravitycat/venue-booking-backend/internal/pricing"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

const (
	referencePrefix   = "BKL"
	referenceModulo   = 100_000_000
	referenceAttempts = 1000
)

type QuoteRequest struct {
	VenueID    string   `json:"venueId" validate:"required"`
	GuestCount int      `json:"guestCount" validate:"min=1"`
	Services   []string `json:"services"`
}

type CreateRequest struct {
	CustomerID      string        `json:"customerId" validate:"required"`
	VenueID         string        `json:"venueId" validate:"required"`
	EventName       string        `json:"eventName" validate:"required"`
	EventType       EventType     `json:"eventType" validate:"omitempty,oneof=wedding birthday corporate conference other"`
	EventDate       string        `json:"eventDate" validate:"required,datetime=2006-01-02"`
	StartTime       string        `json:"startTime" validate:"required,datetime=15:04"`
	EndTime         string        `json:"endTime" validate:"required,datetime=15:04,timeafter=StartTime"`
	GuestCount      int           `json:"guestCount" validate:"min=1"`
	Services        []string      `json:"services"`
	SpecialRequests string        `json:"specialRequests" validate:"max=2000"`
	Status          Status        `json:"status" validate:"omitempty,oneof=pending confirmed"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" validate:"omitempty,oneof=unpaid deposit_paid fully_paid"`

	// IdempotencyKey makes retries of the same request return the first booking.
	IdempotencyKey string `json:"-"`
}

type Service interface {
	Quote(ctx context.Context, req QuoteRequest) (pricing.Breakdown, error)
	Create(ctx context.Context, req CreateRequest) (Booking, error)
	GetByID(ctx context.Context, id string) (Booking, error)
	Cancel(ctx context.Context, id, reason string) (bool, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Booking, error)
	RecordPayment(ctx context.Context, id string, status PaymentStatus) (Booking, error)
	ListForCustomer(ctx context.Context, customerID string, bucket Bucket) ([]Booking, error)
	ListForVenue(ctx context.Context, venueID string) ([]Booking, error)
	OwnerStats(ctx context.Context, venueIDs []string) (Stats, error)
	Classify(b Booking) Bucket
}

// Deps are the collaborators of the booking service. Logger, Metrics, Now and
// Location are optional.
type Deps struct {
	Store    store.Store
	Repo     Repository
	Venues   venue.Service
	Packages servicepackage.Service
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Now      func() time.Time
	Location *time.Location
}

type service struct {
	store    store.Store
	repo     Repository
	venues   venue.Service
	packages servicepackage.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
	loc      *time.Location
}

func NewService(d Deps) Service {
	s := &service{
		store:    d.Store,
		repo:     d.Repo,
		venues:   d.Venues,
		packages: d.Packages,
		logger:   d.Logger,
		metrics:  d.Metrics,
		now:      d.Now,
		loc:      d.Location,
	}
	if s.repo == nil {
		s.repo = NewRepository()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	return s
}

// Quote prices a prospective booking. The venue price is the minimum of its price range.
func (s *service) Quote(ctx context.Context, req QuoteRequest) (pricing.Breakdown, error) {
	if err := validate.Struct(req); err != nil {
		return pricing.Breakdown{}, err
	}
	return s.quote(ctx, s.store, req.VenueID, req.GuestCount, req.Services)
}

// quote resolves the venue and packages through p, so Create prices against the
// same view it writes to.
func (s *service) quote(ctx context.Context, p store.Partitions, venueID string, guests int, services []string) (pricing.Breakdown, error) {
	v, err := s.venues.Resolve(ctx, p, venueID)
	if err != nil {
		if errors.Is(err, venue.ErrNotFound) {
			return pricing.Breakdown{}, ErrVenueNotFound
		}
		return pricing.Breakdown{}, err
	}

	items := make([]pricing.LineItem, 0, len(services))
	for _, id := range dedupe(services) {
		pkg, err := s.packages.Resolve(ctx, p, id)
		if err != nil {
			if errors.Is(err, servicepackage.ErrNotFound) {
				return pricing.Breakdown{}, ErrPackageNotFound
			}
			return pricing.Breakdown{}, err
		}
		if pkg.VenueID != v.ID {
			return pricing.Breakdown{}, ErrPackageNotForVenue
		}
		items = append(items, pkg.LineItem(guests))
	}
	return pricing.Calculate(v.BasePrice(), items), nil
}

// Create validates req, prices it server-side and stores the booking with a fresh reference.
func (s *service) Create(ctx context.Context, req CreateRequest) (Booking, error) {
	if err := validate.Struct(req); err != nil {
		return Booking{}, err
	}

	services := dedupe(req.Services)
	status := req.Status
	if status == "" {
		status = StatusPending
	}
	payment := req.PaymentStatus
	if payment == "" {
		payment = PaymentUnpaid
	}
	eventType := req.EventType
	if eventType == "" {
		eventType = EventOther
	}

	var (
		created Booking
		replay  bool
	)
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		quote, err := s.quote(ctx, p, req.VenueID, req.GuestCount, services)
		if err != nil {
			return err
		}

		if req.IdempotencyKey != "" {
			id, ok, err := s.repo.FindByIdempotencyKey(ctx, p, req.CustomerID, req.IdempotencyKey)
			if err != nil {
				return err
			}
			if ok {
				existing, found, err := s.repo.Get(ctx, p, id)
				if err != nil {
					return err
				}
				if found {
					created, replay = existing, true
					return nil
				}
			}
		}

		now := s.now()
		ref, err := s.nextReference(ctx, p, now)
		if err != nil {
			return err
		}

		created = Booking{
			ID:              uuid.NewString(),
			Reference:       ref,
			CustomerID:      req.CustomerID,
			VenueID:         req.VenueID,
			EventName:       req.EventName,
			EventType:       eventType,
			EventDate:       req.EventDate,
			StartTime:       req.StartTime,
			EndTime:         req.EndTime,
			GuestCount:      req.GuestCount,
			Services:        services,
			TotalAmount:     quote.Total,
			DepositAmount:   quote.Deposit,
			BalanceAmount:   quote.Balance,
			Status:          status,
			PaymentStatus:   payment,
			SpecialRequests: req.SpecialRequests,
			CreatedAt:       now,
		}
		if err := s.repo.Save(ctx, p, created); err != nil {
			return err
		}
		if req.IdempotencyKey != "" {
			return s.repo.SaveIdempotencyKey(ctx, p, req.CustomerID, req.IdempotencyKey, created.ID, now)
		}
		return nil
	})
	if err != nil {
		return Booking{}, err
	}

	if replay {
		s.logger.InfoContext(ctx, "booking create replayed", "booking_id", created.ID, "customer_id", created.CustomerID)
		return created, nil
	}
	s.metrics.BookingCreated()
	s.logger.InfoContext(ctx, "booking created",
		"booking_id", created.ID,
		"reference", created.Reference,
		"venue_id", created.VenueID,
		"status", created.Status,
		"total", created.TotalAmount,
	)
	return created, nil
}

// nextReference derives BKL + 8 digits from the clock and steps past any reference in use.
func (s *service) nextReference(ctx context.Context, p store.Partitions, now time.Time) (string, error) {
	n := now.UnixMilli() % referenceModulo
	for range referenceAttempts {
		ref := fmt.Sprintf("%s%08d", referencePrefix, n)
		exists, err := s.repo.ReferenceExists(ctx, p, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
		n = (n + 1) % referenceModulo
	}
	return "", ErrReferenceUnavailable
}

func (s *service) GetByID(ctx context.Context, id string) (Booking, error) {
	b, ok, err := s.repo.Get(ctx, s.store, id)
	if err != nil {
		return Booking{}, err
	}
	if !ok {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

// Cancel reports false without error when the booking does not exist.
// Completed and already cancelled bookings return ErrInvalidTransition.
func (s *service) Cancel(ctx context.Context, id, reason string) (bool, error) {
	_, err := s.transition(ctx, id, StatusCancelled, reason)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *service) UpdateStatus(ctx context.Context, id string, status Status) (Booking, error) {
	if !status.Valid() {
		return Booking{}, ErrInvalidStatus
	}
	return s.transition(ctx, id, status, "")
}

func (s *service) transition(ctx context.Context, id string, next Status, reason string) (Booking, error) {
	var (
		updated Booking
		from    Status
	)
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		b, ok, err := s.repo.Get(ctx, p, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if !b.Status.CanTransition(next) {
			return ErrInvalidTransition
		}

		now := s.now()
		from = b.Status
		b.Status = next
		b.UpdatedAt = &now
		if next == StatusCancelled {
			b.CancelledAt = &now
			b.CancellationReason = reason
		}
		if err := s.repo.Save(ctx, p, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			s.logger.WarnContext(ctx, "booking transition rejected", "booking_id", id, "to", next)
		}
		return Booking{}, err
	}

	if next == StatusCancelled {
		s.metrics.BookingCancelled()
	}
	s.metrics.BookingStatusChanged(string(next))
	s.logger.InfoContext(ctx, "booking status changed", "booking_id", id, "from", from, "to", next)
	return updated, nil
}

// RecordPayment moves the payment status forward. A refund is only possible for a
// cancelled booking that had been paid.
func (s *service) RecordPayment(ctx context.Context, id string, status PaymentStatus) (Booking, error) {
	if !status.Valid() || status == PaymentUnpaid {
		return Booking{}, ErrInvalidPayment
	}

	var updated Booking
	err := s.store.Atomic(ctx, func(p store.Partitions) error {
		b, ok, err := s.repo.Get(ctx, p, id)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNotFound
		}
		if !canPay(b, status) {
			return ErrInvalidPaymentTransition
		}

		now := s.now()
		b.PaymentStatus = status
		b.UpdatedAt = &now
		if err := s.repo.Save(ctx, p, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return Booking{}, err
	}
	s.logger.InfoContext(ctx, "booking payment recorded", "booking_id", id, "payment_status", status)
	return updated, nil
}

func canPay(b Booking, next PaymentStatus) bool {
	switch next {
	case PaymentDepositPaid:
		return b.PaymentStatus == PaymentUnpaid && !b.Status.Terminal()
	case PaymentFullyPaid:
		return (b.PaymentStatus == PaymentUnpaid || b.PaymentStatus == PaymentDepositPaid) &&
			b.Status != StatusCancelled
	case PaymentRefunded:
		return b.Status == StatusCancelled &&
			(b.PaymentStatus == PaymentDepositPaid || b.PaymentStatus == PaymentFullyPaid)
	}
	return false
}

// Classify places b in exactly one bucket relative to the service clock.
func (s *service) Classify(b Booking) Bucket {
	return Classify(b, s.now(), s.loc)
}

// Classify places b in exactly one bucket. Cancelled wins over everything, so a
// cancelled future booking is never upcoming. Completed bookings and bookings whose
// start has passed are past; everything else is upcoming.
func Classify(b Booking, now time.Time, loc *time.Location) Bucket {
	if b.Status == StatusCancelled {
		return BucketCancelled
	}
	if b.Status == StatusCompleted {
		return BucketPast
	}
	start, ok := b.EventStart(loc)
	if !ok || !start.After(now) {
		return BucketPast
	}
	return BucketUpcoming
}

func (s *service) ListForCustomer(ctx context.Context, customerID string, bucket Bucket) ([]Booking, error) {
	if !bucket.Valid() {
		return nil, ErrInvalidBucket
	}
	all, err := s.repo.List(ctx, s.store, Filter{CustomerID: customerID})
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]Booking, 0, len(all))
	for _, b := range all {
		if Classify(b, now, s.loc) == bucket {
			out = append(out, b)
		}
	}

	start := func(b Booking) time.Time {
		t, _ := b.EventStart(s.loc)
		return t
	}
	switch bucket {
	case BucketUpcoming:
		sort.SliceStable(out, func(i, j int) bool { return start(out[i]).Before(start(out[j])) })
	case BucketPast:
		sort.SliceStable(out, func(i, j int) bool { return start(out[i]).After(start(out[j])) })
	case BucketCancelled:
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	}
	return out, nil
}

func (s *service) ListForVenue(ctx context.Context, venueID string) ([]Booking, error) {
	return s.repo.List(ctx, s.store, Filter{VenueID: venueID})
}

// OwnerStats aggregates the bookings of venueIDs. Revenue counts confirmed and completed bookings.
func (s *service) OwnerStats(ctx context.Context, venueIDs []string) (Stats, error) {
	var stats Stats
	if len(venueIDs) == 0 {
		return stats, nil
	}
	all, err := s.repo.List(ctx, s.store, Filter{VenueIDs: venueIDs})
	if err != nil {
		return stats, err
	}

	for _, b := range all {
		stats.TotalBookings++
		switch b.Status {
		case StatusPending:
			stats.Pending++
		case StatusConfirmed:
			stats.Confirmed++
			stats.Revenue += b.TotalAmount
		case StatusCompleted:
			stats.Completed++
			stats.Revenue += b.TotalAmount
		case StatusCancelled:
			stats.Cancelled++
		}
	}
	return stats, nil
}

// dedupe drops repeated package ids, keeping first occurrence order.
func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" && !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}
