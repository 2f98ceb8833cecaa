package booking_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
	"github.com/nekogravitycat/venue-booking-backend/internal/catalog"
	"github.com/nekogravitycat/venue-booking-backend/internal/guard"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/venue-booking-backend/internal/pricing"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

var now = time.Date(2030, time.June, 15, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    store.Store
	bookings booking.Service
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)

	st := store.NewMemoryStore()
	venues := venue.NewService(st, venue.NewRepository(), c.Venues, guard.VenueChecker, nil, nil)
	packages := servicepackage.NewService(st, servicepackage.NewRepository(), c.Packages, venues, guard.PackageChecker, nil, nil)

	clock := now
	f := &fixture{store: st, clock: &clock}
	f.bookings = booking.NewService(booking.Deps{
		Store:    st,
		Venues:   venues,
		Packages: packages,
		Now:      func() time.Time { return *f.clock },
	})
	return f
}

func validRequest() booking.CreateRequest {
	return booking.CreateRequest{
		CustomerID: "cust1",
		VenueID:    "v1",
		EventName:  "Santos Wedding",
		EventType:  booking.EventWedding,
		EventDate:  "2030-07-01",
		StartTime:  "16:00",
		EndTime:    "22:00",
		GuestCount: 50,
		Services:   []string{"sp1"},
	}
}

func TestQuote_Scenario(t *testing.T) {
	f := newFixture(t)
	q, err := f.bookings.Quote(context.Background(), booking.QuoteRequest{VenueID: "v1", GuestCount: 50, Services: []string{"sp1"}})
	require.NoError(t, err)

	require.Len(t, q.Items, 1)
	assert.Equal(t, int64(25000), q.Items[0].Amount)
	assert.Equal(t, int64(45000), q.Subtotal)
	assert.Equal(t, int64(2250), q.ServiceFee)
	assert.Equal(t, int64(47250), q.Total)
	assert.Equal(t, int64(14175), q.Deposit)
	assert.Equal(t, int64(33075), q.Balance)
}

func TestQuote_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.bookings.Quote(ctx, booking.QuoteRequest{VenueID: "nope", GuestCount: 1})
	assert.ErrorIs(t, err, booking.ErrVenueNotFound)

	_, err = f.bookings.Quote(ctx, booking.QuoteRequest{VenueID: "v1", GuestCount: 1, Services: []string{"missing"}})
	assert.ErrorIs(t, err, booking.ErrPackageNotFound)

	_, err = f.bookings.Quote(ctx, booking.QuoteRequest{VenueID: "v1", GuestCount: 1, Services: []string{"sp4"}})
	assert.ErrorIs(t, err, booking.ErrPackageNotForVenue)
}

func TestCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	b, err := f.bookings.Create(ctx, validRequest())
	require.NoError(t, err)

	assert.NotEmpty(t, b.ID)
	assert.Regexp(t, `^BKL\d{8}$`, b.Reference)
	assert.Equal(t, now, b.CreatedAt)
	assert.Equal(t, booking.StatusPending, b.Status)
	assert.Equal(t, booking.PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, int64(47250), b.TotalAmount)
	assert.Equal(t, int64(14175), b.DepositAmount)
	assert.Equal(t, b.TotalAmount, b.DepositAmount+b.BalanceAmount)

	got, err := f.bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestCreate_CallerSuppliedStatus(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.Status = booking.StatusConfirmed
	req.PaymentStatus = booking.PaymentDepositPaid

	b, err := f.bookings.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	assert.Equal(t, booking.PaymentDepositPaid, b.PaymentStatus)
}

func TestCreate_GuestCountZero(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.GuestCount = 0

	_, err := f.bookings.Create(context.Background(), req)

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("guestCount"))
}

func TestCreate_MissingFields(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.Create(context.Background(), booking.CreateRequest{
		CustomerID: "cust1",
		VenueID:    "v1",
		GuestCount: 10,
		StartTime:  "4pm",
	})

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"eventName", "eventDate", "startTime", "endTime"} {
		assert.True(t, verr.Has(field), field)
	}
	assert.False(t, verr.Has("guestCount"))
}

func TestCreate_UniqueReferencesUnderSameClock(t *testing.T) {
	f := newFixture(t)
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		b, err := f.bookings.Create(context.Background(), validRequest())
		require.NoError(t, err)
		assert.False(t, seen[b.Reference], "duplicate reference %s", b.Reference)
		seen[b.Reference] = true
	}
	assert.Len(t, seen, 5)
}

func TestCreate_IdempotencyKey(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := validRequest()
	req.IdempotencyKey = "retry-1"

	first, err := f.bookings.Create(ctx, req)
	require.NoError(t, err)
	second, err := f.bookings.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	other := req
	other.CustomerID = "cust2"
	third, err := f.bookings.Create(ctx, other)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID, "keys are scoped per customer")

	list, err := f.bookings.ListForVenue(ctx, "v1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown id returns false", func(t *testing.T) {
		f := newFixture(t)
		ok, err := f.bookings.Cancel(ctx, "does-not-exist", "")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("stamps time and reason", func(t *testing.T) {
		f := newFixture(t)
		b, err := f.bookings.Create(ctx, validRequest())
		require.NoError(t, err)

		*f.clock = now.Add(time.Hour)
		ok, err := f.bookings.Cancel(ctx, b.ID, "venue double-booked")
		require.NoError(t, err)
		assert.True(t, ok)

		got, err := f.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, booking.StatusCancelled, got.Status)
		assert.Equal(t, "venue double-booked", got.CancellationReason)
		require.NotNil(t, got.CancelledAt)
		assert.Equal(t, now.Add(time.Hour), *got.CancelledAt)
		assert.Equal(t, b.DepositAmount, got.DepositAmount, "money fields are immutable")

		ok, err = f.bookings.Cancel(ctx, b.ID, "again")
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.False(t, ok)
	})

	t.Run("completed bookings cannot be cancelled", func(t *testing.T) {
		f := newFixture(t)
		b, err := f.bookings.Create(ctx, validRequest())
		require.NoError(t, err)
		_, err = f.bookings.UpdateStatus(ctx, b.ID, booking.StatusConfirmed)
		require.NoError(t, err)
		_, err = f.bookings.UpdateStatus(ctx, b.ID, booking.StatusCompleted)
		require.NoError(t, err)

		ok, err := f.bookings.Cancel(ctx, b.ID, "")
		assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		assert.False(t, ok)
	})
}

func TestUpdateStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.bookings.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = f.bookings.UpdateStatus(ctx, b.ID, booking.StatusCompleted)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition, "pending cannot complete")

	_, err = f.bookings.UpdateStatus(ctx, b.ID, "archived")
	assert.ErrorIs(t, err, booking.ErrInvalidStatus)

	got, err := f.bookings.UpdateStatus(ctx, b.ID, booking.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusConfirmed, got.Status)

	_, err = f.bookings.UpdateStatus(ctx, b.ID, booking.StatusPending)
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	_, err = f.bookings.UpdateStatus(ctx, "nope", booking.StatusConfirmed)
	assert.ErrorIs(t, err, booking.ErrNotFound)
}

func TestRecordPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.bookings.Create(ctx, validRequest())
	require.NoError(t, err)

	_, err = f.bookings.RecordPayment(ctx, b.ID, booking.PaymentRefunded)
	assert.ErrorIs(t, err, booking.ErrInvalidPaymentTransition, "refund needs a cancelled, paid booking")

	got, err := f.bookings.RecordPayment(ctx, b.ID, booking.PaymentDepositPaid)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentDepositPaid, got.PaymentStatus)

	_, err = f.bookings.RecordPayment(ctx, b.ID, booking.PaymentDepositPaid)
	assert.ErrorIs(t, err, booking.ErrInvalidPaymentTransition)

	_, err = f.bookings.Cancel(ctx, b.ID, "")
	require.NoError(t, err)

	_, err = f.bookings.RecordPayment(ctx, b.ID, booking.PaymentFullyPaid)
	assert.ErrorIs(t, err, booking.ErrInvalidPaymentTransition)

	got, err = f.bookings.RecordPayment(ctx, b.ID, booking.PaymentRefunded)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentRefunded, got.PaymentStatus)

	_, err = f.bookings.RecordPayment(ctx, b.ID, booking.PaymentUnpaid)
	assert.ErrorIs(t, err, booking.ErrInvalidPayment)
}

func TestListForCustomer_Buckets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	create := func(name, date string, createdAt time.Time) booking.Booking {
		*f.clock = createdAt
		req := validRequest()
		req.EventName = name
		req.EventDate = date
		b, err := f.bookings.Create(ctx, req)
		require.NoError(t, err)
		return b
	}

	soon := create("soon", "2030-06-20", now.Add(-72*time.Hour))
	later := create("later", "2030-08-01", now.Add(-96*time.Hour))
	today := create("today-earlier", "2030-06-15", now.Add(-48*time.Hour)) // started 16:00, still ahead of 10:00
	lastYear := create("last-year", "2029-05-01", now.Add(-400*24*time.Hour))
	lastMonth := create("last-month", "2030-05-10", now.Add(-60*24*time.Hour))
	cancelledFuture := create("cancelled-future", "2030-09-01", now.Add(-24*time.Hour))
	cancelledPast := create("cancelled-past", "2029-01-01", now.Add(-500*24*time.Hour))
	completedFuture := create("completed-future", "2030-06-30", now.Add(-12*time.Hour))

	*f.clock = now
	_, err := f.bookings.Cancel(ctx, cancelledFuture.ID, "")
	require.NoError(t, err)
	_, err = f.bookings.Cancel(ctx, cancelledPast.ID, "")
	require.NoError(t, err)
	_, err = f.bookings.UpdateStatus(ctx, completedFuture.ID, booking.StatusConfirmed)
	require.NoError(t, err)
	_, err = f.bookings.UpdateStatus(ctx, completedFuture.ID, booking.StatusCompleted)
	require.NoError(t, err)

	list := func(bucket booking.Bucket) []string {
		items, err := f.bookings.ListForCustomer(ctx, "cust1", bucket)
		require.NoError(t, err)
		names := make([]string, len(items))
		for i, b := range items {
			names[i] = b.EventName
		}
		return names
	}

	upcoming := list(booking.BucketUpcoming)
	past := list(booking.BucketPast)
	cancelled := list(booking.BucketCancelled)

	assert.Equal(t, []string{today.EventName, soon.EventName, later.EventName}, upcoming)
	assert.Equal(t, []string{completedFuture.EventName, lastMonth.EventName, lastYear.EventName}, past)
	assert.Equal(t, []string{cancelledFuture.EventName, cancelledPast.EventName}, cancelled)

	assert.Equal(t, 8, len(upcoming)+len(past)+len(cancelled), "every booking lands in exactly one bucket")

	_, err = f.bookings.ListForCustomer(ctx, "cust1", "someday")
	assert.ErrorIs(t, err, booking.ErrInvalidBucket)

	others, err := f.bookings.ListForCustomer(ctx, "someone-else", booking.BucketUpcoming)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestOwnerStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	pending, err := f.bookings.Create(ctx, validRequest())
	require.NoError(t, err)

	confirmedReq := validRequest()
	confirmedReq.Status = booking.StatusConfirmed
	confirmed, err := f.bookings.Create(ctx, confirmedReq)
	require.NoError(t, err)

	cancelled, err := f.bookings.Create(ctx, confirmedReq)
	require.NoError(t, err)
	_, err = f.bookings.Cancel(ctx, cancelled.ID, "")
	require.NoError(t, err)

	otherVenue := validRequest()
	otherVenue.VenueID = "v3"
	otherVenue.Services = nil
	_, err = f.bookings.Create(ctx, otherVenue)
	require.NoError(t, err)

	stats, err := f.bookings.OwnerStats(ctx, []string{"v1"})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBookings)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Cancelled)
	assert.Equal(t, confirmed.TotalAmount, stats.Revenue)
	assert.NotZero(t, pending.TotalAmount)

	empty, err := f.bookings.OwnerStats(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalBookings)
}

func TestClassify(t *testing.T) {
	b := booking.Booking{EventDate: "2030-06-15", StartTime: "09:59", Status: booking.StatusConfirmed}
	assert.Equal(t, booking.BucketPast, booking.Classify(b, now, time.UTC))

	b.StartTime = "10:01"
	assert.Equal(t, booking.BucketUpcoming, booking.Classify(b, now, time.UTC))

	b.Status = booking.StatusCancelled
	assert.Equal(t, booking.BucketCancelled, booking.Classify(b, now, time.UTC))

	b = booking.Booking{EventDate: "garbage", Status: booking.StatusPending}
	assert.Equal(t, booking.BucketPast, booking.Classify(b, now, time.UTC))
}

func TestCreate_EndTimeMustFollowStart(t *testing.T) {
	f := newFixture(t)
	req := validRequest()
	req.StartTime = "22:00"
	req.EndTime = "16:00"

	_, err := f.bookings.Create(context.Background(), req)

	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("endTime"))
	assert.False(t, verr.Has("startTime"))

	req.EndTime = req.StartTime
	_, err = f.bookings.Create(context.Background(), req)
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("endTime"))
}

// interleavingStore runs before ahead of its next transaction, standing in for a
// writer that commits between a caller's own reads and its Atomic.
type interleavingStore struct {
	store.Store
	before func()
}

func (s *interleavingStore) Atomic(ctx context.Context, fn func(p store.Partitions) error) error {
	if hook := s.before; hook != nil {
		s.before = nil
		hook()
	}
	return s.Store.Atomic(ctx, fn)
}

func TestCreate_VenueDeletedBeforeCommit(t *testing.T) {
	ctx := context.Background()
	c, err := catalog.Default()
	require.NoError(t, err)

	base := store.NewMemoryStore()
	venues := venue.NewService(base, venue.NewRepository(), c.Venues, guard.VenueChecker, nil, nil)
	packages := servicepackage.NewService(base, servicepackage.NewRepository(), c.Packages, venues, guard.PackageChecker, nil, nil)

	v, err := venues.Create(ctx, "owner9", venue.Venue{
		Name:       "Pop-up Gallery",
		Category:   venue.CategoryEventsHall,
		Location:   venue.Location{City: "Makati", Province: "Metro Manila", Address: "Poblacion"},
		Capacity:   venue.Range{Min: 10, Max: 120},
		PriceRange: venue.Range{Min: 15000, Max: 30000},
	})
	require.NoError(t, err)
	pkg, err := packages.Create(ctx, servicepackage.Package{
		VenueID:     v.ID,
		Name:        "Gallery Lighting",
		Type:        servicepackage.TypeDecoration,
		PricingUnit: pricing.UnitFlatRate,
		Price:       4000,
	})
	require.NoError(t, err)

	st := &interleavingStore{Store: base}
	bookings := booking.NewService(booking.Deps{Store: st, Venues: venues, Packages: packages, Now: func() time.Time { return now }})
	st.before = func() { require.NoError(t, venues.Delete(ctx, v.ID)) }

	req := validRequest()
	req.VenueID = v.ID
	req.Services = []string{pkg.ID}
	_, err = bookings.Create(ctx, req)
	assert.ErrorIs(t, err, booking.ErrVenueNotFound)

	list, err := bookings.ListForVenue(ctx, v.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
