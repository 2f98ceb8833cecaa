package booking

import (
	"net/http"
	"slices"
	"time"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound             = apperror.New(http.StatusNotFound, "booking not found")
	ErrVenueNotFound        = apperror.New(http.StatusNotFound, "venue not found")
	ErrPackageNotFound      = apperror.New(http.StatusNotFound, "service package not found")
	ErrPackageNotForVenue   = apperror.New(http.StatusBadRequest, "service package does not belong to this venue")
	ErrInvalidStatus        = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidPayment       = apperror.New(http.StatusBadRequest, "invalid payment status")
	ErrInvalidBucket        = apperror.New(http.StatusBadRequest, "invalid booking bucket")
	ErrPermissionDenied     = apperror.New(http.StatusForbidden, "permission denied")
	ErrReferenceUnavailable = apperror.New(http.StatusServiceUnavailable, "could not allocate a booking reference")
)

// Lifecycle changes that the current state does not allow.
var (
	ErrInvalidTransition        = apperror.Consistency("booking can no longer change status")
	ErrInvalidPaymentTransition = apperror.Consistency("payment status cannot change this way")
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle change is allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether a booking may move from s to next.
func (s Status) CanTransition(next Status) bool {
	return slices.Contains(transitions[s], next)
}

// PaymentStatus tracks how much of the total has been paid.
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentFullyPaid   PaymentStatus = "fully_paid"
	PaymentRefunded    PaymentStatus = "refunded"
)

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentUnpaid, PaymentDepositPaid, PaymentFullyPaid, PaymentRefunded:
		return true
	}
	return false
}

// EventType is the occasion being booked.
type EventType string

const (
	EventWedding    EventType = "wedding"
	EventBirthday   EventType = "birthday"
	EventCorporate  EventType = "corporate"
	EventConference EventType = "conference"
	EventOther      EventType = "other"
)

// Bucket is one of the customer-facing booking views.
type Bucket string

const (
	BucketUpcoming  Bucket = "upcoming"
	BucketPast      Bucket = "past"
	BucketCancelled Bucket = "cancelled"
)

// Valid reports whether b is a known bucket.
func (b Bucket) Valid() bool {
	return b == BucketUpcoming || b == BucketPast || b == BucketCancelled
}

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type Booking struct {
	ID                 string        `json:"id"`
	Reference          string        `json:"reference"`
	CustomerID         string        `json:"customerId"`
	VenueID            string        `json:"venueId"`
	EventName          string        `json:"eventName"`
	EventType          EventType     `json:"eventType"`
	EventDate          string        `json:"eventDate"`
	StartTime          string        `json:"startTime"`
	EndTime            string        `json:"endTime"`
	GuestCount         int           `json:"guestCount"`
	Services           []string      `json:"services"`
	TotalAmount        int64         `json:"totalAmount"`
	DepositAmount      int64         `json:"depositAmount"`
	BalanceAmount      int64         `json:"balanceAmount"`
	Status             Status        `json:"status"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	SpecialRequests    string        `json:"specialRequests,omitempty"`
	CancellationReason string        `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time    `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time     `json:"createdAt"`
	UpdatedAt          *time.Time    `json:"updatedAt,omitempty"`
}

// EventStart returns the event start as a time in loc. ok is false when the stored
// date or time cannot be parsed.
func (b Booking) EventStart(loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout+" "+timeLayout, b.EventDate+" "+b.StartTime, loc)
	if err != nil {
		d, derr := time.ParseInLocation(dateLayout, b.EventDate, loc)
		if derr != nil {
			return time.Time{}, false
		}
		return d, true
	}
	return t, true
}

// HasService reports whether the booking selected the package.
func (b Booking) HasService(packageID string) bool {
	return slices.Contains(b.Services, packageID)
}

// Filter selects bookings by owner relationships. Empty fields match everything.
type Filter struct {
	CustomerID string
	VenueID    string
	VenueIDs   []string
	PackageID  string
	Status     Status
}

// Matches reports whether b satisfies f.
func (f Filter) Matches(b Booking) bool {
	if f.CustomerID != "" && b.CustomerID != f.CustomerID {
		return false
	}
	if f.VenueID != "" && b.VenueID != f.VenueID {
		return false
	}
	if f.VenueIDs != nil && !slices.Contains(f.VenueIDs, b.VenueID) {
		return false
	}
	if f.PackageID != "" && !b.HasService(f.PackageID) {
		return false
	}
	if f.Status != "" && b.Status != f.Status {
		return false
	}
	return true
}

// Stats summarizes bookings for an owner's venues.
type Stats struct {
	TotalBookings int   `json:"totalBookings"`
	Pending       int   `json:"pending"`
	Confirmed     int   `json:"confirmed"`
	Completed     int   `json:"completed"`
	Cancelled     int   `json:"cancelled"`
	Revenue       int64 `json:"revenue"`
}
