package http

import (
	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
)

// IdempotencyHeader lets clients retry POST /bookings without creating duplicates.
const IdempotencyHeader = "Idempotency-Key"

type QuoteRequest struct {
	VenueID    string   `json:"venueId" binding:"required"`
	GuestCount int      `json:"guestCount"`
	Services   []string `json:"services"`
}

type CreateBookingRequest struct {
	VenueID         string   `json:"venueId" binding:"required"`
	EventName       string   `json:"eventName"`
	EventType       string   `json:"eventType"`
	EventDate       string   `json:"eventDate"`
	StartTime       string   `json:"startTime"`
	EndTime         string   `json:"endTime"`
	GuestCount      int      `json:"guestCount"`
	Services        []string `json:"services"`
	SpecialRequests string   `json:"specialRequests"`
	// Omitted on checkout: the deposit is taken at booking time, so the
	// booking is stored as confirmed with the deposit paid.
	Status        string `json:"status"`
	PaymentStatus string `json:"paymentStatus"`
}

func (r CreateBookingRequest) toCreate(customerID, idempotencyKey string) booking.CreateRequest {
	status := booking.Status(r.Status)
	if status == "" {
		status = booking.StatusConfirmed
	}
	payment := booking.PaymentStatus(r.PaymentStatus)
	if payment == "" {
		payment = booking.PaymentDepositPaid
	}
	return booking.CreateRequest{
		CustomerID:      customerID,
		VenueID:         r.VenueID,
		EventName:       r.EventName,
		EventType:       booking.EventType(r.EventType),
		EventDate:       r.EventDate,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		GuestCount:      r.GuestCount,
		Services:        r.Services,
		SpecialRequests: r.SpecialRequests,
		Status:          status,
		PaymentStatus:   payment,
		IdempotencyKey:  idempotencyKey,
	}
}

type ListBookingsRequest struct {
	Bucket string `form:"bucket" binding:"required"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RecordPaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required"`
}

// BookingResponse is a booking with its customer-facing bucket.
type BookingResponse struct {
	booking.Booking
	Bucket booking.Bucket `json:"bucket"`
}

type CancelResponse struct {
	Cancelled bool            `json:"cancelled"`
	Booking   booking.Booking `json:"booking"`
}
