package receipt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
)

func sampleBooking() booking.Booking {
	return booking.Booking{
		ID:            "b1",
		Reference:     "BKL12345678",
		EventName:     "Santos Wedding",
		EventType:     booking.EventWedding,
		EventDate:     "2030-07-01",
		StartTime:     "16:00",
		EndTime:       "22:00",
		GuestCount:    50,
		TotalAmount:   47250,
		DepositAmount: 14175,
		BalanceAmount: 33075,
		Status:        booking.StatusConfirmed,
		PaymentStatus: booking.PaymentDepositPaid,
	}
}

func TestQRCode(t *testing.T) {
	png, err := QRCode(sampleBooking(), 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestPDF(t *testing.T) {
	doc, err := PDF(Data{
		Booking:      sampleBooking(),
		VenueName:    "The Grand Ballroom Manila",
		VenueAddress: "6750 Ayala Avenue, Makati City",
		Services:     []string{"Premium Buffet"},
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "PHP 0", Money(0))
	assert.Equal(t, "PHP 999", Money(999))
	assert.Equal(t, "PHP 47,250", Money(47250))
	assert.Equal(t, "PHP 1,234,567", Money(1234567))
	assert.Equal(t, "PHP -1,000", Money(-1000))
}
