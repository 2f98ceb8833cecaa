// Package receipt renders booking confirmations: a QR code of the reference and a PDF summary.
package receipt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
)

const (
	qrSize   = 300
	currency = "PHP"
)

// QRCode returns a PNG QR code encoding the booking reference.
func QRCode(b booking.Booking, size int) ([]byte, error) {
	if size <= 0 {
		size = qrSize
	}
	qr, err := qrcode.New(b.Reference, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("failed to encode QR to PNG: %w", err)
	}
	return png, nil
}

// Data is what the PDF shows besides the booking itself.
type Data struct {
	Booking      booking.Booking
	VenueName    string
	VenueAddress string
	CustomerName string
	Services     []string
}

// PDF renders a one-page A4 confirmation with the QR code and the stored amounts.
func PDF(d Data) ([]byte, error) {
	b := d.Booking
	qr, err := QRCode(b, qrSize)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Booking "+b.Reference, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 12, "Booking Confirmation", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 7, "Reference "+b.Reference, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	imgOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	imgName := "qr_" + b.Reference
	pdf.RegisterImageOptionsReader(imgName, imgOpts, bytes.NewReader(qr))
	pdf.ImageOptions(imgName, (210.0-60.0)/2, pdf.GetY(), 60, 60, false, imgOpts, 0, "")
	pdf.Ln(64)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(6)

	row := func(label, value string) {
		pdf.SetX(20)
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(50, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "B", 11)
		pdf.MultiCell(120, 7, tr(value), "", "L", false)
	}

	row("Event", b.EventName)
	row("Type", string(b.EventType))
	row("Date", b.EventDate)
	row("Time", b.StartTime+" - "+b.EndTime)
	row("Guests", strconv.Itoa(b.GuestCount))
	row("Venue", d.VenueName)
	if d.VenueAddress != "" {
		row("Address", d.VenueAddress)
	}
	if d.CustomerName != "" {
		row("Booked by", d.CustomerName)
	}
	if len(d.Services) > 0 {
		row("Services", strings.Join(d.Services, ", "))
	}
	if b.SpecialRequests != "" {
		row("Requests", b.SpecialRequests)
	}
	row("Status", string(b.Status))
	row("Payment", string(b.PaymentStatus))
	pdf.Ln(4)

	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(4)
	row("Total", Money(b.TotalAmount))
	row("Deposit (30%)", Money(b.DepositAmount))
	row("Balance", Money(b.BalanceAmount))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// Money formats whole currency units with thousands separators: "PHP 47,250".
func Money(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var sb strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	return currency + " " + sign + sb.String()
}
