package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/booking"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/venue-booking-backend/internal/receipt"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/user"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

type Handler struct {
	service     booking.Service
	venues      venue.Service
	packages    servicepackage.Service
	userService user.Service
}

func NewHandler(
	service booking.Service,
	venues venue.Service,
	packages servicepackage.Service,
	userService user.Service,
) *Handler {
	return &Handler{
		service:     service,
		venues:      venues,
		packages:    packages,
		userService: userService,
	}
}

// canManage reports whether the current user is an owner managing the booking's venue.
func (h *Handler) canManage(c *gin.Context, b booking.Booking) bool {
	ctx := c.Request.Context()
	userID := auth.GetUserID(c)
	u, err := h.userService.GetByID(ctx, userID)
	if err != nil || u.Role != user.RoleOwner {
		return false
	}
	rec, err := h.venues.GetRecord(ctx, b.VenueID)
	if err != nil {
		return false
	}
	return rec.CanManage(userID)
}

// load fetches the booking in the path and checks the caller may see it.
// Customers see their own bookings; owners see bookings at venues they manage.
func (h *Handler) load(c *gin.Context) (booking.Booking, bool) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return booking.Booking{}, false
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return booking.Booking{}, false
	}
	if b.CustomerID != auth.GetUserID(c) && !h.canManage(c, b) {
		// Hide the existence of other customers' bookings.
		response.Error(c, booking.ErrNotFound)
		return booking.Booking{}, false
	}
	return b, true
}

func (h *Handler) respond(code int, c *gin.Context, b booking.Booking) {
	c.JSON(code, BookingResponse{Booking: b, Bucket: h.service.Classify(b)})
}

// Quote prices a prospective booking without storing anything.
func (h *Handler) Quote(c *gin.Context) {
	var body QuoteRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	q, err := h.service.Quote(c.Request.Context(), booking.QuoteRequest{
		VenueID:    body.VenueID,
		GuestCount: body.GuestCount,
		Services:   body.Services,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
	b, err := h.service.Create(c.Request.Context(), body.toCreate(auth.GetUserID(c), key))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(http.StatusCreated, c, b)
}

// List returns the current customer's bookings in one bucket.
func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}

	bucket := booking.Bucket(req.Bucket)
	list, err := h.service.ListForCustomer(c.Request.Context(), auth.GetUserID(c), bucket)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(list))
	for i, b := range list {
		items[i] = BookingResponse{Booking: b, Bucket: bucket}
	}
	c.JSON(http.StatusOK, response.All(items))
}

func (h *Handler) Get(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}
	h.respond(http.StatusOK, c, b)
}

func (h *Handler) Cancel(c *gin.Context) {
	var body CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid body", err)
			return
		}
	}

	b, ok := h.load(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	cancelled, err := h.service.Cancel(ctx, b.ID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !cancelled {
		response.Error(c, booking.ErrNotFound)
		return
	}

	b, err = h.service.GetByID(ctx, b.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, CancelResponse{Cancelled: true, Booking: b})
}

// UpdateStatus moves a booking through its lifecycle. Only venue managers may do this.
func (h *Handler) UpdateStatus(c *gin.Context) {
	var body UpdateStatusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	b, ok := h.load(c)
	if !ok {
		return
	}
	if !h.canManage(c, b) {
		response.Error(c, booking.ErrPermissionDenied)
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), b.ID, booking.Status(body.Status))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(http.StatusOK, c, updated)
}

// RecordPayment records a payment step for the booking.
func (h *Handler) RecordPayment(c *gin.Context) {
	var body RecordPaymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	b, ok := h.load(c)
	if !ok {
		return
	}

	updated, err := h.service.RecordPayment(c.Request.Context(), b.ID, booking.PaymentStatus(body.PaymentStatus))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(http.StatusOK, c, updated)
}

func (h *Handler) QRCode(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}

	png, err := receipt.QRCode(b, 0)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) Receipt(c *gin.Context) {
	b, ok := h.load(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	data := receipt.Data{Booking: b, VenueName: b.VenueID}
	if v, err := h.venues.GetByID(ctx, b.VenueID); err == nil {
		data.VenueName = v.Name
		data.VenueAddress = v.Location.Address + ", " + v.Location.City
	}
	if u, err := h.userService.GetByID(ctx, b.CustomerID); err == nil {
		data.CustomerName = u.Name
	}
	for _, id := range b.Services {
		name := id
		if pkg, err := h.packages.GetByID(ctx, id); err == nil {
			name = pkg.Name
		}
		data.Services = append(data.Services, name)
	}

	doc, err := receipt.PDF(data)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "inline; filename=\""+b.Reference+".pdf\"")
	c.Data(http.StatusOK, "application/pdf", doc)
}

// ListForVenue lists every booking at the venue in the path. Access is checked by the route.
func (h *Handler) ListForVenue(c *gin.Context) {
	list, err := h.service.ListForVenue(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.All(list))
}

// OwnerStats summarizes bookings across the venues the current owner has created.
func (h *Handler) OwnerStats(c *gin.Context) {
	ctx := c.Request.Context()
	venues, err := h.venues.ListByOwner(ctx, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	ids := make([]string, len(venues))
	for i, v := range venues {
		ids[i] = v.ID
	}
	stats, err := h.service.OwnerStats(ctx, ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": len(ids), "stats": stats})
}
