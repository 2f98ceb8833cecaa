package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/venue-booking-backend/internal/review"
	"github.com/nekogravitycat/venue-booking-backend/internal/user"
)

type Handler struct {
	service     review.Service
	userService user.Service
}

func NewHandler(service review.Service, userService user.Service) *Handler {
	return &Handler{
		service:     service,
		userService: userService,
	}
}

func (h *Handler) ListForVenue(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	list, err := h.service.ListForVenue(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.All(list))
}

func (h *Handler) Rating(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	summary, err := h.service.AverageRating(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) Submit(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body SubmitReviewRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	ctx := c.Request.Context()
	u, err := h.userService.GetByID(ctx, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	r, err := h.service.Submit(ctx, review.SubmitRequest{
		VenueID:              uri.ID,
		CustomerID:           u.ID,
		CustomerName:         u.Name,
		Rating:               body.Rating,
		ReviewText:           body.ReviewText,
		Photos:               body.Photos,
		EventType:            body.EventType,
		VenueQualityRating:   body.VenueQualityRating,
		ServiceQualityRating: body.ServiceQualityRating,
		ValueRating:          body.ValueRating,
		CleanlinessRating:    body.CleanlinessRating,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

// Reviewed tells the current customer whether they already reviewed the venue.
func (h *Handler) Reviewed(c *gin.Context) {
	ok, err := h.service.HasReviewed(c.Request.Context(), auth.GetUserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviewed": ok})
}

// Mine lists the current customer's reviews.
func (h *Handler) Mine(c *gin.Context) {
	list, err := h.service.ListForCustomer(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.All(list))
}
