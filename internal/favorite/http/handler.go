package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/favorite"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
)

type Handler struct {
	service favorite.Service
}

func NewHandler(service favorite.Service) *Handler {
	return &Handler{service: service}
}

// List returns the current user's saved venues.
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListVenues(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.All(list))
}

func (h *Handler) Add(c *gin.Context) {
	if err := h.service.Add(c.Request.Context(), auth.GetUserID(c), c.Param("venueId")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), auth.GetUserID(c), c.Param("venueId")); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Check(c *gin.Context) {
	ok, err := h.service.IsFavorite(c.Request.Context(), auth.GetUserID(c), c.Param("venueId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": ok})
}
