package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/guard"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

type Handler struct {
	service venue.Service
	store   store.Partitions
}

// NewHandler creates the venue handler. p is read by the deletion guard preview.
func NewHandler(service venue.Service, p store.Partitions) *Handler {
	return &Handler{
		service: service,
		store:   p,
	}
}

// List browses the merged catalog with filters, sorting and pagination.
func (h *Handler) List(c *gin.Context) {
	var req ListVenuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "invalid query parameters", err)
		return
	}
	if !venue.ValidSortKey(req.Sort) {
		response.Error(c, venue.ErrInvalidSortKey)
		return
	}

	list, err := h.service.Filter(c.Request.Context(), req.Criteria())
	if err != nil {
		response.Error(c, err)
		return
	}
	list = venue.Sort(list, req.Sort)

	c.JSON(http.StatusOK, response.Paged(list, req.ListParams))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	rec, err := h.service.GetRecord(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVenueResponse(rec))
}

// Mine lists the venues owned by the current user.
func (h *Handler) Mine(c *gin.Context) {
	list, err := h.service.ListByOwner(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.All(list))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateVenueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	v, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), body.toVenue())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewVenueResponse(venue.Record{Origin: venue.OriginOwned, Venue: v}))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdateVenueRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}

	v, err := h.service.Update(c.Request.Context(), auth.GetUserID(c), uri.ID, body.toPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewVenueResponse(venue.Record{Origin: venue.OriginOwned, Venue: v}))
}

// Delete removes an owned venue with 204. Deleting the owned copy of a seed venue
// reverts it instead: the response is 200 with the seed record now served under the id.
func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	if err := h.service.Delete(ctx, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	rec, err := h.service.GetRecord(ctx, uri.ID)
	if err != nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, NewVenueResponse(rec))
}

// CanDelete previews the deletion guard so clients can disable the delete action.
func (h *Handler) CanDelete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.service.GetByID(ctx, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	res, err := guard.New(h.store).CanDeleteVenue(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// RequireManager aborts unless the current user may manage the venue named by
// the ":id" path parameter. It MUST be used after auth.AuthRequired middleware.
func (h *Handler) RequireManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		rec, err := h.service.GetRecord(c.Request.Context(), c.Param("id"))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if !rec.CanManage(auth.GetUserID(c)) {
			response.Error(c, venue.ErrPermissionDenied)
			c.Abort()
			return
		}
		c.Next()
	}
}
