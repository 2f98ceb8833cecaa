package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/guard"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/venue-booking-backend/internal/servicepackage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

type Handler struct {
	service servicepackage.Service
	venues  venue.Service
	store   store.Partitions
}

func NewHandler(service servicepackage.Service, venues venue.Service, p store.Partitions) *Handler {
	return &Handler{
		service: service,
		venues:  venues,
		store:   p,
	}
}

func (h *Handler) respond(c *gin.Context, code int, pkg servicepackage.Package) {
	owned, err := h.service.IsOwned(c.Request.Context(), pkg.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(code, PackageResponse{Package: pkg, System: !owned})
}

// ListForVenue lists the packages offered with the venue in the path.
func (h *Handler) ListForVenue(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.venues.GetByID(ctx, uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	list, err := h.service.ListForVenue(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, response.All(list))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	pkg, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, http.StatusOK, pkg)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreatePackageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}
	if !h.canManageVenue(c, body.VenueID) {
		return
	}

	pkg, err := h.service.Create(c.Request.Context(), body.toPackage())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, PackageResponse{Package: pkg})
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}

	var body UpdatePackageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, "invalid body", err)
		return
	}
	if !h.canManagePackage(c, uri.ID) {
		return
	}

	pkg, err := h.service.Update(c.Request.Context(), uri.ID, body.toPatch())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, PackageResponse{Package: pkg})
}

func (h *Handler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, "invalid request", err)
		return
	}
	if !h.canManagePackage(c, uri.ID) {
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CanDelete previews the deletion guard for the package.
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

	res, err := guard.New(h.store).CanDeletePackage(ctx, uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) canManagePackage(c *gin.Context, packageID string) bool {
	pkg, err := h.service.GetByID(c.Request.Context(), packageID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	return h.canManageVenue(c, pkg.VenueID)
}

func (h *Handler) canManageVenue(c *gin.Context, venueID string) bool {
	rec, err := h.venues.GetRecord(c.Request.Context(), venueID)
	if err != nil {
		response.Error(c, err)
		return false
	}
	if !rec.CanManage(auth.GetUserID(c)) {
		response.Error(c, venue.ErrPermissionDenied)
		return false
	}
	return true
}
