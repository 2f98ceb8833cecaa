package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. venueManager guards the venue-scoped list.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, ownerMiddleware, venueManager gin.HandlerFunc) {
	group := g.Group("/bookings")

	// === Public Routes ===
	group.POST("/quote", h.Quote)

	// === Authenticated Routes ===
	authed := group.Group("")
	authed.Use(authMiddleware)
	{
		authed.POST("", h.Create)
		authed.GET("", h.List)
		authed.GET("/:id", h.Get)
		authed.POST("/:id/cancel", h.Cancel)
		authed.POST("/:id/payments", h.RecordPayment)
		authed.GET("/:id/qrcode", h.QRCode)
		authed.GET("/:id/receipt", h.Receipt)
		authed.PATCH("/:id/status", ownerMiddleware, h.UpdateStatus)
	}

	// === Owner Routes ===
	g.GET("/venues/:id/bookings", authMiddleware, ownerMiddleware, venueManager, h.ListForVenue)
	g.GET("/owner/stats", authMiddleware, ownerMiddleware, h.OwnerStats)
}
