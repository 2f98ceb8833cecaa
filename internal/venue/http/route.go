package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers venue catalog routes. Writes need an owner account.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, ownerMiddleware gin.HandlerFunc) {
	group := g.Group("/venues")

	// === Public Routes ===
	group.GET("", h.List)
	group.GET("/:id", h.Get)

	// === Owner Routes ===
	owner := group.Group("")
	owner.Use(authMiddleware, ownerMiddleware)
	{
		owner.POST("", h.Create)
		owner.PATCH("/:id", h.RequireManager(), h.Update)
		owner.DELETE("/:id", h.RequireManager(), h.Delete)
		owner.GET("/:id/can-delete", h.CanDelete)
	}

	g.GET("/owner/venues", authMiddleware, ownerMiddleware, h.Mine)
}
