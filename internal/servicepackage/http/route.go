package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, ownerMiddleware gin.HandlerFunc) {
	g.GET("/venues/:id/packages", h.ListForVenue)

	group := g.Group("/packages")
	group.GET("/:id", h.Get)

	owner := group.Group("")
	owner.Use(authMiddleware, ownerMiddleware)
	{
		owner.POST("", h.Create)
		owner.PATCH("/:id", h.Update)
		owner.DELETE("/:id", h.Delete)
		owner.GET("/:id/can-delete", h.CanDelete)
	}
}
