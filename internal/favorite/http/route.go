package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/favorites")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:venueId", h.Check)
		group.PUT("/:venueId", h.Add)
		group.DELETE("/:venueId", h.Remove)
	}
}
