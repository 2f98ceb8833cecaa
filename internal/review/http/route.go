package http

import "github.com/gin-gonic/gin"

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	venues := g.Group("/venues/:id")
	venues.GET("/reviews", h.ListForVenue)
	venues.GET("/rating", h.Rating)
	venues.POST("/reviews", authMiddleware, h.Submit)
	venues.GET("/reviewed", authMiddleware, h.Reviewed)

	g.GET("/me/reviews", authMiddleware, h.Mine)
}
