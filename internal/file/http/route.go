package http

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public file routes. Venue images are linked from
// public venue pages, so reads need no token.
func RegisterRoutes(r gin.IRouter, handler *Handler) {
	group := r.Group("/files")

	group.GET("/:id", handler.ServeFile)
	group.GET("/:id/thumbnail", handler.ServeThumbnail)
}
