package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/venue-booking-backend/internal/auth"
	"github.com/nekogravitycat/venue-booking-backend/internal/file"
	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/response"
)

type Handler struct {
	fileService file.Service
}

func NewHandler(fileService file.Service) *Handler {
	return &Handler{
		fileService: fileService,
	}
}

// UploadVenueImage accepts a multipart "file" field for the venue in the path.
// Ownership is checked by the caller's middleware chain.
func (h *Handler) UploadVenueImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "failed to open uploaded file", err)
		return
	}
	defer src.Close()

	f, v, err := h.fileService.UploadVenueImage(c.Request.Context(), file.UploadInput{
		UserID:   auth.GetUserID(c),
		VenueID:  c.Param("id"),
		Filename: fileHeader.Filename,
		Content:  src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, FileUploadResponse{
		Message:      "file uploaded successfully",
		FileID:       f.ID,
		URL:          file.FileURL(f.ID),
		ThumbnailURL: file.ThumbnailURL(f.ID),
		Venue:        v,
	})
}

// ServeFile serves the file content by ID
func (h *Handler) ServeFile(c *gin.Context) {
	stream, fileInfo, err := h.fileService.Download(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", fileInfo.ContentType)
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.ID+".jpg\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		slog.WarnContext(c.Request.Context(), "file stream interrupted", "file_id", fileInfo.ID, "error", err)
	}
}

// ServeThumbnail serves the thumbnail image by file ID
func (h *Handler) ServeThumbnail(c *gin.Context) {
	stream, fileInfo, err := h.fileService.DownloadThumbnail(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Disposition", "inline; filename=\""+fileInfo.ID+"_thumb.jpg\"")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, stream); err != nil {
		slog.WarnContext(c.Request.Context(), "thumbnail stream interrupted", "file_id", fileInfo.ID, "error", err)
	}
}
