package file

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound          = apperror.New(http.StatusNotFound, "file not found")
	ErrThumbnailNotFound = apperror.New(http.StatusNotFound, "thumbnail not available for this file")
	ErrTooLarge          = apperror.New(http.StatusRequestEntityTooLarge, "file is too large")
	ErrNotAnImage        = apperror.New(http.StatusUnsupportedMediaType, "file is not a supported image")
)

// File is an uploaded venue image. Originals are re-encoded as JPEG.
type File struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	VenueID       string    `json:"venueId"`
	Filename      string    `json:"filename"`
	StoragePath   string    `json:"storagePath"`
	ThumbnailPath string    `json:"thumbnailPath,omitempty"`
	ContentType   string    `json:"contentType"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FileURL returns the public URL for accessing a file by its ID.
func FileURL(id string) string {
	return "/v1/files/" + id
}

// ThumbnailURL returns the public URL for accessing a file's thumbnail by its ID.
func ThumbnailURL(id string) string {
	return "/v1/files/" + id + "/thumbnail"
}
