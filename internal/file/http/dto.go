package http

import "github.com/nekogravitycat/venue-booking-backend/internal/venue"

type FileUploadResponse struct {
	Message      string      `json:"message"`
	FileID       string      `json:"fileId"`
	URL          string      `json:"url"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	Venue        venue.Venue `json:"venue"`
}
