package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/venue-booking-backend/internal/store"
	"github.com/nekogravitycat/venue-booking-backend/internal/venue"
)

const (
	maxImageSide  = 1600
	thumbnailSide = 200
)

// UploadInput describes one venue image upload.
type UploadInput struct {
	UserID   string
	VenueID  string
	Filename string
	Content  io.Reader
}

type Service interface {
	UploadVenueImage(ctx context.Context, in UploadInput) (File, venue.Venue, error)
	Get(ctx context.Context, id string) (File, error)
	Download(ctx context.Context, id string) (io.ReadCloser, File, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, File, error)
}

type service struct {
	store   store.Store
	repo    Repository
	blobs   storage.Storage
	imgProc *storage.ImageProcessor
	venues  venue.Service
	maxSize int64
	logger  *slog.Logger
}

// NewService creates the image service. Uploads larger than maxSize bytes are rejected.
func NewService(st store.Store, repo Repository, blobs storage.Storage, venues venue.Service, maxSize int64, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:   st,
		repo:    repo,
		blobs:   blobs,
		imgProc: storage.NewImageProcessor(),
		venues:  venues,
		maxSize: maxSize,
		logger:  logger,
	}
}

// UploadVenueImage stores a resized copy and a square thumbnail, then appends the
// image URL to the venue. Seed venues are promoted to owned records by that append.
func (s *service) UploadVenueImage(ctx context.Context, in UploadInput) (File, venue.Venue, error) {
	if _, err := s.venues.GetByID(ctx, in.VenueID); err != nil {
		return File{}, venue.Venue{}, err
	}

	content, err := io.ReadAll(io.LimitReader(in.Content, s.maxSize+1))
	if err != nil {
		return File{}, venue.Venue{}, fmt.Errorf("failed to read file content: %w", err)
	}
	if int64(len(content)) > s.maxSize {
		return File{}, venue.Venue{}, ErrTooLarge
	}

	resized, err := s.imgProc.Fit(bytes.NewReader(content), maxImageSide, maxImageSide)
	if err != nil {
		if errors.Is(err, storage.ErrNotAnImage) {
			return File{}, venue.Venue{}, ErrNotAnImage
		}
		return File{}, venue.Venue{}, err
	}
	thumb, err := s.imgProc.Thumbnail(bytes.NewReader(content), thumbnailSide)
	if err != nil {
		return File{}, venue.Venue{}, err
	}

	fileID := uuid.NewString()
	// Sharding path: upload/ab/UUID.jpg
	shard := fileID[:2]
	f := File{
		ID:            fileID,
		UserID:        in.UserID,
		VenueID:       in.VenueID,
		Filename:      in.Filename,
		StoragePath:   fmt.Sprintf("upload/%s/%s.jpg", shard, fileID),
		ThumbnailPath: fmt.Sprintf("upload/%s/%s_thumb.jpg", shard, fileID),
		ContentType:   "image/jpeg",
		Size:          int64(len(content)),
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.blobs.Save(ctx, f.StoragePath, resized); err != nil {
		return File{}, venue.Venue{}, fmt.Errorf("failed to save file to storage: %w", err)
	}
	if err := s.blobs.Save(ctx, f.ThumbnailPath, thumb); err != nil {
		s.cleanup(ctx, f)
		return File{}, venue.Venue{}, fmt.Errorf("failed to save thumbnail to storage: %w", err)
	}

	err = s.store.Atomic(ctx, func(p store.Partitions) error {
		return s.repo.Create(ctx, p, f)
	})
	if err != nil {
		s.cleanup(ctx, f)
		return File{}, venue.Venue{}, err
	}

	v, err := s.venues.AddImage(ctx, in.UserID, in.VenueID, FileURL(f.ID))
	if err != nil {
		// Roll back the record and blobs so no orphan image stays behind.
		if derr := s.store.Atomic(ctx, func(p store.Partitions) error { return s.repo.Delete(ctx, p, f.ID) }); derr != nil {
			s.logger.WarnContext(ctx, "failed to remove file record", "file_id", f.ID, "error", derr)
		}
		s.cleanup(ctx, f)
		return File{}, venue.Venue{}, err
	}

	s.logger.InfoContext(ctx, "venue image uploaded", "venue_id", in.VenueID, "file_id", f.ID)
	return f, v, nil
}

func (s *service) cleanup(ctx context.Context, f File) {
	for _, path := range []string{f.StoragePath, f.ThumbnailPath} {
		if err := s.blobs.Delete(ctx, path); err != nil {
			s.logger.WarnContext(ctx, "failed to delete blob", "path", path, "error", err)
		}
	}
}

func (s *service) Get(ctx context.Context, id string) (File, error) {
	f, ok, err := s.repo.GetByID(ctx, s.store, id)
	if err != nil {
		return File{}, err
	}
	if !ok {
		return File{}, ErrNotFound
	}
	return f, nil
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, File{}, err
	}
	return s.open(ctx, f, f.StoragePath, ErrNotFound)
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, File, error) {
	f, err := s.Get(ctx, id)
	if err != nil {
		return nil, File{}, err
	}
	if f.ThumbnailPath == "" {
		return nil, File{}, ErrThumbnailNotFound
	}
	return s.open(ctx, f, f.ThumbnailPath, ErrThumbnailNotFound)
}

func (s *service) open(ctx context.Context, f File, path string, missing error) (io.ReadCloser, File, error) {
	stream, err := s.blobs.Get(ctx, path)
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, File{}, missing
	}
	if err != nil {
		return nil, File{}, fmt.Errorf("failed to retrieve file from storage: %w", err)
	}
	return stream, f, nil
}
