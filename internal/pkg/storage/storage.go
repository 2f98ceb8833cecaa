package storage

import (
	"context"
	"errors"
	"io"
)

// ErrObjectNotFound is returned by Get when nothing is stored under the path.
var ErrObjectNotFound = errors.New("object not found")

// Storage is a blob store addressed by slash-separated relative paths.
// It backs uploaded venue images and the file-based partition store.
type Storage interface {
	// Save writes content under path, replacing any previous object.
	Save(ctx context.Context, path string, content io.Reader) error

	// Get opens the object at path. Missing objects yield ErrObjectNotFound.
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes the object at path. Deleting a missing object is not an error.
	Delete(ctx context.Context, path string) error
}
