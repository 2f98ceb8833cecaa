package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"sync"

	"github.com/nekogravitycat/venue-booking-backend/internal/pkg/storage"
)

// FileStore keeps each partition as partitions/<name>.json in a blob Storage.
// It is meant for a single process; the mutex is the only writer coordination.
type FileStore struct {
	mu   sync.Mutex
	blob storage.Storage
}

// NewFileStore creates a FileStore on top of blob.
func NewFileStore(blob storage.Storage) *FileStore {
	return &FileStore{blob: blob}
}

func partitionPath(name string) string {
	return "partitions/" + name + ".json"
}

func (s *FileStore) Load(ctx context.Context, name string, dst any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, name, dst)
}

func (s *FileStore) Save(ctx context.Context, name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := marshalPartition(name, v)
	if err != nil {
		return err
	}
	return s.write(ctx, name, raw)
}

// Atomic buffers writes and flushes them only after fn succeeds.
// Each partition file is replaced atomically, but a crash mid-flush can leave
// some partitions updated and others not.
func (s *FileStore) Atomic(ctx context.Context, fn func(p Partitions) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := &fileView{store: s, staged: &staged{parts: map[string][]byte{}}}
	if err := fn(view); err != nil {
		return err
	}
	for name := range maps.Keys(view.staged.dirty) {
		if err := s.write(ctx, name, view.staged.parts[name]); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) load(ctx context.Context, name string, dst any) error {
	rc, err := s.blob.Get(ctx, partitionPath(name))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil
		}
		return fmt.Errorf("open partition %s: %w", name, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read partition %s: %w", name, err)
	}
	return unmarshalPartition(name, raw, dst)
}

func (s *FileStore) write(ctx context.Context, name string, raw []byte) error {
	if err := s.blob.Save(ctx, partitionPath(name), bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write partition %s: %w", name, err)
	}
	return nil
}

// fileView reads staged writes first and falls back to disk.
type fileView struct {
	store  *FileStore
	staged *staged
}

func (v *fileView) Load(ctx context.Context, name string, dst any) error {
	if v.staged.dirty[name] {
		return v.staged.Load(ctx, name, dst)
	}
	return v.store.load(ctx, name, dst)
}

func (v *fileView) Save(ctx context.Context, name string, val any) error {
	return v.staged.Save(ctx, name, val)
}
