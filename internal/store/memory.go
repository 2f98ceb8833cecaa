package store

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"sync"
)

// MemoryStore keeps partitions as encoded JSON in process memory.
// Records are stored encoded so callers never share mutable state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	parts map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{parts: make(map[string][]byte)}
}

func (s *MemoryStore) Load(ctx context.Context, name string, dst any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return decode(s.parts, name, dst)
}

func (s *MemoryStore) Save(ctx context.Context, name string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return encode(s.parts, name, v)
}

// Atomic stages writes on a copy of the partition map and swaps it in when fn succeeds.
func (s *MemoryStore) Atomic(ctx context.Context, fn func(p Partitions) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stage := &staged{parts: maps.Clone(s.parts)}
	if err := fn(stage); err != nil {
		return err
	}
	s.parts = stage.parts
	return nil
}

// staged is the Partitions view handed to Atomic callbacks. The owning store holds its lock.
type staged struct {
	parts map[string][]byte
	dirty map[string]bool
}

func (p *staged) Load(ctx context.Context, name string, dst any) error {
	return decode(p.parts, name, dst)
}

func (p *staged) Save(ctx context.Context, name string, v any) error {
	if err := encode(p.parts, name, v); err != nil {
		return err
	}
	if p.dirty == nil {
		p.dirty = make(map[string]bool)
	}
	p.dirty[name] = true
	return nil
}

func decode(parts map[string][]byte, name string, dst any) error {
	return unmarshalPartition(name, parts[name], dst)
}

func encode(parts map[string][]byte, name string, v any) error {
	raw, err := marshalPartition(name, v)
	if err != nil {
		return err
	}
	parts[name] = raw
	return nil
}

func marshalPartition(name string, v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode partition %s: %w", name, err)
	}
	return raw, nil
}

func unmarshalPartition(name string, raw []byte, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode partition %s: %w", name, err)
	}
	return nil
}
