package store

import (
	"context"
	"fmt"
)

// Table is a typed view over one partition whose records are keyed by id.
type Table[T any] struct {
	name string
	id   func(T) string
}

// NewTable creates a Table for the named partition.
func NewTable[T any](name string, id func(T) string) Table[T] {
	return Table[T]{name: name, id: id}
}

// Name returns the partition name.
func (t Table[T]) Name() string { return t.name }

// List returns every record in partition order.
func (t Table[T]) List(ctx context.Context, p Partitions) ([]T, error) {
	var items []T
	if err := p.Load(ctx, t.name, &items); err != nil {
		return nil, fmt.Errorf("load %s: %w", t.name, err)
	}
	return items, nil
}

// Get returns the record with id and whether it exists.
func (t Table[T]) Get(ctx context.Context, p Partitions, id string) (T, bool, error) {
	var zero T
	items, err := t.List(ctx, p)
	if err != nil {
		return zero, false, err
	}
	for _, it := range items {
		if t.id(it) == id {
			return it, true, nil
		}
	}
	return zero, false, nil
}

// Upsert replaces the record with the same id in place, or appends it.
func (t Table[T]) Upsert(ctx context.Context, p Partitions, item T) error {
	items, err := t.List(ctx, p)
	if err != nil {
		return err
	}
	id := t.id(item)
	replaced := false
	for i := range items {
		if t.id(items[i]) == id {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, item)
	}
	return t.save(ctx, p, items)
}

// Append adds item at the end without checking for an existing id.
func (t Table[T]) Append(ctx context.Context, p Partitions, item T) error {
	items, err := t.List(ctx, p)
	if err != nil {
		return err
	}
	return t.save(ctx, p, append(items, item))
}

// Delete removes the record with id and reports whether it existed.
func (t Table[T]) Delete(ctx context.Context, p Partitions, id string) (bool, error) {
	items, err := t.List(ctx, p)
	if err != nil {
		return false, err
	}
	kept := items[:0]
	found := false
	for _, it := range items {
		if t.id(it) == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return false, nil
	}
	return true, t.save(ctx, p, kept)
}

// DeleteWhere removes every record matching fn and returns how many were removed.
func (t Table[T]) DeleteWhere(ctx context.Context, p Partitions, fn func(T) bool) (int, error) {
	items, err := t.List(ctx, p)
	if err != nil {
		return 0, err
	}
	kept := items[:0]
	removed := 0
	for _, it := range items {
		if fn(it) {
			removed++
			continue
		}
		kept = append(kept, it)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, t.save(ctx, p, kept)
}

func (t Table[T]) save(ctx context.Context, p Partitions, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := p.Save(ctx, t.name, items); err != nil {
		return fmt.Errorf("save %s: %w", t.name, err)
	}
	return nil
}
