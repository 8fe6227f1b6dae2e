// Package services implements collection-level CRUD on top of the gitdb
// document store, plus the site's entity services.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"folio/internal/gitdb"
)

var ErrNotFound = errors.New("services: record not found")

// Every save is a read-modify-write carrying the revision it read. When the
// host rejects the revision, the whole mutation is retried from a fresh read
// up to this many attempts before ErrConflict surfaces to the caller.
const maxSaveAttempts = 3

// Collection is a JSON-array document of records addressed by a string id.
type Collection[T any] struct {
	store gitdb.Store
	cache *gitdb.Cache
	key   string
	idOf  func(T) string
}

func NewCollection[T any](store gitdb.Store, cache *gitdb.Cache, key string, idOf func(T) string) *Collection[T] {
	return &Collection[T]{store: store, cache: cache, key: key, idOf: idOf}
}

func (c *Collection[T]) Key() string { return c.key }

// List returns all records, reading through the cache. A missing document is
// an empty collection.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	content, err := c.cache.Get(ctx, c.store, c.key)
	if err != nil {
		return nil, err
	}
	if content == nil {
		return []T{}, nil
	}
	var items []T
	if err := json.Unmarshal(content, &items); err != nil {
		return nil, fmt.Errorf("services: decode %s: %w", c.key, err)
	}
	return items, nil
}

// Refresh bypasses the cache and reloads from the store.
func (c *Collection[T]) Refresh(ctx context.Context) ([]T, error) {
	c.cache.Invalidate(c.key)
	return c.List(ctx)
}

// GetByID returns (nil, nil) when the id is absent.
func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	items, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if c.idOf(items[i]) == id {
			return &items[i], nil
		}
	}
	return nil, nil
}

// Create appends a record. Creating an id that already exists is a no-op so
// that queued offline mutations can be replayed more than once.
func (c *Collection[T]) Create(ctx context.Context, rec T) error {
	id := c.idOf(rec)
	return c.mutate(ctx, func(items []T) ([]T, bool, error) {
		for i := range items {
			if c.idOf(items[i]) == id {
				return items, false, nil
			}
		}
		return append(items, rec), true, nil
	})
}

// Update replaces the record with the same id in place.
func (c *Collection[T]) Update(ctx context.Context, rec T) error {
	id := c.idOf(rec)
	return c.mutate(ctx, func(items []T) ([]T, bool, error) {
		for i := range items {
			if c.idOf(items[i]) == id {
				items[i] = rec
				return items, true, nil
			}
		}
		return nil, false, ErrNotFound
	})
}

// Delete removes the record with the given id.
func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, func(items []T) ([]T, bool, error) {
		kept := items[:0]
		for _, item := range items {
			if c.idOf(item) != id {
				kept = append(kept, item)
			}
		}
		if len(kept) == len(items) {
			return nil, false, ErrNotFound
		}
		return kept, true, nil
	})
}

// Mutate runs an arbitrary mutation under the collection's retry loop. The
// callback returns the new slice and whether anything changed; an unchanged
// result skips the save entirely.
func (c *Collection[T]) Mutate(ctx context.Context, fn func(items []T) ([]T, bool, error)) error {
	return c.mutate(ctx, fn)
}

func (c *Collection[T]) mutate(ctx context.Context, fn func(items []T) ([]T, bool, error)) error {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		// Writes read the store directly: the revision must belong to the
		// exact content the mutation was applied to, which the cache cannot
		// guarantee.
		doc, err := c.store.GetDocument(ctx, c.key)
		if err != nil {
			return err
		}
		var items []T
		var revision string
		if doc != nil {
			revision = doc.Revision
			if err := json.Unmarshal(doc.Content, &items); err != nil {
				return fmt.Errorf("services: decode %s: %w", c.key, err)
			}
		}

		items, changed, err := fn(items)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("services: encode %s: %w", c.key, err)
		}
		if _, err := c.store.SaveDocument(ctx, c.key, data, revision); err != nil {
			if errors.Is(err, gitdb.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}
		c.cache.Invalidate(c.key)
		return nil
	}
	return lastErr
}
