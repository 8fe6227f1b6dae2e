package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"folio/internal/gitdb"
)

// Doc is a single-object document (settings.json, sessions.json,
// subscribers.json) under the same cache and conflict-retry discipline as
// Collection.
type Doc[T any] struct {
	store gitdb.Store
	cache *gitdb.Cache
	key   string
}

func NewDoc[T any](store gitdb.Store, cache *gitdb.Cache, key string) *Doc[T] {
	return &Doc[T]{store: store, cache: cache, key: key}
}

// Load returns the document, reading through the cache. A missing document
// is the zero value.
func (d *Doc[T]) Load(ctx context.Context) (T, error) {
	var value T
	content, err := d.cache.Get(ctx, d.store, d.key)
	if err != nil {
		return value, err
	}
	if content == nil {
		return value, nil
	}
	if err := json.Unmarshal(content, &value); err != nil {
		return value, fmt.Errorf("services: decode %s: %w", d.key, err)
	}
	return value, nil
}

// Refresh bypasses the cache.
func (d *Doc[T]) Refresh(ctx context.Context) (T, error) {
	d.cache.Invalidate(d.key)
	return d.Load(ctx)
}

// Mutate applies fn to a fresh read of the document and saves conditionally
// on the revision it read, retrying the whole mutation on conflict. fn
// reports whether it changed anything; unchanged skips the save.
func (d *Doc[T]) Mutate(ctx context.Context, fn func(value *T) (bool, error)) error {
	var lastErr error
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		doc, err := d.store.GetDocument(ctx, d.key)
		if err != nil {
			return err
		}
		var value T
		var revision string
		if doc != nil {
			revision = doc.Revision
			if err := json.Unmarshal(doc.Content, &value); err != nil {
				return fmt.Errorf("services: decode %s: %w", d.key, err)
			}
		}

		changed, err := fn(&value)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		data, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return fmt.Errorf("services: encode %s: %w", d.key, err)
		}
		if _, err := d.store.SaveDocument(ctx, d.key, data, revision); err != nil {
			if errors.Is(err, gitdb.ErrConflict) {
				lastErr = err
				continue
			}
			return err
		}
		d.cache.Invalidate(d.key)
		return nil
	}
	return lastErr
}
