package services

import (
	"context"

	"folio/internal/gitdb"
)

// MapCollection is a document holding postId → []record for every post in
// one file (comments.json, likes.json). Unrelated posts therefore contend
// for the same revision token; the conflict-retry loop in Doc absorbs that
// contention.
type MapCollection[T any] struct {
	doc *Doc[map[string][]T]
}

func NewMapCollection[T any](store gitdb.Store, cache *gitdb.Cache, key string) *MapCollection[T] {
	return &MapCollection[T]{doc: NewDoc[map[string][]T](store, cache, key)}
}

// ListFor returns the records for one post, reading through the cache.
func (m *MapCollection[T]) ListFor(ctx context.Context, postID string) ([]T, error) {
	all, err := m.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	items := all[postID]
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (m *MapCollection[T]) All(ctx context.Context) (map[string][]T, error) {
	all, err := m.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if all == nil {
		all = map[string][]T{}
	}
	return all, nil
}

// Mutate edits the whole map under the conflict-retry loop. fn always
// receives a non-nil map.
func (m *MapCollection[T]) Mutate(ctx context.Context, fn func(all map[string][]T) (bool, error)) error {
	return m.doc.Mutate(ctx, func(value *map[string][]T) (bool, error) {
		if *value == nil {
			*value = map[string][]T{}
		}
		return fn(*value)
	})
}

// DropKey removes a post's entire bucket. Absent keys are a no-op.
func (m *MapCollection[T]) DropKey(ctx context.Context, postID string) error {
	return m.Mutate(ctx, func(all map[string][]T) (bool, error) {
		if _, ok := all[postID]; !ok {
			return false, nil
		}
		delete(all, postID)
		return true, nil
	})
}
