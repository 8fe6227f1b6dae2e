package gitdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

type scriptedStore struct {
	MemStore
	calls  int
	onRead func()
}

func (s *scriptedStore) GetDocument(ctx context.Context, key string) (*Document, error) {
	s.calls++
	if s.onRead != nil {
		s.onRead()
	}
	return s.MemStore.GetDocument(ctx, key)
}

func mustSave(t *testing.T, store Store, key, content string) {
	t.Helper()
	doc, err := store.GetDocument(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	rev := ""
	if doc != nil {
		rev = doc.Revision
	}
	if _, err := store.SaveDocument(context.Background(), key, json.RawMessage(content), rev); err != nil {
		t.Fatalf("save %s: %v", key, err)
	}
}

func TestCacheFreshness(t *testing.T) {
	store := &scriptedStore{}
	store.docs = make(map[string]*Document)
	mustSave(t, store, "posts.json", `["a"]`)
	store.calls = 0

	now := time.Unix(1000, 0)
	cache := NewCache(DefaultTTL)
	cache.SetClock(func() time.Time { return now })

	first, err := cache.Get(context.Background(), store, "posts.json")
	if err != nil {
		t.Fatal(err)
	}
	if store.calls != 1 {
		t.Fatalf("expected 1 remote call, got %d", store.calls)
	}

	// Just inside the TTL: served from cache, byte-identical.
	now = now.Add(DefaultTTL - time.Millisecond)
	second, err := cache.Get(context.Background(), store, "posts.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatalf("cached content changed: %s vs %s", first, second)
	}
	if store.calls != 1 {
		t.Fatalf("fresh entry triggered a remote call (calls=%d)", store.calls)
	}

	// Just past the TTL: refetched.
	now = now.Add(2 * time.Millisecond)
	if _, err := cache.Get(context.Background(), store, "posts.json"); err != nil {
		t.Fatal(err)
	}
	if store.calls != 2 {
		t.Fatalf("expired entry not refetched (calls=%d)", store.calls)
	}
}

func TestCacheInvalidateThenRead(t *testing.T) {
	store := &scriptedStore{}
	store.docs = make(map[string]*Document)
	mustSave(t, store, "posts.json", `["old"]`)

	cache := NewCache(DefaultTTL)
	if _, err := cache.Get(context.Background(), store, "posts.json"); err != nil {
		t.Fatal(err)
	}

	mustSave(t, store, "posts.json", `["new"]`)
	cache.Invalidate("posts.json")

	content, err := cache.Get(context.Background(), store, "posts.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != `["new"]` {
		t.Fatalf("read after invalidate returned stale content: %s", content)
	}
}

func TestCacheNoNegativeCaching(t *testing.T) {
	store := &scriptedStore{}
	store.docs = make(map[string]*Document)

	cache := NewCache(DefaultTTL)
	for i := 0; i < 2; i++ {
		content, err := cache.Get(context.Background(), store, "missing.json")
		if err != nil {
			t.Fatal(err)
		}
		if content != nil {
			t.Fatalf("missing document returned content: %s", content)
		}
	}
	if store.calls != 2 {
		t.Fatalf("miss was cached: %d remote calls, expected 2", store.calls)
	}
}

// An invalidate that lands while a fetch is in flight must win: the stale
// fetch result may be returned to its own caller but must not repopulate the
// cache slot.
func TestCacheInFlightFetchCannotOutliveInvalidate(t *testing.T) {
	store := &scriptedStore{}
	store.docs = make(map[string]*Document)
	mustSave(t, store, "posts.json", `["old"]`)

	cache := NewCache(DefaultTTL)
	store.onRead = func() { cache.Invalidate("posts.json") }

	if _, err := cache.Get(context.Background(), store, "posts.json"); err != nil {
		t.Fatal(err)
	}

	store.onRead = nil
	mustSave(t, store, "posts.json", `["new"]`)
	store.calls = 0

	content, err := cache.Get(context.Background(), store, "posts.json")
	if err != nil {
		t.Fatal(err)
	}
	if store.calls != 1 {
		t.Fatalf("stale fetch repopulated the cache (calls=%d)", store.calls)
	}
	if string(content) != `["new"]` {
		t.Fatalf("got stale content after invalidate: %s", content)
	}
}
