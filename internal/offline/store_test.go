package offline

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"folio/internal/constants"
)

// Both tiers must be interchangeable behind Store, so every contract test
// runs against each of them.
func eachTier(t *testing.T, test func(t *testing.T, store Store)) {
	t.Helper()
	tiers := map[string]func(t *testing.T) Store{
		"sqlite": func(t *testing.T) Store {
			store, err := openSQLite(filepath.Join(t.TempDir(), "offline.db"))
			if err != nil {
				t.Fatalf("opening sqlite tier: %v", err)
			}
			return store
		},
		"file": func(t *testing.T) Store {
			store, err := openFileStore(t.TempDir())
			if err != nil {
				t.Fatalf("opening file tier: %v", err)
			}
			return store
		},
	}
	for name, open := range tiers {
		t.Run(name, func(t *testing.T) {
			store := open(t)
			defer store.Close()
			test(t, store)
		})
	}
}

func TestStoreSaveCollectionReplaces(t *testing.T) {
	eachTier(t, func(t *testing.T, store Store) {
		first := []Item{
			{ID: "a", Data: json.RawMessage(`{"v":1}`)},
			{ID: "b", Data: json.RawMessage(`{"v":2}`)},
		}
		if err := store.SaveCollection(constants.BucketPosts, first); err != nil {
			t.Fatal(err)
		}

		second := []Item{{ID: "c", Data: json.RawMessage(`{"v":3}`)}}
		if err := store.SaveCollection(constants.BucketPosts, second); err != nil {
			t.Fatal(err)
		}

		items, err := store.GetCollection(constants.BucketPosts)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 || items[0].ID != "c" {
			t.Fatalf("save did not replace the bucket: %+v", items)
		}
	})
}

func TestStoreAddItemUpserts(t *testing.T) {
	eachTier(t, func(t *testing.T, store Store) {
		if err := store.AddItem(constants.BucketComments, "c1", json.RawMessage(`"old"`)); err != nil {
			t.Fatal(err)
		}
		if err := store.AddItem(constants.BucketComments, "c1", json.RawMessage(`"new"`)); err != nil {
			t.Fatal(err)
		}

		items, err := store.GetCollection(constants.BucketComments)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 || string(items[0].Data) != `"new"` {
			t.Fatalf("upsert result: %+v", items)
		}
	})
}

func TestStoreRemoveItem(t *testing.T) {
	eachTier(t, func(t *testing.T, store Store) {
		removed, err := store.RemoveItem(constants.BucketLikes, "ghost")
		if err != nil {
			t.Fatal(err)
		}
		if removed {
			t.Fatal("removing a missing id reported true")
		}

		if err := store.AddItem(constants.BucketLikes, "l1", json.RawMessage(`{}`)); err != nil {
			t.Fatal(err)
		}
		removed, err = store.RemoveItem(constants.BucketLikes, "l1")
		if err != nil {
			t.Fatal(err)
		}
		if !removed {
			t.Fatal("removing an existing id reported false")
		}

		items, err := store.GetCollection(constants.BucketLikes)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 0 {
			t.Fatalf("bucket not empty after remove: %+v", items)
		}
	})
}

func TestStoreOrdersByID(t *testing.T) {
	eachTier(t, func(t *testing.T, store Store) {
		for _, id := range []string{"03", "01", "02"} {
			if err := store.AddItem(constants.BucketSyncQueue, id, json.RawMessage(`{}`)); err != nil {
				t.Fatal(err)
			}
		}
		items, err := store.GetCollection(constants.BucketSyncQueue)
		if err != nil {
			t.Fatal(err)
		}
		for i, want := range []string{"01", "02", "03"} {
			if items[i].ID != want {
				t.Fatalf("order at %d: got %s want %s", i, items[i].ID, want)
			}
		}
	})
}

func TestStoreBucketsAreIsolated(t *testing.T) {
	eachTier(t, func(t *testing.T, store Store) {
		if err := store.AddItem(constants.BucketPosts, "x", json.RawMessage(`1`)); err != nil {
			t.Fatal(err)
		}
		if err := store.AddItem(constants.BucketComments, "x", json.RawMessage(`2`)); err != nil {
			t.Fatal(err)
		}

		if _, err := store.RemoveItem(constants.BucketPosts, "x"); err != nil {
			t.Fatal(err)
		}
		items, err := store.GetCollection(constants.BucketComments)
		if err != nil {
			t.Fatal(err)
		}
		if len(items) != 1 || string(items[0].Data) != `2` {
			t.Fatalf("sibling bucket disturbed: %+v", items)
		}
	})
}
