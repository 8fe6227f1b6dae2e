// Package offline keeps posts, comments, likes and a pending-operation sync
// queue in local storage, so visitor interactions never block on the remote
// document store and survive running disconnected.
package offline

import (
	"encoding/json"
	"log"
	"path/filepath"
)

// Item is one record in a bucket, addressed by id.
type Item struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Store is the tier-agnostic contract both storage tiers implement, so
// everything above it never branches on which tier is active.
type Store interface {
	// SaveCollection replaces a bucket's contents wholesale.
	SaveCollection(bucket string, items []Item) error
	GetCollection(bucket string) ([]Item, error)
	// AddItem upserts one record.
	AddItem(bucket, id string, data json.RawMessage) error
	// RemoveItem reports false when the id was not present.
	RemoveItem(bucket, id string) (bool, error)
	Close() error
}

// Open probes for the structured sqlite tier once at startup and falls back
// to flat JSON files when it is unavailable.
func Open(dir string) (Store, error) {
	store, err := openSQLite(filepath.Join(dir, "offline.db"))
	if err == nil {
		return store, nil
	}
	log.Printf("offline: sqlite tier unavailable (%v), falling back to file store", err)
	return openFileStore(dir)
}
