package offline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"folio/internal/constants"
)

// fileStore is the fallback tier: one JSON file per bucket holding an
// id → record map, the flat key-value layout the site used before the
// structured tier existed.
type fileStore struct {
	dir string
	mu  sync.Mutex
}

var bucketFiles = map[string]string{
	constants.BucketPosts:      constants.StorageKeyPosts,
	constants.BucketComments:   constants.StorageKeyComments,
	constants.BucketLikes:      constants.StorageKeyLikes,
	constants.BucketSyncQueue:  constants.StorageKeySyncQueue,
	constants.BucketDeadLetter: constants.StorageKeyDeadLetter,
	constants.BucketMeta:       constants.StorageKeyLastSync,
}

func openFileStore(dir string) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &fileStore{dir: dir}, nil
}

func (s *fileStore) path(bucket string) (string, error) {
	name, ok := bucketFiles[bucket]
	if !ok {
		return "", fmt.Errorf("offline: unknown bucket %q", bucket)
	}
	return filepath.Join(s.dir, name+".json"), nil
}

func (s *fileStore) read(bucket string) (map[string]json.RawMessage, error) {
	path, err := s.path(bucket)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	records := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("offline: decode %s: %w", path, err)
	}
	return records, nil
}

func (s *fileStore) write(bucket string, records map[string]json.RawMessage) error {
	path, err := s.path(bucket)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *fileStore) SaveCollection(bucket string, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records := make(map[string]json.RawMessage, len(items))
	for _, item := range items {
		records[item.ID] = item.Data
	}
	return s.write(bucket, records)
}

func (s *fileStore) GetCollection(bucket string) ([]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read(bucket)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	items := make([]Item, len(ids))
	for i, id := range ids {
		items[i] = Item{ID: id, Data: records[id]}
	}
	return items, nil
}

func (s *fileStore) AddItem(bucket, id string, data json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read(bucket)
	if err != nil {
		return err
	}
	records[id] = data
	return s.write(bucket, records)
}

func (s *fileStore) RemoveItem(bucket, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read(bucket)
	if err != nil {
		return false, err
	}
	if _, ok := records[id]; !ok {
		return false, nil
	}
	delete(records, id)
	return true, s.write(bucket, records)
}

func (s *fileStore) Close() error { return nil }
