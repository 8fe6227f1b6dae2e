package gitdb

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// MemStore is an in-memory Store with the same revision semantics as the
// GitHub-backed client. It backs local development when no repository token
// is configured, and the test suites.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]*Document
	rev  uint64
}

func NewMemStore() *MemStore {
	return &MemStore{docs: make(map[string]*Document)}
}

func (m *MemStore) nextRevision() string {
	m.rev++
	return "rev-" + strconv.FormatUint(m.rev, 10)
}

func (m *MemStore) GetDocument(_ context.Context, key string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.docs[key]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (m *MemStore) SaveDocument(_ context.Context, key string, content json.RawMessage, revision string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, exists := m.docs[key]
	if revision == "" && exists {
		return "", fmt.Errorf("gitdb: save %q: %w", key, ErrConflict)
	}
	if revision != "" && (!exists || current.Revision != revision) {
		return "", fmt.Errorf("gitdb: save %q: %w", key, ErrConflict)
	}

	rev := m.nextRevision()
	m.docs[key] = &Document{Content: append(json.RawMessage(nil), content...), Revision: rev}
	return rev, nil
}

func (m *MemStore) DeleteDocument(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		return false, nil
	}
	delete(m.docs, key)
	return true, nil
}

func (m *MemStore) ListDocuments(_ context.Context, prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for key := range m.docs {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
