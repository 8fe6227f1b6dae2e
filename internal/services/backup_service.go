package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"folio/internal/gitdb"

	"github.com/yeka/zip"
)

var ErrBackupNoChange = errors.New("services: no changes since last backup")

// BackupService exports every collection document as one password-protected
// zip, for an off-host copy of the store. Exports whose content matches the
// previous one are skipped.
type BackupService struct {
	store gitdb.Store

	mu       sync.Mutex
	lastHash string
}

func NewBackupService(store gitdb.Store) *BackupService {
	return &BackupService{store: store}
}

// Export fetches all documents, hashes them, and returns an AES-256
// encrypted zip plus a timestamped filename. ErrBackupNoChange when nothing
// changed since the previous export of this process.
func (s *BackupService) Export(ctx context.Context, password string) ([]byte, string, error) {
	if password == "" {
		return nil, "", fmt.Errorf("services: backup password not set")
	}

	keys, err := s.store.ListDocuments(ctx, "")
	if err != nil {
		return nil, "", fmt.Errorf("listing documents: %w", err)
	}

	type file struct {
		key     string
		content []byte
	}
	var files []file
	hash := sha256.New()
	for _, key := range keys {
		doc, err := s.store.GetDocument(ctx, key)
		if err != nil {
			return nil, "", fmt.Errorf("reading %s: %w", key, err)
		}
		if doc == nil {
			continue
		}
		files = append(files, file{key: key, content: doc.Content})
		hash.Write([]byte(key))
		hash.Write(doc.Content)
	}

	digest := hex.EncodeToString(hash.Sum(nil))
	s.mu.Lock()
	unchanged := digest == s.lastHash
	s.mu.Unlock()
	if unchanged {
		return nil, "", ErrBackupNoChange
	}

	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, f := range files {
		entry, err := zw.Encrypt(f.key, password, zip.AES256Encryption)
		if err != nil {
			return nil, "", fmt.Errorf("creating zip entry %s: %w", f.key, err)
		}
		if _, err := entry.Write(f.content); err != nil {
			return nil, "", fmt.Errorf("writing zip entry %s: %w", f.key, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, "", fmt.Errorf("finalizing zip: %w", err)
	}

	s.mu.Lock()
	s.lastHash = digest
	s.mu.Unlock()

	name := fmt.Sprintf("folio_backup_%s.zip", time.Now().Format("20060102150405"))
	return buf.Bytes(), name, nil
}
