// Package gitdb stores whole JSON collection documents in a Git-hosted
// repository, using the file's content SHA as an optimistic-concurrency
// revision token.
package gitdb

import (
	"context"
	"encoding/json"
	"errors"
)

// Document is one collection file as read from the store.
type Document struct {
	Content  json.RawMessage
	Revision string
}

var (
	// ErrConflict means a conditional save was rejected because the supplied
	// revision no longer matches the document. The caller read stale data and
	// must re-read before saving again.
	ErrConflict = errors.New("gitdb: revision conflict")

	// ErrTimeout means the host did not answer within the configured deadline.
	ErrTimeout = errors.New("gitdb: request timed out")
)

// Store is the document-store contract. Absence of a document is not an
// error: GetDocument returns (nil, nil) and DeleteDocument returns false.
//
// SaveDocument takes the revision the caller read (empty string for a
// document the caller believes does not exist yet) and must reject the write
// with ErrConflict when that revision is stale, so a concurrent writer can
// never be silently clobbered.
type Store interface {
	GetDocument(ctx context.Context, key string) (*Document, error)
	SaveDocument(ctx context.Context, key string, content json.RawMessage, revision string) (string, error)
	DeleteDocument(ctx context.Context, key string) (bool, error)
	ListDocuments(ctx context.Context, prefix string) ([]string, error)
}
