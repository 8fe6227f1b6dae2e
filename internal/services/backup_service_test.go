package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"folio/internal/gitdb"

	"github.com/yeka/zip"
)

func TestBackupExportAndChangeDetection(t *testing.T) {
	ctx := context.Background()
	store := gitdb.NewMemStore()
	backup := NewBackupService(store)

	if _, err := store.SaveDocument(ctx, "posts.json", json.RawMessage(`[{"id":"p1"}]`), ""); err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveDocument(ctx, "settings.json", json.RawMessage(`{"title":"Folio"}`), ""); err != nil {
		t.Fatal(err)
	}

	data, name, err := backup.Export(ctx, "s3cret")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.HasPrefix(name, "folio_backup_") || !strings.HasSuffix(name, ".zip") {
		t.Fatalf("backup filename: %q", name)
	}

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	entries := map[string]string{}
	for _, f := range reader.File {
		if !f.IsEncrypted() {
			t.Fatalf("entry %s is not encrypted", f.Name)
		}
		f.SetPassword("s3cret")
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("opening %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("reading %s: %v", f.Name, err)
		}
		entries[f.Name] = string(content)
	}
	if entries["posts.json"] != `[{"id":"p1"}]` {
		t.Fatalf("archived posts.json: %q", entries["posts.json"])
	}
	if len(entries) != 2 {
		t.Fatalf("archive entries: %v", entries)
	}

	// Nothing changed, so the next export is skipped.
	if _, _, err := backup.Export(ctx, "s3cret"); !errors.Is(err, ErrBackupNoChange) {
		t.Fatalf("unchanged export: %v", err)
	}

	// A write makes the next export run again.
	doc, err := store.GetDocument(ctx, "posts.json")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.SaveDocument(ctx, "posts.json", json.RawMessage(`[]`), doc.Revision); err != nil {
		t.Fatal(err)
	}
	if _, _, err := backup.Export(ctx, "s3cret"); err != nil {
		t.Fatalf("export after change: %v", err)
	}
}

func TestBackupRequiresPassword(t *testing.T) {
	backup := NewBackupService(gitdb.NewMemStore())
	if _, _, err := backup.Export(context.Background(), ""); err == nil {
		t.Fatal("export without a password succeeded")
	}
}
