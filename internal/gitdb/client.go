package gitdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v39/github"
	"golang.org/x/oauth2"
)

// Config identifies the repository acting as the document store.
type Config struct {
	Owner  string
	Repo   string
	Branch string
	// Path is the directory prefix inside the repository, e.g. "data/".
	Path  string
	Token string
	// Timeout bounds every single host call. Zero means 15s.
	Timeout time.Duration
}

const defaultTimeout = 15 * time.Second

// Client implements Store against the GitHub contents API.
type Client struct {
	gh  *github.Client
	cfg Config
}

func NewClient(cfg Config) *Client {
	if cfg.Branch == "" {
		cfg.Branch = "main"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{gh: github.NewClient(tc), cfg: cfg}
}

func (c *Client) path(key string) string {
	return c.cfg.Path + key
}

func (c *Client) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, c.cfg.Timeout)
}

// GetDocument fetches a document and its revision. A missing document is
// (nil, nil), never an error.
func (c *Client) GetDocument(ctx context.Context, key string) (*Document, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	file, _, _, err := c.gh.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, c.path(key),
		&github.RepositoryContentGetOptions{Ref: c.cfg.Branch})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, wrapHostErr("get", key, err)
	}
	if file == nil {
		return nil, fmt.Errorf("gitdb: %q is a directory, not a document", key)
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("gitdb: decode %q: %w", key, err)
	}
	return &Document{Content: json.RawMessage(content), Revision: file.GetSHA()}, nil
}

// SaveDocument writes a document conditionally on the revision the caller
// read. With a revision it updates; the host rejects the write when the
// revision is stale (surfaced as ErrConflict). With an empty revision it
// creates; creating a document that already exists is also a conflict.
// Returns the new revision.
func (c *Client) SaveDocument(ctx context.Context, key string, content json.RawMessage, revision string) (string, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	opts := &github.RepositoryContentFileOptions{
		Content: content,
		Branch:  github.String(c.cfg.Branch),
	}

	var resp *github.RepositoryContentResponse
	var err error
	if revision != "" {
		opts.Message = github.String("Update " + key)
		opts.SHA = github.String(revision)
		resp, _, err = c.gh.Repositories.UpdateFile(ctx, c.cfg.Owner, c.cfg.Repo, c.path(key), opts)
	} else {
		opts.Message = github.String("Create " + key)
		resp, _, err = c.gh.Repositories.CreateFile(ctx, c.cfg.Owner, c.cfg.Repo, c.path(key), opts)
	}
	if err != nil {
		if isConflict(err) {
			return "", fmt.Errorf("gitdb: save %q: %w", key, ErrConflict)
		}
		return "", wrapHostErr("save", key, err)
	}
	return resp.Content.GetSHA(), nil
}

// DeleteDocument removes a document using its current revision. Returns
// false when the document did not exist.
func (c *Client) DeleteDocument(ctx context.Context, key string) (bool, error) {
	doc, err := c.GetDocument(ctx, key)
	if err != nil {
		return false, err
	}
	if doc == nil {
		return false, nil
	}

	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	opts := &github.RepositoryContentFileOptions{
		Message: github.String("Delete " + key),
		SHA:     github.String(doc.Revision),
		Branch:  github.String(c.cfg.Branch),
	}
	if _, _, err := c.gh.Repositories.DeleteFile(ctx, c.cfg.Owner, c.cfg.Repo, c.path(key), opts); err != nil {
		if isConflict(err) {
			return false, fmt.Errorf("gitdb: delete %q: %w", key, ErrConflict)
		}
		return false, wrapHostErr("delete", key, err)
	}
	return true, nil
}

// ListDocuments enumerates document keys under a path prefix.
func (c *Client) ListDocuments(ctx context.Context, prefix string) ([]string, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()

	dir := strings.TrimSuffix(c.path(prefix), "/")
	_, entries, _, err := c.gh.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, dir,
		&github.RepositoryContentGetOptions{Ref: c.cfg.Branch})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, wrapHostErr("list", prefix, err)
	}

	var keys []string
	for _, entry := range entries {
		if entry.GetType() != "file" {
			continue
		}
		keys = append(keys, strings.TrimPrefix(entry.GetPath(), c.cfg.Path))
	}
	return keys, nil
}

func wrapHostErr(op, key string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("gitdb: %s %q: %w", op, key, ErrTimeout)
	}
	return fmt.Errorf("gitdb: %s %q: %w", op, key, err)
}

func isNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	return errors.As(err, &ghErr) && ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}

// isConflict matches the statuses GitHub uses for a stale or missing SHA on
// a contents write: 409 when the branch moved, 422 when the SHA is wrong or
// required.
func isConflict(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) || ghErr.Response == nil {
		return false
	}
	code := ghErr.Response.StatusCode
	return code == http.StatusConflict || code == http.StatusUnprocessableEntity
}
