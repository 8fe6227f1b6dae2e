package models

import (
	"encoding/json"
	"time"
)

// Session is one entry in the sessions.json map, keyed by session id.
type Session struct {
	UserID  string    `json:"userId"`
	IsAdmin bool      `json:"isAdmin"`
	Expires time.Time `json:"expires"`
}

func (s Session) Expired(now time.Time) bool {
	return s.Expires.Before(now)
}

// SyncItem is a pending local mutation awaiting replay against the remote
// store. IDs are ULIDs so queue order follows enqueue order.
type SyncItem struct {
	ID         string          `json:"id"`
	Op         string          `json:"type"`
	Payload    json.RawMessage `json:"data"`
	EnqueuedAt time.Time       `json:"timestamp"`
	Attempts   int             `json:"attempts,omitempty"`
}
