package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"folio/internal/gitdb"
)

func newAuth(t *testing.T) (*AuthService, *SessionService, *SettingService) {
	t.Helper()
	store := gitdb.NewMemStore()
	cache := gitdb.NewCache(gitdb.DefaultTTL)
	settings := NewSettingService(store, cache)
	sessions := NewSessionService(store, cache)
	return NewAuthService(settings, sessions), sessions, settings
}

func TestLoginBootstrapsFirstPassword(t *testing.T) {
	ctx := context.Background()
	auth, sessions, settings := newAuth(t)

	// First login on a fresh install sets the password.
	id, expires, err := auth.LoginWithPassword(ctx, "hunter2")
	if err != nil {
		t.Fatalf("bootstrap login: %v", err)
	}
	if id == "" || expires.IsZero() {
		t.Fatalf("bootstrap login returned empty session: %q %v", id, expires)
	}

	stored, err := settings.Get(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stored.AdminPassword == "" || stored.AdminPassword == "hunter2" {
		t.Fatalf("password not stored as a hash: %q", stored.AdminPassword)
	}

	// From now on the password is enforced.
	if _, _, err := auth.LoginWithPassword(ctx, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, _, err := auth.LoginWithPassword(ctx, "hunter2"); err != nil {
		t.Fatalf("correct password: %v", err)
	}

	session, err := sessions.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if session == nil || !session.IsAdmin {
		t.Fatalf("bootstrap session not admin: %+v", session)
	}
}

func TestLoginWithPin(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	// No PIN configured rejects PIN login, it never bootstraps.
	if _, _, err := auth.LoginWithPin(ctx, "1234"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("pin login without pin: %v", err)
	}

	if err := auth.UpdatePin(ctx, "1234"); err != nil {
		t.Fatal(err)
	}
	if _, _, err := auth.LoginWithPin(ctx, "0000"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong pin: %v", err)
	}
	if _, _, err := auth.LoginWithPin(ctx, "1234"); err != nil {
		t.Fatalf("correct pin: %v", err)
	}
}

func TestUpdatePasswordRequiresCurrent(t *testing.T) {
	ctx := context.Background()
	auth, _, _ := newAuth(t)

	if _, _, err := auth.LoginWithPassword(ctx, "first"); err != nil {
		t.Fatal(err)
	}
	if err := auth.UpdatePassword(ctx, "wrong", "second"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("rotate with wrong current: %v", err)
	}
	if err := auth.UpdatePassword(ctx, "first", "second"); err != nil {
		t.Fatalf("rotate: %v", err)
	}
	if _, _, err := auth.LoginWithPassword(ctx, "first"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatal("old password still accepted after rotation")
	}
	if _, _, err := auth.LoginWithPassword(ctx, "second"); err != nil {
		t.Fatalf("new password: %v", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	auth, sessions, _ := newAuth(t)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return clock }

	id, _, err := auth.LoginWithPassword(ctx, "hunter2")
	if err != nil {
		t.Fatal(err)
	}

	session, err := sessions.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if session == nil {
		t.Fatal("fresh session not found")
	}

	clock = clock.Add(sessionTTL + time.Minute)
	session, err = sessions.Get(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if session != nil {
		t.Fatalf("expired session still served: %+v", session)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store := gitdb.NewMemStore()
	cache := gitdb.NewCache(gitdb.DefaultTTL)
	sessions := NewSessionService(store, cache)

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return clock }

	old, _, err := sessions.Create(ctx, "admin", true)
	if err != nil {
		t.Fatal(err)
	}
	clock = clock.Add(sessionTTL - time.Hour)
	fresh, _, err := sessions.Create(ctx, "admin", true)
	if err != nil {
		t.Fatal(err)
	}

	clock = clock.Add(2 * time.Hour)
	purged, err := sessions.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if purged != 1 {
		t.Fatalf("purged %d sessions, want 1", purged)
	}

	if s, err := sessions.Get(ctx, old); err != nil || s != nil {
		t.Fatalf("old session should be gone: %+v %v", s, err)
	}
	if s, err := sessions.Get(ctx, fresh); err != nil || s == nil {
		t.Fatalf("fresh session should survive the purge: %+v %v", s, err)
	}
}
