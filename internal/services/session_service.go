package services

import (
	"context"
	"log"
	"time"

	"folio/internal/constants"
	"folio/internal/gitdb"
	"folio/internal/models"

	"github.com/google/uuid"
)

// Admin sessions live for a week, the lifetime the site has always given
// the session cookie.
const sessionTTL = 7 * 24 * time.Hour

// SessionService manages the sessionId → session map in sessions.json.
type SessionService struct {
	doc *Doc[map[string]models.Session]
	now func() time.Time
}

func NewSessionService(store gitdb.Store, cache *gitdb.Cache) *SessionService {
	return &SessionService{
		doc: NewDoc[map[string]models.Session](store, cache, constants.CollectionSessions),
		now: time.Now,
	}
}

// Create registers a new session and returns its id and expiry.
func (s *SessionService) Create(ctx context.Context, userID string, isAdmin bool) (string, time.Time, error) {
	id := uuid.NewString()
	expires := s.now().Add(sessionTTL)
	err := s.doc.Mutate(ctx, func(sessions *map[string]models.Session) (bool, error) {
		if *sessions == nil {
			*sessions = map[string]models.Session{}
		}
		(*sessions)[id] = models.Session{UserID: userID, IsAdmin: isAdmin, Expires: expires}
		return true, nil
	})
	if err != nil {
		return "", time.Time{}, err
	}
	return id, expires, nil
}

// Get returns the session for id, or nil when it is unknown or expired.
// Expired sessions are deleted on sight.
func (s *SessionService) Get(ctx context.Context, id string) (*models.Session, error) {
	sessions, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	session, ok := sessions[id]
	if !ok {
		return nil, nil
	}
	if session.Expired(s.now()) {
		if err := s.Delete(ctx, id); err != nil {
			log.Printf("deleting expired session: %v", err)
		}
		return nil, nil
	}
	return &session, nil
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	return s.doc.Mutate(ctx, func(sessions *map[string]models.Session) (bool, error) {
		if _, ok := (*sessions)[id]; !ok {
			return false, nil
		}
		delete(*sessions, id)
		return true, nil
	})
}

// PurgeExpired sweeps out every expired session; run from the scheduler.
func (s *SessionService) PurgeExpired(ctx context.Context) (int, error) {
	purged := 0
	err := s.doc.Mutate(ctx, func(sessions *map[string]models.Session) (bool, error) {
		purged = 0
		for id, session := range *sessions {
			if session.Expired(s.now()) {
				delete(*sessions, id)
				purged++
			}
		}
		return purged > 0, nil
	})
	return purged, err
}
