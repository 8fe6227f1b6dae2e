package services

import (
	"context"
	"errors"
	"time"

	"folio/internal/models"

	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("services: invalid credentials")

// AuthService gates all admin mutations. Passwords are stored as bcrypt
// hashes in settings.json; the PIN is a 4-digit quick-login code.
type AuthService struct {
	settings *SettingService
	sessions *SessionService
}

func NewAuthService(settings *SettingService, sessions *SessionService) *AuthService {
	return &AuthService{settings: settings, sessions: sessions}
}

// LoginWithPassword checks the admin password and opens an admin session.
// On a fresh install with no password configured, the first login sets it.
func (a *AuthService) LoginWithPassword(ctx context.Context, password string) (string, time.Time, error) {
	settings, err := a.settings.Get(ctx)
	if err != nil {
		return "", time.Time{}, err
	}

	if settings.AdminPassword == "" {
		if err := a.setPassword(ctx, password); err != nil {
			return "", time.Time{}, err
		}
		return a.sessions.Create(ctx, "admin", true)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPassword), []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.sessions.Create(ctx, "admin", true)
}

// LoginWithPin opens an admin session when the 4-digit PIN matches. A site
// with no PIN configured rejects PIN login outright.
func (a *AuthService) LoginWithPin(ctx context.Context, pin string) (string, time.Time, error) {
	settings, err := a.settings.Get(ctx)
	if err != nil {
		return "", time.Time{}, err
	}
	if settings.AdminPin == "" || pin != settings.AdminPin {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return a.sessions.Create(ctx, "admin", true)
}

func (a *AuthService) Logout(ctx context.Context, sessionID string) error {
	return a.sessions.Delete(ctx, sessionID)
}

// UpdatePassword rotates the admin password after verifying the current
// one. With no password configured yet, it bootstraps directly.
func (a *AuthService) UpdatePassword(ctx context.Context, current, updated string) error {
	settings, err := a.settings.Get(ctx)
	if err != nil {
		return err
	}
	if settings.AdminPassword != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(settings.AdminPassword), []byte(current)); err != nil {
			return ErrInvalidCredentials
		}
	}
	return a.setPassword(ctx, updated)
}

func (a *AuthService) UpdatePin(ctx context.Context, pin string) error {
	return a.settings.Mutate(ctx, func(s *models.Settings) (bool, error) {
		if s.AdminPin == pin {
			return false, nil
		}
		s.AdminPin = pin
		return true, nil
	})
}

func (a *AuthService) UpdateRecoveryEmails(ctx context.Context, emails []string) error {
	return a.settings.Mutate(ctx, func(s *models.Settings) (bool, error) {
		s.RecoveryEmails = emails
		return true, nil
	})
}

func (a *AuthService) setPassword(ctx context.Context, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return a.settings.Mutate(ctx, func(s *models.Settings) (bool, error) {
		s.AdminPassword = string(hash)
		return true, nil
	})
}
