package services

import (
	"context"

	"folio/internal/constants"
	"folio/internal/gitdb"
	"folio/internal/models"
)

// SettingService owns the single settings.json object.
type SettingService struct {
	doc *Doc[models.Settings]
}

func NewSettingService(store gitdb.Store, cache *gitdb.Cache) *SettingService {
	return &SettingService{doc: NewDoc[models.Settings](store, cache, constants.CollectionSettings)}
}

func (s *SettingService) Get(ctx context.Context) (models.Settings, error) {
	return s.doc.Load(ctx)
}

func (s *SettingService) Refresh(ctx context.Context) (models.Settings, error) {
	return s.doc.Refresh(ctx)
}

// Update replaces the site settings. Credential fields left empty by the
// caller keep their stored values; they are managed through AuthService.
func (s *SettingService) Update(ctx context.Context, incoming models.Settings) error {
	return s.doc.Mutate(ctx, func(settings *models.Settings) (bool, error) {
		if incoming.AdminPassword == "" {
			incoming.AdminPassword = settings.AdminPassword
		}
		if incoming.AdminPin == "" {
			incoming.AdminPin = settings.AdminPin
		}
		if incoming.RecoveryEmails == nil {
			incoming.RecoveryEmails = settings.RecoveryEmails
		}
		*settings = incoming
		return true, nil
	})
}

// Mutate exposes the underlying conditional-update loop to AuthService.
func (s *SettingService) Mutate(ctx context.Context, fn func(*models.Settings) (bool, error)) error {
	return s.doc.Mutate(ctx, fn)
}
