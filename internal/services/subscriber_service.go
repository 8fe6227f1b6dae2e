package services

import (
	"context"
	"strings"

	"folio/internal/constants"
	"folio/internal/gitdb"
)

// SubscriberService keeps subscribers.json, a flat array of email strings.
type SubscriberService struct {
	doc *Doc[[]string]
}

func NewSubscriberService(store gitdb.Store, cache *gitdb.Cache) *SubscriberService {
	return &SubscriberService{doc: NewDoc[[]string](store, cache, constants.CollectionSubscribers)}
}

func (s *SubscriberService) List(ctx context.Context) ([]string, error) {
	subscribers, err := s.doc.Load(ctx)
	if err != nil {
		return nil, err
	}
	if subscribers == nil {
		subscribers = []string{}
	}
	return subscribers, nil
}

// Subscribe adds an email once; subscribing twice reports success without a
// second write.
func (s *SubscriberService) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	return s.doc.Mutate(ctx, func(subscribers *[]string) (bool, error) {
		for _, existing := range *subscribers {
			if existing == email {
				return false, nil
			}
		}
		*subscribers = append(*subscribers, email)
		return true, nil
	})
}
