package services

import (
	"context"
	"fmt"
	"time"

	"folio/internal/constants"
	"folio/internal/gitdb"
	"folio/internal/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// PageService manages the static pages collection. Slugs are derived from
// the title and kept unique within the collection.
type PageService struct {
	pages *Collection[models.Page]
}

func NewPageService(store gitdb.Store, cache *gitdb.Cache) *PageService {
	return &PageService{
		pages: NewCollection(store, cache, constants.CollectionPages, func(p models.Page) string { return p.ID }),
	}
}

func (s *PageService) List(ctx context.Context) ([]models.Page, error) {
	return s.pages.List(ctx)
}

func (s *PageService) Refresh(ctx context.Context) ([]models.Page, error) {
	return s.pages.Refresh(ctx)
}

// GetBySlug returns (nil, nil) when no published page has the slug.
func (s *PageService) GetBySlug(ctx context.Context, pageSlug string) (*models.Page, error) {
	pages, err := s.pages.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pages {
		if pages[i].Slug == pageSlug && pages[i].IsPublished {
			return &pages[i], nil
		}
	}
	return nil, nil
}

func (s *PageService) Create(ctx context.Context, page *models.Page) error {
	if page.ID == "" {
		page.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	page.CreatedAt = now
	page.UpdatedAt = now
	return s.pages.Mutate(ctx, func(items []models.Page) ([]models.Page, bool, error) {
		for i := range items {
			if items[i].ID == page.ID {
				return items, false, nil
			}
		}
		page.Slug = uniqueSlug(page.Title, page.ID, items)
		return append(items, *page), true, nil
	})
}

func (s *PageService) Update(ctx context.Context, page models.Page) error {
	page.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return s.pages.Mutate(ctx, func(items []models.Page) ([]models.Page, bool, error) {
		for i := range items {
			if items[i].ID == page.ID {
				if items[i].Title != page.Title {
					page.Slug = uniqueSlug(page.Title, page.ID, items)
				} else {
					page.Slug = items[i].Slug
				}
				page.CreatedAt = items[i].CreatedAt
				items[i] = page
				return items, true, nil
			}
		}
		return nil, false, ErrNotFound
	})
}

func (s *PageService) Delete(ctx context.Context, id string) error {
	return s.pages.Delete(ctx, id)
}

// uniqueSlug appends a counter until the slug collides with no other page.
func uniqueSlug(title, id string, pages []models.Page) string {
	base := slug.Make(title)
	if base == "" {
		base = "untitled"
	}
	candidate := base
	counter := 1
	for {
		taken := false
		for _, p := range pages {
			if p.Slug == candidate && p.ID != id {
				taken = true
				break
			}
		}
		if !taken {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d", base, counter)
		counter++
	}
}
