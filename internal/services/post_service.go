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

type PostService struct {
	posts    *Collection[models.Post]
	comments *MapCollection[models.Comment]
	likes    *MapCollection[models.Like]
}

func NewPostService(store gitdb.Store, cache *gitdb.Cache) *PostService {
	return &PostService{
		posts:    NewCollection(store, cache, constants.CollectionPosts, func(p models.Post) string { return p.ID }),
		comments: NewMapCollection[models.Comment](store, cache, constants.CollectionComments),
		likes:    NewMapCollection[models.Like](store, cache, constants.CollectionLikes),
	}
}

// List returns all posts with like/comment counters refreshed from the
// engagement collections. The stored counters only track shares; likes and
// comments are derived so that offline-synced interactions are never
// double-counted.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, posts), nil
}

// Refresh bypasses the cache, for the admin dashboard.
func (s *PostService) Refresh(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.Refresh(ctx)
	if err != nil {
		return nil, err
	}
	return s.withCounts(ctx, posts), nil
}

// GetByID returns (nil, nil) when the post does not exist.
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil || post == nil {
		return post, err
	}
	counted := s.withCounts(ctx, []models.Post{*post})
	return &counted[0], nil
}

// Create fills in a fresh id and date when the caller left them empty.
// Replaying a create with an existing id is a no-op.
func (s *PostService) Create(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.Date == "" {
		post.Date = time.Now().UTC().Format(time.RFC3339)
	}
	return s.posts.Create(ctx, *post)
}

func (s *PostService) Update(ctx context.Context, post models.Post) error {
	return s.posts.Update(ctx, post)
}

// Delete removes the post and its comment and like buckets, so engagement
// data cannot leak past the post that owned it.
func (s *PostService) Delete(ctx context.Context, id string) error {
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.comments.DropKey(ctx, id); err != nil {
		log.Printf("delete post %s: dropping comments: %v", id, err)
	}
	if err := s.likes.DropKey(ctx, id); err != nil {
		log.Printf("delete post %s: dropping likes: %v", id, err)
	}
	return nil
}

// Share bumps the stored share counter and returns the new count.
func (s *PostService) Share(ctx context.Context, id string) (int, error) {
	var shares int
	err := s.posts.Mutate(ctx, func(items []models.Post) ([]models.Post, bool, error) {
		for i := range items {
			if items[i].ID == id {
				items[i].Shares++
				shares = items[i].Shares
				return items, true, nil
			}
		}
		return nil, false, ErrNotFound
	})
	return shares, err
}

func (s *PostService) withCounts(ctx context.Context, posts []models.Post) []models.Post {
	likes, err := s.likes.All(ctx)
	if err != nil {
		log.Printf("loading like counts: %v", err)
		likes = nil
	}
	comments, err := s.comments.All(ctx)
	if err != nil {
		log.Printf("loading comment counts: %v", err)
		comments = nil
	}
	for i := range posts {
		posts[i].Likes = len(likes[posts[i].ID])
		posts[i].Comments = len(comments[posts[i].ID])
	}
	return posts
}
