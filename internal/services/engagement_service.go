package services

import (
	"context"
	"time"

	"folio/internal/constants"
	"folio/internal/gitdb"
	"folio/internal/models"
)

// CommentService appends visitor comments to the per-post buckets in
// comments.json. Comments are never edited.
type CommentService struct {
	comments *MapCollection[models.Comment]
}

func NewCommentService(store gitdb.Store, cache *gitdb.Cache) *CommentService {
	return &CommentService{
		comments: NewMapCollection[models.Comment](store, cache, constants.CollectionComments),
	}
}

func (s *CommentService) ListByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return s.comments.ListFor(ctx, postID)
}

// Add is idempotent by comment id: replaying the same queued comment twice
// cannot duplicate it.
func (s *CommentService) Add(ctx context.Context, comment models.Comment) error {
	return s.comments.Mutate(ctx, func(all map[string][]models.Comment) (bool, error) {
		for _, existing := range all[comment.PostID] {
			if existing.ID == comment.ID {
				return false, nil
			}
		}
		all[comment.PostID] = append(all[comment.PostID], comment)
		return true, nil
	})
}

// LikeService toggles likes, idempotent per (postId, userId).
type LikeService struct {
	likes *MapCollection[models.Like]
}

func NewLikeService(store gitdb.Store, cache *gitdb.Cache) *LikeService {
	return &LikeService{
		likes: NewMapCollection[models.Like](store, cache, constants.CollectionLikes),
	}
}

func (s *LikeService) ListByPost(ctx context.Context, postID string) ([]models.Like, error) {
	return s.likes.ListFor(ctx, postID)
}

// Like records a like. Returns true when the pair was already liked, in
// which case nothing is written.
func (s *LikeService) Like(ctx context.Context, postID, userID string) (bool, error) {
	already := false
	err := s.likes.Mutate(ctx, func(all map[string][]models.Like) (bool, error) {
		for _, like := range all[postID] {
			if like.UserID == userID {
				already = true
				return false, nil
			}
		}
		all[postID] = append(all[postID], models.Like{
			PostID: postID,
			UserID: userID,
			Date:   time.Now().UTC().Format(time.RFC3339),
		})
		return true, nil
	})
	return already, err
}

// Unlike removes a like. Unliking a post that was never liked is a no-op.
func (s *LikeService) Unlike(ctx context.Context, postID, userID string) (bool, error) {
	removed := false
	err := s.likes.Mutate(ctx, func(all map[string][]models.Like) (bool, error) {
		likes := all[postID]
		for i, like := range likes {
			if like.UserID == userID {
				all[postID] = append(likes[:i], likes[i+1:]...)
				removed = true
				return true, nil
			}
		}
		return false, nil
	})
	return removed, err
}

func (s *LikeService) IsLiked(ctx context.Context, postID, userID string) (bool, error) {
	likes, err := s.likes.ListFor(ctx, postID)
	if err != nil {
		return false, err
	}
	for _, like := range likes {
		if like.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}
