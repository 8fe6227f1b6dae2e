package services

import (
	"context"

	"folio/internal/models"
)

// SyncApplier adapts the entity services to the reconciler's replay
// contract. All underlying operations are idempotent, so replaying a queue
// item twice never double-applies.
type SyncApplier struct {
	posts    *PostService
	comments *CommentService
	likes    *LikeService
}

func NewSyncApplier(posts *PostService, comments *CommentService, likes *LikeService) *SyncApplier {
	return &SyncApplier{posts: posts, comments: comments, likes: likes}
}

func (s *SyncApplier) CreatePost(ctx context.Context, post models.Post) error {
	return s.posts.Create(ctx, &post)
}

func (s *SyncApplier) AddComment(ctx context.Context, comment models.Comment) error {
	return s.comments.Add(ctx, comment)
}

func (s *SyncApplier) Like(ctx context.Context, postID, userID string) error {
	_, err := s.likes.Like(ctx, postID, userID)
	return err
}

func (s *SyncApplier) Unlike(ctx context.Context, postID, userID string) error {
	_, err := s.likes.Unlike(ctx, postID, userID)
	return err
}
