package offline

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"folio/internal/constants"
	"folio/internal/models"
)

// A queued operation is retried this many times before it is parked in the
// dead-letter bucket instead of blocking the queue forever.
const maxReplayAttempts = 5

// Applier replays queued operations against the remote-backed services.
// Every method must be idempotent: the queue guarantees at-least-once
// delivery, not exactly-once.
type Applier interface {
	CreatePost(ctx context.Context, post models.Post) error
	AddComment(ctx context.Context, comment models.Comment) error
	Like(ctx context.Context, postID, userID string) error
	Unlike(ctx context.Context, postID, userID string) error
}

// Reconciler drains the pending-operation queue against an Applier.
type Reconciler struct {
	db      *DB
	applier Applier
}

func NewReconciler(db *DB, applier Applier) *Reconciler {
	return &Reconciler{db: db, applier: applier}
}

// Drain replays every queued operation in enqueue order. A successful
// replay removes its item; a failed one stays queued with its attempt count
// bumped, and items past the attempt limit move to the dead-letter bucket.
// Draining an empty queue is a no-op. Returns the number applied.
func (r *Reconciler) Drain(ctx context.Context) (int, error) {
	queue, err := r.db.Queue()
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, item := range queue {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		if err := r.replay(ctx, item); err != nil {
			item.Attempts++
			if item.Attempts >= maxReplayAttempts {
				log.Printf("sync: parking %s op %s after %d attempts: %v", item.ID, item.Op, item.Attempts, err)
				if dlErr := r.db.MoveToDeadLetter(item); dlErr != nil {
					log.Printf("sync: dead-lettering %s: %v", item.ID, dlErr)
				}
				continue
			}
			log.Printf("sync: replay %s op %s failed (attempt %d): %v", item.ID, item.Op, item.Attempts, err)
			if updErr := r.db.UpdateQueueItem(item); updErr != nil {
				log.Printf("sync: recording attempt for %s: %v", item.ID, updErr)
			}
			continue
		}
		if _, err := r.db.RemoveQueueItem(item.ID); err != nil {
			return applied, err
		}
		applied++
	}

	if applied > 0 {
		if err := r.db.SetLastSync(time.Now().UTC()); err != nil {
			log.Printf("sync: recording last-sync time: %v", err)
		}
	}
	return applied, nil
}

func (r *Reconciler) replay(ctx context.Context, item models.SyncItem) error {
	switch item.Op {
	case constants.OpCreatePost:
		var post models.Post
		if err := json.Unmarshal(item.Payload, &post); err != nil {
			return err
		}
		return r.applier.CreatePost(ctx, post)
	case constants.OpComment:
		var comment models.Comment
		if err := json.Unmarshal(item.Payload, &comment); err != nil {
			return err
		}
		return r.applier.AddComment(ctx, comment)
	case constants.OpLike:
		var like models.Like
		if err := json.Unmarshal(item.Payload, &like); err != nil {
			return err
		}
		return r.applier.Like(ctx, like.PostID, like.UserID)
	case constants.OpUnlike:
		var like models.Like
		if err := json.Unmarshal(item.Payload, &like); err != nil {
			return err
		}
		return r.applier.Unlike(ctx, like.PostID, like.UserID)
	default:
		return errUnknownOp(item.Op)
	}
}

type errUnknownOp string

func (e errUnknownOp) Error() string { return "sync: unknown operation type " + string(e) }
