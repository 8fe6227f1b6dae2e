package offline

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"folio/internal/constants"
	"folio/internal/models"

	"github.com/oklog/ulid/v2"
)

// DB is the typed layer over a storage tier: local-first posts, comments
// and likes, plus the pending-operation queue the reconciler drains.
type DB struct {
	store Store
}

func NewDB(store Store) *DB {
	return &DB{store: store}
}

func (d *DB) Close() error { return d.store.Close() }

// SavePosts replaces the local posts snapshot.
func (d *DB) SavePosts(posts []models.Post) error {
	items := make([]Item, len(posts))
	for i, post := range posts {
		data, err := json.Marshal(post)
		if err != nil {
			return err
		}
		items[i] = Item{ID: post.ID, Data: data}
	}
	return d.store.SaveCollection(constants.BucketPosts, items)
}

func (d *DB) Posts() ([]models.Post, error) {
	return readBucket[models.Post](d.store, constants.BucketPosts)
}

// AddComment stores the comment locally and queues it for replay.
func (d *DB) AddComment(comment models.Comment) error {
	data, err := json.Marshal(comment)
	if err != nil {
		return err
	}
	if err := d.store.AddItem(constants.BucketComments, comment.ID, data); err != nil {
		return err
	}
	return d.Enqueue(constants.OpComment, comment)
}

func (d *DB) CommentsByPost(postID string) ([]models.Comment, error) {
	comments, err := readBucket[models.Comment](d.store, constants.BucketComments)
	if err != nil {
		return nil, err
	}
	matched := []models.Comment{}
	for _, comment := range comments {
		if comment.PostID == postID {
			matched = append(matched, comment)
		}
	}
	return matched, nil
}

func likeKey(postID, userID string) string {
	return postID + "-" + userID
}

// Like records a like locally and queues it. Liking an already-liked post
// reports already=true and writes nothing.
func (d *DB) Like(postID, userID string) (bool, error) {
	liked, err := d.IsLiked(postID, userID)
	if err != nil || liked {
		return liked, err
	}
	like := models.Like{PostID: postID, UserID: userID, Date: time.Now().UTC().Format(time.RFC3339)}
	data, err := json.Marshal(like)
	if err != nil {
		return false, err
	}
	if err := d.store.AddItem(constants.BucketLikes, likeKey(postID, userID), data); err != nil {
		return false, err
	}
	return false, d.Enqueue(constants.OpLike, like)
}

// Unlike removes a local like and queues the removal. Unliking an unliked
// post is a no-op that queues nothing.
func (d *DB) Unlike(postID, userID string) (bool, error) {
	removed, err := d.store.RemoveItem(constants.BucketLikes, likeKey(postID, userID))
	if err != nil || !removed {
		return removed, err
	}
	return true, d.Enqueue(constants.OpUnlike, models.Like{PostID: postID, UserID: userID})
}

func (d *DB) IsLiked(postID, userID string) (bool, error) {
	items, err := d.store.GetCollection(constants.BucketLikes)
	if err != nil {
		return false, err
	}
	key := likeKey(postID, userID)
	for _, item := range items {
		if item.ID == key {
			return true, nil
		}
	}
	return false, nil
}

// QueuePost stores an admin-created post locally and queues its creation.
func (d *DB) QueuePost(post models.Post) error {
	data, err := json.Marshal(post)
	if err != nil {
		return err
	}
	if err := d.store.AddItem(constants.BucketPosts, post.ID, data); err != nil {
		return err
	}
	return d.Enqueue(constants.OpCreatePost, post)
}

// Enqueue pushes a pending operation. Item ids are ULIDs, so reading the
// queue back in id order replays operations in enqueue order.
func (d *DB) Enqueue(op string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	item := models.SyncItem{
		ID:         ulid.Make().String(),
		Op:         op,
		Payload:    data,
		EnqueuedAt: time.Now().UTC(),
	}
	itemData, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return d.store.AddItem(constants.BucketSyncQueue, item.ID, itemData)
}

// Queue returns all pending operations in enqueue order.
func (d *DB) Queue() ([]models.SyncItem, error) {
	return readBucket[models.SyncItem](d.store, constants.BucketSyncQueue)
}

// UpdateQueueItem persists a changed attempt counter.
func (d *DB) UpdateQueueItem(item models.SyncItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return d.store.AddItem(constants.BucketSyncQueue, item.ID, data)
}

func (d *DB) RemoveQueueItem(id string) (bool, error) {
	return d.store.RemoveItem(constants.BucketSyncQueue, id)
}

// MoveToDeadLetter parks a poison item out of the queue.
func (d *DB) MoveToDeadLetter(item models.SyncItem) error {
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	if err := d.store.AddItem(constants.BucketDeadLetter, item.ID, data); err != nil {
		return err
	}
	_, err = d.store.RemoveItem(constants.BucketSyncQueue, item.ID)
	return err
}

func (d *DB) DeadLetter() ([]models.SyncItem, error) {
	return readBucket[models.SyncItem](d.store, constants.BucketDeadLetter)
}

func (d *DB) SetLastSync(t time.Time) error {
	data, err := json.Marshal(strconv.FormatInt(t.UnixMilli(), 10))
	if err != nil {
		return err
	}
	return d.store.AddItem(constants.BucketMeta, constants.StorageKeyLastSync, data)
}

func (d *DB) LastSync() (time.Time, error) {
	items, err := d.store.GetCollection(constants.BucketMeta)
	if err != nil {
		return time.Time{}, err
	}
	for _, item := range items {
		if item.ID != constants.StorageKeyLastSync {
			continue
		}
		var raw string
		if err := json.Unmarshal(item.Data, &raw); err != nil {
			return time.Time{}, err
		}
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("offline: bad last-sync value %q: %w", raw, err)
		}
		return time.UnixMilli(millis), nil
	}
	return time.Time{}, nil
}

func readBucket[T any](store Store, bucket string) ([]T, error) {
	items, err := store.GetCollection(bucket)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(items))
	for _, item := range items {
		var value T
		if err := json.Unmarshal(item.Data, &value); err != nil {
			return nil, fmt.Errorf("offline: decode %s/%s: %w", bucket, item.ID, err)
		}
		out = append(out, value)
	}
	return out, nil
}
