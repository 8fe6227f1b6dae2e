package offline

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"folio/internal/models"
)

// recordingApplier logs every replayed operation and can be told to fail.
type recordingApplier struct {
	ops  []string
	fail error
}

func (a *recordingApplier) apply(op string) error {
	if a.fail != nil {
		return a.fail
	}
	a.ops = append(a.ops, op)
	return nil
}

func (a *recordingApplier) CreatePost(ctx context.Context, post models.Post) error {
	return a.apply("post:" + post.ID)
}

func (a *recordingApplier) AddComment(ctx context.Context, comment models.Comment) error {
	return a.apply("comment:" + comment.ID)
}

func (a *recordingApplier) Like(ctx context.Context, postID, userID string) error {
	return a.apply(fmt.Sprintf("like:%s:%s", postID, userID))
}

func (a *recordingApplier) Unlike(ctx context.Context, postID, userID string) error {
	return a.apply(fmt.Sprintf("unlike:%s:%s", postID, userID))
}

func TestDrainAppliesInOrderAndEmptiesQueue(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applier := &recordingApplier{}
	reconciler := NewReconciler(db, applier)

	if _, err := db.Like("p1", "v1"); err != nil {
		t.Fatal(err)
	}
	if err := db.AddComment(models.Comment{ID: "c1", PostID: "p1", UserID: "v1", Content: "hi"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Unlike("p1", "v1"); err != nil {
		t.Fatal(err)
	}

	applied, err := reconciler.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 3 {
		t.Fatalf("applied %d, want 3", applied)
	}

	want := []string{"like:p1:v1", "comment:c1", "unlike:p1:v1"}
	if len(applier.ops) != len(want) {
		t.Fatalf("replayed ops: %v", applier.ops)
	}
	for i := range want {
		if applier.ops[i] != want[i] {
			t.Fatalf("op %d: got %s want %s", i, applier.ops[i], want[i])
		}
	}

	queue, err := db.Queue()
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 0 {
		t.Fatalf("queue not empty after drain: %+v", queue)
	}

	last, err := db.LastSync()
	if err != nil {
		t.Fatal(err)
	}
	if last.IsZero() {
		t.Fatal("last-sync not recorded after a successful drain")
	}
}

func TestDrainReplaysQueuedPost(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applier := &recordingApplier{}
	reconciler := NewReconciler(db, applier)

	if err := db.QueuePost(models.Post{ID: "draft-1", Title: "written offline"}); err != nil {
		t.Fatal(err)
	}

	applied, err := reconciler.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 1 || len(applier.ops) != 1 || applier.ops[0] != "post:draft-1" {
		t.Fatalf("queued post replay: applied=%d ops=%v", applied, applier.ops)
	}
}

func TestDrainEmptyQueueIsNoop(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applier := &recordingApplier{}
	reconciler := NewReconciler(db, applier)

	for i := 0; i < 2; i++ {
		applied, err := reconciler.Drain(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if applied != 0 {
			t.Fatalf("drain #%d applied %d on an empty queue", i+1, applied)
		}
	}
	if len(applier.ops) != 0 {
		t.Fatalf("empty drain replayed ops: %v", applier.ops)
	}
	last, err := db.LastSync()
	if err != nil {
		t.Fatal(err)
	}
	if !last.IsZero() {
		t.Fatal("empty drain updated last-sync")
	}
}

func TestDrainKeepsFailedItemsWithAttemptCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applier := &recordingApplier{fail: errors.New("remote unavailable")}
	reconciler := NewReconciler(db, applier)

	if _, err := db.Like("p1", "v1"); err != nil {
		t.Fatal(err)
	}

	applied, err := reconciler.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 0 {
		t.Fatalf("applied %d with a failing applier", applied)
	}

	queue, err := db.Queue()
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 1 || queue[0].Attempts != 1 {
		t.Fatalf("queue after failed drain: %+v", queue)
	}

	// Once the remote recovers, the item replays and leaves the queue.
	applier.fail = nil
	applied, err = reconciler.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 1 {
		t.Fatalf("recovered drain applied %d", applied)
	}
	queue, err = db.Queue()
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 0 {
		t.Fatalf("queue after recovery: %+v", queue)
	}
}

func TestDrainDeadLettersPoisonItems(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applier := &recordingApplier{fail: errors.New("poison")}
	reconciler := NewReconciler(db, applier)

	if _, err := db.Like("p1", "v1"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < maxReplayAttempts; i++ {
		if _, err := reconciler.Drain(ctx); err != nil {
			t.Fatalf("drain #%d: %v", i+1, err)
		}
	}

	queue, err := db.Queue()
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 0 {
		t.Fatalf("poison item still queued after %d attempts: %+v", maxReplayAttempts, queue)
	}

	dead, err := db.DeadLetter()
	if err != nil {
		t.Fatal(err)
	}
	if len(dead) != 1 || dead[0].Attempts != maxReplayAttempts {
		t.Fatalf("dead letter: %+v", dead)
	}

	// Dead-lettered items never replay again.
	applier.fail = nil
	applied, err := reconciler.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 0 || len(applier.ops) != 0 {
		t.Fatalf("dead-lettered item replayed: applied=%d ops=%v", applied, applier.ops)
	}
}

func TestDrainSkipsUnknownOperations(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	applier := &recordingApplier{}
	reconciler := NewReconciler(db, applier)

	if err := db.Enqueue("telemetry", map[string]string{"k": "v"}); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Like("p1", "v1"); err != nil {
		t.Fatal(err)
	}

	// The unknown item fails every attempt but never blocks the like.
	applied, err := reconciler.Drain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if applied != 1 || len(applier.ops) != 1 || applier.ops[0] != "like:p1:v1" {
		t.Fatalf("drain with unknown op: applied=%d ops=%v", applied, applier.ops)
	}

	for i := 0; i < maxReplayAttempts; i++ {
		if _, err := reconciler.Drain(ctx); err != nil {
			t.Fatal(err)
		}
	}
	dead, err := db.DeadLetter()
	if err != nil {
		t.Fatal(err)
	}
	if len(dead) != 1 || dead[0].Op != "telemetry" {
		t.Fatalf("unknown op not dead-lettered: %+v", dead)
	}
}

func TestDrainStopsOnCancelledContext(t *testing.T) {
	db := newTestDB(t)
	applier := &recordingApplier{}
	reconciler := NewReconciler(db, applier)

	if _, err := db.Like("p1", "v1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := reconciler.Drain(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled drain: %v", err)
	}

	queue, err := db.Queue()
	if err != nil {
		t.Fatal(err)
	}
	if len(queue) != 1 {
		t.Fatalf("cancelled drain consumed the queue: %+v", queue)
	}
}
