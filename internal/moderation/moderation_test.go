package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/cryptocross/cryptocross/internal/store/filestore"
)

func newTestModeration(t *testing.T) (*Service, *time.Time) {
	t.Helper()
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return NewServiceAt(fs, func() time.Time { return now }), &now
}

func TestEnqueueAndList(t *testing.T) {
	svc, now := newTestModeration(t)
	ctx := context.Background()

	if _, err := svc.Enqueue(ctx, Item{ID: "pub-q1", Type: TypePublish, Title: "Hashing"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	*now = now.Add(time.Minute)
	if _, err := svc.Enqueue(ctx, Item{ID: "rep-q2", Type: TypeReport, Title: "Spam"}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if _, err := svc.Enqueue(ctx, Item{ID: "x", Type: "bogus"}); err == nil {
		t.Fatalf("unknown type must fail")
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != "rep-q2" {
		t.Fatalf("newest first: %+v", all)
	}
	pubs, _ := svc.List(ctx, TypePublish)
	if len(pubs) != 1 || pubs[0].Status != StatusPending {
		t.Fatalf("got %+v", pubs)
	}
}

func TestDecide(t *testing.T) {
	svc, _ := newTestModeration(t)
	ctx := context.Background()
	if _, err := svc.Enqueue(ctx, Item{ID: "pub-q1", Type: TypePublish}); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	it, err := svc.Decide(ctx, "pub-q1", "reject", "too thin")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if it.Status != StatusRejected || it.Reason != "too thin" || it.DecidedAt.IsZero() {
		t.Fatalf("got %+v", it)
	}

	it, err = svc.Decide(ctx, "pub-q1", "approve", "")
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if it.Status != StatusApproved || it.Reason != "" {
		t.Fatalf("got %+v", it)
	}

	if _, err := svc.Decide(ctx, "pub-q1", "punt", ""); err == nil {
		t.Fatalf("unknown action must fail")
	}
	if _, err := svc.Decide(ctx, "missing", "approve", ""); err != ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
