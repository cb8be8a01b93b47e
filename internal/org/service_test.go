package org

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/cryptocross/cryptocross/internal/store/filestore"
)

// brokenStore fails every operation with a fixed error.
type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string, string) (json.RawMessage, error) {
	return nil, b.err
}
func (b brokenStore) List(context.Context, string) ([]json.RawMessage, error) { return nil, b.err }
func (b brokenStore) Put(context.Context, string, string, any) error          { return b.err }
func (b brokenStore) Delete(context.Context, string, string) error            { return b.err }

func newTestOrgService(t *testing.T) *Service {
	t.Helper()
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return NewServiceAt(fs,
		func() time.Time { now = now.Add(time.Second); return now },
		func() string { n++; return "id-" + strconv.Itoa(n) },
	)
}

func TestCreateAndGet(t *testing.T) {
	svc := newTestOrgService(t)
	ctx := context.Background()

	o, err := svc.Create(ctx, Organization{Name: "Acme School"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if o.ID == "" {
		t.Fatalf("id not assigned")
	}
	if _, err := svc.Get(ctx, o.ID); err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, err := svc.Create(ctx, Organization{ID: o.ID, Name: "Dup"}); err != ErrExists {
		t.Fatalf("want ErrExists, got %v", err)
	}
	if _, err := svc.Create(ctx, Organization{}); err == nil {
		t.Fatalf("nameless org must fail")
	}
}

func TestCreatePropagatesStoreErrors(t *testing.T) {
	boom := errors.New("disk gone")
	svc := NewService(brokenStore{err: boom})

	_, err := svc.Create(context.Background(), Organization{Name: "Acme"})
	if !errors.Is(err, boom) {
		t.Fatalf("a failing read must surface, got %v", err)
	}
}

func TestMembership(t *testing.T) {
	svc := newTestOrgService(t)
	ctx := context.Background()
	o, _ := svc.Create(ctx, Organization{Name: "Acme"})

	if _, err := svc.AddMember(ctx, o.ID, "u1", "learner"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddMember(ctx, o.ID, "u1", "learner"); err != ErrAlreadyMember {
		t.Fatalf("want ErrAlreadyMember, got %v", err)
	}
	if err := svc.EnsureMember(ctx, o.ID, "u1", "learner"); err != nil {
		t.Fatalf("ensure existing: %v", err)
	}
	if err := svc.EnsureMember(ctx, o.ID, "u2", "educator"); err != nil {
		t.Fatalf("ensure new: %v", err)
	}

	members, err := svc.ListMembers(ctx, o.ID, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(members) != 2 {
		t.Fatalf("want 2 members, got %d", len(members))
	}

	if err := svc.RemoveMember(ctx, o.ID, "u1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveMember(ctx, o.ID, "u1"); err != nil {
		t.Fatalf("removing a non-member must be a no-op, got %v", err)
	}
	members, _ = svc.ListMembers(ctx, o.ID, "")
	if len(members) != 1 || members[0].UserID != "u2" {
		t.Fatalf("got %+v", members)
	}
}
