package filestore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cryptocross/cryptocross/internal/store"
)

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestPutGetDelete(t *testing.T) {
	fs, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := fs.Put(ctx, "things", "a", doc{ID: "a", Name: "first"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	raw, err := fs.Get(ctx, "things", "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var got doc
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "first" {
		t.Fatalf("got %+v", got)
	}

	if err := fs.Delete(ctx, "things", "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fs.Get(ctx, "things", "a"); err != store.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := fs.Delete(ctx, "things", "a"); err != store.ErrNotFound {
		t.Fatalf("double delete: want ErrNotFound, got %v", err)
	}
}

func TestGetMissingCollection(t *testing.T) {
	fs, _ := New(t.TempDir())
	if _, err := fs.Get(context.Background(), "nothing", "x"); err != store.ErrNotFound {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	list, err := fs.List(context.Background(), "nothing")
	if err != nil || len(list) != 0 {
		t.Fatalf("empty collection: %v %v", list, err)
	}
}

func TestPutOverwrites(t *testing.T) {
	fs, _ := New(t.TempDir())
	ctx := context.Background()
	_ = fs.Put(ctx, "things", "a", doc{ID: "a", Name: "old"})
	_ = fs.Put(ctx, "things", "a", doc{ID: "a", Name: "new"})

	list, err := fs.List(ctx, "things")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("overwrite must not duplicate: %d entries", len(list))
	}
	var got doc
	_ = json.Unmarshal(list[0], &got)
	if got.Name != "new" {
		t.Fatalf("got %+v", got)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	fs, _ := New(dir)
	ctx := context.Background()
	if err := fs.Put(ctx, "things", "a", doc{ID: "a", Name: "kept"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	reopened, err := New(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := reopened.Get(ctx, "things", "a"); err != nil {
		t.Fatalf("get after reopen: %v", err)
	}

	// One file per collection.
	if _, err := os.Stat(filepath.Join(dir, "things.json")); err != nil {
		t.Fatalf("collection file missing: %v", err)
	}
}
