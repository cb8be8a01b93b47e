// Package store defines the record-store seam the domain services persist
// through. A collection is a named set of JSON documents keyed by id; the
// backing implementation (flat files, sqlite, postgres) is swappable without
// touching business logic.
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// Collection names shared by every backend.
const (
	Users          = "users"
	Quizzes        = "quizzes"
	Sessions       = "sessions"
	Results        = "results"
	SessionResults = "session_results"
	Organizations  = "organizations"
	OrgMembers     = "org_members"
	Invitations    = "invitations"
	Moderation     = "moderation"
)

// ErrNotFound is returned when a record id is absent from a collection.
var ErrNotFound = errors.New("record not found")

// Records is a minimal get/list/put/delete repository over JSON documents.
// Every mutation is a single last-writer-wins write; there are no
// transactional guarantees across records.
type Records interface {
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	List(ctx context.Context, collection string) ([]json.RawMessage, error)
	Put(ctx context.Context, collection, id string, doc any) error
	Delete(ctx context.Context, collection, id string) error
}
