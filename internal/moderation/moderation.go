// Package moderation keeps the publish-request and report queues moderators
// work through.
package moderation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/cryptocross/cryptocross/internal/store"
)

// Item types.
const (
	TypePublish = "publish"
	TypeReport  = "report"
)

// Item status.
const (
	StatusPending          = "pending"
	StatusApproved         = "approved"
	StatusRejected         = "rejected"
	StatusChangesRequested = "changes_requested"
)

// QueueCap bounds each queue; the oldest items fall off on enqueue.
const QueueCap = 500

var (
	// ErrNotFound indicates the queue item does not exist.
	ErrNotFound = errors.New("moderation item not found")
	// ErrInvalid wraps validation failures.
	ErrInvalid = errors.New("invalid moderation request")
)

// Item is one entry in a moderation queue.
type Item struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"orgId,omitempty"`
	Type           string    `json:"type"`
	Title          string    `json:"title,omitempty"`
	RequestedBy    string    `json:"requestedBy,omitempty"`
	Detail         string    `json:"detail,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	Status         string    `json:"status"`
	Reason         string    `json:"reason,omitempty"`
	DecidedAt      time.Time `json:"decidedAt,omitempty"`
}

type Service struct {
	records store.Records
	now     func() time.Time
}

func NewService(records store.Records) *Service {
	return NewServiceAt(records, time.Now)
}

// NewServiceAt is NewService with an explicit clock.
func NewServiceAt(records store.Records, now func() time.Time) *Service {
	return &Service{records: records, now: now}
}

func (s *Service) all(ctx context.Context) ([]Item, error) {
	raws, err := s.records.List(ctx, store.Moderation)
	if err != nil {
		return nil, err
	}
	out := make([]Item, 0, len(raws))
	for _, raw := range raws {
		var it Item
		if err := json.Unmarshal(raw, &it); err != nil {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// List returns queue items, optionally one type only, newest first.
func (s *Service) List(ctx context.Context, typ string) ([]Item, error) {
	items, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	if typ == "" {
		return items, nil
	}
	out := []Item{}
	for _, it := range items {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out, nil
}

// Enqueue adds a pending item and evicts beyond the per-type cap.
func (s *Service) Enqueue(ctx context.Context, it Item) (Item, error) {
	if it.ID == "" || (it.Type != TypePublish && it.Type != TypeReport) {
		return Item{}, fmt.Errorf("%w: id and a valid type required", ErrInvalid)
	}
	it.CreatedAt = s.now()
	it.Status = StatusPending
	it.Reason = ""
	it.DecidedAt = time.Time{}
	if err := s.records.Put(ctx, store.Moderation, it.ID, it); err != nil {
		return Item{}, err
	}
	sameType, err := s.List(ctx, it.Type)
	if err != nil {
		return it, nil // item is in; cap enforcement is best-effort
	}
	for i := QueueCap; i < len(sameType); i++ {
		_ = s.records.Delete(ctx, store.Moderation, sameType[i].ID)
	}
	return it, nil
}

// Decide resolves a pending item: approve, reject or request changes.
func (s *Service) Decide(ctx context.Context, id, action, reason string) (Item, error) {
	raw, err := s.records.Get(ctx, store.Moderation, id)
	if err != nil {
		if err == store.ErrNotFound {
			return Item{}, ErrNotFound
		}
		return Item{}, err
	}
	var it Item
	if err := json.Unmarshal(raw, &it); err != nil {
		return Item{}, err
	}
	switch action {
	case "approve":
		it.Status = StatusApproved
		it.Reason = ""
	case "reject":
		it.Status = StatusRejected
		it.Reason = reason
	case "request_changes":
		it.Status = StatusChangesRequested
		it.Reason = reason
	default:
		return Item{}, fmt.Errorf("%w: unknown action %q", ErrInvalid, action)
	}
	it.DecidedAt = s.now()
	if err := s.records.Put(ctx, store.Moderation, it.ID, it); err != nil {
		return Item{}, err
	}
	return it, nil
}
