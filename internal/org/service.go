package org

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cryptocross/cryptocross/internal/store"
)

// Service manages organizations and their memberships.
type Service struct {
	records store.Records
	now     func() time.Time
	newID   func() string
}

func NewService(records store.Records) *Service {
	return NewServiceAt(records, time.Now, uuid.NewString)
}

// NewServiceAt is NewService with an explicit clock and id source.
func NewServiceAt(records store.Records, now func() time.Time, newID func() string) *Service {
	return &Service{records: records, now: now, newID: newID}
}

func (s *Service) Create(ctx context.Context, o Organization) (Organization, error) {
	if o.Name == "" {
		return Organization{}, fmt.Errorf("%w: name required", ErrInvalid)
	}
	if o.ID == "" {
		o.ID = "org-" + s.newID()
	}
	switch _, err := s.records.Get(ctx, store.Organizations, o.ID); err {
	case nil:
		return Organization{}, ErrExists
	case store.ErrNotFound:
	default:
		return Organization{}, err
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.now()
	}
	if err := s.records.Put(ctx, store.Organizations, o.ID, o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, id string) (Organization, error) {
	raw, err := s.records.Get(ctx, store.Organizations, id)
	if err != nil {
		if err == store.ErrNotFound {
			return Organization{}, ErrNotFound
		}
		return Organization{}, err
	}
	var o Organization
	if err := json.Unmarshal(raw, &o); err != nil {
		return Organization{}, err
	}
	return o, nil
}

func (s *Service) List(ctx context.Context) ([]Organization, error) {
	raws, err := s.records.List(ctx, store.Organizations)
	if err != nil {
		return nil, err
	}
	out := []Organization{}
	for _, raw := range raws {
		var o Organization
		if err := json.Unmarshal(raw, &o); err != nil {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Service) members(ctx context.Context) ([]Member, error) {
	raws, err := s.records.List(ctx, store.OrgMembers)
	if err != nil {
		return nil, err
	}
	out := make([]Member, 0, len(raws))
	for _, raw := range raws {
		var m Member
		if err := json.Unmarshal(raw, &m); err != nil {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// AddMember records a membership; adding the same user twice conflicts.
func (s *Service) AddMember(ctx context.Context, orgID, userID, role string) (Member, error) {
	if orgID == "" || userID == "" || role == "" {
		return Member{}, fmt.Errorf("%w: organizationId, userId and role required", ErrInvalid)
	}
	existing, err := s.members(ctx)
	if err != nil {
		return Member{}, err
	}
	for _, m := range existing {
		if m.OrganizationID == orgID && m.UserID == userID {
			return Member{}, ErrAlreadyMember
		}
	}
	m := Member{
		ID:             "mem-" + s.newID(),
		OrganizationID: orgID,
		UserID:         userID,
		Role:           role,
		AddedAt:        s.now(),
	}
	if err := s.records.Put(ctx, store.OrgMembers, m.ID, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// EnsureMember is AddMember that treats an existing membership as success.
func (s *Service) EnsureMember(ctx context.Context, orgID, userID, role string) error {
	_, err := s.AddMember(ctx, orgID, userID, role)
	if err == ErrAlreadyMember {
		return nil
	}
	return err
}

// ListMembers filters memberships by organization and/or user.
func (s *Service) ListMembers(ctx context.Context, orgID, userID string) ([]Member, error) {
	existing, err := s.members(ctx)
	if err != nil {
		return nil, err
	}
	out := []Member{}
	for _, m := range existing {
		if orgID != "" && m.OrganizationID != orgID {
			continue
		}
		if userID != "" && m.UserID != userID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

// RemoveMember drops a membership; removing a non-member is a no-op.
func (s *Service) RemoveMember(ctx context.Context, orgID, userID string) error {
	if orgID == "" || userID == "" {
		return fmt.Errorf("%w: organizationId and userId required", ErrInvalid)
	}
	existing, err := s.members(ctx)
	if err != nil {
		return err
	}
	for _, m := range existing {
		if m.OrganizationID == orgID && m.UserID == userID {
			return s.records.Delete(ctx, store.OrgMembers, m.ID)
		}
	}
	return nil
}
