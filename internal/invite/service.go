package invite

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/cryptocross/cryptocross/internal/org"
	"github.com/cryptocross/cryptocross/internal/store"
	"github.com/cryptocross/cryptocross/internal/user"
)

// Service provisions accounts in bulk and tracks the resulting invitations.
type Service struct {
	records store.Records
	users   *user.Service
	orgs    *org.Service
	now     func() time.Time
	newID   func() string
}

func NewService(records store.Records, users *user.Service, orgs *org.Service) *Service {
	return NewServiceAt(records, users, orgs, time.Now, uuid.NewString)
}

// NewServiceAt is NewService with an explicit clock and id source.
func NewServiceAt(records store.Records, users *user.Service, orgs *org.Service, now func() time.Time, newID func() string) *Service {
	return &Service{records: records, users: users, orgs: orgs, now: now, newID: newID}
}

// Issue provisions every entry for the organization: find-or-create the
// account, ensure membership, and record an invitation carrying the temp
// password for new accounts.
func (s *Service) Issue(ctx context.Context, orgID string, entries []Entry) ([]Issued, error) {
	if orgID == "" || len(entries) == 0 {
		return nil, fmt.Errorf("%w: organizationId and users required", ErrInvalid)
	}
	out := make([]Issued, 0, len(entries))
	for _, e := range entries {
		// The caller's role request is advisory; admin is never mintable here.
		role := user.NormalizeRole(e.Role)
		u, temp, err := s.users.Provision(ctx, e.Name, e.Email, role)
		if err != nil {
			return out, err
		}
		if err := s.orgs.EnsureMember(ctx, orgID, u.ID, role); err != nil {
			return out, err
		}
		inv := Invitation{
			ID:              "inv-" + s.newID(),
			UserID:          u.ID,
			OrganizationID:  orgID,
			Role:            role,
			EmailIssuedTo:   u.Email,
			CreatedAt:       s.now(),
			Delivery:        "download",
			Status:          StatusCreated,
			HasTempPassword: temp != "",
			TempPassword:    temp,
		}
		if err := s.records.Put(ctx, store.Invitations, inv.ID, inv); err != nil {
			return out, err
		}
		out = append(out, Issued{
			InvitationID: inv.ID,
			UserID:       u.ID,
			Name:         u.Name,
			Email:        u.Email,
			Username:     u.Username,
			TempPassword: temp,
			ExistingUser: temp == "",
		})
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id string) (Invitation, error) {
	raw, err := s.records.Get(ctx, store.Invitations, id)
	if err != nil {
		if err == store.ErrNotFound {
			return Invitation{}, ErrNotFound
		}
		return Invitation{}, err
	}
	var inv Invitation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return Invitation{}, err
	}
	return inv, nil
}

// List returns invitations, optionally filtered by organization, newest
// first.
func (s *Service) List(ctx context.Context, orgID string) ([]Invitation, error) {
	raws, err := s.records.List(ctx, store.Invitations)
	if err != nil {
		return nil, err
	}
	out := []Invitation{}
	for _, raw := range raws {
		var inv Invitation
		if err := json.Unmarshal(raw, &inv); err != nil {
			continue
		}
		if orgID != "" && inv.OrganizationID != orgID {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Cleanup redacts temp passwords. Scope narrows by invitation id or
// organization id; with neither, every invitation is redacted. Returns how
// many still carried a temp password.
func (s *Service) Cleanup(ctx context.Context, invitationID, orgID string) (int, error) {
	invs, err := s.List(ctx, "")
	if err != nil {
		return 0, err
	}
	updated := 0
	for _, inv := range invs {
		if invitationID != "" && inv.ID != invitationID {
			continue
		}
		if orgID != "" && inv.OrganizationID != orgID {
			continue
		}
		if inv.TempPassword != "" {
			updated++
		}
		inv.TempPassword = ""
		inv.HasTempPassword = false
		if inv.Status == StatusCreated {
			inv.Status = StatusRedacted
		}
		if err := s.records.Put(ctx, store.Invitations, inv.ID, inv); err != nil {
			return updated, err
		}
	}
	return updated, nil
}
