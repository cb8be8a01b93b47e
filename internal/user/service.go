package user

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/cryptocross/cryptocross/internal/store"
)

// MinPasswordLen is the floor for any credential change or registration.
const MinPasswordLen = 6

const bcryptCost = 12

// tempPasswordAlphabet feeds provisioned temp credentials; visually
// ambiguous characters are excluded.
const tempPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789!@#$%"

const tempPasswordLen = 12

// Service manages accounts, credentials and the XP/history ledger.
type Service struct {
	records store.Records
	now     func() time.Time
	newID   func() string
	rnd     *rand.Rand
}

func NewService(records store.Records) *Service {
	return NewServiceAt(records, time.Now, uuid.NewString)
}

// NewServiceAt is NewService with an explicit clock and id source.
func NewServiceAt(records store.Records, now func() time.Time, newID func() string) *Service {
	return &Service{
		records: records,
		now:     now,
		newID:   newID,
		rnd:     rand.New(rand.NewSource(now().UnixNano())),
	}
}

func (s *Service) all(ctx context.Context) ([]User, error) {
	raws, err := s.records.List(ctx, store.Users)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(raws))
	for _, raw := range raws {
		var u User
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	raw, err := s.records.Get(ctx, store.Users, id)
	if err != nil {
		if err == store.ErrNotFound {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return User{}, err
	}
	return u, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	users, err := s.all(ctx)
	if err != nil {
		return User{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

// List returns users, optionally filtered by role, ordered by username.
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	users, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := []User{}
	for _, u := range users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Register creates a self-service account. Admin accounts cannot be
// registered; they come from server configuration.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (User, error) {
	if req.Name == "" || req.Email == "" {
		return User{}, fmt.Errorf("%w: name and email are required", ErrInvalid)
	}
	if req.Role == RoleAdmin {
		return User{}, fmt.Errorf("%w: admin cannot be registered", ErrInvalid)
	}
	if req.Role == "" {
		req.Role = RoleLearner
	}
	if len(req.Password) < MinPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, MinPasswordLen)
	}
	users, err := s.all(ctx)
	if err != nil {
		return User{}, err
	}
	taken := make([]string, 0, len(users))
	for _, u := range users {
		if strings.EqualFold(u.Email, req.Email) {
			return User{}, ErrExists
		}
		taken = append(taken, u.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return User{}, err
	}
	now := s.now()
	u := User{
		ID:           s.newID(),
		Name:         req.Name,
		Email:        req.Email,
		Username:     AllocateUsername(req.Name, taken),
		Role:         req.Role,
		XP:           0,
		History:      []HistoryEntry{},
		Status:       StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
		PasswordHash: string(hash),
	}
	if err := s.records.Put(ctx, store.Users, u.ID, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// NormalizeRole maps a requested role onto the provisionable vocabulary.
// Admin is never provisionable; unknown roles become learner.
func NormalizeRole(role string) string {
	switch strings.ToLower(role) {
	case RoleEducator:
		return RoleEducator
	case RoleModerator:
		return RoleModerator
	default:
		return RoleLearner
	}
}

// Provision creates an account on someone's behalf with a generated
// temporary password, or returns the existing account for the email. The
// temp password is only non-empty when a new account was created.
func (s *Service) Provision(ctx context.Context, name, email, role string) (User, string, error) {
	role = NormalizeRole(role)
	if email != "" {
		if u, err := s.GetByEmail(ctx, email); err == nil {
			return u, "", nil
		} else if err != ErrNotFound {
			return User{}, "", err
		}
	}
	temp := s.randomPassword()
	hash, err := bcrypt.GenerateFromPassword([]byte(temp), bcryptCost)
	if err != nil {
		return User{}, "", err
	}
	users, err := s.all(ctx)
	if err != nil {
		return User{}, "", err
	}
	taken := make([]string, 0, len(users))
	for _, u := range users {
		taken = append(taken, u.Username)
	}
	id := s.newID()
	if email == "" {
		email = id + "@cryptocross.local"
	}
	username := AllocateUsername(name, taken)
	if name == "" {
		name = username
	}
	now := s.now()
	u := User{
		ID:                  id,
		Name:                name,
		Email:               email,
		Username:            username,
		Role:                role,
		XP:                  0,
		History:             []HistoryEntry{},
		Status:              StatusActive,
		ForcePasswordChange: true,
		CreatedAt:           now,
		UpdatedAt:           now,
		PasswordHash:        string(hash),
	}
	if err := s.records.Put(ctx, store.Users, u.ID, u); err != nil {
		return User{}, "", err
	}
	return u, temp, nil
}

func (s *Service) randomPassword() string {
	b := make([]byte, tempPasswordLen)
	for i := range b {
		b[i] = tempPasswordAlphabet[s.rnd.Intn(len(tempPasswordAlphabet))]
	}
	return string(b)
}

// Authenticate checks an email/password pair against the stored hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		if err == ErrNotFound {
			return User{}, ErrBadCredentials
		}
		return User{}, err
	}
	if u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, ErrBadCredentials
	}
	return u, nil
}

// Update is a partial profile/ledger patch addressed by email.
type Update struct {
	AddXP      *int          `json:"addXp"`
	AddHistory *HistoryEntry `json:"addHistory"`
	Name       *string       `json:"name"`
	AvatarURL  *string       `json:"avatarUrl"`
}

// Apply adjusts XP (floored at zero), prepends history (capped), and applies
// profile field updates.
func (s *Service) Apply(ctx context.Context, email string, up Update) (User, error) {
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if up.AddXP != nil {
		u.XP += *up.AddXP
		if u.XP < 0 {
			u.XP = 0
		}
	}
	if up.AddHistory != nil {
		u.History = append([]HistoryEntry{*up.AddHistory}, u.History...)
		if len(u.History) > HistoryCap {
			u.History = u.History[:HistoryCap]
		}
	}
	if up.Name != nil {
		u.Name = *up.Name
	}
	if up.AvatarURL != nil {
		u.AvatarURL = *up.AvatarURL
	}
	u.UpdatedAt = s.now()
	if err := s.records.Put(ctx, store.Users, u.ID, u); err != nil {
		return User{}, err
	}
	return u, nil
}

// RecordQuizTaken logs a taken event and awards XP equal to the score.
func (s *Service) RecordQuizTaken(ctx context.Context, email, quizID, title string, score int, passed bool) (User, error) {
	xp := score
	return s.Apply(ctx, email, Update{
		AddXP: &xp,
		AddHistory: &HistoryEntry{
			QuizID:  quizID,
			Title:   title,
			Type:    HistoryTaken,
			Score:   score,
			Passed:  passed,
			TakenAt: s.now(),
		},
	})
}

// RecordQuizCreated logs a created event; creation earns no XP.
func (s *Service) RecordQuizCreated(ctx context.Context, email, quizID, title string) (User, error) {
	return s.Apply(ctx, email, Update{
		AddHistory: &HistoryEntry{
			QuizID:  quizID,
			Title:   title,
			Type:    HistoryCreated,
			TakenAt: s.now(),
		},
	})
}

// ChangePassword verifies the current credential when one is supplied, sets
// the new one, and prunes any pending invitations for the account. Pruning
// is best-effort: a failure there never fails the password change.
func (s *Service) ChangePassword(ctx context.Context, email, current, next string) (User, error) {
	if len(next) < MinPasswordLen {
		return User{}, fmt.Errorf("%w: password must be at least %d characters", ErrInvalid, MinPasswordLen)
	}
	u, err := s.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if current != "" {
		if u.PasswordHash == "" ||
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(current)) != nil {
			return User{}, ErrBadCredentials
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcryptCost)
	if err != nil {
		return User{}, err
	}
	now := s.now()
	u.PasswordHash = string(hash)
	u.Status = StatusActive
	u.ForcePasswordChange = false
	u.PasswordUpdatedAt = now
	u.UpdatedAt = now
	if err := s.records.Put(ctx, store.Users, u.ID, u); err != nil {
		return User{}, err
	}
	s.pruneInvitations(ctx, u.ID)
	return u, nil
}

// pruneInvitations drops invitations addressed to the user once their
// credential changed, redacting any lingering temp password.
func (s *Service) pruneInvitations(ctx context.Context, userID string) {
	raws, err := s.records.List(ctx, store.Invitations)
	if err != nil {
		return
	}
	for _, raw := range raws {
		var inv struct {
			ID     string `json:"id"`
			UserID string `json:"userId"`
		}
		if err := json.Unmarshal(raw, &inv); err != nil {
			continue
		}
		if inv.UserID == userID {
			_ = s.records.Delete(ctx, store.Invitations, inv.ID)
		}
	}
}
