package session

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/store"
)

// Manager owns the session lifecycle: code minting, lazy expiry, idempotent
// ending and per-session result bookkeeping.
type Manager struct {
	records store.Records
	now     func() time.Time
	newID   func() string
	rnd     *rand.Rand
}

func NewManager(records store.Records) *Manager {
	return NewManagerAt(records, time.Now, uuid.NewString)
}

// NewManagerAt is NewManager with an explicit clock and id source.
func NewManagerAt(records store.Records, now func() time.Time, newID func() string) *Manager {
	return &Manager{
		records: records,
		now:     now,
		newID:   newID,
		rnd:     rand.New(rand.NewSource(now().UnixNano())),
	}
}

func (m *Manager) all(ctx context.Context) ([]Session, error) {
	raws, err := m.records.List(ctx, store.Sessions)
	if err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(raws))
	for _, raw := range raws {
		var s Session
		if err := json.Unmarshal(raw, &s); err != nil {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Create mints a session with a join code unique among currently stored
// sessions. Expiry derives from the duration; zero means DefaultDuration.
func (m *Manager) Create(ctx context.Context, quizID, ownerID, privacy string, duration time.Duration) (Session, error) {
	if quizID == "" || ownerID == "" {
		return Session{}, fmt.Errorf("%w: quizId and ownerId required", ErrInvalid)
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if privacy == "" {
		privacy = quiz.PrivacyPrivate
	}

	existing, err := m.all(ctx)
	if err != nil {
		return Session{}, err
	}
	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s.Code] = true
	}
	code := genCode(m.rnd)
	for taken[code] {
		code = genCode(m.rnd)
	}

	now := m.now()
	s := Session{
		ID:        "sess-" + m.newID(),
		Code:      code,
		QuizID:    quizID,
		OwnerID:   ownerID,
		Status:    StatusLive,
		Privacy:   privacy,
		CreatedAt: now,
		ExpiresAt: now.Add(duration),
	}
	if err := m.records.Put(ctx, store.Sessions, s.ID, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (m *Manager) Get(ctx context.Context, id string) (Session, error) {
	raw, err := m.records.Get(ctx, store.Sessions, id)
	if err != nil {
		if err == store.ErrNotFound {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// LookupByCode resolves a join code to its session and rejects anything not
// joinable. Ended and expired sessions fail with distinct errors so the user
// sees "not live" vs "expired".
func (m *Manager) LookupByCode(ctx context.Context, code string) (Session, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Session{}, fmt.Errorf("%w: code required", ErrInvalid)
	}
	sessions, err := m.all(ctx)
	if err != nil {
		return Session{}, err
	}
	for _, s := range sessions {
		if s.Code != code {
			continue
		}
		if s.Status != StatusLive {
			return Session{}, ErrNotLive
		}
		if m.now().After(s.ExpiresAt) {
			return Session{}, ErrExpired
		}
		return s, nil
	}
	return Session{}, ErrNotFound
}

// Joinable loads a session and rejects it unless it can still accept
// participants, with the same error split as LookupByCode.
func (m *Manager) Joinable(ctx context.Context, id string) (Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.Status != StatusLive {
		return Session{}, ErrNotLive
	}
	if m.now().After(s.ExpiresAt) {
		return Session{}, ErrExpired
	}
	return s, nil
}

// End moves a session to its terminal state. Ending an already-ended
// session is a no-op success.
func (m *Manager) End(ctx context.Context, id string) (Session, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if s.Status == StatusEnded {
		return s, nil
	}
	s.Status = StatusEnded
	if err := m.records.Put(ctx, store.Sessions, s.ID, s); err != nil {
		return Session{}, err
	}
	return s, nil
}

// ListByOwner returns the owner's sessions, newest first.
func (m *Manager) ListByOwner(ctx context.Context, ownerID string) ([]Session, error) {
	sessions, err := m.all(ctx)
	if err != nil {
		return nil, err
	}
	out := []Session{}
	for _, s := range sessions {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ListByQuiz returns sessions referencing a quiz, newest first.
func (m *Manager) ListByQuiz(ctx context.Context, quizID string) ([]Session, error) {
	sessions, err := m.all(ctx)
	if err != nil {
		return nil, err
	}
	out := []Session{}
	for _, s := range sessions {
		if s.QuizID == quizID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// RecordResult appends the session-scoped view of a scored submission.
func (m *Manager) RecordResult(ctx context.Context, r quiz.Result) (Result, error) {
	if r.SessionID == "" {
		return Result{}, fmt.Errorf("%w: result has no session", ErrInvalid)
	}
	sr := Result{
		ID:           "sres-" + m.newID(),
		SessionID:    r.SessionID,
		QuizID:       r.QuizID,
		StudentName:  r.StudentName,
		StudentEmail: r.StudentEmail,
		Score:        r.Score,
		Passed:       r.Passed,
		CompletedAt:  r.CompletedAt,
	}
	if err := m.records.Put(ctx, store.SessionResults, sr.ID, sr); err != nil {
		return Result{}, err
	}
	return sr, nil
}

// ListResults filters session results by session id and/or submitter email,
// newest first.
func (m *Manager) ListResults(ctx context.Context, sessionID, email string) ([]Result, error) {
	raws, err := m.records.List(ctx, store.SessionResults)
	if err != nil {
		return nil, err
	}
	out := []Result{}
	for _, raw := range raws {
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if sessionID != "" && r.SessionID != sessionID {
			continue
		}
		if email != "" && !strings.EqualFold(r.StudentEmail, email) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

// Leaderboard ranks a session's participants by score, best first. A
// participant appears once with their highest score.
func (m *Manager) Leaderboard(ctx context.Context, sessionID string) (Leaderboard, error) {
	if _, err := m.Get(ctx, sessionID); err != nil {
		return Leaderboard{}, err
	}
	results, err := m.ListResults(ctx, sessionID, "")
	if err != nil {
		return Leaderboard{}, err
	}
	best := map[string]LeaderboardEntry{}
	for _, r := range results {
		key := strings.ToLower(r.StudentEmail)
		if cur, ok := best[key]; !ok || r.Score > cur.Score {
			best[key] = LeaderboardEntry{
				StudentName:  r.StudentName,
				StudentEmail: r.StudentEmail,
				Score:        r.Score,
				Passed:       r.Passed,
			}
		}
	}
	entries := make([]LeaderboardEntry, 0, len(best))
	for _, e := range best {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].StudentName < entries[j].StudentName
	})
	return Leaderboard{SessionID: sessionID, Entries: entries, UpdatedAt: m.now()}, nil
}
