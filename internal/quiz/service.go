package quiz

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cryptocross/cryptocross/internal/store"
)

// Service owns quiz CRUD, listing visibility and result submission on top of
// the record store. The clock and id generator are injected for tests.
type Service struct {
	records store.Records
	now     func() time.Time
	newID   func() string
}

func NewService(records store.Records) *Service {
	return &Service{records: records, now: time.Now, newID: uuid.NewString}
}

// NewServiceAt is NewService with an explicit clock and id source.
func NewServiceAt(records store.Records, now func() time.Time, newID func() string) *Service {
	return &Service{records: records, now: now, newID: newID}
}

func validate(q Quiz) error {
	if q.ID == "" || q.Title == "" || len(q.Questions) == 0 {
		return fmt.Errorf("%w: id, title and questions are required", ErrInvalid)
	}
	if q.PassingScore < 0 || q.PassingScore > 100 {
		return fmt.Errorf("%w: passingScore must be between 0 and 100", ErrInvalid)
	}
	for _, qu := range q.Questions {
		if qu.Question == "" || len(qu.Options) < 2 {
			return fmt.Errorf("%w: each question needs a prompt and at least two options", ErrInvalid)
		}
		if qu.CorrectAnswer < 0 || qu.CorrectAnswer >= len(qu.Options) {
			return fmt.Errorf("%w: question %d correctAnswer out of range", ErrInvalid, qu.ID)
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, q Quiz, creator *Creator) (Quiz, error) {
	if err := validate(q); err != nil {
		return Quiz{}, err
	}
	switch _, err := s.records.Get(ctx, store.Quizzes, q.ID); err {
	case nil:
		return Quiz{}, ErrExists
	case store.ErrNotFound:
	default:
		return Quiz{}, err
	}
	if q.Creator == nil && creator != nil {
		q.Creator = creator
	}
	if q.Privacy == "" {
		q.Privacy = PrivacyPrivate
	}
	if q.Status == "" {
		q.Status = StatusDraft
	}
	if q.CreatedAt.IsZero() {
		q.CreatedAt = s.now()
	}
	if err := s.records.Put(ctx, store.Quizzes, q.ID, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *Service) get(ctx context.Context, id string) (Quiz, error) {
	raw, err := s.records.Get(ctx, store.Quizzes, id)
	if err != nil {
		if err == store.ErrNotFound {
			return Quiz{}, ErrNotFound
		}
		return Quiz{}, err
	}
	var q Quiz
	if err := json.Unmarshal(raw, &q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

// Get returns the quiz when the viewer passes the access gate.
func (s *Service) Get(ctx context.Context, id string, v Viewer) (Quiz, error) {
	q, err := s.get(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if !CanView(q, v) {
		return Quiz{}, ErrForbidden
	}
	return q, nil
}

// Update applies a partial patch. The id is immutable; creator fields only
// move under an admin.
type Update struct {
	Title        *string     `json:"title"`
	Description  *string     `json:"description"`
	Difficulty   *string     `json:"difficulty"`
	Duration     *int        `json:"duration"`
	PassingScore *int        `json:"passingScore"`
	Questions    *[]Question `json:"questions"`
	Privacy      *string     `json:"privacy"`
	Status       *string     `json:"status"`
	Creator      *Creator    `json:"creator"`
}

func (s *Service) Update(ctx context.Context, id string, u Update, v Viewer) (Quiz, error) {
	q, err := s.get(ctx, id)
	if err != nil {
		return Quiz{}, err
	}
	if !CanMutate(q, v) {
		return Quiz{}, ErrForbidden
	}
	if u.Title != nil {
		q.Title = *u.Title
	}
	if u.Description != nil {
		q.Description = *u.Description
	}
	if u.Difficulty != nil {
		q.Difficulty = *u.Difficulty
	}
	if u.Duration != nil {
		q.Duration = *u.Duration
	}
	if u.PassingScore != nil {
		q.PassingScore = *u.PassingScore
	}
	if u.Questions != nil {
		q.Questions = *u.Questions
	}
	if u.Privacy != nil {
		q.Privacy = *u.Privacy
	}
	if u.Status != nil {
		q.Status = *u.Status
	}
	if u.Creator != nil && v.Role == "admin" {
		q.Creator = u.Creator
	}
	if err := validate(q); err != nil {
		return Quiz{}, err
	}
	if err := s.records.Put(ctx, store.Quizzes, id, q); err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func (s *Service) Delete(ctx context.Context, id string, v Viewer) error {
	q, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !CanMutate(q, v) {
		return ErrForbidden
	}
	return s.records.Delete(ctx, store.Quizzes, id)
}

// List returns quizzes the viewer may see, newest first.
func (s *Service) List(ctx context.Context, v Viewer) ([]Quiz, error) {
	raws, err := s.records.List(ctx, store.Quizzes)
	if err != nil {
		return nil, err
	}
	out := []Quiz{}
	for _, raw := range raws {
		var q Quiz
		if err := json.Unmarshal(raw, &q); err != nil {
			continue // skip corrupt records, keep serving the rest
		}
		if VisibleInListing(q, v) {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// SubmitRequest carries one answer-set submission. A non-empty SessionID
// means the caller already validated the session join, which stands in for
// the quiz view gate (the join code is the capability).
type SubmitRequest struct {
	SessionID    string   `json:"sessionId,omitempty"`
	StudentName  string   `json:"studentName"`
	StudentEmail string   `json:"studentEmail"`
	Answers      []Answer `json:"answers"`
}

// Submit scores the answers and persists an immutable result.
func (s *Service) Submit(ctx context.Context, quizID string, req SubmitRequest, v Viewer) (Result, error) {
	if req.StudentName == "" || req.StudentEmail == "" {
		return Result{}, fmt.Errorf("%w: studentName and studentEmail are required", ErrInvalid)
	}
	q, err := s.get(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	if req.SessionID == "" && !CanView(q, v) {
		return Result{}, ErrForbidden
	}
	sum, err := Score(q, req.Answers)
	if err != nil {
		return Result{}, err
	}
	res := Result{
		ID:             "result-" + s.newID(),
		QuizID:         quizID,
		SessionID:      req.SessionID,
		StudentName:    req.StudentName,
		StudentEmail:   req.StudentEmail,
		Score:          sum.Score,
		TotalQuestions: sum.TotalQuestions,
		CorrectAnswers: sum.CorrectAnswers,
		Passed:         sum.Passed,
		CompletedAt:    s.now(),
		Answers:        req.Answers,
	}
	if err := s.records.Put(ctx, store.Results, res.ID, res); err != nil {
		return Result{}, err
	}
	return res, nil
}

// ListResults filters stored results by submitter email and/or quiz id,
// newest first.
func (s *Service) ListResults(ctx context.Context, email, quizID string) ([]Result, error) {
	raws, err := s.records.List(ctx, store.Results)
	if err != nil {
		return nil, err
	}
	out := []Result{}
	for _, raw := range raws {
		var r Result
		if err := json.Unmarshal(raw, &r); err != nil {
			continue
		}
		if email != "" && !strings.EqualFold(r.StudentEmail, email) {
			continue
		}
		if quizID != "" && r.QuizID != quizID {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.After(out[j].CompletedAt) })
	return out, nil
}

// GetResult loads one stored result by id.
func (s *Service) GetResult(ctx context.Context, id string) (Result, error) {
	raw, err := s.records.Get(ctx, store.Results, id)
	if err != nil {
		if err == store.ErrNotFound {
			return Result{}, ErrNotFound
		}
		return Result{}, err
	}
	var r Result
	if err := json.Unmarshal(raw, &r); err != nil {
		return Result{}, err
	}
	return r, nil
}
