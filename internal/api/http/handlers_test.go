package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/cryptocross/cryptocross/internal/auth/middleware"
	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/rbac"
	"github.com/cryptocross/cryptocross/internal/session"
	"github.com/cryptocross/cryptocross/internal/store/filestore"
	"github.com/cryptocross/cryptocross/internal/user"
)

type testEnv struct {
	quizzes  *quiz.Service
	sessions *session.Manager
	users    *user.Service
	router   chi.Router
	now      *time.Time
}

// asUser seeds identity into the context the way the JWT middleware would.
func asUser(id, email, role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := authmw.WithSubject(r.Context(), id)
			ctx = authmw.WithEmail(ctx, email)
			ctx = rbac.WithRole(ctx, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	fs, err := filestore.New(t.TempDir())
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	n := 0
	newID := func() string { n++; return "id-" + strconv.Itoa(n) }

	env := &testEnv{
		quizzes:  quiz.NewServiceAt(fs, clock, newID),
		sessions: session.NewManagerAt(fs, clock, newID),
		users:    user.NewServiceAt(fs, clock, newID),
		now:      &now,
	}
	env.router = chi.NewRouter()
	return env
}

func do(t *testing.T, r chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func seedQuiz(t *testing.T, env *testEnv, id string, published bool) quiz.Quiz {
	t.Helper()
	q := quiz.Quiz{
		ID:           id,
		Title:        "Symmetric ciphers",
		PassingScore: 50,
		Creator:      &quiz.Creator{ID: "edu-1", Email: "edu@x.com", Role: user.RoleEducator},
		Questions: []quiz.Question{
			{ID: 1, Question: "a?", Options: []string{"x", "y"}, CorrectAnswer: 0},
			{ID: 2, Question: "b?", Options: []string{"x", "y"}, CorrectAnswer: 1},
		},
	}
	if published {
		q.Status = quiz.StatusPublished
		q.Privacy = quiz.PrivacyPublic
	}
	created, err := env.quizzes.Create(context.Background(), q, nil)
	if err != nil {
		t.Fatalf("seed quiz: %v", err)
	}
	return created
}

func TestGetQuizGateOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	seedQuiz(t, env, "q1", false)

	env.router.Group(func(r chi.Router) {
		r.Use(asUser("learner-1", "l@x.com", user.RoleLearner))
		r.Get("/quizzes/{quizID}", GetQuizHandler(env.quizzes))
	})
	env.router.Group(func(r chi.Router) {
		r.Use(asUser("edu-1", "edu@x.com", user.RoleEducator))
		r.Get("/own/quizzes/{quizID}", GetQuizHandler(env.quizzes))
	})

	if rec := do(t, env.router, "GET", "/quizzes/q1", nil); rec.Code != http.StatusForbidden {
		t.Fatalf("learner on private draft: got %d", rec.Code)
	}
	if rec := do(t, env.router, "GET", "/own/quizzes/q1", nil); rec.Code != http.StatusOK {
		t.Fatalf("owner: got %d body %s", rec.Code, rec.Body.String())
	}
	if rec := do(t, env.router, "GET", "/quizzes/missing", nil); rec.Code != http.StatusNotFound {
		t.Fatalf("missing quiz: got %d", rec.Code)
	}
}

func TestSessionJoinAndSubmitFlow(t *testing.T) {
	env := newTestEnv(t)
	seedQuiz(t, env, "q1", false) // private draft; the join code is the way in

	env.router.Group(func(r chi.Router) {
		r.Use(asUser("edu-1", "edu@x.com", user.RoleEducator))
		r.Post("/sessions", CreateSessionHandler(env.sessions, env.quizzes, "http://localhost:3000", session.DefaultDuration))
		r.Post("/sessions/{sessionID}/end", EndSessionHandler(env.sessions))
		r.Get("/sessions/{sessionID}/leaderboard", LeaderboardHandler(env.sessions))
	})
	env.router.Group(func(r chi.Router) {
		r.Use(asUser("learner-1", "bob@x.com", user.RoleLearner))
		r.Get("/sessions/join/{code}", JoinSessionHandler(env.sessions, env.quizzes))
		r.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(env.quizzes, env.sessions, env.users))
	})

	rec := do(t, env.router, "POST", "/sessions", map[string]any{"quizId": "q1"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: got %d body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		ID      string `json:"id"`
		Code    string `json:"code"`
		JoinURL string `json:"joinUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.JoinURL == "" {
		t.Fatalf("join url missing")
	}

	if rec := do(t, env.router, "GET", "/sessions/join/"+created.Code, nil); rec.Code != http.StatusOK {
		t.Fatalf("join: got %d body %s", rec.Code, rec.Body.String())
	}

	if _, err := env.users.Register(context.Background(), user.RegisterRequest{Name: "Bob", Email: "bob@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	rec = do(t, env.router, "POST", "/quizzes/q1/submit", map[string]any{
		"sessionId":    created.ID,
		"studentName":  "Bob",
		"studentEmail": "bob@x.com",
		"answers":      []map[string]int{{"questionId": 1, "selectedAnswer": 0}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: got %d body %s", rec.Code, rec.Body.String())
	}
	var res quiz.Result
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Score != 50 || !res.Passed {
		t.Fatalf("got %+v", res)
	}

	// Submission awarded XP and history.
	u, err := env.users.GetByEmail(context.Background(), "bob@x.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.XP != 50 || len(u.History) != 1 || u.History[0].Type != user.HistoryTaken {
		t.Fatalf("ledger not booked: xp=%d history=%+v", u.XP, u.History)
	}

	rec = do(t, env.router, "GET", "/sessions/"+created.ID+"/leaderboard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: got %d", rec.Code)
	}
	var lb session.Leaderboard
	_ = json.Unmarshal(rec.Body.Bytes(), &lb)
	if len(lb.Entries) != 1 || lb.Entries[0].Score != 50 {
		t.Fatalf("got %+v", lb)
	}

	// Ended session no longer joins.
	if rec := do(t, env.router, "POST", "/sessions/"+created.ID+"/end", nil); rec.Code != http.StatusOK {
		t.Fatalf("end: got %d", rec.Code)
	}
	if rec := do(t, env.router, "GET", "/sessions/join/"+created.Code, nil); rec.Code != http.StatusGone {
		t.Fatalf("join after end: got %d", rec.Code)
	}
}

func TestUpdateUserXPRequiresGrant(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	if _, err := env.users.Register(ctx, user.RegisterRequest{Name: "Bob", Email: "bob@x.com", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	env.router.Group(func(r chi.Router) {
		r.Use(asUser("learner-1", "bob@x.com", user.RoleLearner))
		r.Patch("/users", UpdateUserHandler(env.users))
	})
	env.router.Group(func(r chi.Router) {
		r.Use(asUser("mod-1", "mod@x.com", user.RoleModerator))
		r.Patch("/mod/users", UpdateUserHandler(env.users))
	})

	rec := do(t, env.router, "PATCH", "/users", map[string]any{"addXp": 9000})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("self-granted xp: got %d body %s", rec.Code, rec.Body.String())
	}
	rec = do(t, env.router, "PATCH", "/users", map[string]any{
		"addHistory": map[string]any{"type": "quiz_taken", "quizId": "q1"},
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("self-granted history: got %d", rec.Code)
	}

	// Profile fields remain self-serviceable.
	rec = do(t, env.router, "PATCH", "/users", map[string]any{"name": "Bobby"})
	if rec.Code != http.StatusOK {
		t.Fatalf("self profile patch: got %d body %s", rec.Code, rec.Body.String())
	}

	// users:update holders may still adjust the ledger.
	rec = do(t, env.router, "PATCH", "/mod/users", map[string]any{"email": "bob@x.com", "addXp": 25})
	if rec.Code != http.StatusOK {
		t.Fatalf("moderator xp grant: got %d body %s", rec.Code, rec.Body.String())
	}
	u, err := env.users.GetByEmail(ctx, "bob@x.com")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if u.XP != 25 || u.Name != "Bobby" {
		t.Fatalf("got xp=%d name=%q", u.XP, u.Name)
	}
}

func TestSubmitRejectsMismatchedSession(t *testing.T) {
	env := newTestEnv(t)
	seedQuiz(t, env, "q1", true)
	seedQuiz(t, env, "q2", true)
	s, err := env.sessions.Create(context.Background(), "q2", "edu-1", "", 0)
	if err != nil {
		t.Fatalf("session: %v", err)
	}

	env.router.Group(func(r chi.Router) {
		r.Use(asUser("learner-1", "bob@x.com", user.RoleLearner))
		r.Post("/quizzes/{quizID}/submit", SubmitQuizHandler(env.quizzes, env.sessions, env.users))
	})

	rec := do(t, env.router, "POST", "/quizzes/q1/submit", map[string]any{
		"sessionId":    s.ID,
		"studentName":  "Bob",
		"studentEmail": "bob@x.com",
		"answers":      []map[string]int{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("mismatched session: got %d", rec.Code)
	}
}
