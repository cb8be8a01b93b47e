package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	authmw "github.com/cryptocross/cryptocross/internal/auth/middleware"
	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/session"
	"github.com/cryptocross/cryptocross/internal/user"
)

type sessionResponse struct {
	session.Session
	JoinURL string `json:"joinUrl,omitempty"`
}

func withJoinURL(s session.Session, publicURL string) sessionResponse {
	resp := sessionResponse{Session: s}
	if publicURL != "" {
		resp.JoinURL = publicURL + "/join/" + s.Code
	}
	return resp
}

// CreateSessionHandler starts a live session for a quiz the caller may
// mutate, minting the join code.
func CreateSessionHandler(sessions *session.Manager, quizzes *quiz.Service, publicURL string, defaultDuration time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			QuizID          string `json:"quizId"`
			Privacy         string `json:"privacy"`
			DurationMinutes int    `json:"durationMinutes"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		viewer := viewerFromContext(r)
		q, err := quizzes.Get(r.Context(), req.QuizID, viewer)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !quiz.CanMutate(q, viewer) {
			http.Error(w, "only the quiz owner can host a session", http.StatusForbidden)
			return
		}
		d := time.Duration(req.DurationMinutes) * time.Minute
		if d <= 0 {
			d = defaultDuration
		}
		s, err := sessions.Create(r.Context(), q.ID, viewer.ID, req.Privacy, d)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, withJoinURL(s, publicURL))
	}
}

// ListSessionsHandler returns the caller's sessions, or a quiz's sessions
// when quizId is given (owner or admin only).
func ListSessionsHandler(sessions *session.Manager, quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		viewer := viewerFromContext(r)
		if code := r.URL.Query().Get("code"); code != "" {
			s, err := sessions.LookupByCode(r.Context(), code)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, []session.Session{s})
			return
		}
		if quizID := r.URL.Query().Get("quizId"); quizID != "" {
			q, err := quizzes.Get(r.Context(), quizID, viewer)
			if err != nil {
				writeErr(w, err)
				return
			}
			if !quiz.CanMutate(q, viewer) {
				http.Error(w, "not the quiz owner", http.StatusForbidden)
				return
			}
			list, err := sessions.ListByQuiz(r.Context(), quizID)
			if err != nil {
				writeErr(w, err)
				return
			}
			writeJSON(w, http.StatusOK, list)
			return
		}
		list, err := sessions.ListByOwner(r.Context(), viewer.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetSessionHandler(sessions *session.Manager, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, withJoinURL(s, publicURL))
	}
}

// EndSessionHandler terminates a session. Only its owner or an admin may
// end it; ending twice succeeds.
func EndSessionHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		viewer := viewerFromContext(r)
		if viewer.Role != user.RoleAdmin && s.OwnerID != viewer.ID {
			http.Error(w, "only the session owner can end it", http.StatusForbidden)
			return
		}
		s, err = sessions.End(r.Context(), s.ID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// JoinSessionHandler resolves a join code to a live session and its quiz.
// The code is the capability: quiz visibility is not re-checked here.
func JoinSessionHandler(sessions *session.Manager, quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.LookupByCode(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			writeErr(w, err)
			return
		}
		q, err := quizzes.Get(r.Context(), s.QuizID, quiz.Viewer{Role: user.RoleAdmin})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session": s,
			"quiz":    q,
		})
	}
}

// SessionResultsHandler lists a session's results for its owner or an
// admin; other callers only see their own submissions.
func SessionResultsHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := sessions.Get(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		viewer := viewerFromContext(r)
		email := ""
		if viewer.Role != user.RoleAdmin && s.OwnerID != viewer.ID {
			email = authmw.EmailFromContext(r.Context())
		}
		list, err := sessions.ListResults(r.Context(), s.ID, email)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func LeaderboardHandler(sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, err := sessions.Leaderboard(r.Context(), chi.URLParam(r, "sessionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lb)
	}
}
