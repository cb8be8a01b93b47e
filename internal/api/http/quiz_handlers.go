package http

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/cryptocross/cryptocross/internal/auth/middleware"
	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/rbac"
	"github.com/cryptocross/cryptocross/internal/session"
	"github.com/cryptocross/cryptocross/internal/user"
)

func viewerFromContext(r *http.Request) quiz.Viewer {
	return quiz.Viewer{
		ID:   authmw.SubjectFromContext(r.Context()),
		Role: rbac.RoleFromContext(r.Context()),
	}
}

func ListQuizzesHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := quizzes.List(r.Context(), viewerFromContext(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func CreateQuizHandler(quizzes *quiz.Service, users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q quiz.Quiz
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		created, err := quizzes.Create(r.Context(), q, creatorFromContext(r, users))
		if err != nil {
			writeErr(w, err)
			return
		}
		recordCreated(r, users, created)
		writeJSON(w, http.StatusCreated, created)
	}
}

// ImportQuizHandler accepts a multipart upload with a JSON quiz document in
// the "file" field.
func ImportQuizHandler(quizzes *quiz.Service, users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		if !strings.HasSuffix(strings.ToLower(hdr.Filename), ".json") {
			http.Error(w, "only JSON files are allowed", http.StatusBadRequest)
			return
		}
		raw, err := io.ReadAll(f)
		if err != nil {
			http.Error(w, "read file", http.StatusBadRequest)
			return
		}
		var q quiz.Quiz
		if err := json.Unmarshal(raw, &q); err != nil {
			http.Error(w, "invalid JSON format", http.StatusBadRequest)
			return
		}
		created, err := quizzes.Create(r.Context(), q, creatorFromContext(r, users))
		if err != nil {
			writeErr(w, err)
			return
		}
		recordCreated(r, users, created)
		writeJSON(w, http.StatusCreated, created)
	}
}

// creatorFromContext resolves the authenticated user into a quiz creator
// reference.
func creatorFromContext(r *http.Request, users *user.Service) *quiz.Creator {
	sub := authmw.SubjectFromContext(r.Context())
	if sub == "" {
		return nil
	}
	u, err := users.GetByID(r.Context(), sub)
	if err != nil {
		return &quiz.Creator{
			ID:    sub,
			Email: authmw.EmailFromContext(r.Context()),
			Role:  rbac.RoleFromContext(r.Context()),
		}
	}
	return &quiz.Creator{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// recordCreated logs a "created" history entry for the creator. Best-effort:
// the quiz is already stored.
func recordCreated(r *http.Request, users *user.Service, q quiz.Quiz) {
	if q.Creator == nil || q.Creator.Email == "" {
		return
	}
	if _, err := users.RecordQuizCreated(r.Context(), q.Creator.Email, q.ID, q.Title); err != nil {
		log.Printf("record quiz created: %v", err)
	}
}

func GetQuizHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := quizzes.Get(r.Context(), chi.URLParam(r, "quizID"), viewerFromContext(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func UpdateQuizHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u quiz.Update
		if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		q, err := quizzes.Update(r.Context(), chi.URLParam(r, "quizID"), u, viewerFromContext(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, q)
	}
}

func DeleteQuizHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := quizzes.Delete(r.Context(), chi.URLParam(r, "quizID"), viewerFromContext(r)); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	}
}

// SubmitQuizHandler scores a submission, persists the result, mirrors it
// into the session results when session-scoped, and books XP/history for
// the submitting account.
func SubmitQuizHandler(quizzes *quiz.Service, sessions *session.Manager, users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		var req quiz.SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.SessionID != "" {
			s, err := sessions.Joinable(r.Context(), req.SessionID)
			if err != nil {
				writeErr(w, err)
				return
			}
			if s.QuizID != quizID {
				http.Error(w, "session does not match quiz", http.StatusBadRequest)
				return
			}
		}
		res, err := quizzes.Submit(r.Context(), quizID, req, viewerFromContext(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		if res.SessionID != "" {
			if _, err := sessions.RecordResult(r.Context(), res); err != nil {
				log.Printf("record session result: %v", err)
			}
		}
		q, qerr := quizzes.Get(r.Context(), quizID, quiz.Viewer{Role: user.RoleAdmin})
		title := quizID
		if qerr == nil {
			title = q.Title
		}
		if _, err := users.RecordQuizTaken(r.Context(), res.StudentEmail, quizID, title, res.Score, res.Passed); err != nil {
			log.Printf("record quiz taken: %v", err)
		}
		writeJSON(w, http.StatusCreated, res)
	}
}

// GetResultHandler returns one stored result. Learners only see their own.
func GetResultHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := quizzes.GetResult(r.Context(), chi.URLParam(r, "resultID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if role != user.RoleAdmin && role != user.RoleModerator &&
			!strings.EqualFold(res.StudentEmail, authmw.EmailFromContext(r.Context())) {
			http.Error(w, "not your result", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// ListResultsHandler filters results by email and quiz. Without a
// result:view-all grant the email filter is pinned to the caller.
func ListResultsHandler(quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		email := r.URL.Query().Get("email")
		quizID := r.URL.Query().Get("quizId")
		role := rbac.RoleFromContext(r.Context())
		if role != user.RoleAdmin && role != user.RoleModerator {
			email = authmw.EmailFromContext(r.Context())
		}
		list, err := quizzes.ListResults(r.Context(), email, quizID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
