package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	authmw "github.com/cryptocross/cryptocross/internal/auth/middleware"
	"github.com/cryptocross/cryptocross/internal/moderation"
	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/user"
)

// ListModerationHandler returns queue items, optionally one type
// (?type=publish|report), newest first.
func ListModerationHandler(mods *moderation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := mods.List(r.Context(), r.URL.Query().Get("type"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// RequestPublishHandler queues a quiz for publish review.
func RequestPublishHandler(mods *moderation.Service, quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		q, err := quizzes.Get(r.Context(), quizID, viewerFromContext(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		if !quiz.CanMutate(q, viewerFromContext(r)) {
			http.Error(w, "only the quiz owner can request publication", http.StatusForbidden)
			return
		}
		it, err := mods.Enqueue(r.Context(), moderation.Item{
			ID:          "pub-" + quizID,
			Type:        moderation.TypePublish,
			Title:       q.Title,
			RequestedBy: authmw.EmailFromContext(r.Context()),
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, it)
	}
}

// ReportQuizHandler queues a content report against a quiz.
func ReportQuizHandler(mods *moderation.Service, quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quizID := chi.URLParam(r, "quizID")
		var req struct {
			Reason string `json:"reason"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		q, err := quizzes.Get(r.Context(), quizID, viewerFromContext(r))
		if err != nil {
			writeErr(w, err)
			return
		}
		it, err := mods.Enqueue(r.Context(), moderation.Item{
			ID:          "rep-" + quizID + "-" + authmw.SubjectFromContext(r.Context()),
			Type:        moderation.TypeReport,
			Title:       q.Title,
			RequestedBy: authmw.EmailFromContext(r.Context()),
			Detail:      req.Reason,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, it)
	}
}

// DecideModerationHandler resolves a queue item. Approving a publish
// request flips the quiz to published.
func DecideModerationHandler(mods *moderation.Service, quizzes *quiz.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
			Reason string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		it, err := mods.Decide(r.Context(), chi.URLParam(r, "itemID"), req.Action, req.Reason)
		if err != nil {
			writeErr(w, err)
			return
		}
		if it.Type == moderation.TypePublish && it.Status == moderation.StatusApproved {
			quizID := it.ID[len("pub-"):]
			status := quiz.StatusPublished
			// Authorization already happened at the route gate.
			if _, err := quizzes.Update(r.Context(), quizID, quiz.Update{Status: &status},
				quiz.Viewer{Role: user.RoleAdmin}); err != nil {
				writeErr(w, err)
				return
			}
		}
		writeJSON(w, http.StatusOK, it)
	}
}
