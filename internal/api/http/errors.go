package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cryptocross/cryptocross/internal/invite"
	"github.com/cryptocross/cryptocross/internal/moderation"
	"github.com/cryptocross/cryptocross/internal/org"
	"github.com/cryptocross/cryptocross/internal/quiz"
	"github.com/cryptocross/cryptocross/internal/session"
	"github.com/cryptocross/cryptocross/internal/store"
	"github.com/cryptocross/cryptocross/internal/user"
)

// writeErr is the single place domain errors become HTTP statuses.
// Validation and forbidden errors carry their reason; not-found is generic;
// anything unexpected is a generic 500 so internals never leak.
func writeErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, quiz.ErrNotFound),
		errors.Is(err, session.ErrNotFound),
		errors.Is(err, user.ErrNotFound),
		errors.Is(err, org.ErrNotFound),
		errors.Is(err, invite.ErrNotFound),
		errors.Is(err, moderation.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)

	case errors.Is(err, quiz.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)

	case errors.Is(err, quiz.ErrExists),
		errors.Is(err, user.ErrExists),
		errors.Is(err, org.ErrExists),
		errors.Is(err, org.ErrAlreadyMember):
		http.Error(w, err.Error(), http.StatusConflict)

	case errors.Is(err, session.ErrNotLive),
		errors.Is(err, session.ErrExpired):
		http.Error(w, err.Error(), http.StatusGone)

	case errors.Is(err, user.ErrBadCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)

	case errors.Is(err, quiz.ErrInvalid),
		errors.Is(err, quiz.ErrNoQuestions),
		errors.Is(err, session.ErrInvalid),
		errors.Is(err, user.ErrInvalid),
		errors.Is(err, org.ErrInvalid),
		errors.Is(err, invite.ErrInvalid),
		errors.Is(err, moderation.ErrInvalid):
		http.Error(w, err.Error(), http.StatusBadRequest)

	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
