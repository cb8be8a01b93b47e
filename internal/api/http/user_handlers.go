package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	authmw "github.com/cryptocross/cryptocross/internal/auth/middleware"
	"github.com/cryptocross/cryptocross/internal/rbac"
	"github.com/cryptocross/cryptocross/internal/user"
)

// ListUsersHandler returns all accounts, optionally filtered by role.
// Password hashes never leave the service layer.
func ListUsersHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.List(r.Context(), r.URL.Query().Get("role"))
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]user.User, 0, len(list))
		for _, u := range list {
			out = append(out, u.Safe())
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// MeHandler returns the caller's own account.
func MeHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.GetByID(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u.Safe())
	}
}

func GetUserHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.GetByID(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u.Safe())
	}
}

// UpdateUserHandler patches a profile and its XP/history ledger, addressed
// by email. Callers without users:update may only patch themselves.
func UpdateUserHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
			user.Update
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		caller := authmw.EmailFromContext(r.Context())
		if req.Email == "" {
			req.Email = caller
		}
		role := rbac.RoleFromContext(r.Context())
		if !rbac.Has(role, "users:update") {
			if !strings.EqualFold(req.Email, caller) {
				http.Error(w, "cannot update another user", http.StatusForbidden)
				return
			}
			// XP and history are earned through quiz completion, never
			// self-assigned.
			if req.AddXP != nil || req.AddHistory != nil {
				http.Error(w, "cannot adjust xp or history", http.StatusForbidden)
				return
			}
		}
		u, err := users.Apply(r.Context(), req.Email, req.Update)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u.Safe())
	}
}

// ChangePasswordHandler rotates the caller's own credential. The current
// password is required unless the account is still on a forced temp
// credential.
func ChangePasswordHandler(users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			CurrentPassword string `json:"currentPassword"`
			NewPassword     string `json:"newPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		email := authmw.EmailFromContext(r.Context())
		if email == "" {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		u, err := users.GetByEmail(r.Context(), email)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !u.ForcePasswordChange && req.CurrentPassword == "" {
			http.Error(w, "currentPassword required", http.StatusBadRequest)
			return
		}
		u, err = users.ChangePassword(r.Context(), email, req.CurrentPassword, req.NewPassword)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, u.Safe())
	}
}
