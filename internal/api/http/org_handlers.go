package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cryptocross/cryptocross/internal/org"
)

func CreateOrgHandler(orgs *org.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var o org.Organization
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		created, err := orgs.Create(r.Context(), o)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
	}
}

func ListOrgsHandler(orgs *org.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := orgs.List(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetOrgHandler(orgs *org.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := orgs.Get(r.Context(), chi.URLParam(r, "orgID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, o)
	}
}

func AddOrgMemberHandler(orgs *org.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string `json:"userId"`
			Role   string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		m, err := orgs.AddMember(r.Context(), chi.URLParam(r, "orgID"), req.UserID, req.Role)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	}
}

func ListOrgMembersHandler(orgs *org.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := orgs.ListMembers(r.Context(), chi.URLParam(r, "orgID"), r.URL.Query().Get("userId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func RemoveOrgMemberHandler(orgs *org.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := orgs.RemoveMember(r.Context(), chi.URLParam(r, "orgID"), chi.URLParam(r, "userID")); err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
	}
}
