package http

import (
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cryptocross/cryptocross/internal/invite"
	"github.com/cryptocross/cryptocross/internal/user"
)

// IssueInvitesHandler provisions accounts from a JSON body:
// {"organizationId": "...", "users": [{"name","email","role"}, ...]}.
// Temp passwords appear once in the response; cleanup redacts them.
func IssueInvitesHandler(invites *invite.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OrganizationID string         `json:"organizationId"`
			Users          []invite.Entry `json:"users"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		issued, err := invites.Issue(r.Context(), req.OrganizationID, req.Users)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, issued)
	}
}

// UploadInvitesHandler is IssueInvitesHandler fed by a CSV upload
// (multipart "file" field, name,email,role columns).
func UploadInvitesHandler(invites *invite.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orgID := r.FormValue("organizationId")
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()
		entries, err := invite.ParseCSV(f)
		if err != nil {
			http.Error(w, "invalid CSV: "+err.Error(), http.StatusBadRequest)
			return
		}
		issued, err := invites.Issue(r.Context(), orgID, entries)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, issued)
	}
}

func ListInvitesHandler(invites *invite.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := invites.List(r.Context(), r.URL.Query().Get("organizationId"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// CleanupInvitesHandler redacts temp passwords, scoped by invitation or
// organization id when given.
func CleanupInvitesHandler(invites *invite.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			InvitationID   string `json:"invitationId"`
			OrganizationID string `json:"organizationId"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		n, err := invites.Cleanup(r.Context(), req.InvitationID, req.OrganizationID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"redacted": n})
	}
}

var credentialSheetTmpl = template.Must(template.New("sheet").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Account credentials</title>
<style>
body { font-family: sans-serif; margin: 2rem; }
.card { border: 1px solid #ccc; border-radius: 6px; padding: 1rem; margin-bottom: 1rem; page-break-inside: avoid; }
.label { color: #666; font-size: 0.8rem; text-transform: uppercase; }
code { font-size: 1.1rem; }
</style>
</head>
<body>
<h1>Account credentials</h1>
<p>Hand each card to its owner. Passwords are temporary and must be changed on first sign-in.</p>
{{range .}}
<div class="card">
  <div><span class="label">Name</span><br>{{.Name}}</div>
  <div><span class="label">Username</span><br><code>{{.Username}}</code></div>
  <div><span class="label">Email</span><br><code>{{.Email}}</code></div>
  {{if .TempPassword}}<div><span class="label">Temporary password</span><br><code>{{.TempPassword}}</code></div>
  {{else}}<div><span class="label">Password</span><br>existing account, password unchanged</div>{{end}}
</div>
{{end}}
</body>
</html>
`))

// CredentialSheetHandler renders a printable HTML card for an issued
// invitation. Once the temp password is redacted the card says so.
func CredentialSheetHandler(invites *invite.Service, users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inv, err := invites.Get(r.Context(), chi.URLParam(r, "inviteID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		card := invite.Issued{
			InvitationID: inv.ID,
			UserID:       inv.UserID,
			Email:        inv.EmailIssuedTo,
			TempPassword: inv.TempPassword,
		}
		if u, err := users.GetByID(r.Context(), inv.UserID); err == nil {
			card.Name = u.Name
			card.Username = u.Username
		}
		sheet := []invite.Issued{card}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := credentialSheetTmpl.Execute(w, sheet); err != nil {
			http.Error(w, "render sheet", http.StatusInternalServerError)
		}
	}
}
