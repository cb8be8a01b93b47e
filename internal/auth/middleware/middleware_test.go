package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cryptocross/cryptocross/internal/rbac"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewAuthService("test-secret")
	tok, err := svc.IssueJWT("u1", "educator", "e@x.com")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	c, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Sub != "u1" || c.Role != "educator" || c.Email != "e@x.com" {
		t.Fatalf("got %+v", c)
	}
}

func TestJWTRejectsWrongKey(t *testing.T) {
	tok, _ := NewAuthService("key-a").IssueJWT("u1", "learner", "e@x.com")
	if c, err := NewAuthService("key-b").Parse(tok); err == nil && c != nil {
		t.Fatalf("token signed with another key must not parse")
	}
}

func TestJWTMiddlewareSeedsContext(t *testing.T) {
	svc := NewAuthService("test-secret")
	tok, _ := svc.IssueJWT("u1", "educator", "e@x.com")

	var gotSub, gotRole, gotEmail string
	h := JWTMiddleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSub = SubjectFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
		gotEmail = EmailFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	if gotSub != "u1" || gotRole != "educator" || gotEmail != "e@x.com" {
		t.Fatalf("context not seeded: %q %q %q", gotSub, gotRole, gotEmail)
	}

	req = httptest.NewRequest("GET", "/", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing bearer: got %d", rec.Code)
	}
}
