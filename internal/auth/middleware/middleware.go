package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/cryptocross/cryptocross/internal/rbac"
	"github.com/cryptocross/cryptocross/internal/user"
)

type AuthService struct{ hmac []byte }

func NewAuthService(secret string) *AuthService { return &AuthService{hmac: []byte(secret)} }

type Claims struct {
	Sub   string `json:"sub"`
	Role  string `json:"role"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, role, email string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:   sub,
		Role:  role,
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "cryptocross",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, err
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// AdminAccount is the env-configured admin identity; it exists outside the
// user store unless a matching record was registered there.
type AdminAccount struct {
	Email    string
	Name     string
	PassHash string // bcrypt
}

type loginResponse struct {
	AccessToken string    `json:"access_token"`
	User        user.User `json:"user"`
}

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(a *AuthService, users *user.Service, admin AdminAccount) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.Email == "" || req.Password == "" {
			http.Error(w, "email and password are required", http.StatusBadRequest)
			return
		}

		// Admin path: validated against configuration, not registration.
		if admin.Email != "" && strings.EqualFold(req.Email, admin.Email) {
			if admin.PassHash == "" {
				http.Error(w, "admin password not configured", http.StatusInternalServerError)
				return
			}
			if bcrypt.CompareHashAndPassword([]byte(admin.PassHash), []byte(req.Password)) != nil {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			u, err := users.GetByEmail(r.Context(), admin.Email)
			if err != nil {
				u = user.User{ID: "admin-virtual", Name: admin.Name, Email: admin.Email, Role: user.RoleAdmin}
			}
			u.Role = user.RoleAdmin
			issue(w, a, u)
			return
		}

		u, err := users.Authenticate(r.Context(), req.Email, req.Password)
		if err != nil {
			if errors.Is(err, user.ErrBadCredentials) {
				http.Error(w, "invalid credentials", http.StatusUnauthorized)
				return
			}
			http.Error(w, "login failed", http.StatusInternalServerError)
			return
		}
		issue(w, a, u)
	}
}

func issue(w http.ResponseWriter, a *AuthService, u user.User) {
	tok, err := a.IssueJWT(u.ID, u.Role, u.Email)
	if err != nil {
		http.Error(w, "issue token", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{AccessToken: tok, User: u.Safe()})
}

// POST /auth/register — self-service signup for learner/educator accounts.
func RegisterHandler(a *AuthService, users *user.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req user.RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := users.Register(r.Context(), req)
		if err != nil {
			switch {
			case errors.Is(err, user.ErrExists):
				http.Error(w, "user already exists", http.StatusConflict)
			case errors.Is(err, user.ErrInvalid):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "registration failed", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusCreated)
		issue(w, a, u)
	}
}

// JWTMiddleware validates the bearer token and seeds subject, email and the
// claimed role into the request context. The claimed role is provisional
// until AttachRoleFromStore confirms it.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer", http.StatusUnauthorized)
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil || c == nil {
				http.Error(w, "bad token", http.StatusUnauthorized)
				return
			}
			ctx := WithSubject(r.Context(), c.Sub)
			ctx = WithEmail(ctx, c.Email)
			ctx = rbac.WithRole(ctx, c.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
