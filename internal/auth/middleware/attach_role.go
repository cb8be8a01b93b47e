package auth

import (
	"errors"
	"net/http"

	"github.com/cryptocross/cryptocross/internal/rbac"
	"github.com/cryptocross/cryptocross/internal/user"
)

// AttachRoleFromStore replaces the claimed role with the authoritative one
// from the user store. allowClaimFallback=true in dev/offline; false online.
// The env-configured admin has no store record and always keeps its claim.
func AttachRoleFromStore(users *user.Service, allowClaimFallback bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			sub := SubjectFromContext(ctx)
			claimRole := rbac.RoleFromContext(ctx)

			u, err := users.GetByID(ctx, sub)
			switch {
			case err == nil && u.Role != "":
				next.ServeHTTP(w, r.WithContext(rbac.WithRole(ctx, u.Role)))

			case errors.Is(err, user.ErrNotFound):
				if claimRole == user.RoleAdmin || (allowClaimFallback && claimRole != "") {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)

			default:
				if allowClaimFallback && claimRole != "" {
					next.ServeHTTP(w, r)
					return
				}
				http.Error(w, "forbidden", http.StatusForbidden)
			}
		})
	}
}
