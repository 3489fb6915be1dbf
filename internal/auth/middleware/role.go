package middleware

import (
	"net/http"
	"slices"

	"github.com/nimada80/plusp/internal/models"
)

// RoleMiddleware allows the request through only when the session role is one of roles.
// It must run after SessionMiddleware.
func RoleMiddleware(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, ok := GetSession(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			if !slices.Contains(roles, session.Role) {
				writeError(w, http.StatusForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
