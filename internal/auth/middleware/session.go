package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

type contextKey string

const sessionKey contextKey = "session"

// SessionCookieName is the cookie carrying the console session ID
const SessionCookieName = "sessionid"

// SessionAuthenticator resolves session IDs
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, sessionID string) (*models.Session, error)
}

// SessionMiddleware loads the session named by the sessionid cookie and stores it in the request context
func SessionMiddleware(authenticator SessionAuthenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			session, err := authenticator.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if !errors.Is(err, models.ErrNotFound) {
					logger.Error("failed to load session", zap.Error(err))
					writeError(w, http.StatusInternalServerError, "failed to load session")
					return
				}
				writeError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}

// WithSession returns a copy of ctx carrying session
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSession retrieves the session from context
func GetSession(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*models.Session)
	return session, ok && session != nil
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(`{"error":"` + message + `"}`))
}
