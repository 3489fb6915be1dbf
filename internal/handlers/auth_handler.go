package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nimada80/plusp/internal/auth/middleware"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// AuthService is the interface that wraps methods for console authentication business logic.
type AuthService interface {
	// Method Login validates operator credentials and opens a session.
	//
	// "req" parameter contains username and password.
	//
	// Unknown usernames and wrong passwords both return models.ErrInvalidCredentials together with nil.
	// If some other error occurs, the error will be returned together with nil.
	Login(ctx context.Context, req *models.LoginRequest) (*models.Session, error)
	// Method Logout ends a session.
	//
	// "sessionID" parameter is used to identify the session. Unknown sessions are not an error.
	Logout(ctx context.Context, sessionID string) error
	// Method CurrentUser describes the owner of a session.
	//
	// Super admins are returned together with their user quota.
	// If some error occurs, the error will be returned together with nil.
	CurrentUser(ctx context.Context, session *models.Session) (*models.CurrentUserResponse, error)
}

// MediaTokenService is the interface that wraps room token issuance for media clients.
type MediaTokenService interface {
	// Method IssueTokens authenticates a media client against the auth provider and returns one room token per channel.
	//
	// Rejected credentials return models.ErrInvalidCredentials, inactive users and users without channels models.ErrForbidden.
	IssueTokens(ctx context.Context, req *models.ClientAuthRequest) (*models.ClientAuthResponse, error)
}

// AuthHandler handles console sessions and media client token requests
type AuthHandler struct {
	BaseHandler
	authService  AuthService
	mediaService MediaTokenService
	cookieSecure bool
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthService, mediaService MediaTokenService, cookieSecure bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:  BaseHandler{Logger: logger},
		authService:  authService,
		mediaService: mediaService,
		cookieSecure: cookieSecure,
	}
}

// RegisterRoutes registers all auth handler routes
// Note: This assumes the router is already scoped to /api
func (h *AuthHandler) RegisterRoutes(r chi.Router, sessionMiddleware func(http.Handler) http.Handler) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/client", h.ClientAuth)
		r.With(sessionMiddleware).Get("/user", h.CurrentUser)
	})
}

// Login handles POST /auth/login
// @Summary Console login
// @Description Authenticate a super admin or an active admin user. The session ID is returned as the HTTP-only "sessionid" cookie.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login request"
// @Success 200 {object} map[string]bool "Login successful"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	session, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Logout handles POST /auth/logout
// @Summary Console logout
// @Description End the current session and expire the session cookie
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]bool "Logout successful"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			h.RespondServiceError(w, err, "logout")
			return
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	h.RespondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// CurrentUser handles GET /auth/user
// @Summary Current operator
// @Description Describe the owner of the current session. Super admins include user_limit and user_count.
// @Tags auth
// @Produce json
// @Success 200 {object} models.CurrentUserResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /auth/user [get]
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.GetSession(r.Context())
	if !ok {
		h.RespondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	resp, err := h.authService.CurrentUser(r.Context(), session)
	if err != nil {
		h.RespondServiceError(w, err, "current user lookup")
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}

// ClientAuth handles POST /auth/client
// @Summary Media client authentication
// @Description Authenticate a user with the auth provider and issue one LiveKit room token per authorised channel
// @Tags auth
// @Accept json
// @Produce json
// @Param request body models.ClientAuthRequest true "Client credentials"
// @Success 200 {object} models.ClientAuthResponse
// @Failure 400 {object} map[string]string "Missing credentials"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 403 {object} map[string]string "Inactive user or no channel access"
// @Failure 404 {object} map[string]string "User profile not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /auth/client [post]
func (h *AuthHandler) ClientAuth(w http.ResponseWriter, r *http.Request) {
	var req models.ClientAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.mediaService.IssueTokens(r.Context(), &req)
	if err != nil {
		status := StatusFor(err)
		if status == http.StatusInternalServerError {
			// Upstream details are not exposed to media clients
			h.Logger.Error("failed to issue media tokens", zap.Error(err))
			h.RespondError(w, status, "authentication failed")
			return
		}
		h.Logger.Info("media token request rejected", zap.Int("status", status), zap.Error(err))
		h.RespondError(w, status, err.Error())
		return
	}

	h.RespondJSON(w, http.StatusOK, resp)
}
