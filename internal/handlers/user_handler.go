package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/auth/middleware"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// UserService is the interface that wraps methods for user business logic.
type UserService interface {
	// Method ListUsers retrieves every user.
	//
	// If some error occurs, the error will be returned together with nil.
	ListUsers(ctx context.Context) ([]models.User, error)
	// Method GetUser retrieves a user by ID.
	//
	// If the user does not exist, an error wrapping models.ErrNotFound will be returned together with nil.
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Method CreateUser registers the account, stores the profile and adds the user to its channels.
	//
	// "actor" parameter is the username of the operator; super admins are held to their user quota.
	//
	// If validation fails, an error wrapping models.ErrIncompleteData, models.ErrInvalidInput or models.ErrAlreadyExists will be returned together with nil.
	CreateUser(ctx context.Context, actor string, req *models.CreateUserRequest) (*models.User, error)
	// Method UpdateUser applies a partial update and mirrors channel-list changes onto the channels.
	UpdateUser(ctx context.Context, id uuid.UUID, req *models.UpdateUserRequest) (*models.User, error)
	// Method DeleteUser removes the user from its channels and deletes the profile and the account.
	//
	// "actor" parameter is the username of the operator whose user quota is released.
	DeleteUser(ctx context.Context, actor string, id uuid.UUID) error
}

// UserHandler handles user CRUD requests
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: BaseHandler{Logger: logger},
		userService: userService,
	}
}

// RegisterRoutes registers all user handler routes
// Note: This assumes the router is already scoped to /api and protected by the session middleware
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Route("/users", func(r chi.Router) {
		r.Get("/", h.ListUsers)
		r.Post("/", h.CreateUser)
		r.Get("/{id}", h.GetUser)
		r.Put("/{id}", h.UpdateUser)
		r.Patch("/{id}", h.UpdateUser)
		r.Delete("/{id}", h.DeleteUser)
	})
}

// ListUsers handles GET /users
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /users [get]
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListUsers(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "user list")
		return
	}

	h.RespondJSON(w, http.StatusOK, users)
}

// GetUser handles GET /users/{id}
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "user lookup")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// CreateUser handles POST /users
// @Summary Create user
// @Description Create a user account. The user is added to the authorised list of every listed channel.
// @Tags users
// @Accept json
// @Produce json
// @Param request body models.CreateUserRequest true "User data"
// @Success 201 {object} models.User
// @Failure 400 {object} map[string]string "Invalid data, duplicate username or user limit reached"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /users [post]
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.CreateUser(r.Context(), actorOf(r), &req)
	if err != nil {
		h.RespondServiceError(w, err, "user creation")
		return
	}

	h.RespondJSON(w, http.StatusCreated, user)
}

// UpdateUser handles PUT and PATCH /users/{id}
// @Summary Update user
// @Description Partially update a user. Channel-list changes are mirrored onto the channels.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body models.UpdateUserRequest true "Fields to update"
// @Success 200 {object} models.User
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /users/{id} [patch]
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req models.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.userService.UpdateUser(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err, "user update")
		return
	}

	h.RespondJSON(w, http.StatusOK, user)
}

// DeleteUser handles DELETE /users/{id}
// @Summary Delete user
// @Tags users
// @Param id path string true "User ID"
// @Success 204 "User deleted"
// @Failure 400 {object} map[string]string "Invalid user ID"
// @Failure 404 {object} map[string]string "User not found"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.userService.DeleteUser(r.Context(), actorOf(r), id); err != nil {
		h.RespondServiceError(w, err, "user deletion")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid user ID")
		return uuid.Nil, false
	}
	return id, true
}

// actorOf returns the username of the super admin behind the request, or "" for other operators
func actorOf(r *http.Request) string {
	session, ok := middleware.GetSession(r.Context())
	if !ok || !session.IsSuperAdmin() {
		return ""
	}
	return session.Username
}
