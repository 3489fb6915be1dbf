package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nimada80/plusp/internal/auth/middleware"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// SuperAdminService is the interface that wraps super admin management.
type SuperAdminService interface {
	// Method CreateSuperAdmin creates an operator account with a user quota.
	//
	// "actor" parameter is stored as created_by.
	//
	// If a field is missing, an error wrapping models.ErrIncompleteData will be returned together with nil.
	// If the username is taken, an error wrapping models.ErrAlreadyExists will be returned together with nil.
	CreateSuperAdmin(ctx context.Context, actor string, req *models.CreateSuperAdminRequest) (*models.SuperAdmin, error)
}

// SuperAdminHandler handles super admin management requests
type SuperAdminHandler struct {
	BaseHandler
	superAdminService SuperAdminService
}

// NewSuperAdminHandler creates a new super admin handler
func NewSuperAdminHandler(superAdminService SuperAdminService, logger *zap.Logger) *SuperAdminHandler {
	return &SuperAdminHandler{
		BaseHandler:       BaseHandler{Logger: logger},
		superAdminService: superAdminService,
	}
}

// RegisterRoutes registers all super admin handler routes
// Note: This assumes the router is already scoped to /api and restricted to super admins
func (h *SuperAdminHandler) RegisterRoutes(r chi.Router) {
	r.Post("/super-admins", h.CreateSuperAdmin)
}

// CreateSuperAdmin handles POST /super-admins
// @Summary Create super admin
// @Tags super-admins
// @Accept json
// @Produce json
// @Param request body models.CreateSuperAdminRequest true "Super admin data"
// @Success 201 {object} models.SuperAdmin
// @Failure 400 {object} map[string]string "Incomplete data or duplicate username"
// @Failure 403 {object} map[string]string "Insufficient permissions"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /super-admins [post]
func (h *SuperAdminHandler) CreateSuperAdmin(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSuperAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	actor := ""
	if session, ok := middleware.GetSession(r.Context()); ok {
		actor = session.Username
	}

	admin, err := h.superAdminService.CreateSuperAdmin(r.Context(), actor, &req)
	if err != nil {
		h.RespondServiceError(w, err, "super admin creation")
		return
	}

	h.RespondJSON(w, http.StatusCreated, admin)
}
