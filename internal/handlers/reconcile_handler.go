package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// ReconcileEnqueuer is the interface that wraps scheduling of a reconciliation pass.
type ReconcileEnqueuer interface {
	// Method Enqueue puts a reconciliation task on the background queue and returns its ID.
	//
	// An empty "channelName" reconciles every channel.
	Enqueue(ctx context.Context, channelName string) (string, error)
}

// ReconcileHandler handles internal reconciliation triggers
type ReconcileHandler struct {
	BaseHandler
	reconciler ReconcileEnqueuer
}

// NewReconcileHandler creates a new reconcile handler
func NewReconcileHandler(reconciler ReconcileEnqueuer, logger *zap.Logger) *ReconcileHandler {
	return &ReconcileHandler{
		BaseHandler: BaseHandler{Logger: logger},
		reconciler:  reconciler,
	}
}

// RegisterRoutes registers all reconcile handler routes
// Note: This assumes the router is already scoped to /api and protected by the API key middleware
func (h *ReconcileHandler) RegisterRoutes(r chi.Router) {
	r.Post("/internal/reconcile", h.Enqueue)
}

// Enqueue handles POST /internal/reconcile
// @Summary Schedule relation reconciliation
// @Description Enqueue a pass that restores user channel lists from channel authorised-user lists. The body is optional.
// @Tags internal
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body models.ReconcileRequest false "Restrict the pass to one channel name"
// @Success 202 {object} map[string]string "Task enqueued"
// @Failure 400 {object} map[string]string "Invalid request body"
// @Failure 401 {object} map[string]string "Invalid or missing API key"
// @Failure 500 {object} map[string]string "Failed to enqueue"
// @Router /internal/reconcile [post]
func (h *ReconcileHandler) Enqueue(w http.ResponseWriter, r *http.Request) {
	var req models.ReconcileRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	taskID, err := h.reconciler.Enqueue(r.Context(), req.ChannelName)
	if err != nil {
		h.Logger.Error("failed to enqueue reconciliation", zap.Error(err))
		h.RespondError(w, http.StatusInternalServerError, "failed to enqueue reconciliation")
		return
	}

	h.RespondJSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}
