package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// ChannelService is the interface that wraps methods for channel business logic.
type ChannelService interface {
	// Method ListChannels retrieves every channel.
	//
	// If some error occurs, the error will be returned together with nil.
	ListChannels(ctx context.Context) ([]models.Channel, error)
	// Method GetChannel retrieves a channel by ID.
	//
	// If the channel does not exist, an error wrapping models.ErrNotFound will be returned together with nil.
	GetChannel(ctx context.Context, id uuid.UUID) (*models.Channel, error)
	// Method CreateChannel creates a channel and adds it to the channel list of each authorised user.
	//
	// Unknown user IDs are dropped. If the name is missing, an error wrapping models.ErrIncompleteData will be returned.
	CreateChannel(ctx context.Context, req *models.CreateChannelRequest) (*models.Channel, error)
	// Method UpdateChannel applies a partial update and mirrors authorised-user changes onto the users.
	//
	// A failed mirror write is logged and does not change the result.
	UpdateChannel(ctx context.Context, id uuid.UUID, req *models.UpdateChannelRequest) (*models.Channel, error)
	// Method DeleteChannel removes the channel from its users and deletes it.
	DeleteChannel(ctx context.Context, id uuid.UUID) error
}

// ChannelHandler handles channel CRUD requests
type ChannelHandler struct {
	BaseHandler
	channelService ChannelService
}

// NewChannelHandler creates a new channel handler
func NewChannelHandler(channelService ChannelService, logger *zap.Logger) *ChannelHandler {
	return &ChannelHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		channelService: channelService,
	}
}

// RegisterRoutes registers all channel handler routes
// Note: This assumes the router is already scoped to /api and protected by the session middleware
func (h *ChannelHandler) RegisterRoutes(r chi.Router) {
	r.Route("/channels", func(r chi.Router) {
		r.Get("/", h.ListChannels)
		r.Post("/", h.CreateChannel)
		r.Get("/{id}", h.GetChannel)
		r.Put("/{id}", h.UpdateChannel)
		r.Patch("/{id}", h.UpdateChannel)
		r.Delete("/{id}", h.DeleteChannel)
	})
}

// ListChannels handles GET /channels
// @Summary List channels
// @Tags channels
// @Produce json
// @Success 200 {array} models.Channel
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /channels [get]
func (h *ChannelHandler) ListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := h.channelService.ListChannels(r.Context())
	if err != nil {
		h.RespondServiceError(w, err, "channel list")
		return
	}

	h.RespondJSON(w, http.StatusOK, channels)
}

// GetChannel handles GET /channels/{id}
// @Summary Get channel by ID
// @Tags channels
// @Produce json
// @Param id path string true "Channel ID"
// @Success 200 {object} models.Channel
// @Failure 400 {object} map[string]string "Invalid channel ID"
// @Failure 404 {object} map[string]string "Channel not found"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /channels/{id} [get]
func (h *ChannelHandler) GetChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	channel, err := h.channelService.GetChannel(r.Context(), id)
	if err != nil {
		h.RespondServiceError(w, err, "channel lookup")
		return
	}

	h.RespondJSON(w, http.StatusOK, channel)
}

// CreateChannel handles POST /channels
// @Summary Create channel
// @Description Create a channel. Every listed user gets the channel added to its own channel list.
// @Tags channels
// @Accept json
// @Produce json
// @Param request body models.CreateChannelRequest true "Channel data"
// @Success 201 {object} models.Channel
// @Failure 400 {object} map[string]string "Invalid request body or missing name"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /channels [post]
func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.CreateChannel(r.Context(), &req)
	if err != nil {
		h.RespondServiceError(w, err, "channel creation")
		return
	}

	h.RespondJSON(w, http.StatusCreated, channel)
}

// UpdateChannel handles PUT and PATCH /channels/{id}
// @Summary Update channel
// @Description Partially update a channel. Authorised-user changes are mirrored onto the users.
// @Tags channels
// @Accept json
// @Produce json
// @Param id path string true "Channel ID"
// @Param request body models.UpdateChannelRequest true "Fields to update"
// @Success 200 {object} models.Channel
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Channel not found"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /channels/{id} [patch]
// @Router /channels/{id} [put]
func (h *ChannelHandler) UpdateChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var req models.UpdateChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	channel, err := h.channelService.UpdateChannel(r.Context(), id, &req)
	if err != nil {
		h.RespondServiceError(w, err, "channel update")
		return
	}

	h.RespondJSON(w, http.StatusOK, channel)
}

// DeleteChannel handles DELETE /channels/{id}
// @Summary Delete channel
// @Tags channels
// @Param id path string true "Channel ID"
// @Success 204 "Channel deleted"
// @Failure 400 {object} map[string]string "Invalid channel ID"
// @Failure 404 {object} map[string]string "Channel not found"
// @Failure 500 {object} map[string]string "Upstream error"
// @Router /channels/{id} [delete]
func (h *ChannelHandler) DeleteChannel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.channelService.DeleteChannel(r.Context(), id); err != nil {
		h.RespondServiceError(w, err, "channel deletion")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ChannelHandler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.RespondError(w, http.StatusBadRequest, "invalid channel ID")
		return uuid.Nil, false
	}
	return id, true
}
