package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nimada80/plusp/internal/models"
	"go.uber.org/zap"
)

// BaseHandler provides common handler functionality
type BaseHandler struct {
	Logger *zap.Logger
}

// RespondJSON sends a JSON response
func (h *BaseHandler) RespondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", zap.Error(err))
	}
}

// RespondError sends an error JSON response
func (h *BaseHandler) RespondError(w http.ResponseWriter, status int, message string) {
	h.RespondJSON(w, status, map[string]string{"error": message})
}

// RespondServiceError maps a service error onto a status code.
// Errors outside the models taxonomy are answered with 500 "upstream error" and the
// underlying message in "details".
func (h *BaseHandler) RespondServiceError(w http.ResponseWriter, err error, action string) {
	status := StatusFor(err)
	if status != http.StatusInternalServerError {
		h.Logger.Info(action+" rejected", zap.Int("status", status), zap.Error(err))
		h.RespondError(w, status, err.Error())
		return
	}

	h.Logger.Error(action+" failed", zap.Error(err))
	h.RespondJSON(w, status, map[string]string{
		"error":   "upstream error",
		"details": err.Error(),
	})
}

// StatusFor returns the HTTP status matching err
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrIncompleteData),
		errors.Is(err, models.ErrInvalidInput),
		errors.Is(err, models.ErrAlreadyExists):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the request body into dst
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
