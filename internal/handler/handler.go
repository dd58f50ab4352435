// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/todoapi/todoapi/internal/handler/dto"
	"github.com/todoapi/todoapi/internal/model"
)

// Version is reported by the info endpoint.
const Version = "1.0.0"

// Handler serves the info and fallback endpoints.
type Handler struct {
	storeDriver string
}

// New creates a new Handler instance.
func New(storeDriver string) *Handler {
	return &Handler{storeDriver: storeDriver}
}

// Hello reports service name and version.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Todo API",
		"version": Version,
		"store":   h.storeDriver,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeValidationError reports a ValidationError with its per-field messages.
// It returns false if err is not a ValidationError.
func writeValidationError(w http.ResponseWriter, err error) bool {
	var verr *model.ValidationError
	if !errors.As(err, &verr) {
		return false
	}
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error:  verr.Error(),
		Code:   "VALIDATION_ERROR",
		Fields: verr.Fields,
	})
	return true
}

// decodeJSON decodes the request body into v.
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
