package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/handler/dto"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/service"
)

// UserHandler handles HTTP requests for user accounts and sessions.
type UserHandler struct {
	svc    *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Signup handles POST /users.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.Signup(r.Context(), req.ToCredentials())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_signed_up",
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, user.Public())
}

// Login handles POST /users/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	user, token, err := h.svc.Login(r.Context(), req.ToCredentials())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_logged_in",
		"user_id", user.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.Header().Set(middleware.AuthHeader, token)
	writeJSON(w, http.StatusOK, user.Public())
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())
	writeJSON(w, http.StatusOK, session.User.Public())
}

// Logout handles DELETE /users/me/token.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := auth.MustSessionFromContext(r.Context())

	if err := h.svc.Logout(r.Context(), session); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("user_logged_out",
		"user_id", session.User.ID,
		"request_id", middleware.GetRequestID(r.Context()),
	)

	w.WriteHeader(http.StatusOK)
}

// handleServiceError maps service errors to HTTP responses.
func (h *UserHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if writeValidationError(w, err) {
		return
	}

	switch {
	case errors.Is(err, service.ErrEmailTaken):
		writeError(w, http.StatusBadRequest, "EMAIL_TAKEN", "Email is already in use")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid email or password")
	default:
		h.logger.Error("store_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusBadRequest, "STORE_ERROR", "The request could not be completed")
	}
}
