package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/handler/dto"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/service"
)

// TodoHandler handles HTTP requests for todo operations.
// Every route runs behind the session guard.
type TodoHandler struct {
	svc    *service.TodoService
	logger *slog.Logger
}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler(svc *service.TodoService, logger *slog.Logger) *TodoHandler {
	return &TodoHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /todos.
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	userID := auth.UserIDFromContext(r.Context())
	todo, err := h.svc.Create(r.Context(), userID, req.Text)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("todo_created",
		"todo_id", todo.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, todo)
}

// List handles GET /todos.
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	todos, err := h.svc.List(r.Context(), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TodoListResponse{Todos: todos})
}

// Get handles GET /todos/{id}.
func (h *TodoHandler) Get(w http.ResponseWriter, r *http.Request) {
	todo, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), auth.UserIDFromContext(r.Context()))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.TodoResponse{Todo: todo})
}

// Update handles PATCH /todos/{id}.
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.UpdateTodoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	id := chi.URLParam(r, "id")
	userID := auth.UserIDFromContext(r.Context())

	todo, err := h.svc.Update(r.Context(), id, userID, req.ToPatch())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("todo_updated",
		"todo_id", todo.ID,
		"user_id", userID,
		"completed", todo.Completed,
	)

	writeJSON(w, http.StatusOK, dto.TodoResponse{Todo: todo})
}

// Delete handles DELETE /todos/{id}.
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())

	todo, err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("todo_deleted",
		"todo_id", todo.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusOK, dto.TodoResponse{Todo: todo})
}

// handleServiceError maps service errors to HTTP responses.
// Missing and foreign todos share one bodiless 404.
func (h *TodoHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if writeValidationError(w, err) {
		return
	}

	switch {
	case errors.Is(err, service.ErrTodoNotFound):
		w.WriteHeader(http.StatusNotFound)
	default:
		h.logger.Error("store_error",
			"error", err,
			"request_id", middleware.GetRequestID(r.Context()),
		)
		writeError(w, http.StatusBadRequest, "STORE_ERROR", "The request could not be completed")
	}
}
