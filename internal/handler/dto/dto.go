// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/todoapi/todoapi/internal/model"

// CredentialsRequest is the body of signup and login. Other fields are ignored.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToCredentials converts the request to model credentials.
func (r CredentialsRequest) ToCredentials() model.Credentials {
	return model.Credentials{Email: r.Email, Password: r.Password}
}

// CreateTodoRequest is the body of POST /todos.
type CreateTodoRequest struct {
	Text string `json:"text"`
}

// UpdateTodoRequest is the body of PATCH /todos/{id}.
// completedAt is not accepted from clients.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// ToPatch converts the request to a model patch.
func (r UpdateTodoRequest) ToPatch() model.TodoPatch {
	return model.TodoPatch{Text: r.Text, Completed: r.Completed}
}

// TodoResponse wraps a single todo.
type TodoResponse struct {
	Todo *model.Todo `json:"todo"`
}

// TodoListResponse wraps the caller's todos.
type TodoListResponse struct {
	Todos []*model.Todo `json:"todos"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}
