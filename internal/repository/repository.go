// Package repository provides the storage layer for users and todos.
package repository

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"

	"github.com/todoapi/todoapi/internal/model"
)

// Common errors for store operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")
	ErrTodoNotFound = errors.New("todo not found")
)

// UserStore persists users and their session tokens.
type UserStore interface {
	// ValidID reports whether id is a well-formed identifier for this store.
	ValidID(id string) bool
	// CreateUser inserts the user with its tokens and assigns its ID.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// GetUserByToken finds the user with the given ID holding an exact token/access entry.
	GetUserByToken(ctx context.Context, id, token, access string) (*model.User, error)
	// AddToken appends a token to the user's token list.
	AddToken(ctx context.Context, userID string, token model.Token) error
	// RemoveToken removes every entry with the given token value. Absent tokens are a no-op.
	RemoveToken(ctx context.Context, userID, token string) error
}

// TodoStore persists todos. Every lookup is scoped to the creator.
type TodoStore interface {
	ValidID(id string) bool
	CreateTodo(ctx context.Context, todo *model.Todo) error
	ListTodos(ctx context.Context, creatorID string) ([]*model.Todo, error)
	GetTodo(ctx context.Context, id, creatorID string) (*model.Todo, error)
	UpdateTodo(ctx context.Context, id, creatorID string, upd model.TodoUpdate) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id, creatorID string) (*model.Todo, error)
}

// Store is a complete storage backend.
type Store interface {
	UserStore
	TodoStore
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// newULID generates identifiers for stores without native ones.
func newULID() string {
	return ulid.Make().String()
}

// validULID reports whether id is a canonical ULID string.
func validULID(id string) bool {
	_, err := ulid.ParseStrict(id)
	return err == nil
}
