package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// TodoService handles owner-scoped todo operations.
type TodoService struct {
	store   repository.TodoStore
	timeout time.Duration
	metrics metrics.Recorder
	now     func() time.Time
}

// NewTodoService creates a new TodoService.
func NewTodoService(store repository.TodoStore, storeTimeout time.Duration, recorder metrics.Recorder) *TodoService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TodoService{
		store:   store,
		timeout: storeTimeout,
		metrics: recorder,
		now:     time.Now,
	}
}

// Create stores a new todo owned by creatorID.
func (s *TodoService) Create(ctx context.Context, creatorID, text string) (*model.Todo, error) {
	todo, err := model.NewTodo(creatorID, text)
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}

	s.metrics.IncTodoCreated()
	return todo, nil
}

// List returns the creator's todos.
func (s *TodoService) List(ctx context.Context, creatorID string) ([]*model.Todo, error) {
	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	todos, err := s.store.ListTodos(ctx, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Get returns one of the creator's todos. Malformed IDs and todos owned by
// someone else both yield ErrTodoNotFound.
func (s *TodoService) Get(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	if !s.store.ValidID(id) {
		return nil, ErrTodoNotFound
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	todo, err := s.store.GetTodo(ctx, id, creatorID)
	return todo, mapTodoErr(err, "get")
}

// Update applies a patch to one of the creator's todos.
// completedAt is derived from the completed flag, never taken from the client.
func (s *TodoService) Update(ctx context.Context, id, creatorID string, patch model.TodoPatch) (*model.Todo, error) {
	if !s.store.ValidID(id) {
		return nil, ErrTodoNotFound
	}

	upd, err := patch.Apply(s.now())
	if err != nil {
		return nil, err
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	todo, err := s.store.UpdateTodo(ctx, id, creatorID, upd)
	if err != nil {
		return nil, mapTodoErr(err, "update")
	}

	s.metrics.IncTodoUpdated()
	return todo, nil
}

// Delete removes one of the creator's todos and returns it.
func (s *TodoService) Delete(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	if !s.store.ValidID(id) {
		return nil, ErrTodoNotFound
	}

	ctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	todo, err := s.store.DeleteTodo(ctx, id, creatorID)
	if err != nil {
		return nil, mapTodoErr(err, "delete")
	}

	s.metrics.IncTodoDeleted()
	return todo, nil
}

func mapTodoErr(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrTodoNotFound) {
		return ErrTodoNotFound
	}
	return fmt.Errorf("failed to %s todo: %w", op, err)
}
