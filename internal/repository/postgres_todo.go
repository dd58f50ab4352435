package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/todoapi/todoapi/internal/model"
)

// CreateTodo inserts a new todo.
func (s *PostgresStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	if todo.ID == "" {
		todo.ID = newULID()
	}

	query := `
		INSERT INTO todos (id, text, completed, completed_at, creator_id)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := s.pool.Exec(ctx, query,
		todo.ID,
		todo.Text,
		todo.Completed,
		todo.CompletedAt,
		todo.CreatorID,
	)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}

	return nil
}

// ListTodos returns every todo owned by creatorID in creation order.
func (s *PostgresStore) ListTodos(ctx context.Context, creatorID string) ([]*model.Todo, error) {
	query := `
		SELECT id, text, completed, completed_at, creator_id
		FROM todos
		WHERE creator_id = $1
		ORDER BY created_at, id
	`

	rows, err := s.pool.Query(ctx, query, creatorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := make([]*model.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}

	return todos, nil
}

// GetTodo retrieves a todo owned by creatorID.
func (s *PostgresStore) GetTodo(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	query := `
		SELECT id, text, completed, completed_at, creator_id
		FROM todos
		WHERE id = $1 AND creator_id = $2
	`
	return s.queryTodo(ctx, query, id, creatorID)
}

// UpdateTodo applies upd to a todo owned by creatorID and returns the new state.
func (s *PostgresStore) UpdateTodo(ctx context.Context, id, creatorID string, upd model.TodoUpdate) (*model.Todo, error) {
	query := `
		UPDATE todos
		SET text = COALESCE($3, text),
		    completed = $4,
		    completed_at = $5
		WHERE id = $1 AND creator_id = $2
		RETURNING id, text, completed, completed_at, creator_id
	`
	return s.queryTodo(ctx, query, id, creatorID, upd.Text, upd.Completed, upd.CompletedAt)
}

// DeleteTodo removes a todo owned by creatorID and returns it.
func (s *PostgresStore) DeleteTodo(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	query := `
		DELETE FROM todos
		WHERE id = $1 AND creator_id = $2
		RETURNING id, text, completed, completed_at, creator_id
	`
	return s.queryTodo(ctx, query, id, creatorID)
}

func (s *PostgresStore) queryTodo(ctx context.Context, query string, args ...any) (*model.Todo, error) {
	todo, err := scanTodo(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to query todo: %w", err)
	}
	return todo, nil
}

func scanTodo(row pgx.Row) (*model.Todo, error) {
	var todo model.Todo
	err := row.Scan(
		&todo.ID,
		&todo.Text,
		&todo.Completed,
		&todo.CompletedAt,
		&todo.CreatorID,
	)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}
