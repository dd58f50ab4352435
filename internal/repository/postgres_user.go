package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/todoapi/todoapi/internal/model"
)

const userColumns = `
	u.id, u.email, u.password,
	COALESCE(array_agg(t.access ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}') AS accesses,
	COALESCE(array_agg(t.token ORDER BY t.id) FILTER (WHERE t.id IS NOT NULL), '{}') AS tokens
`

// CreateUser inserts a new user with its tokens in a single transaction.
func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = newULID()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx, `
		INSERT INTO users (id, email, password)
		VALUES ($1, $2, $3)
	`, user.ID, user.Email, user.Password)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	for _, tok := range user.Tokens {
		if err := insertToken(ctx, tx, user.ID, tok); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit user: %w", err)
	}

	user.MarkPersisted()
	return nil
}

// GetUserByID retrieves a user by their ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = $1
		GROUP BY u.id
	`
	return s.queryUser(ctx, query, id)
}

// GetUserByEmail retrieves a user by their email address.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN user_tokens t ON t.user_id = u.id
		WHERE u.email = $1
		GROUP BY u.id
	`
	return s.queryUser(ctx, query, email)
}

// GetUserByToken retrieves a user that holds the exact token and access pair.
func (s *PostgresStore) GetUserByToken(ctx context.Context, id, token, access string) (*model.User, error) {
	query := `SELECT ` + userColumns + `
		FROM users u
		LEFT JOIN user_tokens t ON t.user_id = u.id
		WHERE u.id = $1
		  AND EXISTS (
			SELECT 1 FROM user_tokens m
			WHERE m.user_id = u.id AND m.token = $2 AND m.access = $3
		  )
		GROUP BY u.id
	`
	return s.queryUser(ctx, query, id, token, access)
}

// AddToken appends a token to the user's token list.
func (s *PostgresStore) AddToken(ctx context.Context, userID string, token model.Token) error {
	err := insertToken(ctx, s.pool, userID, token)
	if err != nil && isForeignKeyViolation(err) {
		return ErrUserNotFound
	}
	return err
}

// RemoveToken deletes every entry with the given token value.
func (s *PostgresStore) RemoveToken(ctx context.Context, userID, token string) error {
	_, err := s.pool.Exec(ctx, `
		DELETE FROM user_tokens
		WHERE user_id = $1 AND token = $2
	`, userID, token)
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertToken(ctx context.Context, db execer, userID string, token model.Token) error {
	_, err := db.Exec(ctx, `
		INSERT INTO user_tokens (user_id, access, token)
		VALUES ($1, $2, $3)
	`, userID, token.Access, token.Token)
	if err != nil {
		return fmt.Errorf("failed to add token: %w", err)
	}
	return nil
}

func (s *PostgresStore) queryUser(ctx context.Context, query string, args ...any) (*model.User, error) {
	var (
		user     model.User
		accesses []string
		tokens   []string
	)

	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Email,
		&user.Password,
		&accesses,
		&tokens,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Tokens = make([]model.Token, len(tokens))
	for i := range tokens {
		user.Tokens[i] = model.Token{Access: accesses[i], Token: tokens[i]}
	}
	user.MarkPersisted()

	return &user, nil
}
