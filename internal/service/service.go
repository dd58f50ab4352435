// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/todoapi/todoapi/internal/model"
)

// Service errors.
var (
	ErrEmailTaken         = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionNotFound    = errors.New("session not found")
	ErrTodoNotFound       = errors.New("todo not found")
)

// SessionCache caches resolved sessions keyed by token hash.
// SetSession must not cache a hash revoked within the revocation ttl.
// *cache.Cache satisfies it.
type SessionCache interface {
	GetSession(ctx context.Context, tokenHash string) (*model.CachedSession, error)
	SetSession(ctx context.Context, tokenHash string, session *model.CachedSession, ttl time.Duration) error
	RevokeSession(ctx context.Context, tokenHash string, ttl time.Duration) error
}

// storeContext bounds a store call by timeout. A non-positive timeout only adds cancellation.
func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
