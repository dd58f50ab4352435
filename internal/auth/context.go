package auth

import (
	"context"

	"github.com/todoapi/todoapi/internal/model"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// sessionContextKey is the context key for storing the resolved Session.
	sessionContextKey contextKey = "session"
)

// ContextWithSession adds the resolved session to the context.
func ContextWithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, s)
}

// SessionFromContext retrieves the Session from the context.
// Returns nil if not present.
func SessionFromContext(ctx context.Context) *model.Session {
	s, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok {
		return nil
	}
	return s
}

// MustSessionFromContext retrieves the Session from the context.
// Panics if not present (use only behind the auth middleware).
func MustSessionFromContext(ctx context.Context) *model.Session {
	s := SessionFromContext(ctx)
	if s == nil {
		panic("session not found - ensure auth middleware is applied")
	}
	return s
}

// UserIDFromContext is a convenience function to get the user ID from context.
// Returns empty string if not authenticated.
func UserIDFromContext(ctx context.Context) string {
	s := SessionFromContext(ctx)
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}
