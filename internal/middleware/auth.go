package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/service"
)

// AuthHeader carries the session token on requests and auth responses.
const AuthHeader = "x-auth"

// Authenticator resolves a session token. *service.UserService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Session, error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger        *slog.Logger
	Authenticator Authenticator
	Metrics       metrics.Recorder
}

// Auth returns the session guard. It resolves the x-auth token to a user and
// stores the session in the request context. Any failure ends the request
// with 401 and no body.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := r.Header.Get(AuthHeader)
			if token == "" {
				reject(w, r, cfg, "missing_token", nil)
				return
			}

			session, err := cfg.Authenticator.Authenticate(r.Context(), token)
			if err != nil {
				reject(w, r, cfg, failureReason(err), err)
				return
			}

			cfg.Logger.Debug("authentication successful",
				slog.String("user_id", session.User.ID),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			setRequestUser(r.Context(), session.User.ID)
			ctx := auth.ContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, service.ErrSessionNotFound):
		return "session_not_found"
	default:
		return "store_error"
	}
}

func reject(w http.ResponseWriter, r *http.Request, cfg AuthConfig, reason string, err error) {
	attrs := []any{
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	}
	if reason == "store_error" && err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	cfg.Logger.Warn("authentication failed", attrs...)
	cfg.Metrics.IncAuthFailure(reason)

	w.WriteHeader(http.StatusUnauthorized)
}
