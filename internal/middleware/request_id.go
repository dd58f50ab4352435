// Package middleware provides the HTTP middleware chain of the API.
package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const requestInfoKey contextKey = "request_info"

// RequestIDHeader carries the request ID on requests and responses.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 64

// requestInfo is shared by the middleware of one request. The session guard
// records the resolved user so the access log can report it.
type requestInfo struct {
	id     string
	userID string
}

// RequestID assigns every request an ID. A well-formed inbound X-Request-ID
// is reused, anything else is replaced by a fresh UUID.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), requestInfoKey, &requestInfo{id: id})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID returns the request ID, or "" outside the RequestID middleware.
func GetRequestID(ctx context.Context) string {
	if info := requestInfoFrom(ctx); info != nil {
		return info.id
	}
	return ""
}

func requestInfoFrom(ctx context.Context) *requestInfo {
	info, _ := ctx.Value(requestInfoKey).(*requestInfo)
	return info
}

func setRequestUser(ctx context.Context, userID string) {
	if info := requestInfoFrom(ctx); info != nil {
		info.userID = userID
	}
}

func requestUserID(ctx context.Context) string {
	if info := requestInfoFrom(ctx); info != nil {
		return info.userID
	}
	return ""
}

// validRequestID accepts short IDs made of letters, digits and "-_.:".
func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-', c == '_', c == '.', c == ':':
		default:
			return false
		}
	}
	return true
}
