package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/todoapi/todoapi/internal/cache"
)

type stubLimiter struct {
	allowed bool
	err     error
	bucket  string
	ip      string
}

func (s *stubLimiter) CheckIPRateLimit(ctx context.Context, bucket, ip string, rps, burst int) (*cache.RateLimitResult, error) {
	s.bucket, s.ip = bucket, ip
	if s.err != nil {
		return nil, s.err
	}
	return &cache.RateLimitResult{
		Allowed:    s.allowed,
		Remaining:  0,
		ResetAt:    time.Now().Add(time.Second),
		RetryAfter: 2 * time.Second,
	}, nil
}

func TestRateLimitIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		enabled    bool
		limiter    *stubLimiter
		wantStatus int
	}{
		{"disabled passes", false, &stubLimiter{allowed: false}, http.StatusOK},
		{"allowed passes", true, &stubLimiter{allowed: true}, http.StatusOK},
		{"denied is 429", true, &stubLimiter{allowed: false}, http.StatusTooManyRequests},
		{"limiter error fails open", true, &stubLimiter{err: errors.New("redis down")}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mw := RateLimitIP(RateLimitConfig{
				Logger:  slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)),
				Limiter: tt.limiter,
				Enabled: tt.enabled,
				Bucket:  "login",
				RPS:     5,
				Burst:   10,
			})
			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
			req.RemoteAddr = "203.0.113.7:54321"
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusTooManyRequests && w.Header().Get("Retry-After") != "2" {
				t.Errorf("Retry-After = %q, want 2", w.Header().Get("Retry-After"))
			}
			if tt.enabled && (tt.limiter.bucket != "login" || tt.limiter.ip != "203.0.113.7") {
				t.Errorf("limiter called with bucket=%q ip=%q", tt.limiter.bucket, tt.limiter.ip)
			}
		})
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   time.Duration
		want int
	}{
		{0, 1},
		{200 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{2 * time.Second, 2},
	}

	for _, tt := range tests {
		if got := retryAfterSeconds(tt.in); got != tt.want {
			t.Errorf("retryAfterSeconds(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
