package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/middleware"
	"github.com/todoapi/todoapi/internal/repository"
	"github.com/todoapi/todoapi/internal/service"
)

type testAPI struct {
	router http.Handler
	store  *repository.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repository.NewMemory()

	users := service.NewUserService(service.UserServiceConfig{
		Store:        store,
		Hasher:       auth.NewPasswordHasher(bcrypt.MinCost),
		Tokens:       auth.NewTokenCodec("handler-secret", 0),
		StoreTimeout: time.Second,
		Logger:       logger,
	})
	todos := service.NewTodoService(store, time.Second, nil)

	userHandler := NewUserHandler(users, logger)
	todoHandler := NewTodoHandler(todos, logger)
	guard := middleware.Auth(middleware.AuthConfig{Logger: logger, Authenticator: users})

	r := chi.NewRouter()
	r.Post("/users", userHandler.Signup)
	r.Post("/users/login", userHandler.Login)
	r.Group(func(r chi.Router) {
		r.Use(guard)
		r.Get("/users/me", userHandler.Me)
		r.Delete("/users/me/token", userHandler.Logout)
		r.Post("/todos", todoHandler.Create)
		r.Get("/todos", todoHandler.List)
		r.Get("/todos/{id}", todoHandler.Get)
		r.Patch("/todos/{id}", todoHandler.Update)
		r.Delete("/todos/{id}", todoHandler.Delete)
	})

	return &testAPI{router: r, store: store}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeader, token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) signup(t *testing.T, email, password string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/users", "", map[string]string{"email": email, "password": password})
	if rec.Code != http.StatusOK {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	token := rec.Header().Get(middleware.AuthHeader)
	if token == "" {
		t.Fatal("signup returned no x-auth header")
	}
	return token
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
