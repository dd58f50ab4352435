package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/testutil"
)

// storeEnv describes a backend under test. freshID returns a well-formed ID
// that matches no stored record.
type storeEnv struct {
	store   Store
	freshID func() string
}

// runStoreSuite exercises the behavior every Store implementation shares.
func runStoreSuite(t *testing.T, env storeEnv) {
	t.Run("CreateUser assigns ID and finds by email", func(t *testing.T) {
		ctx := context.Background()
		user := testutil.NewTestUser(t, "create")

		if err := env.store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		if !env.store.ValidID(user.ID) {
			t.Fatalf("assigned ID %q is not valid", user.ID)
		}
		if user.PasswordModified() {
			t.Error("created user should be marked persisted")
		}

		got, err := env.store.GetUserByEmail(ctx, user.Email)
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if got.ID != user.ID || got.Password != user.Password {
			t.Errorf("unexpected user %+v", got)
		}
		if len(got.Tokens) != 1 || got.Tokens[0] != user.Tokens[0] {
			t.Errorf("Tokens = %v, want %v", got.Tokens, user.Tokens)
		}
	})

	t.Run("CreateUser rejects duplicate email", func(t *testing.T) {
		ctx := context.Background()
		first := testutil.NewTestUser(t, "dup")
		if err := env.store.CreateUser(ctx, first); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}

		second := testutil.NewTestUser(t, "dup")
		second.Email = first.Email
		err := env.store.CreateUser(ctx, second)
		if !errors.Is(err, ErrEmailExists) {
			t.Errorf("expected ErrEmailExists, got %v", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		ctx := context.Background()
		if _, err := env.store.GetUserByID(ctx, env.freshID()); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUserByID: expected ErrUserNotFound, got %v", err)
		}
		if _, err := env.store.GetUserByEmail(ctx, testutil.UniqueEmail("nobody")); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("GetUserByEmail: expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("token lifecycle", func(t *testing.T) {
		ctx := context.Background()
		user := testutil.NewTestUser(t, "tokens")
		if err := env.store.CreateUser(ctx, user); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
		first := user.Tokens[0].Token

		if _, err := env.store.GetUserByToken(ctx, user.ID, first, model.AccessAuth); err != nil {
			t.Fatalf("GetUserByToken(first) failed: %v", err)
		}
		if _, err := env.store.GetUserByToken(ctx, user.ID, first, "reset"); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("access must match, got %v", err)
		}

		second := model.Token{Access: model.AccessAuth, Token: testutil.UniqueID("token")}
		if err := env.store.AddToken(ctx, user.ID, second); err != nil {
			t.Fatalf("AddToken failed: %v", err)
		}

		got, err := env.store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if len(got.Tokens) != 2 || got.Tokens[1] != second {
			t.Errorf("Tokens = %v, want second token appended", got.Tokens)
		}

		if err := env.store.RemoveToken(ctx, user.ID, first); err != nil {
			t.Fatalf("RemoveToken failed: %v", err)
		}
		if _, err := env.store.GetUserByToken(ctx, user.ID, first, model.AccessAuth); !errors.Is(err, ErrUserNotFound) {
			t.Errorf("removed token still resolves: %v", err)
		}
		if _, err := env.store.GetUserByToken(ctx, user.ID, second.Token, model.AccessAuth); err != nil {
			t.Errorf("second token should still resolve: %v", err)
		}

		// Removing an absent token is a no-op.
		if err := env.store.RemoveToken(ctx, user.ID, first); err != nil {
			t.Errorf("RemoveToken of absent token failed: %v", err)
		}
	})

	t.Run("AddToken unknown user", func(t *testing.T) {
		err := env.store.AddToken(context.Background(), env.freshID(), model.Token{Access: model.AccessAuth, Token: "x"})
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})

	t.Run("todos are scoped to creator", func(t *testing.T) {
		ctx := context.Background()
		owner := createUser(t, env.store, "owner")
		other := createUser(t, env.store, "other")

		first := testutil.NewTestTodo(t, owner.ID, "first")
		second := testutil.NewTestTodo(t, owner.ID, "second")
		foreign := testutil.NewTestTodo(t, other.ID, "foreign")
		for _, todo := range []*model.Todo{first, second, foreign} {
			if err := env.store.CreateTodo(ctx, todo); err != nil {
				t.Fatalf("CreateTodo failed: %v", err)
			}
			if !env.store.ValidID(todo.ID) {
				t.Fatalf("assigned todo ID %q is not valid", todo.ID)
			}
			// Distinct created_at values for stores that order by time.
			time.Sleep(2 * time.Millisecond)
		}

		list, err := env.store.ListTodos(ctx, owner.ID)
		if err != nil {
			t.Fatalf("ListTodos failed: %v", err)
		}
		if len(list) != 2 || list[0].ID != first.ID || list[1].ID != second.ID {
			t.Fatalf("ListTodos = %+v, want [first second]", list)
		}

		if _, err := env.store.GetTodo(ctx, foreign.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("GetTodo of foreign todo: expected ErrTodoNotFound, got %v", err)
		}
		if _, err := env.store.DeleteTodo(ctx, foreign.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("DeleteTodo of foreign todo: expected ErrTodoNotFound, got %v", err)
		}
		if _, err := env.store.UpdateTodo(ctx, foreign.ID, owner.ID, model.TodoUpdate{}); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("UpdateTodo of foreign todo: expected ErrTodoNotFound, got %v", err)
		}

		got, err := env.store.GetTodo(ctx, foreign.ID, other.ID)
		if err != nil {
			t.Fatalf("owner GetTodo failed: %v", err)
		}
		if got.Text != "foreign" || got.CreatorID != other.ID {
			t.Errorf("unexpected todo %+v", got)
		}
	})

	t.Run("UpdateTodo sets and clears completion", func(t *testing.T) {
		ctx := context.Background()
		owner := createUser(t, env.store, "update")
		todo := testutil.NewTestTodo(t, owner.ID, "before")
		if err := env.store.CreateTodo(ctx, todo); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}

		text := "after"
		at := int64(1_700_000_000_000)
		got, err := env.store.UpdateTodo(ctx, todo.ID, owner.ID, model.TodoUpdate{
			Text:        &text,
			Completed:   true,
			CompletedAt: &at,
		})
		if err != nil {
			t.Fatalf("UpdateTodo failed: %v", err)
		}
		if got.Text != "after" || !got.Completed || got.CompletedAt == nil || *got.CompletedAt != at {
			t.Fatalf("unexpected todo after completion: %+v", got)
		}

		got, err = env.store.UpdateTodo(ctx, todo.ID, owner.ID, model.TodoUpdate{})
		if err != nil {
			t.Fatalf("UpdateTodo failed: %v", err)
		}
		if got.Text != "after" || got.Completed || got.CompletedAt != nil {
			t.Fatalf("unexpected todo after clearing: %+v", got)
		}

		stored, err := env.store.GetTodo(ctx, todo.ID, owner.ID)
		if err != nil {
			t.Fatalf("GetTodo failed: %v", err)
		}
		if stored.Completed || stored.CompletedAt != nil {
			t.Errorf("stored todo not cleared: %+v", stored)
		}
	})

	t.Run("DeleteTodo returns the removed todo", func(t *testing.T) {
		ctx := context.Background()
		owner := createUser(t, env.store, "delete")
		todo := testutil.NewTestTodo(t, owner.ID, "doomed")
		if err := env.store.CreateTodo(ctx, todo); err != nil {
			t.Fatalf("CreateTodo failed: %v", err)
		}

		deleted, err := env.store.DeleteTodo(ctx, todo.ID, owner.ID)
		if err != nil {
			t.Fatalf("DeleteTodo failed: %v", err)
		}
		if deleted.ID != todo.ID || deleted.Text != "doomed" {
			t.Errorf("unexpected deleted todo %+v", deleted)
		}

		if _, err := env.store.GetTodo(ctx, todo.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("expected ErrTodoNotFound after delete, got %v", err)
		}
		if _, err := env.store.DeleteTodo(ctx, todo.ID, owner.ID); !errors.Is(err, ErrTodoNotFound) {
			t.Errorf("second delete: expected ErrTodoNotFound, got %v", err)
		}
	})

	t.Run("ListTodos empty", func(t *testing.T) {
		owner := createUser(t, env.store, "empty")
		list, err := env.store.ListTodos(context.Background(), owner.ID)
		if err != nil {
			t.Fatalf("ListTodos failed: %v", err)
		}
		if list == nil || len(list) != 0 {
			t.Errorf("expected empty non-nil list, got %#v", list)
		}
	})

	t.Run("ValidID", func(t *testing.T) {
		if !env.store.ValidID(env.freshID()) {
			t.Error("fresh ID should be valid")
		}
		for _, id := range []string{"", "123", "not-an-id", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
			if env.store.ValidID(id) {
				t.Errorf("ValidID(%q) = true", id)
			}
		}
	})
}

func createUser(t *testing.T, s Store, prefix string) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t, prefix)
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}
