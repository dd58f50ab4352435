package repository

import (
	"context"
	"slices"
	"sync"

	"github.com/todoapi/todoapi/internal/model"
)

// MemoryStore is an in-process Store used for tests and local development.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*model.User
	emails    map[string]string // email -> user ID
	todos     map[string]*model.Todo
	todoOrder []string
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		users:  make(map[string]*model.User),
		emails: make(map[string]string),
		todos:  make(map[string]*model.Todo),
	}
}

// Ping always succeeds.
func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Close is a no-op.
func (m *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// ValidID reports whether id is a ULID.
func (m *MemoryStore) ValidID(id string) bool {
	return validULID(id)
}

// CreateUser inserts a user, enforcing email uniqueness.
func (m *MemoryStore) CreateUser(ctx context.Context, user *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.emails[user.Email]; exists {
		return ErrEmailExists
	}

	if user.ID == "" {
		user.ID = newULID()
	}
	m.users[user.ID] = copyUser(user)
	m.emails[user.Email] = user.ID
	user.MarkPersisted()

	return nil
}

// GetUserByID retrieves a user by ID.
func (m *MemoryStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return loadedUser(u), nil
}

// GetUserByEmail retrieves a user by email address.
func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emails[email]
	if !ok {
		return nil, ErrUserNotFound
	}
	return loadedUser(m.users[id]), nil
}

// GetUserByToken retrieves a user holding the exact token and access.
func (m *MemoryStore) GetUserByToken(ctx context.Context, id, token, access string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok || !u.HasToken(token, access) {
		return nil, ErrUserNotFound
	}
	return loadedUser(u), nil
}

// AddToken appends a token to the user's list.
func (m *MemoryStore) AddToken(ctx context.Context, userID string, token model.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.Tokens = append(u.Tokens, token)
	return nil
}

// RemoveToken drops all entries with the given token value.
func (m *MemoryStore) RemoveToken(ctx context.Context, userID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil
	}
	u.Tokens = slices.DeleteFunc(u.Tokens, func(t model.Token) bool {
		return t.Token == token
	})
	return nil
}

// CreateTodo inserts a todo and assigns its ID.
func (m *MemoryStore) CreateTodo(ctx context.Context, todo *model.Todo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if todo.ID == "" {
		todo.ID = newULID()
	}
	stored := *todo
	m.todos[todo.ID] = &stored
	m.todoOrder = append(m.todoOrder, todo.ID)
	return nil
}

// ListTodos returns the creator's todos in creation order.
func (m *MemoryStore) ListTodos(ctx context.Context, creatorID string) ([]*model.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	todos := make([]*model.Todo, 0)
	for _, id := range m.todoOrder {
		t := m.todos[id]
		if t.CreatorID == creatorID {
			c := *t
			todos = append(todos, &c)
		}
	}
	return todos, nil
}

// GetTodo retrieves a todo owned by creatorID.
func (m *MemoryStore) GetTodo(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	t, ok := m.todos[id]
	if !ok || t.CreatorID != creatorID {
		return nil, ErrTodoNotFound
	}
	c := *t
	return &c, nil
}

// UpdateTodo applies upd to a todo owned by creatorID and returns the new state.
func (m *MemoryStore) UpdateTodo(ctx context.Context, id, creatorID string, upd model.TodoUpdate) (*model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok || t.CreatorID != creatorID {
		return nil, ErrTodoNotFound
	}
	upd.ApplyTo(t)
	c := *t
	return &c, nil
}

// DeleteTodo removes a todo owned by creatorID and returns it.
func (m *MemoryStore) DeleteTodo(ctx context.Context, id, creatorID string) (*model.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.todos[id]
	if !ok || t.CreatorID != creatorID {
		return nil, ErrTodoNotFound
	}
	delete(m.todos, id)
	m.todoOrder = slices.DeleteFunc(m.todoOrder, func(v string) bool { return v == id })
	return t, nil
}

// TodoCount returns the number of stored todos across all users.
func (m *MemoryStore) TodoCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.todos)
}

func copyUser(u *model.User) *model.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	if c.Tokens == nil {
		c.Tokens = []model.Token{}
	}
	return &c
}

func loadedUser(u *model.User) *model.User {
	c := copyUser(u)
	c.MarkPersisted()
	return c
}
