package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/todoapi/todoapi/internal/auth"
	"github.com/todoapi/todoapi/internal/metrics"
	"github.com/todoapi/todoapi/internal/model"
	"github.com/todoapi/todoapi/internal/repository"
)

// UserServiceConfig holds UserService dependencies.
type UserServiceConfig struct {
	Store        repository.UserStore
	Hasher       *auth.PasswordHasher
	Tokens       *auth.TokenCodec
	Cache        SessionCache // optional
	CacheTTL     time.Duration
	StoreTimeout time.Duration
	Metrics      metrics.Recorder
	Logger       *slog.Logger
}

// UserService handles signup, login, session resolution and logout.
type UserService struct {
	store    repository.UserStore
	hasher   *auth.PasswordHasher
	tokens   *auth.TokenCodec
	cache    SessionCache
	cacheTTL time.Duration
	timeout  time.Duration
	metrics  metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

const defaultSessionCacheTTL = time.Minute

// NewUserService creates a new UserService.
func NewUserService(cfg UserServiceConfig) *UserService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewNoop()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultSessionCacheTTL
	}
	return &UserService{
		store:    cfg.Store,
		hasher:   cfg.Hasher,
		tokens:   cfg.Tokens,
		cache:    cfg.Cache,
		cacheTTL: cfg.CacheTTL,
		timeout:  cfg.StoreTimeout,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		now:      time.Now,
	}
}

// Signup validates credentials, stores a new user with a hashed password
// and issues its first token.
func (s *UserService) Signup(ctx context.Context, creds model.Credentials) (*model.User, string, error) {
	creds.Normalize()
	if err := creds.Validate(); err != nil {
		return nil, "", err
	}

	user := model.NewUser(creds)
	if err := s.hasher.Prepare(user); err != nil {
		return nil, "", err
	}

	sctx, cancel := storeContext(ctx, s.timeout)
	err := s.store.CreateUser(sctx, user)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.Tokens = append(user.Tokens, model.Token{Access: model.AccessAuth, Token: token})

	s.metrics.IncSignup()
	return user, token, nil
}

// Login checks credentials and issues a new token.
// Unknown email and wrong password both return ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, creds model.Credentials) (*model.User, string, error) {
	creds.Normalize()

	sctx, cancel := storeContext(ctx, s.timeout)
	user, err := s.store.GetUserByEmail(sctx, creds.Email)
	cancel()
	if err != nil {
		s.metrics.IncLogin("failed")
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to find user: %w", err)
	}

	ok, err := s.hasher.VerifyPassword(creds.Password, user.Password)
	if err != nil || !ok {
		s.metrics.IncLogin("failed")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.IssueToken(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	user.Tokens = append(user.Tokens, model.Token{Access: model.AccessAuth, Token: token})

	s.metrics.IncLogin("success")
	return user, token, nil
}

// IssueToken signs a new auth token for the user and appends it to the
// user's token list. It is the only way a new session comes into existence.
func (s *UserService) IssueToken(ctx context.Context, userID string) (string, error) {
	token, err := s.tokens.Sign(userID, model.AccessAuth)
	if err != nil {
		return "", err
	}

	sctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.store.AddToken(sctx, userID, model.Token{Access: model.AccessAuth, Token: token}); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}

	return token, nil
}

// Authenticate resolves a token to a session. Failures wrap ErrUnauthorized
// together with auth.ErrInvalidToken, ErrSessionNotFound or the store error.
func (s *UserService) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	start := s.now()
	defer func() {
		s.metrics.ObserveAuthDuration(s.now().Sub(start))
	}()

	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	tokenHash := auth.QuickHash(token)
	if session := s.cachedSession(ctx, tokenHash, claims.UserID, token); session != nil {
		return session, nil
	}

	if !s.store.ValidID(claims.UserID) {
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrSessionNotFound)
	}

	sctx, cancel := storeContext(ctx, s.timeout)
	user, err := s.store.GetUserByToken(sctx, claims.UserID, token, model.AccessAuth)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrUnauthorized, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}

	if s.cache != nil {
		cached := &model.CachedSession{UserID: user.ID, Email: user.Email}
		if err := s.cache.SetSession(ctx, tokenHash, cached, s.cacheTTL); err != nil {
			s.logger.Warn("session cache write failed", "error", err)
		}
	}

	return &model.Session{User: user, Token: token}, nil
}

func (s *UserService) cachedSession(ctx context.Context, tokenHash, userID, token string) *model.Session {
	if s.cache == nil {
		return nil
	}

	cached, err := s.cache.GetSession(ctx, tokenHash)
	if err != nil {
		s.logger.Warn("session cache read failed", "error", err)
	}
	if cached == nil || cached.UserID != userID {
		s.metrics.IncSessionCacheMiss()
		return nil
	}

	s.metrics.IncSessionCacheHit()
	return &model.Session{
		User:  &model.User{ID: cached.UserID, Email: cached.Email},
		Token: token,
	}
}

// Logout removes the session's token from the user. Removing a token that
// is already gone is not an error.
func (s *UserService) Logout(ctx context.Context, session *model.Session) error {
	if s.cache != nil {
		// The marker outlives any lookup that read the token before removal.
		ttl := s.cacheTTL + s.timeout
		if err := s.cache.RevokeSession(ctx, auth.QuickHash(session.Token), ttl); err != nil {
			return fmt.Errorf("failed to evict session: %w", err)
		}
	}

	sctx, cancel := storeContext(ctx, s.timeout)
	defer cancel()

	if err := s.store.RemoveToken(sctx, session.User.ID, session.Token); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	s.metrics.IncLogout()
	return nil
}
