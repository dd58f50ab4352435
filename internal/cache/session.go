package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/todoapi/todoapi/internal/model"
)

const (
	// sessionCachePrefix is the Redis key prefix for resolved sessions.
	sessionCachePrefix = keyNamespace + "session:"
	// revokedPrefix marks token hashes that were logged out recently.
	revokedPrefix = keyNamespace + "revoked:"
	// DefaultSessionTTL is used when no positive TTL is given.
	DefaultSessionTTL = time.Minute
)

// setSessionScript writes the session unless the token hash is marked revoked.
// KEYS[1] = session key, KEYS[2] = revocation marker
// ARGV[1] = encoded session, ARGV[2] = ttl in milliseconds
// Returns 1 when written, 0 when refused.
var setSessionScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[2]) == 1 then
	return 0
end
redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// GetSession retrieves a cached session by token hash.
// Returns nil if not found (cache miss).
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.CachedSession, error) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var cached model.CachedSession
	if err := json.Unmarshal(data, &cached); err != nil || cached.UserID == "" {
		// Corrupted cache entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &cached, nil
}

// SetSession caches a resolved session. A revoked token hash is not cached.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, session *model.CachedSession, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	keys := []string{sessionKey(tokenHash), revokedKey(tokenHash)}
	if err := setSessionScript.Run(ctx, c.client, keys, data, ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// RevokeSession removes a cached session and blocks it from being cached
// again for ttl. Used on logout, so ttl must cover the session TTL plus any
// lookup still in flight.
func (c *Cache) RevokeSession(ctx context.Context, tokenHash string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, revokedKey(tokenHash), 1, ttl)
		pipe.Del(ctx, sessionKey(tokenHash))
		return nil
	})
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func sessionKey(tokenHash string) string {
	return sessionCachePrefix + tokenHash
}

func revokedKey(tokenHash string) string {
	return revokedPrefix + tokenHash
}
