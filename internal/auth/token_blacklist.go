package auth

import (
	"context"
	"time"

	"chirp/internal/cache"
)

const blacklistKeyPrefix = "blacklist:access_token:"

// TokenBlacklist marks access tokens revoked at logout until their natural
// expiry.
type TokenBlacklist interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

// RedisBlacklist stores revoked tokens in Redis with a TTL.
type RedisBlacklist struct {
	cache *cache.Client
}

// Ensure RedisBlacklist implements TokenBlacklist
var _ TokenBlacklist = (*RedisBlacklist)(nil)

// NewRedisBlacklist creates a new token blacklist.
func NewRedisBlacklist(cache *cache.Client) *RedisBlacklist {
	return &RedisBlacklist{cache: cache}
}

// Add marks a token revoked for the given TTL. Tokens that are already
// expired need no entry.
func (b *RedisBlacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return b.cache.Set(ctx, blacklistKeyPrefix+token, []byte("1"), ttl)
}

// Contains reports whether a token has been revoked.
func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	return b.cache.Exists(ctx, blacklistKeyPrefix+token)
}
