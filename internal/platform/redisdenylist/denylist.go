// Package redisdenylist implements the token denylist on Redis. Each revoked
// token ID becomes a key with a TTL matching the token's remaining lifetime,
// so the denylist cleans itself up as revoked tokens expire.
package redisdenylist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskhub/taskhub-api/internal/service/auth"
)

const revokedKeyPrefix = "auth:revoked:"

// RedisDenylist stores revoked token IDs in Redis.
type RedisDenylist struct {
	client *redis.Client
	logger *slog.Logger
}

var _ auth.TokenDenylist = (*RedisDenylist)(nil)

// NewRedisDenylist creates a denylist backed by the given Redis client.
func NewRedisDenylist(client *redis.Client, logger *slog.Logger) *RedisDenylist {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisDenylist{
		client: client,
		logger: logger.With(slog.String("component", "token_denylist")),
	}
}

func revokedKey(tokenID string) string {
	return revokedKeyPrefix + tokenID
}

// Revoke implements auth.TokenDenylist. The entry expires on its own once the
// revoked token would have expired anyway.
func (d *RedisDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		// The token is already past its expiry; nothing left to revoke.
		return nil
	}

	if err := d.client.Set(ctx, revokedKey(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	d.logger.InfoContext(ctx, "token revoked",
		slog.String("token_id", tokenID),
		slog.Duration("ttl", ttl))
	return nil
}

// IsRevoked implements auth.TokenDenylist.
func (d *RedisDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
