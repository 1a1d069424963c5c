package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlocklist records logged-out tokens until their natural expiry so the
// middleware can reject them early.
type TokenBlocklist interface {
	Block(ctx context.Context, claims *Claims) error
	IsBlocked(ctx context.Context, tokenID string) (bool, error)
}

type redisBlocklist struct {
	client *redis.Client
}

// NewTokenBlocklist returns a Redis-backed TokenBlocklist.
func NewTokenBlocklist(client *redis.Client) TokenBlocklist {
	return &redisBlocklist{client: client}
}

func blockKey(tokenID string) string {
	return "block:" + tokenID
}

// Block stores the token's jti with a TTL matching its remaining lifetime.
// Already-expired tokens need no entry.
func (b *redisBlocklist) Block(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, blockKey(claims.ID), claims.UserID, ttl).Err(); err != nil {
		return fmt.Errorf("failed to blocklist token: %w", err)
	}
	return nil
}

// IsBlocked reports whether the token's jti has been blocklisted.
func (b *redisBlocklist) IsBlocked(ctx context.Context, tokenID string) (bool, error) {
	count, err := b.client.Exists(ctx, blockKey(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blocklist: %w", err)
	}
	return count != 0, nil
}
