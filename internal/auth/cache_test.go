package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBlocklist(t *testing.T) (TokenBlocklist, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewTokenBlocklist(client), mr
}

func testClaims(tokenID string, expiresIn time.Duration) *Claims {
	return &Claims{
		UserID: 42,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
}

func TestTokenBlocklist(t *testing.T) {
	ctx := context.Background()

	t.Run("BlockedTokenIsReported", func(t *testing.T) {
		blocklist, _ := newTestBlocklist(t)

		require.NoError(t, blocklist.Block(ctx, testClaims("jti-1", time.Hour)))

		blocked, err := blocklist.IsBlocked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, blocked)
	})

	t.Run("UnknownTokenIsNotBlocked", func(t *testing.T) {
		blocklist, _ := newTestBlocklist(t)

		blocked, err := blocklist.IsBlocked(ctx, "never-seen")
		require.NoError(t, err)
		assert.False(t, blocked)
	})

	t.Run("EntryExpiresWithTheToken", func(t *testing.T) {
		blocklist, mr := newTestBlocklist(t)

		require.NoError(t, blocklist.Block(ctx, testClaims("jti-2", time.Minute)))
		mr.FastForward(2 * time.Minute)

		blocked, err := blocklist.IsBlocked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, blocked, "the blocklist entry must not outlive the token")
	})

	t.Run("ExpiredTokenNeedsNoEntry", func(t *testing.T) {
		blocklist, mr := newTestBlocklist(t)

		require.NoError(t, blocklist.Block(ctx, testClaims("jti-3", -time.Minute)))
		assert.Empty(t, mr.Keys())
	})
}
