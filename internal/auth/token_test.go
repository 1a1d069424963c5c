package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"credpay-wallet/internal/util"
)

func TestJWTMaker(t *testing.T) {
	maker := NewJWTMaker("test-secret", time.Hour)

	t.Run("RoundTrip", func(t *testing.T) {
		token, created, err := maker.CreateToken(42)
		require.NoError(t, err)
		require.NotEmpty(t, token)
		require.NotEmpty(t, created.ID, "every token needs a jti for the blocklist")

		claims, err := maker.VerifyToken(token)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, created.ID, claims.ID)
		assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
	})

	t.Run("UniqueTokenIDs", func(t *testing.T) {
		_, first, err := maker.CreateToken(42)
		require.NoError(t, err)
		_, second, err := maker.CreateToken(42)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("RejectsExpiredToken", func(t *testing.T) {
		expiredMaker := NewJWTMaker("test-secret", -time.Minute)
		token, _, err := expiredMaker.CreateToken(42)
		require.NoError(t, err)

		_, err = maker.VerifyToken(token)
		assert.ErrorIs(t, err, util.ErrTokenInvalid)
	})

	t.Run("RejectsWrongSecret", func(t *testing.T) {
		other := NewJWTMaker("other-secret", time.Hour)
		token, _, err := other.CreateToken(42)
		require.NoError(t, err)

		_, err = maker.VerifyToken(token)
		assert.ErrorIs(t, err, util.ErrTokenInvalid)
	})

	t.Run("RejectsGarbage", func(t *testing.T) {
		_, err := maker.VerifyToken("not.a.token")
		assert.ErrorIs(t, err, util.ErrTokenInvalid)
	})
}

func TestHashPin(t *testing.T) {
	hash, err := HashPin("4321")
	require.NoError(t, err)
	assert.NotEqual(t, "4321", hash)

	second, err := HashPin("4321")
	require.NoError(t, err)
	assert.NotEqual(t, hash, second, "bcrypt salts every hash")
}

func TestComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(hash, "correct horse"))
	assert.ErrorIs(t, ComparePassword(hash, "wrong"), util.ErrInvalidCredentials)
}
