package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signKey(t *testing.T, claims ServiceKeyClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("some-project-secret"))
	require.NoError(t, err)
	return token
}

func TestParseServiceKey(t *testing.T) {
	t.Run("reads role and project ref", func(t *testing.T) {
		key := signKey(t, ServiceKeyClaims{Role: ServiceRole, Ref: "abcdefsandbox"})
		claims, err := ParseServiceKey(key)
		require.NoError(t, err)
		assert.Equal(t, ServiceRole, claims.Role)
		assert.Equal(t, "abcdefsandbox", claims.Ref)
	})

	t.Run("expired key", func(t *testing.T) {
		key := signKey(t, ServiceKeyClaims{
			Role:             ServiceRole,
			RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))},
		})
		_, err := ParseServiceKey(key)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("not a jwt", func(t *testing.T) {
		_, err := ParseServiceKey("plain-password")
		assert.ErrorIs(t, err, ErrInvalidFormat)

		_, err = ParseServiceKey("a.b.c")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("Sandbox#2024")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "Sandbox#2024"))
	assert.False(t, CheckPassword(hash, "wrong"))
}
