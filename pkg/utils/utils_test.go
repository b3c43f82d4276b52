package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("mochi123")
	require.NoError(t, err)

	assert.True(t, CheckPassword("mochi123", string(hash)))
	assert.False(t, CheckPassword("mochi124", string(hash)))
}

func TestJWT_RoundTrip(t *testing.T) {
	ConfigureJWT("test-secret", time.Hour)

	token, err := GenerateJWT("42", "admin")
	require.NoError(t, err)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.UserID)
	assert.Equal(t, "admin", claims.Role)

	exp, err := claims.GetExpirationTime()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp.Time, time.Minute)
}

func TestJWT_WrongSecret(t *testing.T) {
	ConfigureJWT("first-secret", time.Hour)
	token, err := GenerateJWT("1", "customer")
	require.NoError(t, err)

	ConfigureJWT("second-secret", time.Hour)
	_, err = ParseJWT(token)
	assert.Error(t, err)
}
