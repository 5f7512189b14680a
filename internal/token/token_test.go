package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimbarashkov/shortly/internal/config"
)

func testManager() *Manager {
	return NewManager(config.JWT{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		PassResetSecret: "pass-reset-secret",
		AccessTTL:       30 * time.Minute,
		RefreshTTL:      7 * 24 * time.Hour,
		PassResetTTL:    time.Hour,
	})
}

func TestManager_AccessToken(t *testing.T) {
	m := testManager()

	t.Run("round trip", func(t *testing.T) {
		tokenStr, err := m.NewAccessToken(42)
		require.NoError(t, err)
		require.NotEmpty(t, tokenStr)

		userID, err := m.VerifyAccessToken(tokenStr)
		assert.NoError(t, err)
		assert.Equal(t, int64(42), userID)
	})

	t.Run("rejects refresh token", func(t *testing.T) {
		tokenStr, err := m.NewRefreshToken(42)
		require.NoError(t, err)

		_, err = m.VerifyAccessToken(tokenStr)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := m.VerifyAccessToken("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewManager(config.JWT{
			AccessSecret: "access-secret",
			AccessTTL:    -time.Minute,
		})

		tokenStr, err := expired.NewAccessToken(42)
		require.NoError(t, err)

		_, err = m.VerifyAccessToken(tokenStr)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})
}

func TestManager_RefreshToken(t *testing.T) {
	m := testManager()

	tokenStr, err := m.NewRefreshToken(7)
	require.NoError(t, err)

	userID, err := m.VerifyRefreshToken(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	_, err = m.VerifyRefreshToken("tampered")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_PassResetToken(t *testing.T) {
	m := testManager()

	tokenStr, err := m.NewPassResetToken("john.doe@example.com")
	require.NoError(t, err)

	email, err := m.VerifyPassResetToken(tokenStr)
	assert.NoError(t, err)
	assert.Equal(t, "john.doe@example.com", email)

	accessStr, err := m.NewAccessToken(1)
	require.NoError(t, err)

	_, err = m.VerifyPassResetToken(accessStr)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
