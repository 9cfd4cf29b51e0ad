package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	firmID := uuid.New()

	token, err := m.GenerateAccessToken(firmID, "clerk-7")
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, firmID, claims.FirmID)
	assert.Equal(t, "clerk-7", claims.UserID)
}

func TestValidateAccessToken_Rejects(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewJWTManager("other", time.Hour).GenerateAccessToken(uuid.New(), "u")
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old := NewJWTManager("secret", time.Minute)
		old.now = func() time.Time { return time.Now().Add(-time.Hour) }
		token, err := old.GenerateAccessToken(uuid.New(), "u")
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("no firm", func(t *testing.T) {
		token, err := m.GenerateAccessToken(uuid.Nil, "u")
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, &JWTClaims{FirmID: uuid.New()}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.ValidateAccessToken(token)
		assert.Error(t, err)
	})
}
