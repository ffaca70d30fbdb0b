package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)

	token, err := issuer.GenerateToken(3, "Sarah Finance", "finance")
	require.NoError(t, err)

	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(3), claims.UserID)
	assert.Equal(t, "Sarah Finance", claims.Name)
	assert.Equal(t, "finance", claims.Role)
}

func TestValidateTokenRejects(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Hour)
	token, err := issuer.GenerateToken(1, "Admin User", "admin")
	require.NoError(t, err)

	t.Run("other key", func(t *testing.T) {
		_, err := NewIssuer("another-secret", time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewIssuer("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := issuer.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestNewIssuerDefaultsTTL(t *testing.T) {
	assert.Equal(t, 24*time.Hour, NewIssuer("k", 0).ttl)
}
