package helpers

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

func TestJWTManager_GenerateAccessToken(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, exp, err := m.GenerateAccessToken("u1", "ADMIN")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ParseAccessToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ADMIN", claims.Role)
}

func TestJWTManager_AccessAndRefreshSecretsDiffer(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	access, _, err := m.GenerateAccessToken("u1", "CUSTOMER")
	assert.NoError(t, err)

	// an access token must not validate as a refresh token
	_, err = m.ParseRefreshToken(access)
	assert.Error(t, err)
}

func TestJWTManager_ParseAccessToken_Invalid(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	_, err := m.ParseAccessToken("invalid.token.string")
	assert.Error(t, err)
}

func TestJWTManager_ParseAccessToken_Expired(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	token, _, err := m.GenerateAccessToken("u1", "CUSTOMER")
	assert.NoError(t, err)

	_, err = m.ParseAccessToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestJWTManager_ParseAccessToken_WrongSecret(t *testing.T) {
	m1 := NewJWTManager("secret1", "refresh1", time.Hour, 24*time.Hour)
	token, _, err := m1.GenerateAccessToken("u1", "CUSTOMER")
	assert.NoError(t, err)

	m2 := NewJWTManager("secret2", "refresh2", time.Hour, 24*time.Hour)
	_, err = m2.ParseAccessToken(token)
	assert.Error(t, err)
}
