package server

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/applyease/internal/config"
)

func testJWTService() *JWTService {
	return NewJWTService(&config.JWTConfig{Secret: "test-secret", ExpirationHours: 1})
}

func TestJWTService_RoundTrip(t *testing.T) {
	svc := testJWTService()

	token, err := svc.GenerateToken("user-1", "dev@example.com")
	require.NoError(t, err)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)

	id, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestJWTService_InvalidSignature(t *testing.T) {
	token, err := testJWTService().GenerateToken("user-1", "")
	require.NoError(t, err)

	other := NewJWTService(&config.JWTConfig{Secret: "other-secret", ExpirationHours: 1})
	_, err = other.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid token signature")
}

func TestJWTService_Expired(t *testing.T) {
	claims := &Claims{
		UserID: "user-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = testJWTService().ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestJWTService_RejectsOtherAlgorithms(t *testing.T) {
	claims := &Claims{
		UserID:           "user-1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = testJWTService().ValidateToken(token)
	assert.Error(t, err)
}

func TestJWTService_MissingUserOrExpiry(t *testing.T) {
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = testJWTService().ValidateToken(noUser)
	assert.ErrorContains(t, err, "no user ID")

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{UserID: "u"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = testJWTService().ValidateToken(noExpiry)
	assert.Error(t, err)
}

func TestJWTService_Malformed(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := testJWTService().ValidateToken(token)
		assert.Error(t, err, token)
	}
}
