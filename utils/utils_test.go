package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestGenerateJWT_RoundTrip(t *testing.T) {
	tokenStr, err := GenerateJWT("producer@prodbay.example", "producer")
	require.NoError(t, err)
	require.NotEmpty(t, tokenStr)

	token, err := ValidateJWT(tokenStr)
	require.NoError(t, err)

	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "producer@prodbay.example", claims["email"])
	assert.Equal(t, "producer", claims["role"])
	assert.Equal(t, "access", claims["type"])
}

func TestGenerateRefreshToken_CarriesSession(t *testing.T) {
	tokenStr, err := GenerateRefreshToken("supplier@prodbay.example", "session-abc")
	require.NoError(t, err)

	token, err := ValidateJWT(tokenStr)
	require.NoError(t, err)

	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "refresh", claims["type"])
	assert.Equal(t, "session-abc", claims["sessionId"])
}

func TestValidateJWT_RejectsExpired(t *testing.T) {
	claims := jwt.MapClaims{
		"email": "old@prodbay.example",
		"type":  "access",
		"exp":   time.Now().Add(-time.Minute).Unix(),
	}
	tokenStr, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
	require.NoError(t, err)

	_, err = ValidateJWT(tokenStr)
	assert.Error(t, err)
}

func TestValidateJWT_RejectsGarbage(t *testing.T) {
	_, err := ValidateJWT("not-a-token")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, ValidatePassword(string(hash), "s3cret"))
	assert.False(t, ValidatePassword(string(hash), "wrong"))
	assert.False(t, ValidatePassword("not-a-hash", "s3cret"))
}
