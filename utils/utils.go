package utils

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

// Respond writes the success envelope.
func Respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

// RespondWithWarning writes the success envelope with a degradation warning,
// used when a secondary action (e.g. AI asset generation) failed but the
// primary action went through.
func RespondWithWarning(c *gin.Context, status int, data interface{}, warning string) {
	c.JSON(status, models.APIResponse{
		Success: true,
		Data:    data,
		Warning: warning,
	})
}

// RespondError writes the error envelope.
func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Error:   &models.APIError{Code: code, Message: message},
	})
}

// Error codes used in the envelope.
const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL"
	CodeUnavailable  = "UNAVAILABLE"
)

func jwtSecret() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("prodbay")
}

// GenerateJWT creates a new JWT access token for the given email.
// Access tokens are short-lived (15 minutes) for security.
func GenerateJWT(email, role string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"type":  "access",
		"exp":   time.Now().Add(15 * time.Minute).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// GenerateRefreshToken creates a new JWT refresh token for the given email and session.
// Refresh tokens are long-lived (15 days) and are tied to a single session/device.
func GenerateRefreshToken(email string, sessionID string) (string, error) {
	claims := jwt.MapClaims{
		"email":     email,
		"type":      "refresh",
		"sessionId": sessionID,
		"exp":       time.Now().Add(15 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// ValidateJWT parses and validates a JWT string.
func ValidateJWT(tokenStr string) (*jwt.Token, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})

	if err != nil {
		return nil, fmt.Errorf("token parsing error: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return token, nil
}

func ValidatePassword(hashedPassword, plainPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(plainPassword))
	return err == nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}
