package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/storage"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// LoginHandler authenticates a user with email and password and opens a
// session. A valid bearer token in the Authorization header short-circuits
// to a token login; an invalid token falls through to credentials.
// @Summary Login user
// @Description Authenticate user and return access and refresh tokens
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

		if token != "" {
			parsedToken, err := utils.ValidateJWT(token)
			// Fall through to credentials when the token is invalid or
			// expired, so stale clients can still log in.
			if err == nil && parsedToken.Valid {
				claims, ok := parsedToken.Claims.(jwt.MapClaims)
				if !ok {
					utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid token claims")
					return
				}

				email, ok := claims["email"].(string)
				if !ok || email == "" {
					utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Email claim missing")
					return
				}

				user, err := storage.GetUserByEmail(db, email)
				if err != nil {
					utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "User not found")
					return
				}
				if user.Suspended {
					utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "Account is suspended")
					return
				}

				utils.Respond(c, http.StatusOK, models.LoginResponse{
					Message:     "User successfully logged in via token",
					AccessToken: token,
					Role:        user.Role,
					User:        models.LoginUser{ID: user.ID, Email: user.Email},
				})
				return
			}
		}

		var loginData models.LoginRequest
		if err := c.ShouldBindJSON(&loginData); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}

		user, err := storage.GetUserByEmail(db, loginData.Email)
		if err != nil || !utils.ValidatePassword(user.Password, loginData.Password) {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid credentials")
			return
		}
		if user.Suspended {
			utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "Account is suspended")
			return
		}

		newToken, err := utils.GenerateJWT(user.Email, user.Role)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to generate token")
			return
		}

		refreshToken, err := utils.GenerateRefreshToken(user.Email, newToken)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to generate refresh token")
			return
		}

		session := &models.Session{
			UserID:                user.ID,
			SessionID:             newToken,
			HostName:              user.Email,
			IPAddress:             loginData.IP,
			Timestamp:             time.Now(),
			ExpiresAt:             time.Now().Add(15 * time.Minute),
			RefreshToken:          refreshToken,
			RefreshTokenExpiresAt: time.Now().Add(15 * 24 * time.Hour),
		}
		if err := storage.SaveSession(db, session, true); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to save session")
			return
		}

		utils.Respond(c, http.StatusOK, models.LoginResponse{
			Message:      "Login successful",
			AccessToken:  newToken,
			RefreshToken: refreshToken,
			Role:         user.Role,
			User:         models.LoginUser{ID: user.ID, Email: user.Email},
		})
	}
}

// RefreshTokenHandler exchanges a refresh token for a fresh access token.
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body object true "Refresh token"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/refresh-token [post]
func RefreshTokenHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Missing refresh token")
			return
		}

		parsedToken, err := utils.ValidateJWT(body.RefreshToken)
		if err != nil || !parsedToken.Valid {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired refresh token")
			return
		}

		claims, ok := parsedToken.Claims.(jwt.MapClaims)
		if !ok || claims["type"] != "refresh" {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Not a refresh token")
			return
		}

		email, _ := claims["email"].(string)
		if email == "" {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid token claims")
			return
		}

		user, err := storage.GetUserByEmail(db, email)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "User not found")
			return
		}
		if user.Suspended {
			// Revoke so a suspended account cannot keep presenting the token.
			_ = storage.DeleteRefreshToken(db, body.RefreshToken)
			utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "Account is suspended")
			return
		}

		// Look the session up by refresh token, not by session id: the
		// session id is replaced on every refresh while the refresh token
		// stays stable for its 15-day lifetime.
		var refreshExpiresAt time.Time
		err = db.QueryRow(`
			SELECT refresh_token_expires_at FROM session
			WHERE refresh_token = $1 AND user_id = $2 AND refresh_token_expires_at > NOW()`,
			body.RefreshToken, user.ID).Scan(&refreshExpiresAt)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Refresh token not recognized")
			return
		}

		newToken, err := utils.GenerateJWT(user.Email, user.Role)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to generate token")
			return
		}

		// Rotate the session row onto the new access token, keyed by the
		// refresh token so repeated refreshes keep finding it.
		result, err := db.Exec(
			`UPDATE session SET session_id = $1, expires_at = $2, timestp = $3 WHERE refresh_token = $4 AND user_id = $5`,
			newToken, time.Now().Add(15*time.Minute), time.Now(), body.RefreshToken, user.ID,
		)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to rotate session")
			return
		}
		if rowsAffected, err := result.RowsAffected(); err != nil || rowsAffected == 0 {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Session no longer exists")
			return
		}

		// The refresh token itself is only replaced when it is about to
		// expire; until then the same one stays redeemable.
		refreshToken := body.RefreshToken
		if time.Until(refreshExpiresAt) < 24*time.Hour {
			rotated, err := utils.GenerateRefreshToken(user.Email, newToken)
			if err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to generate refresh token")
				return
			}
			if err := storage.SaveRefreshToken(db, user.ID, newToken, rotated, time.Now().Add(15*24*time.Hour)); err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to rotate refresh token")
				return
			}
			refreshToken = rotated
		}

		utils.Respond(c, http.StatusOK, models.LoginResponse{
			Message:      "Token refreshed",
			AccessToken:  newToken,
			RefreshToken: refreshToken,
			Role:         user.Role,
			User:         models.LoginUser{ID: user.ID, Email: user.Email},
		})
	}
}

// LogoutHandler closes the session identified by the bearer token.
// @Summary Logout
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "No token provided")
			return
		}

		user, err := storage.GetUserBySessionID(db, token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid session")
			return
		}

		if err := storage.DeleteSessionByID(db, token, user.ID); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete session")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Logged out"})
	}
}

// LogoutAllHandler closes every session the user has open, across devices.
// @Summary Logout from all devices
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.APIResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout-all [post]
func LogoutAllHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if token == "" {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "No token provided")
			return
		}

		user, err := storage.GetUserBySessionID(db, token)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid session")
			return
		}

		if err := storage.DeleteSession(db, user.ID); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete sessions")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Logged out from all devices"})
	}
}
