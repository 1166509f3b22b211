package handlers

import (
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/storage"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// ValidateSession checks the bearer token against the session table.
// @Summary Validate session
// @Description Validate user session token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.ValidateSessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSession(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if sessionToken == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Missing Authorization header")
			return
		}

		parsedToken, err := utils.ValidateJWT(sessionToken)
		if err != nil || !parsedToken.Valid {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired token")
			return
		}

		// The token must also map to a live session row.
		var expiresAt time.Time
		err = db.QueryRow(
			`SELECT expires_at FROM session WHERE session_id = $1 AND expires_at > NOW()`,
			sessionToken,
		).Scan(&expiresAt)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired session")
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionToken)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid session")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{
			"valid": true,
			"email": user.Email,
			"role":  user.Role,
		})
	}
}

// RequireRole is route middleware that resolves the caller through the
// session table and rejects anyone whose role is not in the allowed set.
// The resolved user is stored in the context under "user".
func RequireRole(db *sql.DB, roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionToken := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if sessionToken == "" {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "No token provided")
			c.Abort()
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionToken)
		if err != nil {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Invalid or expired session")
			c.Abort()
			return
		}

		allowed := len(roles) == 0
		for _, role := range roles {
			if strings.EqualFold(user.Role, role) {
				allowed = true
				break
			}
		}
		if !allowed {
			utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "Insufficient role")
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Next()
	}
}
