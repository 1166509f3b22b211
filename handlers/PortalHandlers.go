package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// GetPortalQuote godoc
// @Summary Supplier portal view of a quote
// @Description Unauthenticated; the access token in the emailed link is the only credential.
// @Tags portal
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {object} models.PortalQuote
// @Failure 404 {object} models.ErrorResponse
// @Router /api/portal/{token} [get]
func GetPortalQuote(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Missing access token")
			return
		}

		portal, err := repository.FetchQuoteByToken(db, token)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch quote")
			return
		}

		utils.Respond(c, http.StatusOK, portal)
	}
}

// SubmitPortalQuote godoc
// @Summary Submit a bid through the portal link
// @Description Pending and Submitted quotes accept (re)submission; accepted or rejected quotes are final.
// @Tags portal
// @Accept json
// @Produce json
// @Param token path string true "Access token"
// @Param request body models.QuoteSubmission true "Bid"
// @Success 200 {object} models.Quote
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/portal/{token}/submit [post]
func SubmitPortalQuote(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Param("token"))
		if token == "" {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Missing access token")
			return
		}

		var submission models.QuoteSubmission
		if err := c.ShouldBindJSON(&submission); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "cost is required")
			return
		}
		if submission.Cost <= 0 {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "cost must be positive")
			return
		}

		quote, err := repository.SubmitQuoteByToken(db, token, submission)
		if err != nil {
			if err == sql.ErrNoRows {
				// Either the token is unknown or the quote is already decided.
				var exists bool
				checkErr := db.QueryRow(
					`SELECT EXISTS(SELECT 1 FROM quotes WHERE access_token = $1)`, token,
				).Scan(&exists)
				if checkErr == nil && exists {
					utils.RespondError(c, http.StatusConflict, utils.CodeConflict, "Quote has already been decided")
					return
				}
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to submit quote")
			return
		}

		utils.Respond(c, http.StatusOK, quote)
	}
}

// GetSupplierOpenQuotes godoc
// @Summary List a supplier's open quote requests
// @Description For logged-in supplier users; lists their pending and submitted quotes with asset context.
// @Tags portal
// @Produce json
// @Success 200 {array} models.PortalQuote
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/supplier/quotes [get]
func GetSupplierOpenQuotes(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userValue, exists := c.Get("user")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, utils.CodeUnauthorized, "Not authenticated")
			return
		}
		user, ok := userValue.(*models.User)
		if !ok || user.SupplierID == nil {
			utils.RespondError(c, http.StatusForbidden, utils.CodeForbidden, "User is not linked to a supplier")
			return
		}

		portals, err := repository.FetchQuotableAssetsForSupplier(db, *user.SupplierID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch open quotes")
			return
		}
		if portals == nil {
			portals = []models.PortalQuote{}
		}

		utils.Respond(c, http.StatusOK, portals)
	}
}

// quoteIDForToken resolves a portal token to its quote id.
func quoteIDForToken(db *sql.DB, token string) (int, error) {
	var quoteID int
	err := db.QueryRow(`SELECT quote_id FROM quotes WHERE access_token = $1`, token).Scan(&quoteID)
	return quoteID, err
}

// GetPortalMessages godoc
// @Summary List chat messages on a quote (portal side)
// @Tags portal
// @Produce json
// @Param token path string true "Access token"
// @Success 200 {array} models.QuoteMessageGorm
// @Failure 404 {object} models.ErrorResponse
// @Router /api/portal/{token}/messages [get]
func GetPortalMessages(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := quoteIDForToken(db, strings.TrimSpace(c.Param("token")))
		if err != nil {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
			return
		}
		listQuoteMessages(c, gormDB, quoteID)
	}
}

// PostPortalMessage godoc
// @Summary Post a chat message on a quote (portal side)
// @Tags portal
// @Accept json
// @Produce json
// @Param token path string true "Access token"
// @Param request body models.QuoteMessageGorm true "Message"
// @Success 201 {object} models.QuoteMessageGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/portal/{token}/messages [post]
func PostPortalMessage(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := quoteIDForToken(db, strings.TrimSpace(c.Param("token")))
		if err != nil {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
			return
		}
		createQuoteMessage(c, gormDB, quoteID, models.RoleSupplier)
	}
}

// GetQuoteMessages godoc
// @Summary List chat messages on a quote (producer side)
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {array} models.QuoteMessageGorm
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotes/{id}/messages [get]
func GetQuoteMessages(gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid quote ID")
			return
		}
		listQuoteMessages(c, gormDB, quoteID)
	}
}

// PostQuoteMessage godoc
// @Summary Post a chat message on a quote (producer side)
// @Tags quotes
// @Accept json
// @Produce json
// @Param id path int true "Quote ID"
// @Param request body models.QuoteMessageGorm true "Message"
// @Success 201 {object} models.QuoteMessageGorm
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotes/{id}/messages [post]
func PostQuoteMessage(gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid quote ID")
			return
		}
		createQuoteMessage(c, gormDB, quoteID, models.RoleProducer)
	}
}

func listQuoteMessages(c *gin.Context, gormDB *gorm.DB, quoteID int) {
	if gormDB == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "Messaging is not available")
		return
	}

	var messages []models.QuoteMessageGorm
	if err := gormDB.Where("quote_id = ?", quoteID).Order("created_at ASC").Find(&messages).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch messages")
		return
	}

	utils.Respond(c, http.StatusOK, messages)
}

func createQuoteMessage(c *gin.Context, gormDB *gorm.DB, quoteID int, senderRole string) {
	if gormDB == nil {
		utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "Messaging is not available")
		return
	}

	var body struct {
		SenderName string `json:"sender_name"`
		Body       string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "body is required")
		return
	}

	message := models.QuoteMessageGorm{
		QuoteID:    quoteID,
		SenderRole: senderRole,
		SenderName: body.SenderName,
		Body:       body.Body,
		CreatedAt:  time.Now(),
	}
	if err := gormDB.Create(&message).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to save message")
		return
	}

	utils.Respond(c, http.StatusCreated, message)
}
