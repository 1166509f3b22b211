package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// GetQuotesByAsset godoc
// @Summary List quotes for an asset
// @Tags quotes
// @Produce json
// @Param id path int true "Asset ID"
// @Success 200 {array} models.Quote
// @Failure 400 {object} models.ErrorResponse
// @Router /api/assets/{id}/quotes [get]
func GetQuotesByAsset(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid asset ID")
			return
		}

		quotes, err := repository.FetchQuotesByAssetIDs(db, []int{assetID})
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch quotes")
			return
		}
		if quotes == nil {
			quotes = []models.Quote{}
		}

		utils.Respond(c, http.StatusOK, quotes)
	}
}

// AcceptQuoteHandler godoc
// @Summary Accept a quote
// @Description Accepting a quote rejects every other quote of the same asset and assigns the supplier to the asset, atomically.
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotes/{id}/accept [post]
func AcceptQuoteHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid quote ID")
			return
		}

		if err := repository.AcceptQuote(db, quoteID); err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
				return
			}
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, err.Error())
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Quote accepted"})
	}
}

// RejectQuoteHandler godoc
// @Summary Reject a quote
// @Tags quotes
// @Produce json
// @Param id path int true "Quote ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotes/{id}/reject [post]
func RejectQuoteHandler(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		quoteID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid quote ID")
			return
		}

		if err := repository.RejectQuote(db, quoteID); err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Quote not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to reject quote")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Quote rejected"})
	}
}
