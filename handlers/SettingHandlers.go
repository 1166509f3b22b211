package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// GetProducerSettings godoc
// @Summary Get producer settings
// @Description Returns the singleton producer settings row, creating an empty one on first access.
// @Tags settings
// @Produce json
// @Success 200 {object} models.ProducerSettingsGorm
// @Failure 500 {object} models.ErrorResponse
// @Router /api/settings [get]
func GetProducerSettings(gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gormDB == nil {
			utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "Settings storage is not available")
			return
		}

		var settings models.ProducerSettingsGorm
		err := gormDB.First(&settings).Error
		if err == gorm.ErrRecordNotFound {
			now := time.Now()
			settings = models.ProducerSettingsGorm{CreatedAt: now, UpdatedAt: now}
			if err := gormDB.Create(&settings).Error; err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to initialize settings")
				return
			}
		} else if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch settings")
			return
		}

		utils.Respond(c, http.StatusOK, settings)
	}
}

// UpdateProducerSettings godoc
// @Summary Update producer settings
// @Tags settings
// @Accept json
// @Produce json
// @Param request body models.ProducerSettingsGorm true "Settings"
// @Success 200 {object} models.ProducerSettingsGorm
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/settings [put]
func UpdateProducerSettings(gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if gormDB == nil {
			utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "Settings storage is not available")
			return
		}

		var req struct {
			ProducerName        *string `json:"producer_name"`
			ProducerEmail       *string `json:"producer_email"`
			DefaultQuoteSubject *string `json:"default_quote_subject"`
			DefaultQuoteBody    *string `json:"default_quote_body"`
			AutoAllocate        *bool   `json:"auto_allocate"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}

		var settings models.ProducerSettingsGorm
		err := gormDB.First(&settings).Error
		if err == gorm.ErrRecordNotFound {
			settings = models.ProducerSettingsGorm{CreatedAt: time.Now()}
		} else if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch settings")
			return
		}

		if req.ProducerName != nil {
			settings.ProducerName = *req.ProducerName
		}
		if req.ProducerEmail != nil {
			settings.ProducerEmail = *req.ProducerEmail
		}
		if req.DefaultQuoteSubject != nil {
			settings.DefaultQuoteSubject = *req.DefaultQuoteSubject
		}
		if req.DefaultQuoteBody != nil {
			settings.DefaultQuoteBody = *req.DefaultQuoteBody
		}
		if req.AutoAllocate != nil {
			settings.AutoAllocate = *req.AutoAllocate
		}
		settings.UpdatedAt = time.Now()

		if err := gormDB.Save(&settings).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to save settings")
			return
		}

		utils.Respond(c, http.StatusOK, settings)
	}
}
