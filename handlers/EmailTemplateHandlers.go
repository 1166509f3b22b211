package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/services"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

var validTemplateTypes = []string{"quote_request", "quote_accepted", "quote_rejected"}

func isValidTemplateType(t string) bool {
	for _, valid := range validTemplateTypes {
		if t == valid {
			return true
		}
	}
	return false
}

func currentUserID(c *gin.Context) *int {
	if value, ok := c.Get("user"); ok {
		if user, ok := value.(*models.User); ok {
			id := user.ID
			return &id
		}
	}
	return nil
}

// CreateEmailTemplate godoc
// @Summary Create an email template
// @Tags email-templates
// @Accept json
// @Produce json
// @Param template body models.EmailTemplateRequest true "Template"
// @Success 201 {object} models.EmailTemplate
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/email-templates [post]
func CreateEmailTemplate(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request models.EmailTemplateRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if !isValidTemplateType(request.TemplateType) {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid template type")
			return
		}
		if err := emailService.ValidateTemplate(request.Subject + request.Body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, err.Error())
			return
		}

		variables, err := json.Marshal(request.Variables)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid variables")
			return
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create template")
			return
		}
		defer tx.Rollback()

		// Only one default per type.
		if request.IsDefault {
			if _, err := tx.Exec(
				`UPDATE email_templates SET is_default = false WHERE template_type = $1`,
				request.TemplateType,
			); err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update existing defaults")
				return
			}
		}

		template := models.EmailTemplate{
			Name:         request.Name,
			Subject:      request.Subject,
			Body:         request.Body,
			TemplateType: request.TemplateType,
			IsDefault:    request.IsDefault,
			IsActive:     request.IsActive,
			Variables:    variables,
			CC:           request.CC,
			BCC:          request.BCC,
			CreatedBy:    currentUserID(c),
		}
		now := time.Now()
		err = tx.QueryRow(`
			INSERT INTO email_templates (name, subject, body, template_type, is_default, is_active, variables, cc, bcc, created_by, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
			RETURNING id
		`, template.Name, template.Subject, template.Body, template.TemplateType,
			template.IsDefault, template.IsActive, template.Variables,
			pq.Array(template.CC), pq.Array(template.BCC), template.CreatedBy, now,
		).Scan(&template.ID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create template")
			return
		}
		if err := tx.Commit(); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create template")
			return
		}
		template.CreatedAt = now
		template.UpdatedAt = now

		utils.Respond(c, http.StatusCreated, template)
	}
}

// GetEmailTemplates godoc
// @Summary List email templates
// @Tags email-templates
// @Produce json
// @Param type query string false "Template type filter"
// @Success 200 {array} models.EmailTemplate
// @Failure 500 {object} models.ErrorResponse
// @Router /api/email-templates [get]
func GetEmailTemplates(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		templateType := c.Query("type")
		if templateType != "" {
			templates, err := models.GetTemplatesByType(db, templateType)
			if err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch templates")
				return
			}
			utils.Respond(c, http.StatusOK, templates)
			return
		}

		all := []models.EmailTemplate{}
		for _, t := range validTemplateTypes {
			templates, err := models.GetTemplatesByType(db, t)
			if err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch templates")
				return
			}
			all = append(all, templates...)
		}
		utils.Respond(c, http.StatusOK, all)
	}
}

// GetEmailTemplateByID godoc
// @Summary Get an email template
// @Tags email-templates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.EmailTemplate
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/email-templates/{id} [get]
func GetEmailTemplateByID(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid template ID")
			return
		}

		template, err := models.GetTemplateByID(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Template not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch template")
			return
		}

		utils.Respond(c, http.StatusOK, template)
	}
}

// UpdateEmailTemplate godoc
// @Summary Update an email template
// @Tags email-templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Param template body models.EmailTemplateRequest true "Template"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/email-templates/{id} [put]
func UpdateEmailTemplate(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid template ID")
			return
		}

		var request models.EmailTemplateRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if !isValidTemplateType(request.TemplateType) {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid template type")
			return
		}
		if err := emailService.ValidateTemplate(request.Subject + request.Body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, err.Error())
			return
		}

		variables, err := json.Marshal(request.Variables)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid variables")
			return
		}

		tx, err := db.Begin()
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update template")
			return
		}
		defer tx.Rollback()

		if request.IsDefault {
			if _, err := tx.Exec(
				`UPDATE email_templates SET is_default = false WHERE template_type = $1 AND id <> $2`,
				request.TemplateType, id,
			); err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update existing defaults")
				return
			}
		}

		result, err := tx.Exec(`
			UPDATE email_templates SET
				name = $1, subject = $2, body = $3, template_type = $4,
				is_default = $5, is_active = $6, variables = $7,
				cc = $8, bcc = $9, updated_by = $10, updated_at = $11
			WHERE id = $12
		`, request.Name, request.Subject, request.Body, request.TemplateType,
			request.IsDefault, request.IsActive, variables,
			pq.Array(request.CC), pq.Array(request.BCC), currentUserID(c), time.Now(), id)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update template")
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Template not found")
			return
		}
		if err := tx.Commit(); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update template")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Template updated"})
	}
}

// DeleteEmailTemplate godoc
// @Summary Delete an email template
// @Description Default templates cannot be deleted, only replaced.
// @Tags email-templates
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/email-templates/{id} [delete]
func DeleteEmailTemplate(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid template ID")
			return
		}

		var isDefault bool
		err = db.QueryRow(`SELECT is_default FROM email_templates WHERE id = $1`, id).Scan(&isDefault)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Template not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch template")
			return
		}
		if isDefault {
			utils.RespondError(c, http.StatusConflict, utils.CodeConflict, "Default templates cannot be deleted")
			return
		}

		if _, err := db.Exec(`DELETE FROM email_templates WHERE id = $1`, id); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete template")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Template deleted"})
	}
}

// PreviewEmailTemplate godoc
// @Summary Preview a template with sample data
// @Description Substitutes sample variable values and returns a plain-text rendering of subject and body.
// @Tags email-templates
// @Accept json
// @Produce json
// @Param id path int true "Template ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/email-templates/{id}/preview [post]
func PreviewEmailTemplate(db *sql.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid template ID")
			return
		}

		template, err := models.GetTemplateByID(db, id)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Template not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch template")
			return
		}

		sample := models.EmailData{
			ProjectName:  "Autumn Launch Event",
			ClientName:   "Acme GmbH",
			ProducerName: "ProdBay Productions",
			SupplierName: "PrintPro Ltd",
			AssetName:    "Printing",
			AssetSpecs:   "4 roll-up banners, 85x200cm",
			Deadline:     "2026-09-20",
			PortalURL:    PortalURLForToken("sample-token"),
			Email:        "sales@printpro.example",
			SupportEmail: "support@prodbay.example",
		}

		utils.Respond(c, http.StatusOK, gin.H{
			"subject":   emailService.PreviewEmailAsText(template.Subject, sample),
			"body_text": emailService.PreviewEmailAsText(template.Body, sample),
		})
	}
}
