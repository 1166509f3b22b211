package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/services"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// PortalBaseURL is where supplier portal links point. The token path is
// appended to it.
func PortalBaseURL() string {
	if base := os.Getenv("PORTAL_BASE_URL"); base != "" {
		return strings.TrimRight(base, "/")
	}
	return "http://localhost:5173"
}

// PortalURLForToken builds the supplier-facing link for a quote token.
func PortalURLForToken(token string) string {
	return fmt.Sprintf("%s/portal/%s", PortalBaseURL(), token)
}

// RequestQuotes godoc
// @Summary Request quotes from suppliers for an asset
// @Description Creates a Pending quote per supplier, moves the asset into Quoting and emails each supplier a portal link. When supplier_ids is empty and auto-allocation is enabled, suppliers are matched by service category. Suppliers that already hold a quote for the asset are skipped. Email failures degrade to a warning.
// @Tags quotes
// @Accept json
// @Produce json
// @Param request body models.QuoteRequestInput true "Quote request"
// @Success 201 {object} repository.QuoteRequestResult
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quote-requests [post]
func RequestQuotes(db *sql.DB, gormDB *gorm.DB, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.QuoteRequestInput
		if err := c.ShouldBindJSON(&input); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "asset_id and supplier_ids are required")
			return
		}
		supplierIDs := input.SupplierIDs
		if len(supplierIDs) == 0 {
			if !autoAllocateEnabled(gormDB) {
				utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "supplier_ids cannot be empty unless auto-allocation is enabled")
				return
			}
			var err error
			supplierIDs, err = autoAllocateSuppliers(db, input.AssetID)
			if err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to match suppliers")
				return
			}
			if len(supplierIDs) == 0 {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "No suppliers cover this asset's category")
				return
			}
		}

		result, err := repository.CreateQuoteRequests(db, input.AssetID, supplierIDs)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Asset not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create quote requests")
			return
		}

		warning := dispatchQuoteRequestEmails(db, gormDB, emailService, input, result.Created)
		if warning != "" {
			utils.RespondWithWarning(c, http.StatusCreated, result, warning)
			return
		}
		utils.Respond(c, http.StatusCreated, result)
	}
}

// autoAllocateEnabled reports whether producer settings switch automatic
// supplier allocation on.
func autoAllocateEnabled(gormDB *gorm.DB) bool {
	if gormDB == nil {
		return false
	}
	var settings models.ProducerSettingsGorm
	if err := gormDB.First(&settings).Error; err != nil {
		return false
	}
	return settings.AutoAllocate
}

// autoAllocateSuppliers picks every supplier whose service categories cover
// the asset's name. Assets generated from a brief are named after their
// classifier category, so the category tags line up.
func autoAllocateSuppliers(db *sql.DB, assetID int) ([]int, error) {
	rows, err := db.Query(`
		SELECT s.supplier_id
		FROM suppliers s
		JOIN assets a ON a.asset_id = $1
		WHERE a.name = ANY(s.service_categories)
		ORDER BY s.supplier_id`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// dispatchQuoteRequestEmails sends one portal-link email per created quote.
// The quote rows are already committed; a failed email only produces a
// warning so the producer can resend manually.
func dispatchQuoteRequestEmails(db *sql.DB, gormDB *gorm.DB, emailService *services.EmailService, input models.QuoteRequestInput, created []models.Quote) string {
	if len(created) == 0 {
		return ""
	}
	if emailService == nil || !emailService.Enabled() {
		return "Email delivery is not configured, portal links were not sent"
	}

	var producerName string
	if gormDB != nil {
		var settings models.ProducerSettingsGorm
		if err := gormDB.First(&settings).Error; err == nil {
			producerName = settings.ProducerName
			if input.Subject == "" {
				input.Subject = settings.DefaultQuoteSubject
			}
			if input.Body == "" {
				input.Body = settings.DefaultQuoteBody
			}
		}
	}

	var failed int
	for _, quote := range created {
		emailData, err := buildQuoteEmailData(db, quote, producerName, input)
		if err != nil {
			log.Printf("failed to build email for quote %d: %v", quote.QuoteID, err)
			failed++
			continue
		}
		if err := emailService.SendQuoteRequestEmail(*emailData, input.TemplateID); err != nil {
			log.Printf("failed to send quote request email for quote %d: %v", quote.QuoteID, err)
			failed++
		}
	}

	if failed > 0 {
		return fmt.Sprintf("%d of %d quote request emails could not be sent", failed, len(created))
	}
	return ""
}

func buildQuoteEmailData(db *sql.DB, quote models.Quote, producerName string, input models.QuoteRequestInput) (*models.EmailData, error) {
	var data models.EmailData
	var specs sql.NullString
	var timeline sql.NullTime

	err := db.QueryRow(`
		SELECT s.name, s.contact_email, a.name, a.specifications, a.timeline,
		       p.name, p.client_name
		FROM quotes q
		JOIN suppliers s ON q.supplier_id = s.supplier_id
		JOIN assets a ON q.asset_id = a.asset_id
		JOIN projects p ON a.project_id = p.project_id
		WHERE q.quote_id = $1
	`, quote.QuoteID).Scan(
		&data.SupplierName, &data.Email, &data.AssetName, &specs, &timeline,
		&data.ProjectName, &data.ClientName,
	)
	if err != nil {
		return nil, err
	}

	// Prefer the primary contact's address when one exists.
	var contactEmail string
	err = db.QueryRow(`
		SELECT email FROM supplier_contacts
		WHERE supplier_id = $1 AND is_primary = true
		LIMIT 1
	`, quote.SupplierID).Scan(&contactEmail)
	if err == nil && contactEmail != "" {
		data.Email = contactEmail
	}

	data.AssetSpecs = specs.String
	if timeline.Valid {
		data.Deadline = timeline.Time.Format("2006-01-02")
	}
	data.ProducerName = producerName
	data.PortalURL = PortalURLForToken(quote.AccessToken)
	data.SupportEmail = os.Getenv("SUPPORT_EMAIL")
	data.CustomSubject = input.Subject
	data.CustomBody = input.Body

	return &data, nil
}
