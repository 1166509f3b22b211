package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/services"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// SuggestAssets godoc
// @Summary AI asset suggestions for a brief
// @Description Proxies the brief to the configured analysis service. Returns 503 when AI is not configured; callers fall back to the keyword classifier.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body object true "Brief text"
// @Success 200 {array} models.AssetSuggestion
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/ai/suggest-assets [post]
func SuggestAssets(ai *services.AIService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Brief string `json:"brief" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "brief is required")
			return
		}

		if ai == nil || !ai.Enabled() {
			utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "AI analysis is not configured")
			return
		}

		suggestions, err := ai.SuggestAssets(c.Request.Context(), body.Brief)
		if err != nil {
			utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "AI analysis failed: "+err.Error())
			return
		}

		utils.Respond(c, http.StatusOK, suggestions)
	}
}

// SuggestSuppliers godoc
// @Summary AI supplier recommendations for a project's assets
// @Description Sends the project's assets and the supplier roster to the analysis service and returns per-asset recommendations with confidence and reasoning.
// @Tags ai
// @Accept json
// @Produce json
// @Param request body object true "Project ID"
// @Success 200 {array} models.SupplierSuggestion
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /api/ai/suggest-suppliers [post]
func SuggestSuppliers(db *sql.DB, ai *services.AIService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ProjectID int `json:"project_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "project_id is required")
			return
		}

		if ai == nil || !ai.Enabled() {
			utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "AI analysis is not configured")
			return
		}

		assets, err := repository.FetchAssetsByProject(db, body.ProjectID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch assets")
			return
		}
		if len(assets) == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project has no assets")
			return
		}

		suppliers, err := fetchAllSuppliers(db)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch suppliers")
			return
		}

		suggestions, err := ai.SuggestSuppliers(c.Request.Context(), assets, suppliers)
		if err != nil {
			utils.RespondError(c, http.StatusServiceUnavailable, utils.CodeUnavailable, "AI analysis failed: "+err.Error())
			return
		}

		utils.Respond(c, http.StatusOK, suggestions)
	}
}

func fetchAllSuppliers(db *sql.DB) ([]models.Supplier, error) {
	rows, err := db.Query(`
		SELECT supplier_id, name, contact_email, service_categories, created_at, updated_at
		FROM suppliers
		ORDER BY supplier_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var suppliers []models.Supplier
	for rows.Next() {
		var supplier models.Supplier
		if err := rows.Scan(
			&supplier.SupplierID, &supplier.Name, &supplier.ContactEmail,
			&supplier.ServiceCategories, &supplier.CreatedAt, &supplier.UpdatedAt,
		); err != nil {
			return nil, err
		}
		suppliers = append(suppliers, supplier)
	}
	return suppliers, rows.Err()
}
