package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// CreateAsset godoc
// @Summary Add an asset to a project
// @Tags assets
// @Accept json
// @Produce json
// @Param request body models.Asset true "Asset"
// @Success 201 {object} models.Asset
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/assets [post]
func CreateAsset(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var asset models.Asset
		if err := c.ShouldBindJSON(&asset); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if err := models.ValidateAssetInput(&asset); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, err.Error())
			return
		}

		var exists bool
		if err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM projects WHERE project_id = $1)`, asset.ProjectID,
		).Scan(&exists); err != nil || !exists {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
			return
		}

		now := time.Now()
		err := db.QueryRow(`
			INSERT INTO assets (project_id, name, specifications, timeline, status, source_text, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING asset_id
		`, asset.ProjectID, asset.Name, asset.Specifications, timelineValue(asset.Timeline),
			asset.Status, asset.SourceText, now,
		).Scan(&asset.AssetID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create asset")
			return
		}
		asset.CreatedAt = now
		asset.UpdatedAt = now

		utils.Respond(c, http.StatusCreated, asset)
	}
}

// GetAssetsByProject godoc
// @Summary List assets of a project
// @Tags assets
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {array} models.Asset
// @Failure 400 {object} models.ErrorResponse
// @Router /api/projects/{id}/assets [get]
func GetAssetsByProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		assets, err := repository.FetchAssetsByProject(db, projectID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch assets")
			return
		}
		if assets == nil {
			assets = []models.Asset{}
		}

		utils.Respond(c, http.StatusOK, assets)
	}
}

// UpdateAsset godoc
// @Summary Update an asset
// @Description Partial update; status transitions are validated against the allowed set.
// @Tags assets
// @Accept json
// @Produce json
// @Param id path int true "Asset ID"
// @Param request body models.Asset true "Fields to update"
// @Success 200 {object} models.Asset
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/assets/{id} [put]
func UpdateAsset(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid asset ID")
			return
		}

		var req struct {
			Name               *string          `json:"name"`
			Specifications     *string          `json:"specifications"`
			Timeline           *models.DateOnly `json:"timeline"`
			Status             *string          `json:"status"`
			AssignedSupplierID *int             `json:"assigned_supplier_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if req.Status != nil && !models.IsValidAssetStatus(*req.Status) {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid asset status")
			return
		}

		result, err := db.Exec(`
			UPDATE assets SET
				name = COALESCE($1, name),
				specifications = COALESCE($2, specifications),
				timeline = COALESCE($3, timeline),
				status = COALESCE($4, status),
				assigned_supplier_id = COALESCE($5, assigned_supplier_id),
				updated_at = $6
			WHERE asset_id = $7
		`, req.Name, req.Specifications, timelineValue(req.Timeline), req.Status,
			req.AssignedSupplierID, time.Now(), assetID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update asset")
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Asset not found")
			return
		}

		asset, err := fetchAsset(db, assetID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch updated asset")
			return
		}
		utils.Respond(c, http.StatusOK, asset)
	}
}

// DeleteAsset godoc
// @Summary Delete an asset and its quotes
// @Tags assets
// @Produce json
// @Param id path int true "Asset ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/assets/{id} [delete]
func DeleteAsset(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		assetID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid asset ID")
			return
		}

		if err := repository.DeleteAssetCascade(db, assetID); err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Asset not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete asset")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Asset deleted"})
	}
}

func fetchAsset(db *sql.DB, assetID int) (*models.Asset, error) {
	var asset models.Asset
	var specs sql.NullString
	var timeline models.DateOnly
	var supplierID sql.NullInt64
	err := db.QueryRow(`
		SELECT asset_id, project_id, name, specifications, timeline, status,
		       assigned_supplier_id, source_text, created_at, updated_at
		FROM assets
		WHERE asset_id = $1
	`, assetID).Scan(
		&asset.AssetID, &asset.ProjectID, &asset.Name, &specs, &timeline,
		&asset.Status, &supplierID, &asset.SourceText, &asset.CreatedAt, &asset.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	asset.Specifications = specs.String
	if !timeline.IsZero() {
		asset.Timeline = &timeline
	}
	if supplierID.Valid {
		id := int(supplierID.Int64)
		asset.AssignedSupplierID = &id
	}
	return &asset, nil
}
