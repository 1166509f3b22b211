package handlers

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/services"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// AnalyzeBrief godoc
// @Summary Classify a brief into asset categories
// @Description Runs the keyword classifier over the brief text. An empty or unmatched brief yields the default category.
// @Tags automation
// @Accept json
// @Produce json
// @Param request body object true "Brief text"
// @Success 200 {object} models.BriefAnalysis
// @Failure 400 {object} models.ErrorResponse
// @Router /api/automation/analyze-brief [post]
func AnalyzeBrief() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Brief string `json:"brief" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "brief is required")
			return
		}

		categories := services.ClassifyBrief(body.Brief)
		suggestions := make([]models.AssetSuggestion, 0, len(categories))
		for _, category := range categories {
			suggestions = append(suggestions, models.AssetSuggestion{Name: category})
		}

		utils.Respond(c, http.StatusOK, models.BriefAnalysis{
			Categories: categories,
			Assets:     suggestions,
		})
	}
}

// GenerateAssets godoc
// @Summary Create assets for a project from its brief
// @Description Classifies the stored brief and inserts one Pending asset per category that the project does not already have.
// @Tags automation
// @Accept json
// @Produce json
// @Param request body object true "Project ID"
// @Success 201 {array} models.Asset
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/automation/generate-assets [post]
func GenerateAssets(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			ProjectID int `json:"project_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "project_id is required")
			return
		}

		var project models.Project
		var timeline models.DateOnly
		err := db.QueryRow(
			`SELECT name, brief, timeline FROM projects WHERE project_id = $1`, body.ProjectID,
		).Scan(&project.Name, &project.Brief, &timeline)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch project")
			return
		}

		existing := map[string]bool{}
		rows, err := db.Query(`SELECT name FROM assets WHERE project_id = $1`, body.ProjectID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch existing assets")
			return
		}
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				rows.Close()
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to scan asset")
				return
			}
			existing[name] = true
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch existing assets")
			return
		}

		now := time.Now()
		created := []models.Asset{}
		for _, category := range services.ClassifyBrief(project.Brief) {
			if existing[category] {
				continue
			}
			asset := models.Asset{
				ProjectID:      body.ProjectID,
				Name:           category,
				Specifications: fmt.Sprintf("Derived from brief for %s", project.Name),
				Status:         models.AssetStatusPending,
			}
			if !timeline.IsZero() {
				t := timeline
				asset.Timeline = &t
			}
			err := db.QueryRow(`
				INSERT INTO assets (project_id, name, specifications, timeline, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $6)
				RETURNING asset_id
			`, asset.ProjectID, asset.Name, asset.Specifications, timelineValue(asset.Timeline), asset.Status, now,
			).Scan(&asset.AssetID)
			if err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create asset")
				return
			}
			asset.CreatedAt = now
			asset.UpdatedAt = now
			created = append(created, asset)
		}

		utils.Respond(c, http.StatusCreated, created)
	}
}

// BriefHighlights godoc
// @Summary Segment a brief into highlighted and plain text
// @Description Locates each source span in the brief and returns alternating segments. Spans that cannot be located are silently dropped; a brief with no matches comes back as one plain segment.
// @Tags automation
// @Accept json
// @Produce json
// @Param request body object true "Brief text and source spans"
// @Success 200 {array} services.HighlightSegment
// @Failure 400 {object} models.ErrorResponse
// @Router /api/brief/highlights [post]
func BriefHighlights() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body struct {
			Text    string   `json:"text" binding:"required"`
			Sources []string `json:"sources"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "text is required")
			return
		}

		utils.Respond(c, http.StatusOK, services.BuildHighlightSegments(body.Text, body.Sources))
	}
}
