package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ProdBay-app/ProdBay-sub001/models"
	"github.com/ProdBay-app/ProdBay-sub001/repository"
	"github.com/ProdBay-app/ProdBay-sub001/services"
	"github.com/ProdBay-app/ProdBay-sub001/utils"
)

// CreateProjectRequest is the body for project creation. When GenerateAssets
// is set, the brief is analyzed (AI first if configured, keyword classifier
// otherwise) and one asset per identified need is created with the project.
type CreateProjectRequest struct {
	Name                string           `json:"name" binding:"required"`
	ClientName          string           `json:"client_name" binding:"required"`
	Brief               string           `json:"brief" binding:"required"`
	PhysicalParameters  string           `json:"physical_parameters"`
	FinancialParameters string           `json:"financial_parameters"`
	Timeline            *models.DateOnly `json:"timeline"`
	GenerateAssets      bool             `json:"generate_assets"`
	UseAI               bool             `json:"use_ai"`
}

// CreateProject godoc
// @Summary Create a project from a client brief
// @Description Creates the project and, when requested, derives its initial assets from the brief. Analysis failure degrades to a warning, never a failed creation.
// @Tags projects
// @Accept json
// @Produce json
// @Param request body handlers.CreateProjectRequest true "Project"
// @Success 201 {object} models.CreateProjectResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [post]
func CreateProject(db *sql.DB, ai *services.AIService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "name, client_name and brief are required")
			return
		}

		project := models.Project{
			Name:                req.Name,
			ClientName:          req.ClientName,
			Brief:               req.Brief,
			PhysicalParameters:  req.PhysicalParameters,
			FinancialParameters: req.FinancialParameters,
			Timeline:            req.Timeline,
			Status:              models.ProjectStatusNew,
		}
		if err := models.ValidateProjectInput(&project); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, err.Error())
			return
		}

		now := time.Now()
		err := db.QueryRow(`
			INSERT INTO projects (name, client_name, brief, physical_parameters, financial_parameters, timeline, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
			RETURNING project_id
		`, project.Name, project.ClientName, project.Brief, project.PhysicalParameters,
			project.FinancialParameters, timelineValue(project.Timeline), project.Status, now,
		).Scan(&project.ProjectID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to create project")
			return
		}
		project.CreatedAt = now
		project.UpdatedAt = now

		response := models.CreateProjectResponse{Project: project}

		if req.GenerateAssets {
			assets, warning := generateAssetsFromBrief(c, db, ai, project, req.UseAI)
			response.Assets = assets
			response.Warning = warning
		}

		if response.Warning != "" {
			utils.RespondWithWarning(c, http.StatusCreated, response, response.Warning)
			return
		}
		utils.Respond(c, http.StatusCreated, response)
	}
}

// generateAssetsFromBrief derives assets from the brief and inserts them.
// AI suggestions are tried first when requested and configured; any failure
// falls back to the keyword classifier and is reported as a warning string.
func generateAssetsFromBrief(c *gin.Context, db *sql.DB, ai *services.AIService, project models.Project, useAI bool) ([]models.Asset, string) {
	var suggestions []models.AssetSuggestion
	var warning string

	if useAI {
		if ai != nil && ai.Enabled() {
			aiSuggestions, err := ai.SuggestAssets(c.Request.Context(), project.Brief)
			if err != nil {
				log.Printf("asset suggestion failed for project %d: %v", project.ProjectID, err)
				warning = "AI analysis unavailable, assets were derived from keywords instead"
			} else {
				suggestions = aiSuggestions
			}
		} else {
			warning = "AI analysis is not configured, assets were derived from keywords instead"
		}
	}

	if suggestions == nil {
		for _, category := range services.ClassifyBrief(project.Brief) {
			suggestions = append(suggestions, models.AssetSuggestion{
				Name:           category,
				Specifications: fmt.Sprintf("Derived from brief for %s", project.Name),
			})
		}
	}

	now := time.Now()
	var assets []models.Asset
	for _, suggestion := range suggestions {
		asset := models.Asset{
			ProjectID:      project.ProjectID,
			Name:           suggestion.Name,
			Specifications: suggestion.Specifications,
			Status:         models.AssetStatusPending,
			Timeline:       project.Timeline,
		}
		if suggestion.SourceText != "" {
			sourceText := suggestion.SourceText
			asset.SourceText = &sourceText
		}
		err := db.QueryRow(`
			INSERT INTO assets (project_id, name, specifications, timeline, status, source_text, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
			RETURNING asset_id
		`, asset.ProjectID, asset.Name, asset.Specifications, timelineValue(asset.Timeline),
			asset.Status, asset.SourceText, now,
		).Scan(&asset.AssetID)
		if err != nil {
			log.Printf("failed to insert derived asset %q: %v", asset.Name, err)
			if warning == "" {
				warning = "Some derived assets could not be saved"
			}
			continue
		}
		asset.CreatedAt = now
		asset.UpdatedAt = now
		assets = append(assets, asset)
	}

	return assets, warning
}

func timelineValue(d *models.DateOnly) interface{} {
	if d == nil {
		return nil
	}
	return d.ToTime()
}

// GetProjects godoc
// @Summary List projects
// @Tags projects
// @Produce json
// @Param status query string false "Filter by status"
// @Param client query string false "Filter by client name"
// @Success 200 {array} models.Project
// @Failure 500 {object} models.ErrorResponse
// @Router /api/projects [get]
func GetProjects(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := `
			SELECT project_id, name, client_name, brief, physical_parameters,
			       financial_parameters, timeline, status, created_at, updated_at
			FROM projects
		`
		var args []interface{}
		var conditions []string
		if status := c.Query("status"); status != "" {
			args = append(args, status)
			conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
		}
		if client := c.Query("client"); client != "" {
			args = append(args, client)
			conditions = append(conditions, fmt.Sprintf("client_name = $%d", len(args)))
		}
		for i, cond := range conditions {
			if i == 0 {
				query += " WHERE " + cond
			} else {
				query += " AND " + cond
			}
		}
		query += " ORDER BY created_at DESC"

		rows, err := db.Query(query, args...)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch projects")
			return
		}
		defer rows.Close()

		projects := []models.Project{}
		for rows.Next() {
			var project models.Project
			var physical, financial sql.NullString
			var timeline models.DateOnly
			if err := rows.Scan(
				&project.ProjectID, &project.Name, &project.ClientName, &project.Brief,
				&physical, &financial, &timeline, &project.Status,
				&project.CreatedAt, &project.UpdatedAt,
			); err != nil {
				utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to scan project")
				return
			}
			project.PhysicalParameters = physical.String
			project.FinancialParameters = financial.String
			if !timeline.IsZero() {
				t := timeline
				project.Timeline = &t
			}
			projects = append(projects, project)
		}

		utils.Respond(c, http.StatusOK, projects)
	}
}

// GetProjectByID godoc
// @Summary Get a project with its assets and quotes
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.ProjectDetail
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [get]
func GetProjectByID(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		detail, err := repository.FetchProjectDetail(db, projectID)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch project")
			return
		}

		utils.Respond(c, http.StatusOK, detail)
	}
}

// UpdateProject godoc
// @Summary Update a project
// @Tags projects
// @Accept json
// @Produce json
// @Param id path int true "Project ID"
// @Param request body models.Project true "Fields to update"
// @Success 200 {object} models.Project
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [put]
func UpdateProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		var req struct {
			Name                *string          `json:"name"`
			ClientName          *string          `json:"client_name"`
			Brief               *string          `json:"brief"`
			PhysicalParameters  *string          `json:"physical_parameters"`
			FinancialParameters *string          `json:"financial_parameters"`
			Timeline            *models.DateOnly `json:"timeline"`
			Status              *string          `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid input")
			return
		}
		if req.Status != nil && !models.IsValidProjectStatus(*req.Status) {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project status")
			return
		}

		result, err := db.Exec(`
			UPDATE projects SET
				name = COALESCE($1, name),
				client_name = COALESCE($2, client_name),
				brief = COALESCE($3, brief),
				physical_parameters = COALESCE($4, physical_parameters),
				financial_parameters = COALESCE($5, financial_parameters),
				timeline = COALESCE($6, timeline),
				status = COALESCE($7, status),
				updated_at = $8
			WHERE project_id = $9
		`, req.Name, req.ClientName, req.Brief, req.PhysicalParameters,
			req.FinancialParameters, timelineValue(req.Timeline), req.Status, time.Now(), projectID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to update project")
			return
		}
		if rows, _ := result.RowsAffected(); rows == 0 {
			utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
			return
		}

		detail, err := repository.FetchProjectDetail(db, projectID)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to fetch updated project")
			return
		}
		utils.Respond(c, http.StatusOK, detail.Project)
	}
}

// DeleteProject godoc
// @Summary Delete a project and everything under it
// @Description Removes the project, its assets and their quotes in one transaction.
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id} [delete]
func DeleteProject(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		if err := repository.DeleteProjectCascade(db, projectID); err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to delete project")
			return
		}

		utils.Respond(c, http.StatusOK, gin.H{"message": "Project deleted"})
	}
}

// GetProjectDashboard godoc
// @Summary Get derived progress figures for a project
// @Tags projects
// @Produce json
// @Param id path int true "Project ID"
// @Success 200 {object} models.ProjectDashboard
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/projects/{id}/dashboard [get]
func GetProjectDashboard(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, utils.CodeBadRequest, "Invalid project ID")
			return
		}

		dashboard, err := repository.ComputeProjectDashboard(db, projectID)
		if err != nil {
			if err == sql.ErrNoRows {
				utils.RespondError(c, http.StatusNotFound, utils.CodeNotFound, "Project not found")
				return
			}
			utils.RespondError(c, http.StatusInternalServerError, utils.CodeInternal, "Failed to compute dashboard")
			return
		}

		utils.Respond(c, http.StatusOK, dashboard)
	}
}
