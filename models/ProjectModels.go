package models

import (
	"errors"
	"time"
)

// Project statuses walk forward as the workflow progresses. "Quoting" is set
// automatically when the first quote request goes out.
const (
	ProjectStatusNew        = "New"
	ProjectStatusInProgress = "In Progress"
	ProjectStatusQuoting    = "Quoting"
	ProjectStatusCompleted  = "Completed"
	ProjectStatusCancelled  = "Cancelled"
)

// Project represents the projects table.
type Project struct {
	ProjectID           int       `json:"project_id" example:"1"`
	Name                string    `json:"name" example:"Autumn Launch Event"`
	ClientName          string    `json:"client_name" example:"Acme GmbH"`
	Brief               string    `json:"brief" example:"Need banners and a photographer"`
	PhysicalParameters  string    `json:"physical_parameters,omitempty" example:"Hall 4, 600 sqm"`
	FinancialParameters string    `json:"financial_parameters,omitempty" example:"25000"`
	Timeline            *DateOnly `json:"timeline,omitempty" example:"2026-10-01"`
	Status              string    `json:"status" example:"New"`
	CreatedAt           time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt           time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// IsValidProjectStatus reports whether s is one of the allowed statuses.
func IsValidProjectStatus(s string) bool {
	switch s {
	case ProjectStatusNew, ProjectStatusInProgress, ProjectStatusQuoting,
		ProjectStatusCompleted, ProjectStatusCancelled:
		return true
	}
	return false
}

func ValidateProjectInput(project *Project) error {
	if project.Name == "" || project.ClientName == "" {
		return errors.New("required fields cannot be null or empty")
	}
	if project.Status == "" {
		project.Status = ProjectStatusNew
	}

	if !IsValidProjectStatus(project.Status) {
		return errors.New("invalid project status; allowed values are New, In Progress, Quoting, Completed, Cancelled")
	}

	return nil
}

// ProjectDetail is the composite payload for the project detail view:
// the project row plus its assets and all quotes for those assets.
type ProjectDetail struct {
	Project Project `json:"project"`
	Assets  []Asset `json:"assets"`
	Quotes  []Quote `json:"quotes"`
}

// ProjectDashboard carries the derived figures the client dashboard shows.
type ProjectDashboard struct {
	ProjectID         int     `json:"project_id" example:"1"`
	Status            string  `json:"status" example:"In Progress"`
	TotalAssets       int     `json:"total_assets" example:"4"`
	DeliveredAssets   int     `json:"delivered_assets" example:"1"`
	ProgressPercent   float64 `json:"progress_percent" example:"25"`
	TotalAcceptedCost float64 `json:"total_accepted_cost" example:"8600.50"`
}
