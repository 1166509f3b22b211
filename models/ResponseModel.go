package models

// API responses share the {success, data, error:{code,message}} envelope
// the dashboard frontend expects. Helpers for writing it live in utils.

// APIError is the error object inside the envelope.
type APIError struct {
	Code    string `json:"code" example:"NOT_FOUND"`
	Message string `json:"message" example:"Project not found"`
}

// APIResponse is the envelope every JSON endpoint returns.
type APIResponse struct {
	Success bool        `json:"success" example:"true"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Warning string      `json:"warning,omitempty" example:"AI analysis unavailable, assets were not generated"`
}

// Swagger / API docs: common request and response models referenced by handler annotations

// ErrorResponse is used in @Failure for error responses
type ErrorResponse struct {
	Success bool     `json:"success" example:"false"`
	Error   APIError `json:"error"`
}

// LoginRequest is used in @Param for login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required" example:"user@example.com"`
	Password string `json:"password" binding:"required" example:"password"`
	IP       string `json:"ip" example:"192.168.1.1"`
}

// LoginResponse is used in @Success for login
type LoginResponse struct {
	Message      string    `json:"message" example:"User successfully logged in"`
	AccessToken  string    `json:"access_token" example:"eyJhbGc..."`
	RefreshToken string    `json:"refresh_token,omitempty" example:"eyJhbGc..."`
	Role         string    `json:"role" example:"producer"`
	User         LoginUser `json:"user"`
}

// LoginUser is the user object inside LoginResponse
type LoginUser struct {
	ID    int    `json:"id" example:"1"`
	Email string `json:"email" example:"user@example.com"`
}

// ValidateSessionResponse is used in @Success for validate session (swagger)
type ValidateSessionResponse struct {
	Valid bool   `json:"valid" example:"true"`
	Email string `json:"email,omitempty"`
}

// CreateProjectResponse is used in @Success for project creation. Warning is
// set when brief analysis failed but the project itself was created.
type CreateProjectResponse struct {
	Project Project `json:"project"`
	Assets  []Asset `json:"assets,omitempty"`
	Warning string  `json:"warning,omitempty" example:"AI analysis unavailable, assets were not generated"`
}
