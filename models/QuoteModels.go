package models

import "time"

// A quote starts Pending when the producer requests it, becomes Submitted
// when the supplier posts a bid, and ends Accepted or Rejected.
const (
	QuoteStatusPending   = "Pending"
	QuoteStatusSubmitted = "Submitted"
	QuoteStatusAccepted  = "Accepted"
	QuoteStatusRejected  = "Rejected"
)

// Quote represents the quotes table. AccessToken authorizes the
// unauthenticated supplier-facing portal link for this quote.
type Quote struct {
	QuoteID       int       `json:"quote_id" example:"1"`
	AssetID       int       `json:"asset_id" example:"1"`
	SupplierID    int       `json:"supplier_id" example:"2"`
	Cost          float64   `json:"cost" example:"4300.00"`
	CapacityNotes string    `json:"capacity_notes,omitempty" example:"Can deliver within two weeks"`
	Status        string    `json:"status" example:"Pending"`
	AccessToken   string    `json:"access_token,omitempty" example:"7f9c3d6a-4b21-4f8e-9a2d-1c5e8b7a6f30"`
	SupplierName  string    `json:"supplier_name,omitempty" example:"PrintPro Ltd"`
	AssetName     string    `json:"asset_name,omitempty" example:"Printing"`
	CreatedAt     time.Time `json:"created_at" example:"2026-01-15T10:30:00Z"`
	UpdatedAt     time.Time `json:"updated_at" example:"2026-01-15T10:30:00Z"`
}

// QuoteRequestInput is the body for sending quote requests for an asset.
type QuoteRequestInput struct {
	AssetID int `json:"asset_id" binding:"required" example:"1"`
	// SupplierIDs may be empty when auto-allocation is enabled in producer
	// settings; matching suppliers are then picked by service category.
	SupplierIDs []int  `json:"supplier_ids" example:"2,5"`
	Subject     string `json:"subject,omitempty" example:"Quote request: Printing for Autumn Launch Event"`
	Body        string `json:"body,omitempty" example:"Hello {{supplier_name}}, please quote {{asset_name}}."`
	TemplateID  *int   `json:"template_id,omitempty" example:"4"`
}

// QuoteSubmission is the body a supplier posts through the portal link.
type QuoteSubmission struct {
	Cost          float64 `json:"cost" binding:"required" example:"4300.00"`
	CapacityNotes string  `json:"capacity_notes" example:"Can deliver within two weeks"`
}

// PortalQuote is the supplier-facing view of a quote: the quote itself plus
// the asset and project context the supplier needs to bid.
type PortalQuote struct {
	Quote       Quote   `json:"quote"`
	Asset       Asset   `json:"asset"`
	ProjectName string  `json:"project_name" example:"Autumn Launch Event"`
	Deadline    *string `json:"deadline,omitempty" example:"2026-09-20"`
}
