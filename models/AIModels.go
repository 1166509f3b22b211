package models

// DTOs for the external brief-analysis service. The wire format is the
// {success, data, error:{code,message}} envelope; see services.AIService.

// AssetSuggestion is one deliverable the analysis service proposes
// for a brief.
type AssetSuggestion struct {
	Name           string  `json:"name" example:"Printing"`
	Specifications string  `json:"specifications" example:"4 roll-up banners, 85x200cm"`
	Priority       string  `json:"priority" example:"high"`
	CostRange      string  `json:"cost_range" example:"1000-5000"`
	SourceText     string  `json:"source_text,omitempty" example:"need banners for the entrance"`
	Confidence     float64 `json:"confidence" example:"0.87"`
}

// SupplierSuggestion pairs an asset with a recommended supplier.
type SupplierSuggestion struct {
	AssetID    int     `json:"asset_id" example:"1"`
	SupplierID int     `json:"supplier_id" example:"2"`
	Confidence float64 `json:"confidence" example:"0.74"`
	Reasoning  string  `json:"reasoning" example:"Covers Printing and has capacity in the timeline window"`
}

// BriefAnalysis is the full analysis result for a brief.
type BriefAnalysis struct {
	Categories  []string          `json:"categories"`
	Assets      []AssetSuggestion `json:"assets"`
	RawResponse string            `json:"-"`
}
