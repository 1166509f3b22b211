package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ProdBay-app/ProdBay-sub001/models"
)

// AIService calls the external brief-analysis API. The service is a black
// box to us: we post JSON and get the {success, data, error} envelope back.
// Callers treat failures as non-fatal and fall back to the keyword
// classifier, so a dead endpoint never blocks project creation.
type AIService struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// aiEnvelope is the wire envelope of the external API.
type aiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *models.APIError `json:"error"`
}

// NewAIService builds an AIService from the environment. baseURL empty means
// AI analysis is unavailable; Enabled() lets callers check before dispatch.
func NewAIService() *AIService {
	return &AIService{
		baseURL: os.Getenv("AI_API_BASE_URL"),
		apiKey:  os.Getenv("AI_API_KEY"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether an analysis endpoint is configured.
func (as *AIService) Enabled() bool {
	return as.baseURL != ""
}

func (as *AIService) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	if !as.Enabled() {
		return fmt.Errorf("AI service is not configured (AI_API_BASE_URL is empty)")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error encoding request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, as.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if as.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+as.apiKey)
	}

	resp, err := as.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling AI service: %v", err)
	}
	defer resp.Body.Close()

	var envelope aiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("error decoding AI response: %v", err)
	}

	if !envelope.Success {
		if envelope.Error != nil {
			return fmt.Errorf("AI service error %s: %s", envelope.Error.Code, envelope.Error.Message)
		}
		return fmt.Errorf("AI service returned status %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("error decoding AI response data: %v", err)
		}
	}

	return nil
}

// SuggestAssets sends a brief to the analysis endpoint and returns the
// suggested deliverables.
func (as *AIService) SuggestAssets(ctx context.Context, brief string) ([]models.AssetSuggestion, error) {
	request := map[string]string{"brief": brief}

	var data struct {
		Assets []models.AssetSuggestion `json:"assets"`
	}
	if err := as.post(ctx, "/ai/suggest-assets", request, &data); err != nil {
		return nil, err
	}

	return data.Assets, nil
}

// SuggestSuppliers asks the external service for supplier allocations for the
// given assets, scored with confidence and free-text reasoning.
func (as *AIService) SuggestSuppliers(ctx context.Context, assets []models.Asset, suppliers []models.Supplier) ([]models.SupplierSuggestion, error) {
	request := map[string]interface{}{
		"assets":    assets,
		"suppliers": suppliers,
	}

	var data struct {
		Suggestions []models.SupplierSuggestion `json:"suggestions"`
	}
	if err := as.post(ctx, "/ai/suggest-suppliers", request, &data); err != nil {
		return nil, err
	}

	return data.Suggestions, nil
}
