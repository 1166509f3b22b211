package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAIService(url string) *AIService {
	return &AIService{
		baseURL:    url,
		httpClient: http.DefaultClient,
	}
}

func TestSuggestAssets_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/ai/suggest-assets", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Need banners and catering", body["brief"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": map[string]interface{}{
				"assets": []map[string]interface{}{
					{"name": "Printing", "specifications": "4 banners", "priority": "high", "cost_range": "1000-5000", "confidence": 0.9},
					{"name": "Catering", "specifications": "buffet for 200", "priority": "medium", "cost_range": "5000-10000", "confidence": 0.8},
				},
			},
		})
	}))
	defer server.Close()

	as := newTestAIService(server.URL)

	assets, err := as.SuggestAssets(context.Background(), "Need banners and catering")
	require.NoError(t, err)
	require.Len(t, assets, 2)
	assert.Equal(t, "Printing", assets[0].Name)
	assert.InDelta(t, 0.9, assets[0].Confidence, 0.001)
}

func TestSuggestAssets_ErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": false,
			"error":   map[string]string{"code": "MODEL_DOWN", "message": "analysis backend unavailable"},
		})
	}))
	defer server.Close()

	as := newTestAIService(server.URL)

	_, err := as.SuggestAssets(context.Background(), "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MODEL_DOWN")
}

func TestSuggestAssets_NotConfigured(t *testing.T) {
	as := NewAIService()
	as.baseURL = ""

	assert.False(t, as.Enabled())
	_, err := as.SuggestAssets(context.Background(), "brief")
	assert.Error(t, err)
}
