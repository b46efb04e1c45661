package insights

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiClientGenerate(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "looks promising"}}}},
			},
		})
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "test-model", time.Second)
	client.baseURL = server.URL

	text, err := client.Generate(context.Background(), "be brief", "analyze this lead")
	require.NoError(t, err)
	assert.Equal(t, "looks promising", text)
	assert.Equal(t, "/models/test-model:generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)
	require.NotNil(t, gotBody.SystemInstruction)
	assert.Equal(t, "be brief", gotBody.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "analyze this lead", gotBody.Contents[0].Parts[0].Text)
}

func TestGeminiClientGenerateUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 429, "message": "quota exceeded"},
		})
	}))
	defer server.Close()

	client := NewGeminiClient("test-key", "test-model", time.Second)
	client.baseURL = server.URL

	_, err := client.Generate(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiClientGenerateWithoutKey(t *testing.T) {
	client := NewGeminiClient("", "test-model", time.Second)

	_, err := client.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)

	var nilClient *GeminiClient
	_, err = nilClient.Generate(context.Background(), "", "prompt")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
