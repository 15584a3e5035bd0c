package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClientGenerate(t *testing.T) {
	var rawBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &rawBody))

		w.Write([]byte(`{"model":"llama3","response":"[{\"jp\":\"\",\"en\":\"and\"}]","done":true,"done_reason":"stop","prompt_eval_count":10,"eval_count":5}`))
	}))
	defer server.Close()

	client, err := NewClient(ProviderOllama, WithBaseURL(server.URL), WithModel("llama3"))
	require.NoError(t, err)
	assert.Equal(t, "ollama/llama3", client.Name())

	resp, err := client.Generate(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `[{"jp":"","en":"and"}]`, resp.Text)
	assert.Equal(t, 15, resp.TokenCount)
	assert.Equal(t, "stop", resp.FinishReason)

	// 请求体只包含约定的字段
	assert.Equal(t, map[string]interface{}{
		"model":  "llama3",
		"system": "system prompt",
		"prompt": "user prompt",
		"format": "json",
		"stream": false,
	}, rawBody)
}

func TestOllamaClientOptions(t *testing.T) {
	var req OllamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Write([]byte(`{"response":"[]"}`))
	}))
	defer server.Close()

	client, err := NewOllamaClient(WithBaseURL(server.URL), WithModel("llama3"))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "s", "u", WithGenerateTemperature(0), WithGenerateMaxTokens(2048))
	require.NoError(t, err)
	require.NotNil(t, req.Options)
	assert.Equal(t, float32(0), *req.Options.Temperature)
	assert.Equal(t, 2048, *req.Options.NumPredict)
}

func TestOllamaClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   int
	}{
		{"missing response field", http.StatusOK, `{"model":"llama3","done":true}`, ErrCodeEmptyResponse},
		{"malformed envelope", http.StatusOK, `not json`, ErrCodeInvalidResponse},
		{"model not found", http.StatusNotFound, `{"error":"model 'llama3' not found"}`, ErrCodeInvalidRequest},
		{"server error", http.StatusInternalServerError, `boom`, ErrCodeServerError},
		{"error in ok body", http.StatusOK, `{"error":"out of memory"}`, ErrCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client, err := NewOllamaClient(WithBaseURL(server.URL), WithModel("llama3"))
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), "s", "u")
			var providerErr ProviderError
			require.ErrorAs(t, err, &providerErr)
			assert.Equal(t, tt.code, providerErr.Code)
			assert.Equal(t, ProviderOllama, providerErr.Provider)
		})
	}
}

func TestOllamaClientDefaults(t *testing.T) {
	_, err := NewOllamaClient()
	var providerErr ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Equal(t, ErrCodeMissingModelName, providerErr.Code)

	client, err := NewOllamaClient(WithModel("llama3"))
	require.NoError(t, err)
	assert.Equal(t, DefaultOllamaBaseURL, client.(*OllamaClient).baseURL)
}
