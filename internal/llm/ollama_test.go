package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOllamaClient(t *testing.T) {
	c, err := NewOllamaClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.baseURL)

	c, err = NewOllamaClient("http://ollama:11434/")
	require.NoError(t, err)
	assert.Equal(t, "http://ollama:11434", c.baseURL)

	_, err = NewOllamaClient("ollama:11434")
	assert.Error(t, err)
}

func TestOllamaClient_Generate(t *testing.T) {
	var got ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3.1:8b","response":"Food","done":true,"prompt_eval_count":42,"eval_count":2}`))
	}))
	defer server.Close()

	client, err := NewOllamaClient(server.URL)
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), GenerateRequest{
		Model:       "llama3.1:8b",
		Prompt:      "categorize",
		Temperature: 0.3,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)

	assert.Equal(t, "Food", resp.Response)
	assert.Equal(t, 42, resp.PromptEvalCount)
	assert.Equal(t, 2, resp.EvalCount)
	assert.Equal(t, "llama3.1:8b", got.Model)
	assert.Equal(t, "categorize", got.Prompt)
	assert.False(t, got.Stream)
	assert.InDelta(t, 0.3, got.Options.Temperature, 1e-9)
}

func TestOllamaClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		handler http.HandlerFunc
		check   func(t *testing.T, err error)
		name    string
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				http.Error(w, "model not found", http.StatusNotFound)
			},
			check: func(t *testing.T, err error) {
				var statusErr *StatusError
				require.ErrorAs(t, err, &statusErr)
				assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
				assert.Equal(t, "model not found", statusErr.Body)
			},
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrInvalidResponse)
			},
		},
		{
			name: "timeout",
			handler: func(_ http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnreachable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client, err := NewOllamaClient(server.URL)
			require.NoError(t, err)

			_, err = client.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p", Timeout: 50 * time.Millisecond})
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestOllamaClient_GenerateUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client, err := NewOllamaClient(url)
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), GenerateRequest{Model: "m", Prompt: "p"})
	assert.True(t, errors.Is(err, ErrUnreachable))
}

func TestOllamaClient_Models(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:8b"},{"name":"mistral:7b"}]}`))
	}))
	defer server.Close()

	client, err := NewOllamaClient(server.URL)
	require.NoError(t, err)

	models, err := client.Models(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.1:8b", "mistral:7b"}, models)
}
