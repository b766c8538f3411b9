package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/finsight/internal/domain/ai"
)

func TestComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"{\"Answer\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "gemma2-9b-it", srv.Client())
	out, err := c.Complete(context.Background(), ai.Request{Prompt: "hi", Temperature: 0.5, MaxTokens: 100, JSON: true})
	require.NoError(t, err)

	assert.Equal(t, `{"Answer":"ok"}`, out)
	assert.Equal(t, "gemma2-9b-it", got["model"])
	assert.InDelta(t, 0.5, got["temperature"], 1e-6)
	assert.EqualValues(t, 100, got["max_tokens"])
	assert.Equal(t, map[string]any{"type": "json_object"}, got["response_format"])
}

func TestComplete_QuotaExceeded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limit reached","type":"tokens","code":"rate_limit_exceeded"}}`))
	}))
	defer srv.Close()

	c := NewClient("k", srv.URL, "gemma2-9b-it", srv.Client())
	_, err := c.Complete(context.Background(), ai.Request{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ai.ErrQuotaExceeded)
}

func TestComplete_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient("k", srv.URL, "m", nil).Complete(context.Background(), ai.Request{Prompt: "hi"})
	assert.ErrorIs(t, err, ai.ErrEmptyCompletion)
}
