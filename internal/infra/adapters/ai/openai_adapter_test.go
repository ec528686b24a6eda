//go:build !integration

package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aria-support-chat/internal/domain"
	"aria-support-chat/internal/domain/ports/adapter"
)

var testSampling = adapter.Sampling{MaxTokens: 1000, Temperature: 0.8, PresencePenalty: 0.6, FrequencyPenalty: 0.3}

const okCompletion = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o-mini",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Kia ora! How can I help?"}}]
}`

func TestOpenAIAdapter_Chat(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(okCompletion))
	}))
	defer srv.Close()

	a := NewOpenAIAdapter("sk-test", "", srv.URL+"/", testSampling)
	reply, err := a.Chat(context.Background(), []adapter.Message{
		{Role: "system", Content: "You are Aria."},
		{Role: "user", Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Kia ora! How can I help?", reply)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 1000, got["max_tokens"])
	assert.InDelta(t, 0.8, got["temperature"], 1e-9)
	assert.InDelta(t, 0.6, got["presence_penalty"], 1e-9)
	assert.InDelta(t, 0.3, got["frequency_penalty"], 1e-9)
	msgs := got["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
}

func TestOpenAIAdapter_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		a := NewOpenAIAdapter("  ", "", "", testSampling)
		assert.False(t, a.Configured())
		_, err := a.Chat(context.Background(), nil)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})

	t.Run("non-2xx", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"bad","type":"invalid_request_error"}}`))
		}))
		defer srv.Close()

		a := NewOpenAIAdapter("sk-test", "", srv.URL+"/", testSampling)
		_, err := a.Chat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
		assert.ErrorIs(t, err, domain.ErrUpstreamError)
		assert.Equal(t, 1, calls, "no retries")
	})

	t.Run("no choices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[]}`))
		}))
		defer srv.Close()

		a := NewOpenAIAdapter("sk-test", "", srv.URL+"/", testSampling)
		_, err := a.Chat(context.Background(), []adapter.Message{{Role: "user", Content: "hi"}})
		assert.ErrorIs(t, err, domain.ErrUpstreamError)
	})
}

func TestOpenAIAdapter_CountTokens(t *testing.T) {
	a := NewOpenAIAdapter("sk-test", "gpt-4o-mini", "", testSampling)
	n, err := a.CountTokens([]adapter.Message{{Role: "user", Content: "Kia ora, what is my baggage allowance?"}})
	if err != nil {
		// the encoder tables are fetched on first use
		t.Skip("tiktoken encoding unavailable:", err)
	}
	assert.Greater(t, n, 7)
}

func TestNew_SelectsProvider(t *testing.T) {
	for _, tc := range []struct {
		provider, want string
	}{
		{"openai", "openai"},
		{"", "openai"},
		{"gemini", "gemini"},
	} {
		a, err := New(testAIConfig(tc.provider))
		require.NoError(t, err)
		assert.Equal(t, tc.want, a.Provider())
	}
	_, err := New(testAIConfig("metis"))
	assert.Error(t, err)
}
