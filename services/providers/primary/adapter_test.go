package primary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/upb/llm-gateway/config"
	"github.com/upb/llm-gateway/services/classify"
	"github.com/upb/llm-gateway/services/providers"
)

func newTestAdapter(t *testing.T, baseURL string) *Adapter {
	t.Helper()
	adapter, err := New(config.PrimaryConfig{
		APIKey:        "test-key",
		BaseURL:       baseURL,
		HighGearModel: "p-high",
		LowGearModel:  "p-low",
	}, zap.NewNop())
	require.NoError(t, err)
	return adapter
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(config.PrimaryConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestAdapter_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var wireReq map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&wireReq))
		assert.Equal(t, "p-low", wireReq["model"])

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "cmpl-123",
			"model": "p-low",
			"choices": []map[string]any{
				{
					"message":       map[string]string{"role": "assistant", "content": "four"},
					"finish_reason": "stop",
				},
			},
			"usage": map[string]int{"prompt_tokens": 7, "completion_tokens": 1, "total_tokens": 8},
		})
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	req := providers.NewRequest([]providers.Message{{Role: "user", Content: "what is 2+2?"}})

	resp, err := adapter.Complete(context.Background(), req, "p-low")
	require.NoError(t, err)

	assert.Equal(t, "cmpl-123", resp.ID)
	assert.Equal(t, providers.Primary, resp.Provider)
	assert.Equal(t, "p-low", resp.Model)
	assert.Equal(t, "four", resp.Content)
	assert.Equal(t, 8, resp.Usage.TotalTokens)
	assert.NotEmpty(t, resp.Raw)
}

func TestAdapter_ErrorKeepsVendorText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit exceeded for model p-high","type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	req := providers.NewRequest([]providers.Message{{Role: "user", Content: "hi"}})

	_, err := adapter.Complete(context.Background(), req, "p-high")
	require.Error(t, err)

	var provErr *providers.ProviderError
	require.ErrorAs(t, err, &provErr)
	assert.Equal(t, http.StatusTooManyRequests, provErr.StatusCode)

	// The vendor message survives wrapping so classification works on it.
	assert.Equal(t, classify.RateLimit, classify.Classify(err))
}

func TestAdapter_ErrorWithoutJSONBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model p-high has been decommissioned", http.StatusGone)
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	req := providers.NewRequest([]providers.Message{{Role: "user", Content: "hi"}})

	_, err := adapter.Complete(context.Background(), req, "p-high")
	require.Error(t, err)
	assert.Equal(t, classify.ModelDecommissioned, classify.Classify(err))
}

func TestAdapter_EmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"cmpl-1","choices":[]}`))
	}))
	defer server.Close()

	adapter := newTestAdapter(t, server.URL)
	req := providers.NewRequest([]providers.Message{{Role: "user", Content: "hi"}})

	_, err := adapter.Complete(context.Background(), req, "p-high")
	assert.Error(t, err)
}

func TestAdapter_ContextCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer server.Close()
	defer close(release)

	adapter := newTestAdapter(t, server.URL)
	req := providers.NewRequest([]providers.Message{{Role: "user", Content: "hi"}})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := adapter.Complete(ctx, req, "p-high")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
