package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conceptlab/backend/internal/infrastructure/config"
)

func newTestClient(baseURL string, maxRetries int) EngineClient {
	return NewEngineClient(&config.EngineConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		MaxRetries: maxRetries,
		TimeoutSec: 5,
	})
}

func TestStartSession_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/iterate", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c1", req["conceptId"])
		assert.NotContains(t, req, "action", "发起会话不携带 action 字段")

		_ = json.NewEncoder(w).Encode(IterationResult{
			SessionID: "s1",
			Stage:     "initial",
			Iteration: 1,
			Response:  "started",
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	result, err := client.StartSession(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, "s1", result.SessionID)
	assert.Equal(t, "initial", result.Stage)
}

func TestIterate_SendsAction(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "iterate", req["action"])
		assert.Equal(t, "s1", req["sessionId"])

		_ = json.NewEncoder(w).Encode(IterationResult{Stage: "research", Iteration: 2})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	result, err := client.Iterate(context.Background(), "c1", "s1")
	require.NoError(t, err)
	assert.Equal(t, "research", result.Stage)
}

func TestPost_RetriesOn5xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(IterationResult{Stage: "analysis", Iteration: 1})
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	result, err := client.Iterate(context.Background(), "c1", "s1")
	require.NoError(t, err, "5xx 应触发重试直至成功")
	assert.Equal(t, "analysis", result.Stage)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPost_NoRetryOn4xx(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad concept id"))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 3)
	_, err := client.Iterate(context.Background(), "c1", "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int32(1), calls.Load(), "4xx 不应重试")
}

func TestPost_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(server.URL, 2)
	_, err := client.Iterate(context.Background(), "c1", "s1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Equal(t, int32(2), calls.Load())
}

func TestPost_MissingBaseURL(t *testing.T) {
	client := newTestClient("", 3)
	_, err := client.StartSession(context.Background(), "c1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestPost_ContextCanceledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL, 3)
	_, err := client.StartSession(ctx, "c1")
	assert.Error(t, err)
}
