package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) LLMConfig {
	cfg := DefaultConfig()
	cfg.APIKey = "test-key"
	cfg.Endpoint = endpoint
	cfg.TimeoutMs = 2000
	return cfg
}

var testTurns = []domain.Turn{
	{Role: domain.RoleSystem, Content: "system prompt"},
	{Role: domain.RoleUser, Content: "why is the sky blue?"},
}

func okHandler(content string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model":"openai/gpt-4o","choices":[{"message":{"role":"assistant","content":` +
			mustJSON(content) + `}}]}`))
	}
}

func mustJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestOpenRouterClient_Send_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://learnerbot.ai", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "LearnerBot AI Assistant", r.Header.Get("X-Title"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "openai/gpt-4o", req.Model)
		assert.False(t, req.Stream)
		assert.Equal(t, 1500, req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "why is the sky blue?", req.Messages[1].Content)

		okHandler("  Because of Rayleigh scattering!  ")(w, r)
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(srv.URL), NoopObserver{})
	reply, err := client.Send(context.Background(), testTurns)

	require.NoError(t, err)
	assert.Equal(t, "Because of Rayleigh scattering!", reply.Content)
	assert.Equal(t, "openai/gpt-4o", reply.Model)
	assert.False(t, reply.NotConfigured)
	assert.GreaterOrEqual(t, reply.LatencyMs, int64(0))
}

func TestOpenRouterClient_Send_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		okHandler("late")(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 50

	client := NewOpenRouterClient(cfg, NoopObserver{})
	_, err := client.Send(context.Background(), testTurns)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "TIMEOUT", ErrorKind(err))
}

func TestOpenRouterClient_Send_Unavailable(t *testing.T) {
	client := NewOpenRouterClient(testConfig("http://127.0.0.1:1"), NoopObserver{})
	_, err := client.Send(context.Background(), testTurns)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, "UNAVAILABLE", ErrorKind(err))
}

func TestOpenRouterClient_Send_BadStatusUsesAPIMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"invalid api key"}}`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Send(context.Background(), testTurns)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Contains(t, err.Error(), "invalid api key")
	assert.Contains(t, err.Error(), "401")
}

func TestOpenRouterClient_Send_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Send(context.Background(), testTurns)

	assert.ErrorIs(t, err, ErrInvalidOutput)
	assert.Equal(t, "INVALID_OUTPUT", ErrorKind(err))
}

func TestOpenRouterClient_Send_NotJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway</html>`))
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Send(context.Background(), testTurns)

	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestOpenRouterClient_Send_RetriesTransientStatus(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("upstream hiccup"))
			return
		}
		okHandler("ok")(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1

	client := NewOpenRouterClient(cfg, NoopObserver{})
	reply, err := client.Send(context.Background(), testTurns)

	require.NoError(t, err)
	assert.Equal(t, "ok", reply.Content)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestOpenRouterClient_Send_NoRetryByDefault(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(srv.URL), NoopObserver{})
	_, err := client.Send(context.Background(), testTurns)

	assert.ErrorIs(t, err, ErrBadStatus)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestOpenRouterClient_ObserverCalled(t *testing.T) {
	srv := httptest.NewServer(okHandler("hi"))
	defer srv.Close()

	var captured CallEvent
	obs := &captureObserver{fn: func(e CallEvent) { captured = e }}

	client := NewOpenRouterClient(testConfig(srv.URL), obs)
	_, err := client.Send(context.Background(), testTurns)

	require.NoError(t, err)
	assert.Equal(t, ProviderOpenRouter, captured.Provider)
	assert.Equal(t, "openai/gpt-4o", captured.Model)
	assert.Equal(t, 2, captured.Turns)
	assert.True(t, captured.Success)
}

func TestOpenRouterClient_ObserverErrorCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	var captured CallEvent
	obs := &captureObserver{fn: func(e CallEvent) { captured = e }}

	client := NewOpenRouterClient(testConfig(srv.URL), obs)
	_, err := client.Send(context.Background(), testTurns)

	require.Error(t, err)
	assert.False(t, captured.Success)
	assert.Equal(t, "BAD_STATUS", captured.ErrorCode)
}

func TestOpenRouterClient_Available(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewOpenRouterClient(testConfig(srv.URL), NoopObserver{}).(*openRouterClient)
	assert.True(t, client.Available(context.Background()))

	down := NewOpenRouterClient(testConfig("http://127.0.0.1:1"), NoopObserver{}).(*openRouterClient)
	assert.False(t, down.Available(context.Background()))
}

type captureObserver struct {
	fn func(CallEvent)
}

func (o *captureObserver) OnCallComplete(e CallEvent) { o.fn(e) }
