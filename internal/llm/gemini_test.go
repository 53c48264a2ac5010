package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func geminiTestConfig(endpoint string) LLMConfig {
	cfg := testConfig(endpoint)
	cfg.Provider = ProviderGemini
	cfg.Model = DefaultGeminiModel
	return cfg
}

func TestGeminiClient_Send_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/"+DefaultGeminiModel+":generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")
		contents, ok := body["contents"].([]any)
		require.True(t, ok)
		assert.Len(t, contents, 1)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"  Rayleigh scattering!  "}]}}]}`))
	}))
	defer srv.Close()

	var events []CallEvent
	obs := &captureObserver{fn: func(e CallEvent) { events = append(events, e) }}
	c, err := NewGeminiClient(context.Background(), geminiTestConfig(srv.URL), obs)
	require.NoError(t, err)

	reply, err := c.Send(context.Background(), testTurns)
	require.NoError(t, err)
	assert.Equal(t, "Rayleigh scattering!", reply.Content)
	assert.Equal(t, DefaultGeminiModel, reply.Model)
	assert.False(t, reply.NotConfigured)

	require.Len(t, events, 1)
	assert.True(t, events[0].Success)
	assert.Equal(t, ProviderGemini, events[0].Provider)
}

func TestGeminiClient_Send_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), geminiTestConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Send(context.Background(), testTurns)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrBadStatus))
	assert.Equal(t, "BAD_STATUS", ErrorKind(err))
}

func TestGeminiClient_Send_EmptyCandidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"   "}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewGeminiClient(context.Background(), geminiTestConfig(srv.URL), nil)
	require.NoError(t, err)

	_, err = c.Send(context.Background(), testTurns)
	assert.ErrorIs(t, err, ErrInvalidOutput)
}

func TestNewGeminiClient_RequiresKey(t *testing.T) {
	cfg := geminiTestConfig("")
	cfg.APIKey = ""
	_, err := NewGeminiClient(context.Background(), cfg, nil)
	assert.Error(t, err)
}
