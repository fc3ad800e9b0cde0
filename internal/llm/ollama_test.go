package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"textcal/internal/config"
)

func ollamaConfig(url string) config.OllamaConfig {
	return config.OllamaConfig{URL: url, Model: "llama3.2", TimeoutSeconds: 5}
}

func TestOllamaGenerateUnwrapsEnvelope(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(map[string]string{
			"response": `{"summary":"Team sync","start":"2024-06-02 10:00:00","end":"2024-06-02 10:30:00"}`,
		})
	}))
	defer srv.Close()

	a := NewOllamaAdapter(ollamaConfig(srv.URL))
	payload, err := a.Generate(context.Background(), "system prompt", "Team sync tomorrow 10am")
	require.NoError(t, err)
	require.JSONEq(t, `{"summary":"Team sync","start":"2024-06-02 10:00:00","end":"2024-06-02 10:30:00"}`, payload)

	require.Equal(t, "llama3.2", got.Model)
	require.Equal(t, "system prompt", got.System)
	require.Equal(t, "Team sync tomorrow 10am", got.Prompt)
	require.Equal(t, "json", got.Format)
	require.False(t, got.Stream)
}

func TestOllamaGenerateServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewOllamaAdapter(ollamaConfig(srv.URL))
	_, err := a.Generate(context.Background(), "sys", "text")

	var serr *ServiceUnreachableError
	require.ErrorAs(t, err, &serr)
	require.Equal(t, http.StatusInternalServerError, serr.Status)
}

func TestOllamaGenerateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	a := NewOllamaAdapter(ollamaConfig(srv.URL))
	_, err := a.Generate(context.Background(), "sys", "text")

	var serr *ServiceUnreachableError
	require.ErrorAs(t, err, &serr)
	require.Zero(t, serr.Status)
	require.Error(t, serr.Err)
}

func TestOllamaGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := ollamaConfig(srv.URL)
	a := NewOllamaAdapter(cfg)
	a.client.Timeout = 50 * time.Millisecond

	_, err := a.Generate(context.Background(), "sys", "text")
	var serr *ServiceUnreachableError
	require.ErrorAs(t, err, &serr)
}

func TestOllamaGenerateMalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": `))
	}))
	defer srv.Close()

	a := NewOllamaAdapter(ollamaConfig(srv.URL))
	_, err := a.Generate(context.Background(), "sys", "text")

	var merr *MalformedResponseError
	require.ErrorAs(t, err, &merr)
	require.Equal(t, LayerEnvelope, merr.Layer)
}

func TestNewAdapterProviders(t *testing.T) {
	a, err := NewAdapter(config.OllamaConfig{URL: "http://localhost:11434", Model: "m", Provider: "ollama"})
	require.NoError(t, err)
	require.IsType(t, &OllamaAdapter{}, a)

	_, err = NewAdapter(config.OllamaConfig{URL: "http://localhost:8080", Model: "m", Provider: "bogus"})
	require.Error(t, err)
}
