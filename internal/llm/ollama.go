package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"textcal/internal/config"
)

// OllamaAdapter speaks the native Ollama generate API: a single POST to
// {url}/api/generate with format "json" and streaming off. The generation
// comes back as a JSON string in the envelope's "response" field.
type OllamaAdapter struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaAdapter(cfg config.OllamaConfig) *OllamaAdapter {
	return &OllamaAdapter{
		endpoint: cfg.URL + "/api/generate",
		model:    cfg.Model,
		client:   &http.Client{Timeout: cfg.Timeout()},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	System string `json:"system"`
	Prompt string `json:"prompt"`
	Format string `json:"format"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (a *OllamaAdapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  a.model,
		System: system,
		Prompt: prompt,
		Format: "json",
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("endpoint", a.endpoint).Str("model", a.model).Msg("asking model to parse event")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", &ServiceUnreachableError{Endpoint: a.endpoint, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return "", &ServiceUnreachableError{Endpoint: a.endpoint, Status: resp.StatusCode}
	}

	var envelope generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", &MalformedResponseError{Layer: LayerEnvelope, Err: err}
	}
	return envelope.Response, nil
}
