package llm

import (
	"context"
	"fmt"

	"textcal/internal/config"
)

// Adapter abstracts completion providers. Generate issues a single
// JSON-constrained, non-streamed request and returns the model's raw JSON
// payload text. No retries; the caller decides whether to try again.
type Adapter interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

type Provider string

const (
	ProviderOllama Provider = "ollama"
	ProviderOpenAI Provider = "openai"
)

func NewAdapter(cfg config.OllamaConfig) (Adapter, error) {
	switch Provider(cfg.Provider) {
	case ProviderOllama, "":
		return NewOllamaAdapter(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIAdapter(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
