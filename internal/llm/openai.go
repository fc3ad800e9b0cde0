package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"textcal/internal/config"
)

// OpenAIAdapter targets OpenAI-compatible servers (llama.cpp, vLLM,
// LM Studio, the hosted API) through langchaingo. The library owns the
// envelope here, so Generate returns the assistant text directly.
type OpenAIAdapter struct {
	client *openai.LLM
	model  string
}

func NewOpenAIAdapter(cfg config.OllamaConfig) (*OpenAIAdapter, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithBaseURL(cfg.URL),
	}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, err
	}
	return &OpenAIAdapter{client: client, model: cfg.Model}, nil
}

func (a *OpenAIAdapter) Generate(ctx context.Context, system, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	resp, err := a.client.GenerateContent(ctx, messages,
		llms.WithModel(a.model),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", &ServiceUnreachableError{Endpoint: "openai-compatible endpoint", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return resp.Choices[0].Content, nil
}
