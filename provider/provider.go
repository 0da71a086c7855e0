package provider

import (
	"context"
	"fmt"

	"github.com/0-0Dibakar/AI-Powered-News/config"
	openai_provider "github.com/0-0Dibakar/AI-Powered-News/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	// CreateEmbedding returns one dense vector per input text.
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
	// Complete sends a single-turn prompt and returns the model's text reply.
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(client Client, cfg config.OpenAIConfig) (Provider, error) {
	switch client {
	case OpenAI:
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return openai_provider.NewOpenAIClient(
			cfg.APIKey,
			cfg.BaseURL,
			cfg.CompletionModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", client)
	}
}
