package llm

import (
	"context"
	"fmt"

	"todays-meal/internal/config"
	"todays-meal/internal/shared"

	"github.com/google/generative-ai-go/genai"
)

// ContentResponse contains the generated text and metadata like token usage.
type ContentResponse struct {
	Content string
	Usage   shared.TokenUsage
}

// StructuredGenerator asks a model for JSON constrained by a response schema.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (ContentResponse, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}

// Client is a StructuredGenerator that holds resources.
type Client interface {
	StructuredGenerator
	Closer
}

// NewFromConfig builds the client for the configured provider.
func NewFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	case config.ProviderGroq:
		return NewGroqClient(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
