package driven

import (
	"context"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// LLMService is the generative backend that writes replies.
// Implementations must be safe for concurrent use.
type LLMService interface {
	// Generate answers the grounding prompt using the retrieved documents
	// as context and the prior conversation as history.
	Generate(ctx context.Context, prompt string, docs []string, history []domain.Entry, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable without running inference.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation.
type GenerateOptions struct {
	// MaxTokens limits response length. Zero uses the provider default.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64
}
