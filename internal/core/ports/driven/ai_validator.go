package driven

import "github.com/custodia-labs/concierge/internal/core/domain"

// AIConfigValidator checks provider settings by building a client and pinging it.
// Each method returns nil when the provider is not configured.
type AIConfigValidator interface {
	ValidateEmbedding(config *domain.EmbeddingSettings) error
	ValidateLLM(config *domain.LLMSettings) error
	ValidateClassifier(config *domain.ClassifierSettings) error
}
