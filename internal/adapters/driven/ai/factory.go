// Package ai provides factory functions for creating AI service adapters.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	embedclassifier "github.com/custodia-labs/concierge/internal/adapters/driven/classifier/embedding"
	"github.com/custodia-labs/concierge/internal/adapters/driven/classifier/huggingface"
	ollamaembed "github.com/custodia-labs/concierge/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/concierge/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/concierge/internal/adapters/driven/llm/anthropic"
	ollamallm "github.com/custodia-labs/concierge/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/concierge/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// fixHint tells the user how to repair a broken provider configuration.
const fixHint = "Run 'concierge settings show' to review the configuration"

// InitResult contains the result of AI service initialisation.
type InitResult struct {
	EmbeddingService driven.EmbeddingService
	LLMService       driven.LLMService
	Classifier       driven.ZeroShotClassifier

	// Cache memoises embeddings; nil when caching is disabled or there is
	// no embedding service. Flush it when the corpus changes.
	Cache *CachedEmbedding

	Warnings []string // Non-fatal issues that caused a service to be skipped.
}

// Close releases all resources held by InitResult.
func (r *InitResult) Close() {
	if r.Classifier != nil {
		r.Classifier.Close()
	}
	if r.EmbeddingService != nil {
		r.EmbeddingService.Close()
	}
	if r.LLMService != nil {
		r.LLMService.Close()
	}
}

// Initialise creates every configured AI service, validates connectivity,
// and wraps them with the shared limits and the embedding cache.
// A service that cannot be reached is left nil and reported as a warning,
// so the pipeline degrades to its deterministic fallbacks.
func Initialise(settings domain.AppSettings) *InitResult {
	result := &InitResult{}
	limits := settings.Limits

	embedder, err := CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		result.warn(err)
	} else if embedder != nil {
		embedder = NewLimitedEmbedding(embedder, NewLimiter(limits))
		if settings.Retrieval.CacheTTL > 0 {
			result.Cache = NewCachedEmbedding(embedder, settings.Retrieval.CacheTTL)
			embedder = result.Cache
		}
		result.EmbeddingService = embedder
	}

	llm, err := CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		result.warn(err)
	} else if llm != nil {
		result.LLMService = NewLimitedLLM(llm, NewLimiter(limits))
	}

	classifier, err := CreateAndValidateClassifier(&settings.Classifier, result.EmbeddingService)
	if err != nil {
		result.warn(err)
	} else if classifier != nil {
		result.Classifier = NewLimitedClassifier(classifier, NewLimiter(limits))
	}

	return result
}

func (r *InitResult) warn(err error) {
	logger.Warn("%v", err)
	r.Warnings = append(r.Warnings, err.Error())
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrEmbeddingUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateLLMService creates an LLM service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	svc, err := CreateLLMService(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrLLMUnavailable, err, fixHint)
	}
	return svc, nil
}

// CreateAndValidateClassifier creates a zero-shot classifier and validates connectivity.
func CreateAndValidateClassifier(
	settings *domain.ClassifierSettings, embedder driven.EmbeddingService,
) (driven.ZeroShotClassifier, error) {
	svc, err := CreateClassifier(settings, embedder)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. %s", domain.ErrClassificationUnavailable, err, fixHint)
	}
	if svc == nil {
		return nil, nil
	}
	if err := ping(svc); err != nil {
		svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). %s", domain.ErrClassificationUnavailable, err, fixHint)
	}
	return svc, nil
}

type pinger interface {
	Ping(ctx context.Context) error
}

func ping(svc pinger) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return svc.Ping(ctx)
}

// ValidateEmbeddingConfig validates an embedding configuration by creating a service and pinging it.
func ValidateEmbeddingConfig(settings *domain.EmbeddingSettings) error {
	svc, err := CreateEmbeddingService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// ValidateLLMConfig validates an LLM configuration by creating a service and pinging it.
func ValidateLLMConfig(settings *domain.LLMSettings) error {
	svc, err := CreateLLMService(settings)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// ValidateClassifierConfig validates a classifier configuration by pinging it.
// The local embedding classifier has nothing remote of its own to check.
func ValidateClassifierConfig(settings *domain.ClassifierSettings) error {
	if settings == nil || settings.Provider != domain.AIProviderHuggingFace || !settings.IsConfigured() {
		return nil
	}
	svc, err := createHuggingFaceClassifier(settings)
	if err != nil {
		return err
	}
	defer svc.Close()
	return ping(svc)
}

// CreateEmbeddingService creates the appropriate embedding service based on settings.
// Returns nil if the provider is not configured.
func CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaEmbedding(settings), nil
	case domain.AIProviderOpenAI:
		return createOpenAIEmbedding(settings)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// CreateLLMService creates the appropriate LLM service based on settings.
// Returns nil if the provider is not configured.
func CreateLLMService(settings *domain.LLMSettings) (driven.LLMService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllamaLLM(settings), nil
	case domain.AIProviderOpenAI:
		return createOpenAILLM(settings)
	case domain.AIProviderAnthropic:
		return createAnthropicLLM(settings)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", settings.Provider)
	}
}

// CreateClassifier creates the zero-shot classifier named by settings.
// The embedding provider scores labels with embedder and needs one.
// Returns nil if the provider is not configured.
func CreateClassifier(
	settings *domain.ClassifierSettings, embedder driven.EmbeddingService,
) (driven.ZeroShotClassifier, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderHuggingFace:
		return createHuggingFaceClassifier(settings)
	case domain.AIProviderEmbedding:
		if embedder == nil {
			return nil, errors.New("embedding classifier needs an embedding provider")
		}
		return embedclassifier.NewClassifier(embedder, 0)
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", settings.Provider)
	}
}

func createOllamaEmbedding(settings *domain.EmbeddingSettings) driven.EmbeddingService {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollamaembed.DefaultDimensions
	}

	return ollamaembed.NewEmbeddingService(ollamaembed.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

func createOpenAIEmbedding(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	return openaiembed.NewEmbeddingService(openaiembed.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: domain.EmbeddingDimensions()[settings.Model],
	})
}

func createOllamaLLM(settings *domain.LLMSettings) driven.LLMService {
	return ollamallm.NewLLMService(ollamallm.LLMConfig{
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createOpenAILLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return openaillm.NewLLMService(openaillm.LLMConfig{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createAnthropicLLM(settings *domain.LLMSettings) (driven.LLMService, error) {
	return anthropicllm.NewLLMService(anthropicllm.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}

func createHuggingFaceClassifier(settings *domain.ClassifierSettings) (*huggingface.Classifier, error) {
	return huggingface.NewClassifier(huggingface.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Model:   settings.Model,
	})
}
