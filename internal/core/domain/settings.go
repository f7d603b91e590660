package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings, classification or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderHuggingFace is the Hugging Face inference API.
	AIProviderHuggingFace AIProvider = "huggingface"

	// AIProviderEmbedding scores labels locally with the configured embedding model.
	AIProviderEmbedding AIProvider = "embedding"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic,
		AIProviderHuggingFace, AIProviderEmbedding:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderHuggingFace
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama || p == AIProviderEmbedding
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderHuggingFace:
		return "Hugging Face Inference (cloud)"
	case AIProviderEmbedding:
		return "Embedding similarity (local)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if e.Provider != AIProviderOllama && e.Provider != AIProviderOpenAI {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generative backend configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature controls sampling randomness.
	Temperature float64

	// MaxTokens caps the reply length. Zero uses the provider default.
	MaxTokens int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	switch l.Provider {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
	default:
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ClassifierSettings holds zero-shot classifier configuration.
type ClassifierSettings struct {
	// Provider is huggingface (remote NLI model) or embedding (local label similarity).
	Provider AIProvider

	// Model is the zero-shot model name (for Hugging Face).
	Model string

	// BaseURL is the inference endpoint.
	BaseURL string

	// APIKey is the Hugging Face token.
	APIKey string
}

// IsConfigured returns true if a classifier is set up.
func (c ClassifierSettings) IsConfigured() bool {
	switch c.Provider {
	case AIProviderHuggingFace:
		return c.APIKey != ""
	case AIProviderEmbedding:
		return true
	default:
		return false
	}
}

// IntentSettings tunes intent detection.
type IntentSettings struct {
	// MinConfidence is the lowest classifier score a category may have.
	MinConfidence float64

	// ScoreMargin is the largest allowed gap below the top score.
	ScoreMargin float64

	// Timeout bounds each classifier call. Zero means no bound.
	Timeout time.Duration
}

// RetrievalSettings tunes document ranking.
type RetrievalSettings struct {
	// CorpusRoot is the directory that relative partitions resolve against.
	CorpusRoot string

	// TopK is the maximum number of documents returned.
	TopK int

	// MinSimilarity is the lowest cosine similarity a document may have.
	MinSimilarity float64

	// Concurrency bounds parallel document embedding.
	Concurrency int

	// CacheTTL is how long document embeddings are memoised. Zero disables caching.
	CacheTTL time.Duration
}

// EnhancerSettings configures the response enhancement stages.
type EnhancerSettings struct {
	// Stages is the ordered list of stage names to run.
	Stages []string

	// BrandingProbability is the chance the tagline is appended.
	BrandingProbability float64

	// Seed makes variant selection reproducible. Zero seeds from the clock.
	Seed uint64
}

// SessionSettings bounds conversation sessions.
type SessionSettings struct {
	// TTL is the idle time after which a session expires.
	TTL time.Duration

	// MaxTurns is the number of turns a session may take. Zero is unlimited.
	MaxTurns int

	// TurnTimeout bounds a single turn end to end.
	TurnTimeout time.Duration
}

// LimitSettings protects shared model backends.
type LimitSettings struct {
	// MaxConcurrent bounds in-flight calls per backend.
	MaxConcurrent int

	// RequestsPerSecond rate-limits calls per backend. Zero is unlimited.
	RequestsPerSecond float64
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding  EmbeddingSettings
	LLM        LLMSettings
	Classifier ClassifierSettings
	Intent     IntentSettings
	Retrieval  RetrievalSettings
	Enhancer   EnhancerSettings
	Session    SessionSettings
	Limits     LimitSettings
}

// Default stage names for the response enhancer.
const (
	StagePersonalise = "personalise"
	StageCTA         = "cta"
	StageBranding    = "branding"
	StageFormat      = "format"

	// Optional stages, off unless listed in enhancer.stages.
	StageSocialProof = "socialproof"
	StageUrgency     = "urgency"
)

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; replies use the deterministic fallback
// until a backend is set up.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding:  EmbeddingSettings{},
		LLM:        LLMSettings{Temperature: 0.2},
		Classifier: ClassifierSettings{},
		Intent: IntentSettings{
			MinConfidence: 0.5,
			ScoreMargin:   0.05,
			Timeout:       15 * time.Second,
		},
		Retrieval: RetrievalSettings{
			CorpusRoot:    "data",
			TopK:          3,
			MinSimilarity: 0.21,
			Concurrency:   4,
			CacheTTL:      10 * time.Minute,
		},
		Enhancer: EnhancerSettings{
			Stages:              []string{StagePersonalise, StageCTA, StageBranding, StageFormat},
			BrandingProbability: 0.3,
		},
		Session: SessionSettings{
			TTL:         30 * time.Minute,
			MaxTurns:    50,
			TurnTimeout: 60 * time.Second,
		},
		Limits: LimitSettings{
			MaxConcurrent:     4,
			RequestsPerSecond: 0,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// AllClassifierProviders returns providers that support zero-shot classification.
func AllClassifierProviders() []AIProvider {
	return []AIProvider{
		AIProviderHuggingFace,
		AIProviderEmbedding,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "all-minilm",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// DefaultClassifierModel is the zero-shot NLI model used on Hugging Face.
const DefaultClassifierModel = "valhalla/distilbart-mnli-12-1"

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
