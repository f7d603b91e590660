package services

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEmbedProvider       = "embedding.provider"
	KeyEmbedModel          = "embedding.model"
	KeyEmbedBaseURL        = "embedding.base_url"
	KeyEmbedAPIKey         = "embedding.api_key"
	KeyLLMProvider         = "llm.provider"
	KeyLLMModel            = "llm.model"
	KeyLLMBaseURL          = "llm.base_url"
	KeyLLMAPIKey           = "llm.api_key"
	KeyLLMTemperature      = "llm.temperature"
	KeyLLMMaxTokens        = "llm.max_tokens"
	KeyClassifierProvider  = "classifier.provider"
	KeyClassifierModel     = "classifier.model"
	KeyClassifierBaseURL   = "classifier.base_url"
	KeyClassifierAPIKey    = "classifier.api_key"
	KeyMinConfidence       = "intent.min_confidence"
	KeyScoreMargin         = "intent.score_margin"
	KeyIntentTimeout       = "intent.timeout_seconds"
	KeyCorpusRoot          = "corpus.root"
	KeyTopK                = "retrieval.top_k"
	KeyMinSimilarity       = "retrieval.min_similarity"
	KeyConcurrency         = "retrieval.concurrency"
	KeyCacheTTL            = "retrieval.cache_ttl_minutes"
	KeyEnhancerStages      = "enhancer.stages"
	KeyBrandingProbability = "enhancer.branding_probability"
	KeyEnhancerSeed        = "enhancer.seed"
	KeySessionTTL          = "session.ttl_minutes"
	KeyMaxTurns            = "session.max_turns"
	KeyTurnTimeout         = "session.turn_timeout_seconds"
	KeyMaxConcurrent       = "limits.max_concurrent"
	KeyRequestsPerSecond   = "limits.requests_per_second"
	KeyLogFile             = "logging.file"
	KeyServerAddr          = "server.addr"
	KeyTranscriptBackend   = "storage.transcripts"
)

// Environment variables that override API keys from the config file.
const (
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
	EnvHuggingFace  = "HF_API_TOKEN"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindList
)

// knownKeys lists every key Set accepts and how its value is parsed.
var knownKeys = map[string]keyKind{
	KeyEmbedProvider: kindString, KeyEmbedModel: kindString, KeyEmbedBaseURL: kindString, KeyEmbedAPIKey: kindString,
	KeyLLMProvider: kindString, KeyLLMModel: kindString, KeyLLMBaseURL: kindString, KeyLLMAPIKey: kindString,
	KeyLLMTemperature: kindFloat, KeyLLMMaxTokens: kindInt,
	KeyClassifierProvider: kindString, KeyClassifierModel: kindString,
	KeyClassifierBaseURL: kindString, KeyClassifierAPIKey: kindString,
	KeyMinConfidence: kindFloat, KeyScoreMargin: kindFloat, KeyIntentTimeout: kindInt,
	KeyCorpusRoot: kindString, KeyTopK: kindInt, KeyMinSimilarity: kindFloat,
	KeyConcurrency: kindInt, KeyCacheTTL: kindInt,
	KeyEnhancerStages: kindList, KeyBrandingProbability: kindFloat, KeyEnhancerSeed: kindInt,
	KeySessionTTL: kindInt, KeyMaxTurns: kindInt, KeyTurnTimeout: kindInt,
	KeyMaxConcurrent: kindInt, KeyRequestsPerSecond: kindFloat,
	KeyLogFile: kindString, KeyServerAddr: kindString, KeyTranscriptBackend: kindString,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	lookupEnv   func(string) (string, bool)
}

// NewSettingsService creates a new settings service.
// The aiValidator parameter is optional (can be nil).
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		lookupEnv:   os.LookupEnv,
	}
}

// Get retrieves current application settings.
// API keys from the environment take precedence over the config file.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(KeyEmbedProvider, d.Embedding.Provider),
			Model:    s.getString(KeyEmbedModel, d.Embedding.Model),
			BaseURL:  s.configStore.GetString(KeyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(KeyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(KeyLLMProvider, d.LLM.Provider),
			Model:       s.getString(KeyLLMModel, d.LLM.Model),
			BaseURL:     s.configStore.GetString(KeyLLMBaseURL),
			APIKey:      s.configStore.GetString(KeyLLMAPIKey),
			Temperature: s.getFloat(KeyLLMTemperature, d.LLM.Temperature),
			MaxTokens:   s.getInt(KeyLLMMaxTokens, d.LLM.MaxTokens),
		},
		Classifier: domain.ClassifierSettings{
			Provider: s.getProvider(KeyClassifierProvider, d.Classifier.Provider),
			Model:    s.getString(KeyClassifierModel, d.Classifier.Model),
			BaseURL:  s.configStore.GetString(KeyClassifierBaseURL),
			APIKey:   s.configStore.GetString(KeyClassifierAPIKey),
		},
		Intent: domain.IntentSettings{
			MinConfidence: s.getFloat(KeyMinConfidence, d.Intent.MinConfidence),
			ScoreMargin:   s.getFloat(KeyScoreMargin, d.Intent.ScoreMargin),
			Timeout:       s.getSeconds(KeyIntentTimeout, d.Intent.Timeout),
		},
		Retrieval: domain.RetrievalSettings{
			CorpusRoot:    s.getString(KeyCorpusRoot, d.Retrieval.CorpusRoot),
			TopK:          s.getInt(KeyTopK, d.Retrieval.TopK),
			MinSimilarity: s.getFloat(KeyMinSimilarity, d.Retrieval.MinSimilarity),
			Concurrency:   s.getInt(KeyConcurrency, d.Retrieval.Concurrency),
			CacheTTL:      s.getMinutes(KeyCacheTTL, d.Retrieval.CacheTTL),
		},
		Enhancer: domain.EnhancerSettings{
			Stages:              s.getStringSlice(KeyEnhancerStages, d.Enhancer.Stages),
			BrandingProbability: s.getFloat(KeyBrandingProbability, d.Enhancer.BrandingProbability),
			Seed:                uint64(s.getInt(KeyEnhancerSeed, int(d.Enhancer.Seed))), //nolint:gosec // seeds are non-negative
		},
		Session: domain.SessionSettings{
			TTL:         s.getMinutes(KeySessionTTL, d.Session.TTL),
			MaxTurns:    s.getInt(KeyMaxTurns, d.Session.MaxTurns),
			TurnTimeout: s.getSeconds(KeyTurnTimeout, d.Session.TurnTimeout),
		},
		Limits: domain.LimitSettings{
			MaxConcurrent:     s.getInt(KeyMaxConcurrent, d.Limits.MaxConcurrent),
			RequestsPerSecond: s.getFloat(KeyRequestsPerSecond, d.Limits.RequestsPerSecond),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// applyEnv fills API keys from the environment for the selected providers.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if key := s.envKey(settings.Embedding.Provider); key != "" {
		settings.Embedding.APIKey = key
	}
	if key := s.envKey(settings.LLM.Provider); key != "" {
		settings.LLM.APIKey = key
	}
	if key := s.envKey(settings.Classifier.Provider); key != "" {
		settings.Classifier.APIKey = key
	}
}

func (s *SettingsService) envKey(provider domain.AIProvider) string {
	var name string
	switch provider {
	case domain.AIProviderOpenAI:
		name = EnvOpenAIKey
	case domain.AIProviderAnthropic:
		name = EnvAnthropicKey
	case domain.AIProviderHuggingFace:
		name = EnvHuggingFace
	default:
		return ""
	}
	val, _ := s.lookupEnv(name)
	return val
}

// Save persists application settings.
// API keys are only written when set.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{KeyEmbedProvider, settings.Embedding.Provider.String()},
		{KeyEmbedModel, settings.Embedding.Model},
		{KeyEmbedBaseURL, settings.Embedding.BaseURL},
		{KeyLLMProvider, settings.LLM.Provider.String()},
		{KeyLLMModel, settings.LLM.Model},
		{KeyLLMBaseURL, settings.LLM.BaseURL},
		{KeyLLMTemperature, settings.LLM.Temperature},
		{KeyLLMMaxTokens, settings.LLM.MaxTokens},
		{KeyClassifierProvider, settings.Classifier.Provider.String()},
		{KeyClassifierModel, settings.Classifier.Model},
		{KeyClassifierBaseURL, settings.Classifier.BaseURL},
		{KeyMinConfidence, settings.Intent.MinConfidence},
		{KeyScoreMargin, settings.Intent.ScoreMargin},
		{KeyIntentTimeout, int(settings.Intent.Timeout / time.Second)},
		{KeyCorpusRoot, settings.Retrieval.CorpusRoot},
		{KeyTopK, settings.Retrieval.TopK},
		{KeyMinSimilarity, settings.Retrieval.MinSimilarity},
		{KeyConcurrency, settings.Retrieval.Concurrency},
		{KeyCacheTTL, int(settings.Retrieval.CacheTTL / time.Minute)},
		{KeyEnhancerStages, settings.Enhancer.Stages},
		{KeyBrandingProbability, settings.Enhancer.BrandingProbability},
		{KeyEnhancerSeed, int(settings.Enhancer.Seed)}, //nolint:gosec // seeds fit in int
		{KeySessionTTL, int(settings.Session.TTL / time.Minute)},
		{KeyMaxTurns, settings.Session.MaxTurns},
		{KeyTurnTimeout, int(settings.Session.TurnTimeout / time.Second)},
		{KeyMaxConcurrent, settings.Limits.MaxConcurrent},
		{KeyRequestsPerSecond, settings.Limits.RequestsPerSecond},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	secrets := map[string]string{
		KeyEmbedAPIKey:      settings.Embedding.APIKey,
		KeyLLMAPIKey:        settings.LLM.APIKey,
		KeyClassifierAPIKey: settings.Classifier.APIKey,
	}
	for key, val := range secrets {
		if val == "" {
			continue
		}
		if err := s.configStore.Set(key, val); err != nil {
			return fmt.Errorf("save %s: %w", key, err)
		}
	}
	return nil
}

// Set stores one setting by dot key. String values are parsed according
// to the key's type so CLI input can be passed through unchanged.
func (s *SettingsService) Set(key string, value any) error {
	kind, ok := knownKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if str, isString := value.(string); isString {
		parsed, err := parseValue(kind, str)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
		}
		value = parsed
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func parseValue(kind keyKind, str string) (any, error) {
	str = strings.TrimSpace(str)
	switch kind {
	case kindInt:
		return strconv.Atoi(str)
	case kindFloat:
		return strconv.ParseFloat(str, 64)
	case kindList:
		var out []string
		for _, part := range strings.Split(str, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	default:
		return str, nil
	}
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllEmbeddingProviders(), provider) {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllLLMProviders(), provider) {
		return fmt.Errorf("provider %s does not support generation", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetClassifierProvider configures the zero-shot classifier.
func (s *SettingsService) SetClassifierProvider(provider domain.AIProvider, model, apiKey string) error {
	if !slices.Contains(domain.AllClassifierProviders(), provider) {
		return fmt.Errorf("provider %s does not support classification", provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Classifier.Provider = provider
	settings.Classifier.APIKey = apiKey
	if provider == domain.AIProviderHuggingFace {
		settings.Classifier.Model = modelOrDefault(model, domain.DefaultClassifierModel)
	} else {
		settings.Classifier.Model = ""
		settings.Classifier.BaseURL = ""
	}

	return s.Save(settings)
}

// Validate checks that the current settings are usable.
// Providers that are selected must be fully configured.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.Embedding.Provider != "" && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("embedding provider %s is not fully configured", settings.Embedding.Provider)
	}
	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %s is not fully configured", settings.LLM.Provider)
	}
	if settings.Classifier.Provider != "" && !settings.Classifier.IsConfigured() {
		return fmt.Errorf("classifier provider %s is not fully configured", settings.Classifier.Provider)
	}
	if settings.Classifier.Provider == domain.AIProviderEmbedding && !settings.Embedding.IsConfigured() {
		return fmt.Errorf("classifier provider %s requires an embedding provider", settings.Classifier.Provider)
	}

	switch {
	case settings.Intent.MinConfidence < 0 || settings.Intent.MinConfidence > 1:
		return fmt.Errorf("%s must be within [0, 1], got %v", KeyMinConfidence, settings.Intent.MinConfidence)
	case settings.Intent.ScoreMargin < 0:
		return fmt.Errorf("%s must not be negative, got %v", KeyScoreMargin, settings.Intent.ScoreMargin)
	case settings.Intent.Timeout < 0:
		return fmt.Errorf("%s must not be negative, got %s", KeyIntentTimeout, settings.Intent.Timeout)
	case settings.Retrieval.TopK < 1:
		return fmt.Errorf("%s must be at least 1, got %d", KeyTopK, settings.Retrieval.TopK)
	case settings.Retrieval.MinSimilarity < -1 || settings.Retrieval.MinSimilarity > 1:
		return fmt.Errorf("%s must be within [-1, 1], got %v", KeyMinSimilarity, settings.Retrieval.MinSimilarity)
	case settings.Enhancer.BrandingProbability < 0 || settings.Enhancer.BrandingProbability > 1:
		return fmt.Errorf("%s must be within [0, 1], got %v", KeyBrandingProbability, settings.Enhancer.BrandingProbability)
	case settings.Session.MaxTurns < 0:
		return fmt.Errorf("%s must not be negative, got %d", KeyMaxTurns, settings.Session.MaxTurns)
	}

	known := []string{
		domain.StagePersonalise, domain.StageCTA, domain.StageBranding, domain.StageFormat,
		domain.StageSocialProof, domain.StageUrgency,
	}
	for _, stage := range settings.Enhancer.Stages {
		if !slices.Contains(known, stage) {
			return fmt.Errorf("unknown enhancer stage %q", stage)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// ValidateClassifierConfig validates the current classifier configuration.
func (s *SettingsService) ValidateClassifierConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateClassifier(&settings.Classifier)
}

func modelOrDefault(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}

// baseURLFor keeps a local provider's endpoint and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if val := s.configStore.GetStringSlice(key); len(val) > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Minute
}

func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return time.Duration(s.configStore.GetInt(key)) * time.Second
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
