package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure AI providers, intent thresholds, retrieval and sessions.

Use subcommands to configure specific settings.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dot key, for example:

  concierge settings set retrieval.top_k 5
  concierge settings set intent.score_margin 0.1
  concierge settings set enhancer.stages personalise,cta,format`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the settings are usable",
	RunE:  runSettingsValidate,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long:  `Configure the embedding provider used to rank documents.`,
	RunE:  runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Configure the LLM provider that writes grounded replies.`,
	RunE:  runSettingsLLM,
}

var settingsClassifierCmd = &cobra.Command{
	Use:   "classifier",
	Short: "Configure zero-shot classifier",
	Long: `Configure the zero-shot classifier used when no keyword matches.

Hugging Face runs a hosted NLI model; the embedding classifier scores
category names against the utterance with the configured embedding model.`,
	RunE: runSettingsClassifier,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsValidateCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsClassifierCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Printf("  Temperature: %.2f\n", settings.LLM.Temperature)
	if settings.LLM.MaxTokens > 0 {
		cmd.Printf("  Max tokens: %d\n", settings.LLM.MaxTokens)
	}
	cmd.Println()

	cmd.Println("[Classifier]")
	printProvider(cmd, settings.Classifier.Provider, settings.Classifier.Model,
		settings.Classifier.BaseURL, settings.Classifier.APIKey, settings.Classifier.IsConfigured())

	cmd.Println("[Intent]")
	cmd.Printf("  Min confidence: %.2f\n", settings.Intent.MinConfidence)
	cmd.Printf("  Score margin: %.2f\n", settings.Intent.ScoreMargin)
	cmd.Printf("  Classifier timeout: %s\n", settings.Intent.Timeout)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Corpus root: %s\n", settings.Retrieval.CorpusRoot)
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Min similarity: %.2f\n", settings.Retrieval.MinSimilarity)
	cmd.Printf("  Concurrency: %d\n", settings.Retrieval.Concurrency)
	cmd.Printf("  Embedding cache: %s\n", settings.Retrieval.CacheTTL)
	cmd.Println()

	cmd.Println("[Enhancer]")
	cmd.Printf("  Stages: %s\n", strings.Join(settings.Enhancer.Stages, ", "))
	cmd.Printf("  Branding probability: %.2f\n", settings.Enhancer.BrandingProbability)
	cmd.Println()

	cmd.Println("[Session]")
	cmd.Printf("  Idle timeout: %s\n", settings.Session.TTL)
	cmd.Printf("  Max turns: %d\n", settings.Session.MaxTurns)
	cmd.Printf("  Turn timeout: %s\n", settings.Session.TurnTimeout)
	cmd.Println()

	cmd.Println("[Limits]")
	cmd.Printf("  Max concurrent calls: %d\n", settings.Limits.MaxConcurrent)
	if settings.Limits.RequestsPerSecond > 0 {
		cmd.Printf("  Requests per second: %.1f\n", settings.Limits.RequestsPerSecond)
	} else {
		cmd.Println("  Requests per second: unlimited")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Provider: (not set)")
		cmd.Println()
		return
	}
	cmd.Printf("  Provider: %s\n", provider.Description())
	if model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		return err
	}
	cmd.Printf("%s = %s\n", key, value)

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}
	return nil
}

func runSettingsValidate(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if settings.Embedding.IsConfigured() {
		cmd.Print("Embedding provider... ")
		reportPing(cmd, settingsService.ValidateEmbeddingConfig())
	}
	if settings.LLM.IsConfigured() {
		cmd.Print("LLM provider... ")
		reportPing(cmd, settingsService.ValidateLLMConfig())
	}
	if settings.Classifier.IsConfigured() {
		cmd.Print("Classifier... ")
		reportPing(cmd, settingsService.ValidateClassifierConfig())
	}
	cmd.Println("Configuration is valid.")
	return nil
}

func reportPing(cmd *cobra.Command, err error) {
	if err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return
	}
	cmd.Println("OK")
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureEmbeddingProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureLLMProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

func runSettingsClassifier(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return configureClassifierProvider(cmd, bufio.NewReader(cmd.InOrStdin()))
}

// providerChoice is the outcome of an interactive provider prompt.
type providerChoice struct {
	provider domain.AIProvider
	model    string
	apiKey   string
}

// promptProvider asks for a provider, model and, when needed, an API key.
func promptProvider(
	cmd *cobra.Command, reader *bufio.Reader, title string,
	providers []domain.AIProvider, defaults map[domain.AIProvider]string,
) (providerChoice, error) {
	cmd.Println(title)
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	choice := providerChoice{provider: providers[idx-1]}

	defaultModel := defaults[choice.provider]
	if defaultModel != "" {
		cmd.Printf("Enter model name [%s]: ", defaultModel)
	} else {
		cmd.Print("Enter model name: ")
	}
	choice.model = readLine(reader)
	if choice.model == "" {
		choice.model = defaultModel
	}

	if choice.provider.RequiresAPIKey() {
		cmd.Print("Enter API key (blank to use the environment): ")
		choice.apiKey = readSecret(reader)
		cmd.Println()
	}
	return choice, nil
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	choice, err := promptProvider(cmd, reader, "Select Embedding Provider",
		domain.AllEmbeddingProviders(), domain.DefaultEmbeddingModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateEmbeddingConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

func configureLLMProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	choice, err := promptProvider(cmd, reader, "Select LLM Provider",
		domain.AllLLMProviders(), domain.DefaultLLMModels())
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ValidateLLMConfig(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", choice.provider.Description(), choice.model)
	return nil
}

func configureClassifierProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	defaults := map[domain.AIProvider]string{domain.AIProviderHuggingFace: domain.DefaultClassifierModel}
	choice, err := promptProvider(cmd, reader, "Select Classifier",
		domain.AllClassifierProviders(), defaults)
	if err != nil {
		return err
	}

	if err := settingsService.SetClassifierProvider(choice.provider, choice.model, choice.apiKey); err != nil {
		return fmt.Errorf("failed to configure classifier: %w", err)
	}

	cmd.Printf("Classifier configured: %s\n", choice.provider.Description())
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo from a terminal, falling back to the reader.
func readSecret(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

