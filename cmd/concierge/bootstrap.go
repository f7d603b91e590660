package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/concierge/internal/adapters/driven/ai"
	"github.com/custodia-labs/concierge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/concierge/internal/adapters/driven/corpus/filesystem"
	"github.com/custodia-labs/concierge/internal/adapters/driven/metrics"
	"github.com/custodia-labs/concierge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/concierge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/concierge/internal/adapters/driving/cli"
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driven"
	"github.com/custodia-labs/concierge/internal/core/services"
	"github.com/custodia-labs/concierge/internal/enhancers"
	"github.com/custodia-labs/concierge/internal/logger"
)

// Transcript backends selectable with storage.transcripts.
const (
	backendMemory = "memory"
	backendSQLite = "sqlite"
)

// bootstrap builds every service from the configuration directory.
func bootstrap(_ context.Context, opts cli.Options) (*cli.Services, func(), error) {
	dir, err := configDir(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}
	logger.EnableFile(configStore.GetString(services.KeyLogFile))

	logger.Section("Bootstrap")
	logger.Debug("Config directory: %s", dir)

	if err := seedCatalogue(dir); err != nil {
		logger.Warn("Failed to write default catalogue: %v", err)
	}
	catalogue, err := file.LoadCatalogue(dir)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Catalogue: %d categories from %s", catalogue.Categories.Len(), catalogue.Source)

	aiServices := ai.Initialise(*settings)
	m := metrics.New()

	reader := filesystem.NewReader(corpusRoot(dir, settings.Retrieval.CorpusRoot))
	ranker := services.NewRankerService(reader, aiServices.EmbeddingService, settings.Retrieval)
	ranker.SetMetrics(m)

	intents := services.NewIntentService(catalogue.Categories, aiServices.Classifier, settings.Intent)
	intents.SetTimeout(settings.Intent.Timeout)
	intents.SetMetrics(m)

	promptStore, err := file.NewPromptStore(filepath.Join(dir, "prompts"), services.DefaultPrompts())
	if err != nil {
		aiServices.Close()
		return nil, nil, err
	}
	prompts := services.NewPromptService(catalogue.Company)
	prompts.SetPromptStore(promptStore)

	registry := enhancers.NewRegistry()
	enhancers.RegisterDefaults(registry)
	pipeline, err := enhancers.BuildPipeline(registry, settings.Enhancer, catalogue.Company, nil)
	if err != nil {
		aiServices.Close()
		return nil, nil, fmt.Errorf("%w: enhancer stages: %w", domain.ErrInvalidInput, err)
	}

	chat := services.NewChatService(catalogue.Categories, catalogue.Company,
		intents, ranker, prompts, pipeline, aiServices.LLMService)
	chat.SetTurnTimeout(settings.Session.TurnTimeout)
	chat.SetGenerateOptions(driven.GenerateOptions{
		MaxTokens:   settings.LLM.MaxTokens,
		Temperature: settings.LLM.Temperature,
	})
	chat.SetMetrics(m)

	transcripts, err := openTranscripts(configStore.GetString(services.KeyTranscriptBackend), dir)
	if err != nil {
		aiServices.Close()
		return nil, nil, err
	}

	sessions := services.NewSessionManager(
		memory.NewSessionStore(settings.Session.TTL, 0), transcripts, chat, settings.Session)
	m.TrackActiveSessions(sessions.Active)

	partitions := catalogue.Categories.Partitions(catalogue.Categories.Names())
	watchDirs := append(reader.Dirs(partitions), promptStore.Dir())
	monitor := services.NewCorpusMonitor(filesystem.NewWatcher(watchDirs...))
	monitor.OnChange(func(path string) {
		logger.Info("Corpus changed: %s", path)
		if aiServices.Cache != nil {
			aiServices.Cache.Flush()
		}
		promptStore.Reload()
	})

	cleanup := func() {
		if err := transcripts.Close(); err != nil {
			logger.Warn("Failed to close transcript store: %v", err)
		}
		aiServices.Close()
	}

	return &cli.Services{
		Sessions:   sessions,
		Intents:    intents,
		Ranker:     ranker,
		Insights:   services.NewInsightService(catalogue.Company),
		Corpus:     services.NewCorpusService(catalogue.Categories, reader),
		Settings:   settingsService,
		Catalogue:  catalogue.Categories,
		Company:    catalogue.Company,
		Active:     sessions,
		Metrics:    m.Handler(),
		Monitor:    monitor,
		ServerAddr: configStore.GetString(services.KeyServerAddr),
	}, cleanup, nil
}

func configDir(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv("CONCIERGE_CONFIG_DIR"); env != "" {
		return env, nil
	}
	return file.DefaultDir()
}

// corpusRoot resolves a relative corpus root against the config directory.
func corpusRoot(configDir, root string) string {
	if root == "" || filepath.IsAbs(root) {
		return root
	}
	return filepath.Join(configDir, root)
}

// seedCatalogue writes the built-in catalogue so it can be edited.
func seedCatalogue(dir string) error {
	path := filepath.Join(dir, file.CatalogueFileName)
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, file.DefaultCatalogueTOML(), 0o600)
}

func openTranscripts(backend, dir string) (driven.TranscriptStore, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", backendMemory:
		return memory.NewTranscriptStore(), nil
	case backendSQLite:
		store, err := sqlite.NewStore(filepath.Join(dir, "data"))
		if err != nil {
			return nil, fmt.Errorf("opening transcript database: %w", err)
		}
		return store.TranscriptStore(), nil
	default:
		return nil, fmt.Errorf("%w: unknown transcript backend %q (use memory or sqlite)", domain.ErrInvalidInput, backend)
	}
}
