// Package cli implements the concierge command line.
package cli

import (
	"context"
	"errors"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/ports/driving"
	"github.com/custodia-labs/concierge/internal/logger"
)

// version is set at build time.
var version = "dev"

// annotationSkipBootstrap marks commands that run without services.
const annotationSkipBootstrap = "skip-bootstrap"

// Exit codes returned by ExitCode.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

var (
	verbose   bool
	configDir string
)

// Services wired into the commands.
var (
	sessionService  driving.SessionService
	intentDetector  driving.IntentDetector
	documentRanker  driving.DocumentRanker
	insightService  driving.InsightService
	corpusService   driving.CorpusService
	settingsService driving.SettingsService
	catalogue       *domain.Catalogue
	company         domain.Company
	activeSessions  ActiveCounter
	metricsHandler  http.Handler
	corpusMonitor   Monitor
	serverAddr      string
)

// ActiveCounter reports the number of live sessions.
type ActiveCounter interface {
	Active() int
}

// Monitor watches the corpus while long-running commands serve requests.
type Monitor interface {
	Start(ctx context.Context) error
	Stop()
}

// Services is the set of services the commands drive.
type Services struct {
	Sessions   driving.SessionService
	Intents    driving.IntentDetector
	Ranker     driving.DocumentRanker
	Insights   driving.InsightService
	Corpus     driving.CorpusService
	Settings   driving.SettingsService
	Catalogue  *domain.Catalogue
	Company    domain.Company
	Active     ActiveCounter
	Metrics    http.Handler
	Monitor    Monitor
	ServerAddr string
}

// Options carries global flag values to the bootstrap function.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// BootstrapFunc builds the services before a command runs.
// The returned cleanup is called once the command finishes.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, func(), error)

var (
	bootstrap BootstrapFunc
	cleanup   func()
)

var rootCmd = &cobra.Command{
	Use:   "concierge",
	Short: "A grounded business concierge chatbot",
	Long: `Concierge answers visitor questions about a company.

Each question is classified into the configured categories, the matching
corpus documents are ranked by semantic similarity, and a reply is generated
from the best documents. Replies fall back to deterministic text when no
model backend is available.`,
	SilenceUsage:      true,
	PersistentPreRunE: runBootstrap,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if cleanup != nil {
			cleanup()
			cleanup = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.concierge)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBootstrap sets the function that builds services before commands run.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices wires services directly, bypassing bootstrap.
func SetServices(s *Services) {
	sessionService = s.Sessions
	intentDetector = s.Intents
	documentRanker = s.Ranker
	insightService = s.Insights
	corpusService = s.Corpus
	settingsService = s.Settings
	catalogue = s.Catalogue
	company = s.Company
	activeSessions = s.Active
	metricsHandler = s.Metrics
	corpusMonitor = s.Monitor
	serverAddr = s.ServerAddr
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, domain.ErrInvalidInput):
		return ExitUsage
	default:
		return ExitFailure
	}
}

func runBootstrap(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if bootstrap == nil || cmd.Annotations[annotationSkipBootstrap] == "true" {
		return nil
	}

	services, done, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return err
	}
	SetServices(services)
	cleanup = done
	return nil
}
