package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/adapters/driving/httpapi"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat HTTP API",
	Long: `Serve the JSON chat API for web front ends.

Sessions are created with POST /v1/sessions and questions are sent with
POST /v1/sessions/{id}/turns. /healthz reports liveness and /metrics exposes
Prometheus metrics.

The listen address comes from --addr, then the server.addr setting.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default "+httpapi.DefaultAddr+")")
	rootCmd.AddCommand(serveCmd)
}

func httpPorts() *httpapi.Ports {
	return &httpapi.Ports{
		Sessions:  sessionService,
		Intents:   intentDetector,
		Ranker:    documentRanker,
		Insights:  insightService,
		Catalogue: catalogue,
		Active:    activeSessions,
		Metrics:   metricsHandler,
		Version:   version,
	}
}

// listenAddr resolves the HTTP address from the flag, then settings.
func listenAddr() string {
	switch {
	case serveAddr != "":
		return serveAddr
	case serverAddr != "":
		return serverAddr
	default:
		return httpapi.DefaultAddr
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	server, err := httpapi.NewServer(httpPorts())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopMonitor := startMonitor(ctx)
	defer stopMonitor()

	addr := listenAddr()
	cmd.PrintErrf("Listening on http://%s\n", addr)
	return server.Run(ctx, addr)
}
