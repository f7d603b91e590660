package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask the
concierge questions, classify intents and rank documents.

By default, the server communicates over stdio using JSON-RPC.

Use --addr to serve the streamable HTTP transport instead, which enables:
  - Testing with MCP Inspector web UI
  - Remote access via HTTP

Examples:
  # Stdio mode (default)
  concierge mcp serve

  # HTTP mode
  concierge mcp serve --addr 127.0.0.1:8090

Desktop assistant configuration:
  {
    "mcpServers": {
      "concierge": {
        "command": "/path/to/concierge",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

var mcpAddr string

func init() {
	mcpServeCmd.Flags().StringVar(&mcpAddr, "addr", "", "HTTP listen address (empty = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func mcpPorts() *mcp.Ports {
	return &mcp.Ports{
		Sessions:  sessionService,
		Intents:   intentDetector,
		Ranker:    documentRanker,
		Insights:  insightService,
		Corpus:    corpusService,
		Catalogue: catalogue,
	}
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	server, err := mcp.NewServer(mcpPorts())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stopMonitor := startMonitor(ctx)
	defer stopMonitor()

	if mcpAddr != "" {
		cmd.PrintErrf("MCP server listening on http://%s\n", mcpAddr)
		return server.RunHTTP(ctx, mcpAddr)
	}

	return server.Run(ctx)
}
