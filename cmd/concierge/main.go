// Command concierge runs the business concierge chatbot.
package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/concierge/internal/adapters/driving/cli"
	"github.com/custodia-labs/concierge/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env file is normal; keys may come from the environment or config.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to load .env: %v", err)
	}

	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)

	err := cli.Execute()
	_ = logger.Sync()
	os.Exit(cli.ExitCode(err))
}
