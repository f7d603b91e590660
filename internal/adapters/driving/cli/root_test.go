package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "concierge", rootCmd.Use)
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"chat", "ask", "intent", "rank", "corpus", "settings", "serve", "mcp", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestRootCmd_GlobalFlags(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config-dir"))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"invalid input", fmt.Errorf("bad flag: %w", domain.ErrInvalidInput), ExitUsage},
		{"other", errors.New("network down"), ExitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestRunBootstrap_InstallsServices(t *testing.T) {
	defer SetBootstrap(nil)
	defer SetServices(&Services{})

	var gotOpts Options
	cleaned := false
	SetBootstrap(func(_ context.Context, opts Options) (*Services, func(), error) {
		gotOpts = opts
		return &Services{Catalogue: testCatalogue(), ServerAddr: "127.0.0.1:9999"}, func() { cleaned = true }, nil
	})

	cmd := &cobra.Command{Use: "status"}
	configDir = "/tmp/concierge-test"
	defer func() { configDir = "" }()

	require.NoError(t, runBootstrap(cmd, nil))
	assert.Equal(t, "/tmp/concierge-test", gotOpts.ConfigDir)
	assert.Equal(t, "127.0.0.1:9999", serverAddr)
	require.NotNil(t, catalogue)

	rootCmd.PersistentPostRun(rootCmd, nil)
	assert.True(t, cleaned)
}

func TestRunBootstrap_SkipsAnnotatedCommands(t *testing.T) {
	defer SetBootstrap(nil)

	called := false
	SetBootstrap(func(context.Context, Options) (*Services, func(), error) {
		called = true
		return &Services{}, nil, nil
	})

	require.NoError(t, runBootstrap(versionCmd, nil))
	assert.False(t, called)
}

func TestRunBootstrap_PropagatesError(t *testing.T) {
	defer SetBootstrap(nil)

	SetBootstrap(func(context.Context, Options) (*Services, func(), error) {
		return nil, nil, errBoom
	})

	err := runBootstrap(&cobra.Command{Use: "status"}, nil)
	assert.ErrorIs(t, err, errBoom)
}
