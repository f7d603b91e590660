package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/logger"
)

var (
	askJSON    bool
	askProfile profileFlags
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask the concierge one question and print the reply.

A short-lived session is opened for the question and closed afterwards,
so the turn is recorded in the transcript store like any other.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the full turn as JSON")
	askProfile.bind(askCmd)
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	ctx := cmd.Context()
	session, err := sessionService.Start(ctx, askProfile.profile())
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		if err := sessionService.End(context.WithoutCancel(ctx), session.ID); err != nil {
			logger.Warn("Failed to end session %s: %v", session.ID, err)
		}
	}()

	turn, err := sessionService.Ask(ctx, session.ID, strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, turn)
	}

	cmd.Println(turn.Reply)
	if verbose {
		cmd.Println()
		cmd.Printf("Intent: %s %v (%.2f)\n", turn.Intent.Method, turn.Intent.Categories, turn.Intent.RoundedConfidence())
		cmd.Printf("Source: %s in %s\n", turn.Source, turn.Duration)
		for _, doc := range turn.Documents {
			cmd.Printf("  - %s\n", doc)
		}
	}
	return nil
}
