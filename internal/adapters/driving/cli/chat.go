package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/adapters/driving/tui"
	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/logger"
)

var (
	chatPlain   bool
	chatProfile profileFlags
)

// quitWords end a line-mode chat.
var quitWords = map[string]bool{"quit": true, "exit": true, "bye": true}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the concierge",
	Long: `Start an interactive conversation with the concierge.

In a terminal the chat opens a full-screen interface with the transcript,
an input line and a status bar showing the detected intent. When input is
piped, or with --plain, questions are read line by line instead.

Type quit, exit or bye to end a line-mode chat.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatPlain, "plain", false, "use line mode even in a terminal")
	chatProfile.bind(chatCmd)
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errors.New("session service not configured")
	}

	ctx := cmd.Context()
	stop := startMonitor(ctx)
	defer stop()

	if !chatPlain && isTerminal() {
		app, err := tui.NewApp(&tui.Ports{
			Sessions: sessionService,
			Insights: insightService,
			Profile:  chatProfile.profile(),
			BotName:  botName(),
		})
		if err != nil {
			return fmt.Errorf("failed to create chat UI: %w", err)
		}
		return app.WithContext(ctx).Run()
	}

	return runLineChat(ctx, cmd, chatProfile.profile())
}

func runLineChat(ctx context.Context, cmd *cobra.Command, profile domain.UserProfile) error {
	session, err := sessionService.Start(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		if err := sessionService.End(context.WithoutCancel(ctx), session.ID); err != nil {
			logger.Warn("Failed to end session %s: %v", session.ID, err)
		}
	}()

	name := botName()
	if insightService != nil {
		cmd.Printf("%s: %s\n\n", name, insightService.ConversationStarter(session.Profile))
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("You: ")
		if !scanner.Scan() {
			cmd.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if quitWords[strings.ToLower(line)] {
			cmd.Printf("%s: Thank you for chatting with us. Goodbye!\n", name)
			break
		}

		turn, err := sessionService.Ask(ctx, session.ID, line)
		if errors.Is(err, domain.ErrSessionLimit) {
			cmd.Printf("%s: This conversation has reached its turn limit. Please start a new chat.\n", name)
			break
		}
		if err != nil {
			return err
		}

		cmd.Printf("\n%s: %s\n\n", name, turn.Reply)
		if insightService != nil {
			for _, q := range insightService.SuggestFollowups(turn.Intent) {
				cmd.Printf("  > %s\n", q)
			}
			cmd.Println()
		}
	}

	return scanner.Err()
}
