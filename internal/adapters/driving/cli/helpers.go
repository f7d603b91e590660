package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/logger"
)

// isTerminal reports whether stdin and stdout are both interactive.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// profileFlags binds visitor profile flags to a command.
type profileFlags struct {
	name        string
	email       string
	phone       string
	userType    string
	companySize string
	interest    string
	timeline    string
}

func (p *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.name, "name", "", "visitor name")
	cmd.Flags().StringVar(&p.email, "email", "", "visitor email")
	cmd.Flags().StringVar(&p.phone, "phone", "", "visitor phone number")
	cmd.Flags().StringVar(&p.userType, "user-type", "",
		"potential_client, job_seeker, information_seeker or general")
	cmd.Flags().StringVar(&p.companySize, "company-size", "", "visitor company size")
	cmd.Flags().StringVar(&p.interest, "interest", "", "visitor area of interest")
	cmd.Flags().StringVar(&p.timeline, "timeline", "", "visitor project timeline")
}

func (p *profileFlags) profile() domain.UserProfile {
	return domain.UserProfile{
		Name:        p.name,
		Email:       p.email,
		Phone:       p.phone,
		UserType:    domain.UserType(p.userType),
		CompanySize: p.companySize,
		Interest:    p.interest,
		Timeline:    p.timeline,
	}
}

func (p *profileFlags) reset() {
	*p = profileFlags{}
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func botName() string {
	if company.BotName != "" {
		return company.BotName
	}
	return "Concierge"
}

// startMonitor watches the corpus in the background and returns a stop function.
func startMonitor(ctx context.Context) func() {
	if corpusMonitor == nil {
		return func() {}
	}
	go func() {
		if err := corpusMonitor.Start(ctx); err != nil {
			// Watching is best effort; serving continues without it.
			logger.Warn("Corpus watching stopped: %v", err)
		}
	}()
	return corpusMonitor.Stop
}
