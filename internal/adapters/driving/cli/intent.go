package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/core/services"
)

var intentJSON bool

var intentCmd = &cobra.Command{
	Use:   "intent [utterance]",
	Short: "Classify an utterance into categories",
	Long: `Detect the intent of an utterance.

Keyword matches win outright. Otherwise the zero-shot classifier scores
every category and the categories near the top score are kept. When
neither yields a category the fallback intent is returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIntent,
}

func init() {
	intentCmd.Flags().BoolVar(&intentJSON, "json", false, "output the intent as JSON")
	rootCmd.AddCommand(intentCmd)
}

func runIntent(cmd *cobra.Command, args []string) error {
	if intentDetector == nil {
		return errors.New("intent detector not configured")
	}

	utterance := services.SanitizeInput(strings.Join(args, " "))
	result := intentDetector.Detect(cmd.Context(), utterance)

	if intentJSON {
		return printJSON(cmd, result)
	}

	cmd.Printf("Method:     %s\n", result.Method)
	cmd.Printf("Categories: %s\n", strings.Join(result.Categories, ", "))
	cmd.Printf("Confidence: %.2f\n", result.RoundedConfidence())
	for _, d := range result.Details {
		switch {
		case d.Keyword != "":
			cmd.Printf("  - %s (keyword %q)\n", d.Category, d.Keyword)
		case d.Score > 0:
			cmd.Printf("  - %s (%.3f)\n", d.Category, d.Score)
		}
	}
	if offerings := company.MatchOfferings(utterance); len(offerings) > 0 {
		cmd.Println()
		cmd.Println("Related offerings:")
		for _, o := range offerings {
			if o.Description != "" {
				cmd.Printf("  * %s: %s\n", o.Name, o.Description)
			} else {
				cmd.Printf("  * %s\n", o.Name)
			}
		}
	}
	if insightService != nil {
		if followups := insightService.SuggestFollowups(result); len(followups) > 0 {
			cmd.Println()
			cmd.Println("Follow-ups:")
			for _, q := range followups {
				cmd.Printf("  > %s\n", q)
			}
		}
	}
	return nil
}
