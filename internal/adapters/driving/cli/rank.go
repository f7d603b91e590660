package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/core/domain"
	"github.com/custodia-labs/concierge/internal/core/services"
)

var (
	rankCategories []string
	rankLimit      int
	rankJSON       bool
)

var rankCmd = &cobra.Command{
	Use:   "rank [utterance]",
	Short: "Rank corpus documents against an utterance",
	Long: `Rank the documents of the matching categories by semantic similarity.

Categories are detected from the utterance unless --category is given.
Unreadable files are reported and skipped.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRank,
}

func init() {
	rankCmd.Flags().StringSliceVarP(&rankCategories, "category", "c", nil, "categories to search (repeatable)")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "maximum number of documents (0 = configured top-k)")
	rankCmd.Flags().BoolVar(&rankJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(rankCmd)
}

type rankOutput struct {
	Categories []string                `json:"categories"`
	Documents  []domain.RankedDocument `json:"documents"`
	Issues     []string                `json:"issues,omitempty"`
}

func runRank(cmd *cobra.Command, args []string) error {
	if documentRanker == nil || catalogue == nil {
		return errors.New("document ranker not configured")
	}

	ctx := cmd.Context()
	utterance := services.SanitizeInput(strings.Join(args, " "))

	categories := rankCategories
	if len(categories) == 0 {
		if intentDetector == nil {
			return errors.New("intent detector not configured")
		}
		categories = intentDetector.Detect(ctx, utterance).Categories
	}
	for _, c := range categories {
		if _, ok := catalogue.Get(c); !ok {
			return fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, c)
		}
	}

	docs, issues, err := documentRanker.Rank(ctx, utterance, catalogue.Partitions(categories))
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}
	if rankLimit > 0 && len(docs) > rankLimit {
		docs = docs[:rankLimit]
	}

	out := rankOutput{Categories: categories, Documents: docs}
	for _, issue := range issues {
		out.Issues = append(out.Issues, issue.Error())
	}

	if rankJSON {
		return printJSON(cmd, out)
	}

	cmd.Printf("Categories: %s\n\n", strings.Join(categories, ", "))
	if len(docs) == 0 {
		cmd.Println("No documents above the similarity threshold.")
	}
	for i := range docs {
		cmd.Printf("  [%d] %s/%s (%.3f)\n", i+1, docs[i].Partition, docs[i].ID, docs[i].Score)
		if corpusService != nil {
			cmd.Printf("      %s\n", corpusService.Summary(docs[i].Content))
		}
	}
	for _, issue := range out.Issues {
		cmd.Printf("Warning: %s\n", issue)
	}
	return nil
}
