package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

var corpusJSON bool

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Inspect the document corpus",
	Long:  `Show statistics, validate documents and search the corpus by keyword.`,
}

var corpusStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document counts and sizes per category",
	Args:  cobra.NoArgs,
	RunE:  runCorpusStats,
}

var corpusValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Report missing partitions and low-quality documents",
	Args:  cobra.NoArgs,
	RunE:  runCorpusValidate,
}

var corpusSearchCmd = &cobra.Command{
	Use:   "search [words...]",
	Short: "Find documents containing any of the words",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCorpusSearch,
}

func init() {
	corpusCmd.PersistentFlags().BoolVar(&corpusJSON, "json", false, "output as JSON")
	corpusCmd.AddCommand(corpusStatsCmd)
	corpusCmd.AddCommand(corpusValidateCmd)
	corpusCmd.AddCommand(corpusSearchCmd)
	rootCmd.AddCommand(corpusCmd)
}

func runCorpusStats(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	stats, err := corpusService.Stats()
	if err != nil {
		return fmt.Errorf("failed to read corpus: %w", err)
	}
	if corpusJSON {
		return printJSON(cmd, stats)
	}

	cmd.Printf("%-24s %6s %10s %10s\n", "CATEGORY", "FILES", "BYTES", "AVERAGE")
	for _, s := range stats {
		if !s.Exists {
			cmd.Printf("%-24s %6s\n", s.Category, "missing")
			continue
		}
		cmd.Printf("%-24s %6d %10d %10.0f\n", s.Category, s.FileCount, s.TotalSize, s.AverageSize())
	}
	return nil
}

func runCorpusValidate(cmd *cobra.Command, _ []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	problems, err := corpusService.Validate(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to validate corpus: %w", err)
	}
	if corpusJSON {
		return printJSON(cmd, problems)
	}

	if len(problems) == 0 {
		cmd.Println("Corpus is valid.")
		return nil
	}
	for _, p := range problems {
		cmd.Printf("[%s] %s: %s\n", p.Kind, p.Path, p.Message)
	}
	return fmt.Errorf("%w: %d corpus problems found", domain.ErrInvalidInput, len(problems))
}

func runCorpusSearch(cmd *cobra.Command, args []string) error {
	if corpusService == nil {
		return errors.New("corpus service not configured")
	}

	hits, err := corpusService.SearchKeywords(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if corpusJSON {
		return printJSON(cmd, hits)
	}

	if len(hits) == 0 {
		cmd.Println("No documents found.")
		return nil
	}
	for i := range hits {
		doc := hits[i].Document
		cmd.Printf("  [%d] %s/%s (%d matches, %.2f)\n", i+1, doc.Partition, doc.ID, hits[i].Matches, hits[i].Relevance)
		cmd.Printf("      %s\n", corpusService.Summary(doc.Content))
	}
	return nil
}
