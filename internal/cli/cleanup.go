package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"finrag/internal/usecase"
)

var cleanupThreshold float64

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Merge duplicate and near-duplicate chunks",
	Long: `Deduplicate the chunk store: exact duplicates are dropped and chunks whose
embeddings exceed the similarity threshold are merged, keeping the earlier
one. The index is rebuilt from the survivors.

Examples:
  finrag cleanup
  finrag cleanup --threshold 0.95`,
	RunE: runCleanup,
}

func init() {
	cleanupCmd.Flags().Float64Var(&cleanupThreshold, "threshold", 0, "cosine similarity merge threshold (default from config)")
	rootCmd.AddCommand(cleanupCmd)
}

func runCleanup(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	threshold := cfg.Cleanup.SimilarityThreshold
	if cleanupThreshold > 0 {
		threshold = cleanupThreshold
	}

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	cleaner := usecase.NewCleaner(st, embedder, idx, threshold)

	var bar *progressbar.ProgressBar
	result, err := cleaner.Run(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("[cyan]Comparing[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	})
	if err != nil {
		return fmt.Errorf("cleanup failed: %w", err)
	}

	fmt.Printf("\nCleanup complete:\n")
	fmt.Printf("  Chunks before:    %d\n", result.Before)
	fmt.Printf("  Exact duplicates: %d\n", result.ExactDuplicates)
	fmt.Printf("  Near duplicates:  %d (threshold %.2f)\n", result.NearDuplicates, threshold)
	fmt.Printf("  Chunks after:     %d\n", result.After)
	return nil
}
