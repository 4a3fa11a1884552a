package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"finrag/internal/adapter/fs"
	"finrag/internal/domain"
	"finrag/internal/usecase"
)

var (
	ingestRole       string
	ingestCompany    string
	ingestStatement  string
	ingestFiscalYear string
	ingestUser       string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [files...]",
	Short: "Extract and ingest financial documents",
	Long: `Extract text from the given documents, split it into chunks and store them
with the given role visibility. Glob patterns are supported.

Examples:
  finrag ingest --role ceo --company Acme acme_2024.pdf
  finrag ingest --role owner "reports/**/*.pdf"
  finrag ingest --role owner reports/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

// documentPatterns are the file types picked up when ingesting a directory.
var documentPatterns = []string{"**/*.pdf", "**/*.md", "**/*.markdown", "**/*.txt"}

func init() {
	ingestCmd.Flags().StringVar(&ingestRole, "role", "", "role that may see the ingested chunks (required)")
	ingestCmd.Flags().StringVar(&ingestCompany, "company", "", "company the document belongs to")
	ingestCmd.Flags().StringVar(&ingestStatement, "statement", "", "statement type, e.g. balance_sheet")
	ingestCmd.Flags().StringVar(&ingestFiscalYear, "fiscal-year", "", "fiscal year of the document")
	ingestCmd.Flags().StringVar(&ingestUser, "user", "", "username recorded as the uploader")
	ingestCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(ingestCmd)
}

// collectFiles resolves the argument list into document paths. Directories
// are walked for known document types; everything else goes through glob
// expansion.
func collectFiles(args []string) ([]string, error) {
	var patterns []string
	var paths []string

	walker := fs.NewWalker(documentPatterns, nil)
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			found, err := walker.Walk(arg)
			if err != nil {
				return nil, fmt.Errorf("failed to walk %s: %w", arg, err)
			}
			paths = append(paths, found...)
			continue
		}
		patterns = append(patterns, arg)
	}

	if len(patterns) > 0 {
		expanded, err := fs.ExpandPatterns(patterns)
		if err != nil {
			return nil, fmt.Errorf("failed to expand patterns: %w", err)
		}
		paths = append(paths, expanded...)
	}
	return paths, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	paths, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no files match the given patterns")
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
	ext, err := newExtractor(cfg)
	if err != nil {
		return err
	}

	ingestor := usecase.NewIngestor(st, embedder, idx, cfg.Ingest.MinChunkChars)

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)

	var totalAdded, totalDropped int
	var failures []string

	for _, path := range paths {
		bar.Describe(fmt.Sprintf("[cyan]Ingesting[reset] %s", filepath.Base(path)))

		text, err := ext.Extract(path)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			bar.Add(1)
			continue
		}
		if err := usecase.ValidateExtractedText(text, cfg.Ingest.MinWords, cfg.Ingest.MaxWords); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			bar.Add(1)
			continue
		}

		meta := domain.Metadata{
			Roles:      []string{ingestRole},
			Company:    ingestCompany,
			Statement:  ingestStatement,
			FiscalYear: ingestFiscalYear,
			Source:     filepath.Base(path),
			User:       ingestUser,
		}
		result, err := ingestor.IngestText(text, meta)
		if err != nil {
			return fmt.Errorf("ingestion failed for %s: %w", path, err)
		}
		totalAdded += result.ChunksAdded
		totalDropped += result.ChunksDropped
		bar.Add(1)
	}

	total, err := st.Count()
	if err != nil {
		return err
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Files processed: %d\n", len(paths)-len(failures))
	fmt.Printf("  Chunks added:    %d\n", totalAdded)
	fmt.Printf("  Chunks dropped:  %d (noise)\n", totalDropped)
	fmt.Printf("  Store total:     %d\n", total)

	if len(failures) > 0 {
		fmt.Printf("\nFailures:\n")
		for _, f := range failures {
			fmt.Printf("  - %s\n", f)
		}
	}
	return nil
}
