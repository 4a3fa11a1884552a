package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"finrag/internal/usecase"
)

var (
	askQuestion string
	askRole     string
	askCompany  string
	askSources  bool
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a one-shot question over the ingested documents",
	Long: `Retrieve role-scoped context and answer a single question with the chat
model.

Examples:
  finrag ask -q "how did operating margin develop?" --role ceo --company Acme
  finrag ask -q "which segment grew fastest?" --role owner --sources`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&askQuestion, "question", "q", "", "question to ask (required)")
	askCmd.Flags().StringVar(&askRole, "role", "", "role to answer as (required)")
	askCmd.Flags().StringVar(&askCompany, "company", "", "restrict to a company")
	askCmd.Flags().BoolVar(&askSources, "sources", false, "print the source chunks after the answer")
	askCmd.MarkFlagRequired("question")
	askCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}

	retriever := usecase.NewRetriever(st, embedder, cfg.Retrieve.TopK)
	answerer := usecase.NewAnswerer(retriever, completer, cfg.Retrieve.ContextChars)

	answer, sources, err := answerer.Answer(askQuestion, askRole, askCompany)
	if err != nil {
		fmt.Println(answer)
		return fmt.Errorf("completion failed: %w", err)
	}

	fmt.Println(answer)

	if askSources && len(sources) > 0 {
		fmt.Printf("\nSources:\n")
		for i, s := range sources {
			fmt.Printf("  %d. distance=%.4f source=%s\n", i+1, s.Distance, s.Chunk.Metadata.Source)
		}
	}
	return nil
}
