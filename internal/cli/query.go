package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"finrag/internal/usecase"
)

var (
	queryText    string
	queryRole    string
	queryCompany string
	queryTopK    int
	queryJSON    bool
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Retrieve the most relevant chunks for a query",
	Long: `Run raw similarity retrieval scoped to a role, without asking the chat
model. Useful for inspecting what context a chat answer would see.

Examples:
  finrag query -q "revenue by segment" --role ceo --company Acme
  finrag query -q "stock levels" --role inventory_manager -k 10 --json`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryText, "query", "q", "", "query text (required)")
	queryCmd.Flags().StringVar(&queryRole, "role", "", "role to retrieve as (required)")
	queryCmd.Flags().StringVar(&queryCompany, "company", "", "restrict to a company")
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of results (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	queryCmd.MarkFlagRequired("query")
	queryCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	retriever := usecase.NewRetriever(st, embedder, cfg.Retrieve.TopK)
	results, err := retriever.Retrieve(queryText, queryRole, queryCompany, queryTopK)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if queryJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No chunks visible to this role match the query.")
		return nil
	}

	for i, r := range results {
		fmt.Printf("--- %d. distance=%.4f", i+1, r.Distance)
		if r.Chunk.Metadata.Company != "" {
			fmt.Printf("  company=%s", r.Chunk.Metadata.Company)
		}
		if r.Chunk.Metadata.Source != "" {
			fmt.Printf("  source=%s", r.Chunk.Metadata.Source)
		}
		fmt.Printf("  roles=%s\n", strings.Join(r.Chunk.Metadata.Roles, ","))
		fmt.Println(r.Chunk.Content)
		fmt.Println()
	}
	return nil
}
