package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store and index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	chunks, err := st.All()
	if err != nil {
		return err
	}

	roles := make(map[string]int)
	companies := make(map[string]int)
	for _, c := range chunks {
		for _, r := range c.Metadata.Roles {
			roles[r]++
		}
		if c.Metadata.Company != "" {
			companies[c.Metadata.Company]++
		}
	}

	fmt.Printf("Store: %s\n", cfg.DocsPath())
	fmt.Printf("  Chunks: %d\n", len(chunks))

	if len(roles) > 0 {
		fmt.Printf("  By role:\n")
		for _, r := range sortedKeys(roles) {
			fmt.Printf("    %-20s %d\n", r, roles[r])
		}
	}
	if len(companies) > 0 {
		fmt.Printf("  By company:\n")
		for _, c := range sortedKeys(companies) {
			fmt.Printf("    %-20s %d\n", c, companies[c])
		}
	}

	idx, err := openIndex(cfg)
	if err != nil {
		return err
	}
	defer idx.Close()

	n, err := idx.Count()
	if err != nil {
		return err
	}
	dim, err := idx.Dimension()
	if err != nil {
		return err
	}

	fmt.Printf("\nIndex: %s\n", cfg.IndexPath())
	fmt.Printf("  Vectors:   %d\n", n)
	if dim > 0 {
		fmt.Printf("  Dimension: %d\n", dim)
	}
	if n != len(chunks) {
		fmt.Printf("  Warning: index and store are out of sync, re-run ingest or seed\n")
	}
	return nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
