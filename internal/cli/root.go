package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"finrag/config"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "finrag",
	Short: "Role-gated chat and dashboards over financial documents",
	Long: `finrag ingests financial reports (PDF or markdown), stores the extracted
tables as chunks with role-based visibility, and answers questions over them
with retrieval-augmented chat.

Example usage:
  finrag ingest --role ceo --company Acme report.pdf   # Ingest a report
  finrag query -q "revenue by segment" --role ceo      # Raw retrieval
  finrag ask -q "how did margins move?" --role owner   # One-shot answer
  finrag chat --role ceo --company Acme                # Interactive chat
  finrag serve                                         # Dashboard API`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./finrag.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "root directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}
