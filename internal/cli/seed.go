package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"finrag/internal/domain"
	"finrag/internal/usecase"
)

// seedChunk is one record in a seed file. The role field accepts a single
// string or a list of strings.
type seedChunk struct {
	Content  string   `yaml:"content"`
	Roles    seedRole `yaml:"role"`
	Company  string   `yaml:"company"`
	Source   string   `yaml:"source"`
	FiscYear string   `yaml:"fiscal_year"`
}

type seedRole []string

func (r *seedRole) UnmarshalYAML(value *yaml.Node) error {
	var list []string
	if err := value.Decode(&list); err == nil {
		*r = list
		return nil
	}
	var single string
	if err := value.Decode(&single); err != nil {
		return fmt.Errorf("role must be a string or a list of strings")
	}
	if single != "" {
		*r = []string{single}
	}
	return nil
}

var seedCmd = &cobra.Command{
	Use:   "seed [file]",
	Short: "Load seed chunks from a YAML file",
	Long: `Load pre-written chunks into the store, for bootstrapping a fresh
deployment with known-good data. The file is a YAML list of chunks:

  - content: "| Segment | Revenue | ..."
    role: [ceo, owner]
    company: Acme
    fiscal_year: "2024"`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seeds []seedChunk
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(seeds) == 0 {
		return fmt.Errorf("seed file contains no chunks")
	}

	chunks := make([]domain.Chunk, len(seeds))
	for i, s := range seeds {
		chunks[i] = domain.Chunk{
			Content: s.Content,
			Metadata: domain.Metadata{
				Roles:      s.Roles,
				Company:    s.Company,
				Source:     s.Source,
				FiscalYear: s.FiscYear,
			},
		}
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

	ingestor := usecase.NewIngestor(st, embedder, idx, cfg.Ingest.MinChunkChars)
	result, err := ingestor.IngestChunks(chunks)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Printf("Seeding complete:\n")
	fmt.Printf("  Chunks in file:  %d\n", len(seeds))
	fmt.Printf("  Chunks added:    %d\n", result.ChunksAdded)
	fmt.Printf("  Chunks dropped:  %d (noise)\n", result.ChunksDropped)
	fmt.Printf("  Store total:     %d\n", result.TotalChunks)
	return nil
}
