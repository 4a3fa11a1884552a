package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"finrag/internal/tui"
	"finrag/internal/usecase"
)

var (
	chatRole    string
	chatCompany string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat over the ingested documents",
	Long: `Start a terminal chat session scoped to a role. Every answer is grounded
in the chunks visible to that role.

Examples:
  finrag chat --role ceo --company Acme
  finrag chat --role owner`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatRole, "role", "", "role to chat as (required)")
	chatCmd.Flags().StringVar(&chatCompany, "company", "", "restrict to a company")
	chatCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
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

	p := tea.NewProgram(tui.New(answerer, chatRole, chatCompany), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
