package cli

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"finrag/internal/adapter/auth"
	"finrag/internal/server"
	"finrag/internal/usecase"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard API server",
	Long: `Serve the dashboard API: login, role-scoped retrieval and chat, document
upload and the per-role landing view. Requires a credentials file generated
with "finrag users generate".`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger := log.New(os.Stdout, "[FINRAG] ", log.LstdFlags)

	creds, err := auth.LoadCredentials(cfg.Auth.CredentialsFile)
	if err != nil {
		return err
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
	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}
	ext, err := newExtractor(cfg)
	if err != nil {
		return err
	}

	ingestor := usecase.NewIngestor(st, embedder, idx, cfg.Ingest.MinChunkChars)
	retriever := usecase.NewRetriever(st, embedder, cfg.Retrieve.TopK)
	answerer := usecase.NewAnswerer(retriever, completer, cfg.Retrieve.ContextChars)

	srv := server.New(cfg, logger, creds, ingestor, answerer, retriever, ext)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
