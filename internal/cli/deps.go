package cli

import (
	"fmt"
	"time"

	"finrag/config"
	"finrag/internal/adapter/completion"
	"finrag/internal/adapter/embedding"
	"finrag/internal/adapter/extractor"
	"finrag/internal/adapter/index"
	"finrag/internal/adapter/store"
	"finrag/internal/port"
)

// openStore opens the chunk record file, creating the data directory first.
func openStore(cfg *config.Config) (*store.JSONLStore, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return store.NewJSONLStore(cfg.DocsPath())
}

// openIndex opens the persisted index artifact. Callers must Close it.
func openIndex(cfg *config.Config) (*index.BoltIndex, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return index.OpenBoltIndex(cfg.IndexPath())
}

// newEmbedder creates the configured embedding client. A missing API key is a
// hard failure, not a degraded mode.
func newEmbedder(cfg *config.Config) (port.Embedder, error) {
	switch cfg.Embedding.Provider {
	case "mistral":
		return embedding.NewMistral(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "openai":
		return embedding.NewOpenAI(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model)
	case "ollama":
		return embedding.NewOllama(cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "compatible":
		return embedding.NewCompatible(cfg.Embedding.APIKeyEnv, cfg.Embedding.Model, cfg.Embedding.BaseURL)
	case "mock":
		return embedding.NewMock(cfg.Embedding.Dimension), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Embedding.Provider)
	}
}

// newCompleter creates the chat completion client.
func newCompleter(cfg *config.Config) (port.Completer, error) {
	timeout := time.Duration(cfg.Completion.TimeoutSeconds) * time.Second
	return completion.New(cfg.Completion.APIKeyEnv, cfg.Completion.Model, cfg.Completion.BaseURL, timeout)
}

// newExtractor creates the document text extractor.
func newExtractor(cfg *config.Config) (port.Extractor, error) {
	switch cfg.Extractor.Provider {
	case "mistral":
		return extractor.NewMistral(cfg.Extractor.APIKeyEnv, cfg.Extractor.Model, cfg.Extractor.BaseURL)
	case "local":
		return extractor.NewLocal(), nil
	default:
		return nil, fmt.Errorf("unsupported extractor provider: %s", cfg.Extractor.Provider)
	}
}
