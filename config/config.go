package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the finrag dashboard and CLI.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Completion CompletionConfig `yaml:"completion"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Ingest     IngestConfig     `yaml:"ingest"`
	Retrieve   RetrieveConfig   `yaml:"retrieve"`
	Cleanup    CleanupConfig    `yaml:"cleanup"`
	Auth       AuthConfig       `yaml:"auth"`
	Server     ServerConfig     `yaml:"server"`
}

// StoreConfig locates the document store and the index artifact.
type StoreConfig struct {
	Dir       string `yaml:"dir"`        // data directory
	DocsFile  string `yaml:"docs_file"`  // line-delimited chunk records
	IndexFile string `yaml:"index_file"` // serialized flat-index artifact
}

// EmbeddingConfig holds embedding provider configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "mistral", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g. "mistral-embed"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable for the API key
	BaseURL   string `yaml:"base_url"`    // override for self-hosted endpoints
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// CompletionConfig holds chat-completion provider configuration.
type CompletionConfig struct {
	Model          string `yaml:"model"`
	APIKeyEnv      string `yaml:"api_key_env"`
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ExtractorConfig selects how uploaded PDFs are turned into markdown.
type ExtractorConfig struct {
	Provider  string `yaml:"provider"` // "mistral" (remote OCR) or "local"
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
}

// IngestConfig holds ingestion thresholds.
type IngestConfig struct {
	MinChunkChars int `yaml:"min_chunk_chars"` // chunks at or below this are noise
	MinWords      int `yaml:"min_words"`       // reject extracted text below this
	MaxWords      int `yaml:"max_words"`       // reject extracted text above this
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK         int `yaml:"top_k"`
	ContextChars int `yaml:"context_chars"` // cap on chat context size
}

// CleanupConfig holds the near-duplicate merge threshold.
type CleanupConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
}

// AuthConfig locates the credentials file.
type AuthConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr       string `yaml:"addr"`
	StagingDir string `yaml:"staging_dir"` // where uploads land before extraction
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Dir:       "db",
			DocsFile:  "docs.jsonl",
			IndexFile: "index.db",
		},
		Embedding: EmbeddingConfig{
			Provider:  "mistral",
			Model:     "mistral-embed",
			APIKeyEnv: "MISTRAL_API_KEY",
			Dimension: 1024,
			BatchSize: 100,
		},
		Completion: CompletionConfig{
			Model:          "mistral-large-latest",
			APIKeyEnv:      "MISTRAL_API_KEY",
			TimeoutSeconds: 120,
		},
		Extractor: ExtractorConfig{
			Provider:  "mistral",
			Model:     "mistral-small-2407",
			APIKeyEnv: "MISTRAL_API_KEY",
		},
		Ingest: IngestConfig{
			MinChunkChars: 50,
			MinWords:      50,
			MaxWords:      8000,
		},
		Retrieve: RetrieveConfig{
			TopK:         5,
			ContextChars: 8000,
		},
		Cleanup: CleanupConfig{
			SimilarityThreshold: 0.97,
		},
		Auth: AuthConfig{
			CredentialsFile: "credentials.yaml",
		},
		Server: ServerConfig{
			Addr:       ":8080",
			StagingDir: "staging",
		},
	}
}

// Load loads configuration from a YAML file, overlaying the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // defaults when no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for finrag.yaml,
// then .finrag/config.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "finrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".finrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// DocsPath returns the path to the chunk record file.
func (c *Config) DocsPath() string {
	return filepath.Join(c.Store.Dir, c.Store.DocsFile)
}

// IndexPath returns the path to the index artifact.
func (c *Config) IndexPath() string {
	return filepath.Join(c.Store.Dir, c.Store.IndexFile)
}

// EnsureDataDir ensures the data directory exists.
func (c *Config) EnsureDataDir() error {
	return os.MkdirAll(c.Store.Dir, 0755)
}
