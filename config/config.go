package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for ppdrag.
type Config struct {
	Ingest    IngestConfig    `yaml:"ingest"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Prompt    PromptConfig    `yaml:"prompt"`
	LLM       LLMConfig       `yaml:"llm"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// IngestConfig controls source discovery and chunking.
type IngestConfig struct {
	DataDir      string   `yaml:"data_dir" validate:"required"`
	Includes     []string `yaml:"includes"`
	Excludes     []string `yaml:"excludes"`
	ChunkSize    int      `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap int      `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
	CSVMaxRows   int      `yaml:"csv_max_rows" validate:"gte=0"` // 0 = unlimited
}

type IndexConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider" validate:"oneof=hashing openai"`
	Model     string `yaml:"model" validate:"required_if=Provider openai"` // e.g., "text-embedding-3-small"
	BaseURL   string `yaml:"base_url" validate:"omitempty,url"`
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	Dimension int    `yaml:"dimension" validate:"gte=0"`
	BatchSize int    `yaml:"batch_size" validate:"gt=0"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK           int     `yaml:"top_k" validate:"gt=0"`
	ScoreTopK      int     `yaml:"score_top_k" validate:"gt=0"`
	MinScore       float64 `yaml:"min_score"` // Filter results below this score (0 = disabled)
	QueryCacheSize int     `yaml:"query_cache_size" validate:"gte=0"`
}

// PromptConfig bounds how much of each retrieved chunk reaches the model.
type PromptConfig struct {
	ChatChunkChars  int `yaml:"chat_chunk_chars" validate:"gt=0"`
	ScoreChunkChars int `yaml:"score_chunk_chars" validate:"gt=0"`
}

// LLMConfig points at an OpenAI-compatible chat completion endpoint.
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url" validate:"required,url"`
	Model       string        `yaml:"model" validate:"required"`
	APIKeyEnv   string        `yaml:"api_key_env" validate:"required"`
	Temperature float32       `yaml:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Ingest: IngestConfig{
			DataDir:      filepath.Join("data", "pdfs"),
			Includes:     []string{"*.pdf", "*.csv", "*.txt", "*.md"},
			ChunkSize:    900,
			ChunkOverlap: 150,
		},
		Index: IndexConfig{
			Dir: "rag_index",
		},
		Embedding: EmbeddingConfig{
			Provider:  "hashing",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 384,
			BatchSize: 64,
		},
		Retrieve: RetrieveConfig{
			TopK:           5,
			ScoreTopK:      10,
			QueryCacheSize: 256,
		},
		Prompt: PromptConfig{
			ChatChunkChars:  1200,
			ScoreChunkChars: 1400,
		},
		LLM: LLMConfig{
			BaseURL:     "https://api.featherless.ai/v1",
			Model:       "deepseek-ai/DeepSeek-V3-0324",
			APIKeyEnv:   "FEATHERLESS_API_KEY",
			Temperature: 0.7,
			Timeout:     60 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for ppdrag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "ppdrag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".ppdrag", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Validate checks field constraints declared in struct tags.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DataDir resolves the source document directory against the project dir.
func (c *Config) DataDir(dir string) string {
	return resolve(dir, c.Ingest.DataDir)
}

// IndexDir resolves the index artifact directory against the project dir.
func (c *Config) IndexDir(dir string) string {
	return resolve(dir, c.Index.Dir)
}

func resolve(base, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
