package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nishad/oncotarget/internal/paths"
	"github.com/nishad/oncotarget/internal/ranker"
	"gopkg.in/yaml.v3"
)

// Config is the oncology target-discovery engine's configuration.
type Config struct {
	DataDirectory string          `yaml:"data_directory"`
	Database      DatabaseConfig  `yaml:"database"`
	Hybrid        HybridConfig    `yaml:"hybrid"`
	Embeddings    EmbeddingConfig `yaml:"embeddings"`
	Ingestion     IngestionConfig `yaml:"ingestion"`
	Ranker        RankerConfig    `yaml:"ranker"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	CacheSize   int    `yaml:"cache_size"`   // in pages
	MMapSize    int64  `yaml:"mmap_size"`    // in bytes
	JournalMode string `yaml:"journal_mode"` // WAL
}

// HybridConfig tunes the FTS5+vector retrieval fusion (spec.md §4.9).
type HybridConfig struct {
	DefaultLimit  int     `yaml:"default_limit"`  // default result count
	FTSWeight     float64 `yaml:"fts_weight"`      // not applied: hybrid.Fuse weighs both streams equally
	VectorWeight  float64 `yaml:"vector_weight"`   // not applied: hybrid.Fuse weighs both streams equally
	RRFKonstant   float64 `yaml:"rrf_k"`           // reciprocal-rank-fusion k constant
	FTSCandidates int     `yaml:"fts_candidates"`  // candidates pulled per stream before fusion
}

// EmbeddingBackend selects which implementation EmbeddingConfig.Backend
// names.
type EmbeddingBackend string

const (
	BackendNative           EmbeddingBackend = "native"           // in-process ONNX Runtime + WordPiece tokenizer
	BackendOpenAI           EmbeddingBackend = "openai"
	BackendOpenAICompatible EmbeddingBackend = "openai_compatible" // any OpenAI-wire-compatible HTTP endpoint
	BackendGemini           EmbeddingBackend = "gemini"
	BackendOllama           EmbeddingBackend = "ollama"
	BackendLocalService     EmbeddingBackend = "local_service" // bespoke local HTTP embedding server
)

// EmbeddingConfig contains embedding-generation settings. Exactly one
// backend is active at a time, selected by Backend; the HTTP backends
// share BaseURL/APIKeyEnv/Model/Dimensions, the native backend uses
// ModelsDirectory/DefaultModel/DefaultVariant.
type EmbeddingConfig struct {
	Enabled         bool             `yaml:"enabled"`
	Backend         EmbeddingBackend `yaml:"backend"`
	ModelsDirectory string           `yaml:"models_directory"` // native backend: ONNX model cache dir
	DefaultModel    string           `yaml:"default_model"`    // native: HuggingFace model path; HTTP: model name
	DefaultVariant  string           `yaml:"default_variant"`  // native: quantized, fp16, or default
	BaseURL         string           `yaml:"base_url"`         // HTTP backends: endpoint (openai_compatible/ollama/local_service)
	APIKeyEnv       string           `yaml:"api_key_env"`      // HTTP backends: env var holding the API key
	Dimensions      int              `yaml:"dimensions"`       // expected embedding width, used for validation
	BatchSize       int              `yaml:"batch_size"`
	NumThreads      int              `yaml:"num_threads"`     // native backend: ONNX intra-op threads
	MaxTextLength   int              `yaml:"max_text_length"` // max tokens per chunk
	RequestTimeout  int              `yaml:"request_timeout_seconds"`
}

// IngestionConfig tunes the literature ingestion pipeline (spec.md §4.1-§4.7).
type IngestionConfig struct {
	MaxConcurrentSources int      `yaml:"max_concurrent_sources"`
	SourcesEnabled       []string `yaml:"sources_enabled"` // pubmed, europepmc, biorxiv, medrxiv, clinicaltrials, crossref
	PerSourceRateLimit   float64  `yaml:"per_source_rate_limit"` // requests/sec
	BioRxivSoftCap       int      `yaml:"biorxiv_soft_cap"`      // spec.md Open Question #2
	ChunkTokenSize        int     `yaml:"chunk_token_size"`
	ChunkTokenOverlap     int     `yaml:"chunk_token_overlap"`
}

// RankerConfig carries the nine composite weights plus the shortlist
// tier thresholds (spec.md §4.11).
type RankerConfig struct {
	Weights        ranker.Weights `yaml:"weights"`
	PrimaryTier    float64        `yaml:"primary_tier_threshold"`
	SecondaryTier  float64        `yaml:"secondary_tier_threshold"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	p := paths.GetPaths()

	return &Config{
		DataDirectory: p.DataDir,
		Database: DatabaseConfig{
			Path:        paths.GetDatabasePath(),
			CacheSize:   10000,     // 40MB
			MMapSize:    268435456, // 256MB
			JournalMode: "WAL",
		},
		Hybrid: HybridConfig{
			DefaultLimit:  50,
			FTSWeight:     0.5,
			VectorWeight:  0.5,
			RRFKonstant:   60,
			FTSCandidates: 200,
		},
		Embeddings: EmbeddingConfig{
			Enabled:         true,
			Backend:         BackendNative,
			ModelsDirectory: paths.GetModelsPath(),
			DefaultModel:    "Xenova/SapBERT-from-PubMedBERT-fulltext",
			DefaultVariant:  "quantized",
			Dimensions:      768,
			BatchSize:       32,
			NumThreads:      4,
			MaxTextLength:   512,
			RequestTimeout:  30,
		},
		Ingestion: IngestionConfig{
			MaxConcurrentSources: 4,
			SourcesEnabled:       []string{"pubmed", "europepmc", "biorxiv", "medrxiv", "clinicaltrials", "crossref"},
			PerSourceRateLimit:   3,
			BioRxivSoftCap:       10000,
			ChunkTokenSize:       512,
			ChunkTokenOverlap:    64,
		},
		Ranker: RankerConfig{
			Weights:       ranker.DefaultWeights(),
			PrimaryTier:   0.60,
			SecondaryTier: 0.45,
		},
	}
}

// Load loads configuration from a file, falling back to defaults for
// any field the file doesn't set.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.DataDirectory = expandPath(cfg.DataDirectory)
	cfg.Database.Path = expandPath(cfg.Database.Path)
	cfg.Embeddings.ModelsDirectory = expandPath(cfg.Embeddings.ModelsDirectory)

	if err := cfg.Ranker.Weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ranker weights: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to path as YAML.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the default config file path.
func GetConfigPath() string {
	if path := os.Getenv("ONCOTARGET_CONFIG"); path != "" {
		return path
	}
	if _, err := os.Stat("oncotarget.yaml"); err == nil {
		return "oncotarget.yaml"
	}
	p := paths.GetPaths()
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// EnsureDirectories creates the directories the configured paths need.
func (c *Config) EnsureDirectories() error {
	if err := paths.EnsureDirectories(); err != nil {
		return err
	}

	dirs := []string{
		c.DataDirectory,
		filepath.Dir(c.Database.Path),
		c.Embeddings.ModelsDirectory,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

func expandPath(path string) string {
	if len(path) == 0 {
		return path
	}
	if path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
