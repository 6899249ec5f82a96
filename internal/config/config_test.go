package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg == nil {
		t.Fatal("DefaultConfig returned nil")
	}

	if cfg.Database.JournalMode != "WAL" {
		t.Errorf("expected journal_mode WAL, got %q", cfg.Database.JournalMode)
	}
	if cfg.Database.CacheSize != 10000 {
		t.Errorf("expected cache_size 10000, got %d", cfg.Database.CacheSize)
	}

	if !cfg.Embeddings.Enabled {
		t.Error("expected embeddings to be enabled by default")
	}
	if cfg.Embeddings.Backend != BackendNative {
		t.Errorf("expected default backend %q, got %q", BackendNative, cfg.Embeddings.Backend)
	}
	if cfg.Embeddings.BatchSize != 32 {
		t.Errorf("expected batch_size 32, got %d", cfg.Embeddings.BatchSize)
	}

	if cfg.Hybrid.FTSWeight+cfg.Hybrid.VectorWeight != 1.0 {
		t.Errorf("default hybrid weights should sum to 1, got %v", cfg.Hybrid.FTSWeight+cfg.Hybrid.VectorWeight)
	}

	if err := cfg.Ranker.Weights.Validate(); err != nil {
		t.Errorf("default ranker weights should validate: %v", err)
	}

	if len(cfg.Ingestion.SourcesEnabled) != 6 {
		t.Errorf("expected 6 default ingestion sources, got %d", len(cfg.Ingestion.SourcesEnabled))
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	cfg, err := Load("/nonexistent/config.yaml")
	if err != nil {
		t.Fatalf("Load should return defaults for non-existent file, got error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected non-nil config for non-existent file")
	}
}

func TestLoadValidFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
data_directory: /tmp/oncotarget-test
database:
  path: /tmp/oncotarget-test/test.db
  cache_size: 5000
  journal_mode: WAL
embeddings:
  enabled: false
  backend: openai
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDirectory != "/tmp/oncotarget-test" {
		t.Errorf("expected data_directory /tmp/oncotarget-test, got %q", cfg.DataDirectory)
	}
	if cfg.Database.CacheSize != 5000 {
		t.Errorf("expected cache_size 5000, got %d", cfg.Database.CacheSize)
	}
	if cfg.Embeddings.Enabled {
		t.Error("expected embeddings to be disabled")
	}
	if cfg.Embeddings.Backend != BackendOpenAI {
		t.Errorf("expected backend openai, got %q", cfg.Embeddings.Backend)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	if err := os.WriteFile(configPath, []byte("invalid: yaml: [broken"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML, got nil")
	}
}

func TestLoadRejectsInvalidRankerWeights(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
ranker:
  weights:
    mutationfreq: 0.5
    crisprdependency: 0.5
    survivalcorrelation: 0.5
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if _, err := Load(configPath); err == nil {
		t.Error("expected error for ranker weights not summing to 1")
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.Database.CacheSize = 999
	cfg.Embeddings.Enabled = false

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Database.CacheSize != 999 {
		t.Errorf("expected cache_size 999, got %d", loaded.Database.CacheSize)
	}
	if loaded.Embeddings.Enabled {
		t.Error("expected embeddings to be disabled after save/load")
	}
}

func TestExpandPath(t *testing.T) {
	tests := []struct {
		name  string
		input string
		check func(string) bool
		desc  string
	}{
		{
			name:  "empty string",
			input: "",
			check: func(s string) bool { return s == "" },
			desc:  "should return empty string",
		},
		{
			name:  "absolute path",
			input: "/usr/local/bin",
			check: func(s string) bool { return s == "/usr/local/bin" },
			desc:  "should return unchanged",
		},
		{
			name:  "tilde expansion",
			input: "~/Documents",
			check: func(s string) bool { return s != "~/Documents" && len(s) > 0 },
			desc:  "should expand tilde",
		},
		{
			name:  "relative path",
			input: "relative/path",
			check: func(s string) bool { return s == "relative/path" },
			desc:  "should return unchanged",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if !tt.check(result) {
				t.Errorf("expandPath(%q) = %q, %s", tt.input, result, tt.desc)
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("ONCOTARGET_CONFIG", "/custom/config.yaml")
	path := GetConfigPath()
	if path != "/custom/config.yaml" {
		t.Errorf("expected /custom/config.yaml, got %q", path)
	}
}

func TestEnsureDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.DataDirectory = filepath.Join(dir, "data")
	cfg.Database.Path = filepath.Join(dir, "data", "test.db")
	cfg.Embeddings.ModelsDirectory = filepath.Join(dir, "data", "models")

	err := cfg.EnsureDirectories()
	if err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}

	if _, err := os.Stat(cfg.DataDirectory); os.IsNotExist(err) {
		t.Error("data directory was not created")
	}
}
