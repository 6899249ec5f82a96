// Command oncotarget is the CLI shell around the target-discovery
// engine: ingest literature for a (gene, mutation, cancer_type) brief,
// run hybrid search over the ingested chunks, and compute a versioned
// composite target score. Grounded on cmd/srake/main.go's cobra root
// command wiring, trimmed to this engine's three operations plus a
// narrow progress-polling server (spec.md §1 treats the CLI/HTTP shell
// as an external collaborator, not a core component).
package main

import (
	"fmt"
	"os"

	"github.com/nishad/oncotarget/internal/config"
	"github.com/nishad/oncotarget/internal/obslog"
	"github.com/nishad/oncotarget/internal/paths"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-alpha"
	commit  = "dev"
)

var (
	cfgPath  string
	logPath  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:     "oncotarget",
	Short:   "Autonomous oncology target-discovery engine",
	Version: fmt.Sprintf("%s (commit: %s)", version, commit),
	Long: `oncotarget ingests oncology literature, indexes it for hybrid
full-text + vector retrieval, extracts named entities, and produces a
versioned composite ranking of candidate cancer targets.`,
	Example: `  # Ingest literature for a (gene, mutation, cancer_type) brief
  oncotarget ingest --gene KRAS --mutation G12D --cancer-type "pancreatic cancer"

  # Hybrid search over ingested chunks
  oncotarget search "KRAS G12D resistance mechanisms"

  # Compute a composite target score
  oncotarget score --gene KRAS --cancer-type "pancreatic cancer"

  # Serve live ingestion progress over HTTP
  oncotarget serve --port 8080`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		obslog.Init(logPath, logLevel)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config.yaml (default: platform config dir)")
	rootCmd.PersistentFlags().StringVar(&logPath, "log-file", "", "write logs to this file instead of stdout")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(serveCmd)
}

func loadConfig() (*config.Config, error) {
	path := cfgPath
	if path == "" {
		path = config.GetConfigPath()
	}
	return config.Load(path)
}

func main() {
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to create directories: %v\n", err)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
