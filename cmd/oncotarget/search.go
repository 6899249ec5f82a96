package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nishad/oncotarget/internal/embeddings"
	"github.com/nishad/oncotarget/internal/hybrid"
	"github.com/nishad/oncotarget/internal/repository"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Hybrid full-text + vector search over ingested chunks",
	Long: `Runs the query against both the Bleve full-text index and a
brute-force cosine scan over embedded chunks, fuses the two rank-ordered
streams by Reciprocal Rank Fusion, and prints the top results (spec.md
§4.9).`,
	Example: `  oncotarget search "KRAS G12D resistance mechanisms"
  oncotarget search "BRAF V600E melanoma" --limit 5`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "max results to print")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := repository.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	chunkIndex, err := hybrid.OpenChunkIndex(cfg.DataDirectory)
	if err != nil {
		return fmt.Errorf("open chunk index: %w", err)
	}
	defer chunkIndex.Close()

	embedder, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}
	defer embedder.Close()

	var queryVector []float32
	if embedder.Dimension() > 0 {
		vecs, err := embedder.EmbedBatch(ctx, []string{query})
		if err != nil {
			return fmt.Errorf("embed query: %w", err)
		}
		if len(vecs) > 0 {
			queryVector = vecs[0]
		}
	}

	searcher := hybrid.NewSearcher(chunkIndex, repo)
	hcfg := hybrid.DefaultConfig()
	hcfg.Limit = searchLimit
	hcfg.RRFK = cfg.Hybrid.RRFKonstant
	if cfg.Hybrid.FTSCandidates > 0 {
		hcfg.PreFusionLimit = cfg.Hybrid.FTSCandidates
	}

	results, ftsErr, vecErr := searcher.Search(ctx, query, queryVector, hcfg)
	if ftsErr != nil {
		fmt.Printf("warning: full-text stream failed: %v\n", ftsErr)
	}
	if vecErr != nil {
		fmt.Printf("warning: vector stream failed: %v\n", vecErr)
	}
	if ftsErr != nil && vecErr != nil {
		return fmt.Errorf("both search streams failed")
	}

	for i, r := range results {
		c, err := repo.GetChunkByID(ctx, r.ChunkID)
		if err != nil {
			fmt.Printf("%d. [score=%.3f hybrid=%v] (chunk %s unreadable: %v)\n", i+1, r.Score, r.IsHybrid, r.ChunkID, err)
			continue
		}
		paper, err := repo.GetPaper(ctx, c.PaperID)
		title := "(unknown paper)"
		if err == nil && paper.Title != "" {
			title = paper.Title
		}
		fmt.Printf("%d. [score=%.3f hybrid=%v] %s\n    %s\n", i+1, r.Score, r.IsHybrid, title, snippet(c.Content, 200))
	}
	return nil
}

func snippet(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
