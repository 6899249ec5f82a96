package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/nishad/oncotarget/internal/aggregate"
	"github.com/nishad/oncotarget/internal/chunk"
	"github.com/nishad/oncotarget/internal/embeddings"
	"github.com/nishad/oncotarget/internal/hybrid"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/ingest"
	"github.com/nishad/oncotarget/internal/ner"
	"github.com/nishad/oncotarget/internal/progress"
	"github.com/nishad/oncotarget/internal/repository"
	"github.com/nishad/oncotarget/internal/sources"
)

var (
	ingestGene       string
	ingestMutation   string
	ingestCancerType string
	ingestQuery      string
	ingestMaxResults int
	ingestJobID      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest literature for a (gene, mutation, cancer_type) research brief",
	Long: `Fans out over every configured literature source adapter, dedups and
chunks the returned papers, indexes the chunks for hybrid search, extracts
entities, and aggregates co-occurrences — re-running the same --job-id is
an idempotent no-op once the job has completed (spec.md §4.7).`,
	Example: `  oncotarget ingest --gene KRAS --mutation G12D --cancer-type "pancreatic cancer"
  oncotarget ingest --gene BRAF --cancer-type melanoma --job-id braf-melanoma-2026-07`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestGene, "gene", "", "gene symbol (required)")
	ingestCmd.Flags().StringVar(&ingestMutation, "mutation", "", "mutation, e.g. G12D (optional)")
	ingestCmd.Flags().StringVar(&ingestCancerType, "cancer-type", "", "cancer type, e.g. \"pancreatic cancer\" (required)")
	ingestCmd.Flags().StringVar(&ingestQuery, "query", "", "literature search query (defaults to \"<gene> <mutation> <cancer-type>\")")
	ingestCmd.Flags().IntVar(&ingestMaxResults, "max-results", 100, "max results requested per source")
	ingestCmd.Flags().StringVar(&ingestJobID, "job-id", "", "job id (defaults to a fresh id; reuse to resume/check idempotency)")
	_ = ingestCmd.MarkFlagRequired("gene")
	_ = ingestCmd.MarkFlagRequired("cancer-type")
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := repository.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	adapters, err := sources.Build(cfg.Ingestion.SourcesEnabled, cfg.Ingestion.PerSourceRateLimit)
	if err != nil {
		return fmt.Errorf("build source adapters: %w", err)
	}

	embedder, err := embeddings.New(cfg.Embeddings)
	if err != nil {
		return fmt.Errorf("build embedder: %w", err)
	}
	defer embedder.Close()

	chunkIndex, err := hybrid.OpenChunkIndex(cfg.DataDirectory)
	if err != nil {
		return fmt.Errorf("open chunk index: %w", err)
	}
	defer chunkIndex.Close()

	orch := &ingest.Orchestrator{
		Sources:              adapters,
		Repo:                 repo,
		Chunker:              &chunk.Chunker{TokenBudget: cfg.Ingestion.ChunkTokenSize},
		Embedder:             embedder,
		Automaton:            ner.NewEmbedded(),
		Aggregator:           aggregate.New(repo),
		Tracker:              progress.NewTracker(repo),
		Bus:                  progress.NewBus(),
		ChunkIndex:           chunkIndex,
		MaxConcurrentSources: cfg.Ingestion.MaxConcurrentSources,
	}

	jobID := ingestJobID
	if jobID == "" {
		jobID = ids.New().String()
	}
	query := ingestQuery
	if query == "" {
		query = ingestGene + " " + ingestMutation + " " + ingestCancerType
	}

	var mutation *string
	if ingestMutation != "" {
		mutation = &ingestMutation
	}

	job := ingest.Job{
		Query:      query,
		Gene:       ingestGene,
		Mutation:   mutation,
		CancerType: ingestCancerType,
		MaxResults: ingestMaxResults,
	}

	jobLog := log.With().Str("job_id", jobID).Str("gene", ingestGene).Logger()
	jobLog.Info().Msg("starting ingestion job")

	audit, err := orch.Run(context.Background(), jobID, job)
	if err != nil {
		jobLog.Error().Err(err).Msg("ingestion job failed")
		return err
	}

	jobLog.Info().
		Str("stage", string(audit.Stage)).
		Int("papers_found", audit.PapersFound).
		Int("papers_inserted", audit.PapersInserted).
		Int("papers_duplicate", audit.PapersDuplicate).
		Int("chunks_inserted", audit.ChunksInserted).
		Msg("ingestion job finished")

	fmt.Printf("job %s: stage=%s papers_found=%d papers_inserted=%d papers_duplicate=%d chunks_inserted=%d\n",
		jobID, audit.Stage, audit.PapersFound, audit.PapersInserted, audit.PapersDuplicate, audit.ChunksInserted)
	return nil
}
