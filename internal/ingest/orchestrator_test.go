package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nishad/oncotarget/internal/aggregate"
	"github.com/nishad/oncotarget/internal/chunk"
	"github.com/nishad/oncotarget/internal/config"
	"github.com/nishad/oncotarget/internal/embeddings"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/progress"
	"github.com/nishad/oncotarget/internal/repository"
	"github.com/nishad/oncotarget/internal/sources"
)

func setupTestOrchestrator(t *testing.T, adapters []sources.Adapter) (*Orchestrator, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "oncotarget-ingest-test-*")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	repo, err := repository.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("repository.Open: %v", err)
	}

	embedder, err := embeddings.New(config.EmbeddingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("embeddings.New: %v", err)
	}

	o := &Orchestrator{
		Sources:              adapters,
		Repo:                 repo,
		Chunker:              chunk.New(),
		Embedder:             embedder,
		Aggregator:           aggregate.New(repo),
		Tracker:              progress.NewTracker(repo),
		Bus:                  progress.NewBus(),
		MaxConcurrentSources: 4,
	}
	return o, func() {
		repo.Close()
		os.RemoveAll(dir)
	}
}

func TestRunInsertsPapersFromAllAdapters(t *testing.T) {
	abstract := "KRAS G12D drives pancreatic cancer progression."
	pubmed := sources.NewMockAdapter("pubmed", []sources.PaperRecord{
		{SourceID: "1", Title: "KRAS paper", Abstract: &abstract, Source: "pubmed", PMID: strPtr("1")},
	})
	europepmc := sources.NewMockAdapter("europepmc", []sources.PaperRecord{
		{SourceID: "2", Title: "KRAS paper 2", Abstract: &abstract, Source: "europepmc", PMID: strPtr("2")},
	})

	o, cleanup := setupTestOrchestrator(t, []sources.Adapter{pubmed, europepmc})
	defer cleanup()

	mutation := "G12D"
	audit, err := o.Run(context.Background(), "job-1", Job{
		Query: "KRAS G12D pancreatic cancer", Gene: "KRAS", Mutation: &mutation,
		CancerType: "pancreatic cancer", MaxResults: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if audit.Stage != models.StageComplete {
		t.Errorf("got stage %v, want complete", audit.Stage)
	}
	if audit.PapersFound != 2 || audit.PapersInserted != 2 {
		t.Errorf("got found=%d inserted=%d, want 2, 2", audit.PapersFound, audit.PapersInserted)
	}
}

func TestRunIsolatesOneAdapterFailure(t *testing.T) {
	abstract := "BRAF V600E in melanoma."
	healthy := sources.NewMockAdapter("pubmed", []sources.PaperRecord{
		{SourceID: "1", Title: "BRAF paper", Abstract: &abstract, Source: "pubmed", PMID: strPtr("1")},
	})
	broken := sources.NewMockAdapter("crossref", nil).WithSearchError(context.DeadlineExceeded)

	o, cleanup := setupTestOrchestrator(t, []sources.Adapter{healthy, broken})
	defer cleanup()

	audit, err := o.Run(context.Background(), "job-2", Job{
		Query: "BRAF V600E melanoma", Gene: "BRAF", CancerType: "melanoma", MaxResults: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if audit.PapersFound != 1 {
		t.Errorf("got papers found %d, want 1 (broken adapter isolated)", audit.PapersFound)
	}
	if broken.SearchCalls() != 1 {
		t.Errorf("expected broken adapter to still be called once, got %d", broken.SearchCalls())
	}
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	abstract := "TP53 loss in ovarian cancer."
	adapter := sources.NewMockAdapter("pubmed", []sources.PaperRecord{
		{SourceID: "1", Title: "TP53 paper", Abstract: &abstract, Source: "pubmed", PMID: strPtr("1")},
	})

	o, cleanup := setupTestOrchestrator(t, []sources.Adapter{adapter})
	defer cleanup()

	job := Job{Query: "TP53 ovarian cancer", Gene: "TP53", CancerType: "ovarian cancer", MaxResults: 10}
	if _, err := o.Run(context.Background(), "job-3", job); err != nil {
		t.Fatalf("first Run: %v", err)
	}

	second, err := o.Run(context.Background(), "job-3", job)
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.Stage != models.StageComplete {
		t.Errorf("expected resumed completed job to stay complete")
	}
}

func TestRunFetchesFullTextWhenAdapterProvidesIt(t *testing.T) {
	abstract := "EGFR exon 19 deletion in lung adenocarcinoma."
	adapter := sources.NewMockAdapter("europepmc", []sources.PaperRecord{
		{SourceID: "PMC1", Title: "EGFR paper", Abstract: &abstract, Source: "europepmc"},
	}).WithFullText("PMC1", "Full body discussing EGFR exon 19 deletion mechanisms in depth.")

	o, cleanup := setupTestOrchestrator(t, []sources.Adapter{adapter})
	defer cleanup()

	audit, err := o.Run(context.Background(), "job-4", Job{
		Query: "EGFR exon 19 deletion lung adenocarcinoma", Gene: "EGFR", CancerType: "lung adenocarcinoma", MaxResults: 10,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if audit.ChunksInserted < 2 {
		t.Errorf("got %d chunks inserted, want at least 2 (abstract + full text)", audit.ChunksInserted)
	}
}

func strPtr(s string) *string { return &s }
