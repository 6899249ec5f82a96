// Package ingest orchestrates one research-brief ingestion job: fan out
// over literature source adapters, dedup/upsert papers, chunk and
// persist text, extract entities, aggregate co-occurrences, and
// back-fill embeddings (spec.md §4.7, control-flow diagram in §1).
package ingest

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nishad/oncotarget/internal/aggregate"
	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/chunk"
	"github.com/nishad/oncotarget/internal/dedup"
	"github.com/nishad/oncotarget/internal/embeddings"
	"github.com/nishad/oncotarget/internal/hybrid"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/ner"
	"github.com/nishad/oncotarget/internal/progress"
	"github.com/nishad/oncotarget/internal/repository"
	"github.com/nishad/oncotarget/internal/sources"
)

// Job describes one ingestion request: a (gene, mutation, cancer_type)
// research brief plus the literature query built from it.
type Job struct {
	Query          string
	Gene           string
	Mutation       *string
	CancerType     string
	MaxResults     int
	EmbedBatchSize int
}

// Orchestrator wires the per-job pipeline: adapters run concurrently
// (bounded by maxConcurrentSources, grounded on
// internal/search/builder.go's worker-pool idiom but using
// golang.org/x/sync/errgroup instead of hand-rolled channels), one
// adapter's failure is isolated and reported rather than aborting its
// siblings (spec.md §4.3), and every other stage runs against the
// shared repository.
type Orchestrator struct {
	Sources              []sources.Adapter
	Repo                 *repository.DB
	Chunker              *chunk.Chunker
	Embedder             embeddings.Embedder
	Automaton            *ner.Automaton
	Aggregator           *aggregate.Aggregator
	Tracker              *progress.Tracker
	Bus                  *progress.Bus
	ChunkIndex           *hybrid.ChunkIndex
	MaxConcurrentSources int
}

// sourceOutcome records one adapter's fan-out result so a failure can
// be reported without losing the successes of its siblings.
type sourceOutcome struct {
	adapterName string
	records     []sources.PaperRecord
	err         error
}

// Run executes jobID to completion (or resumes it if jobID already has
// an incomplete checkpoint), returning the final audit row. Re-running
// a completed jobID is a no-op that returns the existing row unchanged
// (spec.md §4.7, S5 idempotency).
func (o *Orchestrator) Run(ctx context.Context, jobID string, job Job) (*models.IngestionAudit, error) {
	const op = apperrors.Op("ingest.Orchestrator.Run")

	audit, resumed, err := o.Tracker.StartOrResume(ctx, jobID, job.Query, job.Gene, job.Mutation, job.CancerType)
	if err != nil {
		return nil, apperrors.Wrap(op, err)
	}
	if resumed && audit.Stage == models.StageComplete {
		return audit, nil
	}

	outcomes := o.searchAllSources(ctx, job)
	var records []sources.PaperRecord
	for _, out := range outcomes {
		if out.err != nil {
			o.Bus.Publish(progress.Event{
				Kind:    progress.EventPipelineStage,
				JobID:   jobID,
				Stage:   "search_error",
				Gene:    job.Gene,
				Message: fmt.Sprintf("%s: %v", out.adapterName, out.err),
			})
			continue
		}
		records = append(records, out.records...)
	}

	if err := o.Tracker.AdvanceStage(ctx, o.Bus, audit, models.StageUpsert); err != nil {
		return audit, apperrors.Wrap(op, err)
	}

	insertedPapers, err := o.upsertAndChunk(ctx, audit, records, o.adaptersByName())
	if err != nil {
		_ = o.Tracker.Fail(ctx, audit, err.Error())
		return audit, apperrors.Wrap(op, err)
	}

	if err := o.Tracker.AdvanceStage(ctx, o.Bus, audit, models.StageEmbed); err != nil {
		return audit, apperrors.Wrap(op, err)
	}

	batchSize := job.EmbedBatchSize
	if batchSize <= 0 {
		batchSize = 32
	}
	for _, paperID := range insertedPapers {
		if _, err := embeddings.Backfill(ctx, o.Repo, o.Embedder, paperID, batchSize); err != nil {
			// A backfill failure is logged via Fail but doesn't prevent
			// completing the job — retrieval degrades to FTS-only for
			// the affected paper's chunks until a later backfill pass
			// succeeds (spec.md §4.8: "cancellation propagates; a
			// cancelled back-fill leaves already-written vectors in
			// place").
			_ = o.Tracker.Fail(ctx, audit, err.Error())
		}
	}

	if err := o.Tracker.Complete(ctx, o.Bus, audit); err != nil {
		return audit, apperrors.Wrap(op, err)
	}
	return audit, nil
}

func (o *Orchestrator) adaptersByName() map[string]sources.Adapter {
	m := make(map[string]sources.Adapter, len(o.Sources))
	for _, a := range o.Sources {
		m[a.Name()] = a
	}
	return m
}

func (o *Orchestrator) searchAllSources(ctx context.Context, job Job) []sourceOutcome {
	outcomes := make([]sourceOutcome, len(o.Sources))

	g, gctx := errgroup.WithContext(ctx)
	limit := o.MaxConcurrentSources
	if limit <= 0 {
		limit = len(o.Sources)
	}
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, adapter := range o.Sources {
		i, adapter := i, adapter
		g.Go(func() error {
			records, err := adapter.Search(gctx, job.Query, job.MaxResults)
			outcomes[i] = sourceOutcome{adapterName: adapter.Name(), records: records, err: err}
			return nil // isolate: never abort sibling adapters on one failure
		})
	}
	_ = g.Wait()
	return outcomes
}

// upsertAndChunk upserts every record as a Paper, chunks+persists text
// for newly inserted papers, extracts entities, and aggregates
// co-occurrences. It returns the ids of papers that were newly
// inserted (the only ones needing an embedding backfill).
func (o *Orchestrator) upsertAndChunk(ctx context.Context, audit *models.IngestionAudit, records []sources.PaperRecord, adapters map[string]sources.Adapter) ([]ids.ID, error) {
	var inserted []ids.ID

	for _, rec := range records {
		paper := recordToPaper(rec)
		result, err := o.Repo.UpsertPaper(ctx, &paper)
		if err != nil {
			return inserted, err
		}
		o.Tracker.RecordPaper(audit, result.WasNew)
		if !result.WasNew {
			continue
		}
		inserted = append(inserted, result.PaperID)

		o.Bus.Publish(progress.Event{
			Kind:  progress.EventPaperIngested,
			JobID: audit.JobID,
			Stage: string(models.StageUpsert),
			Gene:  audit.Gene,
			Count: 1,
		})

		fullText := o.fetchFullText(ctx, adapters, rec)
		if fullText != nil {
			if err := o.Repo.SetParseStatus(ctx, result.PaperID, models.ParseStatusParsed, fullText, nil); err != nil {
				return inserted, err
			}
		}

		sections := sectionsForRecord(rec, fullText)
		chunks := o.Chunker.ChunkAll(sections)
		modelChunks := make([]models.Chunk, len(chunks))
		for i, c := range chunks {
			modelChunks[i] = models.Chunk{
				PaperID:    result.PaperID,
				ChunkIndex: c.ChunkIndex,
				Content:    c.Content,
				Section:    sectionLabel(c),
				Page:       c.Page,
			}
		}
		n, err := o.Repo.BulkInsertChunks(ctx, modelChunks)
		if err != nil {
			return inserted, err
		}
		o.Tracker.RecordChunks(audit, n)

		if o.ChunkIndex != nil {
			if err := o.ChunkIndex.BatchIndex(modelChunks); err != nil {
				// FTS indexing failure doesn't block ingestion — the
				// chunk is still queryable once a later re-index pass
				// succeeds; the vector stream still serves it.
				o.Bus.Publish(progress.Event{
					Kind:    progress.EventPipelineStage,
					JobID:   audit.JobID,
					Stage:   "fts_index_error",
					Message: err.Error(),
				})
			}
		}

		if err := o.extractEntities(ctx, result.PaperID, modelChunks); err != nil {
			return inserted, err
		}
		if _, err := o.Aggregator.AggregatePaper(ctx, result.PaperID); err != nil {
			return inserted, err
		}
	}

	return inserted, nil
}

func (o *Orchestrator) extractEntities(ctx context.Context, paperID ids.ID, chunks []models.Chunk) error {
	if o.Automaton == nil {
		return nil
	}
	for _, c := range chunks {
		spans := o.Automaton.Extract(c.Content)
		for _, span := range spans {
			entity := models.Entity{
				ExternalID: span.ExternalID,
				Name:       span.NormalizedName,
				EntityType: span.EntityType,
				SourceDB:   "embedded",
			}
			entityID, err := o.Repo.UpsertEntity(ctx, &entity)
			if err != nil {
				return err
			}
			mention := models.EntityMention{
				EntityID:    entityID,
				ChunkID:     c.ID,
				PaperID:     paperID,
				StartOffset: span.Start,
				EndOffset:   span.End,
				Text:        span.Text,
				Confidence:  span.Confidence,
			}
			if err := o.Repo.InsertEntityMention(ctx, &mention); err != nil {
				return err
			}
			o.Bus.Publish(progress.Event{
				Kind:  progress.EventEntityExtracted,
				Gene:  entity.Name,
				Count: 1,
			})
		}
	}
	return nil
}

func recordToPaper(rec sources.PaperRecord) models.Paper {
	p := models.Paper{
		DOI:         rec.DOI,
		PMID:        rec.PMID,
		PMCID:       rec.PMCID,
		Title:       rec.Title,
		Abstract:    rec.Abstract,
		Source:      rec.Source,
		PublishedAt: rec.PublishedAt,
		Authors:     rec.Authors,
		Journal:     rec.Journal,
		Volume:      rec.Volume,
		Issue:       rec.Issue,
		Pages:       rec.Pages,
	}
	if rec.Abstract != nil {
		simhash := dedup.SimHash(*rec.Abstract)
		p.AbstractSimHash = &simhash
	}
	return p
}

// fetchFullText asks rec's originating adapter for full text, isolating
// a fetch failure the same way search failures are isolated: logged via
// the bus, never fatal to the job.
func (o *Orchestrator) fetchFullText(ctx context.Context, adapters map[string]sources.Adapter, rec sources.PaperRecord) *string {
	adapter, ok := adapters[rec.Source]
	if !ok {
		return nil
	}
	text, err := adapter.FetchFullText(ctx, rec.SourceID)
	if err != nil {
		o.Bus.Publish(progress.Event{
			Kind:    progress.EventPipelineStage,
			Stage:   "full_text_error",
			Message: fmt.Sprintf("%s: %v", rec.Source, err),
		})
		return nil
	}
	return text
}

// sectionsForRecord builds the chunker's input sections from whatever
// text a source adapter returned: an abstract section always, plus a
// body section when full text was fetched.
func sectionsForRecord(rec sources.PaperRecord, fullText *string) []chunk.Section {
	var sections []chunk.Section
	if rec.Abstract != nil && strings.TrimSpace(*rec.Abstract) != "" {
		sections = append(sections, chunk.Section{Type: chunk.SectionAbstract, Heading: "Abstract", Text: *rec.Abstract})
	}
	if fullText != nil && strings.TrimSpace(*fullText) != "" {
		sections = append(sections, chunk.Section{Type: chunk.SectionBody, Heading: "Full Text", Text: *fullText})
	}
	return sections
}

func sectionLabel(c chunk.DocumentChunk) *string {
	s := string(c.SectionType)
	return &s
}
