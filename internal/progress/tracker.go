package progress

import (
	"context"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/repository"
)

// Tracker persists the durable per-job checkpoint the teacher's
// SQLite-backed Progress/Checkpoint pair used to track a single bulk
// download. Here it wraps repository's ingestion_audit CRUD instead of
// owning its own tables, since one repository.DB already backs the
// whole pipeline (spec.md §4.7).
type Tracker struct {
	repo *repository.DB
}

// NewTracker wraps repo for checkpoint persistence.
func NewTracker(repo *repository.DB) *Tracker {
	return &Tracker{repo: repo}
}

// StartOrResume begins tracking jobID, or returns its existing
// checkpoint row unchanged if the job was already started — re-running
// an ingestion job with the same id resumes rather than restarts it
// (spec.md §4.7). The returned bool reports whether an existing row was
// resumed.
func (t *Tracker) StartOrResume(ctx context.Context, jobID, query, gene string, mutation *string, cancerType string) (*models.IngestionAudit, bool, error) {
	existing, err := t.repo.GetAuditRow(ctx, jobID)
	if err == nil {
		return existing, true, nil
	}
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		return nil, false, apperrors.Wrap("progress.StartOrResume", err)
	}

	a := &models.IngestionAudit{
		JobID:      jobID,
		Query:      query,
		Gene:       gene,
		Mutation:   mutation,
		CancerType: cancerType,
		Stage:      models.StageSearch,
	}
	if err := t.repo.CreateAuditRow(ctx, a); err != nil {
		return nil, false, apperrors.Wrap("progress.StartOrResume", err)
	}
	return a, false, nil
}

// AdvanceStage persists a's current counters and stage, and broadcasts
// an EventPipelineStage on bus if bus is non-nil. Pass a nil bus to
// persist a checkpoint without live notification.
func (t *Tracker) AdvanceStage(ctx context.Context, bus *Bus, a *models.IngestionAudit, stage models.IngestionStage) error {
	a.Stage = stage
	if err := t.repo.UpdateAuditStage(ctx, a); err != nil {
		return apperrors.Wrap("progress.AdvanceStage", err)
	}
	if bus != nil {
		bus.Publish(Event{
			Kind:  EventPipelineStage,
			JobID: a.JobID,
			Stage: string(stage),
			Gene:  a.Gene,
		})
	}
	return nil
}

// RecordPaper bumps a's paper counters in memory; callers should follow
// with AdvanceStage (or a final Complete) to persist them.
func (t *Tracker) RecordPaper(a *models.IngestionAudit, inserted bool) {
	a.PapersFound++
	if inserted {
		a.PapersInserted++
	} else {
		a.PapersDuplicate++
	}
}

// RecordChunks bumps a's chunk counter in memory.
func (t *Tracker) RecordChunks(a *models.IngestionAudit, n int) {
	a.ChunksInserted += n
}

// Fail records errMsg against a's checkpoint without marking it
// complete, so a subsequent StartOrResume call picks the job back up.
func (t *Tracker) Fail(ctx context.Context, a *models.IngestionAudit, errMsg string) error {
	a.Errors = &errMsg
	if err := t.repo.UpdateAuditStage(ctx, a); err != nil {
		return apperrors.Wrap("progress.Fail", err)
	}
	return nil
}

// Complete marks jobID's checkpoint done and publishes a final
// EventPipelineStage if bus is non-nil.
func (t *Tracker) Complete(ctx context.Context, bus *Bus, a *models.IngestionAudit) error {
	if err := t.repo.CompleteAuditRow(ctx, a.JobID); err != nil {
		return apperrors.Wrap("progress.Complete", err)
	}
	a.Stage = models.StageComplete
	if bus != nil {
		bus.Publish(Event{
			Kind:  EventPipelineStage,
			JobID: a.JobID,
			Stage: string(models.StageComplete),
			Gene:  a.Gene,
		})
	}
	return nil
}

// Incomplete returns every checkpoint row not yet completed, letting a
// supervisor resume jobs left over from a crashed process.
func (t *Tracker) Incomplete(ctx context.Context) ([]models.IngestionAudit, error) {
	rows, err := t.repo.ListIncompleteAuditRows(ctx)
	if err != nil {
		return nil, apperrors.Wrap("progress.Incomplete", err)
	}
	return rows, nil
}
