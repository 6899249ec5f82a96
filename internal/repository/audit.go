package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// CreateAuditRow starts a new ingestion_audit checkpoint row for jobID.
// Re-running the same job id is idempotent: if a row already exists it
// is left untouched and no error is returned, so a caller can always
// call CreateAuditRow at job start without first checking for a prior
// attempt (spec.md §4.7 "ingestion jobs are idempotently re-runnable").
func (db *DB) CreateAuditRow(ctx context.Context, a *models.IngestionAudit) error {
	if a.StartedAt.IsZero() {
		a.StartedAt = ids.Now()
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = a.StartedAt
	}
	if a.Stage == "" {
		a.Stage = models.StageSearch
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO ingestion_audit (
			job_id, query, gene, mutation, cancer_type, stage,
			papers_found, papers_inserted, papers_duplicate, chunks_inserted,
			errors, started_at, updated_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO NOTHING
	`,
		a.JobID, a.Query, a.Gene, a.Mutation, a.CancerType, string(a.Stage),
		a.PapersFound, a.PapersInserted, a.PapersDuplicate, a.ChunksInserted,
		a.Errors, a.StartedAt, a.UpdatedAt, a.CompletedAt,
	)
	if err != nil {
		return apperrors.Wrap("repository.CreateAuditRow", err)
	}
	return nil
}

// GetAuditRow loads the checkpoint row for jobID, or a KindNotFound
// error if no job with that id has been started.
func (db *DB) GetAuditRow(ctx context.Context, jobID string) (*models.IngestionAudit, error) {
	row := db.QueryRowContext(ctx, `
		SELECT job_id, query, gene, mutation, cancer_type, stage,
			papers_found, papers_inserted, papers_duplicate, chunks_inserted,
			errors, started_at, updated_at, completed_at
		FROM ingestion_audit WHERE job_id = ?
	`, jobID)
	return scanAuditRow(row)
}

// UpdateAuditStage advances a.Stage and rewrites the progress counters,
// bumping updated_at. Callers pass the audit row they currently hold;
// UpdateAuditStage persists its fields as given.
func (db *DB) UpdateAuditStage(ctx context.Context, a *models.IngestionAudit) error {
	a.UpdatedAt = ids.Now()
	res, err := db.ExecContext(ctx, `
		UPDATE ingestion_audit SET
			stage = ?, papers_found = ?, papers_inserted = ?, papers_duplicate = ?,
			chunks_inserted = ?, errors = ?, updated_at = ?
		WHERE job_id = ?
	`,
		string(a.Stage), a.PapersFound, a.PapersInserted, a.PapersDuplicate,
		a.ChunksInserted, a.Errors, a.UpdatedAt, a.JobID,
	)
	if err != nil {
		return apperrors.Wrap("repository.UpdateAuditStage", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap("repository.UpdateAuditStage", err)
	}
	if n == 0 {
		return apperrors.E(apperrors.Op("repository.UpdateAuditStage"), apperrors.KindNotFound, "no audit row for job "+a.JobID)
	}
	return nil
}

// CompleteAuditRow marks jobID's checkpoint complete, setting stage to
// models.StageComplete and recording completed_at.
func (db *DB) CompleteAuditRow(ctx context.Context, jobID string) error {
	now := ids.Now()
	res, err := db.ExecContext(ctx, `
		UPDATE ingestion_audit SET stage = ?, completed_at = ?, updated_at = ?
		WHERE job_id = ?
	`, string(models.StageComplete), now, now, jobID)
	if err != nil {
		return apperrors.Wrap("repository.CompleteAuditRow", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Wrap("repository.CompleteAuditRow", err)
	}
	if n == 0 {
		return apperrors.E(apperrors.Op("repository.CompleteAuditRow"), apperrors.KindNotFound, "no audit row for job "+jobID)
	}
	return nil
}

// ListIncompleteAuditRows returns every job whose completed_at is still
// NULL, letting a supervisor resume crashed/interrupted ingestion jobs
// on restart (spec.md §4.7).
func (db *DB) ListIncompleteAuditRows(ctx context.Context) ([]models.IngestionAudit, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT job_id, query, gene, mutation, cancer_type, stage,
			papers_found, papers_inserted, papers_duplicate, chunks_inserted,
			errors, started_at, updated_at, completed_at
		FROM ingestion_audit WHERE completed_at IS NULL
		ORDER BY started_at ASC
	`)
	if err != nil {
		return nil, apperrors.Wrap("repository.ListIncompleteAuditRows", err)
	}
	defer rows.Close()

	var out []models.IngestionAudit
	for rows.Next() {
		a, err := scanAuditRows(rows)
		if err != nil {
			return nil, apperrors.Wrap("repository.ListIncompleteAuditRows", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func scanAuditRow(row *sql.Row) (*models.IngestionAudit, error) {
	var a models.IngestionAudit
	var stage string
	err := row.Scan(
		&a.JobID, &a.Query, &a.Gene, &a.Mutation, &a.CancerType, &stage,
		&a.PapersFound, &a.PapersInserted, &a.PapersDuplicate, &a.ChunksInserted,
		&a.Errors, &a.StartedAt, &a.UpdatedAt, &a.CompletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.E(apperrors.Op("repository.GetAuditRow"), apperrors.KindNotFound, "no audit row found")
	}
	if err != nil {
		return nil, apperrors.Wrap("repository.GetAuditRow", err)
	}
	a.Stage = models.IngestionStage(stage)
	return &a, nil
}

func scanAuditRows(rows *sql.Rows) (*models.IngestionAudit, error) {
	var a models.IngestionAudit
	var stage string
	if err := rows.Scan(
		&a.JobID, &a.Query, &a.Gene, &a.Mutation, &a.CancerType, &stage,
		&a.PapersFound, &a.PapersInserted, &a.PapersDuplicate, &a.ChunksInserted,
		&a.Errors, &a.StartedAt, &a.UpdatedAt, &a.CompletedAt,
	); err != nil {
		return nil, err
	}
	a.Stage = models.IngestionStage(stage)
	return &a, nil
}
