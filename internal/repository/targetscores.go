package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// InsertTargetScore persists a new scored (gene, cancer) version,
// flipping is_current off the prior row for the same pair inside the
// same transaction (target_scores keeps every version, spec.md §4.14
// "scores are versioned, never overwritten").
func (db *DB) InsertTargetScore(ctx context.Context, s *models.TargetScore) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap("repository.InsertTargetScore", err)
	}
	defer tx.Rollback()

	var maxVersion sql.NullInt64
	if err := tx.QueryRowContext(ctx, `
		SELECT MAX(score_version) FROM target_scores WHERE gene_id = ? AND cancer_id = ?
	`, s.GeneID.String(), s.CancerID.String()).Scan(&maxVersion); err != nil {
		return apperrors.Wrap("repository.InsertTargetScore", err)
	}

	s.ScoreVersion = int(maxVersion.Int64) + 1
	s.IsCurrent = true
	if s.CreatedAt.IsZero() {
		s.CreatedAt = ids.Now()
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE target_scores SET is_current = 0 WHERE gene_id = ? AND cancer_id = ? AND is_current = 1
	`, s.GeneID.String(), s.CancerID.String()); err != nil {
		return apperrors.Wrap("repository.InsertTargetScore", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO target_scores (
			gene_id, cancer_id, penalty, composite_score, confidence_adjusted_score,
			shortlist_tier, score_version, is_current, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
	`, s.GeneID.String(), s.CancerID.String(), s.Penalty, s.CompositeScore, s.ConfidenceAdjustedScore,
		string(s.ShortlistTier), s.ScoreVersion, s.CreatedAt); err != nil {
		return apperrors.Wrap("repository.InsertTargetScore", err)
	}

	return apperrors.Wrap("repository.InsertTargetScore", tx.Commit())
}

// GetCurrentTargetScore returns the current (latest) score for a
// (gene, cancer) pair.
func (db *DB) GetCurrentTargetScore(ctx context.Context, geneID, cancerID ids.ID) (*models.TargetScore, error) {
	row := db.QueryRowContext(ctx, `
		SELECT gene_id, cancer_id, penalty, composite_score, confidence_adjusted_score,
			shortlist_tier, score_version, is_current, created_at
		FROM target_scores WHERE gene_id = ? AND cancer_id = ? AND is_current = 1
	`, geneID.String(), cancerID.String())
	s, err := scanTargetScore(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.E(apperrors.Op("repository.GetCurrentTargetScore"), apperrors.KindNotFound, err)
	}
	if err != nil {
		return nil, apperrors.Wrap("repository.GetCurrentTargetScore", err)
	}
	return s, nil
}

// ListShortlist returns the current scores in a given tier, highest
// confidence-adjusted score first — the ranker shortlist's storage-layer
// view.
func (db *DB) ListShortlist(ctx context.Context, tier models.ShortlistTier, limit int) ([]models.TargetScore, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT gene_id, cancer_id, penalty, composite_score, confidence_adjusted_score,
			shortlist_tier, score_version, is_current, created_at
		FROM target_scores
		WHERE shortlist_tier = ? AND is_current = 1
		ORDER BY confidence_adjusted_score DESC
		LIMIT ?
	`, string(tier), limit)
	if err != nil {
		return nil, apperrors.Wrap("repository.ListShortlist", err)
	}
	defer rows.Close()

	var out []models.TargetScore
	for rows.Next() {
		s, err := scanTargetScoreRow(rows)
		if err != nil {
			return nil, apperrors.Wrap("repository.ListShortlist", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListShortlistSorted is ListShortlist with a caller-chosen sort column,
// validated against allowedSortColumns to keep the dynamic ORDER BY safe
// from injection.
func (db *DB) ListShortlistSorted(ctx context.Context, tier models.ShortlistTier, sortColumn string, limit int) ([]models.TargetScore, error) {
	if err := ValidateSortColumn(sortColumn); err != nil {
		return nil, apperrors.E(apperrors.Op("repository.ListShortlistSorted"), apperrors.KindValidation, err)
	}
	rows, err := db.QueryContext(ctx, `
		SELECT gene_id, cancer_id, penalty, composite_score, confidence_adjusted_score,
			shortlist_tier, score_version, is_current, created_at
		FROM target_scores
		WHERE shortlist_tier = ? AND is_current = 1
		ORDER BY `+sortColumn+` DESC
		LIMIT ?
	`, string(tier), limit)
	if err != nil {
		return nil, apperrors.Wrap("repository.ListShortlistSorted", err)
	}
	defer rows.Close()

	var out []models.TargetScore
	for rows.Next() {
		s, err := scanTargetScoreRow(rows)
		if err != nil {
			return nil, apperrors.Wrap("repository.ListShortlistSorted", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// GetTargetScoreHistory returns every version recorded for a
// (gene, cancer) pair, oldest first.
func (db *DB) GetTargetScoreHistory(ctx context.Context, geneID, cancerID ids.ID) ([]models.TargetScore, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT gene_id, cancer_id, penalty, composite_score, confidence_adjusted_score,
			shortlist_tier, score_version, is_current, created_at
		FROM target_scores WHERE gene_id = ? AND cancer_id = ?
		ORDER BY score_version ASC
	`, geneID.String(), cancerID.String())
	if err != nil {
		return nil, apperrors.Wrap("repository.GetTargetScoreHistory", err)
	}
	defer rows.Close()

	var out []models.TargetScore
	for rows.Next() {
		s, err := scanTargetScoreRow(rows)
		if err != nil {
			return nil, apperrors.Wrap("repository.GetTargetScoreHistory", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func scanTargetScore(row *sql.Row) (*models.TargetScore, error) {
	var s models.TargetScore
	var geneStr, cancerStr string
	err := row.Scan(&geneStr, &cancerStr, &s.Penalty, &s.CompositeScore, &s.ConfidenceAdjustedScore,
		&s.ShortlistTier, &s.ScoreVersion, &s.IsCurrent, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return finishTargetScore(&s, geneStr, cancerStr)
}

func scanTargetScoreRow(rows *sql.Rows) (*models.TargetScore, error) {
	var s models.TargetScore
	var geneStr, cancerStr string
	err := rows.Scan(&geneStr, &cancerStr, &s.Penalty, &s.CompositeScore, &s.ConfidenceAdjustedScore,
		&s.ShortlistTier, &s.ScoreVersion, &s.IsCurrent, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return finishTargetScore(&s, geneStr, cancerStr)
}

func finishTargetScore(s *models.TargetScore, geneStr, cancerStr string) (*models.TargetScore, error) {
	geneID, err := ids.Parse(geneStr)
	if err != nil {
		return nil, err
	}
	cancerID, err := ids.Parse(cancerStr)
	if err != nil {
		return nil, err
	}
	s.GeneID, s.CancerID = geneID, cancerID
	return s, nil
}
