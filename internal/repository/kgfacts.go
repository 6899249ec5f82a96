package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// InsertFact appends a new fact. If a current (valid_until IS NULL) fact
// already exists for the same (subject, predicate, object, source)
// combination, the caller is expected to have called SupersedeFact first;
// InsertFact itself never rewrites or deletes — kg_facts is append-only
// (spec.md §4.12 "facts are never overwritten").
func (db *DB) InsertFact(ctx context.Context, f *models.KgFact) error {
	if f.ID == ids.Nil {
		f.ID = ids.New()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = ids.Now()
	}
	if f.ValidFrom.IsZero() {
		f.ValidFrom = f.CreatedAt
	}
	if f.EvidenceCount == 0 {
		f.EvidenceCount = 1
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO kg_facts (
			id, subject_id, predicate, object_id, confidence, evidence_type, evidence_weight,
			pmid, doi, db, sample_size, study_type, evidence_count, created_at, valid_from, valid_until
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		f.ID.String(), f.SubjectID.String(), f.Predicate, f.ObjectID.String(), f.Confidence,
		string(f.EvidenceType), f.EvidenceWeight, f.PMID, f.DOI, f.DB, f.SampleSize, f.StudyType,
		f.EvidenceCount, f.CreatedAt, f.ValidFrom, f.ValidUntil,
	)
	return apperrors.Wrap("repository.InsertFact", err)
}

// SupersedeFact sets valid_until on a current fact, marking it no longer
// authoritative without deleting it. Safe to call on an already-superseded
// fact (it is a no-op, since the WHERE clause restricts to valid_until IS
// NULL).
func (db *DB) SupersedeFact(ctx context.Context, factID ids.ID) error {
	_, err := db.ExecContext(ctx, `
		UPDATE kg_facts SET valid_until = ? WHERE id = ? AND valid_until IS NULL
	`, ids.Now(), factID.String())
	return apperrors.Wrap("repository.SupersedeFact", err)
}

// FindCurrentFact returns the current (unsuperseded) fact matching the
// given (subject, predicate, object), if any — used by
// internal/aggregate before deciding whether to merge into an existing
// fact or insert a fresh one.
func (db *DB) FindCurrentFact(ctx context.Context, subjectID ids.ID, predicate string, objectID ids.ID) (*models.KgFact, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, subject_id, predicate, object_id, confidence, evidence_type, evidence_weight,
			pmid, doi, db, sample_size, study_type, evidence_count, created_at, valid_from, valid_until
		FROM kg_facts
		WHERE subject_id = ? AND predicate = ? AND object_id = ? AND valid_until IS NULL
		LIMIT 1
	`, subjectID.String(), predicate, objectID.String())
	f, err := scanFact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.E(apperrors.Op("repository.FindCurrentFact"), apperrors.KindNotFound, err)
	}
	if err != nil {
		return nil, apperrors.Wrap("repository.FindCurrentFact", err)
	}
	return f, nil
}

// ListCurrentFacts returns every unsuperseded fact touching subjectID,
// as either subject or object.
func (db *DB) ListCurrentFacts(ctx context.Context, subjectID ids.ID) ([]models.KgFact, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, subject_id, predicate, object_id, confidence, evidence_type, evidence_weight,
			pmid, doi, db, sample_size, study_type, evidence_count, created_at, valid_from, valid_until
		FROM kg_facts
		WHERE (subject_id = ? OR object_id = ?) AND valid_until IS NULL
	`, subjectID.String(), subjectID.String())
	if err != nil {
		return nil, apperrors.Wrap("repository.ListCurrentFacts", err)
	}
	defer rows.Close()

	var out []models.KgFact
	for rows.Next() {
		f, err := scanFactRow(rows)
		if err != nil {
			return nil, apperrors.Wrap("repository.ListCurrentFacts", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

// ListCurrentFactsBetween returns every unsuperseded fact directly
// relating subjectID and objectID — the query internal/kg.MeanConfidence
// uses to gather a (gene, cancer) pair's evidence set.
func (db *DB) ListCurrentFactsBetween(ctx context.Context, subjectID, objectID ids.ID) ([]models.KgFact, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, subject_id, predicate, object_id, confidence, evidence_type, evidence_weight,
			pmid, doi, db, sample_size, study_type, evidence_count, created_at, valid_from, valid_until
		FROM kg_facts
		WHERE subject_id = ? AND object_id = ? AND valid_until IS NULL
	`, subjectID.String(), objectID.String())
	if err != nil {
		return nil, apperrors.Wrap("repository.ListCurrentFactsBetween", err)
	}
	defer rows.Close()

	var out []models.KgFact
	for rows.Next() {
		f, err := scanFactRow(rows)
		if err != nil {
			return nil, apperrors.Wrap("repository.ListCurrentFactsBetween", err)
		}
		out = append(out, *f)
	}
	return out, rows.Err()
}

func scanFact(row *sql.Row) (*models.KgFact, error) {
	var f models.KgFact
	var idStr, subjectStr, objectStr string
	err := row.Scan(&idStr, &subjectStr, &f.Predicate, &objectStr, &f.Confidence, &f.EvidenceType,
		&f.EvidenceWeight, &f.PMID, &f.DOI, &f.DB, &f.SampleSize, &f.StudyType, &f.EvidenceCount,
		&f.CreatedAt, &f.ValidFrom, &f.ValidUntil)
	if err != nil {
		return nil, err
	}
	return finishFact(&f, idStr, subjectStr, objectStr)
}

func scanFactRow(rows *sql.Rows) (*models.KgFact, error) {
	var f models.KgFact
	var idStr, subjectStr, objectStr string
	err := rows.Scan(&idStr, &subjectStr, &f.Predicate, &objectStr, &f.Confidence, &f.EvidenceType,
		&f.EvidenceWeight, &f.PMID, &f.DOI, &f.DB, &f.SampleSize, &f.StudyType, &f.EvidenceCount,
		&f.CreatedAt, &f.ValidFrom, &f.ValidUntil)
	if err != nil {
		return nil, err
	}
	return finishFact(&f, idStr, subjectStr, objectStr)
}

func finishFact(f *models.KgFact, idStr, subjectStr, objectStr string) (*models.KgFact, error) {
	id, err := ids.Parse(idStr)
	if err != nil {
		return nil, err
	}
	subjectID, err := ids.Parse(subjectStr)
	if err != nil {
		return nil, err
	}
	objectID, err := ids.Parse(objectStr)
	if err != nil {
		return nil, err
	}
	f.ID, f.SubjectID, f.ObjectID = id, subjectID, objectID
	return f, nil
}
