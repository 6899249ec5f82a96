package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// UpsertEntity inserts e, or returns the existing entity sharing its
// (ExternalID, SourceDB) key.
func (db *DB) UpsertEntity(ctx context.Context, e *models.Entity) (ids.ID, error) {
	var existing string
	err := db.QueryRowContext(ctx, `SELECT id FROM entities WHERE external_id = ? AND source_db = ?`,
		e.ExternalID, e.SourceDB).Scan(&existing)
	if err == nil {
		return ids.Parse(existing)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ids.Nil, apperrors.Wrap("repository.UpsertEntity", err)
	}

	if e.ID == ids.Nil {
		e.ID = ids.New()
	}
	now := ids.Now()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err = db.ExecContext(ctx, `
		INSERT INTO entities (id, external_id, name, canonical_name, entity_type, source_db,
			mention_count_total, paper_count, last_seen, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, NULL, ?, ?)
	`, e.ID.String(), e.ExternalID, e.Name, e.CanonicalName, string(e.EntityType), e.SourceDB, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueConstraintErr(err) {
			var idStr string
			if ferr := db.QueryRowContext(ctx, `SELECT id FROM entities WHERE external_id = ? AND source_db = ?`,
				e.ExternalID, e.SourceDB).Scan(&idStr); ferr == nil {
				return ids.Parse(idStr)
			}
		}
		return ids.Nil, apperrors.Wrap("repository.UpsertEntity", err)
	}
	return e.ID, nil
}

// GetEntity fetches an entity by id.
func (db *DB) GetEntity(ctx context.Context, id ids.ID) (*models.Entity, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, external_id, name, canonical_name, entity_type, source_db,
			mention_count_total, paper_count, last_seen, created_at, updated_at
		FROM entities WHERE id = ?
	`, id.String())
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.E(apperrors.Op("repository.GetEntity"), apperrors.KindNotFound, err)
	}
	if err != nil {
		return nil, apperrors.Wrap("repository.GetEntity", err)
	}
	return e, nil
}

// FindEntityByExternalID fetches an entity by its (external_id,
// source_db) key.
func (db *DB) FindEntityByExternalID(ctx context.Context, externalID, sourceDB string) (*models.Entity, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, external_id, name, canonical_name, entity_type, source_db,
			mention_count_total, paper_count, last_seen, created_at, updated_at
		FROM entities WHERE external_id = ? AND source_db = ?
	`, externalID, sourceDB)
	e, err := scanEntity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.E(apperrors.Op("repository.FindEntityByExternalID"), apperrors.KindNotFound, err)
	}
	if err != nil {
		return nil, apperrors.Wrap("repository.FindEntityByExternalID", err)
	}
	return e, nil
}

func scanEntity(row *sql.Row) (*models.Entity, error) {
	var e models.Entity
	var idStr string
	err := row.Scan(&idStr, &e.ExternalID, &e.Name, &e.CanonicalName, &e.EntityType, &e.SourceDB,
		&e.MentionCountTotal, &e.PaperCount, &e.LastSeen, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	id, err := ids.Parse(idStr)
	if err != nil {
		return nil, err
	}
	e.ID = id
	return &e, nil
}

// IncrementEntityCounters bumps an entity's mention/paper counters and
// last_seen timestamp (internal/aggregate.Aggregator is the sole caller).
func (db *DB) IncrementEntityCounters(ctx context.Context, entityID ids.ID, mentionDelta, paperDelta int, lastSeen time.Time) error {
	_, err := db.ExecContext(ctx, `
		UPDATE entities SET mention_count_total = mention_count_total + ?,
			paper_count = paper_count + ?, last_seen = ?, updated_at = ?
		WHERE id = ?
	`, mentionDelta, paperDelta, lastSeen, ids.Now(), entityID.String())
	return apperrors.Wrap("repository.IncrementEntityCounters", err)
}

// InsertEntityMention records one occurrence of an entity in a chunk.
func (db *DB) InsertEntityMention(ctx context.Context, m *models.EntityMention) error {
	if m.ID == ids.Nil {
		m.ID = ids.New()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO entity_mentions (id, entity_id, chunk_id, paper_id, start_offset, end_offset,
			text, confidence, context_before, context_after)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID.String(), m.EntityID.String(), m.ChunkID.String(), m.PaperID.String(),
		m.StartOffset, m.EndOffset, m.Text, m.Confidence, m.ContextBefore, m.ContextAfter)
	return apperrors.Wrap("repository.InsertEntityMention", err)
}

// GetMentionsByChunk returns every entity mention recorded against a chunk.
func (db *DB) GetMentionsByChunk(ctx context.Context, chunkID ids.ID) ([]models.EntityMention, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, entity_id, chunk_id, paper_id, start_offset, end_offset,
			text, confidence, context_before, context_after
		FROM entity_mentions WHERE chunk_id = ?
	`, chunkID.String())
	if err != nil {
		return nil, apperrors.Wrap("repository.GetMentionsByChunk", err)
	}
	defer rows.Close()
	return scanMentionRows(rows)
}

// GetMentionsByPaper returns every entity mention recorded against a paper.
func (db *DB) GetMentionsByPaper(ctx context.Context, paperID ids.ID) ([]models.EntityMention, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, entity_id, chunk_id, paper_id, start_offset, end_offset,
			text, confidence, context_before, context_after
		FROM entity_mentions WHERE paper_id = ?
	`, paperID.String())
	if err != nil {
		return nil, apperrors.Wrap("repository.GetMentionsByPaper", err)
	}
	defer rows.Close()
	return scanMentionRows(rows)
}

func scanMentionRows(rows *sql.Rows) ([]models.EntityMention, error) {
	var out []models.EntityMention
	for rows.Next() {
		var m models.EntityMention
		var idStr, entityIDStr, chunkIDStr, paperIDStr string
		if err := rows.Scan(&idStr, &entityIDStr, &chunkIDStr, &paperIDStr, &m.StartOffset, &m.EndOffset,
			&m.Text, &m.Confidence, &m.ContextBefore, &m.ContextAfter); err != nil {
			return nil, apperrors.Wrap("repository.scanMentionRows", err)
		}
		var err error
		if m.ID, err = ids.Parse(idStr); err != nil {
			return nil, err
		}
		if m.EntityID, err = ids.Parse(entityIDStr); err != nil {
			return nil, err
		}
		if m.ChunkID, err = ids.Parse(chunkIDStr); err != nil {
			return nil, err
		}
		if m.PaperID, err = ids.Parse(paperIDStr); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
