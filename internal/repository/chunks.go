package repository

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"math"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// encodeEmbedding serializes a float32 embedding to a little-endian byte
// blob, adapted from the teacher's vectors.floatsToBytes.
func encodeEmbedding(v []float32) []byte {
	if v == nil {
		return nil
	}
	out := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(f))
	}
	return out
}

// decodeEmbedding deserializes a byte blob back to a float32 embedding,
// adapted from the teacher's vectors.bytesToFloats.
func decodeEmbedding(b []byte) []float32 {
	if len(b) == 0 {
		return nil
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out
}

// InsertChunk inserts a single chunk, failing with KindPersistenceConflict
// on a duplicate (paper_id, chunk_index).
func (db *DB) InsertChunk(ctx context.Context, c *models.Chunk) error {
	if c.ID == ids.Nil {
		c.ID = ids.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = ids.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO chunks (id, paper_id, chunk_index, content, embedding, section, page, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID.String(), c.PaperID.String(), c.ChunkIndex, c.Content, encodeEmbedding(c.Embedding), c.Section, c.Page, c.CreatedAt)
	if err != nil {
		if isUniqueConstraintErr(err) {
			return apperrors.E(apperrors.Op("repository.InsertChunk"), apperrors.KindPersistenceConflict, err)
		}
		return apperrors.Wrap("repository.InsertChunk", err)
	}
	return nil
}

// BulkInsertChunks inserts all chunks for one paper in a single
// transaction. Duplicate (paper_id, chunk_index) rows within the batch
// are skipped rather than aborting the whole insert (idempotent re-run
// semantics, spec.md §8 "idempotent upsert").
func (db *DB) BulkInsertChunks(ctx context.Context, chunks []models.Chunk) (inserted int, err error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.Wrap("repository.BulkInsertChunks", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO chunks (id, paper_id, chunk_index, content, embedding, section, page, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, apperrors.Wrap("repository.BulkInsertChunks", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if c.ID == ids.Nil {
			c.ID = ids.New()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = ids.Now()
		}
		res, err := stmt.ExecContext(ctx, c.ID.String(), c.PaperID.String(), c.ChunkIndex, c.Content,
			encodeEmbedding(c.Embedding), c.Section, c.Page, c.CreatedAt)
		if err != nil {
			return inserted, apperrors.Wrap("repository.BulkInsertChunks", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}

	if err := tx.Commit(); err != nil {
		return inserted, apperrors.Wrap("repository.BulkInsertChunks", err)
	}
	return inserted, nil
}

// FindChunksWithoutEmbeddings returns up to limit chunks for paperID that
// have not yet received an embedding, skipping the first offset such
// chunks (by chunk_index) — callers use offset to page past a batch
// that failed to embed without re-fetching it forever.
func (db *DB) FindChunksWithoutEmbeddings(ctx context.Context, paperID ids.ID, limit, offset int) ([]models.Chunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, paper_id, chunk_index, content, section, page, created_at
		FROM chunks WHERE paper_id = ? AND embedding IS NULL
		ORDER BY chunk_index LIMIT ? OFFSET ?
	`, paperID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap("repository.FindChunksWithoutEmbeddings", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// UpdateChunkEmbedding persists a single chunk's embedding vector.
func (db *DB) UpdateChunkEmbedding(ctx context.Context, chunkID ids.ID, embedding []float32) error {
	_, err := db.ExecContext(ctx, `UPDATE chunks SET embedding = ? WHERE id = ?`, encodeEmbedding(embedding), chunkID.String())
	return apperrors.Wrap("repository.UpdateChunkEmbedding", err)
}

// BulkUpdateEmbeddings persists embeddings for many chunks in one
// transaction, keyed by chunk id.
func (db *DB) BulkUpdateEmbeddings(ctx context.Context, embeddings map[ids.ID][]float32) error {
	if len(embeddings) == 0 {
		return nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap("repository.BulkUpdateEmbeddings", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE chunks SET embedding = ? WHERE id = ?`)
	if err != nil {
		return apperrors.Wrap("repository.BulkUpdateEmbeddings", err)
	}
	defer stmt.Close()

	for id, emb := range embeddings {
		if _, err := stmt.ExecContext(ctx, encodeEmbedding(emb), id.String()); err != nil {
			return apperrors.Wrap("repository.BulkUpdateEmbeddings", err)
		}
	}
	return apperrors.Wrap("repository.BulkUpdateEmbeddings", tx.Commit())
}

// GetChunksByPaper returns all chunks for a paper ordered by chunk_index.
func (db *DB) GetChunksByPaper(ctx context.Context, paperID ids.ID) ([]models.Chunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, paper_id, chunk_index, content, section, page, created_at
		FROM chunks WHERE paper_id = ? ORDER BY chunk_index
	`, paperID.String())
	if err != nil {
		return nil, apperrors.Wrap("repository.GetChunksByPaper", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// GetChunksWithEmbeddings returns every chunk carrying a non-null
// embedding, for the hybrid search vector stream's brute-force scan.
func (db *DB) GetChunksWithEmbeddings(ctx context.Context) ([]models.Chunk, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, paper_id, chunk_index, content, section, page, created_at, embedding
		FROM chunks WHERE embedding IS NOT NULL
	`)
	if err != nil {
		return nil, apperrors.Wrap("repository.GetChunksWithEmbeddings", err)
	}
	defer rows.Close()

	var out []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var idStr, paperIDStr string
		var emb []byte
		if err := rows.Scan(&idStr, &paperIDStr, &c.ChunkIndex, &c.Content, &c.Section, &c.Page, &c.CreatedAt, &emb); err != nil {
			return nil, apperrors.Wrap("repository.GetChunksWithEmbeddings", err)
		}
		id, err := ids.Parse(idStr)
		if err != nil {
			return nil, err
		}
		paperID, err := ids.Parse(paperIDStr)
		if err != nil {
			return nil, err
		}
		c.ID, c.PaperID = id, paperID
		c.Embedding = decodeEmbedding(emb)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetChunkByID fetches a single chunk, for rendering hybrid search hits.
func (db *DB) GetChunkByID(ctx context.Context, id ids.ID) (*models.Chunk, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, paper_id, chunk_index, content, section, page, created_at
		FROM chunks WHERE id = ?
	`, id.String())

	var c models.Chunk
	var idStr, paperIDStr string
	if err := row.Scan(&idStr, &paperIDStr, &c.ChunkIndex, &c.Content, &c.Section, &c.Page, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.E(apperrors.Op("repository.GetChunkByID"), apperrors.KindNotFound, err)
		}
		return nil, apperrors.Wrap("repository.GetChunkByID", err)
	}
	parsedID, err := ids.Parse(idStr)
	if err != nil {
		return nil, err
	}
	paperID, err := ids.Parse(paperIDStr)
	if err != nil {
		return nil, err
	}
	c.ID, c.PaperID = parsedID, paperID
	return &c, nil
}

func scanChunkRows(rows *sql.Rows) ([]models.Chunk, error) {
	var out []models.Chunk
	for rows.Next() {
		var c models.Chunk
		var idStr, paperIDStr string
		if err := rows.Scan(&idStr, &paperIDStr, &c.ChunkIndex, &c.Content, &c.Section, &c.Page, &c.CreatedAt); err != nil {
			return nil, apperrors.Wrap("repository.scanChunkRows", err)
		}
		id, err := ids.Parse(idStr)
		if err != nil {
			return nil, err
		}
		paperID, err := ids.Parse(paperIDStr)
		if err != nil {
			return nil, err
		}
		c.ID, c.PaperID = id, paperID
		out = append(out, c)
	}
	return out, rows.Err()
}
