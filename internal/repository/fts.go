package repository

import (
	"context"
	"strings"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
)

// createFTSTable creates the chunk-content FTS5 virtual table and the
// triggers that keep it in sync with chunks, adapted from the teacher's
// database.FTS5Manager.createAccessionTable. Unlike the teacher's tables
// (rebuilt wholesale at import time), this one is kept current
// incrementally via triggers since chunks arrive continuously during
// ingestion rather than in one bulk load.
func (db *DB) createFTSTable() error {
	_, err := db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS fts_chunks USING fts5(
			chunk_id UNINDEXED,
			paper_id UNINDEXED,
			content,
			tokenize='porter'
		)
	`)
	if err != nil {
		return err
	}

	triggers := []string{
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_insert AFTER INSERT ON chunks BEGIN
			INSERT INTO fts_chunks(chunk_id, paper_id, content) VALUES (new.id, new.paper_id, new.content);
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_delete AFTER DELETE ON chunks BEGIN
			DELETE FROM fts_chunks WHERE chunk_id = old.id;
		END`,
		`CREATE TRIGGER IF NOT EXISTS chunks_fts_update AFTER UPDATE OF content ON chunks BEGIN
			DELETE FROM fts_chunks WHERE chunk_id = old.id;
			INSERT INTO fts_chunks(chunk_id, paper_id, content) VALUES (new.id, new.paper_id, new.content);
		END`,
	}
	for _, t := range triggers {
		if _, err := db.Exec(t); err != nil {
			return err
		}
	}
	return nil
}

// ChunkSearchResult is one hit from SearchChunks, ranked by FTS5's bm25.
type ChunkSearchResult struct {
	ChunkID ids.ID
	PaperID ids.ID
	Content string
	Score   float64
}

// SearchChunks runs a full-text query over chunk content, the text
// stream half of internal/hybrid's fusion. Scores are bm25 (lower is
// better, as returned by SQLite), left unconverted for the fusion layer
// to rank-transform.
func (db *DB) SearchChunks(ctx context.Context, query string, limit int) ([]ChunkSearchResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT chunk_id, paper_id, content, bm25(fts_chunks) AS score
		FROM fts_chunks
		WHERE fts_chunks MATCH ?
		ORDER BY score
		LIMIT ?
	`, escapeFTSQuery(query), limit)
	if err != nil {
		return nil, apperrors.Wrap("repository.SearchChunks", err)
	}
	defer rows.Close()

	var out []ChunkSearchResult
	for rows.Next() {
		var r ChunkSearchResult
		var chunkIDStr, paperIDStr string
		if err := rows.Scan(&chunkIDStr, &paperIDStr, &r.Content, &r.Score); err != nil {
			return nil, apperrors.Wrap("repository.SearchChunks", err)
		}
		chunkID, err := ids.Parse(chunkIDStr)
		if err != nil {
			return nil, err
		}
		paperID, err := ids.Parse(paperIDStr)
		if err != nil {
			return nil, err
		}
		r.ChunkID, r.PaperID = chunkID, paperID
		out = append(out, r)
	}
	return out, rows.Err()
}

// escapeFTSQuery escapes FTS5 special characters and phrase-quotes
// multi-word queries, adapted verbatim from the teacher's
// database.escapeFTSQuery.
func escapeFTSQuery(query string) string {
	specialChars := []string{"\"", "*", "-", "+", "^"}
	result := query
	for _, c := range specialChars {
		result = strings.ReplaceAll(result, c, "\\"+c)
	}
	if strings.Contains(result, " ") {
		result = "\"" + result + "\""
	}
	return result
}
