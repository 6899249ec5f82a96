package embeddings

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/repository"
)

// chunkStore is the repository surface Backfill needs, narrowed so
// tests can substitute an in-memory fake instead of a real *sql.DB.
type chunkStore interface {
	FindChunksWithoutEmbeddings(ctx context.Context, paperID ids.ID, limit, offset int) ([]models.Chunk, error)
	BulkUpdateEmbeddings(ctx context.Context, embeddings map[ids.ID][]float32) error
}

var _ chunkStore = (*repository.DB)(nil)

// Result summarizes one Backfill call.
type Result struct {
	ChunksEmbedded int
	BatchesFailed  int
}

// Backfill embeds every chunk of paperID that is missing a vector, in
// batches of batchSize, persisting each batch before moving to the
// next so a crash mid-run loses at most one in-flight batch (spec.md
// §4.8's "backfill is restart-safe"). A batch that fails to embed is
// logged and skipped rather than aborting the paper — spec.md §4.8:
// "Failed batches are logged and skipped — other batches proceed." The
// skipped chunks stay unembedded (still retrievable via FTS), and
// offset advances past them so they aren't re-fetched into a loop.
func Backfill(ctx context.Context, store chunkStore, embedder Embedder, paperID ids.ID, batchSize int) (Result, error) {
	if batchSize <= 0 {
		batchSize = 32
	}

	var res Result
	offset := 0
	for {
		if err := ctx.Err(); err != nil {
			return res, apperrors.Wrap(apperrors.Op("embeddings.Backfill"), err)
		}

		chunks, err := store.FindChunksWithoutEmbeddings(ctx, paperID, batchSize, offset)
		if err != nil {
			return res, apperrors.Wrap(apperrors.Op("embeddings.Backfill"), err)
		}
		if len(chunks) == 0 {
			return res, nil
		}

		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Content
		}

		vectors, err := embedder.EmbedBatch(ctx, texts)
		if err == nil && len(vectors) != len(chunks) {
			err = apperrors.E(apperrors.Op("embeddings.Backfill"), apperrors.KindUnknown,
				apperrors.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks)))
		}
		if err != nil {
			log.Error().Err(err).Str("paper_id", paperID.String()).Int("chunks_skipped", len(chunks)).
				Msg("embedding batch failed, skipping")
			res.BatchesFailed++
			offset += len(chunks)
			if len(chunks) < batchSize {
				return res, nil
			}
			continue
		}

		batch := make(map[ids.ID][]float32, len(chunks))
		for i, c := range chunks {
			batch[c.ID] = vectors[i]
		}
		if err := store.BulkUpdateEmbeddings(ctx, batch); err != nil {
			return res, apperrors.Wrap(apperrors.Op("embeddings.Backfill"), err)
		}

		res.ChunksEmbedded += len(chunks)
		if len(chunks) < batchSize {
			return res, nil
		}
	}
}
