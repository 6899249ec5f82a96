package hybrid

import (
	"context"
	"sort"

	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/repository"
)

var _ embeddedChunkSource = (*repository.DB)(nil)

// vectorScore pairs a chunk id with its cosine similarity to a query
// vector, used only to build the ranked vector stream before fusion.
type vectorScore struct {
	ID    ids.ID
	Score float32
}

// embeddedChunkSource is the repository surface the vector stream reads
// from, narrowed for test substitutability.
type embeddedChunkSource interface {
	GetChunksWithEmbeddings(ctx context.Context) ([]models.Chunk, error)
}

// vectorSearch brute-force scans every embedded chunk and ranks by
// cosine similarity, adapted from the teacher's
// internal/vectors/store.go cosineDistance/sortByDistance pair — the
// teacher's own fallback path for when sqlite-vec isn't loaded is taken
// as this repo's baseline, since spec.md §4.9 explicitly allows "a basic
// fallback" for either stream. Embeddings are assumed already
// L2-normalized (internal/embeddings.normalize), so cosine similarity
// reduces to a dot product.
func vectorSearch(ctx context.Context, source embeddedChunkSource, queryVector []float32, limit int) ([]ids.ID, error) {
	chunks, err := source.GetChunksWithEmbeddings(ctx)
	if err != nil {
		return nil, err
	}

	scores := make([]vectorScore, 0, len(chunks))
	for _, c := range chunks {
		if len(c.Embedding) != len(queryVector) {
			continue
		}
		scores = append(scores, vectorScore{ID: c.ID, Score: dot(queryVector, c.Embedding)})
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	if len(scores) > limit {
		scores = scores[:limit]
	}

	out := make([]ids.ID, len(scores))
	for i, s := range scores {
		out[i] = s.ID
	}
	return out, nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
