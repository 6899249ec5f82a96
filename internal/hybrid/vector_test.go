package hybrid

import (
	"context"
	"testing"

	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

type fakeEmbeddedChunkSource struct {
	chunks []models.Chunk
}

func (f *fakeEmbeddedChunkSource) GetChunksWithEmbeddings(_ context.Context) ([]models.Chunk, error) {
	return f.chunks, nil
}

func TestVectorSearchRanksByCosineSimilarity(t *testing.T) {
	closeID, farID := ids.New(), ids.New()
	source := &fakeEmbeddedChunkSource{chunks: []models.Chunk{
		{ID: closeID, Embedding: []float32{1, 0}},
		{ID: farID, Embedding: []float32{0, 1}},
	}}

	got, err := vectorSearch(context.Background(), source, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("vectorSearch: %v", err)
	}
	if len(got) != 2 || got[0] != closeID {
		t.Fatalf("got %v, want closest-first with %v leading", got, closeID)
	}
}

func TestVectorSearchSkipsDimensionMismatch(t *testing.T) {
	matchID := ids.New()
	source := &fakeEmbeddedChunkSource{chunks: []models.Chunk{
		{ID: matchID, Embedding: []float32{1, 0}},
		{ID: ids.New(), Embedding: []float32{1, 0, 0}},
	}}

	got, err := vectorSearch(context.Background(), source, []float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("vectorSearch: %v", err)
	}
	if len(got) != 1 || got[0] != matchID {
		t.Fatalf("got %v, want only %v", got, matchID)
	}
}

func TestVectorSearchRespectsLimit(t *testing.T) {
	chunks := make([]models.Chunk, 5)
	for i := range chunks {
		chunks[i] = models.Chunk{ID: ids.New(), Embedding: []float32{1, 0}}
	}
	source := &fakeEmbeddedChunkSource{chunks: chunks}

	got, err := vectorSearch(context.Background(), source, []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("vectorSearch: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d results, want 2", len(got))
	}
}
