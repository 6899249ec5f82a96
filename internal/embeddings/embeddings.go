// Package embeddings generates dense vector embeddings for chunk text,
// across either the in-process ONNX Runtime backend or one of several
// HTTP-based model providers, and backfills them onto chunk rows that
// were persisted without one (spec.md §4.8).
package embeddings

import (
	"context"
	"math"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/config"
)

// Embedder converts chunk text into fixed-width float32 vectors. Every
// implementation L2-normalizes its output so cosine similarity in
// internal/hybrid reduces to a dot product.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
	Dimension() int
	Close() error
}

// l2NormFloor guards against dividing by a near-zero norm (an
// all-zero or numerically degenerate embedding), mirroring the
// teacher's clamp-before-divide idiom in its scoring code.
const l2NormFloor = 1e-10

// normalize L2-normalizes v in place and returns it.
func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	norm := math.Sqrt(sumSq)
	if norm < l2NormFloor {
		return v
	}
	inv := float32(1.0 / norm)
	for i := range v {
		v[i] *= inv
	}
	return v
}

// New builds the Embedder selected by cfg.Backend.
func New(cfg config.EmbeddingConfig) (Embedder, error) {
	if !cfg.Enabled {
		return &noopEmbedder{}, nil
	}

	switch cfg.Backend {
	case config.BackendNative, "":
		return newNativeEmbedder(cfg)
	case config.BackendOpenAI, config.BackendOpenAICompatible, config.BackendGemini, config.BackendOllama, config.BackendLocalService:
		return newHTTPEmbedder(cfg)
	default:
		return nil, apperrors.E(apperrors.Op("embeddings.New"), apperrors.KindValidation,
			apperrors.Errorf("unknown embedding backend %q", cfg.Backend))
	}
}

// noopEmbedder backs a disabled embeddings configuration; hybrid search
// falls back to the FTS-only stream when this is in use.
type noopEmbedder struct{}

func (n *noopEmbedder) EmbedBatch(_ context.Context, _ []string) ([][]float32, error) {
	return nil, apperrors.E(apperrors.Op("embeddings.noopEmbedder.EmbedBatch"), apperrors.KindPolicy,
		"embeddings are disabled")
}
func (n *noopEmbedder) Name() string      { return "disabled" }
func (n *noopEmbedder) Dimension() int    { return 0 }
func (n *noopEmbedder) Close() error      { return nil }
