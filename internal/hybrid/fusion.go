package hybrid

import (
	"context"
	"sort"

	"github.com/nishad/oncotarget/internal/ids"
)

// Config mirrors spec.md §4.9's HybridSearchConfig.
type Config struct {
	Limit           int
	RRFK            float64
	PreFusionLimit  int
	UseFTS          bool
	UseVector       bool
}

func DefaultConfig() Config {
	return Config{Limit: 20, RRFK: 60, PreFusionLimit: 100, UseFTS: true, UseVector: true}
}

// Result is one fused chunk: its RRF score normalized into [0,1], and
// whether it appeared in both streams (spec.md §4.9's is_hybrid flag).
type Result struct {
	ChunkID  ids.ID
	Score    float64
	FTSRank  int // 1-based; 0 if absent from the FTS stream
	VecRank  int // 1-based; 0 if absent from the vector stream
	IsHybrid bool
}

// Searcher fuses a Bleve FTS stream with a brute-force cosine vector
// stream by Reciprocal Rank Fusion (spec.md §4.9).
type Searcher struct {
	index  *ChunkIndex
	source embeddedChunkSource
}

func NewSearcher(index *ChunkIndex, source embeddedChunkSource) *Searcher {
	return &Searcher{index: index, source: source}
}

// Search runs both streams (skipping whichever Config disables or has
// no query input) and fuses by RRF. If a stream errors, the other
// stream's results are still returned — spec.md §4.9's "if one stream
// errors, continue with the other and annotate" — the caller can detect
// a partial run via the two returned per-stream errors (FTS first,
// vector second).
func (s *Searcher) Search(ctx context.Context, queryText string, queryVector []float32, cfg Config) ([]Result, error, error) {
	var ftsIDs, vecIDs []ids.ID
	var ftsErr, vecErr error

	if cfg.UseFTS && queryText != "" {
		ftsIDs, ftsErr = s.index.Search(queryText, cfg.PreFusionLimit)
	}
	if cfg.UseVector && len(queryVector) > 0 {
		vecIDs, vecErr = vectorSearch(ctx, s.source, queryVector, cfg.PreFusionLimit)
	}

	if ftsErr != nil && vecErr != nil {
		return nil, ftsErr, vecErr
	}

	results := Fuse(ftsIDs, vecIDs, cfg.RRFK)
	if len(results) > cfg.Limit {
		results = results[:cfg.Limit]
	}
	return results, ftsErr, vecErr
}

// Fuse combines two rank-ordered id streams by Reciprocal Rank Fusion: a
// chunk at 1-based rank r in a stream contributes 1/(k+r); per-chunk
// contributions sum across streams; the result is normalized by the
// maximum observed score so every score lands in [0,1], then sorted
// descending with ties broken by stable input order (spec.md §4.9,
// S6).
func Fuse(ftsIDs, vecIDs []ids.ID, k float64) []Result {
	if k <= 0 {
		k = 60
	}

	byID := make(map[ids.ID]*Result)
	order := make([]ids.ID, 0, len(ftsIDs)+len(vecIDs))

	add := func(id ids.ID, rank int, isFTS bool) {
		r, ok := byID[id]
		if !ok {
			r = &Result{ChunkID: id}
			byID[id] = r
			order = append(order, id)
		}
		contribution := 1.0 / (k + float64(rank))
		r.Score += contribution
		if isFTS {
			r.FTSRank = rank
		} else {
			r.VecRank = rank
		}
	}

	for i, id := range ftsIDs {
		add(id, i+1, true)
	}
	for i, id := range vecIDs {
		add(id, i+1, false)
	}

	results := make([]Result, 0, len(order))
	var maxScore float64
	for _, id := range order {
		r := byID[id]
		r.IsHybrid = r.FTSRank > 0 && r.VecRank > 0
		if r.Score > maxScore {
			maxScore = r.Score
		}
		results = append(results, *r)
	}
	if maxScore > 0 {
		for i := range results {
			results[i].Score /= maxScore
		}
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}
