// Package hybrid implements fused full-text + vector chunk retrieval
// (spec.md §4.9): a Bleve index for the FTS stream, a brute-force cosine
// scan over chunk embeddings for the vector stream, and reciprocal rank
// fusion (RRF) to combine them.
package hybrid

import (
	"fmt"
	"path/filepath"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/token/porter"
	"github.com/blevesearch/bleve/v2/analysis/token/stop"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// ChunkIndex wraps a Bleve full-text index over chunk content, adapted
// from the teacher's internal/search/bleve.go: same custom biological
// analyzer (stopwords + Porter stemming over a synonym-aware lowercase
// pipeline), generalized from SRA study/sample/experiment documents to a
// single chunk document type.
type ChunkIndex struct {
	index bleve.Index
	path  string
}

type chunkDoc struct {
	Type    string `json:"type"`
	PaperID string `json:"paper_id"`
	Content string `json:"content"`
}

// OpenChunkIndex opens (or creates) the Bleve index at dataDir/chunks.blv.
func OpenChunkIndex(dataDir string) (*ChunkIndex, error) {
	const op = apperrors.Op("hybrid.OpenChunkIndex")
	indexPath := filepath.Join(dataDir, "chunks.blv")

	index, err := bleve.Open(indexPath)
	if err == bleve.ErrorIndexPathDoesNotExist {
		index, err = bleve.New(indexPath, chunkIndexMapping())
		if err != nil {
			return nil, apperrors.E(op, apperrors.KindUnknown, fmt.Errorf("create index: %w", err))
		}
	} else if err != nil {
		return nil, apperrors.E(op, apperrors.KindUnknown, fmt.Errorf("open index: %w", err))
	}

	return &ChunkIndex{index: index, path: indexPath}, nil
}

func chunkIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()

	synonyms := map[string][]string{
		"nsclc":   {"non-small cell lung cancer", "non small cell lung cancer"},
		"ccrcc":   {"clear cell renal cell carcinoma"},
		"aml":     {"acute myeloid leukemia"},
		"tnbc":    {"triple negative breast cancer", "triple-negative breast cancer"},
		"crc":     {"colorectal cancer", "colon cancer"},
		"gof":     {"gain of function", "gain-of-function"},
		"lof":     {"loss of function", "loss-of-function"},
		"synl":    {"synthetic lethal", "synthetic lethality"},
	}
	if err := indexMapping.AddCustomTokenFilter("bio_synonyms", map[string]interface{}{
		"type":     "synonym",
		"synonyms": formatSynonyms(synonyms),
	}); err != nil {
		indexMapping.DefaultAnalyzer = "standard"
	}

	if err := indexMapping.AddCustomAnalyzer("bio", map[string]interface{}{
		"type":      custom.Name,
		"tokenizer": unicode.Name,
		"token_filters": []string{
			lowercase.Name,
			"bio_synonyms",
			stop.EnglishStopWordsName,
			porter.Name,
		},
	}); err == nil {
		indexMapping.DefaultAnalyzer = "bio"
	}

	chunkMapping := bleve.NewDocumentMapping()
	contentField := bleve.NewTextFieldMapping()
	contentField.Analyzer = "bio"
	contentField.Store = false
	chunkMapping.AddFieldMappingsAt("content", contentField)

	paperIDField := bleve.NewTextFieldMapping()
	paperIDField.Analyzer = "keyword"
	paperIDField.Index = true
	chunkMapping.AddFieldMappingsAt("paper_id", paperIDField)

	indexMapping.AddDocumentMapping("chunk", chunkMapping)
	return indexMapping
}

func formatSynonyms(synonyms map[string][]string) []string {
	var result []string
	for key, values := range synonyms {
		allTerms := append([]string{key}, values...)
		for i := range allTerms {
			for j := range allTerms {
				if i != j {
					result = append(result, allTerms[i]+","+allTerms[j])
				}
			}
		}
	}
	return result
}

// IndexChunk adds or replaces one chunk's document.
func (c *ChunkIndex) IndexChunk(chunk models.Chunk) error {
	doc := chunkDoc{Type: "chunk", PaperID: chunk.PaperID.String(), Content: chunk.Content}
	return c.index.Index(chunk.ID.String(), doc)
}

// BatchIndex indexes many chunks in one Bleve batch.
func (c *ChunkIndex) BatchIndex(chunks []models.Chunk) error {
	batch := c.index.NewBatch()
	for _, chunk := range chunks {
		doc := chunkDoc{Type: "chunk", PaperID: chunk.PaperID.String(), Content: chunk.Content}
		if err := batch.Index(chunk.ID.String(), doc); err != nil {
			return apperrors.E(apperrors.Op("hybrid.ChunkIndex.BatchIndex"), apperrors.KindUnknown, err)
		}
	}
	return c.index.Batch(batch)
}

// Search returns up to limit chunk IDs ranked by textual relevance.
func (c *ChunkIndex) Search(queryText string, limit int) ([]ids.ID, error) {
	q := bleve.NewQueryStringQuery(queryText)
	req := bleve.NewSearchRequest(q)
	req.Size = limit
	req.Fields = nil

	result, err := c.index.Search(req)
	if err != nil {
		return nil, apperrors.E(apperrors.Op("hybrid.ChunkIndex.Search"), apperrors.KindUnknown, err)
	}

	out := make([]ids.ID, 0, len(result.Hits))
	for _, hit := range result.Hits {
		id, err := ids.Parse(hit.ID)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *ChunkIndex) Close() error { return c.index.Close() }
