// Package sources adapts heterogeneous literature APIs (PubMed,
// EuropePMC, bioRxiv, medRxiv, ClinicalTrials.gov, Crossref) to a single
// capability surface the ingestion orchestrator fans out over (spec.md
// §4.3).
package sources

import (
	"context"
	"time"
)

// PaperRecord is the uniform bibliographic record every adapter
// produces, carrying the superset of fields the Paper data model needs
// (spec.md §4.3).
type PaperRecord struct {
	SourceID    string // the source's own identifier, used by FetchFullText
	DOI         *string
	PMID        *string
	PMCID       *string
	Title       string
	Abstract    *string
	Source      string
	PublishedAt *time.Time
	Authors     []string
	Journal     *string
	Volume      *string
	Issue       *string
	Pages       *string
}

// Adapter is the uniform capability every literature source implements.
// Adapters own their rate limiting, pagination, and query reshaping;
// a single adapter's failure must not halt the others in the same job
// (spec.md §4.3).
type Adapter interface {
	// Name identifies the adapter for logging/progress events, and is
	// written into PaperRecord.Source / models.Paper.Source.
	Name() string
	// Search returns up to maxResults records matching query, ordered
	// by the source's own relevance/recency ranking.
	Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error)
	// FetchFullText returns the full text for sourceID if the source
	// makes it available; nil (not an error) when it doesn't.
	FetchFullText(ctx context.Context, sourceID string) (*string, error)
}
