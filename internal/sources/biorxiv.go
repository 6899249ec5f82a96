package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// preprintAdapter backs both bioRxiv and medRxiv: the Biorxiv API serves
// *every* preprint in a date window with no keyword search of its own,
// so both adapters page backwards through recent history, filter
// client-side for query term matches, and stop at whichever comes
// first — the requested maxResults or a bounded lookback window
// (resolved Open Question: max_results is a soft cap, not an exact
// count, because the upstream API has no relevance ranking to cap
// against).
type preprintAdapter struct {
	client     *rateLimitedClient
	baseURL    string
	server     string // "biorxiv" or "medrxiv"
	lookback   time.Duration
	pageSize   int
}

func NewBioRxivAdapter(requestsPerSecond float64) *preprintAdapter {
	return newPreprintAdapter(requestsPerSecond, "biorxiv")
}

func NewMedRxivAdapter(requestsPerSecond float64) *preprintAdapter {
	return newPreprintAdapter(requestsPerSecond, "medrxiv")
}

func newPreprintAdapter(requestsPerSecond float64, server string) *preprintAdapter {
	return &preprintAdapter{
		client:   newRateLimitedClient(requestsPerSecond, 20*time.Second),
		baseURL:  "https://api.biorxiv.org/details",
		server:   server,
		lookback: 180 * 24 * time.Hour,
		pageSize: 100,
	}
}

func (a *preprintAdapter) Name() string { return a.server }

type biorxivDetailsResponse struct {
	Collection []biorxivPaper `json:"collection"`
	Messages   []struct {
		Count  int `json:"count"`
		Cursor int `json:"cursor,string"`
		Total  int `json:"total,string"`
	} `json:"messages"`
}

type biorxivPaper struct {
	DOI           string `json:"doi"`
	Title         string `json:"title"`
	Authors       string `json:"authors"`
	Date          string `json:"date"`
	Abstract      string `json:"abstract"`
	Category      string `json:"category"`
	Version       string `json:"version"`
	PublishedDOI  string `json:"published_doi"`
}

func (p biorxivPaper) matches(keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	haystack := strings.ToLower(p.Title + " " + p.Abstract)
	for _, kw := range keywords {
		if strings.Contains(haystack, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

func (p biorxivPaper) toPaperRecord(server string) PaperRecord {
	rec := PaperRecord{
		SourceID: p.DOI,
		DOI:      strPtr(p.DOI),
		Title:    p.Title,
		Abstract: strPtr(p.Abstract),
		Source:   server,
	}
	if p.Authors != "" {
		rec.Authors = splitAuthorString(strings.ReplaceAll(p.Authors, "; ", ","))
	}
	if t, err := time.Parse("2006-01-02", p.Date); err == nil {
		rec.PublishedAt = &t
	}
	return rec
}

// Search pages backwards from today through a lookback window, keeping
// papers whose title/abstract contain any whitespace-split query
// keyword, until maxResults papers are collected or the window is
// exhausted.
func (a *preprintAdapter) Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error) {
	const op = apperrors.Op("sources.preprintAdapter.Search")
	if maxResults <= 0 {
		maxResults = 20
	}
	keywords := strings.Fields(query)

	end := time.Now()
	start := end.Add(-a.lookback)
	interval := fmt.Sprintf("%s/%s", start.Format("2006-01-02"), end.Format("2006-01-02"))

	var records []PaperRecord
	for cursor := 0; ; cursor += a.pageSize {
		if err := ctx.Err(); err != nil {
			return records, apperrors.E(op, apperrors.KindCancelled, err)
		}

		pageURL := fmt.Sprintf("%s/%s/%s/%d/json", a.baseURL, a.server, interval, cursor)
		var resp biorxivDetailsResponse
		if err := a.client.getJSON(ctx, op, pageURL, &resp); err != nil {
			return records, err
		}
		if len(resp.Collection) == 0 {
			return records, nil // window exhausted
		}

		for _, p := range resp.Collection {
			if !p.matches(keywords) {
				continue
			}
			records = append(records, p.toPaperRecord(a.server))
			if len(records) >= maxResults {
				return records, nil // soft cap reached
			}
		}

		if len(resp.Messages) > 0 && resp.Messages[0].Cursor+len(resp.Collection) >= resp.Messages[0].Total {
			return records, nil
		}
	}
}

// FetchFullText: neither bioRxiv nor medRxiv expose a text endpoint in
// their public details API, only PDF links, which this pipeline does
// not render — Search's Abstract is the only text this adapter offers.
func (a *preprintAdapter) FetchFullText(ctx context.Context, sourceID string) (*string, error) {
	return nil, nil
}
