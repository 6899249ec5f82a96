package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// CrossrefAdapter searches the Crossref REST API, a broad DOI registry
// useful for surfacing citation metadata (and abstracts, where
// publishers supply them) that the other sources miss.
type CrossrefAdapter struct {
	client  *rateLimitedClient
	baseURL string
}

func NewCrossrefAdapter(requestsPerSecond float64) *CrossrefAdapter {
	return &CrossrefAdapter{
		client:  newRateLimitedClient(requestsPerSecond, 20*time.Second),
		baseURL: "https://api.crossref.org/works",
	}
}

func (a *CrossrefAdapter) Name() string { return "crossref" }

type crossrefResponse struct {
	Message struct {
		Items []crossrefItem `json:"items"`
	} `json:"message"`
}

type crossrefItem struct {
	DOI      string   `json:"DOI"`
	Title    []string `json:"title"`
	Abstract string   `json:"abstract"`
	Author   []struct {
		Given  string `json:"given"`
		Family string `json:"family"`
	} `json:"author"`
	ContainerTitle []string `json:"container-title"`
	Volume         string   `json:"volume"`
	Issue          string   `json:"issue"`
	Page           string   `json:"page"`
	Published      struct {
		DateParts [][]int `json:"date-parts"`
	} `json:"published"`
}

func (a *CrossrefAdapter) Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error) {
	const op = apperrors.Op("sources.CrossrefAdapter.Search")
	if maxResults <= 0 {
		maxResults = 20
	}

	searchURL := fmt.Sprintf("%s?query=%s&rows=%d", a.baseURL, url.QueryEscape(query), maxResults)
	var resp crossrefResponse
	if err := a.client.getJSON(ctx, op, searchURL, &resp); err != nil {
		return nil, err
	}

	records := make([]PaperRecord, 0, len(resp.Message.Items))
	for _, item := range resp.Message.Items {
		records = append(records, item.toPaperRecord())
	}
	return records, nil
}

func (item crossrefItem) toPaperRecord() PaperRecord {
	title := ""
	if len(item.Title) > 0 {
		title = item.Title[0]
	}
	var journal *string
	if len(item.ContainerTitle) > 0 {
		journal = strPtr(item.ContainerTitle[0])
	}

	authors := make([]string, 0, len(item.Author))
	for _, au := range item.Author {
		name := au.Given
		if au.Family != "" {
			if name != "" {
				name += " "
			}
			name += au.Family
		}
		if name != "" {
			authors = append(authors, name)
		}
	}

	rec := PaperRecord{
		SourceID: item.DOI,
		DOI:      strPtr(item.DOI),
		Title:    title,
		Abstract: strPtr(item.Abstract),
		Source:   "crossref",
		Authors:  authors,
		Journal:  journal,
		Volume:   strPtr(item.Volume),
		Issue:    strPtr(item.Issue),
		Pages:    strPtr(item.Page),
	}
	if len(item.Published.DateParts) > 0 {
		parts := item.Published.DateParts[0]
		year, month, day := 1, 1, 1
		if len(parts) > 0 {
			year = parts[0]
		}
		if len(parts) > 1 {
			month = parts[1]
		}
		if len(parts) > 2 {
			day = parts[2]
		}
		t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		rec.PublishedAt = &t
	}
	return rec
}

// FetchFullText: Crossref indexes metadata only, never full text.
func (a *CrossrefAdapter) FetchFullText(ctx context.Context, sourceID string) (*string, error) {
	return nil, nil
}
