package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// PubMedAdapter searches NCBI's E-utilities (esearch + esummary). PubMed
// does not serve full text directly, so FetchFullText always returns nil.
type PubMedAdapter struct {
	client  *rateLimitedClient
	baseURL string
}

func NewPubMedAdapter(requestsPerSecond float64) *PubMedAdapter {
	return &PubMedAdapter{
		client:  newRateLimitedClient(requestsPerSecond, 20*time.Second),
		baseURL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
	}
}

func (a *PubMedAdapter) Name() string { return "pubmed" }

type pubmedSearchResult struct {
	ESearchResult struct {
		IDList []string `json:"idlist"`
	} `json:"esearchresult"`
}

func (a *PubMedAdapter) Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error) {
	const op = apperrors.Op("sources.PubMedAdapter.Search")
	if maxResults <= 0 {
		maxResults = 20
	}

	searchURL := fmt.Sprintf("%s/esearch.fcgi?db=pubmed&retmode=json&retmax=%d&term=%s",
		a.baseURL, maxResults, url.QueryEscape(query))
	var sr pubmedSearchResult
	if err := a.client.getJSON(ctx, op, searchURL, &sr); err != nil {
		return nil, err
	}
	if len(sr.ESearchResult.IDList) == 0 {
		return nil, nil
	}

	summaryURL := fmt.Sprintf("%s/esummary.fcgi?db=pubmed&retmode=json&id=%s",
		a.baseURL, strings.Join(sr.ESearchResult.IDList, ","))
	docs, err := a.fetchSummaries(ctx, op, summaryURL)
	if err != nil {
		return nil, err
	}

	records := make([]PaperRecord, 0, len(sr.ESearchResult.IDList))
	for _, pmid := range sr.ESearchResult.IDList {
		if doc, ok := docs[pmid]; ok {
			records = append(records, doc.toPaperRecord(pmid))
		}
	}
	return records, nil
}

// esummary's "result" field is an object keyed by uid, plus a sibling
// "uids" array — not a clean map, so decode into raw messages first and
// drop the "uids" key before unmarshalling each doc.
func (a *PubMedAdapter) fetchSummaries(ctx context.Context, op apperrors.Op, summaryURL string) (map[string]pubmedDocSummary, error) {
	var raw struct {
		Result map[string]json.RawMessage `json:"result"`
	}
	if err := a.client.getJSON(ctx, op, summaryURL, &raw); err != nil {
		return nil, err
	}
	delete(raw.Result, "uids")

	docs := make(map[string]pubmedDocSummary, len(raw.Result))
	for pmid, msg := range raw.Result {
		var doc pubmedDocSummary
		if err := json.Unmarshal(msg, &doc); err != nil {
			continue
		}
		docs[pmid] = doc
	}
	return docs, nil
}

type pubmedDocSummary struct {
	Title           string `json:"title"`
	PubDate         string `json:"pubdate"`
	FullJournalName string `json:"fulljournalname"`
	Volume          string `json:"volume"`
	Issue           string `json:"issue"`
	Pages           string `json:"pages"`
	AuthorList      []struct {
		Name string `json:"name"`
	} `json:"authors"`
	ArticleIds []struct {
		IDType string `json:"idtype"`
		Value  string `json:"value"`
	} `json:"articleids"`
}

func (d pubmedDocSummary) toPaperRecord(pmid string) PaperRecord {
	authors := make([]string, 0, len(d.AuthorList))
	for _, au := range d.AuthorList {
		authors = append(authors, au.Name)
	}

	rec := PaperRecord{
		SourceID: pmid,
		PMID:     strPtr(pmid),
		Title:    d.Title,
		Source:   "pubmed",
		Authors:  authors,
		Journal:  strPtr(d.FullJournalName),
		Volume:   strPtr(d.Volume),
		Issue:    strPtr(d.Issue),
		Pages:    strPtr(d.Pages),
	}
	for _, aid := range d.ArticleIds {
		switch aid.IDType {
		case "doi":
			rec.DOI = strPtr(aid.Value)
		case "pmc":
			rec.PMCID = strPtr(aid.Value)
		}
	}
	if t, err := parsePubMedDate(d.PubDate); err == nil {
		rec.PublishedAt = &t
	}
	return rec
}

func parsePubMedDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006 Jan 2", "2006 Jan", "2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized pubmed date %q", s)
}

// FetchFullText always returns nil: PubMed's own record never embeds
// full text, only abstracts, which Search already captures via esummary.
func (a *PubMedAdapter) FetchFullText(ctx context.Context, sourceID string) (*string, error) {
	return nil, nil
}
