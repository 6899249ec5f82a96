package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// EuropePMCAdapter searches the Europe PMC REST API, which aggregates
// PubMed, PMC, and preprint content and exposes full text for
// open-access records.
type EuropePMCAdapter struct {
	client  *rateLimitedClient
	baseURL string
}

func NewEuropePMCAdapter(requestsPerSecond float64) *EuropePMCAdapter {
	return &EuropePMCAdapter{
		client:  newRateLimitedClient(requestsPerSecond, 20*time.Second),
		baseURL: "https://www.ebi.ac.uk/europepmc/webservices/rest",
	}
}

func (a *EuropePMCAdapter) Name() string { return "europepmc" }

type europePMCSearchResponse struct {
	ResultList struct {
		Result []europePMCResult `json:"result"`
	} `json:"resultList"`
}

type europePMCResult struct {
	ID            string `json:"id"`
	PMID          string `json:"pmid"`
	PMCID         string `json:"pmcid"`
	DOI           string `json:"doi"`
	Title         string `json:"title"`
	AbstractText  string `json:"abstractText"`
	JournalTitle  string `json:"journalTitle"`
	JournalVolume string `json:"journalVolume"`
	IssueNumber   string `json:"issue"`
	PageInfo      string `json:"pageInfo"`
	FirstPubDate  string `json:"firstPublicationDate"`
	IsOpenAccess  string `json:"isOpenAccess"`
	AuthorString  string `json:"authorString"`
}

func (a *EuropePMCAdapter) Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error) {
	const op = apperrors.Op("sources.EuropePMCAdapter.Search")
	if maxResults <= 0 {
		maxResults = 20
	}

	searchURL := fmt.Sprintf("%s/search?query=%s&format=json&pageSize=%d&resultType=core",
		a.baseURL, url.QueryEscape(query), maxResults)
	var resp europePMCSearchResponse
	if err := a.client.getJSON(ctx, op, searchURL, &resp); err != nil {
		return nil, err
	}

	records := make([]PaperRecord, 0, len(resp.ResultList.Result))
	for _, r := range resp.ResultList.Result {
		records = append(records, r.toPaperRecord())
	}
	return records, nil
}

func (r europePMCResult) toPaperRecord() PaperRecord {
	rec := PaperRecord{
		SourceID: r.ID,
		PMID:     strPtr(r.PMID),
		PMCID:    strPtr(r.PMCID),
		DOI:      strPtr(r.DOI),
		Title:    r.Title,
		Abstract: strPtr(r.AbstractText),
		Source:   "europepmc",
		Journal:  strPtr(r.JournalTitle),
		Volume:   strPtr(r.JournalVolume),
		Issue:    strPtr(r.IssueNumber),
		Pages:    strPtr(r.PageInfo),
	}
	if r.AuthorString != "" {
		rec.Authors = splitAuthorString(r.AuthorString)
	}
	if t, err := time.Parse("2006-01-02", r.FirstPubDate); err == nil {
		rec.PublishedAt = &t
	}
	return rec
}

func splitAuthorString(s string) []string {
	var authors []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			if a := trimSpace(s[start:i]); a != "" {
				authors = append(authors, a)
			}
			start = i + 1
		}
	}
	if a := trimSpace(s[start:]); a != "" {
		authors = append(authors, a)
	}
	return authors
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

// FetchFullText returns the PMC full text XML's text content when the
// record is open access; it fetches the fullTextXML representation and
// returns it verbatim rather than re-parsing XML into plain text, since
// downstream chunking strips markup itself (see internal/ingest).
func (a *EuropePMCAdapter) FetchFullText(ctx context.Context, sourceID string) (*string, error) {
	const op = apperrors.Op("sources.EuropePMCAdapter.FetchFullText")
	fullTextURL := fmt.Sprintf("%s/%s/fullTextXML", a.baseURL, sourceID)

	body, err := a.client.get(ctx, op, fullTextURL)
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindTransientExternal {
			// Most records are not open access; absence of full text is
			// not a failure worth propagating to the orchestrator.
			return nil, nil
		}
		return nil, err
	}
	text := string(body)
	return &text, nil
}
