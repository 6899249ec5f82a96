package sources

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// ClinicalTrialsAdapter searches ClinicalTrials.gov's v2 API. Trial
// registrations are not indexed literature, but spec.md §4.3 counts
// them as a source of target-discovery evidence (a trial naming a gene
// or drug is itself a signal), so they're mapped into PaperRecord with
// the trial's brief summary standing in for an abstract.
type ClinicalTrialsAdapter struct {
	client  *rateLimitedClient
	baseURL string
}

func NewClinicalTrialsAdapter(requestsPerSecond float64) *ClinicalTrialsAdapter {
	return &ClinicalTrialsAdapter{
		client:  newRateLimitedClient(requestsPerSecond, 20*time.Second),
		baseURL: "https://clinicaltrials.gov/api/v2/studies",
	}
}

func (a *ClinicalTrialsAdapter) Name() string { return "clinicaltrials" }

type ctgovResponse struct {
	Studies []ctgovStudy `json:"studies"`
}

type ctgovStudy struct {
	ProtocolSection struct {
		IdentificationModule struct {
			NCTId      string `json:"nctId"`
			BriefTitle string `json:"briefTitle"`
		} `json:"identificationModule"`
		StatusModule struct {
			StudyFirstPostDateStruct struct {
				Date string `json:"date"`
			} `json:"studyFirstPostDateStruct"`
		} `json:"statusModule"`
		DescriptionModule struct {
			BriefSummary string `json:"briefSummary"`
		} `json:"descriptionModule"`
		SponsorCollaboratorsModule struct {
			LeadSponsor struct {
				Name string `json:"name"`
			} `json:"leadSponsor"`
		} `json:"sponsorCollaboratorsModule"`
	} `json:"protocolSection"`
}

func (a *ClinicalTrialsAdapter) Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error) {
	const op = apperrors.Op("sources.ClinicalTrialsAdapter.Search")
	if maxResults <= 0 {
		maxResults = 20
	}

	searchURL := fmt.Sprintf("%s?query.term=%s&pageSize=%d&format=json",
		a.baseURL, url.QueryEscape(query), maxResults)
	var resp ctgovResponse
	if err := a.client.getJSON(ctx, op, searchURL, &resp); err != nil {
		return nil, err
	}

	records := make([]PaperRecord, 0, len(resp.Studies))
	for _, s := range resp.Studies {
		ident := s.ProtocolSection.IdentificationModule
		rec := PaperRecord{
			SourceID: ident.NCTId,
			Title:    ident.BriefTitle,
			Abstract: strPtr(s.ProtocolSection.DescriptionModule.BriefSummary),
			Source:   "clinicaltrials",
			Journal:  strPtr(s.ProtocolSection.SponsorCollaboratorsModule.LeadSponsor.Name),
		}
		if t, err := time.Parse("2006-01-02", s.ProtocolSection.StatusModule.StudyFirstPostDateStruct.Date); err == nil {
			rec.PublishedAt = &t
		}
		records = append(records, rec)
	}
	return records, nil
}

// FetchFullText: trial registrations have no full text beyond the
// structured protocol fields Search already returns.
func (a *ClinicalTrialsAdapter) FetchFullText(ctx context.Context, sourceID string) (*string, error) {
	return nil, nil
}
