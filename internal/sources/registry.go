package sources

import (
	"github.com/nishad/oncotarget/internal/apperrors"
)

// Build constructs one Adapter per name in enabled, sharing the same
// per-source rate limit, so internal/ingest's orchestrator can fan out
// over config.IngestionConfig.SourcesEnabled without a switch of its
// own.
func Build(enabled []string, requestsPerSecond float64) ([]Adapter, error) {
	adapters := make([]Adapter, 0, len(enabled))
	for _, name := range enabled {
		switch name {
		case "pubmed":
			adapters = append(adapters, NewPubMedAdapter(requestsPerSecond))
		case "europepmc":
			adapters = append(adapters, NewEuropePMCAdapter(requestsPerSecond))
		case "biorxiv":
			adapters = append(adapters, NewBioRxivAdapter(requestsPerSecond))
		case "medrxiv":
			adapters = append(adapters, NewMedRxivAdapter(requestsPerSecond))
		case "clinicaltrials":
			adapters = append(adapters, NewClinicalTrialsAdapter(requestsPerSecond))
		case "crossref":
			adapters = append(adapters, NewCrossrefAdapter(requestsPerSecond))
		default:
			return nil, apperrors.E(apperrors.Op("sources.Build"), apperrors.KindValidation,
				apperrors.Errorf("unknown source %q", name))
		}
	}
	return adapters, nil
}
