package ranker

import "github.com/nishad/oncotarget/internal/models"

// clamp restricts x to [lo, hi].
func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// NormalizeCeres maps a CERES dependency score (typically in [-2, 0],
// more negative meaning more essential) to [0,1], clamping first so more
// essential genes score higher: -2 -> 1.0, 0 -> 0.0.
func NormalizeCeres(x float64) float64 {
	c := clamp(x, -2, 0)
	return 1 - (c+2)/2
}

// NormalizeSurvivalCorrelation maps r in [-1,1] to [0,1].
func NormalizeSurvivalCorrelation(r float64) float64 {
	r = clamp(r, -1, 1)
	return (r + 1) / 2
}

// NormalizeExpressionSpecificity computes tumor_tpm / mean(baseline_tpm)
// and saturates the ratio at 10x.
func NormalizeExpressionSpecificity(tumorTPM, baselineTPM float64) float64 {
	if baselineTPM <= 0 {
		return 0
	}
	ratio := tumorTPM / baselineTPM
	return clamp(ratio/10, 0, 1)
}

// NormalizeNovelty maps an inhibitor count to a novelty score that falls
// off as more inhibitors are already published.
func NormalizeNovelty(inhibitorCount int) float64 {
	return 1 / (1 + float64(inhibitorCount))
}

// NormalizePathwayIndependence maps an escape-pathway count to a score
// that falls off as more escape pathways exist.
func NormalizePathwayIndependence(escapePathwayCount int) float64 {
	return 1 / (1 + float64(escapePathwayCount))
}

// Normalize maps raw, optional components to the [0,1] NormalizedComponents
// vector. Missing (nil) components normalize to 0 (spec.md §4.11).
func Normalize(raw models.RawComponents) models.NormalizedComponents {
	var n models.NormalizedComponents

	if raw.MutationFreq != nil {
		n.MutationFreq = clamp(*raw.MutationFreq, 0, 1)
	}
	if raw.CrisprDependency != nil {
		n.CrisprDependency = NormalizeCeres(*raw.CrisprDependency)
	}
	if raw.SurvivalCorrelation != nil {
		n.SurvivalCorrelation = NormalizeSurvivalCorrelation(*raw.SurvivalCorrelation)
	}
	if raw.ExpressionTumorTPM != nil && raw.ExpressionBaselineTPM != nil {
		n.ExpressionSpecificity = NormalizeExpressionSpecificity(*raw.ExpressionTumorTPM, *raw.ExpressionBaselineTPM)
	}
	if raw.StructuralTractability != nil {
		n.StructuralTractability = clamp(*raw.StructuralTractability, 0, 1)
	}
	if raw.PocketDetectability != nil {
		n.PocketDetectability = clamp(*raw.PocketDetectability, 0, 1)
	}
	if raw.InhibitorCount != nil {
		n.NoveltyScore = NormalizeNovelty(*raw.InhibitorCount)
	}
	if raw.EscapePathwayCount != nil {
		n.PathwayIndependence = NormalizePathwayIndependence(*raw.EscapePathwayCount)
	}
	if raw.LiteratureNovelty != nil {
		n.LiteratureNovelty = clamp(*raw.LiteratureNovelty, 0, 1)
	}

	return n
}
