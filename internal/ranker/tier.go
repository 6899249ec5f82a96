package ranker

import "github.com/nishad/oncotarget/internal/models"

// Thresholds holds the shortlist-tiering cutoffs (spec.md §6
// configuration).
type Thresholds struct {
	Primary   float64
	Secondary float64
}

// DefaultThresholds returns the spec-mandated default tiering thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{Primary: 0.60, Secondary: 0.45}
}

// MutationFreqPrimaryThreshold and StructuralTractabilityPrimaryThreshold
// gate the Primary tier in addition to the composite-score threshold
// (spec.md §4.11 tiering rule 2).
const (
	MutationFreqPrimaryThreshold           = 0.05
	StructuralTractabilityPrimaryThreshold = 0.40
)

// Tier evaluates the shortlist tiering rules in order, first match wins
// (spec.md §4.11):
//  1. Excluded if inhibitor count > InhibitorSaturationThreshold.
//  2. Primary if confidenceAdjusted > thresholds.Primary AND raw
//     mutation_freq > 0.05 AND normalized structural_tractability > 0.40.
//  3. Secondary if confidenceAdjusted > thresholds.Secondary.
//  4. Excluded otherwise.
func Tier(confidenceAdjusted float64, raw models.RawComponents, n models.NormalizedComponents, thresholds Thresholds) models.ShortlistTier {
	if raw.InhibitorCount != nil && *raw.InhibitorCount > InhibitorSaturationThreshold {
		return models.TierExcluded
	}

	mutationFreq := 0.0
	if raw.MutationFreq != nil {
		mutationFreq = *raw.MutationFreq
	}

	if confidenceAdjusted > thresholds.Primary &&
		mutationFreq > MutationFreqPrimaryThreshold &&
		n.StructuralTractability > StructuralTractabilityPrimaryThreshold {
		return models.TierPrimary
	}

	if confidenceAdjusted > thresholds.Secondary {
		return models.TierSecondary
	}

	return models.TierExcluded
}
