package ranker

import "github.com/nishad/oncotarget/internal/models"

// InhibitorSaturationThreshold is the published-inhibitor count above
// which a gene is considered saturated with existing chemical matter
// (spec.md §4.11 penalty rule 1).
const InhibitorSaturationThreshold = 50

// LowSpecificityRatioThreshold is the tumor/baseline expression ratio
// below which expression specificity is considered low (penalty rule 2).
const LowSpecificityRatioThreshold = 1.5

// ReliableStructureConfidenceThreshold is the minimum predicted-structure
// confidence considered "reliable" (penalty rule 3).
const ReliableStructureConfidenceThreshold = 50.0

const (
	penaltySaturation       = 0.15
	penaltyLowSpecificity   = 0.10
	penaltyUnreliableStruct = 0.08
)

// Penalty computes the additive penalty P(g, c) from raw components
// (spec.md §4.11):
//   - +0.15 if the published inhibitor count exceeds the saturation threshold.
//   - +0.10 if the tumor/baseline expression ratio is below the
//     low-specificity threshold (including when the ratio is unknown).
//   - +0.08 if no experimentally solved structure exists and the
//     predicted-structure confidence (if any) is below the reliable
//     threshold, or if no structure of any kind exists.
func Penalty(raw models.RawComponents) float64 {
	var p float64

	if raw.InhibitorCount != nil && *raw.InhibitorCount > InhibitorSaturationThreshold {
		p += penaltySaturation
	}

	ratio, known := expressionRatio(raw)
	if !known || ratio < LowSpecificityRatioThreshold {
		p += penaltyLowSpecificity
	}

	if !raw.HasExperimentalStructure {
		if raw.PredictedStructureConfidence == nil || *raw.PredictedStructureConfidence < ReliableStructureConfidenceThreshold {
			p += penaltyUnreliableStruct
		}
	}

	return p
}

func expressionRatio(raw models.RawComponents) (float64, bool) {
	if raw.ExpressionTumorTPM == nil || raw.ExpressionBaselineTPM == nil || *raw.ExpressionBaselineTPM <= 0 {
		return 0, false
	}
	return *raw.ExpressionTumorTPM / *raw.ExpressionBaselineTPM, true
}
