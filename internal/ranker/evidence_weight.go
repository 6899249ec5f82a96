package ranker

import "github.com/nishad/oncotarget/internal/models"

// evidenceBaseWeights fixes the base weight of each evidence type used
// when computing a KG fact's contribution to a target's confidence
// factor (spec.md §4.11 "Evidence weighting").
var evidenceBaseWeights = map[models.EvidenceType]float64{
	models.EvidenceInVivo:         1.00,
	models.EvidenceInVitro:        0.85,
	models.EvidencePhase3Trial:    1.00,
	models.EvidencePhase1_2Trial:  0.75,
	models.EvidenceMLComputation:  0.50,
	models.EvidenceRuleBased:      0.35,
	models.EvidenceTextMined:      0.30,
	models.EvidenceDatabaseAssert: 0.40,
}

// EvidenceBaseWeight returns the fixed base weight for an evidence type,
// or 0 if the type is unrecognized.
func EvidenceBaseWeight(t models.EvidenceType) float64 {
	return evidenceBaseWeights[t]
}
