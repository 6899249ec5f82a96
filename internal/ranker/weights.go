// Package ranker computes the composite druggability/priority score for
// a (gene, cancer) pair: normalize raw evidence components, apply the
// nine-weight composite formula and saturation/specificity/structure
// penalty, adjust by knowledge-graph confidence, and assign a shortlist
// tier.
package ranker

import "github.com/nishad/oncotarget/internal/apperrors"

// Weights is the nine-component weight vector used by Composite. Fields
// must be non-negative and sum to 1.0 within WeightSumTolerance.
type Weights struct {
	MutationFreq           float64
	CrisprDependency       float64
	SurvivalCorrelation    float64
	ExpressionSpecificity  float64
	StructuralTractability float64
	PocketDetectability    float64
	NoveltyScore           float64
	PathwayIndependence    float64
	LiteratureNovelty      float64
}

// WeightSumTolerance is the allowed deviation of a Weights vector's sum
// from 1.0 (spec.md §6 configuration: "must sum to 1 ±0.01").
const WeightSumTolerance = 0.01

// DefaultWeights returns the spec-mandated default weight vector
// (spec.md §4.11).
func DefaultWeights() Weights {
	return Weights{
		MutationFreq:           0.20,
		CrisprDependency:       0.18,
		SurvivalCorrelation:    0.15,
		ExpressionSpecificity:  0.12,
		StructuralTractability: 0.12,
		PocketDetectability:    0.08,
		NoveltyScore:           0.07,
		PathwayIndependence:    0.05,
		LiteratureNovelty:      0.03,
	}
}

// Sum returns the sum of all nine weight components.
func (w Weights) Sum() float64 {
	return w.MutationFreq + w.CrisprDependency + w.SurvivalCorrelation +
		w.ExpressionSpecificity + w.StructuralTractability + w.PocketDetectability +
		w.NoveltyScore + w.PathwayIndependence + w.LiteratureNovelty
}

// Validate reports a Validation error if any weight is negative or the
// vector's sum deviates from 1.0 by more than WeightSumTolerance.
func (w Weights) Validate() error {
	for name, v := range w.asMap() {
		if v < 0 {
			return apperrors.E(apperrors.Op("ranker.Weights.Validate"), apperrors.KindValidation,
				apperrors.Errorf("weight %s is negative: %v", name, v))
		}
	}
	sum := w.Sum()
	if sum < 1.0-WeightSumTolerance || sum > 1.0+WeightSumTolerance {
		return apperrors.E(apperrors.Op("ranker.Weights.Validate"), apperrors.KindValidation,
			apperrors.Errorf("weights sum to %v, want 1.0 ± %v", sum, WeightSumTolerance))
	}
	return nil
}

// Normalized returns a copy of w rescaled so its components sum to
// exactly 1.0, leaving w unchanged if its sum is zero.
func (w Weights) Normalized() Weights {
	sum := w.Sum()
	if sum == 0 {
		return w
	}
	return Weights{
		MutationFreq:           w.MutationFreq / sum,
		CrisprDependency:       w.CrisprDependency / sum,
		SurvivalCorrelation:    w.SurvivalCorrelation / sum,
		ExpressionSpecificity:  w.ExpressionSpecificity / sum,
		StructuralTractability: w.StructuralTractability / sum,
		PocketDetectability:    w.PocketDetectability / sum,
		NoveltyScore:           w.NoveltyScore / sum,
		PathwayIndependence:    w.PathwayIndependence / sum,
		LiteratureNovelty:      w.LiteratureNovelty / sum,
	}
}

func (w Weights) asMap() map[string]float64 {
	return map[string]float64{
		"mutation_freq":           w.MutationFreq,
		"crispr_dependency":       w.CrisprDependency,
		"survival_correlation":    w.SurvivalCorrelation,
		"expression_specificity":  w.ExpressionSpecificity,
		"structural_tractability": w.StructuralTractability,
		"pocket_detectability":    w.PocketDetectability,
		"novelty_score":           w.NoveltyScore,
		"pathway_independence":    w.PathwayIndependence,
		"literature_novelty":      w.LiteratureNovelty,
	}
}
