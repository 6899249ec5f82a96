package ranker

import "github.com/nishad/oncotarget/internal/models"

// Composite computes the raw composite score S = clamp(Σ wᵢ·nᵢ − P, 0, 1)
// (spec.md §4.11).
func Composite(n models.NormalizedComponents, w Weights, penalty float64) float64 {
	weighted := w.MutationFreq*n.MutationFreq +
		w.CrisprDependency*n.CrisprDependency +
		w.SurvivalCorrelation*n.SurvivalCorrelation +
		w.ExpressionSpecificity*n.ExpressionSpecificity +
		w.StructuralTractability*n.StructuralTractability +
		w.PocketDetectability*n.PocketDetectability +
		w.NoveltyScore*n.NoveltyScore +
		w.PathwayIndependence*n.PathwayIndependence +
		w.LiteratureNovelty*n.LiteratureNovelty

	return clamp(weighted-penalty, 0, 1)
}

// ConfidenceAdjusted computes S* = clamp(S · Ĉ, 0, 1), where confidence
// is the mean confidence of supporting KG facts for the pair, supplied by
// the knowledge-graph layer (internal/kg.MeanConfidence).
func ConfidenceAdjusted(composite, confidence float64) float64 {
	return clamp(composite*confidence, 0, 1)
}

// Score is the full result of scoring one (gene, cancer) pair, short of
// the persisted TargetScore's identity/versioning fields.
type Score struct {
	Normalized              models.NormalizedComponents
	Penalty                 float64
	CompositeScore          float64
	ConfidenceAdjustedScore float64
	Tier                    models.ShortlistTier
}

// Compute runs the full normalize -> penalty -> composite -> confidence
// -> tier pipeline for one (gene, cancer) pair.
func Compute(raw models.RawComponents, w Weights, confidence float64, thresholds Thresholds) Score {
	n := Normalize(raw)
	p := Penalty(raw)
	s := Composite(n, w, p)
	sStar := ConfidenceAdjusted(s, confidence)
	tier := Tier(sStar, raw, n, thresholds)

	return Score{
		Normalized:              n,
		Penalty:                 p,
		CompositeScore:          s,
		ConfidenceAdjustedScore: sStar,
		Tier:                    tier,
	}
}
