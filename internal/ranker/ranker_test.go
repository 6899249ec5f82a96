package ranker

import (
	"math"
	"testing"

	"github.com/nishad/oncotarget/internal/models"
)

func approxEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func ptr(f float64) *float64 { return &f }
func iptr(i int) *int        { return &i }

// S1. Normalize CERES
func TestS1NormalizeCeres(t *testing.T) {
	cases := []struct {
		x    float64
		want float64
	}{
		{-2.0, 1.0},
		{-1.0, 0.5},
		{0.0, 0.0},
		{-3.0, 1.0},
		{1.0, 0.0},
	}
	for _, c := range cases {
		if got := NormalizeCeres(c.x); !approxEqual(got, c.want, 1e-9) {
			t.Errorf("NormalizeCeres(%v) = %v, want %v", c.x, got, c.want)
		}
	}
}

// S2. Composite with defaults, all ones, zero penalty, confidence 1.0
func TestS2CompositeAllOnes(t *testing.T) {
	n := models.NormalizedComponents{
		MutationFreq: 1, CrisprDependency: 1, SurvivalCorrelation: 1,
		ExpressionSpecificity: 1, StructuralTractability: 1, PocketDetectability: 1,
		NoveltyScore: 1, PathwayIndependence: 1, LiteratureNovelty: 1,
	}
	s := Composite(n, DefaultWeights(), 0)
	if !approxEqual(s, 1.0, 1e-9) {
		t.Errorf("S = %v, want 1.0", s)
	}
	sStar := ConfidenceAdjusted(s, 1.0)
	if !approxEqual(sStar, 1.0, 1e-9) {
		t.Errorf("S* = %v, want 1.0", sStar)
	}
}

// S3. Tiering
func TestS3Tiering(t *testing.T) {
	thresholds := DefaultThresholds()
	n := models.NormalizedComponents{StructuralTractability: 0.50}

	primary := models.RawComponents{MutationFreq: ptr(0.10), InhibitorCount: iptr(5)}
	if got := Tier(0.70, primary, n, thresholds); got != models.TierPrimary {
		t.Errorf("expected Primary, got %v", got)
	}

	saturated := models.RawComponents{MutationFreq: ptr(0.10), InhibitorCount: iptr(60)}
	if got := Tier(0.70, saturated, n, thresholds); got != models.TierExcluded {
		t.Errorf("expected Excluded for saturated inhibitor count, got %v", got)
	}

	secondary := models.RawComponents{MutationFreq: ptr(0.10), InhibitorCount: iptr(5)}
	nLowStruct := models.NormalizedComponents{StructuralTractability: 0.10}
	if got := Tier(0.50, secondary, nLowStruct, thresholds); got != models.TierSecondary {
		t.Errorf("expected Secondary, got %v", got)
	}
}

// Normalization bounds invariant
func TestNormalizationBoundsInvariant(t *testing.T) {
	raws := []models.RawComponents{
		{},
		{MutationFreq: ptr(2), CrisprDependency: ptr(-5), SurvivalCorrelation: ptr(5),
			ExpressionTumorTPM: ptr(1000), ExpressionBaselineTPM: ptr(1),
			StructuralTractability: ptr(2), PocketDetectability: ptr(-1),
			InhibitorCount: iptr(0), EscapePathwayCount: iptr(0), LiteratureNovelty: ptr(2)},
	}
	for _, raw := range raws {
		n := Normalize(raw)
		p := Penalty(raw)
		s := Composite(n, DefaultWeights(), p)
		sStar := ConfidenceAdjusted(s, 1.0)
		if s < 0 || s > 1 {
			t.Errorf("S out of bounds: %v", s)
		}
		if sStar < 0 || sStar > 1 {
			t.Errorf("S* out of bounds: %v", sStar)
		}
	}
}

// Penalty monotonicity: S(raw, P) <= S(raw, 0) for any P >= 0.
func TestPenaltyMonotonicity(t *testing.T) {
	n := models.NormalizedComponents{
		MutationFreq: 0.8, CrisprDependency: 0.7, SurvivalCorrelation: 0.6,
		ExpressionSpecificity: 0.5, StructuralTractability: 0.9, PocketDetectability: 0.4,
		NoveltyScore: 0.3, PathwayIndependence: 0.2, LiteratureNovelty: 0.1,
	}
	w := DefaultWeights()
	sNoPenalty := Composite(n, w, 0)
	for _, p := range []float64{0.05, 0.1, 0.23, 1.0} {
		s := Composite(n, w, p)
		if s > sNoPenalty {
			t.Errorf("penalty %v increased score: %v > %v", p, s, sNoPenalty)
		}
	}
}

// Weight normalization: if weights sum to 1, S with every n_i=1 and P=0 equals 1.
func TestWeightNormalizationIdentity(t *testing.T) {
	w := Weights{
		MutationFreq: 0.1, CrisprDependency: 0.1, SurvivalCorrelation: 0.1,
		ExpressionSpecificity: 0.1, StructuralTractability: 0.1, PocketDetectability: 0.1,
		NoveltyScore: 0.1, PathwayIndependence: 0.2, LiteratureNovelty: 0.1,
	}
	if err := w.Validate(); err != nil {
		t.Fatalf("expected valid weights, got %v", err)
	}
	n := models.NormalizedComponents{
		MutationFreq: 1, CrisprDependency: 1, SurvivalCorrelation: 1,
		ExpressionSpecificity: 1, StructuralTractability: 1, PocketDetectability: 1,
		NoveltyScore: 1, PathwayIndependence: 1, LiteratureNovelty: 1,
	}
	if got := Composite(n, w, 0); !approxEqual(got, 1.0, 1e-9) {
		t.Errorf("S = %v, want 1.0", got)
	}
}

// Ceres monotonicity: for x1 < x2 <= 0, normalize_ceres(x1) >= normalize_ceres(x2).
func TestCeresMonotonicity(t *testing.T) {
	pairs := [][2]float64{{-2, -1}, {-1.5, -0.5}, {-0.5, 0}, {-10, -9}}
	for _, p := range pairs {
		x1, x2 := p[0], p[1]
		if NormalizeCeres(x1) < NormalizeCeres(x2) {
			t.Errorf("expected normalize_ceres(%v) >= normalize_ceres(%v)", x1, x2)
		}
	}
}

// Ceres clamping: normalize_ceres(x) = normalize_ceres(clamp(x, -2, 0)).
func TestCeresClamping(t *testing.T) {
	for _, x := range []float64{-10, -2.5, -2, -1, 0, 0.5, 5} {
		clamped := clamp(x, -2, 0)
		if NormalizeCeres(x) != NormalizeCeres(clamped) {
			t.Errorf("normalize_ceres(%v) != normalize_ceres(clamp(%v)) = normalize_ceres(%v)", x, x, clamped)
		}
	}
}

func TestPenaltySaturation(t *testing.T) {
	raw := models.RawComponents{InhibitorCount: iptr(51), HasExperimentalStructure: true,
		ExpressionTumorTPM: ptr(10), ExpressionBaselineTPM: ptr(1)}
	p := Penalty(raw)
	if p < penaltySaturation {
		t.Errorf("expected saturation penalty component, got total %v", p)
	}
}

func TestPenaltyStructureMissingEntirely(t *testing.T) {
	raw := models.RawComponents{}
	p := Penalty(raw)
	if p < penaltyUnreliableStruct {
		t.Errorf("expected structure penalty when no structure data at all, got %v", p)
	}
}

func TestPenaltyReliablePredictedStructureAvoidsPenalty(t *testing.T) {
	raw := models.RawComponents{
		HasExperimentalStructure:    false,
		PredictedStructureConfidence: ptr(75),
		ExpressionTumorTPM:          ptr(10),
		ExpressionBaselineTPM:       ptr(1),
	}
	p := Penalty(raw)
	if p >= penaltyUnreliableStruct {
		t.Errorf("expected no structure penalty with reliable predicted confidence, got %v", p)
	}
}

func TestEvidenceBaseWeightTable(t *testing.T) {
	cases := map[models.EvidenceType]float64{
		models.EvidenceInVivo:         1.00,
		models.EvidenceInVitro:        0.85,
		models.EvidencePhase3Trial:    1.00,
		models.EvidencePhase1_2Trial:  0.75,
		models.EvidenceMLComputation:  0.50,
		models.EvidenceRuleBased:      0.35,
		models.EvidenceTextMined:      0.30,
		models.EvidenceDatabaseAssert: 0.40,
	}
	for et, want := range cases {
		if got := EvidenceBaseWeight(et); got != want {
			t.Errorf("EvidenceBaseWeight(%v) = %v, want %v", et, got, want)
		}
	}
}

func TestWeightsValidateRejectsNegative(t *testing.T) {
	w := DefaultWeights()
	w.MutationFreq = -0.1
	if err := w.Validate(); err == nil {
		t.Error("expected validation error for negative weight")
	}
}

func TestWeightsValidateRejectsBadSum(t *testing.T) {
	w := Weights{MutationFreq: 0.5}
	if err := w.Validate(); err == nil {
		t.Error("expected validation error for weights not summing to 1")
	}
}

func TestWeightsNormalized(t *testing.T) {
	w := Weights{MutationFreq: 1, CrisprDependency: 1}
	norm := w.Normalized()
	if !approxEqual(norm.Sum(), 1.0, 1e-9) {
		t.Errorf("normalized weights sum to %v, want 1.0", norm.Sum())
	}
}

func TestComputePipeline(t *testing.T) {
	raw := models.RawComponents{
		MutationFreq:           ptr(0.10),
		CrisprDependency:       ptr(-1.5),
		SurvivalCorrelation:    ptr(0.2),
		ExpressionTumorTPM:     ptr(20),
		ExpressionBaselineTPM:  ptr(2),
		StructuralTractability: ptr(0.6),
		PocketDetectability:    ptr(0.5),
		InhibitorCount:         iptr(3),
		EscapePathwayCount:     iptr(1),
		LiteratureNovelty:      ptr(0.8),
		HasExperimentalStructure: true,
	}
	score := Compute(raw, DefaultWeights(), 0.9, DefaultThresholds())
	if score.CompositeScore <= 0 || score.CompositeScore > 1 {
		t.Errorf("unexpected composite score: %v", score.CompositeScore)
	}
	if score.ConfidenceAdjustedScore > score.CompositeScore {
		t.Errorf("confidence adjustment should not increase the score: %v > %v", score.ConfidenceAdjustedScore, score.CompositeScore)
	}
}
