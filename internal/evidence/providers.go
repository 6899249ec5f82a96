// Package evidence defines the external numeric-evidence providers the
// ranker consumes (DepMap-style CRISPR dependency, TCGA survival
// correlation, GTEx baseline expression), plus CSV-backed and
// deterministic mock implementations of each.
package evidence

import "context"

// DepMapProvider abstracts CRISPR-screen gene-essentiality data, keyed by
// (gene, cancer_type). CERES scores are typically in [-2, 0]; more
// negative means more essential.
type DepMapProvider interface {
	// GetMeanCeres returns the mean CERES score across cell lines of the
	// given cancer type, or nil if no data exists for the pair.
	GetMeanCeres(ctx context.Context, gene, cancerType string) (*float64, error)
	// GetMedianCeres returns the median CERES score for the pair.
	GetMedianCeres(ctx context.Context, gene, cancerType string) (*float64, error)
	// GetTopDependencies returns up to n genes most essential (lowest mean
	// CERES) for cancerType, ordered ascending by mean CERES.
	GetTopDependencies(ctx context.Context, cancerType string, n int) ([]GeneDependency, error)
}

// GeneDependency is one entry of a DepMapProvider.GetTopDependencies result.
type GeneDependency struct {
	Gene      string
	MeanCeres float64
}

// TcgaProvider abstracts tumor-cohort survival-correlation data.
type TcgaProvider interface {
	// GetSurvivalCorrelation returns a directional correlation/hazard
	// proxy in [-1, 1] between gene expression/mutation and survival for
	// cancerType, or nil if unavailable.
	GetSurvivalCorrelation(ctx context.Context, gene, cancerType string) (*float64, error)
}

// GtexProvider abstracts normal-tissue baseline expression data.
type GtexProvider interface {
	// GetMedianExpression returns a mapping from tissue name to median TPM
	// (>= 0) for gene, or nil if the gene is not present in the reference
	// panel.
	GetMedianExpression(ctx context.Context, gene string) (map[string]float64, error)
}
