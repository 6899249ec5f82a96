package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nishad/oncotarget/internal/evidence"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/kg"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/ranker"
	"github.com/nishad/oncotarget/internal/repository"
)

var (
	scoreGene       string
	scoreCancerType string
	scoreDepMapCSV  string
	scoreTcgaCSV    string
	scoreGtexCSV    string
	scoreTumorTPM   float64
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a composite target score for a (gene, cancer_type) pair",
	Long: `Pulls CRISPR dependency, survival correlation, and baseline
expression from the configured evidence providers, combines them with
inhibitor count, escape-pathway count and literature novelty derived
from the facts already asserted in the knowledge graph (structural
tractability and other components not sourced here stay unset and
normalize to 0), and persists a new versioned
TargetScore row (spec.md §4.11, §4.14 "scores are versioned, never
overwritten").`,
	Example: `  oncotarget score --gene KRAS --cancer-type "pancreatic cancer" \
    --depmap-csv depmap.csv --tcga-csv tcga.csv --gtex-csv gtex.csv`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().StringVar(&scoreGene, "gene", "", "gene symbol (required)")
	scoreCmd.Flags().StringVar(&scoreCancerType, "cancer-type", "", "cancer type (required)")
	scoreCmd.Flags().StringVar(&scoreDepMapCSV, "depmap-csv", "", "CSV of CRISPR dependency scores (optional)")
	scoreCmd.Flags().StringVar(&scoreTcgaCSV, "tcga-csv", "", "CSV of survival correlations (optional)")
	scoreCmd.Flags().StringVar(&scoreGtexCSV, "gtex-csv", "", "CSV of baseline tissue expression (optional)")
	scoreCmd.Flags().Float64Var(&scoreTumorTPM, "tumor-tpm", 0, "observed tumor expression (TPM), for expression specificity")
	_ = scoreCmd.MarkFlagRequired("gene")
	_ = scoreCmd.MarkFlagRequired("cancer-type")
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, err := repository.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer repo.Close()

	geneID, err := upsertReferenceEntity(ctx, repo, scoreGene, models.EntityGene)
	if err != nil {
		return fmt.Errorf("resolve gene entity: %w", err)
	}
	cancerID, err := upsertReferenceEntity(ctx, repo, scoreCancerType, models.EntityCancerType)
	if err != nil {
		return fmt.Errorf("resolve cancer type entity: %w", err)
	}

	raw, err := buildRawComponents(ctx, repo, geneID, cancerID)
	if err != nil {
		return fmt.Errorf("assemble raw components: %w", err)
	}

	store := kg.New(repo)
	confidence, err := store.MeanConfidence(ctx, geneID, cancerID)
	if err != nil {
		return fmt.Errorf("compute mean confidence: %w", err)
	}

	weights := cfg.Ranker.Weights.Normalized()
	thresholds := ranker.Thresholds{Primary: cfg.Ranker.PrimaryTier, Secondary: cfg.Ranker.SecondaryTier}
	result := ranker.Compute(raw, weights, confidence, thresholds)

	targetScore := models.TargetScore{
		GeneID:                  geneID,
		CancerID:                cancerID,
		Raw:                     raw,
		Normalized:              result.Normalized,
		Penalty:                 result.Penalty,
		CompositeScore:          result.CompositeScore,
		ConfidenceAdjustedScore: result.ConfidenceAdjustedScore,
		ShortlistTier:           result.Tier,
	}
	if err := repo.InsertTargetScore(ctx, &targetScore); err != nil {
		return fmt.Errorf("persist target score: %w", err)
	}

	fmt.Printf("%s / %s: composite=%.3f confidence_adjusted=%.3f tier=%s version=%d\n",
		scoreGene, scoreCancerType, result.CompositeScore, result.ConfidenceAdjustedScore, result.Tier, targetScore.ScoreVersion)
	return nil
}

// upsertReferenceEntity get-or-creates a score-target entity keyed on its
// own name, so repeated `score` invocations for the same gene/cancer
// pair resolve to the same entity id without requiring prior NER
// extraction to have seen it.
func upsertReferenceEntity(ctx context.Context, repo *repository.DB, name string, entityType models.EntityType) (ids.ID, error) {
	e := models.Entity{
		ExternalID: strings.ToLower(strings.TrimSpace(name)),
		Name:       name,
		EntityType: entityType,
		SourceDB:   "manual_score_lookup",
	}
	return repo.UpsertEntity(ctx, &e)
}

// buildRawComponents pulls whatever CSV evidence is configured, and
// derives the literature-sourced components (inhibitor count, escape
// pathway count, novelty) from the knowledge graph facts the ingestion
// pipeline already asserted for geneID. Any component left unset
// contributes a nil field, which ranker.Normalize maps to 0 per
// spec.md §4.11.
func buildRawComponents(ctx context.Context, repo *repository.DB, geneID, cancerID ids.ID) (models.RawComponents, error) {
	var raw models.RawComponents

	if scoreDepMapCSV != "" {
		f, err := os.Open(scoreDepMapCSV)
		if err != nil {
			return raw, fmt.Errorf("open depmap csv: %w", err)
		}
		defer f.Close()
		provider, err := evidence.NewCSVDepMapProvider(f)
		if err != nil {
			return raw, fmt.Errorf("parse depmap csv: %w", err)
		}
		if v, err := provider.GetMeanCeres(ctx, scoreGene, scoreCancerType); err == nil {
			raw.CrisprDependency = v
		}
	}

	if scoreTcgaCSV != "" {
		f, err := os.Open(scoreTcgaCSV)
		if err != nil {
			return raw, fmt.Errorf("open tcga csv: %w", err)
		}
		defer f.Close()
		provider, err := evidence.NewCSVTcgaProvider(f)
		if err != nil {
			return raw, fmt.Errorf("parse tcga csv: %w", err)
		}
		if v, err := provider.GetSurvivalCorrelation(ctx, scoreGene, scoreCancerType); err == nil {
			raw.SurvivalCorrelation = v
		}
	}

	if scoreGtexCSV != "" {
		f, err := os.Open(scoreGtexCSV)
		if err != nil {
			return raw, fmt.Errorf("open gtex csv: %w", err)
		}
		defer f.Close()
		provider, err := evidence.NewCSVGtexProvider(f)
		if err != nil {
			return raw, fmt.Errorf("parse gtex csv: %w", err)
		}
		if tpmByTissue, err := provider.GetMedianExpression(ctx, scoreGene); err == nil && len(tpmByTissue) > 0 {
			var sum float64
			for _, v := range tpmByTissue {
				sum += v
			}
			baseline := sum / float64(len(tpmByTissue))
			raw.ExpressionBaselineTPM = &baseline
		}
	}

	if scoreTumorTPM > 0 {
		raw.ExpressionTumorTPM = &scoreTumorTPM
	}

	inhibitors, pathways, total, err := coOccurringCounts(ctx, repo, geneID)
	if err != nil {
		return raw, fmt.Errorf("derive literature components: %w", err)
	}
	raw.InhibitorCount = &inhibitors
	raw.EscapePathwayCount = &pathways
	if total > 0 {
		novelty := 1 / (1 + float64(total))
		raw.LiteratureNovelty = &novelty
	}

	return raw, nil
}

// coOccurringCounts tallies the distinct chemical entities (inhibitor
// candidates) and pathway entities (escape pathways) the knowledge
// graph currently links to geneID, plus the total current fact count
// touching it (used as a crude literature-saturation proxy for
// novelty).
func coOccurringCounts(ctx context.Context, repo *repository.DB, geneID ids.ID) (inhibitors, pathways, total int, err error) {
	store := kg.New(repo)
	facts, err := store.CurrentFacts(ctx, geneID)
	if err != nil {
		return 0, 0, 0, err
	}

	chemicals := make(map[ids.ID]struct{})
	pathwaySet := make(map[ids.ID]struct{})
	for _, f := range facts {
		other := f.ObjectID
		if other == geneID {
			other = f.SubjectID
		}
		entity, err := repo.GetEntity(ctx, other)
		if err != nil {
			continue
		}
		switch entity.EntityType {
		case models.EntityChemical:
			chemicals[other] = struct{}{}
		case models.EntityPathway:
			pathwaySet[other] = struct{}{}
		}
	}
	return len(chemicals), len(pathwaySet), len(facts), nil
}
