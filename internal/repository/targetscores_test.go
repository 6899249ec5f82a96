package repository

import (
	"context"
	"testing"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

func seedGeneCancerPair(t *testing.T, db *DB, ctx context.Context) (geneID, cancerID ids.ID) {
	t.Helper()
	g, err := db.UpsertEntity(ctx, &models.Entity{ExternalID: "HGNC:6407", Name: "KRAS", EntityType: models.EntityGene, SourceDB: "hgnc"})
	if err != nil {
		t.Fatalf("UpsertEntity gene: %v", err)
	}
	c, err := db.UpsertEntity(ctx, &models.Entity{ExternalID: "DOID:1793", Name: "pancreatic cancer", EntityType: models.EntityCancerType, SourceDB: "doid"})
	if err != nil {
		t.Fatalf("UpsertEntity cancer: %v", err)
	}
	return g, c
}

func TestInsertTargetScoreVersionsInsteadOfOverwriting(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	geneID, cancerID := seedGeneCancerPair(t, db, ctx)

	s1 := &models.TargetScore{
		GeneID: geneID, CancerID: cancerID, Penalty: 0, CompositeScore: 0.6,
		ConfidenceAdjustedScore: 0.5, ShortlistTier: models.TierSecondary,
	}
	if err := db.InsertTargetScore(ctx, s1); err != nil {
		t.Fatalf("InsertTargetScore #1: %v", err)
	}
	if s1.ScoreVersion != 1 {
		t.Errorf("got version %d, want 1", s1.ScoreVersion)
	}

	s2 := &models.TargetScore{
		GeneID: geneID, CancerID: cancerID, Penalty: 0, CompositeScore: 0.8,
		ConfidenceAdjustedScore: 0.75, ShortlistTier: models.TierPrimary,
	}
	if err := db.InsertTargetScore(ctx, s2); err != nil {
		t.Fatalf("InsertTargetScore #2: %v", err)
	}
	if s2.ScoreVersion != 2 {
		t.Errorf("got version %d, want 2", s2.ScoreVersion)
	}

	current, err := db.GetCurrentTargetScore(ctx, geneID, cancerID)
	if err != nil {
		t.Fatalf("GetCurrentTargetScore: %v", err)
	}
	if current.ScoreVersion != 2 || current.ShortlistTier != models.TierPrimary {
		t.Errorf("unexpected current score: %+v", current)
	}

	history, err := db.GetTargetScoreHistory(ctx, geneID, cancerID)
	if err != nil {
		t.Fatalf("GetTargetScoreHistory: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 versions retained, got %d", len(history))
	}
	if history[0].ScoreVersion != 1 || history[1].ScoreVersion != 2 {
		t.Errorf("expected ascending version order, got %+v", history)
	}
	if history[0].IsCurrent {
		t.Error("expected version 1 to be flipped non-current")
	}
	if !history[1].IsCurrent {
		t.Error("expected version 2 to be current")
	}
}

func TestListShortlistOrdersByConfidenceDescending(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	gene1, cancer := seedGeneCancerPair(t, db, ctx)
	gene2, err := db.UpsertEntity(ctx, &models.Entity{ExternalID: "HGNC:3236", Name: "EGFR", EntityType: models.EntityGene, SourceDB: "hgnc"})
	if err != nil {
		t.Fatalf("UpsertEntity: %v", err)
	}

	low := &models.TargetScore{GeneID: gene1, CancerID: cancer, CompositeScore: 0.4, ConfidenceAdjustedScore: 0.3, ShortlistTier: models.TierPrimary}
	high := &models.TargetScore{GeneID: gene2, CancerID: cancer, CompositeScore: 0.9, ConfidenceAdjustedScore: 0.85, ShortlistTier: models.TierPrimary}
	if err := db.InsertTargetScore(ctx, low); err != nil {
		t.Fatalf("InsertTargetScore low: %v", err)
	}
	if err := db.InsertTargetScore(ctx, high); err != nil {
		t.Fatalf("InsertTargetScore high: %v", err)
	}

	list, err := db.ListShortlist(ctx, models.TierPrimary, 10)
	if err != nil {
		t.Fatalf("ListShortlist: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(list))
	}
	if list[0].GeneID != gene2 {
		t.Errorf("expected highest confidence-adjusted score first, got gene %v", list[0].GeneID)
	}
}

func TestListShortlistSortedRejectsUnknownColumn(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	_, err := db.ListShortlistSorted(ctx, models.TierPrimary, "gene_id; DROP TABLE target_scores", 10)
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Errorf("expected KindValidation for non-whitelisted sort column, got %v", apperrors.KindOf(err))
	}
}

func TestListShortlistSortedAcceptsWhitelistedColumn(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	geneID, cancerID := seedGeneCancerPair(t, db, ctx)

	s := &models.TargetScore{GeneID: geneID, CancerID: cancerID, CompositeScore: 0.7, ConfidenceAdjustedScore: 0.6, ShortlistTier: models.TierPrimary}
	if err := db.InsertTargetScore(ctx, s); err != nil {
		t.Fatalf("InsertTargetScore: %v", err)
	}

	list, err := db.ListShortlistSorted(ctx, models.TierPrimary, "composite_score", 10)
	if err != nil {
		t.Fatalf("ListShortlistSorted: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 entry, got %d", len(list))
	}
}
