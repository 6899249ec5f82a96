package repository

import (
	"context"
	"testing"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/models"
)

func TestFactAppendOnlySupersession(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	geneID, err := db.UpsertEntity(ctx, &models.Entity{ExternalID: "HGNC:6407", Name: "KRAS", EntityType: models.EntityGene, SourceDB: "hgnc"})
	if err != nil {
		t.Fatalf("UpsertEntity gene: %v", err)
	}
	cancerID, err := db.UpsertEntity(ctx, &models.Entity{ExternalID: "DOID:1793", Name: "pancreatic cancer", EntityType: models.EntityCancerType, SourceDB: "doid"})
	if err != nil {
		t.Fatalf("UpsertEntity cancer: %v", err)
	}

	f1 := &models.KgFact{
		SubjectID: geneID, Predicate: "dependency_of", ObjectID: cancerID,
		Confidence: 0.6, EvidenceType: models.EvidenceMLComputation, EvidenceWeight: 0.50,
	}
	if err := db.InsertFact(ctx, f1); err != nil {
		t.Fatalf("InsertFact #1: %v", err)
	}

	current, err := db.FindCurrentFact(ctx, geneID, "dependency_of", cancerID)
	if err != nil {
		t.Fatalf("FindCurrentFact: %v", err)
	}
	if current.ID != f1.ID {
		t.Fatalf("got fact %v, want %v", current.ID, f1.ID)
	}

	// Supersede f1 with a higher-confidence fact rather than overwriting it.
	if err := db.SupersedeFact(ctx, f1.ID); err != nil {
		t.Fatalf("SupersedeFact: %v", err)
	}

	f2 := &models.KgFact{
		SubjectID: geneID, Predicate: "dependency_of", ObjectID: cancerID,
		Confidence: 0.9, EvidenceType: models.EvidenceInVivo, EvidenceWeight: 1.0,
	}
	if err := db.InsertFact(ctx, f2); err != nil {
		t.Fatalf("InsertFact #2: %v", err)
	}

	current2, err := db.FindCurrentFact(ctx, geneID, "dependency_of", cancerID)
	if err != nil {
		t.Fatalf("FindCurrentFact after supersede: %v", err)
	}
	if current2.ID != f2.ID {
		t.Errorf("got current fact %v, want %v (f2)", current2.ID, f2.ID)
	}

	// f1 must still exist in the table (append-only, never rewritten or
	// deleted) just marked no longer current.
	history, err := db.ListCurrentFactsBetween(ctx, geneID, cancerID)
	if err != nil {
		t.Fatalf("ListCurrentFactsBetween: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("expected exactly 1 current fact, got %d", len(history))
	}

	var row int
	if err := db.QueryRow(`SELECT COUNT(*) FROM kg_facts WHERE id = ?`, f1.ID.String()).Scan(&row); err != nil {
		t.Fatalf("count f1: %v", err)
	}
	if row != 1 {
		t.Error("expected superseded fact to remain in storage, append-only")
	}
}

func TestFindCurrentFactNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()
	geneID, _ := db.UpsertEntity(ctx, &models.Entity{ExternalID: "HGNC:1", Name: "G1", EntityType: models.EntityGene, SourceDB: "hgnc"})
	cancerID, _ := db.UpsertEntity(ctx, &models.Entity{ExternalID: "DOID:1", Name: "C1", EntityType: models.EntityCancerType, SourceDB: "doid"})

	_, err := db.FindCurrentFact(ctx, geneID, "dependency_of", cancerID)
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("expected KindNotFound, got %v", apperrors.KindOf(err))
	}
}
