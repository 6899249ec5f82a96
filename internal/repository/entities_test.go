package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nishad/oncotarget/internal/models"
)

func TestUpsertEntityIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	e1 := &models.Entity{ExternalID: "HGNC:6407", Name: "KRAS", EntityType: models.EntityGene, SourceDB: "hgnc"}
	id1, err := db.UpsertEntity(ctx, e1)
	if err != nil {
		t.Fatalf("UpsertEntity #1: %v", err)
	}

	e2 := &models.Entity{ExternalID: "HGNC:6407", Name: "KRAS proto-oncogene", EntityType: models.EntityGene, SourceDB: "hgnc"}
	id2, err := db.UpsertEntity(ctx, e2)
	if err != nil {
		t.Fatalf("UpsertEntity #2: %v", err)
	}

	if id1 != id2 {
		t.Errorf("expected same entity id for same (external_id, source_db), got %v and %v", id1, id2)
	}
}

func TestFindEntityByExternalID(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	e := &models.Entity{ExternalID: "HGNC:3236", Name: "EGFR", EntityType: models.EntityGene, SourceDB: "hgnc"}
	id, err := db.UpsertEntity(ctx, e)
	if err != nil {
		t.Fatalf("UpsertEntity: %v", err)
	}

	got, err := db.FindEntityByExternalID(ctx, "HGNC:3236", "hgnc")
	if err != nil {
		t.Fatalf("FindEntityByExternalID: %v", err)
	}
	if got.ID != id {
		t.Errorf("got id %v, want %v", got.ID, id)
	}
	if got.Name != "EGFR" {
		t.Errorf("got name %q, want EGFR", got.Name)
	}
}

func TestIncrementEntityCountersAccumulates(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	e := &models.Entity{ExternalID: "HGNC:1097", Name: "BRAF", EntityType: models.EntityGene, SourceDB: "hgnc"}
	id, err := db.UpsertEntity(ctx, e)
	if err != nil {
		t.Fatalf("UpsertEntity: %v", err)
	}

	if err := db.IncrementEntityCounters(ctx, id, 3, 1, time.Now()); err != nil {
		t.Fatalf("IncrementEntityCounters #1: %v", err)
	}
	if err := db.IncrementEntityCounters(ctx, id, 2, 1, time.Now()); err != nil {
		t.Fatalf("IncrementEntityCounters #2: %v", err)
	}

	got, err := db.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("GetEntity: %v", err)
	}
	if got.MentionCountTotal != 5 {
		t.Errorf("got mention count %d, want 5", got.MentionCountTotal)
	}
	if got.PaperCount != 2 {
		t.Errorf("got paper count %d, want 2", got.PaperCount)
	}
	if got.LastSeen == nil {
		t.Error("expected last_seen to be set")
	}
}

func TestInsertEntityMentionAndLookup(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	paper := &models.Paper{DOI: strptr("10.1/mention"), Title: "T", Source: "pubmed"}
	paperRes, err := db.UpsertPaper(ctx, paper)
	if err != nil {
		t.Fatalf("UpsertPaper: %v", err)
	}

	chunk := models.Chunk{PaperID: paperRes.PaperID, ChunkIndex: 0, Content: "KRAS G12D drives tumor growth"}
	if err := db.InsertChunk(ctx, &chunk); err != nil {
		t.Fatalf("InsertChunk: %v", err)
	}

	entity := &models.Entity{ExternalID: "HGNC:6407", Name: "KRAS", EntityType: models.EntityGene, SourceDB: "hgnc"}
	entityID, err := db.UpsertEntity(ctx, entity)
	if err != nil {
		t.Fatalf("UpsertEntity: %v", err)
	}

	m := &models.EntityMention{
		EntityID: entityID, ChunkID: chunk.ID, PaperID: paperRes.PaperID,
		StartOffset: 0, EndOffset: 4, Text: "KRAS",
	}
	if err := db.InsertEntityMention(ctx, m); err != nil {
		t.Fatalf("InsertEntityMention: %v", err)
	}

	byChunk, err := db.GetMentionsByChunk(ctx, chunk.ID)
	if err != nil {
		t.Fatalf("GetMentionsByChunk: %v", err)
	}
	if len(byChunk) != 1 || byChunk[0].Text != "KRAS" {
		t.Errorf("unexpected mentions by chunk: %+v", byChunk)
	}

	byPaper, err := db.GetMentionsByPaper(ctx, paperRes.PaperID)
	if err != nil {
		t.Fatalf("GetMentionsByPaper: %v", err)
	}
	if len(byPaper) != 1 {
		t.Errorf("expected 1 mention by paper, got %d", len(byPaper))
	}
}
