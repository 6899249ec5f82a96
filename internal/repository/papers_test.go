package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/dedup"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

func setupTestDB(t *testing.T) (*DB, func()) {
	t.Helper()

	dir, err := os.MkdirTemp("", "oncotarget-repo-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	dbPath := filepath.Join(dir, "test.db")
	db, err := Open(dbPath)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Open failed: %v", err)
	}

	cleanup := func() {
		db.Close()
		os.RemoveAll(dir)
	}
	return db, cleanup
}

func strptr(s string) *string { return &s }

func TestUpsertPaperNewInsertsFresh(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	p := &models.Paper{DOI: strptr("10.1/abc"), Title: "KRAS in PDAC", Source: "pubmed"}
	res, err := db.UpsertPaper(context.Background(), p)
	if err != nil {
		t.Fatalf("UpsertPaper: %v", err)
	}
	if !res.WasNew {
		t.Error("expected WasNew true on first insert")
	}
	if res.PaperID != p.ID {
		t.Errorf("expected returned id to match assigned paper id, got %v want %v", res.PaperID, p.ID)
	}
}

func TestUpsertPaperSameDOIIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p1 := &models.Paper{DOI: strptr("10.1/same"), Title: "First insert", Source: "pubmed"}
	res1, err := db.UpsertPaper(ctx, p1)
	if err != nil {
		t.Fatalf("UpsertPaper #1: %v", err)
	}

	p2 := &models.Paper{DOI: strptr("10.1/same"), Title: "Re-ingested copy", Source: "europepmc"}
	res2, err := db.UpsertPaper(ctx, p2)
	if err != nil {
		t.Fatalf("UpsertPaper #2: %v", err)
	}

	if res2.WasNew {
		t.Error("expected WasNew false on repeat DOI")
	}
	if res1.PaperID != res2.PaperID {
		t.Errorf("expected same paper id, got %v and %v", res1.PaperID, res2.PaperID)
	}
}

func TestUpsertPaperSamePMIDIsIdempotent(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p1 := &models.Paper{PMID: strptr("12345"), Title: "First", Source: "pubmed"}
	res1, _ := db.UpsertPaper(ctx, p1)

	p2 := &models.Paper{PMID: strptr("12345"), Title: "Second", Source: "pubmed"}
	res2, err := db.UpsertPaper(ctx, p2)
	if err != nil {
		t.Fatalf("UpsertPaper: %v", err)
	}
	if res2.WasNew || res1.PaperID != res2.PaperID {
		t.Error("expected idempotent match on PMID")
	}
}

func TestGetPaperNotFound(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := db.GetPaper(context.Background(), ids.New())
	if apperrors.KindOf(err) != apperrors.KindNotFound {
		t.Errorf("expected KindNotFound, got %v", apperrors.KindOf(err))
	}
}

func TestSetParseStatusUpdatesFullTextAndSimhash(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	p := &models.Paper{DOI: strptr("10.1/parse"), Title: "T", Source: "pubmed"}
	res, _ := db.UpsertPaper(ctx, p)

	full := "full text body about KRAS G12D inhibitors"
	sh := dedup.SimHash(full)
	if err := db.SetParseStatus(ctx, res.PaperID, models.ParseStatusParsed, &full, &sh); err != nil {
		t.Fatalf("SetParseStatus: %v", err)
	}

	got, err := db.GetPaper(ctx, res.PaperID)
	if err != nil {
		t.Fatalf("GetPaper: %v", err)
	}
	if got.ParseStatus != models.ParseStatusParsed {
		t.Errorf("got status %q, want parsed", got.ParseStatus)
	}
	if got.FullText == nil || *got.FullText != full {
		t.Error("full text not persisted")
	}
	if got.AbstractSimHash == nil || *got.AbstractSimHash != sh {
		t.Error("simhash not persisted")
	}
}

func TestFindNearDuplicatesDoesNotExcludeIngest(t *testing.T) {
	// spec.md §9: SimHash is a read-only diagnostic, never used to reject
	// papers at ingest. Two papers with identical content both insert
	// successfully and both appear as "near duplicates" of each other.
	db, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	text := "BRAF V600E mutation drives melanoma proliferation via MAPK signaling"
	sh := dedup.SimHash(text)

	p1 := &models.Paper{DOI: strptr("10.1/dup1"), Title: "T1", Source: "pubmed", AbstractSimHash: &sh}
	res1, err := db.UpsertPaper(ctx, p1)
	if err != nil {
		t.Fatalf("insert p1: %v", err)
	}

	p2 := &models.Paper{DOI: strptr("10.1/dup2"), Title: "T2", Source: "biorxiv", AbstractSimHash: &sh}
	res2, err := db.UpsertPaper(ctx, p2)
	if err != nil {
		t.Fatalf("insert p2: %v", err)
	}
	if res1.PaperID == res2.PaperID {
		t.Fatal("distinct DOIs must not collapse to the same paper")
	}

	dupes, err := db.FindNearDuplicates(ctx, sh, dedup.DefaultNearDuplicateThreshold, 10)
	if err != nil {
		t.Fatalf("FindNearDuplicates: %v", err)
	}
	if len(dupes) != 2 {
		t.Errorf("expected both papers surfaced as near duplicates, got %d", len(dupes))
	}
}
