package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/dedup"
	"github.com/nishad/oncotarget/internal/ids"
	"github.com/nishad/oncotarget/internal/models"
)

// UpsertResult reports whether UpsertPaper inserted a new row or matched
// an existing one by DOI/PMID.
type UpsertResult struct {
	PaperID ids.ID
	WasNew  bool
}

// UpsertPaper inserts p, or returns the id of an existing paper sharing
// its DOI or PMID (spec.md §8 "idempotent upsert": same DOI/PMID yields
// the same paper_id, WasNew true only on first insert).
func (db *DB) UpsertPaper(ctx context.Context, p *models.Paper) (UpsertResult, error) {
	if existing, found, err := db.findPaperByDOIOrPMID(ctx, p.DOI, p.PMID); err != nil {
		return UpsertResult{}, apperrors.Wrap("repository.UpsertPaper", err)
	} else if found {
		return UpsertResult{PaperID: existing, WasNew: false}, nil
	}

	if p.ID == ids.Nil {
		p.ID = ids.New()
	}
	if p.IngestedAt.IsZero() {
		p.IngestedAt = ids.Now()
	}
	if p.ParseStatus == "" {
		p.ParseStatus = models.ParseStatusPending
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO papers (
			id, doi, pmid, pmcid, title, abstract, full_text, source,
			published_at, journal, volume, issue, pages, parse_status,
			ingested_at, abstract_simhash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		p.ID.String(), p.DOI, p.PMID, p.PMCID, p.Title, p.Abstract, p.FullText, p.Source,
		p.PublishedAt, p.Journal, p.Volume, p.Issue, p.Pages, string(p.ParseStatus),
		p.IngestedAt, p.AbstractSimHash,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			// Lost a race against a concurrent upsert on the same DOI/PMID.
			if existing, found, ferr := db.findPaperByDOIOrPMID(ctx, p.DOI, p.PMID); ferr == nil && found {
				return UpsertResult{PaperID: existing, WasNew: false}, nil
			}
			return UpsertResult{}, apperrors.E(apperrors.Op("repository.UpsertPaper"), apperrors.KindPersistenceConflict, err)
		}
		return UpsertResult{}, apperrors.Wrap("repository.UpsertPaper", err)
	}

	return UpsertResult{PaperID: p.ID, WasNew: true}, nil
}

func (db *DB) findPaperByDOIOrPMID(ctx context.Context, doi, pmid *string) (ids.ID, bool, error) {
	if doi == nil && pmid == nil {
		return ids.Nil, false, nil
	}

	var row *sql.Row
	switch {
	case doi != nil && pmid != nil:
		row = db.QueryRowContext(ctx, `SELECT id FROM papers WHERE doi = ? OR pmid = ? LIMIT 1`, *doi, *pmid)
	case doi != nil:
		row = db.QueryRowContext(ctx, `SELECT id FROM papers WHERE doi = ? LIMIT 1`, *doi)
	default:
		row = db.QueryRowContext(ctx, `SELECT id FROM papers WHERE pmid = ? LIMIT 1`, *pmid)
	}

	var idStr string
	if err := row.Scan(&idStr); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ids.Nil, false, nil
		}
		return ids.Nil, false, err
	}
	id, err := ids.Parse(idStr)
	if err != nil {
		return ids.Nil, false, err
	}
	return id, true, nil
}

// SetParseStatus updates a paper's parse_status, optionally persisting
// its full text and SimHash fingerprint in the same statement.
func (db *DB) SetParseStatus(ctx context.Context, paperID ids.ID, status models.ParseStatus, fullText *string, simhash *int64) error {
	_, err := db.ExecContext(ctx, `
		UPDATE papers SET parse_status = ?, full_text = COALESCE(?, full_text), abstract_simhash = COALESCE(?, abstract_simhash)
		WHERE id = ?
	`, string(status), fullText, simhash, paperID.String())
	return apperrors.Wrap("repository.SetParseStatus", err)
}

// GetPaper fetches a paper by id.
func (db *DB) GetPaper(ctx context.Context, id ids.ID) (*models.Paper, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, doi, pmid, pmcid, title, abstract, full_text, source,
			published_at, journal, volume, issue, pages, parse_status,
			ingested_at, abstract_simhash
		FROM papers WHERE id = ?
	`, id.String())
	p, err := scanPaper(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.E(apperrors.Op("repository.GetPaper"), apperrors.KindNotFound, err)
	}
	if err != nil {
		return nil, apperrors.Wrap("repository.GetPaper", err)
	}
	return p, nil
}

func scanPaper(row *sql.Row) (*models.Paper, error) {
	var p models.Paper
	var idStr string
	err := row.Scan(&idStr, &p.DOI, &p.PMID, &p.PMCID, &p.Title, &p.Abstract, &p.FullText, &p.Source,
		&p.PublishedAt, &p.Journal, &p.Volume, &p.Issue, &p.Pages, &p.ParseStatus,
		&p.IngestedAt, &p.AbstractSimHash)
	if err != nil {
		return nil, err
	}
	id, err := ids.Parse(idStr)
	if err != nil {
		return nil, err
	}
	p.ID = id
	return &p, nil
}

// FindNearDuplicates returns papers whose abstract SimHash is within
// threshold Hamming distance of target — a read-only diagnostic query;
// per spec.md §9 this is never used to reject papers at ingest time.
func (db *DB) FindNearDuplicates(ctx context.Context, target int64, threshold int, limit int) ([]models.Paper, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, doi, pmid, pmcid, title, abstract, full_text, source,
			published_at, journal, volume, issue, pages, parse_status,
			ingested_at, abstract_simhash
		FROM papers WHERE abstract_simhash IS NOT NULL
	`)
	if err != nil {
		return nil, apperrors.Wrap("repository.FindNearDuplicates", err)
	}
	defer rows.Close()

	var out []models.Paper
	for rows.Next() {
		var p models.Paper
		var idStr string
		if err := rows.Scan(&idStr, &p.DOI, &p.PMID, &p.PMCID, &p.Title, &p.Abstract, &p.FullText, &p.Source,
			&p.PublishedAt, &p.Journal, &p.Volume, &p.Issue, &p.Pages, &p.ParseStatus,
			&p.IngestedAt, &p.AbstractSimHash); err != nil {
			continue
		}
		id, err := ids.Parse(idStr)
		if err != nil {
			continue
		}
		p.ID = id
		if p.AbstractSimHash == nil {
			continue
		}
		if dedup.Hamming(*p.AbstractSimHash, target) < threshold {
			out = append(out, p)
			if len(out) >= limit {
				break
			}
		}
	}
	return out, rows.Err()
}

func isUniqueConstraintErr(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
