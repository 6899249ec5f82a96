// Package normalize maps gene aliases and HGVS variant shorthand onto
// canonical identifiers, following the HGNC gene registry and the HGVS
// protein-notation conventions.
package normalize

import (
	"bufio"
	"io"
	"strings"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// HGNCRecord is the canonical record a symbol, alias, or previous symbol
// resolves to.
type HGNCRecord struct {
	HGNCID    string
	Symbol    string
	Name      string
	EntrezID  string
	EnsemblID string
}

// HGNCTable is an in-memory, case-insensitive lookup from any known
// symbol/alias/previous-symbol to its canonical HGNC record. Built once
// per process and shared read-only thereafter.
type HGNCTable struct {
	byUpper map[string]HGNCRecord
}

// NewHGNCTable builds a table from a tab-separated dataset with columns
// hgnc_id, symbol, name, alias_symbols (comma-separated), prev_symbols
// (comma-separated), entrez_id, ensembl_gene_id, in that order. A header
// row is tolerated and skipped if its first column is not "HGNC:".
func NewHGNCTable(r io.Reader) (*HGNCTable, error) {
	t := &HGNCTable{byUpper: make(map[string]HGNCRecord)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		cols := strings.Split(line, "\t")
		if first {
			first = false
			if len(cols) == 0 || !strings.HasPrefix(cols[0], "HGNC:") {
				continue // header row
			}
		}
		if len(cols) < 3 {
			continue
		}
		rec := HGNCRecord{
			HGNCID: strings.TrimSpace(cols[0]),
			Symbol: strings.TrimSpace(cols[1]),
			Name:   strings.TrimSpace(cols[2]),
		}
		if len(cols) > 5 {
			rec.EntrezID = strings.TrimSpace(cols[5])
		}
		if len(cols) > 6 {
			rec.EnsemblID = strings.TrimSpace(cols[6])
		}
		t.index(rec.Symbol, rec)
		if len(cols) > 3 {
			for _, alias := range splitList(cols[3]) {
				t.index(alias, rec)
			}
		}
		if len(cols) > 4 {
			for _, prev := range splitList(cols[4]) {
				t.index(prev, rec)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.WrapMsg("normalize.NewHGNCTable", "reading HGNC dataset", err)
	}
	return t, nil
}

func splitList(field string) []string {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil
	}
	parts := strings.Split(field, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (t *HGNCTable) index(token string, rec HGNCRecord) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	key := strings.ToUpper(token)
	if _, exists := t.byUpper[key]; !exists {
		t.byUpper[key] = rec
	}
}

// Lookup resolves a symbol, alias, or previous symbol, case-insensitively.
func (t *HGNCTable) Lookup(token string) (HGNCRecord, bool) {
	rec, ok := t.byUpper[strings.ToUpper(strings.TrimSpace(token))]
	return rec, ok
}

// Len returns the number of distinct tokens indexed (symbols + aliases +
// previous symbols), not the number of distinct genes.
func (t *HGNCTable) Len() int {
	return len(t.byUpper)
}
