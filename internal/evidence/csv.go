package evidence

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nishad/oncotarget/internal/apperrors"
)

// CSVDepMapProvider reads a DepMap-style CRISPR-dependency table of the
// form gene,cancer_type,ceres (one row per cell-line screen; all rows
// per (gene, cancer_type) are kept on load, and the mean or median is
// taken when queried).
type CSVDepMapProvider struct {
	byGeneCancer map[string][]float64
}

// NewCSVDepMapProvider parses r as a CSV with header
// "gene,cancer_type,ceres".
func NewCSVDepMapProvider(r io.Reader) (*CSVDepMapProvider, error) {
	rows, err := readCSVRows(r, 3)
	if err != nil {
		return nil, apperrors.Wrap("evidence.NewCSVDepMapProvider", err)
	}
	p := &CSVDepMapProvider{byGeneCancer: make(map[string][]float64)}
	for _, row := range rows {
		ceres, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			continue
		}
		key := depMapKey(row[0], row[1])
		p.byGeneCancer[key] = append(p.byGeneCancer[key], ceres)
	}
	return p, nil
}

func depMapKey(gene, cancerType string) string {
	return strings.ToUpper(strings.TrimSpace(gene)) + "\x00" + strings.ToLower(strings.TrimSpace(cancerType))
}

func (p *CSVDepMapProvider) GetMeanCeres(_ context.Context, gene, cancerType string) (*float64, error) {
	vals, ok := p.byGeneCancer[depMapKey(gene, cancerType)]
	if !ok || len(vals) == 0 {
		return nil, nil
	}
	mean := sum(vals) / float64(len(vals))
	return &mean, nil
}

func (p *CSVDepMapProvider) GetMedianCeres(_ context.Context, gene, cancerType string) (*float64, error) {
	vals, ok := p.byGeneCancer[depMapKey(gene, cancerType)]
	if !ok || len(vals) == 0 {
		return nil, nil
	}
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	med := median(sorted)
	return &med, nil
}

func (p *CSVDepMapProvider) GetTopDependencies(_ context.Context, cancerType string, n int) ([]GeneDependency, error) {
	suffix := "\x00" + strings.ToLower(strings.TrimSpace(cancerType))
	var deps []GeneDependency
	for key, vals := range p.byGeneCancer {
		if !strings.HasSuffix(key, suffix) || len(vals) == 0 {
			continue
		}
		gene := strings.SplitN(key, "\x00", 2)[0]
		deps = append(deps, GeneDependency{Gene: gene, MeanCeres: sum(vals) / float64(len(vals))})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].MeanCeres < deps[j].MeanCeres })
	if n >= 0 && n < len(deps) {
		deps = deps[:n]
	}
	return deps, nil
}

// CSVTcgaProvider reads a survival-correlation table of the form
// gene,cancer_type,correlation.
type CSVTcgaProvider struct {
	byGeneCancer map[string]float64
}

// NewCSVTcgaProvider parses r as a CSV with header
// "gene,cancer_type,correlation".
func NewCSVTcgaProvider(r io.Reader) (*CSVTcgaProvider, error) {
	rows, err := readCSVRows(r, 3)
	if err != nil {
		return nil, apperrors.Wrap("evidence.NewCSVTcgaProvider", err)
	}
	p := &CSVTcgaProvider{byGeneCancer: make(map[string]float64)}
	for _, row := range rows {
		corr, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			continue
		}
		p.byGeneCancer[depMapKey(row[0], row[1])] = corr
	}
	return p, nil
}

func (p *CSVTcgaProvider) GetSurvivalCorrelation(_ context.Context, gene, cancerType string) (*float64, error) {
	v, ok := p.byGeneCancer[depMapKey(gene, cancerType)]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// CSVGtexProvider reads a baseline-expression table of the form
// gene,tissue,median_tpm.
type CSVGtexProvider struct {
	byGene map[string]map[string]float64
}

// NewCSVGtexProvider parses r as a CSV with header "gene,tissue,median_tpm".
func NewCSVGtexProvider(r io.Reader) (*CSVGtexProvider, error) {
	rows, err := readCSVRows(r, 3)
	if err != nil {
		return nil, apperrors.Wrap("evidence.NewCSVGtexProvider", err)
	}
	p := &CSVGtexProvider{byGene: make(map[string]map[string]float64)}
	for _, row := range rows {
		tpm, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil || tpm < 0 {
			continue
		}
		gene := strings.ToUpper(strings.TrimSpace(row[0]))
		tissue := strings.TrimSpace(row[1])
		if p.byGene[gene] == nil {
			p.byGene[gene] = make(map[string]float64)
		}
		p.byGene[gene][tissue] = tpm
	}
	return p, nil
}

func (p *CSVGtexProvider) GetMedianExpression(_ context.Context, gene string) (map[string]float64, error) {
	m, ok := p.byGene[strings.ToUpper(strings.TrimSpace(gene))]
	if !ok {
		return nil, nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

// readCSVRows parses r as CSV, skipping a header row if present, and
// requires each data row to have at least minFields columns.
func readCSVRows(r io.Reader, minFields int) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}

	rows := all
	if looksLikeHeader(all[0], minFields) {
		rows = all[1:]
	}

	var out [][]string
	for _, row := range rows {
		if len(row) < minFields {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

// looksLikeHeader treats the first row as a header iff its last field
// (always numeric in real data: a ceres/correlation/TPM value) fails to
// parse as a float — this distinguishes a header row from a data row
// even when the leading gene-symbol columns are alphabetic in both.
func looksLikeHeader(row []string, minFields int) bool {
	if len(row) < minFields {
		return true
	}
	last := strings.TrimSpace(row[minFields-1])
	_, err := strconv.ParseFloat(last, 64)
	return err != nil
}

func sum(vals []float64) float64 {
	var total float64
	for _, v := range vals {
		total += v
	}
	return total
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
