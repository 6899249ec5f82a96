package evidence

import (
	"context"
	"strings"
	"testing"
)

func TestCSVDepMapProviderMeanAndMedian(t *testing.T) {
	csv := "gene,cancer_type,ceres\n" +
		"KRAS,pancreatic,-1.8\n" +
		"KRAS,pancreatic,-1.6\n" +
		"KRAS,pancreatic,-1.4\n" +
		"BRAF,melanoma,-0.9\n"

	p, err := NewCSVDepMapProvider(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mean, err := p.GetMeanCeres(context.Background(), "kras", "Pancreatic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mean == nil {
		t.Fatal("expected a mean CERES value")
	}
	if got, want := *mean, -1.6; got < want-1e-9 || got > want+1e-9 {
		t.Errorf("mean = %v, want %v", got, want)
	}

	median, err := p.GetMedianCeres(context.Background(), "KRAS", "pancreatic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if median == nil || *median != -1.6 {
		t.Errorf("median = %v, want -1.6", median)
	}
}

func TestCSVDepMapProviderMissingPairReturnsNil(t *testing.T) {
	p, err := NewCSVDepMapProvider(strings.NewReader("gene,cancer_type,ceres\nKRAS,pancreatic,-1.8\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := p.GetMeanCeres(context.Background(), "EGFR", "lung")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != nil {
		t.Errorf("expected nil for unknown pair, got %v", *v)
	}
}

func TestCSVDepMapProviderTopDependencies(t *testing.T) {
	csv := "gene,cancer_type,ceres\n" +
		"KRAS,pancreatic,-1.8\n" +
		"MYC,pancreatic,-1.2\n" +
		"TP53,pancreatic,-0.5\n" +
		"EGFR,lung,-1.9\n"
	p, err := NewCSVDepMapProvider(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	deps, err := p.GetTopDependencies(context.Background(), "pancreatic", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(deps) != 2 {
		t.Fatalf("expected 2 dependencies, got %d", len(deps))
	}
	if deps[0].Gene != "KRAS" {
		t.Errorf("expected most essential gene first, got %q", deps[0].Gene)
	}
}

func TestCSVTcgaProvider(t *testing.T) {
	p, err := NewCSVTcgaProvider(strings.NewReader("gene,cancer_type,correlation\nKRAS,pancreatic,-0.4\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := p.GetSurvivalCorrelation(context.Background(), "KRAS", "pancreatic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || *v != -0.4 {
		t.Errorf("got %v, want -0.4", v)
	}
}

func TestCSVGtexProvider(t *testing.T) {
	csv := "gene,tissue,median_tpm\n" +
		"KRAS,pancreas,12.5\n" +
		"KRAS,liver,3.1\n"
	p, err := NewCSVGtexProvider(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tissues, err := p.GetMedianExpression(context.Background(), "kras")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tissues) != 2 || tissues["pancreas"] != 12.5 {
		t.Errorf("unexpected tissues map: %+v", tissues)
	}
}

func TestCSVGtexProviderUnknownGene(t *testing.T) {
	p, err := NewCSVGtexProvider(strings.NewReader("gene,tissue,median_tpm\nKRAS,pancreas,12.5\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tissues, err := p.GetMedianExpression(context.Background(), "EGFR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tissues != nil {
		t.Errorf("expected nil for unknown gene, got %+v", tissues)
	}
}

func TestCSVProvidersWithoutHeader(t *testing.T) {
	p, err := NewCSVDepMapProvider(strings.NewReader("KRAS,pancreatic,-1.8\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := p.GetMeanCeres(context.Background(), "KRAS", "pancreatic")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v == nil || *v != -1.8 {
		t.Errorf("got %v, want -1.8", v)
	}
}
