package normalize

import "testing"

func TestNormalizeHGVS(t *testing.T) {
	tests := []struct {
		name     string
		variant  string
		gene     string
		wantOK   bool
		wantHGVS string
		wantPos  int
		wantRs   string
	}{
		{"single letter with gene", "G12D", "KRAS", true, "p.Gly12Asp", 12, "rs121913529"},
		{"bare three letter no gene", "Gly12Asp", "", true, "p.Gly12Asp", 12, ""},
		{"prefixed three letter", "p.Gly12Asp", "", true, "p.Gly12Asp", 12, ""},
		{"unparseable", "wild-type", "", false, "", 0, ""},
		{"braf hotspot", "V600E", "BRAF", true, "p.Val600Glu", 600, "rs113488022"},
		{"unknown gene no rsid", "G12D", "SOMEGENE", true, "p.Gly12Asp", 12, ""},
		{"empty input", "", "KRAS", false, "", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeHGVS(tt.variant, tt.gene)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeHGVS(%q, %q) ok = %v, want %v", tt.variant, tt.gene, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.HGVSProtein != tt.wantHGVS {
				t.Errorf("HGVSProtein = %q, want %q", got.HGVSProtein, tt.wantHGVS)
			}
			if got.Position != tt.wantPos {
				t.Errorf("Position = %d, want %d", got.Position, tt.wantPos)
			}
			if got.RsID != tt.wantRs {
				t.Errorf("RsID = %q, want %q", got.RsID, tt.wantRs)
			}
		})
	}
}

func TestNormalizeHGVSCaseInsensitiveResidues(t *testing.T) {
	got, ok := NormalizeHGVS("gly12asp", "")
	if !ok {
		t.Fatal("expected lowercase three-letter residues to parse")
	}
	if got.HGVSProtein != "p.Gly12Asp" {
		t.Errorf("HGVSProtein = %q, want p.Gly12Asp", got.HGVSProtein)
	}
}
