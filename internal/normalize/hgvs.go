package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// aminoAcidThreeToOne maps three-letter amino acid codes to one-letter
// codes (aminoAcidOneToThree is the reverse), grounded on the standard
// IUPAC table.
var aminoAcidThreeToOne = map[string]string{
	"Ala": "A", "Arg": "R", "Asn": "N", "Asp": "D", "Cys": "C",
	"Gln": "Q", "Glu": "E", "Gly": "G", "His": "H", "Ile": "I",
	"Leu": "L", "Lys": "K", "Met": "M", "Phe": "F", "Pro": "P",
	"Ser": "S", "Thr": "T", "Trp": "W", "Tyr": "Y", "Val": "V",
	"Ter": "*", "Stop": "*",
}

var aminoAcidOneToThree = func() map[string]string {
	m := make(map[string]string, len(aminoAcidThreeToOne))
	for three, one := range aminoAcidThreeToOne {
		if one == "*" {
			continue
		}
		m[one] = three
	}
	return m
}()

var (
	// G12D
	singleLetterPattern = regexp.MustCompile(`^([A-Za-z])(\d+)([A-Za-z])$`)
	// p.Gly12Asp
	prefixedThreeLetterPattern = regexp.MustCompile(`^p\.([A-Za-z]{3})(\d+)([A-Za-z]{3})$`)
	// Gly12Asp
	bareThreeLetterPattern = regexp.MustCompile(`^([A-Za-z]{3})(\d+)([A-Za-z]{3})$`)
)

// HGVSVariant is the canonical, parsed form of a missense protein
// variant: three-letter HGVS p. notation plus its numeric position and
// reference/alternate residues.
type HGVSVariant struct {
	HGVSProtein string // e.g. "p.Gly12Asp"
	Position    int
	Ref         string // three-letter reference residue, e.g. "Gly"
	Alt         string // three-letter alternate residue, e.g. "Asp"
	RsID        string // populated only for the small static gene-indexed table
}

// knownVariants is the small static gene-indexed table of rsIDs for
// well-known cancer hotspot variants. Unparseable or unlisted variants
// simply leave RsID empty — no guessing.
var knownVariants = map[string]map[string]string{
	"KRAS": {
		"p.Gly12Asp": "rs121913529",
		"p.Gly12Val": "rs121913529",
		"p.Gly12Cys": "rs121913530",
		"p.Gly13Asp": "rs112445441",
	},
	"BRAF": {
		"p.Val600Glu": "rs113488022",
	},
	"EGFR": {
		"p.Leu858Arg": "rs121434568",
	},
	"TP53": {
		"p.Arg175His": "rs28934578",
	},
}

// NormalizeHGVS parses a missense variant notation in one of three forms
// (single-letter "G12D", p.-prefixed three-letter "p.Gly12Asp", or bare
// three-letter "Gly12Asp") and returns its canonical form. gene is
// optional; when provided and the variant is found in the static
// hotspot table, RsID is populated. Unparseable input returns (nil,
// false) — never a guess.
func NormalizeHGVS(variant string, gene string) (*HGVSVariant, bool) {
	variant = strings.TrimSpace(variant)
	if variant == "" {
		return nil, false
	}

	var ref, alt, posStr string

	switch {
	case prefixedThreeLetterPattern.MatchString(variant):
		m := prefixedThreeLetterPattern.FindStringSubmatch(variant)
		ref, posStr, alt = m[1], m[2], m[3]

	case bareThreeLetterPattern.MatchString(variant):
		m := bareThreeLetterPattern.FindStringSubmatch(variant)
		ref, posStr, alt = m[1], m[2], m[3]

	case singleLetterPattern.MatchString(variant):
		m := singleLetterPattern.FindStringSubmatch(variant)
		refOne, altOne := strings.ToUpper(m[1]), strings.ToUpper(m[3])
		posStr = m[2]
		var ok1, ok2 bool
		ref, ok1 = aminoAcidOneToThree[refOne]
		alt, ok2 = aminoAcidOneToThree[altOne]
		if !ok1 || !ok2 {
			return nil, false
		}

	default:
		return nil, false
	}

	ref = titleCaseResidue(ref)
	alt = titleCaseResidue(alt)
	if _, ok := aminoAcidThreeToOne[ref]; !ok {
		return nil, false
	}
	if _, ok := aminoAcidThreeToOne[alt]; !ok {
		return nil, false
	}

	position, err := strconv.Atoi(posStr)
	if err != nil || position <= 0 {
		return nil, false
	}

	hgvsP := fmt.Sprintf("p.%s%d%s", ref, position, alt)

	v := &HGVSVariant{
		HGVSProtein: hgvsP,
		Position:    position,
		Ref:         ref,
		Alt:         alt,
	}

	if gene != "" {
		if byVariant, ok := knownVariants[strings.ToUpper(gene)]; ok {
			v.RsID = byVariant[hgvsP]
		}
	}

	return v, true
}

func titleCaseResidue(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
