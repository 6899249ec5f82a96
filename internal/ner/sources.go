package ner

import (
	"bufio"
	"encoding/xml"
	"io"
	"strings"

	"github.com/nishad/oncotarget/internal/apperrors"
	"github.com/nishad/oncotarget/internal/models"
	"github.com/nishad/oncotarget/internal/normalize"
)

// meshDescriptor mirrors the subset of NLM's MeSH descriptor XML this
// loader cares about: a descriptor's UI, its preferred term, and its
// tree numbers. Disease-branch descriptors have tree numbers beginning
// with "C" (spec.md §4.2).
type meshDescriptor struct {
	XMLName xml.Name `xml:"DescriptorRecord"`
	UI      string   `xml:"DescriptorUI"`
	Name    struct {
		String string `xml:"String"`
	} `xml:"DescriptorName"`
	TreeNumberList struct {
		TreeNumbers []string `xml:"TreeNumber"`
	} `xml:"TreeNumberList"`
}

// meshDescriptorSet is the root element of a MeSH descriptor XML
// export (DescriptorRecordSet).
type meshDescriptorSet struct {
	XMLName     xml.Name          `xml:"DescriptorRecordSet"`
	Descriptors []meshDescriptor `xml:"DescriptorRecord"`
}

// loadMeSHDiseases streams a MeSH descriptor XML document and returns
// Disease patterns for every descriptor whose tree number begins
// with "C" (the disease branch).
func loadMeSHDiseases(r io.Reader) ([]Pattern, error) {
	decoder := xml.NewDecoder(r)
	var set meshDescriptorSet
	if err := decoder.Decode(&set); err != nil {
		return nil, apperrors.WrapMsg("ner.loadMeSHDiseases", "decoding MeSH XML", err)
	}

	var patterns []Pattern
	for _, d := range set.Descriptors {
		isDisease := false
		for _, tn := range d.TreeNumberList.TreeNumbers {
			if strings.HasPrefix(tn, "C") {
				isDisease = true
				break
			}
		}
		if !isDisease || d.Name.String == "" {
			continue
		}
		patterns = append(patterns, Pattern{
			Text:           d.Name.String,
			EntityType:     models.EntityDisease,
			ExternalID:     "MESH:" + d.UI,
			NormalizedName: d.Name.String,
		})
	}
	return patterns, nil
}

// loadChEMBLNames reads a newline-delimited "CHEMBLnnn\tpreferred name"
// file and returns Chemical patterns.
func loadChEMBLNames(r io.Reader) ([]Pattern, error) {
	var patterns []Pattern
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			continue
		}
		id, name := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		if id == "" || name == "" {
			continue
		}
		patterns = append(patterns, Pattern{
			Text:           name,
			EntityType:     models.EntityChemical,
			ExternalID:     id,
			NormalizedName: name,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.WrapMsg("ner.loadChEMBLNames", "reading ChEMBL names", err)
	}
	return patterns, nil
}

// hgncPatterns turns every indexed token of an HGNCTable into a Gene
// pattern. Multiple tokens (symbol, aliases, previous symbols) may map
// to the same canonical gene; each becomes its own pattern so the
// automaton matches any of them.
func hgncPatterns(table *normalize.HGNCTable, tokens []string) []Pattern {
	patterns := make([]Pattern, 0, len(tokens))
	for _, tok := range tokens {
		rec, ok := table.Lookup(tok)
		if !ok {
			continue
		}
		patterns = append(patterns, Pattern{
			Text:           tok,
			EntityType:     models.EntityGene,
			ExternalID:     rec.HGNCID,
			NormalizedName: rec.Symbol,
		})
	}
	return patterns
}

// NewFromSources builds an Automaton from the "complete databases"
// construction mode: an HGNC TSV (gene symbols + aliases), a MeSH
// descriptor XML stream filtered to the disease branch, and a ChEMBL
// drug-names file. hgncTokens lists every raw token (symbols, aliases,
// previous symbols) the caller wants indexed as gene patterns —
// typically the full vocabulary the HGNC loader already extracted.
func NewFromSources(hgncTable *normalize.HGNCTable, hgncTokens []string, meshXML, chemblNames io.Reader) (*Automaton, error) {
	var all []Pattern

	if hgncTable != nil {
		all = append(all, hgncPatterns(hgncTable, hgncTokens)...)
	}

	if meshXML != nil {
		diseasePatterns, err := loadMeSHDiseases(meshXML)
		if err != nil {
			return nil, err
		}
		all = append(all, diseasePatterns...)
	}

	if chemblNames != nil {
		chemPatterns, err := loadChEMBLNames(chemblNames)
		if err != nil {
			return nil, err
		}
		all = append(all, chemPatterns...)
	}

	return Build(all), nil
}
