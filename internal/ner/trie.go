// Package ner implements linear-time dictionary named-entity recognition
// over a compiled Aho-Corasick automaton, with leftmost-longest span
// reconciliation.
package ner

import (
	"strings"

	"github.com/nishad/oncotarget/internal/models"
)

// Pattern is one entry in the dictionary compiled into the automaton.
type Pattern struct {
	Text          string
	EntityType    models.EntityType
	ExternalID    string
	NormalizedName string
}

// confidenceByType gives dictionary-match confidence per entity type.
// Dictionary matches are near-certain for the matched string; semantic
// disambiguation is out of scope (spec.md §4.2).
var confidenceByType = map[models.EntityType]float64{
	models.EntityGene:       0.95,
	models.EntityDisease:    0.92,
	models.EntityChemical:   0.90,
	models.EntityMutation:   0.97,
	models.EntityCancerType: 0.93,
	models.EntityPathway:    0.88,
	models.EntityProtein:    0.90,
}

// Span is a matched entity occurrence, with byte offsets into the input.
type Span struct {
	Start          int
	End            int
	Text           string
	EntityType     models.EntityType
	ExternalID     string
	NormalizedName string
	Confidence     float64
}

type node struct {
	children map[byte]*node
	fail     *node
	output   []int // indices into Automaton.patterns, patterns ending here
}

func newNode() *node {
	return &node{children: make(map[byte]*node)}
}

// Automaton is an immutable, linear-time dictionary matcher. Build once
// and share read-only; rebuild-and-swap if the underlying dictionary
// changes.
type Automaton struct {
	root     *node
	patterns []Pattern
}

// Build compiles an Aho-Corasick automaton from the given patterns.
// Matching is byte-oriented and case-insensitive: patterns and input are
// both lowercased before matching, so reported span offsets refer to the
// original (non-lowercased) input since matching only observes length.
func Build(patterns []Pattern) *Automaton {
	a := &Automaton{root: newNode(), patterns: patterns}
	for i, p := range patterns {
		a.insert(strings.ToLower(p.Text), i)
	}
	a.buildFailureLinks()
	return a
}

func (a *Automaton) insert(text string, patternIndex int) {
	cur := a.root
	for i := 0; i < len(text); i++ {
		b := text[i]
		child, ok := cur.children[b]
		if !ok {
			child = newNode()
			cur.children[b] = child
		}
		cur = child
	}
	cur.output = append(cur.output, patternIndex)
}

func (a *Automaton) buildFailureLinks() {
	var queue []*node
	for _, child := range a.root.children {
		child.fail = a.root
		queue = append(queue, child)
	}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for b, child := range cur.children {
			queue = append(queue, child)
			f := cur.fail
			for f != nil {
				if next, ok := f.children[b]; ok {
					child.fail = next
					break
				}
				f = f.fail
			}
			if child.fail == nil {
				child.fail = a.root
			}
			child.output = append(child.output, child.fail.output...)
		}
	}
}

// rawMatch is an occurrence before overlap reconciliation.
type rawMatch struct {
	start, end, patternIndex int
}

// allMatches runs the automaton over text (already lowercased) and
// returns every dictionary occurrence, overlaps included.
func (a *Automaton) allMatches(lower string) []rawMatch {
	var matches []rawMatch
	cur := a.root
	for i := 0; i < len(lower); i++ {
		b := lower[i]
		for cur != a.root {
			if _, ok := cur.children[b]; ok {
				break
			}
			cur = cur.fail
		}
		if next, ok := cur.children[b]; ok {
			cur = next
		} else {
			cur = a.root
		}
		for _, patIdx := range cur.output {
			plen := len(a.patterns[patIdx].Text)
			end := i + 1
			start := end - plen
			matches = append(matches, rawMatch{start: start, end: end, patternIndex: patIdx})
		}
	}
	return matches
}

// Extract returns disjoint, leftmost-longest entity spans found in text.
func (a *Automaton) Extract(text string) []Span {
	lower := strings.ToLower(text)
	raw := a.allMatches(lower)
	if len(raw) == 0 {
		return nil
	}

	// Sort by (start asc, length desc) then greedily retain spans whose
	// start >= last accepted end, per spec.md §4.2.
	sortMatches(raw)

	var spans []Span
	lastEnd := -1
	for _, m := range raw {
		if m.start < lastEnd {
			continue
		}
		p := a.patterns[m.patternIndex]
		spans = append(spans, Span{
			Start:          m.start,
			End:            m.end,
			Text:           text[m.start:m.end],
			EntityType:     p.EntityType,
			ExternalID:     p.ExternalID,
			NormalizedName: p.NormalizedName,
			Confidence:     confidenceByType[p.EntityType],
		})
		lastEnd = m.end
	}
	return spans
}

func sortMatches(raw []rawMatch) {
	// Insertion sort is sufficient: match counts per text are small and
	// this keeps the comparator simple and allocation-free.
	for i := 1; i < len(raw); i++ {
		for j := i; j > 0 && less(raw[j], raw[j-1]); j-- {
			raw[j], raw[j-1] = raw[j-1], raw[j]
		}
	}
}

func less(a, b rawMatch) bool {
	if a.start != b.start {
		return a.start < b.start
	}
	lenA, lenB := a.end-a.start, b.end-b.start
	return lenA > lenB
}
