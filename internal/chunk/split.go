package chunk

import (
	"regexp"
	"strings"
)

// sentenceBoundary approximates sentence ends: a period/question/bang
// followed by one or more whitespace characters; the character after the
// whitespace is not checked, and text-final punctuation is not a
// boundary. This is
// a heuristic, not a full sentence tokenizer — adequate for bounding
// chunks, not for linguistic analysis.
var sentenceBoundary = regexp.MustCompile(`(?:[.!?])\s+`)

// splitToBudget breaks text into pieces that each fit within budget
// tokens, preferring sentence boundaries, then paragraph boundaries,
// then a hard split. A section shorter than the budget becomes a single
// chunk.
func splitToBudget(text string, budget int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if countTokens(text) <= budget {
		return []string{text}
	}

	sentences := splitSentences(text)
	return packUnits(sentences, budget)
}

// splitSentences splits text into paragraphs on blank lines and each
// paragraph on sentence boundaries; a paragraph with no boundary stays a
// single unit. It does not look at the budget: units still over budget
// are hard split later by packUnits.
func splitSentences(text string) []string {
	paragraphs := strings.Split(text, "\n\n")
	var units []string
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		idxs := sentenceBoundary.FindAllStringIndex(para, -1)
		if len(idxs) == 0 {
			units = append(units, para)
			continue
		}
		start := 0
		for _, idx := range idxs {
			units = append(units, strings.TrimSpace(para[start:idx[1]]))
			start = idx[1]
		}
		if start < len(para) {
			units = append(units, strings.TrimSpace(para[start:]))
		}
	}
	return units
}

// packUnits greedily packs sentence/paragraph units into chunks bounded
// by budget tokens. A single unit exceeding budget on its own is hard
// split on word boundaries.
func packUnits(units []string, budget int) []string {
	var chunks []string
	var current strings.Builder
	currentTokens := 0

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
			currentTokens = 0
		}
	}

	for _, u := range units {
		uTokens := countTokens(u)
		if uTokens > budget {
			flush()
			chunks = append(chunks, hardSplit(u, budget)...)
			continue
		}
		if currentTokens+uTokens > budget && currentTokens > 0 {
			flush()
		}
		if current.Len() > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(u)
		currentTokens += uTokens
	}
	flush()
	return chunks
}

// hardSplit breaks a unit with no usable sentence/paragraph boundary
// into fixed-size word-count windows — the chunker's last resort.
func hardSplit(text string, budget int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	for i := 0; i < len(words); i += budget {
		end := i + budget
		if end > len(words) {
			end = len(words)
		}
		out = append(out, strings.Join(words[i:end], " "))
	}
	return out
}
