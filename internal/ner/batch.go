package ner

import "sync"

// DefaultBatchFanoutThreshold is the batch size above which Extractor.
// ExtractBatch fans work out over worker goroutines, grounded on the
// teacher's channel-based worker pool in internal/search/builder.
const DefaultBatchFanoutThreshold = 8

// Extractor wraps an immutable Automaton with batch-mode fan-out,
// following spec.md §4.2's "batches larger than a configurable threshold
// fan out over worker threads".
type Extractor struct {
	automaton        *Automaton
	fanoutThreshold  int
	workers          int
}

// NewExtractor wraps automaton with the default fan-out threshold and
// the given worker count (4 when workers <= 0).
func NewExtractor(automaton *Automaton, workers int) *Extractor {
	if workers <= 0 {
		workers = 4
	}
	return &Extractor{
		automaton:       automaton,
		fanoutThreshold: DefaultBatchFanoutThreshold,
		workers:         workers,
	}
}

// SetFanoutThreshold overrides the default batch-size threshold above
// which ExtractBatch parallelizes.
func (e *Extractor) SetFanoutThreshold(n int) {
	if n > 0 {
		e.fanoutThreshold = n
	}
}

// Extract delegates to the underlying automaton for a single text.
func (e *Extractor) Extract(text string) []Span {
	return e.automaton.Extract(text)
}

// ExtractBatch independently extracts entity spans for each text. Below
// the fan-out threshold it runs sequentially (avoiding goroutine
// overhead for small batches); above it, it fans out over a bounded
// worker pool.
func (e *Extractor) ExtractBatch(texts []string) [][]Span {
	results := make([][]Span, len(texts))
	if len(texts) <= e.fanoutThreshold {
		for i, t := range texts {
			results[i] = e.automaton.Extract(t)
		}
		return results
	}

	type job struct {
		index int
		text  string
	}
	jobs := make(chan job)
	var wg sync.WaitGroup

	workerCount := e.workers
	if workerCount > len(texts) {
		workerCount = len(texts)
	}
	for w := 0; w < workerCount; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				results[j.index] = e.automaton.Extract(j.text)
			}
		}()
	}
	for i, t := range texts {
		jobs <- job{index: i, text: t}
	}
	close(jobs)
	wg.Wait()

	return results
}
