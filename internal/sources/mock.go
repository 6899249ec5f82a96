package sources

import (
	"context"
	"sync/atomic"
)

// MockAdapter is a test double implementing Adapter without any network
// access, letting internal/ingest tests exercise fan-out, partial
// failure isolation, and full-text backfill deterministically.
type MockAdapter struct {
	name        string
	records     []PaperRecord
	fullText    map[string]string
	searchErr   error
	searchCalls int32
}

func NewMockAdapter(name string, records []PaperRecord) *MockAdapter {
	return &MockAdapter{name: name, records: records, fullText: make(map[string]string)}
}

// WithFullText registers full text to return for a given SourceID.
func (m *MockAdapter) WithFullText(sourceID, text string) *MockAdapter {
	m.fullText[sourceID] = text
	return m
}

// WithSearchError makes Search always fail with err, simulating one
// adapter going down without affecting sibling adapters in a fan-out.
func (m *MockAdapter) WithSearchError(err error) *MockAdapter {
	m.searchErr = err
	return m
}

func (m *MockAdapter) Name() string { return m.name }

func (m *MockAdapter) SearchCalls() int32 { return atomic.LoadInt32(&m.searchCalls) }

func (m *MockAdapter) Search(ctx context.Context, query string, maxResults int) ([]PaperRecord, error) {
	atomic.AddInt32(&m.searchCalls, 1)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if maxResults > 0 && maxResults < len(m.records) {
		return m.records[:maxResults], nil
	}
	return m.records, nil
}

func (m *MockAdapter) FetchFullText(ctx context.Context, sourceID string) (*string, error) {
	if text, ok := m.fullText[sourceID]; ok {
		return &text, nil
	}
	return nil, nil
}
