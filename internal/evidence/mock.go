package evidence

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MockDepMapProvider is a deterministic, configurable DepMapProvider for
// tests, following the teacher's Mock* recorder idiom (configurable
// return values plus call recording under a mutex).
type MockDepMapProvider struct {
	mu      sync.Mutex
	ceres   map[string]float64
	lookups []string
}

// NewMockDepMapProvider creates an empty MockDepMapProvider.
func NewMockDepMapProvider() *MockDepMapProvider {
	return &MockDepMapProvider{ceres: make(map[string]float64)}
}

// SetCeres configures the mean/median CERES score returned for (gene,
// cancerType); the mock has no per-cell-line distribution, so mean and
// median are identical.
func (m *MockDepMapProvider) SetCeres(gene, cancerType string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ceres[depMapKey(gene, cancerType)] = value
}

func (m *MockDepMapProvider) GetMeanCeres(_ context.Context, gene, cancerType string) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lookups = append(m.lookups, depMapKey(gene, cancerType))
	if v, ok := m.ceres[depMapKey(gene, cancerType)]; ok {
		return &v, nil
	}
	return nil, nil
}

func (m *MockDepMapProvider) GetMedianCeres(ctx context.Context, gene, cancerType string) (*float64, error) {
	return m.GetMeanCeres(ctx, gene, cancerType)
}

func (m *MockDepMapProvider) GetTopDependencies(_ context.Context, cancerType string, n int) ([]GeneDependency, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	suffix := "\x00" + strings.ToLower(strings.TrimSpace(cancerType))
	var deps []GeneDependency
	for key, v := range m.ceres {
		if len(key) < len(suffix) || key[len(key)-len(suffix):] != suffix {
			continue
		}
		deps = append(deps, GeneDependency{Gene: key[:len(key)-len(suffix)], MeanCeres: v})
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].MeanCeres < deps[j].MeanCeres })
	if n >= 0 && n < len(deps) {
		deps = deps[:n]
	}
	return deps, nil
}

// Lookups returns every (gene, cancerType) pair queried so far, for
// assertions on call patterns.
func (m *MockDepMapProvider) Lookups() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.lookups))
	copy(out, m.lookups)
	return out
}

// MockTcgaProvider is a deterministic, configurable TcgaProvider for tests.
type MockTcgaProvider struct {
	mu           sync.Mutex
	correlations map[string]float64
}

// NewMockTcgaProvider creates an empty MockTcgaProvider.
func NewMockTcgaProvider() *MockTcgaProvider {
	return &MockTcgaProvider{correlations: make(map[string]float64)}
}

// SetCorrelation configures the survival correlation returned for (gene,
// cancerType).
func (m *MockTcgaProvider) SetCorrelation(gene, cancerType string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.correlations[depMapKey(gene, cancerType)] = value
}

func (m *MockTcgaProvider) GetSurvivalCorrelation(_ context.Context, gene, cancerType string) (*float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.correlations[depMapKey(gene, cancerType)]; ok {
		return &v, nil
	}
	return nil, nil
}

// MockGtexProvider is a deterministic, configurable GtexProvider for tests.
type MockGtexProvider struct {
	mu         sync.Mutex
	expression map[string]map[string]float64
}

// NewMockGtexProvider creates an empty MockGtexProvider.
func NewMockGtexProvider() *MockGtexProvider {
	return &MockGtexProvider{expression: make(map[string]map[string]float64)}
}

// SetExpression configures the tissue -> TPM mapping returned for gene.
func (m *MockGtexProvider) SetExpression(gene string, tpmByTissue map[string]float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expression[gene] = tpmByTissue
}

func (m *MockGtexProvider) GetMedianExpression(_ context.Context, gene string) (map[string]float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tissues, ok := m.expression[gene]
	if !ok {
		return nil, nil
	}
	out := make(map[string]float64, len(tissues))
	for k, v := range tissues {
		out[k] = v
	}
	return out, nil
}
