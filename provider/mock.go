package provider

import (
	"context"
	"sync"
)

// MockProvider is a canned provider for tests and offline runs.
type MockProvider struct {
	Suggestions map[string]string // Primary text → suggestion
	Err         error             // Returned by every call when set

	mu          sync.Mutex
	callCount   int
	lastRequest *SuggestRequest
}

// NewMockProvider creates a mock provider with a few Spanish → English
// entries.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Suggestions: map[string]string{
			"Guardar":  "Save",
			"Cancelar": "Cancel",
			"Buscar":   "Search",
			"Estado":   "Status",
		},
	}
}

// Suggest returns canned suggestions; unknown texts come back bracketed.
func (m *MockProvider) Suggest(ctx context.Context, req SuggestRequest) ([]string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastRequest = &req
	m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}

	results := make([]string, len(req.Texts))
	for i, text := range req.Texts {
		if s, ok := m.Suggestions[text]; ok {
			results[i] = s
			continue
		}
		results[i] = "[" + text + "]"
	}
	return results, nil
}

// CallCount returns the number of Suggest calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastRequest returns the most recent request, or nil.
func (m *MockProvider) LastRequest() *SuggestRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRequest
}

var _ AIProvider = (*MockProvider)(nil)
