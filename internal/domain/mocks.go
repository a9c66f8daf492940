package domain

import (
	"context"
	"sync"
)

// MockFetcher serves canned builds per pipeline. Safe for concurrent use.
type MockFetcher struct {
	Builds map[string][]Build
	Errs   map[string]error

	mu     sync.Mutex
	Called int
}

func (m *MockFetcher) FetchBuilds(ctx context.Context, ref PipelineRef) ([]Build, error) {
	m.mu.Lock()
	m.Called++
	m.mu.Unlock()

	if err := m.Errs[ref.Pipeline]; err != nil {
		return nil, err
	}
	return m.Builds[ref.Pipeline], nil
}

type MockNotifier struct {
	Messages []string
	Err      error
}

func (n *MockNotifier) Notify(ctx context.Context, title, body, url string) error {
	n.Messages = append(n.Messages, title+"|"+body+"|"+url)
	return n.Err
}
