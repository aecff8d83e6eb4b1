package source

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Fetcher interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu    sync.Mutex
	calls int

	FetchFunc func(ctx context.Context) ([]byte, error)
}

var _ Fetcher = (*Mock)(nil)

// NewMock creates a mock that returns payload on every call.
func NewMock(payload []byte) *Mock {
	return &Mock{
		FetchFunc: func(ctx context.Context) ([]byte, error) {
			return payload, nil
		},
	}
}

func (m *Mock) Fetch(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	m.calls++
	fn := m.FetchFunc
	m.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

// Calls returns the number of times Fetch was called.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
