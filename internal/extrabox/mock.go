package extrabox

import (
	"context"
	"sync"
)

// Mock is a mock implementation of the Store interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	IncrementFunc func(ctx context.Context, name string) (int, error)
	GetFunc       func(ctx context.Context, name string) (int, error)
	AllFunc       func(ctx context.Context) ([]Counter, error)

	// Call records
	IncrementCalls []string
	GetCalls       []string
}

var _ Store = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Increment(ctx context.Context, name string) (int, error) {
	m.mu.Lock()
	m.IncrementCalls = append(m.IncrementCalls, name)
	fn := m.IncrementFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, name)
	}
	return 1, nil
}

func (m *Mock) Get(ctx context.Context, name string) (int, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, name)
	fn := m.GetFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, name)
	}
	return 0, nil
}

func (m *Mock) All(ctx context.Context) ([]Counter, error) {
	m.mu.Lock()
	fn := m.AllFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx)
	}
	return nil, nil
}
