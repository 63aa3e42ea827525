package testutil

import (
	"context"
	"sync"

	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/stretchr/testify/mock"
)

// MockPolicy is a mock implementation of core.Policy. Tests either stub
// Update with testify expectations or set Signals to replay a fixed
// sequence of performance signals.
type MockPolicy struct {
	mock.Mock
	mu      sync.Mutex
	Signals []core.PerformanceSignal
	index   int

	// Batches records every batch passed to Update.
	Batches [][]core.Fragment
}

func (m *MockPolicy) Predict(ctx context.Context, observation []float64) ([]float64, error) {
	if len(m.ExpectedCalls) > 0 {
		args := m.Called(ctx, observation)
		if out := args.Get(0); out != nil {
			return out.([]float64), args.Error(1)
		}
		return nil, args.Error(1)
	}
	// Default: zero action of the observation's size.
	return make([]float64, len(observation)), nil
}

func (m *MockPolicy) Update(ctx context.Context, batch []core.Fragment) (core.PerformanceSignal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Batches = append(m.Batches, batch)

	if len(m.Signals) > 0 {
		sig := m.Signals[m.index%len(m.Signals)]
		m.index++
		return sig, nil
	}

	if len(m.ExpectedCalls) > 0 {
		args := m.Called(ctx, batch)
		return args.Get(0).(core.PerformanceSignal), args.Error(1)
	}

	return core.PerformanceSignal{Loss: 0.1, SuccessRate: 0.9}, nil
}
