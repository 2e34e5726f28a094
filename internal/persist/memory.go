package persist

import (
	"context"
	"sync"

	"github.com/harborfood/pantry-backend/internal/pantry"
)

// Memory is an in-process store for tests and ephemeral runs.
type Memory struct {
	mu    sync.Mutex
	state *pantry.State
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(ctx context.Context) (*pantry.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == nil {
		return pantry.DefaultState(), nil
	}
	return m.state.Clone(), nil
}

func (m *Memory) Save(ctx context.Context, state *pantry.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return nil
}

func (m *Memory) Ping(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }
