package state

import (
	"context"
	"sync"
)

// MemoryStore keeps state in process. Load and Save copy, so a caller mutating the State
// it loaded doesn't change what's stored until it saves.
type MemoryStore struct {
	mu    sync.Mutex
	s     State
	Saves int // how many times Save has been called
}

func NewMemoryStore(initial State) *MemoryStore {
	return &MemoryStore{s: initial.Clone()}
}

func (m *MemoryStore) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Clone(), nil
}

func (m *MemoryStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = s.Clone()
	m.Saves++
	return nil
}

func (m *MemoryStore) String() string { return "memory" }
