package store

import (
	"sync"

	"github.com/yiyi75/careerquest/internal/model"
)

// MemoryStore is an in-process store for tests and as a last-resort target
// when no durable backend is configured.
type MemoryStore struct {
	mu   sync.RWMutex
	snap *model.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load() (*model.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.snap == nil {
		return nil, ErrNotFound
	}
	out := m.snap.Clone()
	out.Normalize()
	return out, nil
}

func (m *MemoryStore) Save(snap *model.Snapshot) error {
	if snap == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = snap.Clone()
	return nil
}
