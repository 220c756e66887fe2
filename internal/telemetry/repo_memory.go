package telemetry

import (
	"sync"
	"time"
)

// MemoryRepo holds the session's event log in memory.
type MemoryRepo struct {
	mu     sync.RWMutex
	nextID int
	events []Event
	clock  func() time.Time
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{clock: time.Now}
}

// NewMemoryRepoWithClock is for tests that need deterministic timestamps.
func NewMemoryRepoWithClock(clock func() time.Time) *MemoryRepo {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryRepo{clock: clock}
}

func (r *MemoryRepo) Record(t EventType, meta EventMetadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	r.events = append(r.events, Event{
		ID:        r.nextID,
		Type:      t,
		Timestamp: r.clock(),
		Metadata:  meta,
	})
}

// List returns events at or after since, oldest first.
func (r *MemoryRepo) List(since time.Time) []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		if e.Timestamp.Before(since) {
			continue
		}
		out = append(out, e)
	}
	return out
}
