package scheduler

import (
	"sort"
	"sync"
)

// Registry tracks which tasks are currently executing.
type Registry interface {
	// TryAcquire marks id as running. It returns false if id already runs.
	TryAcquire(id uint) bool
	// Release marks id as finished.
	Release(id uint)
}

// MemoryRegistry is a process-local Registry.
type MemoryRegistry struct {
	mu      sync.Mutex
	running map[uint]struct{}
}

// NewMemoryRegistry creates an empty MemoryRegistry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{running: make(map[uint]struct{})}
}

// TryAcquire implements Registry.
func (r *MemoryRegistry) TryAcquire(id uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.running[id]; ok {
		return false
	}
	r.running[id] = struct{}{}
	return true
}

// Release implements Registry.
func (r *MemoryRegistry) Release(id uint) {
	r.mu.Lock()
	delete(r.running, id)
	r.mu.Unlock()
}

// Running returns the ids currently held, sorted.
func (r *MemoryRegistry) Running() []uint {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint, 0, len(r.running))
	for id := range r.running {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
