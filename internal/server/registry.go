package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/claude/imperfectcoach/internal/engine"
)

// liveSession is one in-flight workout. The coach is single-threaded,
// so each live session carries its own lock and frame batches for the
// same session are processed serially.
type liveSession struct {
	mu    sync.Mutex
	coach *engine.Coach
}

// registry tracks workouts that have been created but not finished.
type registry struct {
	mu sync.RWMutex
	m  map[uuid.UUID]*liveSession
}

func newRegistry() *registry {
	return &registry{m: make(map[uuid.UUID]*liveSession)}
}

func (r *registry) add(id uuid.UUID, ls *liveSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[id] = ls
}

func (r *registry) get(id uuid.UUID) (*liveSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ls, ok := r.m[id]
	return ls, ok
}

func (r *registry) remove(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.m, id)
}
