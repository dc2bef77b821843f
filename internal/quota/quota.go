// Package quota bounds the number of external model requests made during
// one process lifetime.
package quota

import "sync"

// Guard is a request-quota counter with a fixed ceiling. The pipeline is
// single-threaded, but the guard is the one piece of process-wide mutable
// state, so it stays safe under concurrent use. A ceiling of zero or less
// means unlimited.
//
// Callers must check CanMakeRequest before calling the external model and
// RecordRequest after a call attempt.
type Guard struct {
	mu    sync.Mutex
	max   int
	count int
}

func NewGuard(max int) *Guard {
	return &Guard{max: max}
}

// CanMakeRequest reports whether another request fits under the ceiling.
func (g *Guard) CanMakeRequest() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.max <= 0 || g.count < g.max
}

// RecordRequest counts one request attempt and returns the running total.
func (g *Guard) RecordRequest() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.count++
	return g.count
}

// Used returns the number of requests recorded so far.
func (g *Guard) Used() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.count
}
