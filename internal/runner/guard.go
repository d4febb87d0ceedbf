package runner

import "sync"

// Guard enforces at-most-one pipeline execution per job within this
// process. Acquisition is non-blocking so a second observer simply
// keeps polling instead of running the pipeline again.
type Guard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func NewGuard() *Guard {
	return &Guard{active: make(map[string]struct{})}
}

// TryAcquire claims the job. Returns false when another goroutine
// already holds it.
func (g *Guard) TryAcquire(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.active[jobID]; held {
		return false
	}
	g.active[jobID] = struct{}{}
	return true
}

// Release frees the job. Safe to call for an unheld job.
func (g *Guard) Release(jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.active, jobID)
}

// Held reports whether the job is currently claimed.
func (g *Guard) Held(jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, held := g.active[jobID]
	return held
}
