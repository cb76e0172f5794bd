package syncer

import "sync"

// Guard serializes work per recording id. A sync pass and an export
// resolution for the same recording take the same lock, so neither can
// observe a half-applied location change; different ids proceed in
// parallel.
type Guard struct {
	mu    sync.Mutex
	locks map[string]*guardEntry
}

type guardEntry struct {
	mu   sync.Mutex
	refs int
}

func NewGuard() *Guard {
	return &Guard{locks: make(map[string]*guardEntry)}
}

// Lock acquires the per-id lock and returns the matching unlock func.
func (g *Guard) Lock(id string) func() {
	g.mu.Lock()
	e, ok := g.locks[id]
	if !ok {
		e = &guardEntry{}
		g.locks[id] = e
	}
	e.refs++
	g.mu.Unlock()

	e.mu.Lock()

	return func() {
		e.mu.Unlock()

		g.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(g.locks, id)
		}
		g.mu.Unlock()
	}
}
