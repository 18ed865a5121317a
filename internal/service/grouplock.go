package service

import "sync"

// groupLocks serializes ledger-mutating operations per group. Two
// expenses written to the same group concurrently would race on the
// shared edge set between load and commit; holding the group's lock
// around the whole load-apply-persist unit linearizes them. Operations
// on different groups proceed in parallel.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutex for groupID and returns its unlock function.
func (g *groupLocks) lock(groupID string) func() {
	g.mu.Lock()
	l, ok := g.locks[groupID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[groupID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
