package workspace

import "sync"

// keyedMutex serializes mutations per workspace id. Assign and delete-node
// are read-modify-write cycles over the whole workspace document; without
// per-key locking two concurrent calls could both load the same diagram and
// the slower writer would silently undo the faster one.
//
// Entries are never evicted; the map is bounded by the number of workspaces
// touched since startup.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for key and returns its unlock func.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
