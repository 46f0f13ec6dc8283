package core

import "sync"

// KeyedMutex provides one mutex per key. Locks are created on first use
// and live for the lifetime of the map.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*sync.Mutex)}
}

func (m *KeyedMutex) Lock(key int64) {
	m.mu.Lock()
	lock, ok := m.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[key] = lock
	}
	m.mu.Unlock()

	lock.Lock()
}

// Unlock panics if key was never locked.
func (m *KeyedMutex) Unlock(key int64) {
	m.mu.Lock()
	lock := m.locks[key]
	m.mu.Unlock()

	lock.Unlock()
}
