package concurrency

import "sync"

type keyedLock struct {
	mu      sync.Mutex
	holders int // goroutines holding or waiting on mu
}

// LockManager serializes work per key. Entries exist only while some
// goroutine holds or waits for the key, so the table stays proportional
// to the number of active keys.
type LockManager struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

func NewLockManager() *LockManager {
	return &LockManager{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the func that releases it.
// The release func must be called exactly once.
func (lm *LockManager) Lock(key string) func() {
	lm.mu.Lock()
	l, ok := lm.locks[key]
	if !ok {
		l = &keyedLock{}
		lm.locks[key] = l
	}
	l.holders++
	lm.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		lm.mu.Lock()
		l.holders--
		if l.holders == 0 {
			delete(lm.locks, key)
		}
		lm.mu.Unlock()
	}
}

// Active reports how many keys are currently held or awaited
func (lm *LockManager) Active() int {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return len(lm.locks)
}
