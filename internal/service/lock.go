package service

import "sync"

// keyedMutex serializes reconciliation runs per owner. Concurrent
// activate/deactivate calls for the same owner would race on the
// quantity-diff read-modify-write against the billing provider, so the
// boundary takes an advisory lock on the owner id for the whole run.
type keyedMutex struct {
	mu sync.Map // owner id -> *sync.Mutex
}

// Lock acquires the mutex for the given key and returns its unlock func.
// Mutexes are never evicted; the key space is bounded by the owner count.
func (k *keyedMutex) Lock(key string) func() {
	v, _ := k.mu.LoadOrStore(key, &sync.Mutex{})
	m := v.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}
