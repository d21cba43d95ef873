// Package lock provides per-key mutual exclusion for the scheduling engine.
// Every booking, reschedule, or status reactivation serializes on the
// (doctor, date) pair it touches, so the availability check and the write
// that consumes the slot form one atomic sequence per calendar day.
package lock

import "sync"

type entry struct {
	mu   sync.Mutex
	refs int
}

// Keyed is a registry of mutexes created on demand and discarded once no
// goroutine holds or waits on them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func NewKeyed() *Keyed {
	return &Keyed{entries: make(map[string]*entry)}
}

// Lock blocks until the mutex for key is held by the calling goroutine.
func (k *Keyed) Lock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key and removes the registry entry when the
// last interested goroutine is done with it.
func (k *Keyed) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		k.mu.Unlock()
		panic("lock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}

// LockAll acquires several keys in sorted order so two operations spanning
// the same pair of keys can never deadlock. Duplicate keys are acquired once.
func (k *Keyed) LockAll(keys ...string) []string {
	acquired := dedupSorted(keys)
	for _, key := range acquired {
		k.Lock(key)
	}
	return acquired
}

// UnlockAll releases keys previously returned by LockAll, in reverse order.
func (k *Keyed) UnlockAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		k.Unlock(keys[i])
	}
}

// Len reports the number of live entries. Used by tests to verify cleanup.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

func dedupSorted(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		dup := false
		for _, seen := range out {
			if seen == key {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, key)
		}
	}
	// insertion sort; key counts are 1 or 2 in practice
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
