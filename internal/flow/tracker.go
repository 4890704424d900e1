package flow

import "sync"

// Tracker remembers which identifier a component instance currently targets so a
// response for an abandoned identifier is dropped instead of applied.
type Tracker[K comparable] struct {
	mu      sync.Mutex
	current K
	set     bool
}

// Retarget makes key the only identifier whose results are accepted.
func (t *Tracker[K]) Retarget(key K) {
	t.mu.Lock()
	t.current = key
	t.set = true
	t.mu.Unlock()
}

func (t *Tracker[K]) Current() (K, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current, t.set
}

// ApplyIf runs apply only when key is still the target. It reports whether apply ran.
func (t *Tracker[K]) ApplyIf(key K, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.set || t.current != key {
		return false
	}
	apply()
	return true
}
