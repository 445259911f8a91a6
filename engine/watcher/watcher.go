// Package watcher detects frame-to-frame movement of transforms by comparing each entity's
// current snapshot with the copy cached on the previous check.
package watcher

import "sync"

// Watcher answers "has this entity changed since it was last checked" with reset-on-read
// semantics: every query stores the snapshot it was given, so asking twice with the same value
// reports a change at most once.
type Watcher interface {
	// Changed compares a snapshot against the one cached for key and caches the new one.
	// The first check of a key always reports a change.
	//
	// Parameters:
	//   - key: the entity identity
	//   - snapshot: a comparable value capturing the entity's current state (e.g. mgl32.Mat4)
	//
	// Returns:
	//   - bool: true if the snapshot differs from the cached one or none was cached
	Changed(key any, snapshot any) bool

	// Forget drops the cached snapshot for key so its next check reports a change.
	//
	// Parameters:
	//   - key: the entity identity
	Forget(key any)

	// Len returns the number of entities with a cached snapshot.
	Len() int
}

type watcher struct {
	mu    *sync.Mutex
	cache map[any]any
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher with an empty snapshot cache.
//
// Returns:
//   - Watcher: the new watcher
func NewWatcher() Watcher {
	return &watcher{
		mu:    &sync.Mutex{},
		cache: make(map[any]any),
	}
}

func (w *watcher) Changed(key any, snapshot any) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	prev, seen := w.cache[key]
	w.cache[key] = snapshot
	return !seen || prev != snapshot
}

func (w *watcher) Forget(key any) {
	w.mu.Lock()
	delete(w.cache, key)
	w.mu.Unlock()
}

func (w *watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.cache)
}
