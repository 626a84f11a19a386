// Package callback maps integer ids to Go values for native callbacks.
//
// Native code may hold a value across calls (an LPARAM, a timer parameter) but must not
// hold a Go pointer. Registering the Go value hands out an id that is safe to store in
// native memory; the trampoline resolves it back with Lookup.
package callback

import "sync"

// Registry is a thread-safe id -> value table. The zero value is ready to use.
type Registry[T any] struct {
	mu     sync.RWMutex
	values map[uintptr]T
	next   uintptr
}

// Register stores v and returns its id. Ids are never zero.
func (r *Registry[T]) Register(v T) uintptr {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.values == nil {
		r.values = make(map[uintptr]T)
	}

	r.next++
	if r.next == 0 {
		r.next++
	}

	r.values[r.next] = v
	return r.next
}

// Lookup returns the value registered under id.
func (r *Registry[T]) Lookup(id uintptr) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.values[id]
	return v, ok
}

// Release forgets id. Lookups that race with Release observe either the value or nothing.
func (r *Registry[T]) Release(id uintptr) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.values, id)
}

// Len returns the number of live registrations.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.values)
}
