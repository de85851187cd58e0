package subscription

import "sync"

// ID names one registration. The zero ID is never issued.
type ID uint64

type entry[H any] struct {
	id      ID
	handler H
}

// Registry holds handlers per key in registration order. It is safe for
// concurrent use.
type Registry[K comparable, H any] struct {
	mu      sync.RWMutex
	nextID  ID
	entries map[K][]entry[H]
}

// NewRegistry creates an empty registry.
func NewRegistry[K comparable, H any]() *Registry[K, H] {
	return &Registry[K, H]{entries: make(map[K][]entry[H])}
}

// Add appends h to key's handlers and returns its ID.
func (r *Registry[K, H]) Add(key K, h H) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.entries[key] = append(r.entries[key], entry[H]{id: r.nextID, handler: h})
	return r.nextID
}

// Remove deletes the registration id under key. It reports whether one was
// removed.
func (r *Registry[K, H]) Remove(key K, id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.entries[key]
	for i, e := range list {
		if e.id != id {
			continue
		}
		// Copy so snapshots taken earlier keep their contents.
		next := make([]entry[H], 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(r.entries, key)
		} else {
			r.entries[key] = next
		}
		return true
	}
	return false
}

// Snapshot returns key's handlers in registration order. Later Add or
// Remove calls do not affect the returned slice.
func (r *Registry[K, H]) Snapshot(key K) []H {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.entries[key]
	out := make([]H, len(list))
	for i, e := range list {
		out[i] = e.handler
	}
	return out
}

// Count returns the number of handlers under key.
func (r *Registry[K, H]) Count(key K) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries[key])
}

// Len returns the number of handlers under all keys.
func (r *Registry[K, H]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, list := range r.entries {
		n += len(list)
	}
	return n
}

// Clear removes every registration. IDs are not reused.
func (r *Registry[K, H]) Clear() {
	r.mu.Lock()
	r.entries = make(map[K][]entry[H])
	r.mu.Unlock()
}
