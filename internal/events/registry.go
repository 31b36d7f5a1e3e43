package events

import "sync"

// Registry is an explicit observer registry keyed by event name.
//
// Emit calls listeners synchronously, in subscription order, before it
// returns. Nothing is buffered: a listener only sees events emitted after it
// subscribed. Listeners added or removed while an event is being delivered
// take effect from the next Emit.
type Registry[E any] struct {
	mu        sync.Mutex
	nextID    uint64
	listeners map[string][]listener[E]
}

type listener[E any] struct {
	id uint64
	fn func(E)
}

// NewRegistry returns an empty registry.
func NewRegistry[E any]() *Registry[E] {
	return &Registry[E]{listeners: make(map[string][]listener[E])}
}

// On subscribes fn to events called name. The returned function removes the
// subscription; calling it more than once is harmless.
func (r *Registry[E]) On(name string, fn func(E)) (off func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.listeners[name] = append(r.listeners[name], listener[E]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(name, id) })
	}
}

func (r *Registry[E]) remove(name string, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.listeners[name]
	kept := make([]listener[E], 0, len(current))
	for _, l := range current {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(r.listeners, name)
		return
	}
	r.listeners[name] = kept
}

// Emit delivers e to every listener of name.
func (r *Registry[E]) Emit(name string, e E) {
	r.mu.Lock()
	snapshot := r.listeners[name]
	r.mu.Unlock()

	for _, l := range snapshot {
		l.fn(e)
	}
}

// Len returns the number of listeners subscribed to name.
func (r *Registry[E]) Len(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners[name])
}
