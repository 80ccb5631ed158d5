// Package runtime handles change propagation from the message store to its
// subscribers. It orchestrates the system without containing domain rules.
package runtime

import (
	"sync"

	"easychat/contract"
)

// Registry tracks active feed subscriptions.
//
// Subscribe hands back a disposer instead of a bare id: the owning component
// keeps the handle and invokes it on teardown, so no global id-keyed map is
// ever exposed. Disposers are idempotent.
type Registry struct {
	mu     sync.RWMutex
	nextID uint64
	sinks  map[uint64]contract.EventSink
}

func NewRegistry() *Registry {
	return &Registry{sinks: make(map[uint64]contract.EventSink)}
}

// Subscribe registers a sink and returns the disposer releasing it.
func (r *Registry) Subscribe(sink contract.EventSink) contract.Disposer {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.sinks[id] = sink
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.sinks, id)
			r.mu.Unlock()
		})
	}
}

// Sinks snapshots the active subscribers.
func (r *Registry) Sinks() []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]contract.EventSink, 0, len(r.sinks))
	for _, sink := range r.sinks {
		out = append(out, sink)
	}
	return out
}

// Len reports the number of active subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sinks)
}
