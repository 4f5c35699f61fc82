package ecs

// Registry tracks all component stores and supports bulk cleanup on entity destroy.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 8),
	}
}

// Register adds a component store to the registry.
func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

// RemoveAll clears the given entity from every registered component store.
func (r *Registry) RemoveAll(e Entity) {
	for _, s := range r.stores {
		s.Remove(e)
	}
}

// Owned reports whether any registered store still holds a component for e.
func (r *Registry) Owned(e Entity) bool {
	for _, s := range r.stores {
		if s.Has(e) {
			return true
		}
	}
	return false
}

// Len returns the number of registered stores.
func (r *Registry) Len() int { return len(r.stores) }
