package domain

import (
	"sort"
	"sync"
)

// InstrumentRegistry tracks tradable instruments in a thread-safe manner.
// A restricted registry only accepts the instruments it was created with;
// an open one registers instruments on first use.
type InstrumentRegistry struct {
	mu          sync.RWMutex
	instruments map[string]bool
	restricted  bool
}

// NewInstrumentRegistry creates a registry. With no arguments the registry
// is open; otherwise only the listed instruments are accepted.
func NewInstrumentRegistry(allowed ...string) *InstrumentRegistry {
	r := &InstrumentRegistry{
		instruments: make(map[string]bool),
		restricted:  len(allowed) > 0,
	}
	for _, name := range allowed {
		r.instruments[name] = true
	}
	return r
}

// Register adds an instrument to the registry. Safe for concurrent use.
func (r *InstrumentRegistry) Register(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instruments[name] = true
}

// Exists returns true if the instrument has been registered.
func (r *InstrumentRegistry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.instruments[name]
}

// Allows reports whether Admit would accept name, without registering it.
func (r *InstrumentRegistry) Allows(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.restricted || r.instruments[name]
}

// Admit checks that orders for name may be accepted. Open registries
// register the instrument; restricted ones return ErrUnknownInstrument
// for anything not configured.
func (r *InstrumentRegistry) Admit(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.instruments[name] {
		return nil
	}
	if r.restricted {
		return ErrUnknownInstrument
	}
	r.instruments[name] = true
	return nil
}

// List returns the registered instruments in lexical order.
func (r *InstrumentRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.instruments))
	for name := range r.instruments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
