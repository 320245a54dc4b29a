package tool

import (
	"errors"
	"fmt"
	"sync"
)

// Registry errors.
var (
	ErrDuplicateTool = errors.New("tool already registered")
	ErrDuplicateTune = errors.New("tune already registered")
	ErrUnknownTool   = errors.New("unknown tool")
)

// Registry holds the tool and tune adapters known to the editor.
// Tune registration order is preserved: it defines default-tune wrap order.
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]Adapter
	tunes     map[string]TuneAdapter
	tuneOrder []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Adapter),
		tunes: make(map[string]TuneAdapter),
	}
}

// RegisterTool adds a tool adapter.
func (r *Registry) RegisterTool(a Adapter) error {
	if a == nil || a.Name() == "" {
		return errors.New("invalid tool adapter")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tools[a.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTool, a.Name())
	}
	r.tools[a.Name()] = a
	return nil
}

// RegisterTune adds a tune adapter.
func (r *Registry) RegisterTune(a TuneAdapter) error {
	if a == nil || a.Name() == "" {
		return errors.New("invalid tune adapter")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tunes[a.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTune, a.Name())
	}
	r.tunes[a.Name()] = a
	r.tuneOrder = append(r.tuneOrder, a.Name())
	return nil
}

// UnregisterTool removes a tool adapter. Returns true if it existed.
func (r *Registry) UnregisterTool(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.tools[name]
	delete(r.tools, name)
	return ok
}

// UnregisterTune removes a tune adapter. Returns true if it existed.
func (r *Registry) UnregisterTune(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tunes[name]; !ok {
		return false
	}
	delete(r.tunes, name)
	for i, n := range r.tuneOrder {
		if n == name {
			r.tuneOrder = append(r.tuneOrder[:i:i], r.tuneOrder[i+1:]...)
			break
		}
	}
	return true
}

// Tool returns the adapter for a tool type name.
func (r *Registry) Tool(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTool, name)
	}
	return a, nil
}

// Tune returns the adapter for a tune name, or nil when unknown.
func (r *Registry) Tune(name string) TuneAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tunes[name]
}

// Tunes returns all tune adapters in registration order.
func (r *Registry) Tunes() []TuneAdapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TuneAdapter, 0, len(r.tuneOrder))
	for _, name := range r.tuneOrder {
		out = append(out, r.tunes[name])
	}
	return out
}

// ToolNames returns the registered tool type names.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	return names
}
