package controller

import "sync"

// Input names the controls that emit events.
const (
	InputQuery    = "query"
	InputCategory = "category"
	InputSort     = "sort"
)

// Events is a listener registry keyed by input name. Dispatch finds nothing
// until a listener is attached.
type Events struct {
	mu        sync.RWMutex
	listeners map[string]func(value string)
}

// NewEvents returns an empty registry.
func NewEvents() *Events {
	return &Events{listeners: map[string]func(string){}}
}

// Listen attaches fn to input, replacing any previous listener.
func (e *Events) Listen(input string, fn func(value string)) {
	e.mu.Lock()
	e.listeners[input] = fn
	e.mu.Unlock()
}

// Attached reports whether input has a listener.
func (e *Events) Attached(input string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.listeners[input]
	return ok
}

// Dispatch delivers value to the listener of input and reports whether one ran.
func (e *Events) Dispatch(input, value string) bool {
	e.mu.RLock()
	fn, ok := e.listeners[input]
	e.mu.RUnlock()
	if !ok {
		return false
	}
	fn(value)
	return true
}
