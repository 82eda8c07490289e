package platform

import "sync"

// DocFunc runs inside the sandbox with access to the global document handle.
type DocFunc func(doc Document, scope *Scope) (any, error)

// CallOptions controls how the sandbox delivers a result.
type CallOptions struct {
	// Async asks the runtime to deliver the result from its own context
	// instead of returning before CallCommand does.
	Async bool
	Scope *Scope
}

// Sandbox executes functions against the live document. The callback fires
// exactly once per call.
type Sandbox interface {
	CallCommand(fn DocFunc, opts CallOptions, callback func(any, error))
}

// Scope is the shared parameter object a caller fills immediately before a
// sandbox call.
type Scope struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewScope returns an empty scope.
func NewScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Set replaces the scope contents.
func (s *Scope) Set(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = make(map[string]any, len(values))
	for k, v := range values {
		s.values[k] = v
	}
}

// Get returns a single value.
func (s *Scope) Get(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// String returns the string value for key or def.
func (s *Scope) String(key, def string) string {
	v, ok := s.Get(key)
	if !ok {
		return def
	}
	if str, ok := v.(string); ok && str != "" {
		return str
	}
	return def
}
