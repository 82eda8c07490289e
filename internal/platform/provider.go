package platform

import (
	"errors"
)

// Provider bundles the runtime backends docbind drives.
type Provider struct {
	// Sandbox executes document functions. Required.
	Sandbox Sandbox
	// Selection announces selection changes; nil when the runtime cannot.
	Selection SelectionNotifier
	// Closer announces document close; nil when the runtime cannot.
	Closer CloseNotifier
}

// ProviderConfig selects and parameterizes a runtime.
type ProviderConfig struct {
	// DocumentPath is a fixture file for runtimes that load documents from disk.
	DocumentPath string
}

// ErrUnsupported is returned when no runtime adapter is registered.
var ErrUnsupported = errors.New("no document runtime registered")

// NewProviderFunc is set by runtime packages via init().
// See internal/platform/memdoc/init.go for the in-memory registration.
var NewProviderFunc func(cfg ProviderConfig) (*Provider, error)

// NewProvider returns a Provider for the registered runtime.
func NewProvider(cfg ProviderConfig) (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc(cfg)
}
