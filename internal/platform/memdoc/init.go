package memdoc

import (
	"github.com/mj1618/docbind/internal/platform"
)

func init() {
	platform.NewProviderFunc = newProvider
}

func newProvider(cfg platform.ProviderConfig) (*platform.Provider, error) {
	doc := Sample()
	if cfg.DocumentPath != "" {
		loaded, err := Load(cfg.DocumentPath)
		if err != nil {
			return nil, err
		}
		doc = loaded
	}
	return NewProvider(doc), nil
}

// NewProvider wraps doc in a Provider with a running Sandbox.
func NewProvider(doc *Document) *platform.Provider {
	return &platform.Provider{
		Sandbox:   NewSandbox(doc),
		Selection: doc,
		Closer:    doc,
	}
}
