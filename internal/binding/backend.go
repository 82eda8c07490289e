package binding

import (
	"context"
	"sort"
	"sync"

	"github.com/mj1618/docbind/internal/model"
)

// Entry is one record in a binding map.
type Entry struct {
	Key    string
	Record model.BindingRecord
}

// Backend is the session-scoped key/value map used when the element itself
// cannot carry a binding.
type Backend interface {
	Put(ctx context.Context, key string, rec model.BindingRecord) error
	// All returns every entry ordered by key.
	All(ctx context.Context) ([]Entry, error)
	Delete(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}

// Verify interface compliance
var _ Backend = (*MemoryBackend)(nil)

// MemoryBackend keeps bindings in process memory.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[string]model.BindingRecord
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{records: make(map[string]model.BindingRecord)}
}

func (m *MemoryBackend) Put(_ context.Context, key string, rec model.BindingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[key] = rec
	return nil
}

func (m *MemoryBackend) All(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.records))
	for k, rec := range m.records {
		out = append(out, Entry{Key: k, Record: rec})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.records, k)
	}
	return nil
}

func (m *MemoryBackend) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[string]model.BindingRecord)
	return nil
}
