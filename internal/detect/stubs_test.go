package detect

import (
	"sort"
	"sync"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
)

// bare implements no capability at all.
type bare struct{}

// tagged only reports a class tag.
type tagged string

func (t tagged) ClassType() (string, error) { return string(t), nil }

// panicky panics on every accessor it has.
type panicky struct{}

func (panicky) ClassType() (string, error)         { panic("host object destroyed") }
func (panicky) Width() (float64, error)            { panic("host object destroyed") }
func (panicky) Height() (float64, error)           { panic("host object destroyed") }
func (panicky) Chart() (platform.Chart, error)     { panic("host object destroyed") }
func (panicky) PrevChart() (platform.Chart, error) { panic("host object destroyed") }

// dynamic is an element exposing only the Invoker surface. It records the
// order of invocations.
type dynamic struct {
	class   string
	methods map[string]func() (any, error)

	mu    sync.Mutex
	calls []string
}

func (d *dynamic) ClassType() (string, error) { return d.class, nil }

func (d *dynamic) MethodNames() []string {
	names := make([]string, 0, len(d.methods))
	for n := range d.methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (d *dynamic) Call(name string, _ ...any) (any, error) {
	d.mu.Lock()
	d.calls = append(d.calls, name)
	d.mu.Unlock()
	fn, ok := d.methods[name]
	if !ok {
		return nil, platform.ErrNotSupported
	}
	return fn()
}

func (d *dynamic) called(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, c := range d.calls {
		if c == name {
			return true
		}
	}
	return false
}

type fixedChart string

func (c fixedChart) ChartType() (string, error) { return string(c), nil }

type faultChart struct{ err error }

func (c faultChart) ChartType() (string, error) { return "", c.err }

// legacyOnly exposes only the "previous chart" accessor.
type legacyOnly struct {
	tagged
	prev platform.Chart
	err  error
}

func (l legacyOnly) PrevChart() (platform.Chart, error) { return l.prev, l.err }

// fakeRecoverer returns preset bindings keyed by source and position.
type fakeRecoverer map[model.Source]map[int]model.BindingRecord

func (f fakeRecoverer) Recover(_ platform.Document, _ platform.Element, pos int, src model.Source) (model.BindingRecord, bool) {
	rec, ok := f[src][pos]
	return rec, ok
}
