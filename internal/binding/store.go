// Package binding attaches opaque payloads to document elements and recovers
// them later. Hosts differ in what an element can carry, so binding walks a
// chain of storage channels and recovery walks the same chain back.
package binding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
	"go.uber.org/zap"
)

const (
	// PropertyKey is the element property holding the serialized record.
	PropertyKey = "chartData"
	// DefaultKeyPrefix prefixes binding map keys.
	DefaultKeyPrefix = "doc_chart_"
)

// Dynamic members tried on elements without native custom properties.
var (
	altSetters = []string{"SetProperty", "SetAttribute", "SetCustomData"}
	altGetters = []string{"GetProperty", "GetAttribute", "GetCustomData"}
)

// ErrNoBindingCapability means neither the element, the document nor a
// backend could hold the binding.
var ErrNoBindingCapability = errors.New("no binding capability available")

// Target identifies the element being bound. Position and Source are the
// recovery key.
type Target struct {
	Position    int
	Source      model.Source
	ElementType string
	UniqueID    string
}

// Store is the session-scoped binding store.
type Store struct {
	backend Backend
	prefix  string
	markers bool
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithBackend sets the binding map backend. A nil backend disables the map
// channel.
func WithBackend(b Backend) Option {
	return func(s *Store) { s.backend = b }
}

// WithKeyPrefix sets the binding map key prefix.
func WithKeyPrefix(prefix string) Option {
	return func(s *Store) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithMarkers toggles hidden marker controls.
func WithMarkers(enabled bool) Option {
	return func(s *Store) { s.markers = enabled }
}

// WithClock sets the time source for BoundAt and map keys.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore returns a store backed by process memory unless configured
// otherwise.
func NewStore(opts ...Option) *Store {
	s := &Store{
		backend: NewMemoryBackend(),
		prefix:  DefaultKeyPrefix,
		markers: true,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind stores payload for the element. Channels are tried in order: native
// custom property, dynamic property setters, then the binding map. The first
// success stops the chain. A hidden marker control is attempted independently.
// Runtime failures are collected in the record's Errors; only a target with no
// channel at all is an error.
func (s *Store) Bind(ctx context.Context, doc platform.Document, el platform.Element, t Target, payload any) (model.BindingRecord, error) {
	if _, err := json.Marshal(payload); err != nil {
		return model.BindingRecord{}, fmt.Errorf("failed to encode payload: %w", err)
	}
	now := s.now()
	rec := model.BindingRecord{
		Payload:             payload,
		BindingID:           fmt.Sprintf("chart_%d_%d", t.Position, now.UnixMilli()),
		BoundAt:             now,
		SourcePositionIndex: t.Position,
		Source:              t.Source,
		ElementType:         t.ElementType,
		UniqueID:            t.UniqueID,
	}
	capable := false
	stored := false

	if cps, ok := el.(platform.CustomPropertyStore); ok {
		rec.StorageLocation = model.StorageCustomProperty
		rec.StorageKey = PropertyKey
		r := probe.Do(func() error { return cps.SetCustomProperty(PropertyKey, encode(rec)) })
		capable = capable || r.Outcome != probe.NotApplicable
		stored = s.settle(&rec, "SetCustomProperty", r)
	}

	if !stored {
		if inv, ok := el.(platform.Invoker); ok {
			rec.StorageLocation = model.StorageAltProperty
			rec.StorageKey = PropertyKey
			for _, name := range available(inv, altSetters) {
				capable = true
				r := probe.Do(func() error {
					_, err := inv.Call(name, PropertyKey, encode(rec))
					return err
				})
				if stored = s.settle(&rec, name, r); stored {
					break
				}
			}
		}
	}

	if !stored && s.backend != nil {
		capable = true
		rec.StorageLocation = model.StorageMemoryMap
		rec.StorageKey = fmt.Sprintf("%s%d_%d", s.prefix, t.Position, rec.BoundAt.UnixMilli())
		r := probe.Do(func() error { return s.putSuperseding(ctx, rec) })
		stored = s.settle(&rec, "binding-map", r)
	}

	if !stored {
		rec.StorageLocation = ""
		rec.StorageKey = ""
	}

	if s.markers {
		if ins, ok := doc.(platform.ControlInserter); ok {
			capable = true
			r := probe.Call(func() (platform.ContentControl, error) {
				return ins.AddContentControl(platform.ControlSpec{
					Tag:    model.TagPrefixChartMarker + encode(rec),
					Alias:  "Chart data: " + rec.BindingID,
					Hidden: true,
				})
			})
			if r.OK() {
				rec.MarkerCreated = true
			} else if r.Err != nil {
				rec.Errors = append(rec.Errors, "content-control: "+r.Err.Error())
			}
		}
	}

	if !capable {
		return rec, ErrNoBindingCapability
	}
	s.logger.Debug("binding stored",
		zap.String("bindingId", rec.BindingID),
		zap.Int("position", t.Position),
		zap.String("location", string(rec.StorageLocation)),
		zap.Bool("marker", rec.MarkerCreated))
	return rec, nil
}

// settle records a failed step and reports success.
func (s *Store) settle(rec *model.BindingRecord, step string, r probe.Result[struct{}]) bool {
	if r.OK() {
		return true
	}
	if r.Err != nil {
		rec.Errors = append(rec.Errors, step+": "+r.Err.Error())
		s.logger.Debug("binding step failed", zap.String("step", step), zap.Error(r.Err))
	}
	return false
}

// putSuperseding stores rec and drops older map entries for the same element.
func (s *Store) putSuperseding(ctx context.Context, rec model.BindingRecord) error {
	entries, err := s.backend.All(ctx)
	if err != nil {
		return err
	}
	var stale []string
	for _, e := range entries {
		if e.Key != rec.StorageKey && sameElement(e.Record, rec.SourcePositionIndex, rec.Source) {
			stale = append(stale, e.Key)
		}
	}
	if err := s.backend.Delete(ctx, stale...); err != nil {
		return err
	}
	return s.backend.Put(ctx, rec.StorageKey, rec)
}

// Recover implements detect.Recoverer with a background context.
func (s *Store) Recover(doc platform.Document, el platform.Element, position int, source model.Source) (model.BindingRecord, bool) {
	return s.RecoverContext(context.Background(), doc, el, position, source)
}

// RecoverContext looks for a binding on the element, then in the binding map
// by position, then in hidden marker controls. Malformed data counts as
// absent.
func (s *Store) RecoverContext(ctx context.Context, doc platform.Document, el platform.Element, position int, source model.Source) (model.BindingRecord, bool) {
	r := probe.First(
		func() probe.Result[model.BindingRecord] { return s.fromCustomProperty(el) },
		func() probe.Result[model.BindingRecord] { return s.fromAltProperty(el) },
		func() probe.Result[model.BindingRecord] { return s.fromBackend(ctx, position, source) },
		func() probe.Result[model.BindingRecord] { return s.fromMarkers(doc, position, source) },
	)
	if r.Outcome == probe.HostFault {
		s.logger.Debug("binding recovery failed", zap.Int("position", position), zap.Error(r.Err))
	}
	return r.Value, r.OK()
}

func (s *Store) fromCustomProperty(el platform.Element) probe.Result[model.BindingRecord] {
	cps, ok := el.(platform.CustomPropertyStore)
	if !ok {
		return probe.Absent[model.BindingRecord]()
	}
	raw := probe.NonEmpty(probe.Call(func() (string, error) { return cps.CustomProperty(PropertyKey) }))
	if !raw.OK() {
		return probe.Result[model.BindingRecord]{Outcome: raw.Outcome, Err: raw.Err}
	}
	return decode(raw.Value, model.StorageCustomProperty)
}

func (s *Store) fromAltProperty(el platform.Element) probe.Result[model.BindingRecord] {
	inv, ok := el.(platform.Invoker)
	if !ok {
		return probe.Absent[model.BindingRecord]()
	}
	steps := make([]func() probe.Result[model.BindingRecord], 0, len(altGetters))
	for _, name := range available(inv, altGetters) {
		steps = append(steps, func() probe.Result[model.BindingRecord] {
			r := probe.Call(func() (any, error) { return inv.Call(name, PropertyKey) })
			if !r.OK() {
				return probe.Result[model.BindingRecord]{Outcome: r.Outcome, Err: r.Err}
			}
			raw, ok := r.Value.(string)
			if !ok || raw == "" {
				return probe.Absent[model.BindingRecord]()
			}
			return decode(raw, model.StorageAltProperty)
		})
	}
	return probe.First(steps...)
}

func (s *Store) fromBackend(ctx context.Context, position int, source model.Source) probe.Result[model.BindingRecord] {
	if s.backend == nil {
		return probe.Absent[model.BindingRecord]()
	}
	entries := probe.Call(func() ([]Entry, error) { return s.backend.All(ctx) })
	if !entries.OK() {
		return probe.Result[model.BindingRecord]{Outcome: entries.Outcome, Err: entries.Err}
	}
	var found *model.BindingRecord
	for _, e := range entries.Value {
		if !sameElement(e.Record, position, source) {
			continue
		}
		if found == nil || !e.Record.BoundAt.Before(found.BoundAt) {
			rec := e.Record
			rec.StorageKey = e.Key
			found = &rec
		}
	}
	if found == nil {
		return probe.Absent[model.BindingRecord]()
	}
	found.StorageLocation = model.StorageMemoryMap
	return probe.Ok(*found)
}

func (s *Store) fromMarkers(doc platform.Document, position int, source model.Source) probe.Result[model.BindingRecord] {
	lister, ok := doc.(platform.ContentControlLister)
	if !ok {
		return probe.Absent[model.BindingRecord]()
	}
	controls := probe.Call(lister.AllContentControls)
	if !controls.OK() {
		return probe.Result[model.BindingRecord]{Outcome: controls.Outcome, Err: controls.Err}
	}
	var found *model.BindingRecord
	for _, cc := range controls.Value {
		if cc == nil {
			continue
		}
		tag := probe.Call(cc.Tag)
		if !tag.OK() || !strings.HasPrefix(tag.Value, model.TagPrefixChartMarker) {
			continue
		}
		r := decode(strings.TrimPrefix(tag.Value, model.TagPrefixChartMarker), model.StorageHiddenMarker)
		if !r.OK() || !sameElement(r.Value, position, source) {
			continue
		}
		if found == nil || !r.Value.BoundAt.Before(found.BoundAt) {
			rec := r.Value
			found = &rec
		}
	}
	if found == nil {
		return probe.Absent[model.BindingRecord]()
	}
	found.MarkerCreated = true
	return probe.Ok(*found)
}

// Entries returns the binding map contents.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	if s.backend == nil {
		return nil, nil
	}
	return s.backend.All(ctx)
}

// Close clears the binding map. It is called when the document closes.
func (s *Store) Close(ctx context.Context) error {
	if s.backend == nil {
		return nil
	}
	return s.backend.Clear(ctx)
}

// sameElement matches on position, and on source when both sides carry one.
func sameElement(rec model.BindingRecord, position int, source model.Source) bool {
	if rec.SourcePositionIndex != position {
		return false
	}
	return rec.Source == "" || source == "" || rec.Source == source
}

func available(inv platform.Invoker, names []string) []string {
	methods := inv.MethodNames()
	var out []string
	for _, n := range names {
		if slices.Contains(methods, n) {
			out = append(out, n)
		}
	}
	return out
}

// encode serializes rec without its diagnostics. Bind has already checked
// that the payload marshals.
func encode(rec model.BindingRecord) string {
	rec.Errors = nil
	b, _ := json.Marshal(rec)
	return string(b)
}

func decode(raw string, loc model.StorageLocation) probe.Result[model.BindingRecord] {
	var rec model.BindingRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil || rec.BindingID == "" {
		return probe.Absent[model.BindingRecord]()
	}
	rec.StorageLocation = loc
	return probe.Ok(rec)
}
