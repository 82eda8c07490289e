package binding

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mj1618/docbind/internal/detect"
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/platform/memdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock { return &clock{t: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)} }

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{WithLogger(zaptest.NewLogger(t)), WithClock(newClock().now)}
	return NewStore(append(base, opts...)...)
}

func element(t *testing.T, doc *memdoc.Document, n *memdoc.Node) platform.Element {
	t.Helper()
	doc.Append(n)
	el, err := doc.ElementAt(len(doc.Body()) - 1)
	require.NoError(t, err)
	return el
}

type bare struct{}

func TestBind_CustomProperty(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New()
	el := element(t, doc, &memdoc.Node{Class: "CChart", ChartType: "bar", CustomProps: true})
	s := newTestStore(t)

	rec, err := s.Bind(ctx, doc, el, Target{Position: 0, Source: model.SourcePositional, ElementType: "CChart"}, map[string]any{"series": "sales"})
	require.NoError(t, err)
	assert.Equal(t, model.StorageCustomProperty, rec.StorageLocation)
	assert.Equal(t, "chart_0_1709285400000", rec.BindingID)
	assert.True(t, rec.MarkerCreated)
	assert.Empty(t, rec.Errors)

	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries, "the map is not used once the element holds the binding")

	got, ok := s.Recover(doc, el, 0, model.SourcePositional)
	require.True(t, ok)
	assert.Equal(t, rec.BindingID, got.BindingID)
	assert.Equal(t, model.StorageCustomProperty, got.StorageLocation)
	assert.Equal(t, map[string]any{"series": "sales"}, got.Payload)
	assert.True(t, rec.BoundAt.Equal(got.BoundAt))
}

func TestBind_AltProperty(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New()
	el := element(t, doc, &memdoc.Node{
		Class:   "CChart",
		Methods: map[string]string{"SetAttribute": "", "GetAttribute": ""},
	})
	s := newTestStore(t, WithMarkers(false))

	rec, err := s.Bind(ctx, doc, el, Target{Position: 0}, "q1")
	require.NoError(t, err)
	assert.Equal(t, model.StorageAltProperty, rec.StorageLocation)

	got, ok := s.Recover(doc, el, 0, "")
	require.True(t, ok)
	assert.Equal(t, model.StorageAltProperty, got.StorageLocation)
	assert.Equal(t, "q1", got.Payload)
}

func TestBind_FallsBackToMapOnFault(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New()
	el := element(t, doc, &memdoc.Node{
		Class:       "CChart",
		CustomProps: true,
		Faults:      map[string]string{"SetCustomProperty": "property store is read-only"},
	})
	c := newClock()
	s := newTestStore(t, WithClock(c.now), WithMarkers(false))

	rec, err := s.Bind(ctx, doc, el, Target{Position: 3, Source: model.SourceDocumentLevel}, "x")
	require.NoError(t, err)
	assert.Equal(t, model.StorageMemoryMap, rec.StorageLocation)
	assert.Equal(t, "doc_chart_3_1709285400000", rec.StorageKey)
	require.Len(t, rec.Errors, 1)
	assert.Contains(t, rec.Errors[0], "SetCustomProperty: property store is read-only")

	got, ok := s.Recover(doc, bare{}, 3, model.SourceDocumentLevel)
	require.True(t, ok)
	assert.Equal(t, rec.BindingID, got.BindingID)
	assert.Equal(t, rec.StorageKey, got.StorageKey)
}

func TestBind_NewBindSupersedesOlder(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New()
	c := newClock()
	s := newTestStore(t, WithClock(c.now), WithMarkers(false))

	first, err := s.Bind(ctx, doc, bare{}, Target{Position: 1}, "old")
	require.NoError(t, err)
	c.advance(time.Second)
	second, err := s.Bind(ctx, doc, bare{}, Target{Position: 1}, "new")
	require.NoError(t, err)
	_, err = s.Bind(ctx, doc, bare{}, Target{Position: 2}, "other")
	require.NoError(t, err)

	assert.NotEqual(t, first.StorageKey, second.StorageKey)
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	got, ok := s.Recover(doc, bare{}, 1, "")
	require.True(t, ok)
	assert.Equal(t, "new", got.Payload)
}

func TestRecover_SourceMustAgreeWhenBothKnown(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New()
	s := newTestStore(t)

	_, err := s.Bind(ctx, doc, bare{}, Target{Position: 0, Source: model.SourceDocumentLevel}, "x")
	require.NoError(t, err)

	_, ok := s.Recover(doc, bare{}, 0, model.SourcePositional)
	assert.False(t, ok)
	_, ok = s.Recover(doc, bare{}, 0, "")
	assert.True(t, ok)
	_, ok = s.Recover(doc, bare{}, 1, model.SourceDocumentLevel)
	assert.False(t, ok)
}

func TestBind_MarkerOnly(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.New()
	s := newTestStore(t, WithBackend(nil))

	rec, err := s.Bind(ctx, doc, bare{}, Target{Position: 4, Source: model.SourcePositional}, "m")
	require.NoError(t, err)
	assert.True(t, rec.MarkerCreated)
	assert.Empty(t, rec.StorageLocation)

	controls := doc.Controls()
	require.Len(t, controls, 1)
	assert.True(t, controls[0].Hidden)
	assert.True(t, strings.HasPrefix(controls[0].Tag, model.TagPrefixChartMarker))
	assert.Equal(t, "Chart data: "+rec.BindingID, controls[0].Alias)

	got, ok := s.Recover(doc, bare{}, 4, model.SourcePositional)
	require.True(t, ok)
	assert.Equal(t, model.StorageHiddenMarker, got.StorageLocation)
	assert.Equal(t, "m", got.Payload)
}

func TestBind_NoCapability(t *testing.T) {
	s := newTestStore(t, WithBackend(nil), WithMarkers(false))
	_, err := s.Bind(context.Background(), struct{}{}, bare{}, Target{}, "x")
	assert.ErrorIs(t, err, ErrNoBindingCapability)
}

func TestBind_EveryChannelFails(t *testing.T) {
	doc := memdoc.New()
	el := element(t, doc, &memdoc.Node{
		Class:       "CChart",
		CustomProps: true,
		Faults:      map[string]string{"SetCustomProperty": "boom"},
	})
	doc.SetFault("AddContentControl", "document is locked")
	s := newTestStore(t, WithBackend(nil))

	rec, err := s.Bind(context.Background(), doc, el, Target{}, "x")
	require.NoError(t, err, "runtime failures are reported in the record")
	require.Len(t, rec.Errors, 2)
	assert.Contains(t, rec.Errors[0], "SetCustomProperty: boom")
	assert.Contains(t, rec.Errors[1], "content-control: document is locked")
	assert.Empty(t, rec.StorageLocation)
	assert.Empty(t, rec.StorageKey)
	assert.False(t, rec.MarkerCreated)
}

func TestBind_IDDerivesFromPositionAndTime(t *testing.T) {
	c := newClock()
	s := newTestStore(t, WithClock(c.now), WithMarkers(false))

	rec, err := s.Bind(context.Background(), memdoc.New(), bare{}, Target{Position: 2}, "x")
	require.NoError(t, err)
	assert.Equal(t, "chart_2_1709285400000", rec.BindingID)

	c.advance(time.Millisecond)
	next, err := s.Bind(context.Background(), memdoc.New(), bare{}, Target{Position: 2}, "y")
	require.NoError(t, err)
	assert.Equal(t, "chart_2_1709285400001", next.BindingID)
}

func TestBind_UnencodablePayload(t *testing.T) {
	_, err := newTestStore(t).Bind(context.Background(), memdoc.New(), bare{}, Target{}, func() {})
	assert.Error(t, err)
}

func TestRecover_MalformedPropertyIsAbsent(t *testing.T) {
	doc := memdoc.New()
	el := element(t, doc, &memdoc.Node{Class: "CChart", CustomProps: true})
	require.NoError(t, el.(platform.CustomPropertyStore).SetCustomProperty(PropertyKey, "{not json"))
	doc.AddControls(&memdoc.Control{Tag: model.TagPrefixChartMarker + "[1,2"})

	_, ok := newTestStore(t).Recover(doc, el, 0, "")
	assert.False(t, ok)
}

func TestClose_ClearsMap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, WithMarkers(false))
	_, err := s.Bind(ctx, memdoc.New(), bare{}, Target{Position: 0}, "x")
	require.NoError(t, err)

	require.NoError(t, s.Close(ctx))
	entries, err := s.Entries(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	doc := memdoc.Sample()
	logger := zaptest.NewLogger(t)
	scanner := detect.NewScanner(detect.NewClassifier(nil, logger), logger)
	s := newTestStore(t)

	scan := scanner.Scan(doc)
	var positional detect.Entry
	for _, e := range scan.Charts() {
		if e.Source == model.SourcePositional {
			positional = e
		}
	}
	rec, err := s.Bind(ctx, doc, positional.Element, Target{Position: positional.PositionIndex, Source: positional.Source}, "sales")
	require.NoError(t, err)

	summary := s.Summary(ctx, doc, scanner.Scan(doc))
	assert.Equal(t, 2, summary.TotalCharts)
	assert.Equal(t, 1, summary.ChartsWithData)
	assert.Equal(t, 1, summary.StoredBindings)
	require.Len(t, summary.BindingSummary, 2)
	assert.False(t, summary.BindingSummary[0].HasBindingData)
	assert.Equal(t, model.BindingPreview{
		ChartIndex:      2,
		Source:          model.SourcePositional,
		ChartType:       "chart",
		HasBindingData:  true,
		StorageLocation: model.StorageMemoryMap,
		BindingPreview:  rec.BindingID,
	}, summary.BindingSummary[1])
}
