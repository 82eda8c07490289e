package detect

import (
	"testing"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/platform/memdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestDisambiguator(t *testing.T, rec Recoverer) *Disambiguator {
	t.Helper()
	logger := zaptest.NewLogger(t)
	d := NewDisambiguator(newTestScanner(t), rec, NewIDSynthesizer(fixedNow), logger)
	d.now = fixedNow
	return d
}

func intp(i int) *int { return &i }

func tableDoc() *memdoc.Document {
	doc := memdoc.New()
	doc.Append(&memdoc.Node{Class: "CTable", Rows: [][]string{{"Name", "Qty"}, {"Apples", "4"}}})
	return doc
}

func TestDisambiguate_ControlBeatsTableCell(t *testing.T) {
	doc := tableDoc()
	doc.AddControls(&memdoc.Control{Tag: "bind:customer_name", Alias: "Customer", ID: "sdt-9"})
	doc.Select(memdoc.Selection{Kind: memdoc.SelectTableCell, Row: 1, Column: 0, Control: intp(0)})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)

	assert.True(t, state.HasRange)
	assert.Equal(t, model.ActiveContentControl, state.ActiveKind)
	assert.Equal(t, model.ControlDetail{
		Tag:         "bind:customer_name",
		Alias:       "Customer",
		InternalID:  "sdt-9",
		BindingType: "field",
		BindingData: "customer_name",
	}, state.Detail)
	assert.Equal(t, fixedNow(), state.DetectedAt)
}

func TestDisambiguate_ActiveLink(t *testing.T) {
	doc := memdoc.New()
	doc.AddControls(&memdoc.Control{Tag: `link-data:{"url":"https://example.com"}`, Alias: "Docs"})
	doc.Select(memdoc.Selection{Kind: memdoc.SelectText, Text: "Docs", Control: intp(0)})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)

	require.Equal(t, model.ActiveLink, state.ActiveKind)
	detail := state.Detail.(model.LinkDetail)
	assert.Equal(t, map[string]any{"url": "https://example.com"}, detail.LinkData)
}

func TestDisambiguate_SelectedLinkWithoutCursor(t *testing.T) {
	doc := memdoc.New()
	doc.AddControls(
		&memdoc.Control{Tag: "bind:x"},
		&memdoc.Control{Tag: `link-data:{"url":"u"}`, Selected: true},
	)
	doc.Select(memdoc.Selection{Kind: memdoc.SelectText, Text: "u"})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)
	assert.Equal(t, model.ActiveLink, state.ActiveKind)
}

func TestDisambiguate_UnrecognizedControlFallsThrough(t *testing.T) {
	doc := memdoc.New()
	doc.AddControls(&memdoc.Control{Tag: "author-notes"})
	doc.Select(memdoc.Selection{Kind: memdoc.SelectText, Text: "draft", Control: intp(0)})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)
	assert.Equal(t, model.ActiveText, state.ActiveKind)
	assert.Equal(t, model.TextDetail{Text: "draft"}, state.Detail)
}

func TestDisambiguate_TableCell(t *testing.T) {
	doc := tableDoc()
	doc.Select(memdoc.Selection{Kind: memdoc.SelectTableCell, Row: 1, Column: 1})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)

	require.Equal(t, model.ActiveTableCell, state.ActiveKind)
	assert.Equal(t, model.CellDetail{
		Row:          2,
		Column:       2,
		RawRow:       1,
		RawColumn:    1,
		CellContent:  "4",
		TotalRows:    2,
		TotalColumns: 2,
	}, state.Detail)
}

func TestDisambiguate_ChartWithBinding(t *testing.T) {
	doc := memdoc.New()
	doc.Append(&memdoc.Node{Class: "CChart", ChartType: "pie", Width: 100, Height: 100, Drawing: true})
	doc.Select(memdoc.Selection{Kind: memdoc.SelectDrawing})
	rec := fakeRecoverer{
		model.SourceDocumentLevel: {0: {BindingID: "b-1", Payload: "sales", StorageLocation: model.StorageMemoryMap}},
	}

	state := newTestDisambiguator(t, rec).Disambiguate(doc)

	assert.False(t, state.HasRange)
	require.Equal(t, model.ActiveChart, state.ActiveKind)
	detail := state.Detail.(model.ChartDetail)
	assert.Equal(t, model.SourceDocumentLevel, detail.Source)
	assert.Equal(t, 2, detail.TotalCharts)
	assert.Equal(t, "pie", detail.Classification.SpecificType)
	require.NotNil(t, detail.Binding)
	assert.Equal(t, "b-1", detail.Binding.BindingID)
}

func TestChartClick_LastChartWithoutBindings(t *testing.T) {
	doc := memdoc.New()
	doc.Append(
		&memdoc.Node{Class: "CChart", ChartType: "pie", Drawing: true},
		&memdoc.Node{Class: "CDocumentParagraph"},
		&memdoc.Node{Class: "CChart", ChartType: "line", Drawing: true},
	)
	d := newTestDisambiguator(t, fakeRecoverer{})

	detail, ok := d.ChartClick(doc, d.Scanner().Scan(doc))

	require.True(t, ok)
	assert.Equal(t, 4, detail.TotalCharts)
	assert.Equal(t, model.SourcePositional, detail.Source)
	assert.Equal(t, 2, detail.ChartIndex)
	// The positional entry is refined with a full probe pass.
	assert.Equal(t, "line", detail.Classification.SpecificType)
	assert.Nil(t, detail.Binding)
	assert.NotEmpty(t, detail.UniqueID)
}

func TestChartClick_PrefersBoundChart(t *testing.T) {
	doc := memdoc.New()
	doc.AddFloating(
		&memdoc.Node{Class: "CChart", ChartType: "pie"},
		&memdoc.Node{Class: "CChart", ChartType: "bar"},
		&memdoc.Node{Class: "CChart", ChartType: "area"},
	)
	rec := fakeRecoverer{model.SourceDocumentLevel: {1: {BindingID: "mid"}}}
	d := newTestDisambiguator(t, rec)

	detail, ok := d.ChartClick(doc, d.Scanner().Scan(doc))

	require.True(t, ok)
	assert.Equal(t, 1, detail.ChartIndex)
	require.NotNil(t, detail.Binding)
	assert.Equal(t, "mid", detail.Binding.BindingID)
}

func TestDisambiguate_Shape(t *testing.T) {
	doc := memdoc.New()
	doc.AddFloating(
		&memdoc.Node{Class: "CChart", ChartType: "bar"},
		&memdoc.Node{Class: "CShape", ShapeType: "ellipse"},
	)
	doc.Select(memdoc.Selection{Kind: memdoc.SelectDrawing})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)

	require.Equal(t, model.ActiveShape, state.ActiveKind)
	detail := state.Detail.(model.ElementDetail)
	assert.Equal(t, 1, detail.PositionIndex)
	assert.Equal(t, model.CategoryShape, detail.Classification.Category)
	assert.Equal(t, "ellipse", detail.Classification.SpecificType)
}

func TestDisambiguate_PositionalGraphicIsRefined(t *testing.T) {
	doc := memdoc.New()
	doc.Append(
		&memdoc.Node{Class: "CDocumentParagraph"},
		&memdoc.Node{Class: "CShape", ShapeType: "rect"},
	)

	state := newTestDisambiguator(t, nil).Disambiguate(doc)

	require.Equal(t, model.ActiveShape, state.ActiveKind)
	detail := state.Detail.(model.ElementDetail)
	assert.Equal(t, model.SourcePositional, detail.Source)
	assert.Equal(t, MethodShapeType, detail.Classification.DetectionMethod)
}

func TestDisambiguate_TextAndDocument(t *testing.T) {
	d := newTestDisambiguator(t, nil)

	doc := memdoc.Sample()
	state := d.Disambiguate(doc)
	assert.Equal(t, model.ActiveText, state.ActiveKind)
	assert.Equal(t, model.TextDetail{Text: "Quarterly report"}, state.Detail)

	doc.Select(memdoc.Selection{Kind: memdoc.SelectText})
	state = d.Disambiguate(doc)
	assert.True(t, state.HasRange)
	assert.Equal(t, model.ActiveDocument, state.ActiveKind)
	assert.Nil(t, state.Detail)
}

func TestDisambiguate_Unknown(t *testing.T) {
	d := newTestDisambiguator(t, nil)

	doc := memdoc.New()
	doc.Append(&memdoc.Node{Class: "CDocumentParagraph", Text: "only text"})
	state := d.Disambiguate(doc)
	assert.False(t, state.HasRange)
	assert.Equal(t, model.ActiveUnknown, state.ActiveKind)

	require.NotPanics(t, func() { state = d.Disambiguate(struct{}{}) })
	assert.Equal(t, model.ActiveUnknown, state.ActiveKind)
}

func TestDisambiguate_FaultingHostFallsThrough(t *testing.T) {
	doc := tableDoc()
	doc.SetFault("CurrentContentControl", "Cannot read properties of null")
	doc.SetFault("AllContentControls", "Cannot read properties of null")
	doc.Select(memdoc.Selection{Kind: memdoc.SelectTableCell, Row: 0, Column: 0})

	state := newTestDisambiguator(t, nil).Disambiguate(doc)
	assert.Equal(t, model.ActiveTableCell, state.ActiveKind)
}

// countingDoc records how often the element collections are read.
type countingDoc struct {
	*memdoc.Document
	reads int
}

func (c *countingDoc) AllDrawingObjects() ([]platform.Element, error) {
	c.reads++
	return c.Document.AllDrawingObjects()
}

func (c *countingDoc) ElementAt(i int) (platform.Element, error) {
	c.reads++
	return c.Document.ElementAt(i)
}

func TestDisambiguate_TextSelectionSkipsScan(t *testing.T) {
	d := newTestDisambiguator(t, nil)
	doc := &countingDoc{Document: memdoc.Sample()}

	state := d.Disambiguate(doc)
	assert.Equal(t, model.ActiveText, state.ActiveKind)
	assert.Zero(t, doc.reads)

	doc.Select(memdoc.Selection{Kind: memdoc.SelectDrawing})
	d.Disambiguate(doc)
	assert.Positive(t, doc.reads)
}
