package detect

import (
	"time"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"go.uber.org/zap"
)

// Recoverer looks up a previously stored binding for a scanned element.
// Matching is positional: a structural edit between bind and recover can
// attach the wrong record.
type Recoverer interface {
	Recover(doc platform.Document, el platform.Element, position int, source model.Source) (model.BindingRecord, bool)
}

// Disambiguator decides what the selection currently touches.
type Disambiguator struct {
	scanner  *Scanner
	bindings Recoverer
	ids      *IDSynthesizer
	now      func() time.Time
	logger   *zap.Logger
}

// NewDisambiguator wires the detection cascade. bindings may be nil, in which
// case chart clicks report no binding data.
func NewDisambiguator(scanner *Scanner, bindings Recoverer, ids *IDSynthesizer, logger *zap.Logger) *Disambiguator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ids == nil {
		ids = NewIDSynthesizer(nil)
	}
	return &Disambiguator{scanner: scanner, bindings: bindings, ids: ids, now: time.Now, logger: logger}
}

// Scanner returns the scanner used by the generic step.
func (d *Disambiguator) Scanner() *Scanner { return d.scanner }

// Disambiguate runs the detectors in priority order: content control, link,
// table cell, generic element, chart. Failures at any step fall through.
func (d *Disambiguator) Disambiguate(doc platform.Document) model.SelectionState {
	rng, hasRange := SelectedRange(doc)
	state := model.SelectionState{
		HasRange:   hasRange,
		ActiveKind: model.ActiveUnknown,
		DetectedAt: d.now(),
	}

	if c, ok := ActiveControl(doc); ok && c.Recognized {
		if c.Info.IsLink() {
			state.ActiveKind = model.ActiveLink
			state.Detail = linkDetail(c)
		} else {
			state.ActiveKind = model.ActiveContentControl
			state.Detail = controlDetail(c)
		}
		return d.done(state, "active-control")
	}

	if link, ok := selectedLink(doc); ok {
		state.ActiveKind = model.ActiveLink
		state.Detail = linkDetail(link)
		return d.done(state, "selected-link")
	}

	if hasRange {
		if cell, ok := LocateCell(rng); ok {
			state.ActiveKind = model.ActiveTableCell
			state.Detail = cell
			return d.done(state, "table-cell")
		}
	}

	if !hasRange {
		scan := d.scanner.Scan(doc)
		entry, ok := d.clickedGraphic(scan)
		if !ok {
			return d.done(state, "no-match")
		}
		if entry.Classification.Category == model.CategoryChart {
			if chart, ok := d.ChartClick(doc, scan); ok {
				state.ActiveKind = model.ActiveChart
				state.Detail = chart
				return d.done(state, "chart")
			}
		}
		state.ActiveKind = model.ActiveShape
		state.Detail = model.ElementDetail{
			PositionIndex:  entry.PositionIndex,
			Source:         entry.Source,
			ElementType:    entry.ElementType,
			Classification: entry.Classification,
		}
		return d.done(state, "element")
	}

	if text := RangeText(rng); text != "" {
		state.ActiveKind = model.ActiveText
		state.Detail = model.TextDetail{Text: text}
		return d.done(state, "text")
	}
	state.ActiveKind = model.ActiveDocument
	return d.done(state, "document")
}

func (d *Disambiguator) done(state model.SelectionState, step string) model.SelectionState {
	d.logger.Debug("selection disambiguated",
		zap.String("step", step),
		zap.String("kind", string(state.ActiveKind)),
		zap.Bool("hasRange", state.HasRange))
	return state
}

// clickedGraphic picks the drawing most recently added to the document. The
// host gives no hit-testing, so the last document-level drawing stands in for
// the clicked one; positional graphics are the fallback.
func (d *Disambiguator) clickedGraphic(scan ScanResult) (Entry, bool) {
	if drawings := scan.BySource(model.SourceDocumentLevel); len(drawings) > 0 {
		return drawings[len(drawings)-1], true
	}
	positional := scan.BySource(model.SourcePositional)
	for i := len(positional) - 1; i >= 0; i-- {
		e := positional[i]
		if e.Graphic && e.Classification.Category.IsGraphic() {
			return d.refine(e), true
		}
	}
	return Entry{}, false
}

// refine upgrades a lexical classification with a full probe pass.
func (d *Disambiguator) refine(e Entry) Entry {
	if e.Classification.DetectionMethod != MethodLexical {
		return e
	}
	full := d.scanner.Classifier().Classify(e.Element)
	if full.Category != model.CategoryUnknown {
		e.Classification = full
	}
	return e
}

// ChartClick resolves the clicked chart and its binding. The last chart with
// bound data wins, otherwise the last chart.
func (d *Disambiguator) ChartClick(doc platform.Document, scan ScanResult) (model.ChartDetail, bool) {
	charts := scan.Charts()
	if len(charts) == 0 {
		return model.ChartDetail{}, false
	}
	var chosen *model.ChartDetail
	for i := range charts {
		e := d.refine(charts[i])
		detail := model.ChartDetail{
			ChartIndex:     e.PositionIndex,
			Source:         e.Source,
			ElementType:    e.ElementType,
			UniqueID:       e.UniqueID,
			TotalCharts:    len(charts),
			Classification: e.Classification,
		}
		if detail.UniqueID == "" {
			detail.UniqueID = d.ids.Synthesize(e.Element, e.ElementType, e.PositionIndex)
		}
		if d.bindings != nil {
			if rec, ok := d.bindings.Recover(doc, e.Element, e.PositionIndex, e.Source); ok {
				detail.Binding = &rec
			}
		}
		if chosen == nil || detail.Binding != nil || chosen.Binding == nil {
			c := detail
			chosen = &c
		}
	}
	return *chosen, true
}

func selectedLink(doc platform.Document) (Control, bool) {
	for _, c := range SelectedControls(doc) {
		if c.Recognized && c.Info.IsLink() {
			return c, true
		}
	}
	return Control{}, false
}
