package detect

import (
	"fmt"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
)

// Messages returned by the click detectors.
const (
	ErrMsgNoCharts      = "No charts found in document"
	ErrMsgNoLink        = "No link control found at current position"
	ErrMsgNoTables      = "No tables found in document"
	ErrMsgNotInCell     = "Selection is not inside a table cell"
	ErrMsgNoSelection   = "No selection found"
	ErrMsgNoBinding     = "No binding control found at current position"
	ErrMsgNoElement     = "No element detected at current position"
	ErrMsgNoClickTarget = "Could not determine clicked element"
)

// DetectLinkClick reports the link control under the cursor.
func (d *Disambiguator) DetectLinkClick(doc platform.Document) model.DetectionResult {
	if c, ok := ActiveControl(doc); ok && c.Recognized && c.Info.IsLink() {
		return model.Found("Link clicked", linkDetail(c))
	}
	if c, ok := selectedLink(doc); ok {
		return model.Found("Link clicked", linkDetail(c))
	}
	return model.NotFound(ErrMsgNoLink)
}

// DetectTableClick reports every table found by a positional scan.
func (d *Disambiguator) DetectTableClick(doc platform.Document) model.DetectionResult {
	scan := d.scanner.Scan(doc)
	var tables []model.TableSummary
	for _, e := range scan.BySource(model.SourcePositional) {
		if e.Classification.Category != model.CategoryTable {
			continue
		}
		if s, ok := SummarizeTable(e.Element, e.PositionIndex); ok {
			tables = append(tables, s)
		}
	}
	if len(tables) == 0 {
		return model.NotFound(ErrMsgNoTables)
	}
	return model.Found(fmt.Sprintf("Found %d table(s)", len(tables)), tables)
}

// DetectPreciseTableCellClick locates the selection inside a table.
func (d *Disambiguator) DetectPreciseTableCellClick(doc platform.Document) model.DetectionResult {
	rng, ok := SelectedRange(doc)
	if !ok {
		return model.NotFound(ErrMsgNoSelection)
	}
	cell, ok := LocateCell(rng)
	if !ok {
		return model.NotFound(ErrMsgNotInCell)
	}
	return model.Found(fmt.Sprintf("Cell row %d column %d", cell.Row, cell.Column), cell)
}

// DetectBindingClick reports the recognized binding control at the cursor.
func (d *Disambiguator) DetectBindingClick(doc platform.Document) model.DetectionResult {
	if c, ok := ActiveControl(doc); ok && c.Recognized && !c.Info.IsLink() {
		return model.Found("Binding control clicked", controlDetail(c))
	}
	if _, ok := SelectedRange(doc); !ok {
		return model.NotFound(ErrMsgNoSelection)
	}
	for _, c := range SelectedControls(doc) {
		if c.Recognized && !c.Info.IsLink() {
			return model.Found("Binding control clicked", controlDetail(c))
		}
	}
	return model.NotFound(ErrMsgNoBinding)
}

// DetectElementClick runs the full cascade once.
func (d *Disambiguator) DetectElementClick(doc platform.Document) model.DetectionResult {
	state := d.Disambiguate(doc)
	if state.ActiveKind == model.ActiveUnknown {
		return model.DetectionResult{Success: false, Error: ErrMsgNoElement, Data: state}
	}
	return model.Found(fmt.Sprintf("Detected %s", state.ActiveKind), state)
}

// DetectChartClick resolves the clicked chart and any bound data.
func (d *Disambiguator) DetectChartClick(doc platform.Document) model.DetectionResult {
	scan := d.scanner.Scan(doc)
	if len(scan.Charts()) == 0 {
		return model.NotFound(ErrMsgNoCharts)
	}
	chart, ok := d.ChartClick(doc, scan)
	if !ok {
		return model.NotFound(ErrMsgNoClickTarget)
	}
	return model.Found("Chart clicked", chart)
}
