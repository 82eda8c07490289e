package detect

import (
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
)

// previewRows bounds how many rows a table summary reads.
const previewRows = 5

// SelectedRange reads the current selection. Hosts fail this call when the
// selection is on a drawing; that failure is expected and reported as false.
func SelectedRange(doc platform.Document) (platform.Range, bool) {
	reader, ok := doc.(platform.SelectionReader)
	if !ok {
		return nil, false
	}
	r := probe.Call(reader.SelectedRange)
	if !r.OK() || r.Value == nil {
		return nil, false
	}
	return r.Value, true
}

// RangeText returns the range's text, or "".
func RangeText(rng platform.Range) string {
	tp, ok := rng.(platform.TextProvider)
	if !ok {
		return ""
	}
	if r := probe.Call(tp.Text); r.OK() {
		return r.Value
	}
	return ""
}

// LocateCell walks range -> cell -> row -> table. Indexes are reported both
// 1-based and raw.
func LocateCell(rng platform.Range) (model.CellDetail, bool) {
	locator, ok := rng.(platform.CellLocator)
	if !ok {
		return model.CellDetail{}, false
	}
	cell := probe.Call(locator.ParentTableCell)
	if !cell.OK() || cell.Value == nil {
		return model.CellDetail{}, false
	}
	col := probe.Call(cell.Value.Index)
	row := probe.Call(cell.Value.ParentRow)
	if !col.OK() || !row.OK() || row.Value == nil {
		return model.CellDetail{}, false
	}
	rowIdx := probe.Call(row.Value.Index)
	if !rowIdx.OK() {
		return model.CellDetail{}, false
	}
	d := model.CellDetail{
		Row:       rowIdx.Value + 1,
		Column:    col.Value + 1,
		RawRow:    rowIdx.Value,
		RawColumn: col.Value,
	}
	if tp, ok := cell.Value.(platform.TextProvider); ok {
		if t := probe.Call(tp.Text); t.OK() {
			d.CellContent = t.Value
		}
	}
	if n := probe.Call(row.Value.CellsCount); n.OK() {
		d.TotalColumns = n.Value
	}
	if table := probe.Call(row.Value.ParentTable); table.OK() && table.Value != nil {
		if n := probe.Call(table.Value.RowsCount); n.OK() {
			d.TotalRows = n.Value
		}
	}
	return d, true
}

// SummarizeTable reads a table element's size and the text of its first rows.
func SummarizeTable(el platform.Element, position int) (model.TableSummary, bool) {
	table, ok := el.(platform.Table)
	if !ok {
		return model.TableSummary{}, false
	}
	rows := probe.Call(table.RowsCount)
	if !rows.OK() {
		return model.TableSummary{}, false
	}
	s := model.TableSummary{PositionIndex: position, Rows: rows.Value}
	for i := 0; i < rows.Value && i < previewRows; i++ {
		row := probe.Call(func() (platform.TableRow, error) { return table.Row(i) })
		if !row.OK() || row.Value == nil {
			break
		}
		n := probe.Call(row.Value.CellsCount)
		if !n.OK() {
			break
		}
		if n.Value > s.Columns {
			s.Columns = n.Value
		}
		s.Preview = append(s.Preview, rowText(row.Value, n.Value))
	}
	return s, true
}

func rowText(row platform.TableRow, cells int) []string {
	rc, ok := row.(platform.RowCells)
	if !ok {
		return nil
	}
	out := make([]string, 0, cells)
	for j := 0; j < cells; j++ {
		text := ""
		cell := probe.Call(func() (platform.TableCell, error) { return rc.Cell(j) })
		if cell.OK() && cell.Value != nil {
			if tp, ok := cell.Value.(platform.TextProvider); ok {
				if t := probe.Call(tp.Text); t.OK() {
					text = t.Value
				}
			}
		}
		out = append(out, text)
	}
	return out
}
