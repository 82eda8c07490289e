package memdoc

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/mj1618/docbind/internal/platform"
)

// Selection kinds.
const (
	SelectNone      = "none"
	SelectText      = "text"
	SelectTableCell = "table-cell"
	SelectDrawing   = "drawing"
)

// Selection describes where the cursor is.
type Selection struct {
	Kind string `yaml:"kind"`
	Text string `yaml:"text,omitempty"`
	// Element is the body index of the table for table-cell selections.
	Element int `yaml:"element,omitempty"`
	Row     int `yaml:"row,omitempty"`
	Column  int `yaml:"column,omitempty"`
	// Control is the index of the content control holding the cursor.
	Control *int `yaml:"control,omitempty"`
}

// Control is a content control in the document.
type Control struct {
	Tag         string `yaml:"tag"`
	Alias       string `yaml:"alias,omitempty"`
	ID          string `yaml:"id,omitempty"`
	Text        string `yaml:"text,omitempty"`
	Placeholder string `yaml:"placeholder,omitempty"`
	Hyperlink   string `yaml:"hyperlink,omitempty"`
	Hidden      bool   `yaml:"hidden,omitempty"`
	Selected    bool   `yaml:"selected,omitempty"`
	// Faults maps an accessor name (Tag, Alias, Selected) to an error message.
	Faults map[string]string `yaml:"faults,omitempty"`

	style *platform.TextStyle
}

// Document is an in-memory document. All exported fields may be set before
// the document is handed to a Sandbox; afterwards use the methods.
type Document struct {
	mu sync.Mutex

	body      []*Node
	drawings  []*Node
	controls  []*Control
	selection Selection
	// unbounded makes ElementAt never report the end of the document.
	unbounded bool
	// faultyIndexes make ElementAt fail at those positions.
	faultyIndexes []int
	// faults maps a document accessor name to an error message.
	faults map[string]string

	selectionListeners map[int]func()
	closeListeners     map[int]func()
	nextListener       int
	closed             bool
}

// New returns an empty document with the cursor nowhere.
func New() *Document {
	return &Document{
		selection:          Selection{Kind: SelectNone},
		selectionListeners: make(map[int]func()),
		closeListeners:     make(map[int]func()),
	}
}

// Append adds body elements. Nodes flagged Drawing also join the drawings
// collection.
func (d *Document) Append(nodes ...*Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range nodes {
		d.body = append(d.body, n)
		if n.Drawing {
			d.drawings = append(d.drawings, n)
		}
	}
}

// AddFloating adds drawings that are not part of the positional body.
func (d *Document) AddFloating(nodes ...*Node) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drawings = append(d.drawings, nodes...)
}

// AddControls adds content controls.
func (d *Document) AddControls(controls ...*Control) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.controls = append(d.controls, controls...)
}

// Controls returns a snapshot of the content controls.
func (d *Document) Controls() []Control {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Control, len(d.controls))
	for i, c := range d.controls {
		out[i] = *c
	}
	return out
}

// Body returns a snapshot of the body nodes.
func (d *Document) Body() []Node {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Node, len(d.body))
	for i, n := range d.body {
		out[i] = *n
	}
	return out
}

// SetUnbounded makes ElementAt return filler paragraphs forever.
func (d *Document) SetUnbounded(v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unbounded = v
}

// FailAt makes ElementAt fail at the given positions.
func (d *Document) FailAt(indexes ...int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.faultyIndexes = append(d.faultyIndexes, indexes...)
}

// SetFault makes a document accessor fail with msg.
func (d *Document) SetFault(accessor, msg string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.faults == nil {
		d.faults = make(map[string]string)
	}
	d.faults[accessor] = msg
}

func (d *Document) fault(name string) error {
	if msg, ok := d.faults[name]; ok {
		return errors.New(msg)
	}
	return nil
}

// Select moves the cursor and notifies selection listeners.
func (d *Document) Select(sel Selection) {
	d.mu.Lock()
	d.selection = sel
	listeners := make([]func(), 0, len(d.selectionListeners))
	for _, fn := range d.selectionListeners {
		listeners = append(listeners, fn)
	}
	d.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// OnSelectionChanged implements platform.SelectionNotifier.
func (d *Document) OnSelectionChanged(fn func()) func() {
	return d.listen(d.selectionListeners, fn)
}

// OnClose implements platform.CloseNotifier.
func (d *Document) OnClose(fn func()) func() {
	return d.listen(d.closeListeners, fn)
}

func (d *Document) listen(set map[int]func(), fn func()) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextListener
	d.nextListener++
	set[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(set, id)
	}
}

// Close notifies close listeners once.
func (d *Document) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	listeners := make([]func(), 0, len(d.closeListeners))
	for _, fn := range d.closeListeners {
		listeners = append(listeners, fn)
	}
	d.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// ElementAt implements platform.PositionalReader.
func (d *Document) ElementAt(i int) (platform.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if slices.Contains(d.faultyIndexes, i) {
		return nil, fmt.Errorf("element %d: read failed", i)
	}
	if i >= 0 && i < len(d.body) {
		return d.handle(d.body[i]), nil
	}
	if d.unbounded && i >= 0 {
		return d.handle(&Node{Class: "CDocumentParagraph"}), nil
	}
	return nil, nil
}

// AllDrawingObjects implements platform.DrawingLister.
func (d *Document) AllDrawingObjects() ([]platform.Element, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault("AllDrawingObjects"); err != nil {
		return nil, err
	}
	out := make([]platform.Element, len(d.drawings))
	for i, n := range d.drawings {
		out[i] = d.handle(n)
	}
	return out, nil
}

// AllContentControls implements platform.ContentControlLister.
func (d *Document) AllContentControls() ([]platform.ContentControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault("AllContentControls"); err != nil {
		return nil, err
	}
	out := make([]platform.ContentControl, len(d.controls))
	for i, c := range d.controls {
		out[i] = &control{doc: d, c: c}
	}
	return out, nil
}

// CurrentContentControl implements platform.ActiveControlReader.
func (d *Document) CurrentContentControl() (platform.ContentControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault("CurrentContentControl"); err != nil {
		return nil, err
	}
	idx := d.selection.Control
	if idx == nil || *idx < 0 || *idx >= len(d.controls) {
		return nil, nil
	}
	return &control{doc: d, c: d.controls[*idx]}, nil
}

// SelectedRange implements platform.SelectionReader. Drawing selections fail
// the way hosts do.
func (d *Document) SelectedRange() (platform.Range, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault("SelectedRange"); err != nil {
		return nil, err
	}
	switch d.selection.Kind {
	case SelectText:
		para := d.handle(&Node{Class: "CDocumentParagraph", Text: d.selection.Text})
		return &textRange{text: d.selection.Text, para: para}, nil
	case SelectTableCell:
		sel := d.selection
		if sel.Element < 0 || sel.Element >= len(d.body) {
			return nil, fmt.Errorf("selected table %d does not exist", sel.Element)
		}
		n := d.body[sel.Element]
		if sel.Row < 0 || sel.Row >= len(n.Rows) || sel.Column < 0 || sel.Column >= len(n.Rows[sel.Row]) {
			return nil, fmt.Errorf("selected cell %d,%d does not exist", sel.Row, sel.Column)
		}
		table := d.handle(n)
		r := &row{table: table, index: sel.Row}
		return &textRange{text: n.Rows[sel.Row][sel.Column], cell: &cell{row: r, index: sel.Column}}, nil
	case SelectDrawing:
		return nil, platform.ErrNonTextSelection
	default:
		return nil, nil
	}
}

// AddContentControl implements platform.ControlInserter.
func (d *Document) AddContentControl(spec platform.ControlSpec) (platform.ContentControl, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault("AddContentControl"); err != nil {
		return nil, err
	}
	c := &Control{
		Tag:         spec.Tag,
		Alias:       spec.Alias,
		Text:        spec.Text,
		Placeholder: spec.Placeholder,
		Hyperlink:   spec.Hyperlink,
		Hidden:      spec.Hidden,
		ID:          fmt.Sprintf("sdt-%d", len(d.controls)+1),
		style:       spec.Style,
	}
	d.controls = append(d.controls, c)
	return &control{doc: d, c: c}, nil
}

// InsertBlock implements platform.BlockInserter.
func (d *Document) InsertBlock(b platform.Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.fault("InsertBlock"); err != nil {
		return err
	}
	switch blk := b.(type) {
	case platform.TableBlock:
		if blk.Title != "" {
			d.body = append(d.body, &Node{Class: "CDocumentParagraph", Text: blk.Title})
		}
		d.body = append(d.body, tableNode(blk))
		if blk.Caption != "" {
			d.body = append(d.body, &Node{Class: "CDocumentParagraph", Text: blk.Caption})
		}
		if blk.Tag != "" {
			d.controls = append(d.controls, &Control{
				Tag:   blk.Tag,
				Alias: blk.Title,
				ID:    fmt.Sprintf("sdt-%d", len(d.controls)+1),
			})
		}
	case platform.ShapeBlock:
		n := &Node{
			Class:     "CShape",
			ShapeType: blk.ShapeType,
			Width:     blk.Width,
			Height:    blk.Height,
			Text:      blk.Text,
			Drawing:   true,
		}
		d.drawings = append(d.drawings, n)
		if blk.Variant != platform.ShapeFloating {
			d.body = append(d.body, &Node{Class: "CDocumentParagraph", Text: blk.Text})
		}
	case platform.WordArtBlock:
		n := &Node{
			Class:     "CShape",
			ShapeType: "textArt:" + blk.Transform,
			Width:     blk.Width,
			Height:    blk.Height,
			Text:      blk.Text,
			Drawing:   true,
		}
		d.drawings = append(d.drawings, n)
	default:
		return fmt.Errorf("insert %s: %w", b.BlockKind(), platform.ErrNotSupported)
	}
	return nil
}

func tableNode(b platform.TableBlock) *Node {
	rows := make([][]string, b.Rows)
	for i := range rows {
		rows[i] = make([]string, b.Columns)
	}
	start := 0
	if len(b.Headers) > 0 && b.Rows > 0 {
		copy(rows[0], b.Headers)
		start = 1
	}
	for i, data := range b.Data {
		if start+i >= b.Rows {
			break
		}
		copy(rows[start+i], data)
	}
	return &Node{Class: "CTable", Rows: rows, Width: b.Width}
}

type textRange struct {
	text string
	cell *cell
	para *element
}

func (r *textRange) Text() (string, error) { return r.text, nil }

func (r *textRange) ParentParagraph() (platform.Element, error) {
	if r.para == nil {
		return nil, nil
	}
	return r.para, nil
}

func (r *textRange) ParentTableCell() (platform.TableCell, error) {
	if r.cell == nil {
		return nil, nil
	}
	return r.cell, nil
}

type control struct {
	doc *Document
	c   *Control
}

func (c *control) fault(name string) error {
	if msg, ok := c.c.Faults[name]; ok {
		return errors.New(msg)
	}
	return nil
}

func (c *control) Tag() (string, error) {
	if err := c.fault("Tag"); err != nil {
		return "", err
	}
	return c.c.Tag, nil
}

func (c *control) Alias() (string, error) {
	if err := c.fault("Alias"); err != nil {
		return "", err
	}
	return c.c.Alias, nil
}

func (c *control) InternalID() (string, error) { return c.c.ID, nil }

func (c *control) Selected() (bool, error) {
	if err := c.fault("Selected"); err != nil {
		return false, err
	}
	return c.c.Selected, nil
}
