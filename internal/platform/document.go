package platform

// Document is the global document handle the sandbox hands to a function.
// Like Element, its surface is described by optional capabilities.
type Document any

// PositionalReader iterates top-level document elements by index.
// ElementAt returns (nil, nil) past the last element.
type PositionalReader interface {
	ElementAt(i int) (Element, error)
}

// DrawingLister returns the document-level "all drawing objects" collection.
type DrawingLister interface {
	AllDrawingObjects() ([]Element, error)
}

// ContentControlLister returns every content control in the document.
type ContentControlLister interface {
	AllContentControls() ([]ContentControl, error)
}

// ActiveControlReader returns the content control holding the cursor, or
// (nil, nil) when the cursor is outside every control.
type ActiveControlReader interface {
	CurrentContentControl() (ContentControl, error)
}

// SelectionReader returns the current selection range. Hosts commonly fail
// this call when the selection is on a non-text element.
type SelectionReader interface {
	SelectedRange() (Range, error)
}

// Range is a selection range. Its text is available through TextProvider.
type Range any

// CellLocator finds the table cell enclosing a range.
type CellLocator interface {
	ParentTableCell() (TableCell, error)
}

// ParagraphLocator finds the paragraph enclosing a range.
type ParagraphLocator interface {
	ParentParagraph() (Element, error)
}

// ControlInserter creates a content control at the cursor.
type ControlInserter interface {
	AddContentControl(spec ControlSpec) (ContentControl, error)
}

// BlockInserter appends a block-level object (table, shape, WordArt).
type BlockInserter interface {
	InsertBlock(b Block) error
}

// SelectionNotifier lets the runtime announce selection changes.
// The returned func unsubscribes.
type SelectionNotifier interface {
	OnSelectionChanged(fn func()) (cancel func())
}

// CloseNotifier lets the runtime announce that the document was closed.
type CloseNotifier interface {
	OnClose(fn func()) (cancel func())
}
