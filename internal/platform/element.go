package platform

// Element is an opaque handle into the host document's object graph.
// Handles carry no stable identity: two handles obtained by separate scans may
// point at the same underlying object and there is no way to tell. Everything
// beyond the handle itself is discovered by asserting the optional capability
// interfaces below.
type Element any

// ClassTyper exposes the host's class/type tag (e.g. "CTable", "CChart").
type ClassTyper interface {
	ClassType() (string, error)
}

// DimensionProvider exposes the element's extent in host units.
type DimensionProvider interface {
	Width() (float64, error)
	Height() (float64, error)
}

// TextProvider exposes the plain text content of an element or range.
type TextProvider interface {
	Text() (string, error)
}

// Chart is the underlying chart object behind a chart-bearing drawing.
type Chart interface {
	ChartType() (string, error)
}

// ChartHolder gives direct access to an element's chart object.
type ChartHolder interface {
	Chart() (Chart, error)
}

// LegacyChartHolder exposes the host's "previous chart" accessor. It is known
// to fault inside the host SDK and must only be called through the guarded
// path in the chart identifier.
type LegacyChartHolder interface {
	PrevChart() (Chart, error)
}

// MarkupExporter serializes the element to its markup representation.
type MarkupExporter interface {
	Markup() (string, error)
}

// ShapeTyper exposes the preset geometry of a shape.
type ShapeTyper interface {
	ShapeType() (string, error)
}

// Invoker is the dynamic method surface some hosts expose on their objects.
// MethodNames lists callable members; Call invokes one by name. Call returns
// ErrNotSupported when the member does not exist.
type Invoker interface {
	MethodNames() []string
	Call(name string, args ...any) (any, error)
}

// CustomPropertyStore is native per-element key/value storage.
type CustomPropertyStore interface {
	SetCustomProperty(key, value string) error
	CustomProperty(key string) (string, error)
}

// IDProvider exposes the host's internal id for an element.
type IDProvider interface {
	InternalID() (string, error)
}

// Hasher exposes a host-computed hash for an element.
type Hasher interface {
	Hash() (string, error)
}

// GUIDProvider exposes a GUID for an element.
type GUIDProvider interface {
	GUID() (string, error)
}

// CreationTimer exposes when the host created the element (unix millis).
type CreationTimer interface {
	CreatedAt() (int64, error)
}

// ContentControl is a tagged structured region in the document.
type ContentControl interface {
	Tag() (string, error)
	Alias() (string, error)
}

// ControlIdentifier exposes a content control's host-assigned id.
type ControlIdentifier interface {
	InternalID() (string, error)
}

// TableCell is a cell reached from a selection range.
type TableCell interface {
	Index() (int, error)
	ParentRow() (TableRow, error)
}

// TableRow is a row inside a table.
type TableRow interface {
	Index() (int, error)
	CellsCount() (int, error)
	ParentTable() (Table, error)
}

// Table is the table capability of an element.
type Table interface {
	RowsCount() (int, error)
	Row(i int) (TableRow, error)
}

// RowCells gives positional access to the cells of a row.
type RowCells interface {
	Cell(i int) (TableCell, error)
}

// Selectable reports whether an object is part of the current selection.
type Selectable interface {
	Selected() (bool, error)
}
