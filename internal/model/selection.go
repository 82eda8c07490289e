package model

import "time"

// ActiveKind is what the cursor or selection currently touches.
type ActiveKind string

const (
	ActiveContentControl ActiveKind = "content-control"
	ActiveLink           ActiveKind = "link"
	ActiveTableCell      ActiveKind = "table-cell"
	ActiveChart          ActiveKind = "chart"
	ActiveShape          ActiveKind = "shape"
	ActiveText           ActiveKind = "text"
	ActiveDocument       ActiveKind = "document"
	ActiveUnknown        ActiveKind = "unknown"
)

// SelectionState is produced fresh on every selection change.
type SelectionState struct {
	HasRange   bool       `yaml:"hasRange" json:"hasRange"`
	ActiveKind ActiveKind `yaml:"activeKind" json:"activeKind"`
	Detail     any        `yaml:"detail,omitempty" json:"detail,omitempty"`
	DetectedAt time.Time  `yaml:"detectedAt" json:"detectedAt"`
}

// ControlDetail describes an active content control.
type ControlDetail struct {
	Tag         string `yaml:"tag" json:"tag"`
	Alias       string `yaml:"alias,omitempty" json:"alias,omitempty"`
	InternalID  string `yaml:"internalId,omitempty" json:"internalId,omitempty"`
	BindingType string `yaml:"bindingType" json:"bindingType"`
	BindingData any    `yaml:"bindingData,omitempty" json:"bindingData,omitempty"`
}

// LinkDetail describes a clicked link control.
type LinkDetail struct {
	Tag      string `yaml:"tag" json:"tag"`
	Alias    string `yaml:"alias,omitempty" json:"alias,omitempty"`
	LinkData any    `yaml:"linkData,omitempty" json:"linkData,omitempty"`
}

// CellDetail locates the selection inside a table. Row and Column are
// 1-based; the raw values are the host's 0-based indexes.
type CellDetail struct {
	Row          int    `yaml:"row" json:"row"`
	Column       int    `yaml:"column" json:"column"`
	RawRow       int    `yaml:"rawRow" json:"rawRow"`
	RawColumn    int    `yaml:"rawColumn" json:"rawColumn"`
	CellContent  string `yaml:"cellContent" json:"cellContent"`
	TotalRows    int    `yaml:"totalRows,omitempty" json:"totalRows,omitempty"`
	TotalColumns int    `yaml:"totalColumns,omitempty" json:"totalColumns,omitempty"`
}

// ElementDetail describes a generic scanned element.
type ElementDetail struct {
	PositionIndex  int             `yaml:"positionIndex" json:"positionIndex"`
	Source         Source          `yaml:"source" json:"source"`
	ElementType    string          `yaml:"elementType" json:"elementType"`
	Classification ChartTypeResult `yaml:"classification" json:"classification"`
}

// ChartDetail describes a clicked chart and any recovered binding.
type ChartDetail struct {
	ChartIndex     int             `yaml:"chartIndex" json:"chartIndex"`
	Source         Source          `yaml:"source" json:"source"`
	ElementType    string          `yaml:"elementType" json:"elementType"`
	UniqueID       string          `yaml:"uniqueId" json:"uniqueId"`
	TotalCharts    int             `yaml:"totalCharts" json:"totalCharts"`
	Classification ChartTypeResult `yaml:"classification" json:"classification"`
	Binding        *BindingRecord  `yaml:"binding,omitempty" json:"binding,omitempty"`
}

// TextDetail carries the selected text.
type TextDetail struct {
	Text string `yaml:"text" json:"text"`
}

// TableSummary describes one table found by a document scan.
type TableSummary struct {
	PositionIndex int        `yaml:"positionIndex" json:"positionIndex"`
	Rows          int        `yaml:"rows" json:"rows"`
	Columns       int        `yaml:"columns" json:"columns"`
	Preview       [][]string `yaml:"preview,omitempty" json:"preview,omitempty"`
}
