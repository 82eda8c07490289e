package model

// Source tells which access path produced a scanned element.
type Source string

const (
	SourceDocumentLevel Source = "document-level"
	SourcePositional    Source = "positional"
)

// ScanItem is the serializable part of one scan entry.
type ScanItem struct {
	ElementType    string          `yaml:"elementType" json:"elementType"`
	PositionIndex  int             `yaml:"positionIndex" json:"positionIndex"`
	Source         Source          `yaml:"source" json:"source"`
	Graphic        bool            `yaml:"graphic,omitempty" json:"graphic,omitempty"`
	UniqueID       string          `yaml:"uniqueId,omitempty" json:"uniqueId,omitempty"`
	Classification ChartTypeResult `yaml:"classification" json:"classification"`
}

// ScanStats summarizes one scan pass.
type ScanStats struct {
	DocumentLevel int   `yaml:"documentLevel" json:"documentLevel"`
	Positional    int   `yaml:"positional" json:"positional"`
	Skipped       []int `yaml:"skipped,omitempty" json:"skipped,omitempty"`
	CapReached    bool  `yaml:"capReached,omitempty" json:"capReached,omitempty"`
}
