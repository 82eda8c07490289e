package model

import "time"

// StorageLocation records which channel holds a binding.
type StorageLocation string

const (
	StorageCustomProperty StorageLocation = "CUSTOM_PROPERTY"
	StorageAltProperty    StorageLocation = "ALT_PROPERTY"
	StorageMemoryMap      StorageLocation = "MEMORY_MAP"
	StorageHiddenMarker   StorageLocation = "HIDDEN_MARKER"
)

// BindingRecord associates an opaque payload with a document element.
// SourcePositionIndex is the load-bearing recovery key: no element handle
// survives between calls.
type BindingRecord struct {
	Payload             any             `yaml:"payload" json:"payload"`
	BindingID           string          `yaml:"bindingId" json:"bindingId"`
	BoundAt             time.Time       `yaml:"boundAt" json:"boundAt"`
	SourcePositionIndex int             `yaml:"sourcePositionIndex" json:"sourcePositionIndex"`
	Source              Source          `yaml:"source,omitempty" json:"source,omitempty"`
	StorageLocation     StorageLocation `yaml:"storageLocation" json:"storageLocation"`
	StorageKey          string          `yaml:"storageKey,omitempty" json:"storageKey,omitempty"`
	ElementType         string          `yaml:"elementType,omitempty" json:"elementType,omitempty"`
	UniqueID            string          `yaml:"uniqueId,omitempty" json:"uniqueId,omitempty"`
	MarkerCreated       bool            `yaml:"markerCreated,omitempty" json:"markerCreated,omitempty"`
	Errors              []string        `yaml:"errors,omitempty" json:"errors,omitempty"`
}

// BindingPreview is one row of the binding summary.
type BindingPreview struct {
	ChartIndex      int             `yaml:"chartIndex" json:"chartIndex"`
	Source          Source          `yaml:"source" json:"source"`
	ChartType       string          `yaml:"chartType" json:"chartType"`
	HasBindingData  bool            `yaml:"hasBindingData" json:"hasBindingData"`
	StorageLocation StorageLocation `yaml:"storageLocation,omitempty" json:"storageLocation,omitempty"`
	BindingPreview  string          `yaml:"bindingPreview,omitempty" json:"bindingPreview,omitempty"`
}

// BindingSummary reports every chart candidate and whether data is bound.
type BindingSummary struct {
	TotalCharts    int              `yaml:"totalCharts" json:"totalCharts"`
	ChartsWithData int              `yaml:"chartsWithData" json:"chartsWithData"`
	StoredBindings int              `yaml:"storedBindings" json:"storedBindings"`
	BindingSummary []BindingPreview `yaml:"bindingSummary" json:"bindingSummary"`
}
