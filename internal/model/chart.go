package model

// Category is the structural category of a document element.
type Category string

const (
	CategoryChart          Category = "chart"
	CategoryDrawing        Category = "drawing"
	CategoryShape          Category = "shape"
	CategoryImage          Category = "image"
	CategoryOLE            Category = "ole"
	CategoryGraphicFrame   Category = "graphic_frame"
	CategoryTable          Category = "table"
	CategoryParagraph      Category = "paragraph"
	CategoryContentControl Category = "content_control"
	CategoryUnknown        Category = "unknown"
)

// IsGraphic reports whether the category is one of the drawing-object family.
func (c Category) IsGraphic() bool {
	switch c {
	case CategoryChart, CategoryDrawing, CategoryShape, CategoryImage, CategoryOLE, CategoryGraphicFrame:
		return true
	}
	return false
}

// Properties are secondary attributes read opportunistically during
// classification. Zero values mean the accessor was absent.
type Properties struct {
	ClassType  string  `yaml:"classType,omitempty" json:"classType,omitempty"`
	Width      float64 `yaml:"width,omitempty" json:"width,omitempty"`
	Height     float64 `yaml:"height,omitempty" json:"height,omitempty"`
	HasText    bool    `yaml:"hasText,omitempty" json:"hasText,omitempty"`
	TextLength int     `yaml:"textLength,omitempty" json:"textLength,omitempty"`
	ShapeType  string  `yaml:"shapeType,omitempty" json:"shapeType,omitempty"`
}

// IsZero reports whether no property was read.
func (p Properties) IsZero() bool { return p == Properties{} }

// ChartTypeResult is the output of classification.
// Confidence is 0.95 or higher only for structural pattern matches and direct
// type-returning calls that did not fault.
type ChartTypeResult struct {
	Category        Category    `yaml:"category" json:"category"`
	SpecificType    string      `yaml:"specificType" json:"specificType"`
	Confidence      float64     `yaml:"confidence" json:"confidence"`
	DetectionMethod string      `yaml:"detectionMethod" json:"detectionMethod"`
	Properties      *Properties `yaml:"properties,omitempty" json:"properties,omitempty"`
}

// Unknown is the worst-case classification.
func Unknown() ChartTypeResult {
	return ChartTypeResult{
		Category:        CategoryUnknown,
		SpecificType:    "unknown",
		DetectionMethod: "none",
	}
}
