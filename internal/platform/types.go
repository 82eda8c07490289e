package platform

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// RGB is a colour in the host's 0-255 component form.
type RGB [3]uint8

// Default colours used by the insertion commands.
var (
	LinkBlue  = RGB{25, 118, 210}
	ShapeFill = RGB{255, 111, 61}
	Black     = RGB{0, 0, 0}
	TextGray  = RGB{51, 51, 51}
)

// ParseColor converts a host-supplied colour to RGB. It accepts "#rrggbb",
// "rrggbb", CSS colour names and [r, g, b] arrays. Anything else yields def.
func ParseColor(v any, def RGB) RGB {
	switch c := v.(type) {
	case RGB:
		return c
	case string:
		if rgb, err := parseColorString(c); err == nil {
			return rgb
		}
	case []int:
		if len(c) == 3 {
			return RGB{clamp(float64(c[0])), clamp(float64(c[1])), clamp(float64(c[2]))}
		}
	case []float64:
		if len(c) == 3 {
			return RGB{clamp(c[0]), clamp(c[1]), clamp(c[2])}
		}
	case []any:
		if len(c) != 3 {
			return def
		}
		var out RGB
		for i, part := range c {
			f, ok := toFloat(part)
			if !ok {
				return def
			}
			out[i] = clamp(f)
		}
		return out
	}
	return def
}

func parseColorString(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		if n, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return RGB{uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
		}
	}
	if named, ok := colornames.Map[strings.ToLower(s)]; ok {
		return RGB{named.R, named.G, named.B}, nil
	}
	return RGB{}, fmt.Errorf("unrecognized colour: %q", s)
}

// Hex renders the colour as "#RRGGBB".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c[0], c[1], c[2])
}

func clamp(f float64) uint8 {
	switch {
	case f < 0:
		return 0
	case f > 255:
		return 255
	default:
		return uint8(f)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// TextStyle describes run formatting for inserted text.
type TextStyle struct {
	Color     RGB
	Bold      bool
	Underline bool
	FontSize  float64
}

// ControlSpec describes a content control to create at the cursor.
type ControlSpec struct {
	Tag         string
	Alias       string
	Placeholder string
	Text        string
	Hyperlink   string
	Style       *TextStyle
	// Hidden controls carry data only and are not shown to the user.
	Hidden bool
}

// Block is a block-level object inserted by the insertion commands.
type Block interface {
	BlockKind() string
}

// TableBlock is a table with optional header row and data.
type TableBlock struct {
	Rows      int
	Columns   int
	WidthType string
	Width     float64
	Headers   []string
	Data      [][]string
	Title     string
	Caption   string
	Tag       string
}

func (TableBlock) BlockKind() string { return "table" }

// Shape placement variants.
const (
	ShapeInParagraph = "paragraph"
	ShapeInline      = "inline"
	ShapeFloating    = "floating"
)

// ShapeBlock is a preset-geometry shape.
type ShapeBlock struct {
	Variant     string
	ShapeType   string
	Width       float64
	Height      float64
	Fill        RGB
	Stroke      RGB
	StrokeWidth float64
	Text        string
}

func (ShapeBlock) BlockKind() string { return "shape" }

// WordArtBlock is styled decorative text.
type WordArtBlock struct {
	Text        string
	FontFamily  string
	FontSize    float64
	Bold        bool
	Caps        bool
	TextColor   RGB
	Fill        RGB
	Stroke      RGB
	StrokeWidth float64
	Transform   string
	Width       float64
	Height      float64
	Rotation    float64
}

func (WordArtBlock) BlockKind() string { return "wordart" }
