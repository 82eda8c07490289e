package model

import "strings"

// vocabularyEntry maps a class-tag fragment to a category.
type vocabularyEntry struct {
	Fragment   string
	Category   Category
	Confidence float64
}

// StructuralVocabulary maps host class-tag fragments to categories. Order
// matters: the first case-insensitive substring match wins.
var StructuralVocabulary = []vocabularyEntry{
	{"tablecell", CategoryTable, 0.8},
	{"table", CategoryTable, 0.9},
	{"paragraph", CategoryParagraph, 0.9},
	{"contentcontrol", CategoryContentControl, 0.9},
	{"sdt", CategoryContentControl, 0.8},
	{"drawing", CategoryDrawing, 0.7},
	{"shape", CategoryShape, 0.8},
	{"image", CategoryImage, 0.9},
	{"picture", CategoryImage, 0.8},
	{"ole", CategoryOLE, 0.8},
	{"frame", CategoryGraphicFrame, 0.7},
}

// GraphicVocabulary is the broader fragment list used by the positional scan.
// It deliberately over-matches: anything that might host a graphic counts.
var GraphicVocabulary = []string{
	"drawing",
	"chart",
	"cdrawing",
	"graphicframe",
	"shape",
	"image",
	"ole",
	"inline",
	"float",
	"anchor",
	"doccontent",
	"run",
	"graphic",
}

// IsChartTag reports whether a class tag names a chart-bearing element.
func IsChartTag(tag string) bool {
	return strings.Contains(strings.ToLower(tag), "chart")
}

// MatchCategory matches a class tag against StructuralVocabulary.
func MatchCategory(tag string) (Category, float64) {
	lower := strings.ToLower(tag)
	if lower == "" {
		return CategoryUnknown, 0
	}
	for _, e := range StructuralVocabulary {
		if strings.Contains(lower, e.Fragment) {
			return e.Category, e.Confidence
		}
	}
	return CategoryUnknown, 0
}

// IsGraphicTag reports whether a class tag matches GraphicVocabulary.
func IsGraphicTag(tag string) bool {
	lower := strings.ToLower(tag)
	if lower == "" {
		return false
	}
	for _, frag := range GraphicVocabulary {
		if strings.Contains(lower, frag) {
			return true
		}
	}
	return false
}

// ChartFamilies lists the chart families docbind recognizes and the raw
// keywords that map to each.
var ChartFamilies = []struct {
	Family   string
	Keywords []string
}{
	{"pie", []string{"pie", "doughnut"}},
	{"bar", []string{"bar", "column"}},
	{"line", []string{"line"}},
	{"area", []string{"area"}},
	{"scatter", []string{"scatter", "xy"}},
	{"bubble", []string{"bubble"}},
}

// ChartFamily maps a raw host chart type (e.g. "bar3D", "doughnutChart",
// "horizontalBar") to its family. Prefix matches win over infix matches.
func ChartFamily(raw string) (string, bool) {
	lower := strings.ToLower(strings.TrimSpace(raw))
	if lower == "" {
		return "", false
	}
	for _, match := range []func(string, string) bool{strings.HasPrefix, strings.Contains} {
		for _, f := range ChartFamilies {
			for _, kw := range f.Keywords {
				if match(lower, kw) {
					return f.Family, true
				}
			}
		}
	}
	return "", false
}
