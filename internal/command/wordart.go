package command

import (
	"context"
	"strings"

	"github.com/mj1618/docbind/internal/platform"
)

// Text transforms used by the WordArt presets.
const (
	TransformArchUp = "textArchUp"
	TransformPlain  = "textPlain"
	TransformWave   = "textWave1"
)

// DefaultWordArt is used when no preset is named.
var DefaultWordArt = platform.WordArtBlock{
	Text:        "onlyoffice",
	FontFamily:  "Comic Sans MS",
	FontSize:    30,
	Bold:        true,
	Caps:        true,
	TextColor:   platform.TextGray,
	Fill:        platform.ShapeFill,
	Stroke:      platform.TextGray,
	StrokeWidth: 1,
	Transform:   TransformArchUp,
	Width:       150,
	Height:      50,
}

// WordArtPresets are the named styles. An unknown preset name falls back to
// classic.
var WordArtPresets = map[string]platform.WordArtBlock{
	"classic": {
		Text:        "CLASSIC",
		FontFamily:  "Times New Roman",
		FontSize:    36,
		Bold:        true,
		Caps:        true,
		TextColor:   platform.Black,
		Fill:        platform.RGB{255, 215, 0},
		Stroke:      platform.Black,
		StrokeWidth: 2,
		Transform:   TransformArchUp,
		Width:       150,
		Height:      50,
	},
	"modern": {
		Text:        "MODERN",
		FontFamily:  "Arial",
		FontSize:    28,
		Bold:        true,
		TextColor:   platform.RGB{255, 255, 255},
		Fill:        platform.RGB{33, 150, 243},
		Stroke:      platform.RGB{13, 71, 161},
		StrokeWidth: 1,
		Transform:   TransformPlain,
		Width:       150,
		Height:      50,
	},
	"fun": {
		Text:        "FUN!",
		FontFamily:  "Comic Sans MS",
		FontSize:    32,
		Bold:        true,
		Caps:        true,
		TextColor:   platform.RGB{255, 255, 255},
		Fill:        platform.RGB{255, 87, 34},
		Stroke:      platform.RGB{191, 54, 12},
		StrokeWidth: 2,
		Transform:   TransformWave,
		Width:       150,
		Height:      50,
	},
}

// resolveWordArt picks the base style and applies explicit overrides.
func resolveWordArt(p map[string]any) (platform.WordArtBlock, string) {
	base, name := DefaultWordArt, ""
	if preset := strings.ToLower(stringParam(p, "preset", "")); preset != "" {
		name = preset
		if _, ok := WordArtPresets[preset]; !ok {
			name = "classic"
		}
		base = WordArtPresets[name]
	}

	base.Text = stringParam(p, "text", base.Text)
	base.FontFamily = stringParam(p, "fontFamily", base.FontFamily)
	base.FontSize = floatParam(p, "fontSize", base.FontSize)
	base.Bold = boolParam(p, "bold", base.Bold)
	base.Caps = boolParam(p, "caps", base.Caps)
	base.TextColor = colorParam(p, "textColor", base.TextColor)
	base.Fill = colorParam(p, "fillColor", base.Fill)
	base.Stroke = colorParam(p, "strokeColor", base.Stroke)
	base.StrokeWidth = floatParam(p, "strokeWidth", base.StrokeWidth)
	base.Transform = stringParam(p, "transform", base.Transform)
	base.Width = floatParam(p, "width", base.Width)
	base.Height = floatParam(p, "height", base.Height)
	base.Rotation = floatParam(p, "rotation", base.Rotation)
	return base, name
}

// insertWordArt inserts decorative text from a preset plus overrides.
func (s *Service) insertWordArt(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "text")
	wa, preset := resolveWordArt(p)
	wa.Text = s.sanitizer.Text(wa.Text)
	if wa.Text == "" {
		wa.Text = DefaultWordArt.Text
	}
	return s.insertBlock(ctx, p, wa, BlockResult{Kind: "wordart", Preset: preset, ShapeType: wa.Transform})
}
