package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
)

// Insertion defaults.
const (
	DefaultFieldKey  = "customer_name"
	DefaultLinkText  = "Click here"
	DefaultRows      = 3
	DefaultColumns   = 3
	DefaultTableName = "Data table"
	DefaultShapeType = "rect"

	// MaxTableSize bounds table rows and columns.
	MaxTableSize = 1000
)

// ErrEmptyTable is returned when a dynamic table has neither headers nor data.
var ErrEmptyTable = errors.New("table has no headers or data")

// ControlResult describes a content control created by a command.
type ControlResult struct {
	ControlID string `json:"controlId,omitempty" yaml:"controlId,omitempty"`
	Tag       string `json:"tag" yaml:"tag"`
	Alias     string `json:"alias,omitempty" yaml:"alias,omitempty"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty"`
	URL       string `json:"url,omitempty" yaml:"url,omitempty"`
}

// BlockResult describes a block inserted by a command.
type BlockResult struct {
	Kind      string `json:"kind" yaml:"kind"`
	Rows      int    `json:"rows,omitempty" yaml:"rows,omitempty"`
	Columns   int    `json:"columns,omitempty" yaml:"columns,omitempty"`
	Variant   string `json:"variant,omitempty" yaml:"variant,omitempty"`
	ShapeType string `json:"shapeType,omitempty" yaml:"shapeType,omitempty"`
	Preset    string `json:"preset,omitempty" yaml:"preset,omitempty"`
	Tag       string `json:"tag,omitempty" yaml:"tag,omitempty"`
}

func (s *Service) addControl(ctx context.Context, p map[string]any, spec platform.ControlSpec) (any, error) {
	return s.run(ctx, p, func(doc platform.Document, _ *platform.Scope) (any, error) {
		ins, err := controlInserter(doc)
		if err != nil {
			return nil, err
		}
		cc, err := ins.AddContentControl(spec)
		if err != nil {
			return nil, fmt.Errorf("failed to add content control: %w", err)
		}
		return ControlResult{
			ControlID: controlID(cc),
			Tag:       spec.Tag,
			Alias:     spec.Alias,
			Text:      spec.Text,
			URL:       spec.Hyperlink,
		}, nil
	})
}

func (s *Service) insertBlock(ctx context.Context, p map[string]any, b platform.Block, result BlockResult) (any, error) {
	return s.run(ctx, p, func(doc platform.Document, _ *platform.Scope) (any, error) {
		ins, err := blockInserter(doc)
		if err != nil {
			return nil, err
		}
		if err := ins.InsertBlock(b); err != nil {
			return nil, fmt.Errorf("failed to insert %s: %w", b.BlockKind(), err)
		}
		return result, nil
	})
}

// insertText places a field placeholder control: tag bind:<key>, text {{key}}.
func (s *Service) insertText(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "text")
	key := s.sanitizer.Text(stringParam(p, "text", ""))
	if key == "" {
		key = DefaultFieldKey
	}
	alias := s.sanitizer.Text(stringParam(p, "title", key))
	return s.addControl(ctx, p, platform.ControlSpec{
		Tag:         model.TagPrefixField + key,
		Alias:       alias,
		Placeholder: "{{" + key + "}}",
	})
}

// insertLink places a clickable control carrying the host's JSON in its tag.
// Without a url the control is still clickable but has no hyperlink.
func (s *Service) insertLink(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "text")
	text := s.sanitizer.Text(stringParam(p, "text", DefaultLinkText))
	if text == "" {
		text = DefaultLinkText
	}
	target, err := s.sanitizer.URL(stringParam(p, "url", ""))
	if err != nil {
		return nil, err
	}

	style := mapParam(p, "style")
	if style == nil {
		style = map[string]any{}
	}
	textStyle := &platform.TextStyle{
		Color:     colorParam(style, "color", platform.LinkBlue),
		Bold:      boolParam(style, "bold", true),
		Underline: boolParam(style, "underline", true),
	}

	var payload string
	if v, ok := p["json"]; ok && v != nil && v != "" {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode link data: %w", err)
		}
		payload = string(b)
	}

	alias := "Clickable link"
	if target != "" {
		alias = "Hyperlink: " + target
	}
	return s.addControl(ctx, p, platform.ControlSpec{
		Tag:       model.TagPrefixLink + payload,
		Alias:     alias,
		Text:      text,
		Hyperlink: target,
		Style:     textStyle,
	})
}

// insertTable inserts a plain table. Rows and columns grow to fit headers
// and data.
func (s *Service) insertTable(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "title")
	headers := s.sanitizer.Strings(stringsParam(p, "headers"))
	rows := s.sanitizer.Rows(rowsParam(p, "data"))

	tb := platform.TableBlock{
		Rows:      intParam(p, "rows", DefaultRows),
		Columns:   intParam(p, "columns", DefaultColumns),
		WidthType: stringParam(p, "widthType", "percent"),
		Width:     floatParam(p, "width", 100),
		Headers:   headers,
		Data:      rows,
		Title:     s.sanitizer.Text(stringParam(p, "title", "")),
	}
	if tb.Rows <= 0 || tb.Columns <= 0 {
		return nil, fmt.Errorf("invalid table size %dx%d", tb.Rows, tb.Columns)
	}
	if err := fitTable(&tb); err != nil {
		return nil, err
	}
	return s.insertBlock(ctx, p, tb, BlockResult{Kind: "table", Rows: tb.Rows, Columns: tb.Columns})
}

// insertDynamicTable sizes the table from its data. Metadata, when present,
// is carried in a table-binding tag.
func (s *Service) insertDynamicTable(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "title")
	headers := s.sanitizer.Strings(stringsParam(p, "headers"))
	rows := s.sanitizer.Rows(rowsParam(p, "data"))
	if len(headers) == 0 && len(rows) == 0 {
		return nil, ErrEmptyTable
	}

	tb := platform.TableBlock{
		WidthType: "percent",
		Width:     100,
		Headers:   headers,
		Data:      rows,
		Title:     s.sanitizer.Text(stringParam(p, "title", DefaultTableName)),
	}
	if tb.Title == "" {
		tb.Title = DefaultTableName
	}
	if err := fitTable(&tb); err != nil {
		return nil, err
	}

	if meta := mapParam(p, "metadata"); meta != nil {
		tag, err := model.FormatTag(model.TagPrefixTableBinding, meta)
		if err != nil {
			return nil, fmt.Errorf("failed to encode table metadata: %w", err)
		}
		tb.Tag = tag
	}
	return s.insertBlock(ctx, p, tb, BlockResult{Kind: "table", Rows: tb.Rows, Columns: tb.Columns, Tag: tb.Tag})
}

// fitTable grows the table so every header and data row has a place. The
// grown size may not exceed MaxTableSize in either direction.
func fitTable(tb *platform.TableBlock) error {
	need := len(tb.Data)
	if len(tb.Headers) > 0 {
		need++
	}
	tb.Rows = max(tb.Rows, need)
	tb.Columns = max(tb.Columns, len(tb.Headers))
	for _, row := range tb.Data {
		tb.Columns = max(tb.Columns, len(row))
	}
	if tb.Rows > MaxTableSize || tb.Columns > MaxTableSize {
		return fmt.Errorf("table size %dx%d exceeds %d", tb.Rows, tb.Columns, MaxTableSize)
	}
	return nil
}

var shapeVariants = map[string]bool{
	platform.ShapeInParagraph: true,
	platform.ShapeInline:      true,
	platform.ShapeFloating:    true,
}

// insertShape inserts a preset shape in one of the placement variants.
func (s *Service) insertShape(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "shapeType")
	variant := stringParam(p, "variant", platform.ShapeInParagraph)
	if !shapeVariants[variant] {
		return nil, fmt.Errorf("unknown shape variant %q", variant)
	}
	sb := platform.ShapeBlock{
		Variant:     variant,
		ShapeType:   stringParam(p, "shapeType", DefaultShapeType),
		Width:       floatParam(p, "width", 100),
		Height:      floatParam(p, "height", 50),
		Fill:        colorParam(p, "fill", platform.ShapeFill),
		Stroke:      colorParam(p, "stroke", platform.Black),
		StrokeWidth: floatParam(p, "strokeWidth", 0),
		Text:        s.sanitizer.Text(stringParam(p, "text", "")),
	}
	if sb.Width <= 0 || sb.Height <= 0 {
		return nil, fmt.Errorf("invalid shape size %gx%g", sb.Width, sb.Height)
	}
	return s.insertBlock(ctx, p, sb, BlockResult{Kind: "shape", Variant: variant, ShapeType: sb.ShapeType})
}
