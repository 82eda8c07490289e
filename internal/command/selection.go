package command

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mj1618/docbind/internal/detect"
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
)

// Host-visible selection errors.
var (
	ErrNoSelection       = errors.New(detect.ErrMsgNoSelection)
	ErrNoSelectionToBind = errors.New("No selection to bind")
)

// Selection binding types.
const (
	BindTextField         = "text-field"
	BindNameField         = "name-field"
	BindEmailField        = "email-field"
	BindNumberField       = "number-field"
	BindDateField         = "date-field"
	BindTemplateVariable  = "template-variable"
	BindTableDataSource   = "table-data-source"
	BindParagraphTemplate = "paragraph-template"
	BindCustom            = "custom-binding"
)

// Bind-selection defaults.
const (
	DefaultBindingField = "custom_field"
	DefaultDataType     = "text"
	DefaultCategory     = "data-field"
)

// tableLookahead bounds how many leading elements analysis inspects for a
// table when the range is not inside one.
const tableLookahead = 20

// previewLength bounds the paragraph preview shown in a template control.
const previewLength = 20

var (
	numberPattern = regexp.MustCompile(`^\d+(\.\d+)?$`)
	datePattern   = regexp.MustCompile(`\d{4}[-/]\d{1,2}[-/]\d{1,2}`)
	emailPattern  = regexp.MustCompile(`\w+@\w+\.\w+`)
	latinName     = regexp.MustCompile(`^[A-Za-z\s]{2,20}$`)
	hanName       = regexp.MustCompile(`^[\x{4e00}-\x{9fa5}]{2,4}$`)
	whitespace    = regexp.MustCompile(`\s+`)
)

// Suggestion is one way the current selection could be bound.
type Suggestion struct {
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
	DataType    string `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Value       any    `json:"value,omitempty" yaml:"value,omitempty"`
	Variable    string `json:"variable,omitempty" yaml:"variable,omitempty"`
}

// SelectionAnalysis is the result of analyze-selection.
type SelectionAnalysis struct {
	HasSelection      bool              `json:"hasSelection" yaml:"hasSelection"`
	SelectionType     string            `json:"selectionType" yaml:"selectionType"`
	Content           string            `json:"content" yaml:"content"`
	Bindable          bool              `json:"bindable" yaml:"bindable"`
	Cell              *model.CellDetail `json:"cell,omitempty" yaml:"cell,omitempty"`
	SuggestedBindings []Suggestion      `json:"suggestedBindings" yaml:"suggestedBindings"`
	AnalyzedAt        time.Time         `json:"analyzedAt" yaml:"analyzedAt"`
}

func (s *Service) analyzeSelection(ctx context.Context, data any) (any, error) {
	return s.run(ctx, paramsOf(data, ""), func(doc platform.Document, _ *platform.Scope) (any, error) {
		rng, ok := detect.SelectedRange(doc)
		if !ok {
			return nil, ErrNoSelection
		}
		return s.analyze(doc, rng), nil
	})
}

func (s *Service) analyze(doc platform.Document, rng platform.Range) SelectionAnalysis {
	a := SelectionAnalysis{
		HasSelection:      true,
		SelectionType:     "unknown",
		Content:           detect.RangeText(rng),
		SuggestedBindings: []Suggestion{},
		AnalyzedAt:        s.now(),
	}
	text := strings.TrimSpace(a.Content)

	if cell, ok := detect.LocateCell(rng); ok {
		a.Cell = &cell
		a.markTable()
	} else if text == "" && leadingTable(doc) {
		a.markTable()
	}

	if a.SelectionType == "unknown" && text != "" {
		a.SelectionType = "text"
		a.Bindable = true
		a.SuggestedBindings = append(a.SuggestedBindings, textSuggestions(text)...)
	}

	if a.SelectionType == "unknown" && enclosingParagraph(rng) {
		a.SelectionType = "paragraph"
		a.Bindable = true
		a.SuggestedBindings = append(a.SuggestedBindings, Suggestion{
			Type:        BindParagraphTemplate,
			Description: "Bind as paragraph template",
			Category:    "template",
		})
	}

	if len(a.SuggestedBindings) == 0 {
		a.SuggestedBindings = append(a.SuggestedBindings, Suggestion{
			Type:        BindCustom,
			Description: "Custom data binding",
			Category:    "custom",
		})
	}
	return a
}

func (a *SelectionAnalysis) markTable() {
	a.SelectionType = "table"
	a.Bindable = true
	a.SuggestedBindings = append(a.SuggestedBindings, Suggestion{
		Type:        BindTableDataSource,
		Description: "Bind as data source table",
		Category:    "data-binding",
	})
}

// textSuggestions recognizes numbers, dates, emails and names. Plain text
// and template-variable suggestions are always offered.
func textSuggestions(text string) []Suggestion {
	var out []Suggestion
	if numberPattern.MatchString(text) {
		out = append(out, Suggestion{Type: BindNumberField, Description: "Bind as number field", Category: "data-field", DataType: "number", Value: parseNumber(text)})
	}
	if datePattern.MatchString(text) {
		out = append(out, Suggestion{Type: BindDateField, Description: "Bind as date field", Category: "data-field", DataType: "date", Value: text})
	}
	if emailPattern.MatchString(text) {
		out = append(out, Suggestion{Type: BindEmailField, Description: "Bind as email field", Category: "data-field", DataType: "email", Value: text})
	}
	if hanName.MatchString(text) || latinName.MatchString(text) {
		out = append(out, Suggestion{Type: BindNameField, Description: "Bind as name field", Category: "data-field", DataType: "name", Value: text})
	}
	out = append(out,
		Suggestion{Type: BindTextField, Description: "Bind as text field", Category: "data-field", DataType: "text", Value: text},
		Suggestion{Type: BindTemplateVariable, Description: "Bind as template variable", Category: "template", Variable: variableName(text)},
	)
	return out
}

func parseNumber(text string) any {
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f
	}
	return text
}

func variableName(text string) string {
	return strings.ToLower(whitespace.ReplaceAllString(text, "_"))
}

func leadingTable(doc platform.Document) bool {
	reader, ok := doc.(platform.PositionalReader)
	if !ok {
		return false
	}
	for i := 0; i < tableLookahead; i++ {
		r := probe.Call(func() (platform.Element, error) { return reader.ElementAt(i) })
		if !r.OK() {
			continue
		}
		if r.Value == nil {
			return false
		}
		if detect.ClassTag(r.Value) == "CTable" {
			return true
		}
	}
	return false
}

func enclosingParagraph(rng platform.Range) bool {
	loc, ok := rng.(platform.ParagraphLocator)
	if !ok {
		return false
	}
	r := probe.Call(loc.ParentParagraph)
	return r.OK() && r.Value != nil
}

// BindSelectionResult is the result of bind-selection.
type BindSelectionResult struct {
	Message   string         `json:"message" yaml:"message"`
	Method    string         `json:"method" yaml:"method"`
	ControlID string         `json:"controlId,omitempty" yaml:"controlId,omitempty"`
	Tag       string         `json:"tag" yaml:"tag"`
	Binding   map[string]any `json:"binding" yaml:"binding"`
}

type bindRequest struct {
	bindingType string
	fieldName   string
	dataType    string
	category    string
	metadata    map[string]any
}

func (s *Service) bindSelection(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "fieldName")
	req := bindRequest{
		bindingType: stringParam(p, "type", BindTextField),
		fieldName:   s.sanitizer.Text(stringParam(p, "fieldName", DefaultBindingField)),
		dataType:    stringParam(p, "dataType", DefaultDataType),
		category:    stringParam(p, "category", DefaultCategory),
		metadata:    mapParam(p, "metadata"),
	}
	if req.fieldName == "" {
		req.fieldName = DefaultBindingField
	}
	if req.metadata == nil {
		req.metadata = map[string]any{}
	}

	return s.run(ctx, p, func(doc platform.Document, _ *platform.Scope) (any, error) {
		rng, ok := detect.SelectedRange(doc)
		if !ok {
			return nil, ErrNoSelectionToBind
		}
		ins, err := controlInserter(doc)
		if err != nil {
			return nil, err
		}
		return s.bindRange(ins, req, detect.RangeText(rng))
	})
}

func (s *Service) bindRange(ins platform.ControlInserter, req bindRequest, original string) (BindSelectionResult, error) {
	boundAt := s.now().UTC()
	var (
		spec       platform.ControlSpec
		result     BindSelectionResult
		prefix     string
		tagPayload any
	)
	switch req.bindingType {
	case BindTextField, BindNameField, BindEmailField, BindNumberField, BindDateField:
		result.Method, result.Message = "text-field-binding", "Text field bound successfully"
		result.Binding = map[string]any{
			"type":         "text-field-binding",
			"fieldName":    req.fieldName,
			"dataType":     req.dataType,
			"originalText": original,
			"boundAt":      boundAt,
		}
		spec = platform.ControlSpec{Alias: "Field: " + req.fieldName, Text: original}
		prefix, tagPayload = model.TagPrefixField, req.fieldName

	case BindTemplateVariable:
		variable := stringParam(req.metadata, "variable", req.fieldName)
		result.Method, result.Message = "template-variable-binding", "Template variable bound successfully"
		result.Binding = map[string]any{
			"type":         "template-variable-binding",
			"variableName": variable,
			"originalText": original,
			"boundAt":      boundAt,
		}
		spec = platform.ControlSpec{Alias: "Template variable: " + variable, Text: "{" + variable + "}"}
		prefix, tagPayload = model.TagPrefixTemplateVar, map[string]any{"variableName": variable}

	case BindTableDataSource:
		result.Method, result.Message = "table-data-binding", "Table data source bound successfully"
		result.Binding = map[string]any{
			"type":        "table-data-binding",
			"tableName":   req.fieldName,
			"bindingMode": "data-source",
			"boundAt":     boundAt,
		}
		spec = platform.ControlSpec{
			Alias: "Table data binding: " + req.fieldName,
			Text:  "📊 " + req.fieldName,
			Style: &platform.TextStyle{Color: platform.RGB{0, 150, 0}, Bold: true, Underline: true},
		}
		prefix, tagPayload = model.TagPrefixTableBinding, result.Binding

	case BindParagraphTemplate:
		result.Method, result.Message = "paragraph-template-binding", "Paragraph template bound successfully"
		result.Binding = map[string]any{
			"type":            "paragraph-template",
			"templateName":    req.fieldName,
			"originalContent": original,
			"boundAt":         boundAt,
		}
		spec = platform.ControlSpec{
			Alias: "Paragraph template: " + req.fieldName,
			Text:  "📝 " + req.fieldName + ": " + preview(original),
			Style: &platform.TextStyle{Color: platform.RGB{200, 100, 0}},
		}
		prefix, tagPayload = model.TagPrefixParagraphTemplate, result.Binding

	default:
		result.Method, result.Message = "custom-binding", "Custom binding created successfully"
		result.Binding = map[string]any{
			"type":          "custom-binding",
			"customType":    req.bindingType,
			"fieldName":     req.fieldName,
			"originalValue": original,
			"metadata":      req.metadata,
			"boundAt":       boundAt,
		}
		spec = platform.ControlSpec{
			Alias: "Custom binding: " + req.fieldName,
			Text:  "🔗 " + req.fieldName,
			Style: &platform.TextStyle{Color: platform.RGB{100, 100, 100}},
		}
		prefix, tagPayload = model.TagPrefixCustomBinding, result.Binding
	}

	spec.Tag = stringParam(req.metadata, "tag", "")
	if spec.Tag == "" {
		tag, err := model.FormatTag(prefix, tagPayload)
		if err != nil {
			return BindSelectionResult{}, fmt.Errorf("failed to encode binding tag: %w", err)
		}
		spec.Tag = tag
	}
	cc, err := ins.AddContentControl(spec)
	if err != nil {
		return BindSelectionResult{}, fmt.Errorf("failed to create %s control: %w", result.Method, err)
	}
	result.ControlID = controlID(cc)
	result.Tag = spec.Tag
	return result, nil
}

// preview shortens text for display inside a control.
func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}
