package model

import (
	"encoding/json"
	"strings"
)

// Tag prefixes carried in content-control tags.
const (
	TagPrefixField             = "bind:"
	TagPrefixLink              = "link-data:"
	TagPrefixTableBinding      = "table-binding:"
	TagPrefixParagraphTemplate = "paragraph-template:"
	TagPrefixCustomBinding     = "custom-binding:"
	TagPrefixBindingData       = "binding-data:"
	TagPrefixTemplateVar       = "template-var:"
	TagPrefixChartMarker       = "doc-chart-data:"
	TagPrefixChartData         = "chart-data:"
)

type tagEntry struct {
	prefix      string
	bindingType string
	jsonPayload bool
}

// tagVocabulary is ordered so that no prefix shadows a longer one.
var tagVocabulary = []tagEntry{
	{TagPrefixLink, "link", true},
	{TagPrefixTableBinding, "table-binding", true},
	{TagPrefixParagraphTemplate, "paragraph-template", true},
	{TagPrefixCustomBinding, "custom-binding", true},
	{TagPrefixBindingData, "binding-data", true},
	{TagPrefixTemplateVar, "template-variable", true},
	{TagPrefixChartMarker, "chart-marker", true},
	{TagPrefixChartData, "chart-data", true},
	{TagPrefixField, "field", false},
}

// TagInfo is a parsed content-control tag.
type TagInfo struct {
	Raw         string `yaml:"raw" json:"raw"`
	Prefix      string `yaml:"prefix" json:"prefix"`
	BindingType string `yaml:"bindingType" json:"bindingType"`
	Payload     any    `yaml:"payload,omitempty" json:"payload,omitempty"`
	// Malformed is set when a JSON payload failed to parse. Payload is nil.
	Malformed bool `yaml:"malformed,omitempty" json:"malformed,omitempty"`
}

// IsLink reports whether the tag marks a clickable link.
func (t TagInfo) IsLink() bool { return t.Prefix == TagPrefixLink }

// ParseTag matches a tag against the recognized prefix vocabulary.
// Unrecognized tags return false.
func ParseTag(tag string) (TagInfo, bool) {
	for _, e := range tagVocabulary {
		if !strings.HasPrefix(tag, e.prefix) {
			continue
		}
		info := TagInfo{Raw: tag, Prefix: e.prefix, BindingType: e.bindingType}
		body := strings.TrimPrefix(tag, e.prefix)
		if !e.jsonPayload {
			info.Payload = body
			return info, true
		}
		if body == "" {
			return info, true
		}
		var payload any
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			info.Malformed = true
			return info, true
		}
		info.Payload = payload
		return info, true
	}
	return TagInfo{}, false
}

// FormatTag serializes payload behind prefix. A nil payload yields the bare
// prefix.
func FormatTag(prefix string, payload any) (string, error) {
	if payload == nil {
		return prefix, nil
	}
	if s, ok := payload.(string); ok && prefix == TagPrefixField {
		return prefix + s, nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return prefix + string(b), nil
}
