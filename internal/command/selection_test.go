package command

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform/memdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func suggestionTypes(a SelectionAnalysis) []string {
	out := make([]string, len(a.SuggestedBindings))
	for i, s := range a.SuggestedBindings {
		out[i] = s.Type
	}
	return out
}

func textDoc(text string) *memdoc.Document {
	doc := memdoc.New()
	doc.Append(&memdoc.Node{Class: "CDocumentParagraph", Text: text})
	doc.Select(memdoc.Selection{Kind: memdoc.SelectText, Text: text})
	return doc
}

func TestAnalyzeSelectionText(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Quarterly report", []string{BindNameField, BindTextField, BindTemplateVariable}},
		{"42.5", []string{BindNumberField, BindTextField, BindTemplateVariable}},
		{"due 2024-03-01", []string{BindDateField, BindTextField, BindTemplateVariable}},
		{"mail ops@example.com", []string{BindEmailField, BindTextField, BindTemplateVariable}},
		{"张三", []string{BindNameField, BindTextField, BindTemplateVariable}},
		{"Order #1138 shipped!", []string{BindTextField, BindTemplateVariable}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			d, _ := newTestDispatcher(t, textDoc(tt.text))
			resp := dispatch(t, d, AnalyzeSelection, nil)
			require.True(t, resp.OK, resp.Error)
			a := resp.Data.(SelectionAnalysis)
			assert.True(t, a.HasSelection)
			assert.True(t, a.Bindable)
			assert.Equal(t, "text", a.SelectionType)
			assert.Equal(t, tt.text, a.Content)
			assert.Equal(t, tt.want, suggestionTypes(a))
			assert.Equal(t, testNow, a.AnalyzedAt)
		})
	}
}

func TestAnalyzeSelectionSuggestionValues(t *testing.T) {
	suggestions := textSuggestions("42")
	require.Len(t, suggestions, 3)
	assert.Equal(t, 42.0, suggestions[0].Value)
	assert.Equal(t, "42", suggestions[2].Variable)

	suggestions = textSuggestions("Net  Total")
	last := suggestions[len(suggestions)-1]
	assert.Equal(t, "net_total", last.Variable)
}

func TestAnalyzeSelectionTableCell(t *testing.T) {
	doc := memdoc.Sample()
	doc.Select(memdoc.Selection{Kind: memdoc.SelectTableCell, Element: 1, Row: 2, Column: 1})
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, AnalyzeSelection, nil)
	require.True(t, resp.OK, resp.Error)
	a := resp.Data.(SelectionAnalysis)
	assert.Equal(t, "table", a.SelectionType)
	require.NotNil(t, a.Cell)
	assert.Equal(t, "95", a.Cell.CellContent)
	assert.Equal(t, []string{BindTableDataSource}, suggestionTypes(a))
}

func TestAnalyzeSelectionEmptyRange(t *testing.T) {
	t.Run("table nearby", func(t *testing.T) {
		doc := memdoc.Sample()
		doc.Select(memdoc.Selection{Kind: memdoc.SelectText})
		d, _ := newTestDispatcher(t, doc)
		a := dispatch(t, d, AnalyzeSelection, nil).Data.(SelectionAnalysis)
		assert.Equal(t, "table", a.SelectionType)
		assert.Nil(t, a.Cell)
	})
	t.Run("paragraph", func(t *testing.T) {
		d, _ := newTestDispatcher(t, textDoc(""))
		a := dispatch(t, d, AnalyzeSelection, nil).Data.(SelectionAnalysis)
		assert.Equal(t, "paragraph", a.SelectionType)
		assert.Equal(t, []string{BindParagraphTemplate}, suggestionTypes(a))
	})
}

func TestAnalyzeSelectionNoRange(t *testing.T) {
	doc := memdoc.Sample()
	doc.Select(memdoc.Selection{Kind: memdoc.SelectNone})
	d, _ := newTestDispatcher(t, doc)
	assert.Equal(t, Response{OK: false, Error: "No selection found"}, dispatch(t, d, AnalyzeSelection, nil))
}

func decodeTag(t *testing.T, tag, prefix string) map[string]any {
	t.Helper()
	require.True(t, strings.HasPrefix(tag, prefix), tag)
	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(tag, prefix)), &out))
	return out
}

func TestBindSelectionTextField(t *testing.T) {
	doc := textDoc("Ada Lovelace")
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, BindSelection, map[string]any{"type": BindNameField, "fieldName": "author"})
	require.True(t, resp.OK, resp.Error)
	res := resp.Data.(BindSelectionResult)
	assert.Equal(t, "text-field-binding", res.Method)
	assert.Equal(t, "bind:author", res.Tag)
	assert.Equal(t, "author", res.Binding["fieldName"])
	assert.Equal(t, "Ada Lovelace", res.Binding["originalText"])
	assert.Equal(t, testNow, res.Binding["boundAt"])

	c := lastControl(t, doc)
	assert.Equal(t, "Ada Lovelace", c.Text)
	assert.Equal(t, "Field: author", c.Alias)
}

func TestBindSelectionDefaults(t *testing.T) {
	d, _ := newTestDispatcher(t, textDoc("x"))
	res := dispatch(t, d, BindSelection, nil).Data.(BindSelectionResult)
	assert.Equal(t, "bind:"+DefaultBindingField, res.Tag)
	assert.Equal(t, DefaultDataType, res.Binding["dataType"])
}

func TestBindSelectionTemplateVariable(t *testing.T) {
	doc := textDoc("Total")
	d, _ := newTestDispatcher(t, doc)

	res := dispatch(t, d, BindSelection, map[string]any{
		"type":      BindTemplateVariable,
		"fieldName": "ignored",
		"metadata":  map[string]any{"variable": "grand_total"},
	}).Data.(BindSelectionResult)
	assert.Equal(t, `template-var:{"variableName":"grand_total"}`, res.Tag)
	assert.Equal(t, "{grand_total}", lastControl(t, doc).Text)

	info, ok := model.ParseTag(res.Tag)
	require.True(t, ok)
	assert.Equal(t, "template-variable", info.BindingType)
}

func TestBindSelectionStructuredKinds(t *testing.T) {
	tests := []struct {
		kind   string
		prefix string
		method string
		text   string
		key    string
	}{
		{BindTableDataSource, model.TagPrefixTableBinding, "table-data-binding", "📊 sales", "tableName"},
		{BindParagraphTemplate, model.TagPrefixParagraphTemplate, "paragraph-template-binding", "📝 sales: A very long paragrap...", "templateName"},
		{"signature", model.TagPrefixCustomBinding, "custom-binding", "🔗 sales", "fieldName"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			doc := textDoc("A very long paragraph that keeps going")
			d, _ := newTestDispatcher(t, doc)

			resp := dispatch(t, d, BindSelection, map[string]any{"type": tt.kind, "fieldName": "sales"})
			require.True(t, resp.OK, resp.Error)
			res := resp.Data.(BindSelectionResult)
			assert.Equal(t, tt.method, res.Method)

			payload := decodeTag(t, res.Tag, tt.prefix)
			assert.Equal(t, "sales", payload[tt.key])
			assert.Equal(t, tt.text, lastControl(t, doc).Text)

			info, ok := model.ParseTag(res.Tag)
			require.True(t, ok)
			assert.False(t, info.Malformed)
		})
	}
}

func TestBindSelectionCustomTypeRecorded(t *testing.T) {
	d, _ := newTestDispatcher(t, textDoc("x"))
	res := dispatch(t, d, BindSelection, map[string]any{"type": "signature", "metadata": map[string]any{"signer": "cfo"}}).Data.(BindSelectionResult)
	assert.Equal(t, "signature", res.Binding["customType"])
	assert.Equal(t, map[string]any{"signer": "cfo"}, res.Binding["metadata"])
}

func TestBindSelectionMetadataTagOverrides(t *testing.T) {
	doc := textDoc("x")
	d, _ := newTestDispatcher(t, doc)
	res := dispatch(t, d, BindSelection, map[string]any{
		"type":     BindTableDataSource,
		"metadata": map[string]any{"tag": "binding-data:{\"k\":1}"},
	}).Data.(BindSelectionResult)
	assert.Equal(t, `binding-data:{"k":1}`, res.Tag)
	assert.Equal(t, res.Tag, lastControl(t, doc).Tag)
}

func TestBindSelectionWithoutRange(t *testing.T) {
	doc := memdoc.Sample()
	doc.Select(memdoc.Selection{Kind: memdoc.SelectDrawing})
	d, _ := newTestDispatcher(t, doc)
	assert.Equal(t, Response{OK: false, Error: "No selection to bind"}, dispatch(t, d, BindSelection, nil))
	assert.Empty(t, doc.Controls())
}

func TestBoundSelectionIsDetected(t *testing.T) {
	doc := textDoc("Ada")
	d, _ := newTestDispatcher(t, doc)
	require.True(t, dispatch(t, d, BindSelection, map[string]any{"type": BindCustom, "fieldName": "who"}).OK)

	zero := 0
	doc.Select(memdoc.Selection{Kind: memdoc.SelectText, Text: "🔗 who", Control: &zero})
	resp := dispatch(t, d, DetectBindingClick, nil)
	require.True(t, resp.OK)
	result := resp.Data.(model.DetectionResult)
	require.True(t, result.Success, result.Error)
	detail := result.Data.(model.ControlDetail)
	assert.Equal(t, "custom-binding", detail.BindingType)
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", preview("short"))
	assert.Equal(t, "abcdefghijklmnopqrst...", preview("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, strings.Repeat("é", 20)+"...", preview(strings.Repeat("é", 25)))
}
