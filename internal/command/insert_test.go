package command

import (
	"testing"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/platform/memdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastControl(t *testing.T, doc *memdoc.Document) memdoc.Control {
	t.Helper()
	controls := doc.Controls()
	require.NotEmpty(t, controls)
	return controls[len(controls)-1]
}

func TestInsertText(t *testing.T) {
	tests := []struct {
		name        string
		data        any
		tag         string
		alias       string
		placeholder string
	}{
		{"bare string", "invoice_no", "bind:invoice_no", "invoice_no", "{{invoice_no}}"},
		{"default key", map[string]any{}, "bind:customer_name", "customer_name", "{{customer_name}}"},
		{"title and markup", map[string]any{"text": "<b>total</b>", "title": "<i>Grand total</i>"}, "bind:total", "Grand total", "{{total}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := memdoc.New()
			d, _ := newTestDispatcher(t, doc)

			resp := dispatch(t, d, InsertText, tt.data)
			require.True(t, resp.OK, resp.Error)
			res := resp.Data.(ControlResult)
			assert.Equal(t, tt.tag, res.Tag)
			assert.Equal(t, "sdt-1", res.ControlID)

			c := lastControl(t, doc)
			assert.Equal(t, tt.tag, c.Tag)
			assert.Equal(t, tt.alias, c.Alias)
			assert.Equal(t, tt.placeholder, c.Placeholder)

			info, ok := model.ParseTag(c.Tag)
			require.True(t, ok)
			assert.Equal(t, "field", info.BindingType)
		})
	}
}

func TestInsertLink(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertLink, map[string]any{
		"text":  "Open report",
		"url":   "https://example.com/r/7",
		"json":  map[string]any{"id": 7.0},
		"style": map[string]any{"color": "red", "underline": false},
	})
	require.True(t, resp.OK, resp.Error)

	c := lastControl(t, doc)
	assert.Equal(t, `link-data:{"id":7}`, c.Tag)
	assert.Equal(t, "Open report", c.Text)
	assert.Equal(t, "https://example.com/r/7", c.Hyperlink)
	assert.Equal(t, "Hyperlink: https://example.com/r/7", c.Alias)

	info, ok := model.ParseTag(c.Tag)
	require.True(t, ok)
	assert.True(t, info.IsLink())
	assert.Equal(t, map[string]any{"id": 7.0}, info.Payload)
}

func TestInsertLinkDefaults(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertLink, nil)
	require.True(t, resp.OK, resp.Error)
	c := lastControl(t, doc)
	assert.Equal(t, "link-data:", c.Tag)
	assert.Equal(t, DefaultLinkText, c.Text)
	assert.Equal(t, "Clickable link", c.Alias)
	assert.Empty(t, c.Hyperlink)
}

func TestInsertLinkRejectsScriptURL(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertLink, map[string]any{"url": "javascript:alert(1)"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "not allowed")
	assert.Empty(t, doc.Controls())
}

func TestInsertWithoutControlCapability(t *testing.T) {
	doc := memdoc.New()
	doc.SetFault("AddContentControl", "read-only document")
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertText, "x")
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "read-only document")
}

func TestInsertTable(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertTable, map[string]any{
		"headers": []any{"Name", "Qty", "Price", "Total"},
		"data":    []any{[]any{"Apples", 4.0}},
	})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, BlockResult{Kind: "table", Rows: 3, Columns: 4}, resp.Data)

	body := doc.Body()
	require.Len(t, body, 1)
	assert.Equal(t, "CTable", body[0].Class)
	assert.Equal(t, [][]string{
		{"Name", "Qty", "Price", "Total"},
		{"Apples", "4", "", ""},
		{"", "", "", ""},
	}, body[0].Rows)
	assert.Equal(t, 100.0, body[0].Width)
}

func TestInsertTableInvalidSize(t *testing.T) {
	d, _ := newTestDispatcher(t, memdoc.New())
	resp := dispatch(t, d, InsertTable, map[string]any{"rows": 0})
	assert.False(t, resp.OK)
}

func TestInsertTableSizeCap(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertTable, map[string]any{"rows": MaxTableSize + 1})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "exceeds 1000")

	resp = dispatch(t, d, InsertTable, map[string]any{"columns": 5000.0})
	assert.False(t, resp.OK)

	wide := make([]any, MaxTableSize+1)
	for i := range wide {
		wide[i] = "h"
	}
	resp = dispatch(t, d, InsertDynamicTable, map[string]any{"headers": wide})
	assert.False(t, resp.OK)
	assert.Empty(t, doc.Body())

	resp = dispatch(t, d, InsertTable, map[string]any{"rows": MaxTableSize, "columns": 2})
	assert.True(t, resp.OK, resp.Error)
}

func TestInsertDynamicTable(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertDynamicTable, map[string]any{
		"headers":  []any{"City"},
		"data":     []any{[]any{"Oslo", "NO"}, []any{"Lima"}},
		"metadata": map[string]any{"source": "crm"},
	})
	require.True(t, resp.OK, resp.Error)
	res := resp.Data.(BlockResult)
	assert.Equal(t, 3, res.Rows)
	assert.Equal(t, 2, res.Columns)
	assert.Equal(t, `table-binding:{"source":"crm"}`, res.Tag)

	body := doc.Body()
	require.Len(t, body, 2)
	assert.Equal(t, DefaultTableName, body[0].Text)
	assert.Equal(t, [][]string{{"City", ""}, {"Oslo", "NO"}, {"Lima", ""}}, body[1].Rows)

	c := lastControl(t, doc)
	assert.Equal(t, res.Tag, c.Tag)
}

func TestInsertDynamicTableEmpty(t *testing.T) {
	d, _ := newTestDispatcher(t, memdoc.New())
	resp := dispatch(t, d, InsertDynamicTable, map[string]any{"title": "Nothing"})
	assert.Equal(t, Response{OK: false, Error: ErrEmptyTable.Error()}, resp)
}

func TestFitTable(t *testing.T) {
	tb := platform.TableBlock{Rows: 3, Columns: 3, Data: [][]string{{"a"}, {"b"}, {"c"}, {"d", "e", "f", "g"}}}
	fitTable(&tb)
	assert.Equal(t, 4, tb.Rows)
	assert.Equal(t, 4, tb.Columns)
}

func TestInsertShapeVariants(t *testing.T) {
	tests := []struct {
		variant  string
		inBody   bool
		wantType string
		data     map[string]any
	}{
		{platform.ShapeInParagraph, true, DefaultShapeType, map[string]any{}},
		{platform.ShapeInline, true, "ellipse", map[string]any{"shapeType": "ellipse"}},
		{platform.ShapeFloating, false, "star5", map[string]any{"shapeType": "star5", "fill": "#00ff00"}},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			doc := memdoc.New()
			d, _ := newTestDispatcher(t, doc)
			tt.data["variant"] = tt.variant
			if tt.variant == platform.ShapeInParagraph {
				delete(tt.data, "variant")
			}

			resp := dispatch(t, d, InsertShapeVariants, tt.data)
			require.True(t, resp.OK, resp.Error)
			assert.Equal(t, BlockResult{Kind: "shape", Variant: tt.variant, ShapeType: tt.wantType}, resp.Data)
			if tt.inBody {
				assert.Len(t, doc.Body(), 1)
			} else {
				assert.Empty(t, doc.Body())
			}
		})
	}
}

func TestInsertShapeRejectsUnknownVariant(t *testing.T) {
	d, _ := newTestDispatcher(t, memdoc.New())
	resp := dispatch(t, d, InsertShapeVariants, map[string]any{"variant": "sideways"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "sideways")
}

func TestResolveWordArt(t *testing.T) {
	wa, preset := resolveWordArt(map[string]any{})
	assert.Empty(t, preset)
	assert.Equal(t, DefaultWordArt, wa)

	wa, preset = resolveWordArt(map[string]any{"preset": "Modern", "text": "Hello", "fontSize": 40.0})
	assert.Equal(t, "modern", preset)
	assert.Equal(t, "Hello", wa.Text)
	assert.Equal(t, 40.0, wa.FontSize)
	assert.Equal(t, "Arial", wa.FontFamily)
	assert.False(t, wa.Caps)
	assert.Equal(t, TransformPlain, wa.Transform)

	wa, preset = resolveWordArt(map[string]any{"preset": "gothic", "fillColor": []any{1.0, 2.0, 3.0}})
	assert.Equal(t, "classic", preset)
	assert.Equal(t, "CLASSIC", wa.Text)
	assert.Equal(t, platform.RGB{1, 2, 3}, wa.Fill)
}

func TestInsertWordArt(t *testing.T) {
	doc := memdoc.New()
	d, _ := newTestDispatcher(t, doc)

	resp := dispatch(t, d, InsertWordArt, map[string]any{"preset": "fun", "text": "<u>Party</u>"})
	require.True(t, resp.OK, resp.Error)
	assert.Equal(t, BlockResult{Kind: "wordart", Preset: "fun", ShapeType: TransformWave}, resp.Data)

	resp = dispatch(t, d, ScanDocument, nil)
	require.True(t, resp.OK, resp.Error)
	report := resp.Data.(ScanReport)
	require.Len(t, report.Items, 1)
	assert.Equal(t, model.SourceDocumentLevel, report.Items[0].Source)
	assert.Equal(t, 1, report.Stats.DocumentLevel)
}
