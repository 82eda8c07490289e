package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleReport() command.ScanReport {
	return command.ScanReport{
		Items: []model.ScanItem{
			{ElementType: "CChart", PositionIndex: 0, Source: model.SourceDocumentLevel, Classification: model.ChartTypeResult{Category: model.CategoryChart, SpecificType: "pie", Confidence: 1, DetectionMethod: "direct"}},
			{ElementType: "CTable", PositionIndex: 2, Source: model.SourcePositional, Classification: model.ChartTypeResult{Category: model.CategoryTable, SpecificType: "table", Confidence: 0.9}},
		},
		Stats: model.ScanStats{DocumentLevel: 1, Positional: 1},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatYAML, "yaml": FormatYAML, "json": FormatJSON, "table": FormatTable} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("agent")
	assert.Error(t, err)
}

func TestWriteJSON_CompactAndPretty(t *testing.T) {
	var compact, pretty bytes.Buffer
	require.NoError(t, WriteJSON(&compact, sampleReport(), false))
	require.NoError(t, WriteJSON(&pretty, sampleReport(), true))

	assert.Equal(t, 1, bytes.Count(compact.Bytes(), []byte("\n")))
	assert.Greater(t, bytes.Count(pretty.Bytes(), []byte("\n")), 1)

	var decoded command.ScanReport
	require.NoError(t, json.Unmarshal(compact.Bytes(), &decoded))
	assert.Len(t, decoded.Items, 2)
}

func TestWriteJSON_NoHTMLEscape(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, map[string]string{"tag": "bind:<a&b>"}, false))
	assert.Contains(t, buf.String(), "bind:<a&b>")
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, sampleReport()))

	var decoded command.ScanReport
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "pie", decoded.Items[0].Classification.SpecificType)
	assert.Equal(t, 1, decoded.Stats.Positional)
}

func TestWriteTable_ScanReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, sampleReport()))
	// go-pretty upper-cases headers and footers
	out := strings.ToLower(buf.String())
	assert.Contains(t, out, "cchart")
	assert.Contains(t, out, "pie")
	assert.Contains(t, out, "0.90")
	assert.Contains(t, out, "document-level 1, positional 1")
}

func TestWriteTable_Summary(t *testing.T) {
	s := model.BindingSummary{
		TotalCharts:    2,
		ChartsWithData: 1,
		StoredBindings: 1,
		BindingSummary: []model.BindingPreview{
			{ChartIndex: 0, ChartType: "pie", HasBindingData: true, StorageLocation: model.StorageMemoryMap, BindingPreview: `{"a":1}`},
			{ChartIndex: 3, ChartType: "bar"},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, s))
	assert.Contains(t, buf.String(), "MEMORY_MAP")
	assert.Contains(t, buf.String(), "1/2")
}

func TestWriteTable_FailedResponse(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, command.Response{Error: command.UnknownCommand}))
	assert.Contains(t, buf.String(), "Unknown command")
}

func TestWriteTable_GenericMap(t *testing.T) {
	state := model.SelectionState{HasRange: true, ActiveKind: model.ActiveText, Detail: map[string]any{"text": "hello"}}
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, command.Response{OK: true, Data: state}))
	out := buf.String()
	assert.Contains(t, out, "activeKind")
	assert.Contains(t, out, "{text: hello}")
}

func TestWriteTable_GenericSlice(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, []string{"insert-text", "insert-link"}))
	assert.Contains(t, buf.String(), "insert-link")
}

func TestFprintUnknownFormat(t *testing.T) {
	assert.Error(t, Fprint(&bytes.Buffer{}, Format("xml"), nil))
}
