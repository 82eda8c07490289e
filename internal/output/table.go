package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mj1618/docbind/internal/command"
	"github.com/mj1618/docbind/internal/model"
	"gopkg.in/yaml.v3"
)

// WriteTable renders v as a text table. Scan reports and binding summaries
// get dedicated layouts; anything else is flattened to key/value rows.
func WriteTable(w io.Writer, v interface{}) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	switch x := v.(type) {
	case command.Response:
		if !x.OK {
			tw.AppendHeader(table.Row{"ok", "error"})
			tw.AppendRow(table.Row{false, x.Error})
			break
		}
		return WriteTable(w, x.Data)
	case command.ScanReport:
		scanTable(tw, x.Items)
		tw.AppendFooter(table.Row{"", "", "", "", "", fmt.Sprintf("document-level %d, positional %d", x.Stats.DocumentLevel, x.Stats.Positional)})
	case []model.ScanItem:
		scanTable(tw, x)
	case model.BindingSummary:
		summaryTable(tw, x)
	default:
		if err := genericTable(tw, v); err != nil {
			return err
		}
	}
	tw.Render()
	return nil
}

func scanTable(tw table.Writer, items []model.ScanItem) {
	tw.AppendHeader(table.Row{"#", "source", "element", "category", "type", "confidence"})
	for _, it := range items {
		c := it.Classification
		tw.AppendRow(table.Row{
			it.PositionIndex,
			it.Source,
			it.ElementType,
			c.Category,
			c.SpecificType,
			fmt.Sprintf("%.2f", c.Confidence),
		})
	}
}

func summaryTable(tw table.Writer, s model.BindingSummary) {
	tw.AppendHeader(table.Row{"chart", "source", "type", "bound", "storage", "preview"})
	for _, b := range s.BindingSummary {
		tw.AppendRow(table.Row{b.ChartIndex, b.Source, b.ChartType, b.HasBindingData, b.StorageLocation, b.BindingPreview})
	}
	tw.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d", s.ChartsWithData, s.TotalCharts), fmt.Sprintf("stored %d", s.StoredBindings), ""})
}

// genericTable round-trips v through YAML so struct tags decide the keys.
func genericTable(tw table.Writer, v interface{}) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	var tree interface{}
	if err := yaml.Unmarshal(b, &tree); err != nil {
		return fmt.Errorf("yaml decode: %w", err)
	}

	switch t := tree.(type) {
	case map[string]interface{}:
		tw.AppendHeader(table.Row{"key", "value"})
		for _, k := range sortedKeys(t) {
			tw.AppendRow(table.Row{k, cell(t[k])})
		}
	case []interface{}:
		rows := make([]map[string]interface{}, 0, len(t))
		cols := map[string]interface{}{}
		for _, item := range t {
			m, ok := item.(map[string]interface{})
			if !ok {
				m = map[string]interface{}{"value": item}
			}
			for k := range m {
				cols[k] = nil
			}
			rows = append(rows, m)
		}
		keys := sortedKeys(cols)
		header := make(table.Row, len(keys))
		for i, k := range keys {
			header[i] = k
		}
		tw.AppendHeader(header)
		for _, m := range rows {
			row := make(table.Row, len(keys))
			for i, k := range keys {
				row[i] = cell(m[k])
			}
			tw.AppendRow(row)
		}
	default:
		tw.AppendRow(table.Row{cell(t)})
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cell renders nested values as single-line flow YAML.
func cell(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case map[string]interface{}, []interface{}:
		var node yaml.Node
		if err := node.Encode(x); err != nil {
			return fmt.Sprint(x)
		}
		setFlow(&node)
		b, err := yaml.Marshal(&node)
		if err != nil {
			return fmt.Sprint(x)
		}
		return strings.TrimSpace(string(b))
	default:
		return fmt.Sprint(x)
	}
}

func setFlow(n *yaml.Node) {
	if n.Kind == yaml.MappingNode || n.Kind == yaml.SequenceNode {
		n.Style |= yaml.FlowStyle
	}
	for _, c := range n.Content {
		setFlow(c)
	}
}
