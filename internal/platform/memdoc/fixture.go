package memdoc

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Fixture is the YAML layout of a document file.
type Fixture struct {
	Body          []*Node           `yaml:"body"`
	Floating      []*Node           `yaml:"floating,omitempty"`
	Controls      []*Control        `yaml:"controls,omitempty"`
	Selection     *Selection        `yaml:"selection,omitempty"`
	Unbounded     bool              `yaml:"unbounded,omitempty"`
	FaultyIndexes []int             `yaml:"faultyIndexes,omitempty"`
	Faults        map[string]string `yaml:"faults,omitempty"`
}

// Load reads a fixture file into a new Document.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a YAML fixture.
func Decode(r io.Reader) (*Document, error) {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return fx.Build(), nil
}

// Build materializes the fixture.
func (fx Fixture) Build() *Document {
	d := New()
	d.Append(fx.Body...)
	d.AddFloating(fx.Floating...)
	d.AddControls(fx.Controls...)
	d.unbounded = fx.Unbounded
	d.faultyIndexes = fx.FaultyIndexes
	for k, v := range fx.Faults {
		d.SetFault(k, v)
	}
	if fx.Selection != nil {
		d.selection = *fx.Selection
		if d.selection.Kind == "" {
			d.selection.Kind = SelectNone
		}
	}
	return d
}

// Sample is the document served when no fixture is given: a heading, a table
// and a bar chart.
func Sample() *Document {
	d := New()
	d.Append(
		&Node{Class: "CDocumentParagraph", Text: "Quarterly report"},
		&Node{Class: "CTable", Rows: [][]string{{"Region", "Q1"}, {"North", "120"}, {"South", "95"}}},
		&Node{Class: "CChart", ChartType: "bar", Width: 400, Height: 300, Drawing: true},
	)
	d.selection = Selection{Kind: SelectText, Text: "Quarterly report"}
	return d
}
