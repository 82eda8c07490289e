package memdoc

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mj1618/docbind/internal/platform"
)

// Node is one object in the in-memory document. Zero-valued fields mean the
// corresponding capability is absent: accessors return ErrNotSupported.
type Node struct {
	Class         string            `yaml:"class"`
	Text          string            `yaml:"text,omitempty"`
	Width         float64           `yaml:"width,omitempty"`
	Height        float64           `yaml:"height,omitempty"`
	ID            string            `yaml:"id,omitempty"`
	Hash          string            `yaml:"hash,omitempty"`
	GUID          string            `yaml:"guid,omitempty"`
	CreatedAt     int64             `yaml:"createdAt,omitempty"`
	ChartType     string            `yaml:"chartType,omitempty"`
	PrevChartType string            `yaml:"prevChartType,omitempty"`
	Markup        string            `yaml:"markup,omitempty"`
	ShapeType     string            `yaml:"shapeType,omitempty"`
	Rows          [][]string        `yaml:"rows,omitempty"`
	Drawing       bool              `yaml:"drawing,omitempty"`
	CustomProps   bool              `yaml:"customProperties,omitempty"`
	Methods       map[string]string `yaml:"methods,omitempty"`
	// Faults maps an accessor name to the error message it fails with.
	// A message starting with "panic:" makes the accessor panic instead.
	Faults map[string]string `yaml:"faults,omitempty"`

	props map[string]string
}

func (n *Node) fault(name string) error {
	msg, ok := n.Faults[name]
	if !ok {
		return nil
	}
	if rest, ok := strings.CutPrefix(msg, "panic:"); ok {
		panic(errors.New(strings.TrimSpace(rest)))
	}
	return errors.New(msg)
}

func (n *Node) isTable() bool {
	return n.Rows != nil || strings.Contains(strings.ToLower(n.Class), "table")
}

// element is a handle onto a Node. Every lookup builds a fresh handle, so
// handles never compare equal across calls.
type element struct {
	doc  *Document
	node *Node
}

func (d *Document) handle(n *Node) *element {
	return &element{doc: d, node: n}
}

func notSupported(what string) error {
	return fmt.Errorf("%s: %w", what, platform.ErrNotSupported)
}

func (e *element) ClassType() (string, error) {
	if err := e.node.fault("ClassType"); err != nil {
		return "", err
	}
	return e.node.Class, nil
}

func (e *element) Width() (float64, error) {
	if err := e.node.fault("Width"); err != nil {
		return 0, err
	}
	if e.node.Width == 0 {
		return 0, notSupported("Width")
	}
	return e.node.Width, nil
}

func (e *element) Height() (float64, error) {
	if err := e.node.fault("Height"); err != nil {
		return 0, err
	}
	if e.node.Height == 0 {
		return 0, notSupported("Height")
	}
	return e.node.Height, nil
}

func (e *element) Text() (string, error) {
	if err := e.node.fault("Text"); err != nil {
		return "", err
	}
	if e.node.Rows != nil {
		var rows []string
		for _, r := range e.node.Rows {
			rows = append(rows, strings.Join(r, "\t"))
		}
		return strings.Join(rows, "\n"), nil
	}
	return e.node.Text, nil
}

func (e *element) Chart() (platform.Chart, error) {
	if err := e.node.fault("Chart"); err != nil {
		return nil, err
	}
	if e.node.ChartType == "" && e.node.Faults["ChartType"] == "" {
		return nil, notSupported("Chart")
	}
	return chart{node: e.node, typeKey: "ChartType", value: e.node.ChartType}, nil
}

func (e *element) PrevChart() (platform.Chart, error) {
	if err := e.node.fault("PrevChart"); err != nil {
		return nil, err
	}
	if e.node.PrevChartType == "" && e.node.Faults["PrevChartType"] == "" {
		return nil, notSupported("PrevChart")
	}
	return chart{node: e.node, typeKey: "PrevChartType", value: e.node.PrevChartType}, nil
}

func (e *element) Markup() (string, error) {
	if err := e.node.fault("Markup"); err != nil {
		return "", err
	}
	if e.node.Markup == "" {
		return "", notSupported("Markup")
	}
	return e.node.Markup, nil
}

func (e *element) ShapeType() (string, error) {
	if err := e.node.fault("ShapeType"); err != nil {
		return "", err
	}
	if e.node.ShapeType == "" {
		return "", notSupported("ShapeType")
	}
	return e.node.ShapeType, nil
}

// MethodNames lists the node's dynamic members in a stable order.
func (e *element) MethodNames() []string {
	names := make([]string, 0, len(e.node.Methods))
	for name := range e.node.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Call implements the dynamic surface. Set*/Get* members with a key argument
// read and write the node's property bag; other members return their fixed
// string value.
func (e *element) Call(name string, args ...any) (any, error) {
	if err := e.node.fault(name); err != nil {
		return nil, err
	}
	value, ok := e.node.Methods[name]
	if !ok {
		return nil, notSupported(name)
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	switch {
	case strings.HasPrefix(name, "Set") && len(args) == 2:
		if e.node.props == nil {
			e.node.props = make(map[string]string)
		}
		e.node.props[fmt.Sprint(args[0])] = fmt.Sprint(args[1])
		return true, nil
	case strings.HasPrefix(name, "Get") && len(args) == 1:
		v, ok := e.node.props[fmt.Sprint(args[0])]
		if !ok {
			return nil, nil
		}
		return v, nil
	}
	return value, nil
}

func (e *element) SetCustomProperty(key, value string) error {
	if err := e.node.fault("SetCustomProperty"); err != nil {
		return err
	}
	if !e.node.CustomProps {
		return notSupported("SetCustomProperty")
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.node.props == nil {
		e.node.props = make(map[string]string)
	}
	e.node.props[key] = value
	return nil
}

func (e *element) CustomProperty(key string) (string, error) {
	if err := e.node.fault("CustomProperty"); err != nil {
		return "", err
	}
	if !e.node.CustomProps {
		return "", notSupported("CustomProperty")
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return e.node.props[key], nil
}

func (e *element) InternalID() (string, error) {
	if e.node.ID == "" {
		return "", notSupported("InternalID")
	}
	return e.node.ID, nil
}

func (e *element) Hash() (string, error) {
	if e.node.Hash == "" {
		return "", notSupported("Hash")
	}
	return e.node.Hash, nil
}

func (e *element) GUID() (string, error) {
	if e.node.GUID == "" {
		return "", notSupported("GUID")
	}
	return e.node.GUID, nil
}

func (e *element) CreatedAt() (int64, error) {
	if e.node.CreatedAt == 0 {
		return 0, notSupported("CreatedAt")
	}
	return e.node.CreatedAt, nil
}

type chart struct {
	node    *Node
	typeKey string
	value   string
}

func (c chart) ChartType() (string, error) {
	if err := c.node.fault(c.typeKey); err != nil {
		return "", err
	}
	return c.value, nil
}
