package detect

import (
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
	"go.uber.org/zap"
)

// confidenceShapeType applies when a shape also reports its preset geometry.
const confidenceShapeType = 0.9

// Classifier assigns a structural category to opaque elements.
type Classifier struct {
	charts *ChartIdentifier
	logger *zap.Logger
}

// NewClassifier returns a classifier that delegates chart-bearing elements to
// charts.
func NewClassifier(charts *ChartIdentifier, logger *zap.Logger) *Classifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if charts == nil {
		charts = NewChartIdentifier(logger)
	}
	return &Classifier{charts: charts, logger: logger}
}

// Charts returns the chart identifier the classifier delegates to.
func (c *Classifier) Charts() *ChartIdentifier { return c.charts }

// Classify never panics. Elements without any usable accessor come back as
// {unknown, 0}.
func (c *Classifier) Classify(el platform.Element) model.ChartTypeResult {
	if el == nil {
		return model.Unknown()
	}
	props := readProperties(el)
	tag := props.ClassType

	var result model.ChartTypeResult
	switch {
	case model.IsChartTag(tag) || hasChartObject(el):
		id := c.charts.Identify(el)
		result = model.ChartTypeResult{
			Category:        model.CategoryChart,
			SpecificType:    id.SpecificType,
			Confidence:      id.Confidence,
			DetectionMethod: id.DetectionMethod,
		}
	default:
		category, confidence := model.MatchCategory(tag)
		if category == model.CategoryUnknown {
			result = model.Unknown()
			break
		}
		result = model.ChartTypeResult{
			Category:        category,
			SpecificType:    string(category),
			Confidence:      confidence,
			DetectionMethod: MethodClassTag,
		}
		if category == model.CategoryShape && props.ShapeType != "" {
			result.SpecificType = props.ShapeType
			result.Confidence = confidenceShapeType
			result.DetectionMethod = MethodShapeType
		}
	}
	if !props.IsZero() {
		result.Properties = props
	}
	c.logger.Debug("classified element",
		zap.String("classType", tag),
		zap.String("category", string(result.Category)),
		zap.Float64("confidence", result.Confidence))
	return result
}

// ClassTag reads the element's class tag, or "" when unavailable.
func ClassTag(el platform.Element) string {
	ct, ok := el.(platform.ClassTyper)
	if !ok {
		return ""
	}
	r := probe.NonEmpty(probe.Call(ct.ClassType))
	if !r.OK() {
		return ""
	}
	return r.Value
}

func hasChartObject(el platform.Element) bool {
	holder, ok := el.(platform.ChartHolder)
	if !ok {
		return false
	}
	r := probe.Call(holder.Chart)
	return r.OK() && r.Value != nil
}

func readProperties(el platform.Element) *model.Properties {
	p := &model.Properties{ClassType: ClassTag(el)}
	if dp, ok := el.(platform.DimensionProvider); ok {
		if w := probe.Call(dp.Width); w.OK() {
			p.Width = w.Value
		}
		if h := probe.Call(dp.Height); h.OK() {
			p.Height = h.Value
		}
	}
	if tp, ok := el.(platform.TextProvider); ok {
		if t := probe.Call(tp.Text); t.OK() {
			p.HasText = t.Value != ""
			p.TextLength = len([]rune(t.Value))
		}
	}
	if st, ok := el.(platform.ShapeTyper); ok {
		if r := probe.NonEmpty(probe.Call(st.ShapeType)); r.OK() {
			p.ShapeType = r.Value
		}
	}
	return p
}
