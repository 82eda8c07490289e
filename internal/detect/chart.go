package detect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
	"go.uber.org/zap"
)

// Detection methods reported in ChartTypeResult.DetectionMethod.
const (
	MethodDirect      = "direct-chart-object"
	MethodHeuristic   = "method-probe"
	MethodLegacy      = "legacy-chart"
	MethodChartMethod = "chart-method"
	MethodAborted     = "aborted:host-fault"
	MethodSafeMode    = "safe-mode"
	MethodClassTag    = "class-tag"
	MethodShapeType   = "shape-type"
	MethodLexical     = "lexical"
	MethodNoSignal    = "none"
)

// Confidence levels per strategy.
const (
	confidenceDirect      = 1.0
	confidenceMarkup      = 0.95
	confidenceLegacy      = 0.95
	confidenceHeuristic   = 0.9
	confidenceChartMethod = 0.85
	confidenceSafeMode    = 0.5
	confidenceAborted     = 0.3
)

// legacyAccessors name the unstable "previous chart" accessor on dynamic
// surfaces. They are only ever invoked from the guarded legacy step.
var legacyAccessors = []string{"GetPrevChart", "PrevChart"}

// ChartIdentity is the result of chart type identification.
type ChartIdentity struct {
	SpecificType    string  `yaml:"specificType" json:"specificType"`
	Confidence      float64 `yaml:"confidence" json:"confidence"`
	DetectionMethod string  `yaml:"detectionMethod" json:"detectionMethod"`
}

// Aborted reports whether identification stopped on the host-internal fault.
func (c ChartIdentity) Aborted() bool { return c.DetectionMethod == MethodAborted }

// ChartIdentifier runs the ordered chart identification strategies.
type ChartIdentifier struct {
	markup *MarkupMatcher
	logger *zap.Logger
}

// NewChartIdentifier returns an identifier. A nil logger is replaced by a no-op.
func NewChartIdentifier(logger *zap.Logger) *ChartIdentifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChartIdentifier{markup: NewMarkupMatcher(), logger: logger}
}

// errCircuitOpen stops probing after the host-internal fault.
var errCircuitOpen = fmt.Errorf("chart probing aborted: %w", platform.ErrHostInternal)

// Identify determines the chart type. It never panics; when every strategy is
// exhausted it returns the safe-mode result.
func (ci *ChartIdentifier) Identify(el platform.Element) ChartIdentity {
	if el == nil {
		return safeMode()
	}
	strategies := []struct {
		name string
		fn   func(platform.Element) (ChartIdentity, bool, error)
	}{
		{"direct", ci.direct},
		{"markup", ci.fromMarkup},
		{"heuristic", ci.heuristic},
		{"chart-methods", ci.chartMethods},
		{"legacy", ci.legacy},
	}
	for _, s := range strategies {
		id, ok, err := s.fn(el)
		if errors.Is(err, errCircuitOpen) {
			ci.logger.Warn("chart identification aborted on host fault", zap.String("strategy", s.name))
			return ChartIdentity{SpecificType: "unknown", Confidence: confidenceAborted, DetectionMethod: MethodAborted}
		}
		if ok {
			ci.logger.Debug("chart identified",
				zap.String("strategy", s.name),
				zap.String("type", id.SpecificType),
				zap.Float64("confidence", id.Confidence))
			return id
		}
	}
	return safeMode()
}

func safeMode() ChartIdentity {
	return ChartIdentity{SpecificType: "unknown", Confidence: confidenceSafeMode, DetectionMethod: MethodSafeMode}
}

func (ci *ChartIdentifier) direct(el platform.Element) (ChartIdentity, bool, error) {
	holder, ok := el.(platform.ChartHolder)
	if !ok {
		return ChartIdentity{}, false, nil
	}
	chart := probe.Call(holder.Chart)
	if !chart.OK() || chart.Value == nil {
		ci.logFault("Chart", chart.Err)
		return ChartIdentity{}, false, nil
	}
	t := probe.NonEmpty(probe.Call(chart.Value.ChartType))
	if !t.OK() {
		ci.logFault("ChartType", t.Err)
		return ChartIdentity{}, false, nil
	}
	return ChartIdentity{
		SpecificType:    strings.TrimSpace(t.Value),
		Confidence:      confidenceDirect,
		DetectionMethod: MethodDirect,
	}, true, nil
}

func (ci *ChartIdentifier) fromMarkup(el platform.Element) (ChartIdentity, bool, error) {
	type source struct {
		name  string
		fetch func() probe.Result[string]
	}
	var sources []source
	if exp, ok := el.(platform.MarkupExporter); ok {
		sources = append(sources, source{"Markup", func() probe.Result[string] {
			return probe.NonEmpty(probe.Call(exp.Markup))
		}})
	}
	if inv, ok := el.(platform.Invoker); ok {
		for _, name := range MarkupAccessors {
			sources = append(sources, source{name, func() probe.Result[string] {
				return invokeString(inv, name)
			}})
		}
	}
	for _, src := range sources {
		r := src.fetch()
		if !r.OK() {
			ci.logFault(src.name, r.Err)
			continue
		}
		if family, method, ok := ci.markup.Match(r.Value); ok {
			return ChartIdentity{
				SpecificType:    family,
				Confidence:      confidenceMarkup,
				DetectionMethod: method + ":" + src.name,
			}, true, nil
		}
	}
	return ChartIdentity{}, false, nil
}

func (ci *ChartIdentifier) heuristic(el platform.Element) (ChartIdentity, bool, error) {
	inv, ok := el.(platform.Invoker)
	if !ok {
		return ChartIdentity{}, false, nil
	}
	for _, name := range probeNames(inv, "type") {
		r := probe.Call(func() (any, error) { return inv.Call(name) })
		if r.Internal() {
			return ChartIdentity{}, false, errCircuitOpen
		}
		if !r.OK() {
			ci.logFault(name, r.Err)
			continue
		}
		if family, ok := familyOf(r.Value); ok {
			return ChartIdentity{
				SpecificType:    family,
				Confidence:      confidenceHeuristic,
				DetectionMethod: MethodHeuristic + ":" + name,
			}, true, nil
		}
	}
	return ChartIdentity{}, false, nil
}

// legacy is the guarded last-resort path. Any recognized host-internal fault,
// from the accessor itself or the nested type call, opens the circuit.
func (ci *ChartIdentifier) legacy(el platform.Element) (ChartIdentity, bool, error) {
	var prev probe.Result[platform.Chart]
	if holder, ok := el.(platform.LegacyChartHolder); ok {
		prev = probe.Call(holder.PrevChart)
	} else if inv, ok := el.(platform.Invoker); ok {
		prev = invokeLegacy(inv)
	} else {
		return ChartIdentity{}, false, nil
	}
	if prev.Internal() {
		return ChartIdentity{}, false, errCircuitOpen
	}
	if !prev.OK() || prev.Value == nil {
		ci.logFault("PrevChart", prev.Err)
		return ChartIdentity{}, false, nil
	}
	t := probe.NonEmpty(probe.Call(prev.Value.ChartType))
	if t.Internal() {
		return ChartIdentity{}, false, errCircuitOpen
	}
	if !t.OK() {
		ci.logFault("PrevChart.ChartType", t.Err)
		return ChartIdentity{}, false, nil
	}
	return ChartIdentity{
		SpecificType:    strings.TrimSpace(t.Value),
		Confidence:      confidenceLegacy,
		DetectionMethod: MethodLegacy,
	}, true, nil
}

func (ci *ChartIdentifier) chartMethods(el platform.Element) (ChartIdentity, bool, error) {
	inv, ok := el.(platform.Invoker)
	if !ok {
		return ChartIdentity{}, false, nil
	}
	for _, name := range probeNames(inv, "chart") {
		if containsFold(MarkupAccessors, name) {
			continue
		}
		r := probe.Call(func() (any, error) { return inv.Call(name) })
		if r.Internal() {
			return ChartIdentity{}, false, errCircuitOpen
		}
		if !r.OK() {
			ci.logFault(name, r.Err)
			continue
		}
		value := r.Value
		if chart, ok := value.(platform.Chart); ok {
			t := probe.NonEmpty(probe.Call(chart.ChartType))
			if t.Internal() {
				return ChartIdentity{}, false, errCircuitOpen
			}
			if !t.OK() {
				continue
			}
			value = t.Value
		}
		if family, ok := familyOf(value); ok {
			return ChartIdentity{
				SpecificType:    family,
				Confidence:      confidenceChartMethod,
				DetectionMethod: MethodChartMethod + ":" + name,
			}, true, nil
		}
	}
	return ChartIdentity{}, false, nil
}

func (ci *ChartIdentifier) logFault(accessor string, err error) {
	if err == nil {
		return
	}
	ci.logger.Debug("chart probe failed", zap.String("accessor", accessor), zap.Error(err))
}

// probeNames lists getter-like members whose name contains fragment, skipping
// setters and the legacy accessor.
func probeNames(inv platform.Invoker, fragment string) []string {
	var names []string
	for _, name := range inv.MethodNames() {
		lower := strings.ToLower(name)
		if !strings.Contains(lower, fragment) {
			continue
		}
		if strings.HasPrefix(lower, "set") || containsFold(legacyAccessors, name) {
			continue
		}
		names = append(names, name)
	}
	return names
}

func invokeString(inv platform.Invoker, name string) probe.Result[string] {
	r := probe.Call(func() (any, error) { return inv.Call(name) })
	if !r.OK() {
		return probe.Result[string]{Outcome: r.Outcome, Err: r.Err}
	}
	s, ok := r.Value.(string)
	if !ok || s == "" {
		return probe.Absent[string]()
	}
	return probe.Ok(s)
}

func invokeLegacy(inv platform.Invoker) probe.Result[platform.Chart] {
	for _, name := range legacyAccessors {
		if !containsFold(inv.MethodNames(), name) {
			continue
		}
		r := probe.Call(func() (any, error) { return inv.Call(name) })
		if !r.OK() {
			return probe.Result[platform.Chart]{Outcome: r.Outcome, Err: r.Err}
		}
		chart, ok := r.Value.(platform.Chart)
		if !ok {
			return probe.Absent[platform.Chart]()
		}
		return probe.Ok(chart)
	}
	return probe.Absent[platform.Chart]()
}

func familyOf(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return model.ChartFamily(t)
	case fmt.Stringer:
		return model.ChartFamily(t.String())
	case int, int64, float64:
		return model.ChartFamily(fmt.Sprint(t))
	default:
		return "", false
	}
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
