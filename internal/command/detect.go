package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/mj1618/docbind/internal/binding"
	"github.com/mj1618/docbind/internal/detect"
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
)

// ErrNoCharts is returned by bind-chart-data when the scan finds no chart.
var ErrNoCharts = errors.New(detect.ErrMsgNoCharts)

// ScanReport is the serializable form of a document scan.
type ScanReport struct {
	Items []model.ScanItem `json:"items" yaml:"items"`
	Stats model.ScanStats  `json:"stats" yaml:"stats"`
}

// detector adapts a click detector to a handler.
func (s *Service) detector(fn func(platform.Document) model.DetectionResult) Handler {
	return func(ctx context.Context, data any) (any, error) {
		return s.run(ctx, paramsOf(data, ""), func(doc platform.Document, _ *platform.Scope) (any, error) {
			return fn(doc), nil
		})
	}
}

// ActiveState runs one disambiguation pass.
func (s *Service) ActiveState(ctx context.Context) (model.SelectionState, error) {
	v, err := s.run(ctx, nil, func(doc platform.Document, _ *platform.Scope) (any, error) {
		return s.disambiguator.Disambiguate(doc), nil
	})
	if err != nil {
		return model.SelectionState{}, err
	}
	return v.(model.SelectionState), nil
}

func (s *Service) reportActiveState(ctx context.Context, _ any) (any, error) {
	return s.ActiveState(ctx)
}

func (s *Service) scanDocument(ctx context.Context, data any) (any, error) {
	return s.run(ctx, paramsOf(data, ""), func(doc platform.Document, _ *platform.Scope) (any, error) {
		scan := s.disambiguator.Scanner().Scan(doc)
		return ScanReport{Items: scan.Items(), Stats: scan.Stats}, nil
	})
}

func (s *Service) bindingSummary(ctx context.Context, data any) (any, error) {
	return s.run(ctx, paramsOf(data, ""), func(doc platform.Document, _ *platform.Scope) (any, error) {
		scan := s.disambiguator.Scanner().Scan(doc)
		return s.store.Summary(ctx, doc, scan), nil
	})
}

// bindChartData binds payload to a scanned chart. Without chartIndex the
// last chart in scan order is used.
func (s *Service) bindChartData(ctx context.Context, data any) (any, error) {
	p := paramsOf(data, "")
	payload, ok := p["payload"]
	if !ok || payload == nil {
		return nil, errors.New("payload is required")
	}
	index, hasIndex := optionalInt(p, "chartIndex")
	source := model.Source(stringParam(p, "source", ""))

	return s.run(ctx, p, func(doc platform.Document, _ *platform.Scope) (any, error) {
		scan := s.disambiguator.Scanner().Scan(doc)
		charts := scan.Charts()
		if len(charts) == 0 {
			return nil, ErrNoCharts
		}
		target, ok := pickChart(charts, index, hasIndex, source)
		if !ok {
			return nil, fmt.Errorf("no chart at index %d", index)
		}
		rec, err := s.store.Bind(ctx, doc, target.Element, binding.Target{
			Position:    target.PositionIndex,
			Source:      target.Source,
			ElementType: target.ElementType,
			UniqueID:    target.UniqueID,
		}, payload)
		if err != nil {
			return nil, err
		}
		return rec, nil
	})
}

func pickChart(charts []detect.Entry, index int, hasIndex bool, source model.Source) (detect.Entry, bool) {
	if !hasIndex {
		if source == "" {
			return charts[len(charts)-1], true
		}
		for i := len(charts) - 1; i >= 0; i-- {
			if charts[i].Source == source {
				return charts[i], true
			}
		}
		return detect.Entry{}, false
	}
	for _, c := range charts {
		if c.PositionIndex == index && (source == "" || c.Source == source) {
			return c, true
		}
	}
	return detect.Entry{}, false
}
