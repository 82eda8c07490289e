package binding

import (
	"context"

	"github.com/mj1618/docbind/internal/detect"
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"go.uber.org/zap"
)

// Summary reports every chart candidate in scan and whether a binding can be
// recovered for it.
func (s *Store) Summary(ctx context.Context, doc platform.Document, scan detect.ScanResult) model.BindingSummary {
	summary := model.BindingSummary{BindingSummary: []model.BindingPreview{}}
	for _, e := range scan.Charts() {
		summary.TotalCharts++
		row := model.BindingPreview{
			ChartIndex: e.PositionIndex,
			Source:     e.Source,
			ChartType:  e.Classification.SpecificType,
		}
		if rec, ok := s.RecoverContext(ctx, doc, e.Element, e.PositionIndex, e.Source); ok {
			summary.ChartsWithData++
			row.HasBindingData = true
			row.StorageLocation = rec.StorageLocation
			row.BindingPreview = rec.BindingID
			if row.BindingPreview == "" {
				row.BindingPreview = "unknown"
			}
		}
		summary.BindingSummary = append(summary.BindingSummary, row)
	}
	entries, err := s.Entries(ctx)
	if err != nil {
		s.logger.Warn("binding map unavailable", zap.Error(err))
	}
	summary.StoredBindings = len(entries)
	return summary
}

// Verify interface compliance
var _ detect.Recoverer = (*Store)(nil)
