package command

import (
	"context"
	"fmt"
	"time"

	"github.com/mj1618/docbind/internal/binding"
	"github.com/mj1618/docbind/internal/detect"
	"github.com/mj1618/docbind/internal/editor"
	"github.com/mj1618/docbind/internal/platform"
	"go.uber.org/zap"
)

// Command names understood by the bus.
const (
	InsertText                  = "insert-text"
	InsertLink                  = "insert-link"
	InsertWordArt               = "insert-wordart"
	InsertTable                 = "insert-table"
	InsertDynamicTable          = "insert-dynamic-table"
	InsertShapeVariants         = "insert-shape-variants"
	BindSelection               = "bind-selection"
	AnalyzeSelection            = "analyze-selection"
	BindChartData               = "bind-chart-data"
	ReportActiveState           = "report-active-state"
	ScanDocument                = "scan-document"
	GetBindingSummary           = "get-binding-summary"
	DetectLinkClick             = "detect-link-click"
	DetectTableClick            = "detect-table-click"
	DetectPreciseTableCellClick = "detect-precise-table-cell-click"
	DetectBindingClick          = "detect-binding-click"
	DetectElementClick          = "detect-element-click"
	DetectChartClick            = "detect-chart-click"
)

// ReadOnly reports whether a command leaves the document unchanged.
func ReadOnly(name string) bool {
	switch name {
	case AnalyzeSelection, ReportActiveState, ScanDocument, GetBindingSummary,
		DetectLinkClick, DetectTableClick, DetectPreciseTableCellClick,
		DetectBindingClick, DetectElementClick, DetectChartClick:
		return true
	}
	return false
}

// Service implements the command vocabulary against one document session.
type Service struct {
	editor        *editor.Editor
	disambiguator *detect.Disambiguator
	store         *binding.Store
	sanitizer     *Sanitizer
	now           func() time.Time
	logger        *zap.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock sets the clock used for boundAt timestamps.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService wires the command implementations.
func NewService(ed *editor.Editor, d *detect.Disambiguator, store *binding.Store, opts ...ServiceOption) *Service {
	s := &Service{
		editor:        ed,
		disambiguator: d,
		store:         store,
		sanitizer:     NewSanitizer(),
		now:           time.Now,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register installs every command on d.
func (s *Service) Register(d *Dispatcher) {
	d.Register(InsertText, s.insertText)
	d.Register(InsertLink, s.insertLink)
	d.Register(InsertWordArt, s.insertWordArt)
	d.Register(InsertTable, s.insertTable)
	d.Register(InsertDynamicTable, s.insertDynamicTable)
	d.Register(InsertShapeVariants, s.insertShape)
	d.Register(BindSelection, s.bindSelection)
	d.Register(AnalyzeSelection, s.analyzeSelection)
	d.Register(BindChartData, s.bindChartData)
	d.Register(ReportActiveState, s.reportActiveState)
	d.Register(ScanDocument, s.scanDocument)
	d.Register(GetBindingSummary, s.bindingSummary)
	d.Register(DetectLinkClick, s.detector(s.disambiguator.DetectLinkClick))
	d.Register(DetectTableClick, s.detector(s.disambiguator.DetectTableClick))
	d.Register(DetectPreciseTableCellClick, s.detector(s.disambiguator.DetectPreciseTableCellClick))
	d.Register(DetectBindingClick, s.detector(s.disambiguator.DetectBindingClick))
	d.Register(DetectElementClick, s.detector(s.disambiguator.DetectElementClick))
	d.Register(DetectChartClick, s.detector(s.disambiguator.DetectChartClick))
}

// Disambiguator returns the detection cascade the service runs.
func (s *Service) Disambiguator() *detect.Disambiguator { return s.disambiguator }

// Store returns the session binding store.
func (s *Service) Store() *binding.Store { return s.store }

// Editor returns the sandbox front end.
func (s *Service) Editor() *editor.Editor { return s.editor }

// run executes fn in the sandbox with p as the call's scope.
func (s *Service) run(ctx context.Context, p map[string]any, fn platform.DocFunc) (any, error) {
	return s.editor.Call(ctx, p, fn)
}

func controlInserter(doc platform.Document) (platform.ControlInserter, error) {
	ins, ok := doc.(platform.ControlInserter)
	if !ok {
		return nil, fmt.Errorf("content controls: %w", platform.ErrNotSupported)
	}
	return ins, nil
}

func blockInserter(doc platform.Document) (platform.BlockInserter, error) {
	ins, ok := doc.(platform.BlockInserter)
	if !ok {
		return nil, fmt.Errorf("block insertion: %w", platform.ErrNotSupported)
	}
	return ins, nil
}

func controlID(cc platform.ContentControl) string {
	if idp, ok := cc.(platform.ControlIdentifier); ok {
		if id, err := idp.InternalID(); err == nil {
			return id
		}
	}
	return ""
}
