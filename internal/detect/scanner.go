package detect

import (
	"github.com/mj1618/docbind/internal/model"
	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
	"go.uber.org/zap"
)

// Positional scan bounds. The host does not report how many elements a
// document has, so iteration stops at the first absent element or the cap.
const (
	DefaultScanCap = 100
	MaxScanCap     = 200
)

// confidenceLexicalChart is the confidence of a chart found by tag alone.
const confidenceLexicalChart = 0.6

// Entry is one scanned element. The handle is only valid for the current
// sandbox call.
type Entry struct {
	Element platform.Element `yaml:"-" json:"-"`
	model.ScanItem
}

// ScanResult holds both inventories in scan order: document-level drawings
// first, then positional elements. Nothing is deduplicated across the two.
type ScanResult struct {
	Entries []Entry
	Stats   model.ScanStats
}

// Items returns the serializable part of every entry.
func (r ScanResult) Items() []model.ScanItem {
	items := make([]model.ScanItem, len(r.Entries))
	for i, e := range r.Entries {
		items[i] = e.ScanItem
	}
	return items
}

// BySource returns the entries produced by one access path.
func (r ScanResult) BySource(src model.Source) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Source == src {
			out = append(out, e)
		}
	}
	return out
}

// Charts returns chart candidates from both inventories.
func (r ScanResult) Charts() []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Classification.Category == model.CategoryChart {
			out = append(out, e)
		}
	}
	return out
}

// Scanner walks the two document access paths.
type Scanner struct {
	classifier *Classifier
	ids        *IDSynthesizer
	cap        int
	logger     *zap.Logger
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

// WithScanCap bounds the positional iteration. Values outside 1..MaxScanCap
// fall back to DefaultScanCap.
func WithScanCap(n int) ScannerOption {
	return func(s *Scanner) {
		if n >= 1 && n <= MaxScanCap {
			s.cap = n
		}
	}
}

// WithIDSynthesizer sets the fingerprint source for graphic entries.
func WithIDSynthesizer(ids *IDSynthesizer) ScannerOption {
	return func(s *Scanner) { s.ids = ids }
}

// NewScanner returns a scanner classifying document-level drawings with c.
func NewScanner(c *Classifier, logger *zap.Logger, opts ...ScannerOption) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Scanner{classifier: c, cap: DefaultScanCap, logger: logger, ids: NewIDSynthesizer(nil)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cap returns the positional iteration bound.
func (s *Scanner) Cap() int { return s.cap }

// Classifier returns the classifier used for document-level drawings.
func (s *Scanner) Classifier() *Classifier { return s.classifier }

// Scan never panics. Elements whose read fails are skipped.
func (s *Scanner) Scan(doc platform.Document) ScanResult {
	var result ScanResult
	s.scanDrawings(doc, &result)
	s.scanPositional(doc, &result)
	s.logger.Debug("scan complete",
		zap.Int("documentLevel", result.Stats.DocumentLevel),
		zap.Int("positional", result.Stats.Positional),
		zap.Int("skipped", len(result.Stats.Skipped)),
		zap.Bool("capReached", result.Stats.CapReached))
	return result
}

func (s *Scanner) scanDrawings(doc platform.Document, result *ScanResult) {
	lister, ok := doc.(platform.DrawingLister)
	if !ok {
		return
	}
	drawings := probe.Call(lister.AllDrawingObjects)
	if !drawings.OK() {
		if drawings.Err != nil {
			s.logger.Debug("drawing collection unavailable", zap.Error(drawings.Err))
		}
		return
	}
	for i, el := range drawings.Value {
		if el == nil {
			continue
		}
		classification := s.classifier.Classify(el)
		elementType := ClassTag(el)
		if elementType == "" {
			elementType = string(classification.Category)
		}
		result.Entries = append(result.Entries, Entry{
			Element: el,
			ScanItem: model.ScanItem{
				ElementType:    elementType,
				PositionIndex:  i,
				Source:         model.SourceDocumentLevel,
				Graphic:        true,
				UniqueID:       s.ids.Synthesize(el, elementType, i),
				Classification: classification,
			},
		})
		result.Stats.DocumentLevel++
	}
}

func (s *Scanner) scanPositional(doc platform.Document, result *ScanResult) {
	reader, ok := doc.(platform.PositionalReader)
	if !ok {
		return
	}
	for i := 0; i < s.cap; i++ {
		r := probe.Call(func() (platform.Element, error) { return reader.ElementAt(i) })
		if r.Outcome == probe.HostFault {
			s.logger.Debug("element read failed", zap.Int("index", i), zap.Error(r.Err))
			result.Stats.Skipped = append(result.Stats.Skipped, i)
			continue
		}
		if !r.OK() || r.Value == nil {
			return
		}
		tag := ClassTag(r.Value)
		item := model.ScanItem{
			ElementType:    tag,
			PositionIndex:  i,
			Source:         model.SourcePositional,
			Graphic:        model.IsGraphicTag(tag),
			Classification: lexicalClassification(tag),
		}
		if item.Graphic {
			item.UniqueID = s.ids.Synthesize(r.Value, tag, i)
		}
		result.Entries = append(result.Entries, Entry{Element: r.Value, ScanItem: item})
		result.Stats.Positional++
	}
	result.Stats.CapReached = true
}

// lexicalClassification classifies from the tag alone without probing.
func lexicalClassification(tag string) model.ChartTypeResult {
	if model.IsChartTag(tag) {
		return model.ChartTypeResult{
			Category:        model.CategoryChart,
			SpecificType:    "chart",
			Confidence:      confidenceLexicalChart,
			DetectionMethod: MethodLexical,
		}
	}
	category, confidence := model.MatchCategory(tag)
	if category == model.CategoryUnknown {
		if model.IsGraphicTag(tag) {
			return model.ChartTypeResult{
				Category:        model.CategoryDrawing,
				SpecificType:    "graphic",
				Confidence:      0.5,
				DetectionMethod: MethodLexical,
			}
		}
		return model.Unknown()
	}
	return model.ChartTypeResult{
		Category:        category,
		SpecificType:    string(category),
		Confidence:      confidence,
		DetectionMethod: MethodLexical,
	}
}
