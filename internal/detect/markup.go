package detect

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/dlclark/regexp2"
	"github.com/mj1618/docbind/internal/model"
)

// MarkupAccessors are the dynamic accessor names tried, in order, to obtain a
// serialized markup representation of an element.
var MarkupAccessors = []string{
	"GetOOXML",
	"GetXML",
	"ToXML",
	"GetDocumentXML",
	"GetChart",
	"GetChartSpace",
}

const markupMatchTimeout = 200 * time.Millisecond

type familyPattern struct {
	family string
	re     *regexp2.Regexp
}

// MarkupMatcher finds the chart family declared in chart markup.
type MarkupMatcher struct {
	patterns []familyPattern
}

// NewMarkupMatcher compiles one pattern per chart family. The lookarounds keep
// keywords from matching inside longer words ("outline", "areas").
func NewMarkupMatcher() *MarkupMatcher {
	m := &MarkupMatcher{}
	for _, f := range model.ChartFamilies {
		pattern := `(?<![a-z])(?:` + strings.Join(f.Keywords, "|") + `)(?:3d)?(?:chart)?(?![a-z])`
		re := regexp2.MustCompile(pattern, regexp2.IgnoreCase)
		re.MatchTimeout = markupMatchTimeout
		m.patterns = append(m.patterns, familyPattern{family: f.Family, re: re})
	}
	return m
}

// Match returns the chart family and the method that found it.
func (m *MarkupMatcher) Match(markup string) (family, method string, ok bool) {
	if strings.TrimSpace(markup) == "" {
		return "", "", false
	}
	if family, ok := structuralFamily(markup); ok {
		return family, "markup-structure", true
	}
	if family, ok := m.keywordFamily(markup); ok {
		return family, "markup-pattern", true
	}
	return "", "", false
}

// structuralFamily looks for chart-type elements such as <c:pieChart> or
// <c:bar3DChart>.
func structuralFamily(markup string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", false
	}
	var family string
	doc.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		name := goquery.NodeName(s)
		if i := strings.LastIndex(name, ":"); i >= 0 {
			name = name[i+1:]
		}
		if !strings.HasSuffix(name, "chart") || name == "chart" {
			return true
		}
		raw := strings.TrimSuffix(strings.TrimSuffix(name, "chart"), "3d")
		if f, ok := model.ChartFamily(raw); ok {
			family = f
			return false
		}
		return true
	})
	return family, family != ""
}

// keywordFamily picks the family whose keyword appears first in the markup.
func (m *MarkupMatcher) keywordFamily(markup string) (string, bool) {
	best, bestIdx := "", -1
	for _, p := range m.patterns {
		match, err := p.re.FindStringMatch(markup)
		if err != nil || match == nil {
			continue
		}
		if bestIdx < 0 || match.Index < bestIdx {
			best, bestIdx = p.family, match.Index
		}
	}
	return best, bestIdx >= 0
}
