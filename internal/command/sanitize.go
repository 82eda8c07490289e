package command

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Sanitizer strips markup from host-supplied display strings before they
// reach the document.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer returns a sanitizer that removes every HTML element.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// Text returns s without markup. Entities escaped by the policy are decoded
// again since the document stores plain text.
func (s *Sanitizer) Text(v string) string {
	if v == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

// Rows sanitizes every cell.
func (s *Sanitizer) Rows(rows [][]string) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = s.Strings(row)
	}
	return out
}

// Strings sanitizes every element.
func (s *Sanitizer) Strings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = s.Text(v)
	}
	return out
}

var allowedSchemes = map[string]bool{"http": true, "https": true, "mailto": true}

// URL validates a hyperlink target. An empty string is allowed and means the
// link has no target.
func (s *Sanitizer) URL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", raw, err)
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + raw)
		if err != nil {
			return "", fmt.Errorf("invalid url %q: %w", raw, err)
		}
	}
	if !allowedSchemes[strings.ToLower(u.Scheme)] {
		return "", fmt.Errorf("url scheme %q is not allowed", u.Scheme)
	}
	return u.String(), nil
}
