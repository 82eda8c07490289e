package detect

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mj1618/docbind/internal/platform"
	"github.com/mj1618/docbind/internal/probe"
)

// IDSynthesizer builds best-effort fingerprints for drawing elements. The
// result is not a stable identity: the timestamp part changes between passes
// unless the host reports a creation time.
type IDSynthesizer struct {
	now func() time.Time
}

// NewIDSynthesizer returns a synthesizer using now for the timestamp part.
// A nil now uses time.Now.
func NewIDSynthesizer(now func() time.Time) *IDSynthesizer {
	if now == nil {
		now = time.Now
	}
	return &IDSynthesizer{now: now}
}

// Synthesize concatenates whatever identity signals the element offers:
// position, type, internal id, hash, GUID, size fingerprint and timestamp.
func (s *IDSynthesizer) Synthesize(el platform.Element, elementType string, position int) string {
	parts := []string{fmt.Sprintf("idx_%d", position)}
	if elementType != "" {
		parts = append(parts, "type_"+clean(elementType))
	}
	if p, ok := el.(platform.IDProvider); ok {
		if r := probe.NonEmpty(probe.Call(p.InternalID)); r.OK() {
			parts = append(parts, "id_"+clean(r.Value))
		}
	}
	if h, ok := el.(platform.Hasher); ok {
		if r := probe.NonEmpty(probe.Call(h.Hash)); r.OK() {
			parts = append(parts, "hash_"+clean(r.Value))
		}
	}
	if g, ok := el.(platform.GUIDProvider); ok {
		if r := probe.NonEmpty(probe.Call(g.GUID)); r.OK() {
			parts = append(parts, "guid_"+clean(r.Value))
		}
	}
	if size, ok := sizeFingerprint(el); ok {
		parts = append(parts, fmt.Sprintf("size_%d", size))
	}
	parts = append(parts, fmt.Sprintf("ts_%d", s.timestamp(el)))
	return strings.Join(parts, "_")
}

func (s *IDSynthesizer) timestamp(el platform.Element) int64 {
	if ct, ok := el.(platform.CreationTimer); ok {
		if r := probe.Call(ct.CreatedAt); r.OK() && r.Value > 0 {
			return r.Value
		}
	}
	return s.now().UnixMilli()
}

// sizeFingerprint is (width x height) mod 10000. Non-finite areas have none.
func sizeFingerprint(el platform.Element) (int64, bool) {
	dp, ok := el.(platform.DimensionProvider)
	if !ok {
		return 0, false
	}
	w, h := probe.Call(dp.Width), probe.Call(dp.Height)
	if !w.OK() || !h.OK() || w.Value <= 0 || h.Value <= 0 {
		return 0, false
	}
	area := w.Value * h.Value
	if math.IsInf(area, 0) || math.IsNaN(area) {
		return 0, false
	}
	return int64(math.Mod(math.Trunc(area), 10000)), true
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), "-")
}
