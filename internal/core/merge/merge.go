// Package merge resolves overlapping entities from multiple detection
// sources into one non-overlapping, deterministic set
package merge

import (
	"sort"

	"medner/internal/core/entity"
)

// Resolve keeps at most one entity per text region. Overlap winners are
// picked by source precedence (model over pattern over dictionary), then
// longer span, then higher confidence; a losing candidate is dropped
// entirely, no partial spans survive. The input slice is not modified and
// the result is sorted by start offset.
//
// Runs in O(n log n): one sort by start, then a single linear sweep where
// the sweep's current entity duels each overlapping successor.
// Resolve is idempotent: feeding its output back in returns the same set
func Resolve(cands []entity.Entity) []entity.Entity {
	if len(cands) == 0 {
		return nil
	}

	sorted := make([]entity.Entity, len(cands))
	copy(sorted, cands)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return wins(sorted[i], sorted[j])
	})

	out := make([]entity.Entity, 0, len(sorted))
	cur := sorted[0]
	for _, c := range sorted[1:] {
		if !cur.Overlaps(c) {
			out = append(out, cur)
			cur = c
			continue
		}
		if wins(c, cur) {
			cur = c
		}
	}
	out = append(out, cur)
	return out
}

// wins reports whether a beats b under the resolution order
func wins(a, b entity.Entity) bool {
	if ar, br := a.Source.Rank(), b.Source.Rank(); ar != br {
		return ar < br
	}
	if a.Len() != b.Len() {
		return a.Len() > b.Len()
	}
	if a.Confidence != b.Confidence {
		return a.Confidence > b.Confidence
	}
	if a.Start != b.Start {
		return a.Start < b.Start
	}
	return a.End < b.End
}
