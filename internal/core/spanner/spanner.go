// Package spanner turns per-token tag predictions into character-level
// entities. It understands BIO and BIOES tagging and aggregates contiguous
// tokens of one category into a single span with the mean token score
package spanner

import (
	"strings"

	"medner/internal/core/entity"
	"medner/internal/core/model"
)

// DefaultLabels maps tag categories to entity labels for the standard
// clinical tag set
var DefaultLabels = map[string]entity.Label{
	"PROBLEM":   entity.LabelProblem,
	"TREATMENT": entity.LabelTreatment,
	"TEST":      entity.LabelTest,
}

// Spanner decodes tag sequences using a category -> label mapping
type Spanner struct {
	labels map[string]entity.Label
}

// New builds a Spanner. A nil mapping falls back to DefaultLabels
func New(labels map[string]entity.Label) *Spanner {
	if labels == nil {
		labels = DefaultLabels
	}
	return &Spanner{labels: labels}
}

// Decode walks the token stream and emits one entity per maximal tagged
// span. Tokens with out-of-range or inverted offsets are clipped against
// text and dropped when nothing remains, so a misbehaving model cannot
// produce spans that do not index the input
func (s *Spanner) Decode(text string, toks []model.Token) []entity.Entity {
	var (
		out   []entity.Entity
		open  bool
		label entity.Label
		start int
		end   int
		sum   float64
		count int
	)

	flush := func() {
		if !open || count == 0 {
			open = false
			return
		}
		open = false
		if start >= end {
			return
		}
		out = append(out, entity.New(
			text[start:end], label, start, end, sum/float64(count), entity.SourceModel,
		))
	}

	for _, t := range toks {
		ts, te := clip(t.Start, len(text)), clip(t.End, len(text))
		if ts >= te {
			continue
		}

		prefix, cat := splitTag(t.Tag)
		lab, known := s.labels[cat]
		if !known || prefix == "O" {
			flush()
			continue
		}

		switch prefix {
		case "B", "S":
			flush()
			open, label, start, end = true, lab, ts, te
			sum, count = t.Score, 1
			if prefix == "S" {
				flush()
			}
		case "I", "E":
			if open && lab == label {
				end = te
				sum += t.Score
				count++
			} else {
				// dangling continuation; treat as a new span
				flush()
				open, label, start, end = true, lab, ts, te
				sum, count = t.Score, 1
			}
			if prefix == "E" {
				flush()
			}
		default:
			flush()
		}
	}
	flush()
	return out
}

func splitTag(tag string) (prefix, category string) {
	if tag == "" || tag == "O" {
		return "O", ""
	}
	if i := strings.IndexByte(tag, '-'); i > 0 {
		return tag[:i], tag[i+1:]
	}
	return tag, ""
}

func clip(v, n int) int {
	if v < 0 {
		return 0
	}
	if v > n {
		return n
	}
	return v
}
