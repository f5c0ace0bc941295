package patterns

import (
	"sort"

	"medner/internal/core/entity"
)

// Options controls detector behavior
type Options struct {
	// MaxHits is the hard cap on emitted entities (0 = no cap)
	MaxHits int
}

// Detector runs all compiled rules over input text
type Detector struct {
	p    *Pack
	opts Options
}

// New creates a Detector with default options
func New(p *Pack) *Detector {
	return NewWithOptions(p, Options{})
}

// NewWithOptions creates a Detector with custom options
func NewWithOptions(p *Pack, opts Options) *Detector {
	return &Detector{p: p, opts: opts}
}

// Scan matches every rule against text and returns non-overlapping entities.
// Matches that start or end inside a word are discarded; when two rule
// matches overlap, the longer span wins, then the higher rule confidence
func (d *Detector) Scan(text string) []entity.Entity {
	if text == "" {
		return nil
	}

	var cands []entity.Entity
	for i, re := range d.p.Compiled {
		rule := d.p.Rules[i]
		for _, pr := range re.FindAllStringIndex(text, -1) {
			start, end := pr[0], pr[1]
			if !boundaryOK(text, start, end) {
				continue
			}
			cands = append(cands, entity.New(
				text[start:end], rule.Label, start, end, rule.Confidence, entity.SourcePattern,
			))
		}
	}
	if len(cands) == 0 {
		return nil
	}

	// Longest-first selection keeps at most one entity per text region
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].Len() != cands[j].Len() {
			return cands[i].Len() > cands[j].Len()
		}
		if cands[i].Confidence != cands[j].Confidence {
			return cands[i].Confidence > cands[j].Confidence
		}
		return cands[i].Start < cands[j].Start
	})

	var kept []entity.Entity
	for _, c := range cands {
		clash := false
		for _, k := range kept {
			if c.Overlaps(k) {
				clash = true
				break
			}
		}
		if !clash {
			kept = append(kept, c)
			if d.opts.MaxHits > 0 && len(kept) >= d.opts.MaxHits {
				break
			}
		}
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Start < kept[j].Start })
	return kept
}
