// Package lexicon detects clinical entities by dictionary lookup. Terms
// live in the embedded terms.json grouped by label; lookup keys are folded
// with normalize.Fold so casing and accents never matter, while emitted
// spans always index the caller's original text
package lexicon

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"medner/internal/core/entity"
	"medner/internal/core/normalize"
)

//go:embed terms.json
var embedded []byte

// MaxWords is the longest dictionary phrase in words
const MaxWords = 3

type rawPack struct {
	Version           int                 `json:"version"`
	Meta              map[string]any      `json:"meta"`
	DefaultConfidence float64             `json:"default_confidence"`
	Terms             map[string][]string `json:"terms"`
}

// Term is one dictionary entry
type Term struct {
	Canonical  string
	Label      entity.Label
	Confidence float64
	Words      int
}

// Pack holds the folded term index
type Pack struct {
	Version int
	Meta    map[string]any

	// folded key -> term meta
	Index map[string]Term
}

// Load builds the index from the embedded terms.json
func Load() (*Pack, error) {
	return LoadBytes(embedded)
}

// LoadBytes builds a term index from raw JSON. Split out from Load so tests
// can feed small tables
func LoadBytes(raw []byte) (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("lexicon: parse terms.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("lexicon: unsupported terms.json version %d (want 1)", rp.Version)
	}
	if len(rp.Terms) == 0 {
		return nil, fmt.Errorf("lexicon: terms.json has no terms")
	}
	if rp.DefaultConfidence <= 0 {
		rp.DefaultConfidence = 0.7
	}

	p := &Pack{
		Version: rp.Version,
		Meta:    rp.Meta,
		Index:   make(map[string]Term, 512),
	}
	for rawLabel, terms := range rp.Terms {
		lab := entity.Label(rawLabel)
		switch lab {
		case entity.LabelProblem, entity.LabelTreatment, entity.LabelTest:
		default:
			return nil, fmt.Errorf("lexicon: unknown label %q", rawLabel)
		}
		for _, t := range terms {
			key := normalize.Fold(t)
			if key == "" {
				return nil, fmt.Errorf("lexicon: term %q folds to empty", t)
			}
			words := countWords(key)
			if words > MaxWords {
				return nil, fmt.Errorf("lexicon: term %q exceeds %d words", t, MaxWords)
			}
			if prev, dup := p.Index[key]; dup && prev.Label != lab {
				return nil, fmt.Errorf("lexicon: term %q listed under %q and %q", t, prev.Label, lab)
			}
			p.Index[key] = Term{
				Canonical:  t,
				Label:      lab,
				Confidence: rp.DefaultConfidence,
				Words:      words,
			}
		}
	}
	return p, nil
}

func countWords(key string) int {
	n := 1
	for i := 0; i < len(key); i++ {
		if key[i] == ' ' {
			n++
		}
	}
	return n
}
