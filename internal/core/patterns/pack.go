// Package patterns detects clinical entities with curated regular
// expressions. Rules live in the embedded rules.json and are compiled once
// at load; matching is case-insensitive over the original text so spans
// always index the caller's input
package patterns

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"medner/internal/core/entity"
)

//go:embed rules.json
var embedded []byte

type rawRule struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Pattern    string  `json:"pattern"`
	Confidence float64 `json:"confidence,omitempty"`
}

type rawPack struct {
	Version           int            `json:"version"`
	Meta              map[string]any `json:"meta"`
	DefaultConfidence float64        `json:"default_confidence"`
	Rules             []rawRule      `json:"rules"`
}

// Rule is one compiled detection rule
type Rule struct {
	ID         string
	Label      entity.Label
	Confidence float64
}

// Pack holds the compiled rule set
type Pack struct {
	Version int
	Meta    map[string]any

	// 1:1 with Compiled
	Rules    []Rule
	Compiled []*regexp.Regexp
}

// Load compiles the embedded rules.json
func Load() (*Pack, error) {
	return LoadBytes(embedded)
}

// LoadBytes compiles a rule table from raw JSON. Split out from Load so
// tests can feed small tables
func LoadBytes(raw []byte) (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(raw, &rp); err != nil {
		return nil, fmt.Errorf("patterns: parse rules.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("patterns: unsupported rules.json version %d (want 1)", rp.Version)
	}
	if len(rp.Rules) == 0 {
		return nil, fmt.Errorf("patterns: rules.json has no rules")
	}
	if rp.DefaultConfidence <= 0 {
		rp.DefaultConfidence = 0.8
	}

	p := &Pack{Version: rp.Version, Meta: rp.Meta}
	for _, r := range rp.Rules {
		if r.ID == "" || r.Pattern == "" {
			return nil, fmt.Errorf("patterns: rule with empty id or pattern")
		}
		lab := entity.Label(r.Label)
		switch lab {
		case entity.LabelProblem, entity.LabelTreatment, entity.LabelTest:
		default:
			return nil, fmt.Errorf("patterns: rule %q has unknown label %q", r.ID, r.Label)
		}
		re, err := regexp.Compile("(?i)" + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("patterns: compile %q: %w", r.ID, err)
		}
		conf := r.Confidence
		if conf <= 0 {
			conf = rp.DefaultConfidence
		}
		p.Rules = append(p.Rules, Rule{ID: r.ID, Label: lab, Confidence: conf})
		p.Compiled = append(p.Compiled, re)
	}

	// Deterministic iteration for tests/debug
	idx := make([]int, len(p.Rules))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(i, j int) bool { return p.Rules[idx[i]].ID < p.Rules[idx[j]].ID })
	rules := make([]Rule, len(idx))
	compiled := make([]*regexp.Regexp, len(idx))
	for i, k := range idx {
		rules[i], compiled[i] = p.Rules[k], p.Compiled[k]
	}
	p.Rules, p.Compiled = rules, compiled

	return p, nil
}
