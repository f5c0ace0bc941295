// Package entity defines the labeled, confidence-scored text span that the
// detection pipeline produces and merges
package entity

// Label is the clinical category of a detected span.
// The three standard categories mirror the annotation scheme the sequence
// model was trained on; custom labels are allowed for extension tables
type Label string

const (
	// LabelProblem marks symptoms, diseases, and other clinical findings
	LabelProblem Label = "PROBLEM"
	// LabelTreatment marks drugs, therapies, and procedures that treat
	LabelTreatment Label = "TREATMENT"
	// LabelTest marks diagnostic exams, imaging, and lab work
	LabelTest Label = "TEST"
)

// Source records which detector produced an entity
type Source uint8

const (
	// SourceModel is the neural sequence model
	SourceModel Source = iota
	// SourcePattern is the regex pattern detector
	SourcePattern
	// SourceDictionary is the lexicon lookup detector
	SourceDictionary
)

// String returns the wire form of a Source
func (s Source) String() string {
	switch s {
	case SourceModel:
		return "model"
	case SourcePattern:
		return "pattern"
	case SourceDictionary:
		return "dictionary"
	default:
		return "unknown"
	}
}

// Rank returns the merge precedence of a Source, lower wins.
// model > pattern > dictionary is the fixed trust ordering of the system
// and must not change without bumping the pipeline version
func (s Source) Rank() int {
	switch s {
	case SourceModel:
		return 0
	case SourcePattern:
		return 1
	case SourceDictionary:
		return 2
	default:
		return 3
	}
}

// MarshalText implements encoding.TextMarshaler so Source serializes as its name
func (s Source) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Entity is a [Start,End) byte span of the original input text carrying a
// category, a clamped confidence, and detector provenance
type Entity struct {
	Text       string  `json:"text"`
	Label      Label   `json:"label"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source"`
}

// New constructs an Entity with the confidence clamped to [0,1].
// All detectors construct through here so the range invariant holds
// structurally rather than by convention
func New(text string, label Label, start, end int, confidence float64, src Source) Entity {
	return Entity{
		Text:       text,
		Label:      label,
		Start:      start,
		End:        end,
		Confidence: Clamp(confidence),
		Source:     src,
	}
}

// Clamp forces c into [0,1]. NaN clamps to 0
func Clamp(c float64) float64 {
	if !(c > 0) { // also catches NaN
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// Len returns the span length in bytes
func (e Entity) Len() int { return e.End - e.Start }

// Overlaps reports whether e and o share at least one byte position
func (e Entity) Overlaps(o Entity) bool {
	return e.Start < o.End && o.Start < e.End
}
