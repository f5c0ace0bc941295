package domain

import "context"

// ServicePort defines the service contract for annotate
type ServicePort interface {
	Analyze(ctx context.Context, in AnalyzeInput) (AnalyzeResponse, error)
	Batch(ctx context.Context, in BatchInput) (BatchResponse, error)
	Examples(ctx context.Context) (ExamplesResponse, error)
}

// Tally breaks entity counts down by label and by detection source
type Tally struct {
	Entities int

	Problems   int
	Treatments int
	Tests      int

	FromModel      int
	FromPattern    int
	FromDictionary int
}

// Add returns the elementwise sum of two tallies
func (t Tally) Add(o Tally) Tally {
	t.Entities += o.Entities
	t.Problems += o.Problems
	t.Treatments += o.Treatments
	t.Tests += o.Tests
	t.FromModel += o.FromModel
	t.FromPattern += o.FromPattern
	t.FromDictionary += o.FromDictionary
	return t
}

// Event is the usage record handed to the analytics sink after a call
type Event struct {
	Endpoint  string
	Texts     int
	Tally     Tally
	Threshold float64
	ElapsedMs int64
	UserID    string
}

// Recorder is implemented by the analytics module. Record must not block
// the request path
type Recorder interface {
	Record(ctx context.Context, ev Event)
}
