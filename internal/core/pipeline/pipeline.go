// Package pipeline composes the three detection sources into a single
// annotator. Each source runs independently over the raw input text; the
// merged, threshold-filtered result is what callers see
package pipeline

import (
	"context"
	"time"

	"medner/internal/core/entity"
	"medner/internal/core/lexicon"
	"medner/internal/core/merge"
	"medner/internal/core/model"
	"medner/internal/core/patterns"
	"medner/internal/core/spanner"
	"medner/internal/platform/logger"
)

// DefaultThreshold is the confidence cutoff applied when a caller does not
// supply one
const DefaultThreshold = 0.6

// Deps carries the detection sources. Model may be nil when no neural
// model is configured; the other two are required
type Deps struct {
	Model    model.Port
	Patterns *patterns.Detector
	Lexicon  *lexicon.Detector
	Log      *logger.Logger
}

// Options controls annotator behavior
type Options struct {
	// Threshold is the default confidence cutoff (0 = DefaultThreshold)
	Threshold float64
}

// Result is one annotated document
type Result struct {
	Text           string          `json:"text"`
	Entities       []entity.Entity `json:"entities"`
	TotalEntities  int             `json:"total_entities"`
	ElapsedSeconds float64         `json:"processing_time"`
}

// Annotator runs the full detection pipeline
type Annotator struct {
	deps Deps
	sp   *spanner.Spanner
	opts Options
}

// New creates an Annotator with default options
func New(deps Deps) *Annotator {
	return NewWithOptions(deps, Options{})
}

// NewWithOptions creates an Annotator with custom options
func NewWithOptions(deps Deps, opts Options) *Annotator {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if deps.Patterns == nil || deps.Lexicon == nil {
		panic("pipeline: Patterns and Lexicon deps are required")
	}
	if deps.Model == nil {
		deps.Model = model.Disabled{}
	}
	return &Annotator{deps: deps, sp: spanner.New(nil), opts: opts}
}

// Threshold returns the annotator's default confidence cutoff
func (a *Annotator) Threshold() float64 { return a.opts.Threshold }

// ModelEnabled reports whether a neural model backs this annotator
func (a *Annotator) ModelEnabled() bool {
	_, off := a.deps.Model.(model.Disabled)
	return !off
}

// Annotate runs all sources over text and merges their candidates using
// the annotator's default threshold
func (a *Annotator) Annotate(ctx context.Context, text string) (Result, error) {
	return a.AnnotateWithThreshold(ctx, text, a.opts.Threshold)
}

// AnnotateWithThreshold is Annotate with a per-call confidence cutoff.
// The cutoff is clamped into [0,1], never rejected. Empty input returns an
// empty result; a failing model contributes zero candidates instead of
// failing the call. Context cancellation is the only error path
func (a *Annotator) AnnotateWithThreshold(ctx context.Context, text string, threshold float64) (Result, error) {
	started := time.Now()
	threshold = entity.Clamp(threshold)

	res := Result{Text: text, Entities: []entity.Entity{}}
	if text == "" {
		res.ElapsedSeconds = time.Since(started).Seconds()
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	var cands []entity.Entity

	toks, err := a.deps.Model.Infer(ctx, text)
	switch {
	case err == nil:
		cands = append(cands, a.sp.Decode(text, toks)...)
	case ctx.Err() != nil:
		return Result{}, ctx.Err()
	default:
		// degraded run: patterns and dictionary still answer
		if a.deps.Log != nil {
			a.deps.Log.Warn().Err(err).Msg("model inference unavailable")
		}
	}

	cands = append(cands, a.deps.Patterns.Scan(text)...)
	cands = append(cands, a.deps.Lexicon.Scan(text)...)

	for _, e := range merge.Resolve(cands) {
		if e.Confidence >= threshold {
			res.Entities = append(res.Entities, e)
		}
	}
	res.TotalEntities = len(res.Entities)
	res.ElapsedSeconds = time.Since(started).Seconds()
	return res, nil
}
