package service

import (
	"context"
	"testing"

	"medner/internal/core/lexicon"
	"medner/internal/core/patterns"
	"medner/internal/core/pipeline"
	"medner/internal/services/api/annotate/domain"
)

type captureRecorder struct {
	events []domain.Event
}

func (c *captureRecorder) Record(_ context.Context, ev domain.Event) {
	c.events = append(c.events, ev)
}

func newSvc(t *testing.T, rec domain.Recorder) *Svc {
	t.Helper()
	pp, err := patterns.Load()
	if err != nil {
		t.Fatalf("patterns.Load: %v", err)
	}
	lp, err := lexicon.Load()
	if err != nil {
		t.Fatalf("lexicon.Load: %v", err)
	}
	ann := pipeline.New(pipeline.Deps{
		Patterns: patterns.New(pp),
		Lexicon:  lexicon.New(lp),
	})
	return New(ann, rec)
}

func TestAnalyze_SourceToggle(t *testing.T) {
	s := newSvc(t, nil)

	in := domain.AnalyzeInput{Text: "paziente con febbre alta"}
	out, err := s.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.TotalEntities != 1 || out.Entities[0].Source != "" {
		t.Fatalf("got %+v", out.Entities)
	}
	if out.ModelVersion != "patterns+lexicon" || out.Timestamp == "" {
		t.Fatalf("model_version = %q, timestamp = %q", out.ModelVersion, out.Timestamp)
	}

	in.IncludeSource = true
	out, err = s.Analyze(context.Background(), in)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.Entities[0].Source != "pattern" {
		t.Fatalf("source = %q", out.Entities[0].Source)
	}
}

func TestAnalyze_ThresholdOverride(t *testing.T) {
	s := newSvc(t, nil)

	strict := 0.95
	out, err := s.Analyze(context.Background(), domain.AnalyzeInput{
		Text:                "paziente con febbre alta",
		ConfidenceThreshold: &strict,
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out.TotalEntities != 0 {
		t.Fatalf("cutoff 0.95 kept %+v", out.Entities)
	}
}

func TestBatch_OrderAndTotals(t *testing.T) {
	rec := &captureRecorder{}
	s := newSvc(t, rec)

	out, err := s.Batch(context.Background(), domain.BatchInput{
		Texts: []string{"sospetto ictus", "", "richiesto emocromo completo"},
	})
	if err != nil {
		t.Fatalf("Batch: %v", err)
	}
	if out.TotalTexts != 3 || len(out.Results) != 3 {
		t.Fatalf("totals: %+v", out)
	}
	if out.Results[0].TotalEntities != 1 || out.Results[1].TotalEntities != 0 || out.Results[2].TotalEntities != 1 {
		t.Fatalf("per-text counts wrong: %+v", out.Results)
	}

	if len(rec.events) != 1 {
		t.Fatalf("events = %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Endpoint != "batch" || ev.Texts != 3 || ev.Tally.Entities != 2 {
		t.Fatalf("event = %+v", ev)
	}
	// "sospetto ictus" is a PROBLEM, "emocromo completo" a TEST; both
	// come from the pattern table with the model disabled
	if ev.Tally.Problems != 1 || ev.Tally.Tests != 1 || ev.Tally.FromPattern != 2 {
		t.Fatalf("tally = %+v", ev.Tally)
	}
}

func TestAnalyze_RecordsEvent(t *testing.T) {
	rec := &captureRecorder{}
	s := newSvc(t, rec)

	if _, err := s.Analyze(context.Background(), domain.AnalyzeInput{Text: "tac torace"}); err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if len(rec.events) != 1 || rec.events[0].Endpoint != "analyze" || rec.events[0].Texts != 1 {
		t.Fatalf("events = %+v", rec.events)
	}
}

func TestExamples_NotEmpty(t *testing.T) {
	s := newSvc(t, nil)
	out, err := s.Examples(context.Background())
	if err != nil {
		t.Fatalf("Examples: %v", err)
	}
	if len(out.Examples) == 0 {
		t.Fatal("no examples")
	}
	for _, ex := range out.Examples {
		if ex.Title == "" || ex.Text == "" {
			t.Fatalf("incomplete example: %+v", ex)
		}
	}
}
