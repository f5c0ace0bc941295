package merge

import (
	"reflect"
	"testing"

	"medner/internal/core/entity"
)

func ent(text string, lab entity.Label, start, end int, conf float64, src entity.Source) entity.Entity {
	return entity.New(text, lab, start, end, conf, src)
}

func TestResolve_ModelBeatsPattern(t *testing.T) {
	model := ent("diabete", entity.LabelProblem, 13, 20, 0.55, entity.SourceModel)
	pattern := ent("diabete mellito", entity.LabelProblem, 13, 28, 0.95, entity.SourcePattern)

	got := Resolve([]entity.Entity{pattern, model})
	if len(got) != 1 {
		t.Fatalf("entities = %d: %+v", len(got), got)
	}
	// precedence outranks both span length and confidence
	if got[0].Source != entity.SourceModel || got[0].Text != "diabete" {
		t.Fatalf("winner = %+v", got[0])
	}
}

func TestResolve_PatternBeatsDictionary(t *testing.T) {
	pattern := ent("febbre alta", entity.LabelProblem, 0, 11, 0.8, entity.SourcePattern)
	dict := ent("febbre", entity.LabelProblem, 0, 6, 0.7, entity.SourceDictionary)

	got := Resolve([]entity.Entity{dict, pattern})
	if len(got) != 1 || got[0].Source != entity.SourcePattern {
		t.Fatalf("got %+v", got)
	}
}

func TestResolve_SameSourceLongerWins(t *testing.T) {
	long := ent("insufficienza renale acuta", entity.LabelProblem, 10, 36, 0.7, entity.SourcePattern)
	short := ent("insufficienza renale", entity.LabelProblem, 10, 30, 0.9, entity.SourcePattern)

	got := Resolve([]entity.Entity{short, long})
	if len(got) != 1 || got[0].Text != "insufficienza renale acuta" {
		t.Fatalf("got %+v", got)
	}
}

func TestResolve_SameSourceSameLengthHigherConfidence(t *testing.T) {
	lo := ent("glicemia", entity.LabelTest, 5, 13, 0.6, entity.SourceModel)
	hi := ent("glicemia", entity.LabelProblem, 5, 13, 0.9, entity.SourceModel)

	got := Resolve([]entity.Entity{lo, hi})
	if len(got) != 1 || got[0].Confidence != 0.9 || got[0].Label != entity.LabelProblem {
		t.Fatalf("got %+v", got)
	}
}

func TestResolve_DisjointAllKeptSorted(t *testing.T) {
	a := ent("tac", entity.LabelTest, 30, 33, 0.8, entity.SourcePattern)
	b := ent("asma", entity.LabelProblem, 0, 4, 0.7, entity.SourceDictionary)
	c := ent("insulina", entity.LabelTreatment, 10, 18, 0.9, entity.SourceModel)

	got := Resolve([]entity.Entity{a, b, c})
	if len(got) != 3 {
		t.Fatalf("entities = %d", len(got))
	}
	if got[0].Start != 0 || got[1].Start != 10 || got[2].Start != 30 {
		t.Fatalf("not sorted by start: %+v", got)
	}
}

func TestResolve_LoserFullySuppressed(t *testing.T) {
	// The dictionary span loses to the model span and must not block the
	// later pattern span it also overlapped
	model := ent("dolore", entity.LabelProblem, 0, 6, 0.9, entity.SourceModel)
	dict := ent("dolore toracico persistente", entity.LabelProblem, 0, 27, 0.7, entity.SourceDictionary)
	pattern := ent("persistente", entity.LabelProblem, 16, 27, 0.8, entity.SourcePattern)

	got := Resolve([]entity.Entity{dict, model, pattern})
	if len(got) != 2 {
		t.Fatalf("entities = %d: %+v", len(got), got)
	}
	if got[0].Source != entity.SourceModel || got[1].Source != entity.SourcePattern {
		t.Fatalf("got %+v", got)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	in := []entity.Entity{
		ent("diabete mellito", entity.LabelProblem, 13, 28, 0.85, entity.SourcePattern),
		ent("diabete", entity.LabelProblem, 13, 20, 0.7, entity.SourceDictionary),
		ent("emocromo", entity.LabelTest, 40, 48, 0.9, entity.SourceModel),
	}
	once := Resolve(in)
	twice := Resolve(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestResolve_InputNotModified(t *testing.T) {
	in := []entity.Entity{
		ent("b", entity.LabelTest, 5, 6, 0.5, entity.SourceDictionary),
		ent("a", entity.LabelTest, 0, 1, 0.5, entity.SourceDictionary),
	}
	snapshot := make([]entity.Entity, len(in))
	copy(snapshot, in)
	Resolve(in)
	if !reflect.DeepEqual(in, snapshot) {
		t.Fatalf("input slice was reordered: %+v", in)
	}
}

func TestResolve_Empty(t *testing.T) {
	if got := Resolve(nil); got != nil {
		t.Fatalf("got %+v", got)
	}
}
