package patterns

import (
	"testing"

	"medner/internal/core/entity"
)

func mustLoad(t *testing.T) *Pack {
	t.Helper()
	p, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return p
}

func TestLoad_EmbeddedCompiles(t *testing.T) {
	p := mustLoad(t)
	if len(p.Rules) == 0 || len(p.Rules) != len(p.Compiled) {
		t.Fatalf("rules=%d compiled=%d", len(p.Rules), len(p.Compiled))
	}
	for _, r := range p.Rules {
		if r.Confidence <= 0 || r.Confidence > 1 {
			t.Fatalf("rule %q confidence %v out of range", r.ID, r.Confidence)
		}
	}
}

func TestLoadBytes_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"bad json", `{`},
		{"wrong version", `{"version":9,"rules":[{"id":"x","label":"PROBLEM","pattern":"a"}]}`},
		{"no rules", `{"version":1,"rules":[]}`},
		{"unknown label", `{"version":1,"rules":[{"id":"x","label":"PERSON","pattern":"a"}]}`},
		{"bad regex", `{"version":1,"rules":[{"id":"x","label":"PROBLEM","pattern":"(["}]}`},
		{"empty pattern", `{"version":1,"rules":[{"id":"x","label":"PROBLEM","pattern":""}]}`},
	}
	for _, tc := range cases {
		if _, err := LoadBytes([]byte(tc.raw)); err == nil {
			t.Errorf("%s: want error", tc.name)
		}
	}
}

func TestScan_LongestFormMatches(t *testing.T) {
	d := New(mustLoad(t))

	text := "Paziente con diabete mellito di tipo 2 in terapia insulinica."
	got := d.Scan(text)
	if len(got) != 2 {
		t.Fatalf("entities = %d, want 2: %+v", len(got), got)
	}

	if got[0].Text != "diabete mellito di tipo 2" || got[0].Label != entity.LabelProblem {
		t.Fatalf("first = %+v", got[0])
	}
	if got[0].Start != 13 || text[got[0].Start:got[0].End] != got[0].Text {
		t.Fatalf("offsets do not index input: %+v", got[0])
	}
	if got[1].Text != "terapia insulinica" || got[1].Label != entity.LabelTreatment {
		t.Fatalf("second = %+v", got[1])
	}
	for _, e := range got {
		if e.Source != entity.SourcePattern {
			t.Fatalf("source = %v", e.Source)
		}
	}
}

func TestScan_CaseInsensitive(t *testing.T) {
	d := New(mustLoad(t))
	got := d.Scan("Richiesta TAC torace con mezzo di contrasto urgente")
	if len(got) != 1 {
		t.Fatalf("entities = %d: %+v", len(got), got)
	}
	if got[0].Text != "TAC torace con mezzo di contrasto" || got[0].Label != entity.LabelTest {
		t.Fatalf("got %+v", got[0])
	}
}

func TestScan_WordBoundaries(t *testing.T) {
	d := New(mustLoad(t))
	// "ictus" embedded inside a longer word must not match
	if got := d.Scan("lo stravictusismo non esiste"); len(got) != 0 {
		t.Fatalf("got %+v, want none", got)
	}
	if got := d.Scan("sospetto ictus ischemico"); len(got) != 1 {
		t.Fatalf("got %+v, want 1", got)
	}
}

func TestScan_OverlapKeepsLonger(t *testing.T) {
	raw := `{"version":1,"rules":[
		{"id":"short","label":"PROBLEM","pattern":"febbre","confidence":0.9},
		{"id":"long","label":"PROBLEM","pattern":"febbre alta","confidence":0.8}
	]}`
	p, err := LoadBytes([]byte(raw))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	got := New(p).Scan("paziente con febbre alta da due giorni")
	if len(got) != 1 {
		t.Fatalf("entities = %d: %+v", len(got), got)
	}
	if got[0].Text != "febbre alta" {
		t.Fatalf("kept %q, want the longer match", got[0].Text)
	}
}

func TestScan_MaxHits(t *testing.T) {
	d := NewWithOptions(mustLoad(t), Options{MaxHits: 1})
	got := d.Scan("emocromo completo e glicemia a digiuno")
	if len(got) != 1 {
		t.Fatalf("entities = %d, want capped at 1", len(got))
	}
}

func TestScan_Empty(t *testing.T) {
	if got := New(mustLoad(t)).Scan(""); got != nil {
		t.Fatalf("got %+v", got)
	}
}
