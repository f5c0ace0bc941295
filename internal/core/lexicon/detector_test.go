package lexicon

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

func TestLoad_EmbeddedIndex(t *testing.T) {
	p := mustLoad(t)
	if len(p.Index) == 0 {
		t.Fatal("empty index")
	}
	for key, term := range p.Index {
		if term.Words < 1 || term.Words > MaxWords {
			t.Fatalf("term %q has %d words", key, term.Words)
		}
		if term.Confidence <= 0 || term.Confidence > 1 {
			t.Fatalf("term %q confidence %v", key, term.Confidence)
		}
	}
}

func TestLoadBytes_Rejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"bad json", `{`},
		{"wrong version", `{"version":2,"terms":{"PROBLEM":["x"]}}`},
		{"no terms", `{"version":1,"terms":{}}`},
		{"unknown label", `{"version":1,"terms":{"PERSON":["mario"]}}`},
		{"too many words", `{"version":1,"terms":{"PROBLEM":["a b c d"]}}`},
		{"cross-label duplicate", `{"version":1,"terms":{"PROBLEM":["tac"],"TEST":["tac"]}}`},
	}
	for _, tc := range cases {
		if _, err := LoadBytes([]byte(tc.raw)); err == nil {
			t.Errorf("%s: want error", tc.name)
		}
	}
}

func TestScan_SingleAndPhrase(t *testing.T) {
	d := New(mustLoad(t))

	text := "Sospetta angina pectoris, richiesta prova da sforzo."
	got := d.Scan(text)
	if len(got) != 2 {
		t.Fatalf("entities = %d, want 2: %+v", len(got), got)
	}
	if got[0].Text != "angina pectoris" || got[0].Label != entity.LabelProblem {
		t.Fatalf("first = %+v", got[0])
	}
	if got[1].Text != "prova da sforzo" || got[1].Label != entity.LabelTest {
		t.Fatalf("second = %+v", got[1])
	}
	for _, e := range got {
		if e.Source != entity.SourceDictionary {
			t.Fatalf("source = %v", e.Source)
		}
		if text[e.Start:e.End] != e.Text {
			t.Fatalf("offsets do not index input: %+v", e)
		}
	}
}

func TestScan_CaseAndAccentInsensitive(t *testing.T) {
	d := New(mustLoad(t))

	got := d.Scan("Quadro di OBESITA' severa") // written without the accent
	if len(got) != 1 || got[0].Label != entity.LabelProblem {
		t.Fatalf("got %+v", got)
	}
	if got[0].Text != "OBESITA" {
		t.Fatalf("surface = %q", got[0].Text)
	}

	got = d.Scan("quadro di obesità severa")
	if len(got) != 1 || got[0].Text != "obesità" {
		t.Fatalf("got %+v", got)
	}
}

func TestScan_GreedyLongestPhrase(t *testing.T) {
	raw := `{"version":1,"terms":{
		"TEST": ["ecografia", "ecografia addominale"]
	}}`
	p, err := LoadBytes([]byte(raw))
	if err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}

	got := New(p).Scan("ecografia addominale urgente")
	if len(got) != 1 {
		t.Fatalf("entities = %d: %+v", len(got), got)
	}
	if got[0].Text != "ecografia addominale" {
		t.Fatalf("kept %q, want the longer phrase", got[0].Text)
	}
}

func TestScan_NoSubwordMatches(t *testing.T) {
	d := New(mustLoad(t))
	// "tac" inside "attacco" must not match
	if got := d.Scan("un attacco improvviso"); len(got) != 0 {
		t.Fatalf("got %+v, want none", got)
	}
}

func TestScan_Empty(t *testing.T) {
	if got := New(mustLoad(t)).Scan(""); got != nil {
		t.Fatalf("got %+v", got)
	}
	if got := New(mustLoad(t)).Scan("...!!!"); got != nil {
		t.Fatalf("got %+v", got)
	}
}
