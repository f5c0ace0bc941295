package lexicon

import (
	"unicode"
	"unicode/utf8"

	"medner/internal/core/entity"
	"medner/internal/core/normalize"
)

// Detector runs greedy longest-phrase-first dictionary lookup
type Detector struct {
	p *Pack
}

// New creates a Detector over a loaded pack
func New(p *Pack) *Detector {
	return &Detector{p: p}
}

// word is one token of the input with byte offsets
type word struct {
	start int
	end   int
}

// Scan tokenizes text into words and probes the index with n-grams from
// MaxWords down to 1 at each position. A match consumes its words, so
// dictionary hits never overlap each other
func (d *Detector) Scan(text string) []entity.Entity {
	if text == "" {
		return nil
	}

	words := splitWords(text)
	if len(words) == 0 {
		return nil
	}

	var out []entity.Entity
	for i := 0; i < len(words); {
		matched := 0
		for n := min(MaxWords, len(words)-i); n >= 1; n-- {
			start, end := words[i].start, words[i+n-1].end
			t, ok := d.p.Index[normalize.Fold(text[start:end])]
			if !ok || t.Words != n {
				continue
			}
			out = append(out, entity.New(
				text[start:end], t.Label, start, end, t.Confidence, entity.SourceDictionary,
			))
			matched = n
			break
		}
		if matched == 0 {
			matched = 1
		}
		i += matched
	}
	return out
}

// splitWords returns the byte spans of letter/digit runs in text
func splitWords(text string) []word {
	var out []word
	for i := 0; i < len(text); {
		r, sz := utf8.DecodeRuneInString(text[i:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			i += sz
			continue
		}
		j := i + sz
		for j < len(text) {
			nr, nsz := utf8.DecodeRuneInString(text[j:])
			if !unicode.IsLetter(nr) && !unicode.IsDigit(nr) {
				break
			}
			j += nsz
		}
		out = append(out, word{start: i, end: j})
		i = j
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
