package model

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// wordPiece is a greedy longest-match-first sub-word tokenizer over a BERT
// style vocab.txt. It keeps byte offsets into the original text for every
// piece so downstream spans can be sliced from the exact input
type wordPiece struct {
	vocab     map[string]int
	unkID     int
	clsID     int
	sepID     int
	padID     int
	lowercase bool
	maxChars  int // per word; longer words become [UNK]
}

// piece is one sub-word unit with offsets into the original text
type piece struct {
	id    int
	start int
	end   int
}

func loadWordPiece(vocabPath string, lowercase bool) (*wordPiece, error) {
	f, err := os.Open(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("model: open vocab: %w", err)
	}
	defer f.Close()

	wp := &wordPiece{
		vocab:     make(map[string]int, 32_000),
		lowercase: lowercase,
		maxChars:  100,
	}
	sc := bufio.NewScanner(f)
	for i := 0; sc.Scan(); i++ {
		wp.vocab[strings.TrimRight(sc.Text(), "\r\n")] = i
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("model: read vocab: %w", err)
	}

	var ok bool
	if wp.unkID, ok = wp.vocab["[UNK]"]; !ok {
		return nil, fmt.Errorf("model: vocab missing [UNK]")
	}
	if wp.clsID, ok = wp.vocab["[CLS]"]; !ok {
		return nil, fmt.Errorf("model: vocab missing [CLS]")
	}
	if wp.sepID, ok = wp.vocab["[SEP]"]; !ok {
		return nil, fmt.Errorf("model: vocab missing [SEP]")
	}
	wp.padID = wp.vocab["[PAD]"]
	return wp, nil
}

// Tokenize splits text into word pieces with byte offsets.
// Words are runs of letters/digits; every other non-space rune is its own token
func (wp *wordPiece) Tokenize(text string) []piece {
	var out []piece
	for i := 0; i < len(text); {
		r, sz := utf8.DecodeRuneInString(text[i:])
		switch {
		case unicode.IsSpace(r):
			i += sz
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			j := i + sz
			for j < len(text) {
				nr, nsz := utf8.DecodeRuneInString(text[j:])
				if !unicode.IsLetter(nr) && !unicode.IsDigit(nr) {
					break
				}
				j += nsz
			}
			out = append(out, wp.splitWord(text, i, j)...)
			i = j
		default:
			out = append(out, wp.lookupPiece(text[i:i+sz], i, i+sz, false))
			i += sz
		}
	}
	return out
}

// splitWord applies greedy longest-match wordpiece splitting to text[ws:we).
// Normalization (lowercasing, accent stripping) is applied per rune with the
// original byte offsets kept alongside, so sub-piece offsets stay exact even
// when normalization changes byte lengths
func (wp *wordPiece) splitWord(text string, ws, we int) []piece {
	type nrune struct {
		s    string // normalized form, may be empty for stripped marks
		off  int    // original byte offset
		size int    // original byte size
	}
	var runes []nrune
	for i := ws; i < we; {
		r, sz := utf8.DecodeRuneInString(text[i:])
		nf := string(r)
		if wp.lowercase {
			nf = strings.ToLower(nf)
		}
		nf = norm.NFD.String(nf)
		var b strings.Builder
		for _, nr := range nf {
			if !unicode.Is(unicode.Mn, nr) {
				b.WriteRune(nr)
			}
		}
		runes = append(runes, nrune{s: b.String(), off: i, size: sz})
		i += sz
	}
	if len(runes) > wp.maxChars {
		return []piece{{id: wp.unkID, start: ws, end: we}}
	}

	var out []piece
	pos := 0
	for pos < len(runes) {
		end := len(runes)
		found := false
		for end > pos {
			var sb strings.Builder
			if pos > 0 {
				sb.WriteString("##")
			}
			for _, nr := range runes[pos:end] {
				sb.WriteString(nr.s)
			}
			if id, ok := wp.vocab[sb.String()]; ok {
				out = append(out, piece{
					id:    id,
					start: runes[pos].off,
					end:   runes[end-1].off + runes[end-1].size,
				})
				found = true
				break
			}
			end--
		}
		if !found {
			// whole word becomes unknown, per BERT reference behavior
			return []piece{{id: wp.unkID, start: ws, end: we}}
		}
		pos = end
	}
	return out
}

func (wp *wordPiece) lookupPiece(s string, start, end int, cont bool) piece {
	key := s
	if wp.lowercase {
		key = strings.ToLower(key)
	}
	if cont {
		key = "##" + key
	}
	if id, ok := wp.vocab[key]; ok {
		return piece{id: id, start: start, end: end}
	}
	return piece{id: wp.unkID, start: start, end: end}
}
