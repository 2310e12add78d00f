package search

import (
	"unicode"
	"unicode/utf8"
)

// matcher finds literal, case-insensitive occurrences of a query.
// Case-insensitivity uses simple Unicode case folding rune by rune, so every
// match maps back to an exact byte range of the searched text.
type matcher struct {
	folded []rune
}

func newMatcher(query string) matcher {
	folded := make([]rune, 0, len(query))
	for _, r := range query {
		folded = append(folded, fold(r))
	}
	return matcher{folded: folded}
}

func (m matcher) empty() bool {
	return len(m.folded) == 0
}

// FindAll returns the byte ranges [start, end) of all non-overlapping
// occurrences of query in text, scanning left to right.
// Matching is case-insensitive; an empty query matches nothing.
func FindAll(text, query string) [][2]int {
	return newMatcher(query).findAll(text)
}

func (m matcher) findAll(text string) [][2]int {
	if m.empty() {
		return nil
	}
	var matches [][2]int
	for start := 0; start < len(text); {
		if end, ok := m.matchAt(text, start); ok {
			matches = append(matches, [2]int{start, end})
			start = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		start += size
	}
	return matches
}

func (m matcher) matchAt(text string, start int) (int, bool) {
	pos := start
	for _, want := range m.folded {
		if pos >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[pos:])
		if fold(r) != want {
			return 0, false
		}
		pos += size
	}
	return pos, true
}

// fold maps r to the smallest rune of its simple case folding orbit
func fold(r rune) rune {
	if r < utf8.RuneSelf {
		if 'a' <= r && r <= 'z' {
			return r - 'a' + 'A'
		}
		return r
	}
	smallest := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		if f < smallest {
			smallest = f
		}
	}
	return smallest
}
