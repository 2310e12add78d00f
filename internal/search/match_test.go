package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFindAll(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		query string
		want  [][2]int
	}{
		{"empty query", "anything", "", nil},
		{"no match", "string", "x", nil},
		{"single", "array1", "array1", [][2]int{{0, 6}}},
		{"case insensitive", "String", "sTR", [][2]int{{0, 3}}},
		{"multiple", "Istanbul is", "i", [][2]int{{0, 1}, {9, 10}}},
		{"non overlapping", "aaaa", "aa", [][2]int{{0, 2}, {2, 4}}},
		{"non ascii offsets", "ÅÄÖ äö", "äö", [][2]int{{2, 6}, {7, 11}}},
		{"kelvin sign", "K", "k", [][2]int{{0, 3}}},
		{"query longer than text", "ab", "abc", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindAll(tt.text, tt.query))
		})
	}
}
