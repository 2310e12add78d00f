// Package testutil holds generators shared by the property tests.
package testutil

import (
	"strconv"
	"strings"

	"pgregory.net/rapid"
)

var keys = []string{"a", "b", "id", "name", "Int", "string", "array1", "x y", "ünï", "mIxEd"}

var scalars = []string{
	`0`, `-0`, `1.50`, `1e3`, `42`, `-7.25E-2`, `true`, `false`, `null`,
	`""`, `"i"`, `"Istanbul"`, `"aString"`, `"tab\tquote\""`, `"ÅÄÖ"`,
}

// JSON generates small, valid JSON documents with objects and arrays nested
// up to maxDepth levels. Object keys are unique.
func JSON(maxDepth int) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		var b strings.Builder
		writeValue(t, &b, maxDepth)
		return b.String()
	})
}

// Document generates JSON whose root is an object or an array
func Document(maxDepth int) *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		var b strings.Builder
		if rapid.Bool().Draw(t, "rootIsArray") {
			writeArray(t, &b, maxDepth)
		} else {
			writeObject(t, &b, maxDepth)
		}
		return b.String()
	})
}

func writeValue(t *rapid.T, b *strings.Builder, depth int) {
	kind := 0
	if depth > 0 {
		kind = rapid.IntRange(0, 2).Draw(t, "kind")
	}
	switch kind {
	case 1:
		writeObject(t, b, depth)
	case 2:
		writeArray(t, b, depth)
	default:
		b.WriteString(rapid.SampledFrom(scalars).Draw(t, "scalar"))
	}
}

func writeObject(t *rapid.T, b *strings.Builder, depth int) {
	n := rapid.IntRange(0, 4).Draw(t, "fields")
	picked := rapid.SliceOfNDistinct(rapid.SampledFrom(keys), n, n, rapid.ID[string]).Draw(t, "keys")
	b.WriteByte('{')
	for i, key := range picked {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Quote(key))
		b.WriteByte(':')
		writeValue(t, b, depth-1)
	}
	b.WriteByte('}')
}

func writeArray(t *rapid.T, b *strings.Builder, depth int) {
	n := rapid.IntRange(0, 4).Draw(t, "items")
	b.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteByte(',')
		}
		writeValue(t, b, depth-1)
	}
	b.WriteByte(']')
}
