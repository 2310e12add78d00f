package jsonb

import (
	"strings"

	"github.com/rebeliceyang/lazyjson/internal/models"
)

// PathPart is one step of a Path: an object key or an array index
type PathPart struct {
	Key   string
	Index bool
}

// Path locates a value inside a document, e.g. $.user.address[0].city
type Path struct {
	Parts []PathPart
}

// String returns the JSONPath notation of the path
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("$")
	for _, part := range p.Parts {
		switch {
		case part.Index:
			b.WriteString("[" + part.Key + "]")
		case isIdentifier(part.Key):
			b.WriteString("." + part.Key)
		default:
			b.WriteString("[" + models.Quote(part.Key) + "]")
		}
	}
	return b.String()
}

// Pointer returns the RFC 6901 JSON Pointer of the path
func (p Path) Pointer() string {
	var b strings.Builder
	for _, part := range p.Parts {
		b.WriteByte('/')
		key := strings.ReplaceAll(part.Key, "~", "~0")
		b.WriteString(strings.ReplaceAll(key, "/", "~1"))
	}
	return b.String()
}

// PathOf returns the path of the row at index i of list. End brackets
// resolve to the path of the collapsable they close.
func PathOf(list models.List, i int) Path {
	if i < 0 || i >= len(list) {
		return Path{}
	}
	if end, ok := list[i].(models.EndBracket); ok {
		if owner := list.IndexOf(end.OwnerID()); owner >= 0 {
			i = owner
		}
	}

	var parts []PathPart
	for j := i; j >= 0; j = list.ParentIndex(j) {
		key, ok := models.KeyOf(list[j])
		if !ok {
			break
		}
		parts = append(parts, PathPart{Key: key, Index: models.ParentTypeOf(list[j]) == models.ParentArray})
	}
	for l, r := 0, len(parts)-1; l < r; l, r = l+1, r-1 {
		parts[l], parts[r] = parts[r], parts[l]
	}
	return Path{Parts: parts}
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '$' || 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' {
			continue
		}
		if i > 0 && '0' <= r && r <= '9' {
			continue
		}
		return false
	}
	return true
}
