package jsonb

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

// Format renders a node and its whole subtree as JSON, regardless of the
// expansion state. Member order and number literals are kept as parsed.
// An empty indent produces compact single-line output.
func Format(n models.Node, indent string) (string, error) {
	var b strings.Builder
	if err := writeNode(&b, n, indent, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Compact renders a node as single-line JSON
func Compact(n models.Node) (string, error) {
	return Format(n, "")
}

func writeNode(b *strings.Builder, n models.Node, indent string, depth int) error {
	switch v := n.(type) {
	case models.Primitive:
		b.WriteString(v.Value().Literal())
		return nil
	case models.Collapsable:
		opening, closing := v.Kind().Brackets()
		b.WriteString(opening)
		if v.Len() == 0 {
			b.WriteString(closing)
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if i > 0 {
				b.WriteByte(',')
			}
			newline(b, indent, depth+1)
			child := v.ChildAt(i)
			if v.Kind() == models.KindObject {
				key, _ := models.KeyOf(child)
				b.WriteString(models.Quote(key))
				b.WriteByte(':')
				if indent != "" {
					b.WriteByte(' ')
				}
			}
			if err := writeNode(b, child, indent, depth+1); err != nil {
				return err
			}
		}
		newline(b, indent, depth)
		b.WriteString(closing)
		return nil
	case models.EndBracket:
		return fmt.Errorf("cannot format end bracket %s", v.ID())
	default:
		return fmt.Errorf("cannot format %T", n)
	}
}

func newline(b *strings.Builder, indent string, depth int) {
	if indent == "" {
		return
	}
	b.WriteByte('\n')
	b.WriteString(strings.Repeat(indent, depth))
}

// Truncate shortens s to at most maxWidth terminal cells, ending with "..."
// when it had to cut. It prefers to cut at a separator in the second half.
func Truncate(s string, maxWidth int) string {
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	if maxWidth <= 3 {
		return runewidth.Truncate(s, maxWidth, "")
	}

	truncated := runewidth.Truncate(s, maxWidth-3, "")
	lastGood := strings.LastIndexAny(truncated, " ,{}[]")
	if lastGood > len(truncated)/2 {
		truncated = truncated[:lastGood]
	}
	return truncated + "..."
}

// Line renders a single row of a flattened list as plain text, the way the
// tree view shows it without colors or icons.
func Line(n models.Node) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", n.Level()))
	if key, ok := models.KeyOf(n); ok {
		if models.ParentTypeOf(n) == models.ParentObject {
			key = models.Quote(key)
		}
		b.WriteString(key + ": ")
	}
	switch v := n.(type) {
	case models.Primitive:
		b.WriteString(v.Value().Literal())
	case models.Collapsable:
		opening, closing := v.Kind().Brackets()
		b.WriteString(opening)
		if v.State().IsOpen() {
			return b.String()
		}
		b.WriteString("…" + closing)
	case models.EndBracket:
		_, closing := v.Kind().Brackets()
		b.WriteString(closing)
	}
	if !n.IsLastItem() {
		b.WriteByte(',')
	}
	return b.String()
}
