package models

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// ScalarKind is the JSON type of a primitive value
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBool
	ScalarNull
)

func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "string"
	case ScalarNumber:
		return "number"
	case ScalarBool:
		return "boolean"
	case ScalarNull:
		return "null"
	default:
		return "unknown"
	}
}

// Scalar is a JSON primitive kept in its source form.
// Text holds the unquoted content for strings and the exact literal otherwise,
// so numbers keep their original formatting (1.50, 1e3, -0).
type Scalar struct {
	Kind ScalarKind
	Text string
}

// StringScalar, NumberScalar, BoolScalar and NullScalar build scalars of each kind.
func StringScalar(s string) Scalar { return Scalar{Kind: ScalarString, Text: s} }

func NumberScalar(literal string) Scalar { return Scalar{Kind: ScalarNumber, Text: literal} }

func BoolScalar(b bool) Scalar { return Scalar{Kind: ScalarBool, Text: strconv.FormatBool(b)} }

func NullScalar() Scalar { return Scalar{Kind: ScalarNull, Text: "null"} }

// Literal renders the scalar as JSON text
func (s Scalar) Literal() string {
	if s.Kind != ScalarString {
		return s.Text
	}
	return Quote(s.Text)
}

// Quote renders s as a JSON string literal without HTML escaping
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			b.WriteString(`\"`)
		case r == '\\':
			b.WriteString(`\\`)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		case r < 0x20 || r == utf8.RuneError && size == 1:
			b.WriteString(`\u`)
			hex := strconv.FormatInt(int64(s[i]), 16)
			if r >= 0x20 {
				hex = "fffd"
			}
			b.WriteString(strings.Repeat("0", 4-len(hex)) + hex)
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	b.WriteByte('"')
	return b.String()
}
