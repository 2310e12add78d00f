package jsonb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Kind is the JSON type of a Value
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindObject
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindObject:
		return "object"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a generic JSON value that keeps object member order and the
// source text of numbers.
type Value struct {
	Kind   Kind
	Text   string  // scalar content: unquoted string, number literal, true/false/null
	Fields []Field // object members in source order
	Items  []Value // array elements
}

// Field is one object member
type Field struct {
	Key   string
	Value Value
}

// Parse reads a single JSON document from r
func Parse(r io.Reader) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Value{}, fmt.Errorf("failed to read input: %w", err)
	}
	return ParseBytes(data)
}

// ParseString parses a single JSON document held in s
func ParseString(s string) (Value, error) {
	return ParseBytes([]byte(s))
}

// ParseBytes parses a single JSON document. Empty input fails with
// ErrEmptyInput and malformed input with a *ParseError wrapping ErrInvalidJSON.
func ParseBytes(data []byte) (Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Value{}, &ParseError{Offset: -1, Err: ErrEmptyInput}
	}
	if err := validate(data); err != nil {
		return Value{}, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := readValue(dec)
	if err != nil {
		return Value{}, &ParseError{Offset: dec.InputOffset(), Err: fmt.Errorf("%w: %w", ErrInvalidJSON, err)}
	}
	return v, nil
}

// validate checks the grammar up front; the token stream used to build the
// ordered value skips separators without checking them.
func validate(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		offset := int64(-1)
		var syntaxErr *json.SyntaxError
		if errors.As(err, &syntaxErr) {
			offset = syntaxErr.Offset
		}
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return &ParseError{Offset: offset, Err: fmt.Errorf("%w: %w", ErrInvalidJSON, err)}
	}

	offset := dec.InputOffset()
	if offset < int64(len(data)) && len(bytes.TrimSpace(data[offset:])) > 0 {
		return &ParseError{Offset: offset, Err: fmt.Errorf("%w: unexpected data after top-level value", ErrInvalidJSON)}
	}
	return nil
}

func readValue(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	return valueOf(dec, tok)
}

func valueOf(dec *json.Decoder, tok json.Token) (Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return readObject(dec)
		case '[':
			return readArray(dec)
		}
		return Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
	// the decoder may reuse the bytes behind string and number tokens
	case string:
		return Value{Kind: KindString, Text: strings.Clone(t)}, nil
	case json.Number:
		return Value{Kind: KindNumber, Text: strings.Clone(string(t))}, nil
	case float64:
		return Value{Kind: KindNumber, Text: fmt.Sprint(t)}, nil
	case bool:
		if t {
			return Value{Kind: KindBool, Text: "true"}, nil
		}
		return Value{Kind: KindBool, Text: "false"}, nil
	case nil:
		return Value{Kind: KindNull, Text: "null"}, nil
	default:
		return Value{}, fmt.Errorf("unexpected token %v", tok)
	}
}

func readObject(dec *json.Decoder) (Value, error) {
	obj := Value{Kind: KindObject}
	var positions map[string]int
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return Value{}, fmt.Errorf("expected object key, got %v", tok)
		}
		key = strings.Clone(key)
		val, err := readValue(dec)
		if err != nil {
			return Value{}, err
		}

		// a repeated key keeps its first position and takes the last value
		if positions == nil {
			positions = make(map[string]int)
		}
		if pos, dup := positions[key]; dup {
			obj.Fields[pos].Value = val
			continue
		}
		positions[key] = len(obj.Fields)
		obj.Fields = append(obj.Fields, Field{Key: key, Value: val})
	}
}

func readArray(dec *json.Decoder) (Value, error) {
	arr := Value{Kind: KindArray}
	for {
		tok, err := dec.Token()
		if err != nil {
			return Value{}, err
		}
		if d, ok := tok.(json.Delim); ok && d == ']' {
			return arr, nil
		}
		item, err := valueOf(dec, tok)
		if err != nil {
			return Value{}, err
		}
		arr.Items = append(arr.Items, item)
	}
}
