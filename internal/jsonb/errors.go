package jsonb

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput  = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON = errors.New("invalid JSON")
)

// ParseError is returned by Build when the input text is not a single valid
// JSON document. Err carries the underlying cause.
type ParseError struct {
	Offset int64 // byte offset reported by the decoder, -1 when unknown
	Err    error
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
