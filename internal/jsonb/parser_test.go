package jsonb

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmptyInput},
		{"whitespace", " \n\t ", ErrEmptyInput},
		{"truncated object", `{"a":1`, ErrInvalidJSON},
		{"missing colon", `{"a" 1}`, ErrInvalidJSON},
		{"missing comma", `[1 2]`, ErrInvalidJSON},
		{"trailing comma", `[1,]`, ErrInvalidJSON},
		{"bare word", `nope`, ErrInvalidJSON},
		{"trailing data", `{} {}`, ErrInvalidJSON},
		{"trailing garbage", `1 x`, ErrInvalidJSON},
		{"truncated true", `tru`, ErrInvalidJSON},
		{"truncated null", `nul`, ErrInvalidJSON},
		{"leading zero", `01`, ErrInvalidJSON},
		{"bare decimal point", `1.`, ErrInvalidJSON},
		{"leading zero in array", `[01]`, ErrInvalidJSON},
		{"leading zero in object", `{"a":01}`, ErrInvalidJSON},
		{"decimal point in array", `[1.]`, ErrInvalidJSON},
		{"raw tab in string", "[\"a\tb\"]", ErrInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)

			var parseErr *ParseError
			assert.True(t, errors.As(err, &parseErr))
		})
	}
}

func TestParse_KeepsMemberOrder(t *testing.T) {
	v, err := ParseString(`{"z":1,"a":2,"m":{"y":true,"b":null}}`)
	require.NoError(t, err)

	require.Equal(t, KindObject, v.Kind)
	var keys []string
	for _, f := range v.Fields {
		keys = append(keys, f.Key)
	}
	assert.Equal(t, []string{"z", "a", "m"}, keys)
	assert.Equal(t, "y", v.Fields[2].Value.Fields[0].Key)
	assert.Equal(t, KindNull, v.Fields[2].Value.Fields[1].Value.Kind)
}

func TestParse_KeepsNumberLiterals(t *testing.T) {
	v, err := ParseString(`[1.50, -0, 1e3, 12345678901234567890123, 0.1E-7]`)
	require.NoError(t, err)

	var got []string
	for _, item := range v.Items {
		assert.Equal(t, KindNumber, item.Kind)
		got = append(got, item.Text)
	}
	assert.Equal(t, []string{"1.50", "-0", "1e3", "12345678901234567890123", "0.1E-7"}, got)
}

func TestParse_Strings(t *testing.T) {
	v, err := ParseString(`{"k\"ey":"line\nbreak é 😀"}`)
	require.NoError(t, err)

	assert.Equal(t, `k"ey`, v.Fields[0].Key)
	assert.Equal(t, "line\nbreak é 😀", v.Fields[0].Value.Text)
}

func TestParse_DuplicateKeys(t *testing.T) {
	v, err := ParseString(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)

	require.Len(t, v.Fields, 2)
	assert.Equal(t, "a", v.Fields[0].Key)
	assert.Equal(t, "3", v.Fields[0].Value.Text)
	assert.Equal(t, "b", v.Fields[1].Key)
}

func TestParse_Scalars(t *testing.T) {
	for input, want := range map[string]Kind{
		`"s"`:   KindString,
		`10`:    KindNumber,
		`true`:  KindBool,
		`false`: KindBool,
		`null`:  KindNull,
		` [] `:  KindArray,
		`{}`:    KindObject,
	} {
		v, err := ParseString(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, v.Kind, input)
	}
}

func TestParse_Reader(t *testing.T) {
	v, err := Parse(strings.NewReader(`{"a":[1,2]}`))
	require.NoError(t, err)
	assert.Len(t, v.Fields[0].Value.Items, 2)
}
