package components

import (
	"bytes"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// jsonHighlighter colors JSON text one line at a time
type jsonHighlighter struct {
	lexer     chroma.Lexer
	style     *chroma.Style
	formatter chroma.Formatter
}

// newJSONHighlighter uses the named chroma style, or the fallback style
// when it is unknown
func newJSONHighlighter(styleName string) *jsonHighlighter {
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}
	var lexer chroma.Lexer
	if l := lexers.Get("json"); l != nil {
		// Coalesce runs of tokens to reduce output
		lexer = chroma.Coalesce(l)
	}
	return &jsonHighlighter{lexer: lexer, style: style, formatter: formatter}
}

// Line returns line with terminal colors, or ok=false when it could not be
// highlighted
func (h *jsonHighlighter) Line(line string) (string, bool) {
	if line == "" || h.lexer == nil {
		return line, false
	}
	iterator, err := h.lexer.Tokenise(nil, line)
	if err != nil {
		return line, false
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, iterator); err != nil {
		return line, false
	}
	// chroma ends the output with a newline
	return strings.TrimSuffix(buf.String(), "\n"), true
}
