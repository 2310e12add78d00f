package search

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/lazyjson/internal/models"
)

// DefaultChunkSize is the number of list entries one search worker scans
const DefaultChunkSize = 2048

// Field names the part of a row a range points into
type Field int

const (
	FieldKey Field = iota
	FieldValue
)

func (f Field) String() string {
	if f == FieldValue {
		return "value"
	}
	return "key"
}

// Range is a byte range [Start, End) inside the key text or the value text
// (Scalar.Text) of a row
type Range struct {
	Field Field
	Start int
	End   int
}

// Occurrence groups every range found in one list entry
type Occurrence struct {
	ListIndex int
	Ranges    []Range
}

// Selection describes the range under the search cursor
type Selection struct {
	ListIndex int
	Range     Range
	// Ranges holds every range of the selected row, Range included.
	Ranges []Range
	// Ordinal is the 1-based position of Range among all ranges.
	Ordinal int
}

// Options tunes SearchContext
type Options struct {
	// ChunkSize is the number of rows scanned per worker. Zero means
	// DefaultChunkSize.
	ChunkSize int
}

func (o Options) chunkSize() int {
	if o.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return o.ChunkSize
}

// Search scans list for query on the calling goroutine
func Search(list models.List, query string) *Result {
	m := newMatcher(query)
	if m.empty() {
		return newResult(query, nil)
	}
	return newResult(query, scan(list, 0, len(list), m))
}

// SearchContext scans list for query, splitting the list into chunks that are
// scanned concurrently. A cancelled ctx yields ctx.Err() and no result.
func SearchContext(ctx context.Context, list models.List, query string, opts Options) (*Result, error) {
	m := newMatcher(query)
	if m.empty() {
		return newResult(query, nil), nil
	}

	size := opts.chunkSize()
	if len(list) <= size {
		occurrences := scan(list, 0, len(list), m)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return newResult(query, occurrences), nil
	}

	chunks := make([][]Occurrence, (len(list)+size-1)/size)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for c := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			lo := c * size
			chunks[c] = scan(list, lo, min(lo+size, len(list)), m)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	var occurrences []Occurrence
	for _, chunk := range chunks {
		occurrences = append(occurrences, chunk...)
	}
	return newResult(query, occurrences), nil
}

func scan(list models.List, lo, hi int, m matcher) []Occurrence {
	var out []Occurrence
	for i := lo; i < hi; i++ {
		if ranges := m.rangesOf(list[i]); len(ranges) > 0 {
			out = append(out, Occurrence{ListIndex: i, Ranges: ranges})
		}
	}
	return out
}

// RangesOf returns the ranges query produces on a single row
func RangesOf(n models.Node, query string) []Range {
	return newMatcher(query).rangesOf(n)
}

func (m matcher) rangesOf(n models.Node) []Range {
	var ranges []Range
	switch v := n.(type) {
	case models.Primitive:
		if v.ParentType() == models.ParentObject {
			ranges = m.appendRanges(ranges, FieldKey, v.Key())
		}
		ranges = m.appendRanges(ranges, FieldValue, v.Value().Text)
	case models.Collapsable:
		if v.ParentType() == models.ParentObject {
			ranges = m.appendRanges(ranges, FieldKey, v.Key())
		}
	case models.EndBracket:
	}
	return ranges
}

func (m matcher) appendRanges(ranges []Range, field Field, text string) []Range {
	for _, match := range m.findAll(text) {
		ranges = append(ranges, Range{Field: field, Start: match[0], End: match[1]})
	}
	return ranges
}

// Result holds the matches of one search and a cyclic cursor over them.
// A Result is not safe for concurrent use.
type Result struct {
	query       string
	occurrences []Occurrence
	// before[i] is the number of ranges in occurrences[:i]
	before  []int
	byIndex map[int]int
	count   int

	occ int // -1 when there is nothing to select
	rng int
}

func newResult(query string, occurrences []Occurrence) *Result {
	r := &Result{
		query:       query,
		occurrences: occurrences,
		before:      make([]int, len(occurrences)),
		byIndex:     make(map[int]int, len(occurrences)),
		occ:         -1,
	}
	for i, o := range occurrences {
		r.before[i] = r.count
		r.byIndex[o.ListIndex] = i
		r.count += len(o.Ranges)
	}
	if r.count > 0 {
		r.occ = 0
	}
	return r
}

// Query returns the searched text
func (r *Result) Query() string { return r.query }

// Count is the total number of ranges over all occurrences
func (r *Result) Count() int { return r.count }

// Occurrences returns the occurrences in ascending list order. The slice must
// not be modified.
func (r *Result) Occurrences() []Occurrence { return r.occurrences }

// OccurrenceAt returns the occurrence of a list index, if any
func (r *Result) OccurrenceAt(listIndex int) (Occurrence, bool) {
	i, ok := r.byIndex[listIndex]
	if !ok {
		return Occurrence{}, false
	}
	return r.occurrences[i], true
}

// Selected returns the range under the cursor
func (r *Result) Selected() (Selection, bool) {
	if r.occ < 0 {
		return Selection{}, false
	}
	o := r.occurrences[r.occ]
	return Selection{
		ListIndex: o.ListIndex,
		Range:     o.Ranges[r.rng],
		Ranges:    o.Ranges,
		Ordinal:   r.before[r.occ] + r.rng + 1,
	}, true
}

// SelectNext moves to the next range, wrapping after the last one
func (r *Result) SelectNext() {
	if r.occ < 0 {
		return
	}
	switch {
	case r.rng < len(r.occurrences[r.occ].Ranges)-1:
		r.rng++
	case r.occ < len(r.occurrences)-1:
		r.occ++
		r.rng = 0
	default:
		r.occ, r.rng = 0, 0
	}
}

// SelectPrevious moves to the previous range, wrapping before the first one
func (r *Result) SelectPrevious() {
	if r.occ < 0 {
		return
	}
	switch {
	case r.rng > 0:
		r.rng--
	case r.occ > 0:
		r.occ--
		r.rng = len(r.occurrences[r.occ].Ranges) - 1
	default:
		r.occ = len(r.occurrences) - 1
		r.rng = len(r.occurrences[r.occ].Ranges) - 1
	}
}

// Select moves the cursor to the first range at or after listIndex, wrapping
// to the first occurrence. It reports false when there is nothing to select.
func (r *Result) Select(listIndex int) bool {
	if r.occ < 0 {
		return false
	}
	i := sort.Search(len(r.occurrences), func(i int) bool {
		return r.occurrences[i].ListIndex >= listIndex
	})
	if i == len(r.occurrences) {
		i = 0
	}
	r.occ, r.rng = i, 0
	return true
}
