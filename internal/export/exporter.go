package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/search"
)

// Match is one search range resolved against the row it was found in
type Match struct {
	ListIndex int    `json:"list_index"`
	Path      string `json:"path"`
	Pointer   string `json:"pointer"`
	Field     string `json:"field"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	Text      string `json:"text"`
}

// Matches flattens a search result into one Match per range, in cursor order
func Matches(list models.List, result *search.Result) []Match {
	var out []Match
	for _, occ := range result.Occurrences() {
		path := jsonb.PathOf(list, occ.ListIndex)
		for _, r := range occ.Ranges {
			out = append(out, Match{
				ListIndex: occ.ListIndex,
				Path:      path.String(),
				Pointer:   path.Pointer(),
				Field:     r.Field.String(),
				Start:     r.Start,
				End:       r.End,
				Text:      fieldText(list[occ.ListIndex], r.Field)[r.Start:r.End],
			})
		}
	}
	return out
}

func fieldText(n models.Node, field search.Field) string {
	if field == search.FieldKey {
		key, _ := models.KeyOf(n)
		return key
	}
	if p, ok := n.(models.Primitive); ok {
		return p.Value().Text
	}
	return ""
}

var csvHeader = []string{"List Index", "Path", "Pointer", "Field", "Start", "End", "Text"}

// WriteCSV writes matches as CSV with a header row
func WriteCSV(w io.Writer, matches []Match) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, m := range matches {
		row := []string{
			strconv.Itoa(m.ListIndex),
			m.Path,
			m.Pointer,
			m.Field,
			strconv.Itoa(m.Start),
			strconv.Itoa(m.End),
			m.Text,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteJSON writes matches as an indented JSON array
func WriteJSON(w io.Writer, matches []Match) error {
	if matches == nil {
		matches = []Match{}
	}
	data, err := json.MarshalIndent(matches, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal matches to JSON: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// ExportToCSV exports matches to a CSV file
func ExportToCSV(matches []Match, path string) error {
	return writeFile(path, matches, WriteCSV)
}

// ExportToJSON exports matches to a JSON file
func ExportToJSON(matches []Match, path string) error {
	return writeFile(path, matches, WriteJSON)
}

// ExportToFile picks the format from the file extension (.csv or .json)
func ExportToFile(matches []Match, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ExportToCSV(matches, path)
	case ".json":
		return ExportToJSON(matches, path)
	default:
		return fmt.Errorf("unsupported export format %q, use .csv or .json", filepath.Ext(path))
	}
}

func writeFile(path string, matches []Match, write func(io.Writer, []Match) error) (err error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close export file: %w", cerr)
		}
	}()
	return write(file, matches)
}
