package components

// TreeView renders a flattened JSON list with keyboard navigation, viewport
// scrolling and search highlights.
//
// The view never edits the list. Toggling a row emits a ToggleRequestMsg; the
// owner applies the edit and hands the new list back with SetList.
//
// Usage:
//
//	tv := components.NewTreeView(theme)
//	tv.SetList(list)
//
//	// In your Update method:
//	tv, cmd := tv.Update(msg)
//
//	// In your View method:
//	content := tv.View()

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/search"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// TreeView displays the rows of a flattened JSON document
type TreeView struct {
	List         models.List    // Rows to display
	Search       *search.Result // Optional matches to highlight
	CursorIndex  int            // Current cursor position in the list
	Width        int            // Display width
	Height       int            // Display height
	Theme        theme.Theme    // Color theme
	ScrollOffset int            // Vertical scroll offset for viewport
	Revision     uint64         // Revision of List, stamped on toggle requests

	zonePrefix string // Mouse zone prefix for this view's rows
}

// ToggleRequestMsg asks the owner to expand or collapse a row
type ToggleRequestMsg struct {
	ID       models.NodeID
	Revision uint64
}

// CursorMovedMsg is sent when the cursor lands on another row
type CursorMovedMsg struct {
	Index int
}

// NewTreeView creates a new tree view component
func NewTreeView(th theme.Theme) *TreeView {
	return &TreeView{
		Width:      40,
		Height:     20,
		Theme:      th,
		zonePrefix: zone.NewPrefix(),
	}
}

// SetList replaces the rows, keeping the cursor position when possible
func (tv *TreeView) SetList(list models.List) {
	tv.List = list
	tv.clampCursor()
}

// SetSearch sets the matches to highlight; nil clears them
func (tv *TreeView) SetSearch(result *search.Result) {
	tv.Search = result
}

// View renders the visible rows
func (tv *TreeView) View() string {
	if len(tv.List) == 0 {
		return tv.emptyState()
	}
	tv.clampCursor()

	viewHeight := tv.viewHeight()
	tv.adjustScrollOffset(len(tv.List), viewHeight)

	startIdx := tv.ScrollOffset
	endIdx := min(tv.ScrollOffset+viewHeight, len(tv.List))

	var selected *search.Selection
	if tv.Search != nil {
		if sel, ok := tv.Search.Selected(); ok {
			selected = &sel
		}
	}

	lines := make([]string, 0, viewHeight)
	for i := startIdx; i < endIdx; i++ {
		gutter := "  "
		switch {
		case i == startIdx && startIdx > 0:
			gutter = lipgloss.NewStyle().Foreground(tv.Theme.Info).Render("↑") + " "
		case i == endIdx-1 && endIdx < len(tv.List):
			gutter = lipgloss.NewStyle().Foreground(tv.Theme.Info).Render("↓") + " "
		}
		lines = append(lines, zone.Mark(tv.rowZone(i), gutter+tv.renderRow(i, i == tv.CursorIndex, selected)))
	}

	// Fill remaining space if needed
	for len(lines) < viewHeight {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// Update handles keyboard input for tree navigation
func (tv *TreeView) Update(msg tea.KeyMsg) (*TreeView, tea.Cmd) {
	if len(tv.List) == 0 {
		return tv, nil
	}
	before := tv.CursorIndex
	var cmd tea.Cmd

	switch msg.String() {
	case "up", "k":
		if tv.CursorIndex > 0 {
			tv.CursorIndex--
		}

	case "down", "j":
		if tv.CursorIndex < len(tv.List)-1 {
			tv.CursorIndex++
		}

	case "pgup", "ctrl+u":
		tv.CursorIndex = max(tv.CursorIndex-tv.viewHeight(), 0)

	case "pgdown", "ctrl+d":
		tv.CursorIndex = min(tv.CursorIndex+tv.viewHeight(), len(tv.List)-1)

	case "g", "home":
		tv.CursorIndex = 0
		tv.ScrollOffset = 0

	case "G", "end":
		tv.CursorIndex = len(tv.List) - 1

	case "enter", " ":
		cmd = tv.toggleCmd(tv.CursorIndex)

	case "right", "l":
		// Expand a collapsed row, or step into an open one
		if c, ok := tv.List[tv.CursorIndex].(models.Collapsable); ok {
			if !c.State().IsOpen() {
				cmd = tv.toggleCmd(tv.CursorIndex)
			} else if tv.CursorIndex < len(tv.List)-1 {
				tv.CursorIndex++
			}
		}

	case "left", "h":
		// Collapse an open row, or move to the parent
		row := tv.CursorIndex
		if eb, ok := tv.List[row].(models.EndBracket); ok {
			row = tv.List.IndexOf(eb.OwnerID())
		}
		if c, ok := tv.List[row].(models.Collapsable); ok && c.State().IsOpen() {
			tv.CursorIndex = row
			cmd = tv.toggleCmd(row)
		} else if parent := tv.List.ParentIndex(row); parent >= 0 {
			tv.CursorIndex = parent
		}
	}

	if tv.CursorIndex != before {
		cmd = tea.Batch(cmd, tv.movedCmd())
	}
	return tv, cmd
}

// HandleMouse scrolls with the wheel and moves the cursor to a clicked row.
// Clicking the cursor row toggles it. Rows are located through their mouse
// zones, so the rendered view must have passed through zone.Scan.
func (tv *TreeView) HandleMouse(msg tea.MouseMsg) tea.Cmd {
	if len(tv.List) == 0 {
		return nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		return tv.moveTo(tv.CursorIndex - 1)
	case tea.MouseButtonWheelDown:
		return tv.moveTo(tv.CursorIndex + 1)
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return nil
		}
		end := min(tv.ScrollOffset+tv.viewHeight(), len(tv.List))
		for row := tv.ScrollOffset; row < end; row++ {
			if !zone.Get(tv.rowZone(row)).InBounds(msg) {
				continue
			}
			if row == tv.CursorIndex {
				return tv.toggleCmd(row)
			}
			return tv.moveTo(row)
		}
	}
	return nil
}

func (tv *TreeView) rowZone(i int) string {
	return tv.zonePrefix + strconv.Itoa(i)
}

func (tv *TreeView) moveTo(index int) tea.Cmd {
	index = max(0, min(index, len(tv.List)-1))
	if index == tv.CursorIndex {
		return nil
	}
	tv.CursorIndex = index
	return tv.movedCmd()
}

func (tv *TreeView) movedCmd() tea.Cmd {
	index := tv.CursorIndex
	return func() tea.Msg {
		return CursorMovedMsg{Index: index}
	}
}

func (tv *TreeView) toggleCmd(index int) tea.Cmd {
	c, ok := tv.List[index].(models.Collapsable)
	if !ok {
		return nil
	}
	id, revision := c.ID(), tv.Revision
	return func() tea.Msg {
		return ToggleRequestMsg{ID: id, Revision: revision}
	}
}

// segment is a run of text drawn with one style
type segment struct {
	text  string
	style lipgloss.Style
}

// renderRow renders a single row with appropriate styling
func (tv *TreeView) renderRow(i int, cursor bool, selected *search.Selection) string {
	n := tv.List[i]
	var ranges []search.Range
	if tv.Search != nil {
		if occ, ok := tv.Search.OccurrenceAt(i); ok {
			ranges = occ.Ranges
		}
	}
	var current *search.Range
	if selected != nil && selected.ListIndex == i {
		current = &selected.Range
	}

	plain := lipgloss.NewStyle().Foreground(tv.Theme.Foreground)
	dim := lipgloss.NewStyle().Foreground(tv.Theme.Metadata)
	bracket := lipgloss.NewStyle().Foreground(tv.Theme.JSONBracket)

	segs := []segment{{text: strings.Repeat("  ", n.Level()), style: plain}}

	switch v := n.(type) {
	case models.Collapsable:
		icon := "▸ "
		if v.State().IsOpen() {
			icon = "▾ "
		}
		segs = append(segs, segment{text: icon, style: dim})
		segs = tv.appendKey(segs, v.Key(), v.ParentType(), ranges, current)
		opening, closing := v.Kind().Brackets()
		if v.State().IsOpen() {
			segs = append(segs, segment{text: opening, style: bracket})
		} else {
			segs = append(segs,
				segment{text: opening + "…" + closing, style: bracket},
				segment{text: comma(v), style: bracket},
				segment{text: " " + childSummary(v), style: dim.Italic(true)},
			)
			return tv.renderSegments(segs, cursor)
		}

	case models.Primitive:
		segs = append(segs, segment{text: "  ", style: plain})
		segs = tv.appendKey(segs, v.Key(), v.ParentType(), ranges, current)
		segs = tv.appendValue(segs, v.Value(), ranges, current)
		segs = append(segs, segment{text: comma(v), style: bracket})
		return tv.renderSegments(segs, cursor)

	case models.EndBracket:
		_, closing := v.Kind().Brackets()
		segs = append(segs, segment{text: "  " + closing + comma(v), style: bracket})
		return tv.renderSegments(segs, cursor)
	}
	return tv.renderSegments(segs, cursor)
}

func comma(n models.Node) string {
	if n.IsLastItem() {
		return ""
	}
	return ","
}

func childSummary(c models.Collapsable) string {
	unit := "items"
	if c.Kind() == models.KindObject {
		unit = "keys"
		if c.Len() == 1 {
			unit = "key"
		}
	} else if c.Len() == 1 {
		unit = "item"
	}
	return fmt.Sprintf("%d %s", c.Len(), unit)
}

func (tv *TreeView) appendKey(segs []segment, key string, parent models.ParentType, ranges []search.Range, current *search.Range) []segment {
	switch parent {
	case models.ParentObject:
		style := lipgloss.NewStyle().Foreground(tv.Theme.JSONKey)
		segs = append(segs, segment{text: `"`, style: style})
		segs = tv.appendHighlighted(segs, key, search.FieldKey, style, ranges, current)
		segs = append(segs, segment{text: `": `, style: style})
	case models.ParentArray:
		segs = append(segs, segment{text: key + ": ", style: lipgloss.NewStyle().Foreground(tv.Theme.JSONIndex)})
	}
	return segs
}

func (tv *TreeView) appendValue(segs []segment, value models.Scalar, ranges []search.Range, current *search.Range) []segment {
	var style lipgloss.Style
	switch value.Kind {
	case models.ScalarString:
		style = lipgloss.NewStyle().Foreground(tv.Theme.JSONString)
	case models.ScalarNumber:
		style = lipgloss.NewStyle().Foreground(tv.Theme.JSONNumber)
	case models.ScalarBool:
		style = lipgloss.NewStyle().Foreground(tv.Theme.JSONBoolean)
	default:
		style = lipgloss.NewStyle().Foreground(tv.Theme.JSONNull)
	}
	if value.Kind != models.ScalarString {
		return tv.appendHighlighted(segs, value.Text, search.FieldValue, style, ranges, current)
	}
	segs = append(segs, segment{text: `"`, style: style})
	segs = tv.appendHighlighted(segs, value.Text, search.FieldValue, style, ranges, current)
	return append(segs, segment{text: `"`, style: style})
}

// appendHighlighted splits text at the match ranges of field. Offsets refer to
// the raw text, so control characters are escaped per segment afterwards.
func (tv *TreeView) appendHighlighted(segs []segment, text string, field search.Field, style lipgloss.Style, ranges []search.Range, current *search.Range) []segment {
	match := lipgloss.NewStyle().Background(tv.Theme.Match).Foreground(tv.Theme.Foreground)
	selected := lipgloss.NewStyle().Background(tv.Theme.MatchSelected).Foreground(tv.Theme.MatchText).Bold(true)

	pos := 0
	for _, r := range ranges {
		if r.Field != field || r.Start < pos || r.End > len(text) {
			continue
		}
		if r.Start > pos {
			segs = append(segs, segment{text: displayEscaper.Replace(text[pos:r.Start]), style: style})
		}
		s := match
		if current != nil && *current == r {
			s = selected
		}
		segs = append(segs, segment{text: displayEscaper.Replace(text[r.Start:r.End]), style: s})
		pos = r.End
	}
	if pos < len(text) {
		segs = append(segs, segment{text: displayEscaper.Replace(text[pos:]), style: style})
	}
	return segs
}

var displayEscaper = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`, `"`, `\"`, `\`, `\\`)

// renderSegments truncates the row to the view width and styles each part
func (tv *TreeView) renderSegments(segs []segment, cursor bool) string {
	maxWidth := tv.Width - 2 // gutter
	if maxWidth < 1 {
		maxWidth = 1
	}

	var b strings.Builder
	width := 0
	for _, seg := range segs {
		if seg.text == "" {
			continue
		}
		text := seg.text
		w := runewidth.StringWidth(text)
		if width+w > maxWidth {
			text = runewidth.Truncate(text, maxWidth-width, "…")
			w = runewidth.StringWidth(text)
		}
		style := seg.style
		if cursor && style.GetBackground() == (lipgloss.NoColor{}) {
			style = style.Background(tv.Theme.Selection).Bold(true)
		}
		b.WriteString(style.Render(text))
		width += w
		if width >= maxWidth {
			break
		}
	}
	if cursor && width < maxWidth {
		b.WriteString(lipgloss.NewStyle().Background(tv.Theme.Selection).Render(strings.Repeat(" ", maxWidth-width)))
	}
	return b.String()
}

func (tv *TreeView) viewHeight() int {
	return max(tv.Height, 1)
}

func (tv *TreeView) clampCursor() {
	if tv.CursorIndex >= len(tv.List) {
		tv.CursorIndex = len(tv.List) - 1
	}
	if tv.CursorIndex < 0 {
		tv.CursorIndex = 0
	}
}

// adjustScrollOffset adjusts the scroll offset to keep the cursor visible
func (tv *TreeView) adjustScrollOffset(totalRows, viewHeight int) {
	if tv.CursorIndex < tv.ScrollOffset {
		tv.ScrollOffset = tv.CursorIndex
	}
	if tv.CursorIndex >= tv.ScrollOffset+viewHeight {
		tv.ScrollOffset = tv.CursorIndex - viewHeight + 1
	}

	if tv.ScrollOffset < 0 {
		tv.ScrollOffset = 0
	}
	maxScroll := max(totalRows-viewHeight, 0)
	if tv.ScrollOffset > maxScroll {
		tv.ScrollOffset = maxScroll
	}
}

// emptyState returns the empty state view
func (tv *TreeView) emptyState() string {
	style := lipgloss.NewStyle().
		Foreground(tv.Theme.Metadata).
		Italic(true).
		Width(max(tv.Width-2, 1)).
		Align(lipgloss.Center)

	return style.Render("No document loaded")
}

// CurrentNode returns the row under the cursor
func (tv *TreeView) CurrentNode() (models.Node, bool) {
	if tv.CursorIndex < 0 || tv.CursorIndex >= len(tv.List) {
		return nil, false
	}
	return tv.List[tv.CursorIndex], true
}

// SetCursor moves the cursor to a row index
func (tv *TreeView) SetCursor(index int) {
	tv.CursorIndex = index
	tv.clampCursor()
}

// SetCursorToNode sets the cursor to a specific row (by ID)
func (tv *TreeView) SetCursorToNode(id models.NodeID) bool {
	if i := tv.List.IndexOf(id); i >= 0 {
		tv.CursorIndex = i
		return true
	}
	return false
}
