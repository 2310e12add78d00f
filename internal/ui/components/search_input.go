package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// SearchChangedMsg is sent whenever the query text changes
type SearchChangedMsg struct {
	Query string
}

// SearchInputMsg is sent when the query is confirmed with enter
type SearchInputMsg struct {
	Query string
}

// CloseSearchMsg is sent when search should be closed
type CloseSearchMsg struct{}

// SearchInput provides a search input box with recall of earlier queries
type SearchInput struct {
	Input   textinput.Model
	Theme   theme.Theme
	Width   int
	Visible bool

	// Count and Ordinal describe the current result for the status text
	Count   int
	Ordinal int

	history []string // newest first
	recall  int      // -1 while editing a fresh query
	draft   string
}

// NewSearchInput creates a new search input
func NewSearchInput(th theme.Theme) *SearchInput {
	ti := textinput.New()
	ti.Placeholder = "Search keys and values..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 40

	return &SearchInput{
		Input:  ti,
		Theme:  th,
		recall: -1,
	}
}

// SetHistory sets the queries offered by up/down, newest first
func (s *SearchInput) SetHistory(queries []string) {
	s.history = queries
	s.recall = -1
}

// Value returns the current query
func (s *SearchInput) Value() string {
	return s.Input.Value()
}

// Reset clears the search input
func (s *SearchInput) Reset() {
	s.Input.SetValue("")
	s.Count, s.Ordinal = 0, 0
	s.recall = -1
	s.draft = ""
}

// Update handles messages
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			query := s.Input.Value()
			return s, func() tea.Msg {
				return SearchInputMsg{Query: query}
			}
		case "esc":
			return s, func() tea.Msg {
				return CloseSearchMsg{}
			}
		case "up":
			return s, s.recallAt(s.recall + 1)
		case "down":
			return s, s.recallAt(s.recall - 1)
		}
	}

	before := s.Input.Value()
	var cmd tea.Cmd
	s.Input, cmd = s.Input.Update(msg)
	if after := s.Input.Value(); after != before {
		s.recall = -1
		cmd = tea.Batch(cmd, changed(after))
	}
	return s, cmd
}

// recallAt shows history entry i; -1 restores the query being typed
func (s *SearchInput) recallAt(i int) tea.Cmd {
	if i < -1 || i >= len(s.history) || i == s.recall {
		return nil
	}
	if s.recall == -1 {
		s.draft = s.Input.Value()
	}
	s.recall = i
	query := s.draft
	if i >= 0 {
		query = s.history[i]
	}
	s.Input.SetValue(query)
	s.Input.CursorEnd()
	return changed(query)
}

func changed(query string) tea.Cmd {
	return func() tea.Msg {
		return SearchChangedMsg{Query: query}
	}
}

// View renders the search input
func (s *SearchInput) View() string {
	inputWidth := s.Width - 24 // Reserve space for the counter and icon
	if inputWidth < 20 {
		inputWidth = 20
	}
	s.Input.Width = inputWidth

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Theme.BorderFocused).
		Padding(0, 1).
		Width(max(s.Width-2, 1))

	helpStyle := lipgloss.NewStyle().
		Foreground(s.Theme.Metadata).
		Italic(true)

	counterStyle := lipgloss.NewStyle().Foreground(s.Theme.Info).Bold(true)
	counter := "no matches"
	if s.Count > 0 {
		counter = fmt.Sprintf("%d/%d", s.Ordinal, s.Count)
	}
	if s.Input.Value() == "" {
		counter = ""
	}

	content := "🔍 " + s.Input.View() + " " + counterStyle.Render(counter)
	helpText := helpStyle.Render("Enter: confirm │ ↑↓: history │ Esc: close")

	return boxStyle.Render(content + "\n" + helpText)
}
