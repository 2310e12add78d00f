package components

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

func changedQueries(msgs []tea.Msg) []string {
	var out []string
	for _, m := range msgs {
		if c, ok := m.(SearchChangedMsg); ok {
			out = append(out, c.Query)
		}
	}
	return out
}

func TestSearchInput_TypingEmitsChanges(t *testing.T) {
	s := NewSearchInput(theme.DefaultTheme())

	_, cmd := s.Update(key("a"))

	assert.Equal(t, "a", s.Value())
	assert.Equal(t, []string{"a"}, changedQueries(collect(cmd)))
}

func TestSearchInput_EnterAndEsc(t *testing.T) {
	s := NewSearchInput(theme.DefaultTheme())
	s.Input.SetValue("needle")

	_, cmd := s.Update(key("enter"))
	assert.Equal(t, []tea.Msg{SearchInputMsg{Query: "needle"}}, collect(cmd))

	_, cmd = s.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, []tea.Msg{CloseSearchMsg{}}, collect(cmd))
}

func TestSearchInput_HistoryRecall(t *testing.T) {
	s := NewSearchInput(theme.DefaultTheme())
	s.SetHistory([]string{"newest", "older"})
	s.Input.SetValue("dra")

	s.Update(key("up"))
	assert.Equal(t, "newest", s.Value())
	s.Update(key("up"))
	assert.Equal(t, "older", s.Value())

	// past the oldest entry nothing changes
	_, cmd := s.Update(key("up"))
	assert.Nil(t, cmd)
	assert.Equal(t, "older", s.Value())

	s.Update(key("down"))
	s.Update(key("down"))
	assert.Equal(t, "dra", s.Value())
}

func TestSearchInput_ViewShowsCounter(t *testing.T) {
	s := NewSearchInput(theme.DefaultTheme())
	s.Width = 60
	s.Input.SetValue("x")
	s.Count, s.Ordinal = 4, 2

	assert.Contains(t, s.View(), "2/4")

	s.Count = 0
	assert.Contains(t, s.View(), "no matches")
}
