package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// ErrorOverlay is a centered dialog showing the last error
type ErrorOverlay struct {
	Title   string
	Message string
	Width   int
	Theme   theme.Theme
}

// NewErrorOverlay creates an error overlay
func NewErrorOverlay(th theme.Theme) *ErrorOverlay {
	return &ErrorOverlay{Width: 60, Theme: th}
}

// SetError sets the error to display
func (e *ErrorOverlay) SetError(title, message string) {
	e.Title = title
	e.Message = message
}

// View renders the dialog
func (e *ErrorOverlay) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(e.Theme.Error)
	messageStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Foreground).
		Width(e.Width - 6)
	hintStyle := lipgloss.NewStyle().
		Foreground(e.Theme.Metadata).
		Italic(true)

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("✗ "+e.Title),
		"",
		messageStyle.Render(e.Message),
		"",
		hintStyle.Render("Esc/Enter: dismiss"),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(e.Theme.Error).
		Padding(1, 2).
		Width(e.Width).
		Render(body)
}
