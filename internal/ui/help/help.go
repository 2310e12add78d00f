package help

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// KeyBinding represents a keyboard shortcut
type KeyBinding struct {
	Key         string
	Description string
}

// Section is a titled group of key bindings
type Section struct {
	Title string
	Keys  []KeyBinding
}

// GetGlobalKeys returns global key bindings
func GetGlobalKeys() []KeyBinding {
	return []KeyBinding{
		{"?", "Toggle help"},
		{"q, Ctrl+C", "Quit application"},
		{"Esc", "Dismiss error or clear search"},
		{"r, F5", "Reload file"},
		{"p", "Toggle preview pane"},
	}
}

// GetNavigationKeys returns tree navigation key bindings
func GetNavigationKeys() []KeyBinding {
	return []KeyBinding{
		{"↑/k", "Move up"},
		{"↓/j", "Move down"},
		{"PgUp/PgDn", "Move one page"},
		{"g/G", "Go to first or last row"},
		{"←/h", "Collapse or go to parent"},
		{"→/l", "Expand or step into"},
		{"Enter/Space", "Toggle node"},
		{"E", "Expand all"},
		{"C", "Collapse all"},
	}
}

// GetSearchKeys returns search key bindings
func GetSearchKeys() []KeyBinding {
	return []KeyBinding{
		{"/", "Search keys and values"},
		{"n", "Next match"},
		{"N", "Previous match"},
		{"↑/↓ (in search)", "Recall earlier queries"},
		{"Ctrl+E", "Export matches"},
	}
}

// GetClipboardKeys returns copy key bindings
func GetClipboardKeys() []KeyBinding {
	return []KeyBinding{
		{"y", "Copy node as JSON"},
		{"Y", "Copy node path"},
	}
}

// Sections returns every key binding group in display order
func Sections() []Section {
	return []Section{
		{"Global", GetGlobalKeys()},
		{"Navigation", GetNavigationKeys()},
		{"Search", GetSearchKeys()},
		{"Clipboard", GetClipboardKeys()},
	}
}

// Render creates the help view
func Render(width, height int, th theme.Theme) string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.BorderFocused).
		Padding(1, 0)

	sectionStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(th.Info).
		Padding(0, 0, 0, 2)

	keyStyle := lipgloss.NewStyle().
		Foreground(th.Warning).
		Width(20)

	descStyle := lipgloss.NewStyle().
		Foreground(th.Foreground)

	var b strings.Builder

	b.WriteString(titleStyle.Render("lazyjson - Keyboard Shortcuts"))
	b.WriteString("\n\n")

	for _, section := range Sections() {
		b.WriteString(sectionStyle.Render(section.Title))
		b.WriteString("\n")
		for _, kb := range section.Keys {
			b.WriteString("  ")
			b.WriteString(keyStyle.Render(kb.Key))
			b.WriteString(descStyle.Render(kb.Description))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	b.WriteString(lipgloss.NewStyle().Faint(true).Render("Press '?' or Esc to close help"))

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.BorderFocused).
		Padding(1, 2).
		Width(max(width-4, 20)).
		Height(max(height-4, 5))

	return boxStyle.Render(b.String())
}
