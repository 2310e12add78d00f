package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Panel represents a bordered UI panel with a title line
type Panel struct {
	Title   string
	Info    string // Right-aligned next to the title
	Content string
	Width   int
	Height  int
	Style   lipgloss.Style
}

// ContentHeight returns the lines left for content below the title
func (p *Panel) ContentHeight() int {
	if p.Title == "" && p.Info == "" {
		return p.Height
	}
	return max(p.Height-1, 0)
}

// View renders the panel
func (p *Panel) View() string {
	if p.Width <= 0 || p.Height <= 0 {
		return ""
	}

	style := p.Style.
		Width(p.Width).
		Height(p.Height).
		Border(lipgloss.RoundedBorder())

	content := p.Content
	if p.Title != "" || p.Info != "" {
		content = p.titleLine() + "\n" + content
	}

	return style.Render(content)
}

func (p *Panel) titleLine() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	infoStyle := lipgloss.NewStyle().Faint(true).Padding(0, 1)

	info := infoStyle.Render(p.Info)
	room := p.Width - lipgloss.Width(info) - 2
	title := p.Title
	if runewidth.StringWidth(title) > room {
		title = runewidth.Truncate(title, max(room, 0), "…")
	}
	left := titleStyle.Render(title)
	gap := max(p.Width-lipgloss.Width(left)-lipgloss.Width(info), 0)
	return left + lipgloss.NewStyle().Width(gap).Render("") + info
}
