package components

import (
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
)

// PreviewPane shows the full JSON of the node under the cursor
type PreviewPane struct {
	Width     int
	MaxHeight int    // Maximum height (screen 1/3)
	Content   string // Formatted subtree
	Title     string // JSONPath of the node
	Pointer   string // JSON Pointer of the node

	Visible bool

	scrollY      int
	contentLines []string // Content wrapped to the pane width

	Theme       theme.Theme
	style       lipgloss.Style
	highlighter *jsonHighlighter
}

// NewPreviewPane creates a new preview pane
func NewPreviewPane(th theme.Theme) *PreviewPane {
	return &PreviewPane{
		Width:       80,
		MaxHeight:   10,
		Theme:       th,
		highlighter: newJSONHighlighter(chromaStyle(th)),
		style: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(th.Border).
			Padding(0, 1),
	}
}

// chromaStyle picks the chroma style matching a theme
func chromaStyle(th theme.Theme) string {
	if strings.HasPrefix(th.Name, "catppuccin") {
		return "catppuccin-mocha"
	}
	return "monokai"
}

// SetNode shows the row at index i of list. End brackets show the
// collapsable they close.
func (p *PreviewPane) SetNode(list models.List, i int) {
	if i < 0 || i >= len(list) {
		p.SetContent("", "", "")
		return
	}
	n := list[i]
	if end, ok := n.(models.EndBracket); ok {
		if owner, found := list.Find(end.OwnerID()); found {
			n = owner
		}
	}
	content, err := jsonb.Format(n, "  ")
	if err != nil {
		content = err.Error()
	}
	path := jsonb.PathOf(list, i)
	p.SetContent(content, path.String(), path.Pointer())
}

// SetContent sets the content to display
func (p *PreviewPane) SetContent(content, title, pointer string) {
	if p.Content == content && p.Title == title {
		return
	}

	p.Content = content
	p.Title = title
	p.Pointer = pointer
	p.scrollY = 0
	p.contentLines = nil // formatted on demand
}

func (p *PreviewPane) contentWidth() int {
	return max(p.Width-p.style.GetHorizontalFrameSize(), 10)
}

// visibleLines is the number of content lines between header and footer
func (p *PreviewPane) visibleLines() int {
	return max(p.MaxHeight-p.style.GetVerticalFrameSize()-2, 1)
}

func (p *PreviewPane) formatContent() {
	if p.Content == "" {
		p.contentLines = []string{}
		return
	}
	p.contentLines = wrapText(p.Content, p.contentWidth())
}

// wrapText wraps text to fit within maxWidth cells
func wrapText(text string, maxWidth int) []string {
	var result []string
	for _, line := range strings.Split(text, "\n") {
		if runewidth.StringWidth(line) <= maxWidth {
			result = append(result, line)
			continue
		}

		var current strings.Builder
		currentWidth := 0
		for _, r := range line {
			rWidth := runewidth.RuneWidth(r)
			if currentWidth+rWidth > maxWidth {
				result = append(result, current.String())
				current.Reset()
				currentWidth = 0
			}
			current.WriteRune(r)
			currentWidth += rWidth
		}
		if current.Len() > 0 {
			result = append(result, current.String())
		}
	}
	return result
}

// Toggle toggles the preview pane visibility
func (p *PreviewPane) Toggle() {
	p.Visible = !p.Visible
	p.contentLines = nil
}

// Height returns the rendered height including borders, or 0 when hidden
func (p *PreviewPane) Height() int {
	if !p.Visible {
		return 0
	}
	return p.MaxHeight
}

// IsScrollable returns true if content exceeds visible area
func (p *PreviewPane) IsScrollable() bool {
	if p.contentLines == nil {
		p.formatContent()
	}
	return len(p.contentLines) > p.visibleLines()
}

// ScrollUp scrolls content up
func (p *PreviewPane) ScrollUp() {
	if p.scrollY > 0 {
		p.scrollY--
	}
}

// ScrollDown scrolls content down
func (p *PreviewPane) ScrollDown() {
	if p.contentLines == nil {
		p.formatContent()
	}
	maxScroll := max(len(p.contentLines)-p.visibleLines(), 0)
	if p.scrollY < maxScroll {
		p.scrollY++
	}
}

// CopyContent copies the formatted subtree to the clipboard
func (p *PreviewPane) CopyContent() error {
	return clipboard.WriteAll(p.Content)
}

// CopyPath copies the JSONPath of the node to the clipboard
func (p *PreviewPane) CopyPath() error {
	return clipboard.WriteAll(p.Title)
}

// View renders the preview pane
func (p *PreviewPane) View() string {
	if !p.Visible {
		return ""
	}
	if p.contentLines == nil {
		p.formatContent()
	}

	contentWidth := p.contentWidth()

	titleStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Info).
		Bold(true)

	title := "Preview"
	if p.Title != "" {
		title = "Preview: " + p.Title
	}
	if runewidth.StringWidth(title) > contentWidth-4 {
		title = runewidth.Truncate(title, contentWidth-4, "...")
	}

	parts := []string{titleStyle.Render(title)}

	start := p.scrollY
	end := min(start+p.visibleLines(), len(p.contentLines))

	contentStyle := lipgloss.NewStyle().Foreground(p.Theme.Foreground)
	for i := start; i < end; i++ {
		line := p.contentLines[i]
		if colored, ok := p.highlighter.Line(line); ok {
			parts = append(parts, colored)
			continue
		}
		parts = append(parts, contentStyle.Render(line))
	}

	helpParts := []string{}
	if p.IsScrollable() {
		helpParts = append(helpParts, "ctrl+↑↓: Scroll")
	}
	helpParts = append(helpParts, "y: Copy", "Y: Copy path", "p: Toggle")

	helpText := strings.Join(helpParts, " │ ")
	helpStyle := lipgloss.NewStyle().
		Foreground(p.Theme.Metadata).
		Italic(true)

	footerPadding := max(contentWidth-runewidth.StringWidth(helpText), 0)
	parts = append(parts, strings.Repeat(" ", footerPadding)+helpStyle.Render(helpText))

	innerHeight := max(p.MaxHeight-p.style.GetVerticalFrameSize(), 3)

	return p.style.
		Width(contentWidth).
		Height(innerHeight).
		MaxHeight(innerHeight).
		Render(strings.Join(parts, "\n"))
}
