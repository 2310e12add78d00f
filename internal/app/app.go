package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sirupsen/logrus"

	"github.com/rebeliceyang/lazyjson/internal/config"
	"github.com/rebeliceyang/lazyjson/internal/export"
	"github.com/rebeliceyang/lazyjson/internal/history"
	"github.com/rebeliceyang/lazyjson/internal/models"
	"github.com/rebeliceyang/lazyjson/internal/search"
	"github.com/rebeliceyang/lazyjson/internal/ui/components"
	"github.com/rebeliceyang/lazyjson/internal/ui/help"
	"github.com/rebeliceyang/lazyjson/internal/ui/theme"
	"github.com/rebeliceyang/lazyjson/internal/viewer"
	"github.com/rebeliceyang/lazyjson/internal/watch"
)

const historyLimit = 50

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	SearchMode
	HelpMode
)

// AppState holds the screen layout state
type AppState struct {
	Width    int
	Height   int
	ViewMode ViewMode
}

// Options configures an App
type Options struct {
	Config *config.Config
	// Path is the file to show. When empty, Input is shown instead and
	// reloading is disabled.
	Path    string
	Input   []byte
	Logger  *logrus.Entry
	History *history.Store // nil disables query history
}

// App is the main application model
type App struct {
	state  AppState
	config *config.Config
	theme  theme.Theme
	log    *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc

	path    string
	input   []byte
	viewer  *viewer.Viewer
	watcher *watch.Watcher
	history *history.Store

	query  string // active search query, empty when not searching
	status string // transient message for the bottom bar

	panel        components.Panel
	treeView     *components.TreeView
	searchInput  *components.SearchInput
	previewPane  *components.PreviewPane
	errorOverlay *components.ErrorOverlay
	showError    bool
}

// DocumentLoadedMsg is sent when a load finished
type DocumentLoadedMsg struct {
	Err error
}

// SearchDoneMsg is sent when a search finished. Revision is the list
// revision the search was started against.
type SearchDoneMsg struct {
	Query    string
	Result   *search.Result
	Revision uint64
	Err      error
}

// FileChangedMsg is sent when the watched file changed on disk
type FileChangedMsg struct{}

// HistoryLoadedMsg carries recent queries, newest first
type HistoryLoadedMsg struct {
	Queries []string
	Err     error
}

// StatusMsg sets the bottom bar message
type StatusMsg struct {
	Text string
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title   string
	Message string
}

// New creates a new App instance with config
func New(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	expander, err := cfg.Expander()
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}

	v := viewer.New(viewer.Options{
		Policy:          policy,
		Expander:        expander,
		SearchChunkSize: cfg.Search.ChunkSize,
		Logger:          logger,
	})

	th := theme.GetTheme(cfg.UI.Theme)
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		config:       cfg,
		theme:        th,
		log:          logger.WithFields(logrus.Fields{"component": "app", "session": v.SessionID()}),
		ctx:          ctx,
		cancel:       cancel,
		path:         opts.Path,
		input:        opts.Input,
		viewer:       v,
		history:      opts.History,
		treeView:     components.NewTreeView(th),
		searchInput:  components.NewSearchInput(th),
		previewPane:  components.NewPreviewPane(th),
		errorOverlay: components.NewErrorOverlay(th),
	}
	a.previewPane.Visible = cfg.UI.ShowPreview
	a.panel = components.Panel{Title: a.documentName()}

	if cfg.Watch.Enabled && opts.Path != "" {
		w, err := watch.New(opts.Path,
			watch.WithDebounce(time.Duration(cfg.Watch.DebounceMs)*time.Millisecond),
			watch.WithLogger(logger),
		)
		if err != nil {
			cancel()
			return nil, err
		}
		a.watcher = w
	}

	a.updatePanelStyles()
	return a, nil
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadDocument(), a.loadHistory()}
	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			a.log.WithError(err).Warn("file watching disabled")
		} else {
			cmds = append(cmds, a.waitForChange())
		}
	}
	return tea.Batch(cmds...)
}

// Close releases the watcher and pending background work
func (a *App) Close() {
	a.cancel()
	if a.watcher != nil {
		a.watcher.Stop()
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.ShowError(msg.Title, msg.Message)
		return a, nil

	case StatusMsg:
		a.status = msg.Text
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updatePanelDimensions()
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case tea.MouseMsg:
		if !a.config.UI.MouseEnabled || a.state.ViewMode != NormalMode || a.showError {
			return a, nil
		}
		return a, a.treeView.HandleMouse(msg)

	case DocumentLoadedMsg:
		return a.handleLoaded(msg)

	case FileChangedMsg:
		a.log.Debug("file changed on disk, reloading")
		a.status = "Reloaded " + a.documentName()
		return a, tea.Batch(a.loadDocument(), a.waitForChange())

	case components.ToggleRequestMsg:
		if _, err := a.viewer.ToggleAt(msg.Revision, msg.ID); err != nil {
			return a, nil
		}
		return a, a.listChanged(a.viewer.State())

	case components.CursorMovedMsg:
		a.previewPane.SetNode(a.treeView.List, msg.Index)
		return a, nil

	case components.SearchChangedMsg:
		a.query = msg.Query
		return a, a.runSearch(msg.Query)

	case components.SearchInputMsg:
		a.state.ViewMode = NormalMode
		a.updatePanelDimensions()
		return a, a.recordQuery(msg.Query)

	case components.CloseSearchMsg:
		a.state.ViewMode = NormalMode
		a.clearSearch()
		a.updatePanelDimensions()
		return a, nil

	case SearchDoneMsg:
		return a.handleSearchDone(msg)

	case HistoryLoadedMsg:
		if msg.Err != nil {
			a.log.WithError(msg.Err).Warn("failed to read search history")
			return a, nil
		}
		a.searchInput.SetHistory(msg.Queries)
		return a, nil
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.showError {
		switch key {
		case "esc", "enter":
			a.DismissError()
		case "ctrl+c":
			return a, a.quit()
		}
		return a, nil
	}

	switch a.state.ViewMode {
	case HelpMode:
		switch key {
		case "?", "esc", "q":
			a.state.ViewMode = NormalMode
		case "ctrl+c":
			return a, a.quit()
		}
		return a, nil

	case SearchMode:
		if key == "ctrl+c" {
			return a, a.quit()
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}

	switch key {
	case "q", "ctrl+c":
		return a, a.quit()
	case "?":
		a.state.ViewMode = HelpMode
		return a, nil
	case "/":
		a.state.ViewMode = SearchMode
		a.status = ""
		a.updatePanelDimensions()
		return a, a.loadHistory()
	case "esc":
		a.clearSearch()
		a.searchInput.Reset()
		return a, nil
	case "n":
		return a, a.moveSelection(a.viewer.SelectNext)
	case "N":
		return a, a.moveSelection(a.viewer.SelectPrevious)
	case "E":
		if _, err := a.viewer.ExpandAll(); err != nil {
			return a, nil
		}
		return a, a.listChanged(a.viewer.State())
	case "C":
		if _, err := a.viewer.CollapseAll(); err != nil {
			return a, nil
		}
		return a, a.listChanged(a.viewer.State())
	case "r", "f5":
		if a.path == "" {
			return a, status("Standard input cannot be reloaded")
		}
		return a, a.loadDocument()
	case "p":
		a.previewPane.Toggle()
		a.previewPane.SetNode(a.treeView.List, a.treeView.CursorIndex)
		a.updatePanelDimensions()
		return a, nil
	case "ctrl+up":
		a.previewPane.ScrollUp()
		return a, nil
	case "ctrl+down":
		a.previewPane.ScrollDown()
		return a, nil
	case "y":
		return a, a.copy(a.previewPane.CopyContent, "Copied node")
	case "Y":
		return a, a.copy(a.previewPane.CopyPath, "Copied "+a.previewPane.Title)
	case "ctrl+e":
		return a, a.exportMatches()
	}

	var cmd tea.Cmd
	a.treeView, cmd = a.treeView.Update(msg)
	return a, cmd
}

func (a *App) handleLoaded(msg DocumentLoadedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, viewer.ErrStale) {
		return a, nil
	}
	if msg.Err != nil {
		a.treeView.SetList(nil)
		a.previewPane.SetNode(nil, -1)
		a.ShowError("Cannot load "+a.documentName(), msg.Err.Error())
		return a, nil
	}
	return a, a.listChanged(a.viewer.State())
}

// listChanged shows a published list and reruns the active search against it
func (a *App) listChanged(state viewer.State) tea.Cmd {
	list := state.List
	var current models.NodeID
	if n, ok := a.treeView.CurrentNode(); ok {
		current = n.ID()
	}
	a.treeView.SetList(list)
	a.treeView.Revision = state.Revision
	a.treeView.SetSearch(nil)
	if current != "" {
		a.treeView.SetCursorToNode(current)
	}
	a.previewPane.SetNode(list, a.treeView.CursorIndex)
	a.panel.Info = fmt.Sprintf("%d rows", len(list))

	if a.query == "" {
		return nil
	}
	return a.runSearch(a.query)
}

func (a *App) runSearch(query string) tea.Cmd {
	if query == "" {
		a.clearSearch()
		return nil
	}
	ctx := a.ctx
	revision := a.viewer.State().Revision
	return func() tea.Msg {
		res, err := a.viewer.Search(ctx, query)
		return SearchDoneMsg{Query: query, Result: res, Revision: revision, Err: err}
	}
}

func (a *App) handleSearchDone(msg SearchDoneMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.Err, viewer.ErrStale), errors.Is(msg.Err, viewer.ErrNotReady):
		return a, nil
	case msg.Err != nil:
		if !errors.Is(msg.Err, context.Canceled) {
			a.log.WithError(msg.Err).Warn("search failed")
		}
		return a, nil
	case msg.Query != a.query:
		return a, nil
	}
	// the list changed after the search finished
	res := msg.Result
	if res == nil || msg.Revision != a.viewer.State().Revision || res != a.viewer.SearchResult() {
		return a, nil
	}

	a.treeView.SetSearch(res)
	a.searchInput.Count = res.Count()
	a.searchInput.Ordinal = 0
	if sel, ok := a.viewer.SelectAt(a.treeView.CursorIndex); ok {
		a.searchInput.Ordinal = sel.Ordinal
		a.treeView.SetCursor(sel.ListIndex)
		a.previewPane.SetNode(a.treeView.List, sel.ListIndex)
	}
	return a, nil
}

func (a *App) moveSelection(move func() (search.Selection, bool)) tea.Cmd {
	sel, ok := move()
	if !ok {
		if a.query != "" {
			return status("No matches for " + a.query)
		}
		return nil
	}
	a.searchInput.Ordinal = sel.Ordinal
	a.treeView.SetCursor(sel.ListIndex)
	a.previewPane.SetNode(a.treeView.List, sel.ListIndex)
	return status(fmt.Sprintf("Match %d of %d", sel.Ordinal, a.searchInput.Count))
}

func (a *App) clearSearch() {
	a.query = ""
	a.viewer.ClearSearch()
	a.treeView.SetSearch(nil)
	a.searchInput.Count, a.searchInput.Ordinal = 0, 0
}

// loadDocument reads the document and loads it into the viewer
func (a *App) loadDocument() tea.Cmd {
	path, input, ctx := a.path, a.input, a.ctx
	return func() tea.Msg {
		text := input
		if path != "" {
			data, err := os.ReadFile(path)
			if err != nil {
				return DocumentLoadedMsg{Err: fmt.Errorf("failed to read %s: %w", path, err)}
			}
			text = data
		}
		return DocumentLoadedMsg{Err: a.viewer.Load(ctx, string(text))}
	}
}

func (a *App) waitForChange() tea.Cmd {
	w, ctx := a.watcher, a.ctx
	return func() tea.Msg {
		select {
		case <-w.Changed():
			return FileChangedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) loadHistory() tea.Cmd {
	if a.history == nil {
		return nil
	}
	store, ctx := a.history, a.ctx
	return func() tea.Msg {
		entries, err := store.GetRecent(ctx, historyLimit)
		if err != nil {
			return HistoryLoadedMsg{Err: err}
		}
		queries := make([]string, len(entries))
		for i, e := range entries {
			queries[i] = e.Query
		}
		return HistoryLoadedMsg{Queries: queries}
	}
}

func (a *App) recordQuery(query string) tea.Cmd {
	if a.history == nil || query == "" {
		return nil
	}
	store, ctx := a.history, a.ctx
	entry := history.Entry{
		Query:      query,
		Document:   a.documentName(),
		MatchCount: a.searchInput.Count,
		SearchedAt: time.Now(),
	}
	return func() tea.Msg {
		if err := store.Add(ctx, entry); err != nil {
			a.log.WithError(err).Warn("failed to record search query")
		}
		return nil
	}
}

func (a *App) copy(write func() error, done string) tea.Cmd {
	if a.previewPane.Content == "" {
		return nil
	}
	return func() tea.Msg {
		if err := write(); err != nil {
			return ErrorMsg{Title: "Clipboard", Message: err.Error()}
		}
		return StatusMsg{Text: done}
	}
}

func (a *App) exportMatches() tea.Cmd {
	res := a.viewer.SearchResult()
	if res == nil || res.Count() == 0 {
		return status("Nothing to export")
	}
	matches := export.Matches(a.treeView.List, res)
	name := fmt.Sprintf("lazyjson-matches-%s.csv", time.Now().Format("20060102-150405"))
	return func() tea.Msg {
		if err := export.ExportToFile(matches, name); err != nil {
			return ErrorMsg{Title: "Export Failed", Message: err.Error()}
		}
		return StatusMsg{Text: fmt.Sprintf("Exported %d matches to %s", len(matches), name)}
	}
}

func (a *App) quit() tea.Cmd {
	a.Close()
	return tea.Quit
}

func status(text string) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg{Text: text}
	}
}

func (a *App) documentName() string {
	if a.path == "" {
		return "stdin"
	}
	return filepath.Base(a.path)
}

// View implements tea.Model
func (a *App) View() string {
	if a.state.Width == 0 {
		return ""
	}

	if a.showError {
		return lipgloss.Place(
			a.state.Width, a.state.Height,
			lipgloss.Center, lipgloss.Center,
			a.errorOverlay.View(),
		)
	}

	if a.state.ViewMode == HelpMode {
		return help.Render(a.state.Width, a.state.Height, a.theme)
	}

	return zone.Scan(a.renderNormalView())
}

func (a *App) renderNormalView() string {
	topBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.BorderFocused).
		Foreground(a.theme.Background).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyjson", a.viewer.State().Status.String()))

	bottomLeft := "[/] Search | [?] Help | [q] Quit"
	if a.status != "" {
		bottomLeft = a.status
	}
	bottomRight := ""
	if a.query != "" {
		bottomRight = fmt.Sprintf("%q %d/%d", a.query, a.searchInput.Ordinal, a.searchInput.Count)
	}
	bottomBar := lipgloss.NewStyle().
		Width(a.state.Width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(bottomLeft, bottomRight))

	a.treeView.Width = a.panel.Width
	a.treeView.Height = a.panel.ContentHeight()
	a.panel.Content = a.treeView.View()

	parts := []string{topBar}
	if a.state.ViewMode == SearchMode {
		a.searchInput.Width = a.state.Width
		parts = append(parts, a.searchInput.View())
	}
	parts = append(parts, a.panel.View())
	if a.previewPane.Visible {
		a.previewPane.Width = a.state.Width
		parts = append(parts, a.previewPane.View())
	}
	parts = append(parts, bottomBar)

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// updatePanelDimensions calculates panel sizes based on window size
func (a *App) updatePanelDimensions() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top and bottom bar plus the panel border
	reserved := 4
	if a.state.ViewMode == SearchMode {
		reserved += 4 // bordered input and its help line
	}
	if a.previewPane.Visible {
		a.previewPane.MaxHeight = max(a.state.Height/3, 5)
		reserved += a.previewPane.Height()
	}

	a.panel.Width = max(a.state.Width-2, 20)
	a.panel.Height = max(a.state.Height-reserved, 3)
}

func (a *App) updatePanelStyles() {
	a.panel.Style = lipgloss.NewStyle().BorderForeground(a.theme.BorderFocused)
}

// formatStatusBar formats a status bar with left and right aligned content
func (a *App) formatStatusBar(left, right string) string {
	// Account for padding (2 chars on each side = 4 total)
	availableWidth := max(a.state.Width-4, 0)

	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	if leftWidth+rightWidth > availableWidth {
		return lipgloss.NewStyle().MaxWidth(availableWidth).Render(left + " " + right)
	}

	spacing := availableWidth - leftWidth - rightWidth
	return left + lipgloss.NewStyle().Width(spacing).Render("") + right
}

// ShowError displays an error overlay with the given title and message
func (a *App) ShowError(title, message string) {
	a.errorOverlay.SetError(title, message)
	a.showError = true
}

// DismissError hides the error overlay
func (a *App) DismissError() {
	a.showError = false
}
