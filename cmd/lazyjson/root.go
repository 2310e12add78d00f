package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/app"
	"github.com/rebeliceyang/lazyjson/internal/history"
)

func newRootCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "lazyjson [file|-]",
		Short: "Browse JSON documents as a collapsible tree",
		Long: `Browse a JSON document as a collapsible tree with incremental search.

Without a file argument the document is read from standard input.

Examples:
  lazyjson data.json
  curl -s https://api.example.com/items | lazyjson
  lazyjson search id data.json --export ids.csv`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, input, err := readDocument(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			if path == "" && e.logSink == nil {
				// stderr belongs to the terminal UI
				e.log.SetOutput(io.Discard)
			}

			store := e.openHistory()
			if store != nil {
				defer func() { _ = store.Close() }()
			}

			zone.NewGlobal()
			defer zone.Close()

			model, err := app.New(app.Options{
				Config:  e.cfg,
				Path:    path,
				Input:   input,
				Logger:  logrus.NewEntry(e.log),
				History: store,
			})
			if err != nil {
				return err
			}
			defer model.Close()

			opts := []tea.ProgramOption{tea.WithAltScreen()}
			if e.cfg.UI.MouseEnabled {
				opts = append(opts, tea.WithMouseCellMotion())
			}
			if path == "" {
				// stdin carried the document; keys come from the terminal
				tty, err := os.Open("/dev/tty")
				if err != nil {
					return fmt.Errorf("no terminal for keyboard input: %w", err)
				}
				defer func() { _ = tty.Close() }()
				opts = append(opts, tea.WithInput(tty))
			}

			if _, err := tea.NewProgram(model, opts...).Run(); err != nil {
				return fmt.Errorf("error running program: %w", err)
			}
			return nil
		},
	}
}

// openHistory opens the query history when enabled. Failures only disable it.
func (e *env) openHistory() *history.Store {
	if !e.cfg.History.Enabled {
		return nil
	}
	path, err := e.cfg.HistoryPath()
	if err != nil {
		e.log.WithError(err).Warn("search history disabled")
		return nil
	}
	store, err := history.NewStore(path, e.cfg.History.MaxEntries)
	if err != nil {
		e.log.WithError(err).Warn("search history disabled")
		return nil
	}
	return store
}

// readDocument resolves the document argument. A file argument returns its
// path along with the contents; "-" or no argument reads stdin.
func readDocument(stdin io.Reader, args []string) (path string, data []byte, err error) {
	if len(args) == 0 || args[0] == "-" {
		if f, ok := stdin.(*os.File); ok && len(args) == 0 {
			if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
				return "", nil, fmt.Errorf("no input: pass a file or pipe JSON on stdin")
			}
		}
		data, err = io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return "", data, nil
	}

	data, err = os.ReadFile(args[0])
	if err != nil {
		return "", nil, err
	}
	return args[0], data, nil
}
