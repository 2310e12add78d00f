package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/export"
	"github.com/rebeliceyang/lazyjson/internal/history"
	"github.com/rebeliceyang/lazyjson/internal/search"
)

func newSearchCmd(e *env) *cobra.Command {
	var (
		policy     string
		exportPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "search <query> [file|-]",
		Short: "Find keys and values in the visible rows",
		Long: `Search the visible rows of a document, case-insensitively.

Rows hidden inside collapsed objects or arrays are not searched, so use
--policy expanded to search the whole document.

Examples:
  lazyjson search name data.json --policy expanded
  lazyjson search id data.json -p expanded --export ids.csv
  cat data.json | lazyjson search error --json`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			list, err := e.buildList(cmd, args[1:], policy)
			if err != nil {
				return err
			}

			res, err := search.SearchContext(cmd.Context(), list, query, search.Options{ChunkSize: e.cfg.Search.ChunkSize})
			if err != nil {
				return err
			}
			matches := export.Matches(list, res)
			e.log.WithField("query", query).WithField("count", len(matches)).Debug("search finished")

			document := "stdin"
			if len(args) > 1 && args[1] != "-" {
				document = args[1]
			}
			if store := e.openHistory(); store != nil {
				err := store.Add(cmd.Context(), history.Entry{
					Query: query, Document: document, MatchCount: len(matches), SearchedAt: time.Now(),
				})
				if err != nil {
					e.log.WithError(err).Warn("failed to record search query")
				}
				_ = store.Close()
			}

			out := cmd.OutOrStdout()
			switch {
			case exportPath != "":
				if err := export.ExportToFile(matches, exportPath); err != nil {
					return err
				}
				fmt.Fprintf(out, "Exported %d matches to %s\n", len(matches), exportPath)
				return nil
			case asJSON:
				return export.WriteJSON(out, matches)
			}

			if len(matches) == 0 {
				fmt.Fprintf(out, "No matches for %q\n", query)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, m := range matches {
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", m.ListIndex, m.Path, m.Field, m.Text)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(out, "%d matches\n", len(matches))
			return nil
		},
	}

	cmd.Flags().StringVarP(&policy, "policy", "p", "", "initial expansion: first-item-expanded, expanded or collapsed")
	cmd.Flags().StringVarP(&exportPath, "export", "o", "", "write matches to a .csv or .json file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print matches as JSON")
	return cmd
}
