package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/history"
)

func newHistoryCmd(e *env) *cobra.Command {
	var (
		prefix   string
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List or clear remembered search queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := e.cfg.HistoryPath()
			if err != nil {
				return err
			}
			store, err := history.NewStore(path, e.cfg.History.MaxEntries)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if clearAll {
				if err := store.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Search history cleared")
				return nil
			}
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}

			var entries []history.Entry
			if prefix != "" {
				entries, err = store.Search(cmd.Context(), prefix, limit)
			} else {
				entries, err = store.GetRecent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, entry := range entries {
				fmt.Fprintf(tw, "%s\t%q\t%d matches\t%s\n",
					entry.SearchedAt.Format("2006-01-02 15:04"), entry.Query, entry.MatchCount, entry.Document)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&prefix, "prefix", "", "only queries starting with this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of queries")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "remove every remembered query")
	return cmd
}
