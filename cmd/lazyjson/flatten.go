package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rebeliceyang/lazyjson/internal/jsonb"
	"github.com/rebeliceyang/lazyjson/internal/models"
)

func newFlattenCmd(e *env) *cobra.Command {
	var (
		policy  string
		toggles []string
		showIDs bool
	)

	cmd := &cobra.Command{
		Use:   "flatten [file|-]",
		Short: "Print the visible rows of a document",
		Long: `Print the rows the tree view would show for a document.

Examples:
  lazyjson flatten data.json --policy expanded
  lazyjson flatten data.json --ids --toggle node:3`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := e.buildList(cmd, args, policy)
			if err != nil {
				return err
			}

			expander, err := e.cfg.Expander()
			if err != nil {
				return err
			}
			for _, id := range toggles {
				if list.IndexOf(models.NodeID(id)) < 0 {
					return fmt.Errorf("no visible node %s", id)
				}
				if _, ok := list[list.IndexOf(models.NodeID(id))].(models.Collapsable); !ok {
					return fmt.Errorf("%s is not an object or array", id)
				}
				list = expander.ToggleByID(list, models.NodeID(id))
			}

			return writeRows(cmd.OutOrStdout(), list, showIDs)
		},
	}

	cmd.Flags().StringVarP(&policy, "policy", "p", "", "initial expansion: first-item-expanded, expanded or collapsed")
	cmd.Flags().StringSliceVarP(&toggles, "toggle", "t", nil, "toggle these node ids, in order")
	cmd.Flags().BoolVar(&showIDs, "ids", false, "prefix rows with their node id")
	return cmd
}

// buildList reads the document argument and builds its rows. An empty
// policy falls back to the configured one.
func (e *env) buildList(cmd *cobra.Command, args []string, policy string) (models.List, error) {
	if policy == "" {
		policy = e.cfg.Viewer.ExpansionPolicy
	}
	p, err := models.ParseExpansionPolicy(policy)
	if err != nil {
		return nil, err
	}

	_, data, err := readDocument(cmd.InOrStdin(), args)
	if err != nil {
		return nil, err
	}
	return jsonb.BuildContext(cmd.Context(), string(data), p)
}

func writeRows(w io.Writer, list models.List, showIDs bool) error {
	for _, n := range list {
		line := jsonb.Line(n)
		if showIDs {
			line = fmt.Sprintf("%-10s %s", n.ID(), line)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
