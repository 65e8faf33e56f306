package main

import (
	"github.com/spf13/cobra"
)

func newPairsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "pairs [label]...",
		Short:   "Shortest paths between every pair of labels (all nodes if none given)",
		GroupID: "query",
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs, err := a.planner.AllPairs(cmd.Context(), args)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), pairs)
			}
			printPairs(cmd.OutOrStdout(), pairs)
			return nil
		},
	}
}
