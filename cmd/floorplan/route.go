package main

import (
	"github.com/spf13/cobra"
)

func newRouteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "route <waypoint> <waypoint>...",
		Short:   "Chain shortest paths through ordered waypoints",
		GroupID: "query",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.planner.Route(args)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), map[string]any{
					"legs":     r.Legs,
					"distance": r.Distance(),
					"time":     r.Time(),
				})
			}
			printRoute(cmd.OutOrStdout(), r)
			return nil
		},
	}
}
