package main

import (
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/spf13/cobra"
)

func newNearestCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "nearest <x> <y>",
		Short:   "Find the node closest to a coordinate",
		GroupID: "query",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("x: %w", err)
			}
			y, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("y: %w", err)
			}

			n, d, err := a.planner.Graph().Nearest(orb.Point{x, y})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(out, map[string]any{"node": n.Name, "x": n.Pos[0], "y": n.Pos[1], "distance": d})
			}
			fmt.Fprintf(out, "%s (%g, %g) at distance %g\n", n.Name, n.Pos[0], n.Pos[1], d)
			return nil
		},
	}
}
