package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPathCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "path <from> <to>",
		Short:   "Shortest path between two nodes",
		GroupID: "query",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.planner.Find(args[0], args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if a.jsonOutput {
				v := map[string]any{
					"from":     args[0],
					"to":       args[1],
					"found":    res.Found,
					"path":     res.Path,
					"expanded": res.Expanded,
				}
				// JSON has no encoding for the +Inf of a missing path.
				if res.Found {
					v["distance"] = res.Cost
					v["time"] = a.planner.Time(res.Cost)
				}
				return printJSON(out, v)
			}

			if !res.Found {
				fmt.Fprintf(out, "No path from %s to %s\n", args[0], args[1])
				return nil
			}
			fmt.Fprintf(out, "Distance: %g\n", res.Cost)
			fmt.Fprintf(out, "Time:     %g\n", a.planner.Time(res.Cost))
			fmt.Fprintf(out, "Path:     %s\n", strings.Join(res.Path, " -> "))
			fmt.Fprintf(out, "Expanded: %d\n", res.Expanded)
			return nil
		},
	}
}
