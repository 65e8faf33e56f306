package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"floor-planner/internal/jobshop"
)

func newJobsCmd(a *app) *cobra.Command {
	var start, end string

	cmd := &cobra.Command{
		Use:     "jobs <instance-file>",
		Short:   "Route every job of a job-shop instance from start through its machines to end",
		GroupID: "query",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := jobshop.ReadFile(args[0])
			if err != nil {
				return err
			}
			if start == "" {
				start = a.cfg.Start
			}
			if end == "" {
				end = a.cfg.End
			}

			jobs, err := a.planner.PlanJobs(in, start, end)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOutput {
				return printJSON(out, jobs)
			}
			for _, j := range jobs {
				fmt.Fprintf(out, "Job %d: %v\n", j.Job, j.Waypoints)
				printRoute(out, j.Route)
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "start label (default from config)")
	cmd.Flags().StringVar(&end, "end", "", "end label (default from config)")
	return cmd
}
