package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"floor-planner/internal/route"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printRoute(w io.Writer, r route.Route) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FROM\tTO\tDISTANCE\tTIME\tPATH")
	for _, l := range r.Legs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\n", l.From, l.To, l.Distance, l.Time, strings.Join(l.Path, " -> "))
	}
	tw.Flush()
	fmt.Fprintf(w, "\nTotal: distance %g, time %g\n", r.Distance(), r.Time())
}

func printPairs(w io.Writer, pairs []route.PairResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "START\tEND\tDISTANCE\tTIME\tPATH")
	for _, p := range pairs {
		fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%s\n", p.Start, p.End, p.Distance, p.Time, strings.Join(p.Path, " -> "))
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d connected pairs\n", len(pairs))
}
