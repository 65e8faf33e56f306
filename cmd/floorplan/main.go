package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"floor-planner/internal/config"
	"floor-planner/internal/layout"
	"floor-planner/internal/metrics"
	"floor-planner/internal/pathfind"
	"floor-planner/internal/route"
)

// app carries the state every subcommand shares once the root pre-run has
// loaded configuration and the layout.
type app struct {
	configPath string
	layoutPath string
	jsonOutput bool

	cfg     *config.Config
	planner *route.Planner
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "floorplan <command>",
		Short:         "Shortest paths and job routes on a shop-floor layout",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == cobra.ShellCompRequestCmd {
				return nil
			}
			return a.setup()
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("FLOORPLAN_CONFIG"), "TOML config file")
	root.PersistentFlags().StringVar(&a.layoutPath, "layout", "", "layout file (.yaml, .geojson or .json), relative to the working directory; overrides config")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	root.AddGroup(
		&cobra.Group{ID: "query", Title: "Queries:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Queries
	root.AddCommand(newPathCmd(a))
	root.AddCommand(newRouteCmd(a))
	root.AddCommand(newPairsCmd(a))
	root.AddCommand(newJobsCmd(a))
	root.AddCommand(newNearestCmd(a))

	// System
	root.AddCommand(newServeCmd(a))

	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.layoutPath != "" {
		cfg.Layout = a.layoutPath
	}
	a.cfg = cfg

	lvl, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	h, err := pathfind.HeuristicByName(cfg.Heuristic)
	if err != nil {
		return err
	}

	g, err := layout.Load(cfg.Layout)
	if err != nil {
		return fmt.Errorf("loading layout: %w", err)
	}

	a.planner, err = route.NewPlanner(g, route.Config{
		Speed:     cfg.Speed,
		Workers:   cfg.Workers,
		Heuristic: h,
		Observer:  metrics.ObserveSearch,
	})
	return err
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
