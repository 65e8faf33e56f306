// Package route chains shortest-path searches over ordered waypoints and
// turns distances into travel times.
package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"golang.org/x/sync/errgroup"

	"floor-planner/internal/jobshop"
	"floor-planner/internal/layout"
	"floor-planner/internal/pathfind"
)

var (
	ErrNoRoute      = errors.New("no route")
	ErrInvalidSpeed = errors.New("speed must be positive")
)

// DefaultSpeed is the travel speed in distance units per time unit.
const DefaultSpeed = 5.0

// Config tunes a Planner. Zero values select defaults.
type Config struct {
	Speed     float64
	Workers   int
	Heuristic pathfind.Heuristic
	Observer  pathfind.Observer
}

// Planner answers route queries against one layout. It is safe for
// concurrent use.
type Planner struct {
	graph   *layout.Graph
	speed   float64
	workers int
	opts    []pathfind.Option
}

// Leg is the shortest path between two consecutive waypoints.
type Leg struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Distance float64        `json:"distance"`
	Time     float64        `json:"time"`
	Path     []string       `json:"path"`
	Polyline orb.LineString `json:"polyline"` // turning points only
}

// Route is a sequence of legs.
type Route struct {
	Legs []Leg `json:"legs"`
}

// Distance is the summed leg distance.
func (r Route) Distance() float64 {
	var d float64
	for _, l := range r.Legs {
		d += l.Distance
	}
	return d
}

// Time is the summed leg travel time.
func (r Route) Time() float64 {
	var t float64
	for _, l := range r.Legs {
		t += l.Time
	}
	return t
}

// PairResult is one entry of an all-pairs report.
type PairResult struct {
	Start    string   `json:"start"`
	End      string   `json:"end"`
	Distance float64  `json:"distance"`
	Time     float64  `json:"time"`
	Path     []string `json:"path"`
}

// JobRoute is the route a job takes from the start location through its
// machines to the end location.
type JobRoute struct {
	Job       int      `json:"job"`
	Waypoints []string `json:"waypoints"`
	Route     Route    `json:"route"`
}

// NewPlanner validates cfg and returns a planner over g.
func NewPlanner(g *layout.Graph, cfg Config) (*Planner, error) {
	if g == nil {
		return nil, errors.New("route: nil graph")
	}
	speed := cfg.Speed
	if speed == 0 {
		speed = DefaultSpeed
	}
	if speed < 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return nil, fmt.Errorf("speed %v: %w", cfg.Speed, ErrInvalidSpeed)
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	p := &Planner{graph: g, speed: speed, workers: workers}
	if cfg.Heuristic != nil {
		p.opts = append(p.opts, pathfind.WithHeuristic(cfg.Heuristic))
	}
	if cfg.Observer != nil {
		p.opts = append(p.opts, pathfind.WithObserver(cfg.Observer))
	}
	return p, nil
}

// Graph returns the layout the planner searches.
func (p *Planner) Graph() *layout.Graph { return p.graph }

// Speed returns the configured travel speed.
func (p *Planner) Speed() float64 { return p.speed }

// Time converts a distance into travel time.
func (p *Planner) Time(distance float64) float64 {
	return distance / p.speed
}

// Find resolves both labels and runs one A* search.
func (p *Planner) Find(from, to string) (pathfind.Result, error) {
	start, err := p.graph.Resolve(from)
	if err != nil {
		return pathfind.Result{}, err
	}
	goal, err := p.graph.Resolve(to)
	if err != nil {
		return pathfind.Result{}, err
	}
	return pathfind.Find(p.graph, start, goal, p.opts...)
}

// ShortestPath returns the cost and node names of the cheapest path. An
// unreachable goal yields +Inf and a nil path without error.
func (p *Planner) ShortestPath(from, to string) (float64, []string, error) {
	res, err := p.Find(from, to)
	if err != nil {
		return math.Inf(1), nil, err
	}
	return res.Cost, res.Path, nil
}

// Route computes one leg per consecutive waypoint pair. If any leg has no
// path the whole route fails with ErrNoRoute; no partial route is returned.
func (p *Planner) Route(waypoints []string) (Route, error) {
	if len(waypoints) < 2 {
		return Route{Legs: []Leg{}}, nil
	}

	legs := make([]Leg, 0, len(waypoints)-1)
	for i := 0; i+1 < len(waypoints); i++ {
		from, to := waypoints[i], waypoints[i+1]
		res, err := p.Find(from, to)
		if err != nil {
			return Route{}, fmt.Errorf("leg %d %s->%s: %w", i, from, to, err)
		}
		if !res.Found {
			return Route{}, fmt.Errorf("leg %d %s->%s: %w", i, from, to, ErrNoRoute)
		}
		line, err := p.graph.Polyline(res.Path, 0)
		if err != nil {
			return Route{}, fmt.Errorf("leg %d %s->%s: %w", i, from, to, err)
		}
		legs = append(legs, Leg{
			From:     from,
			To:       to,
			Distance: res.Cost,
			Time:     p.Time(res.Cost),
			Path:     res.Path,
			Polyline: line,
		})
	}
	return Route{Legs: legs}, nil
}

// AllPairs computes the shortest path for every unordered pair of labels,
// skipping pairs with no path. An empty label list means every node of the
// graph. Searches run in parallel; the output is in (i, j) order.
func (p *Planner) AllPairs(ctx context.Context, labels []string) ([]PairResult, error) {
	if len(labels) == 0 {
		for _, n := range p.graph.Nodes() {
			labels = append(labels, n.Name)
		}
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, len(labels)*(len(labels)-1)/2)
	for i := range labels {
		for j := i + 1; j < len(labels); j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	results := make([]pathfind.Result, len(pairs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(p.workers)

	for k, pr := range pairs {
		k, pr := k, pr
		eg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			res, err := p.Find(labels[pr.i], labels[pr.j])
			if err != nil {
				return fmt.Errorf("%s->%s: %w", labels[pr.i], labels[pr.j], err)
			}
			results[k] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	out := make([]PairResult, 0, len(pairs))
	for k, pr := range pairs {
		res := results[k]
		if !res.Found {
			continue
		}
		out = append(out, PairResult{
			Start:    labels[pr.i],
			End:      labels[pr.j],
			Distance: res.Cost,
			Time:     p.Time(res.Cost),
			Path:     res.Path,
		})
	}
	slog.Debug("all pairs computed", "labels", len(labels), "pairs", len(pairs), "connected", len(out))
	return out, nil
}

// PlanJobs routes every job of in from start through its machines, in visit
// order, to end. Machine m is looked up under the label strconv.Itoa(m).
func (p *Planner) PlanJobs(in *jobshop.Instance, start, end string) ([]JobRoute, error) {
	out := make([]JobRoute, 0, len(in.Tasks))
	for job := range in.Tasks {
		waypoints := make([]string, 0, len(in.Tasks[job])+2)
		waypoints = append(waypoints, start)
		for _, m := range in.MachineOrder(job) {
			waypoints = append(waypoints, strconv.Itoa(m))
		}
		waypoints = append(waypoints, end)

		r, err := p.Route(waypoints)
		if err != nil {
			return nil, fmt.Errorf("job %d: %w", job, err)
		}
		slog.Debug("job routed", "job", job, "legs", len(r.Legs), "distance", r.Distance())
		out = append(out, JobRoute{Job: job, Waypoints: waypoints, Route: r})
	}
	return out, nil
}
