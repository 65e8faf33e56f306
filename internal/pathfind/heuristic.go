package pathfind

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Heuristic estimates the remaining cost between two positions. It must never
// overestimate the true shortest-path cost for A* to return optimal paths.
type Heuristic func(a, b orb.Point) float64

// Manhattan is |ax-bx| + |ay-by|. Admissible whenever every edge weight is at
// least the Manhattan distance between its endpoints, which holds for
// axis-aligned corridor layouts.
func Manhattan(a, b orb.Point) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1])
}

// Euclidean is the straight-line distance. Admissible for any layout whose
// weights are at least the straight-line length of each edge.
func Euclidean(a, b orb.Point) float64 {
	return planar.Distance(a, b)
}

// Zero reduces A* to Dijkstra's algorithm.
func Zero(_, _ orb.Point) float64 { return 0 }

// HeuristicByName maps a configuration value to a Heuristic.
func HeuristicByName(name string) (Heuristic, error) {
	switch name {
	case "", "manhattan":
		return Manhattan, nil
	case "euclidean":
		return Euclidean, nil
	case "zero", "dijkstra":
		return Zero, nil
	default:
		return nil, fmt.Errorf("unknown heuristic %q (want manhattan, euclidean or zero)", name)
	}
}
