// Package layout holds the static facility graph: named locations with planar
// coordinates, undirected weighted corridors between them and optional
// obstacles the corridors must not cross.
//
// A Graph is built once and is read-only afterwards, so any number of
// pathfinding queries may share it without locking.
package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

var (
	ErrUnknownNode   = errors.New("unknown node")
	ErrInvalidNode   = errors.New("invalid node")
	ErrDuplicateNode = errors.New("duplicate node")
	ErrInvalidWeight = errors.New("invalid edge weight")
	ErrObstructed    = errors.New("edge crosses obstacle")
)

// Node is a named location on the floor.
type Node struct {
	Name string
	Pos  orb.Point
}

// Edge is an undirected corridor between two nodes.
type Edge struct {
	Name   string
	From   string
	To     string
	Weight float64
}

// Neighbor is one adjacency entry: the node on the other side of an edge and
// that edge's weight.
type Neighbor struct {
	Node   string
	Weight float64
}

// Obstacle is an area corridors may not pass through, e.g. a machine footprint.
type Obstacle struct {
	Name string
	Ring orb.Ring
}

// NodeSpec, EdgeSpec and ObstacleSpec are the construction tuples accepted by
// New. They double as the on-disk snapshot format.
type NodeSpec struct {
	Name string  `json:"name" yaml:"name"`
	X    float64 `json:"x" yaml:"x"`
	Y    float64 `json:"y" yaml:"y"`
}

type EdgeSpec struct {
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	From   string  `json:"from" yaml:"from"`
	To     string  `json:"to" yaml:"to"`
	Weight float64 `json:"weight" yaml:"weight"`
}

type ObstacleSpec struct {
	Name   string       `json:"name,omitempty" yaml:"name,omitempty"`
	Points [][2]float64 `json:"points" yaml:"points"`
}

// Spec is a complete layout description.
type Spec struct {
	Nodes     []NodeSpec        `json:"nodes" yaml:"nodes"`
	Edges     []EdgeSpec        `json:"edges" yaml:"edges"`
	Obstacles []ObstacleSpec    `json:"obstacles,omitempty" yaml:"obstacles,omitempty"`
	Aliases   map[string]string `json:"aliases,omitempty" yaml:"aliases,omitempty"`
}

// Graph is an immutable undirected weighted graph over named nodes.
type Graph struct {
	nodes     []Node
	index     map[string]int
	edges     []Edge
	adj       [][]Neighbor
	aliases   map[string]string
	obstacles []Obstacle
	spatial   *SpatialIndex
}

// Build creates a graph from explicit node and edge tuples.
func Build(nodes []NodeSpec, edges []EdgeSpec) (*Graph, error) {
	return New(Spec{Nodes: nodes, Edges: edges})
}

// New validates spec and builds the graph. Malformed input is rejected here
// rather than surfacing in the middle of a search.
func New(spec Spec) (*Graph, error) {
	g := &Graph{
		nodes:   make([]Node, 0, len(spec.Nodes)),
		index:   make(map[string]int, len(spec.Nodes)),
		edges:   make([]Edge, 0, len(spec.Edges)),
		adj:     make([][]Neighbor, len(spec.Nodes)),
		aliases: make(map[string]string, len(spec.Aliases)),
	}

	for _, ns := range spec.Nodes {
		if ns.Name == "" {
			return nil, fmt.Errorf("node at (%g, %g): empty name: %w", ns.X, ns.Y, ErrInvalidNode)
		}
		if math.IsNaN(ns.X) || math.IsNaN(ns.Y) || math.IsInf(ns.X, 0) || math.IsInf(ns.Y, 0) {
			return nil, fmt.Errorf("node %q: non-finite coordinate: %w", ns.Name, ErrInvalidNode)
		}
		if _, ok := g.index[ns.Name]; ok {
			return nil, fmt.Errorf("node %q: %w", ns.Name, ErrDuplicateNode)
		}
		g.index[ns.Name] = len(g.nodes)
		g.nodes = append(g.nodes, Node{Name: ns.Name, Pos: orb.Point{ns.X, ns.Y}})
	}

	for _, ob := range spec.Obstacles {
		if len(ob.Points) < 3 {
			return nil, fmt.Errorf("obstacle %q: need at least 3 points, got %d", ob.Name, len(ob.Points))
		}
		ring := make(orb.Ring, 0, len(ob.Points)+1)
		for _, p := range ob.Points {
			ring = append(ring, orb.Point{p[0], p[1]})
		}
		if !ring.Closed() {
			ring = append(ring, ring[0])
		}
		g.obstacles = append(g.obstacles, Obstacle{Name: ob.Name, Ring: ring})
	}
	g.spatial = NewSpatialIndex(g.nodes, g.obstacles)

	for i, es := range spec.Edges {
		name := es.Name
		if name == "" {
			name = fmt.Sprintf("%s-%s", es.From, es.To)
		}
		from, ok := g.index[es.From]
		if !ok {
			return nil, fmt.Errorf("edge %q: start %q: %w", name, es.From, ErrUnknownNode)
		}
		to, ok := g.index[es.To]
		if !ok {
			return nil, fmt.Errorf("edge %q: end %q: %w", name, es.To, ErrUnknownNode)
		}
		if es.Weight < 0 || math.IsNaN(es.Weight) || math.IsInf(es.Weight, 0) {
			return nil, fmt.Errorf("edge %q: weight %v: %w", name, es.Weight, ErrInvalidWeight)
		}
		if blocker, blocked := g.spatial.Obstruction(g.nodes[from].Pos, g.nodes[to].Pos); blocked {
			return nil, fmt.Errorf("edge %q (#%d) through %q: %w", name, i, blocker.Name, ErrObstructed)
		}

		g.edges = append(g.edges, Edge{Name: name, From: es.From, To: es.To, Weight: es.Weight})
		g.adj[from] = append(g.adj[from], Neighbor{Node: es.To, Weight: es.Weight})
		if from != to {
			g.adj[to] = append(g.adj[to], Neighbor{Node: es.From, Weight: es.Weight})
		}
	}

	for alias, target := range spec.Aliases {
		if _, ok := g.index[target]; !ok {
			return nil, fmt.Errorf("alias %q -> %q: %w", alias, target, ErrUnknownNode)
		}
		g.aliases[alias] = target
	}

	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in declaration order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Obstacles returns the declared obstacles.
func (g *Graph) Obstacles() []Obstacle {
	out := make([]Obstacle, len(g.obstacles))
	copy(out, g.obstacles)
	return out
}

// Node looks a node up by name.
func (g *Graph) Node(name string) (Node, error) {
	i, ok := g.index[name]
	if !ok {
		return Node{}, fmt.Errorf("%q: %w", name, ErrUnknownNode)
	}
	return g.nodes[i], nil
}

// Has reports whether name is a node of g.
func (g *Graph) Has(name string) bool {
	_, ok := g.index[name]
	return ok
}

// Neighbors returns every node adjacent to name along with the connecting
// edge weight. Isolated and unknown nodes have no neighbors.
func (g *Graph) Neighbors(name string) []Neighbor {
	i, ok := g.index[name]
	if !ok {
		return nil
	}
	return g.adj[i]
}

// HasEdge reports whether a and b are directly connected, returning the
// lightest weight among parallel edges.
func (g *Graph) HasEdge(a, b string) (float64, bool) {
	best, found := math.Inf(1), false
	for _, n := range g.Neighbors(a) {
		if n.Node == b && n.Weight < best {
			best, found = n.Weight, true
		}
	}
	return best, found
}

// Resolve maps a waypoint label to a node name. Labels may be aliases
// (e.g. "W" for the warehouse) or plain node names.
func (g *Graph) Resolve(label string) (string, error) {
	if target, ok := g.aliases[label]; ok {
		return target, nil
	}
	if g.Has(label) {
		return label, nil
	}
	return "", fmt.Errorf("%q: %w", label, ErrUnknownNode)
}

// Aliases returns a copy of the alias table.
func (g *Graph) Aliases() map[string]string {
	out := make(map[string]string, len(g.aliases))
	for k, v := range g.aliases {
		out[k] = v
	}
	return out
}

// Bound returns the bounding box of all node positions.
func (g *Graph) Bound() orb.Bound {
	if len(g.nodes) == 0 {
		return orb.Bound{}
	}
	b := g.nodes[0].Pos.Bound()
	for _, n := range g.nodes[1:] {
		b = b.Extend(n.Pos)
	}
	return b
}

// Segments returns every edge once as a two-point line string.
func (g *Graph) Segments() []orb.LineString {
	lines := make([]orb.LineString, 0, len(g.edges))
	for _, e := range g.edges {
		from := g.nodes[g.index[e.From]].Pos
		to := g.nodes[g.index[e.To]].Pos
		lines = append(lines, orb.LineString{from, to})
	}
	return lines
}

// Nearest returns the node closest to p and its Euclidean distance.
func (g *Graph) Nearest(p orb.Point) (Node, float64, error) {
	i, d, ok := g.spatial.NearestNode(p)
	if !ok {
		return Node{}, math.Inf(1), fmt.Errorf("nearest to (%g, %g): empty graph: %w", p[0], p[1], ErrUnknownNode)
	}
	return g.nodes[i], d, nil
}

// Spec reconstructs the construction tuples of g.
func (g *Graph) Spec() Spec {
	spec := Spec{
		Nodes: make([]NodeSpec, 0, len(g.nodes)),
		Edges: make([]EdgeSpec, 0, len(g.edges)),
	}
	for _, n := range g.nodes {
		spec.Nodes = append(spec.Nodes, NodeSpec{Name: n.Name, X: n.Pos[0], Y: n.Pos[1]})
	}
	for _, e := range g.edges {
		spec.Edges = append(spec.Edges, EdgeSpec{Name: e.Name, From: e.From, To: e.To, Weight: e.Weight})
	}
	for _, o := range g.obstacles {
		pts := make([][2]float64, 0, len(o.Ring))
		for _, p := range o.Ring {
			pts = append(pts, [2]float64{p[0], p[1]})
		}
		spec.Obstacles = append(spec.Obstacles, ObstacleSpec{Name: o.Name, Points: pts})
	}
	if len(g.aliases) > 0 {
		spec.Aliases = g.Aliases()
	}
	return spec
}
