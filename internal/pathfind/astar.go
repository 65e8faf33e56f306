// Package pathfind computes minimum-weight paths over a layout graph with A*.
//
// Every call to Find owns its search state (scores, back-pointers, frontier),
// so concurrent searches over one read-only graph need no synchronisation.
package pathfind

import (
	"container/heap"
	"fmt"
	"math"
	"time"

	"floor-planner/internal/layout"
)

// Graph is the read-only view A* needs. *layout.Graph satisfies it.
type Graph interface {
	Node(name string) (layout.Node, error)
	Neighbors(name string) []layout.Neighbor
}

// Result is the outcome of one search. When no path exists Found is false,
// Cost is +Inf and Path is nil; that is an ordinary outcome, not an error.
type Result struct {
	Found    bool
	Cost     float64
	Path     []string
	Expanded int
	Elapsed  time.Duration
}

// NotFound is the distinguished result for unreachable goals.
func NotFound() Result {
	return Result{Cost: math.Inf(1)}
}

// Observer receives every completed search, e.g. for metrics.
type Observer func(start, goal string, r Result)

type options struct {
	heuristic Heuristic
	observer  Observer
}

// Option configures Find.
type Option func(*options)

// WithHeuristic replaces the default Manhattan heuristic.
func WithHeuristic(h Heuristic) Option {
	return func(o *options) {
		if h != nil {
			o.heuristic = h
		}
	}
}

// WithObserver registers a callback invoked after each search.
func WithObserver(fn Observer) Option {
	return func(o *options) { o.observer = fn }
}

// searchNode represents a node in the A* frontier
type searchNode struct {
	name   string
	g      float64 // Cost from start to this node
	h      float64 // Heuristic cost from this node to goal
	f      float64 // Total cost (g + h)
	seq    uint64  // Insertion order, breaks ties between equal f
	parent *searchNode
	index  int // Index in the heap, -1 when not queued
}

// priorityQueue implements heap.Interface ordered by f, then insertion order.
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	if pq[i].f != pq[j].f {
		return pq[i].f < pq[j].f
	}
	return pq[i].seq < pq[j].seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	node := x.(*searchNode)
	node.index = n
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// Find returns the minimum-weight path from start to goal. Unknown node
// names are errors wrapping layout.ErrUnknownNode; an unreachable goal is
// reported through Result.Found.
func Find(g Graph, start, goal string, opts ...Option) (Result, error) {
	o := options{heuristic: Manhattan}
	for _, opt := range opts {
		opt(&o)
	}

	began := time.Now()
	res, err := search(g, start, goal, o.heuristic)
	if err != nil {
		return Result{}, err
	}
	res.Elapsed = time.Since(began)

	if o.observer != nil {
		o.observer(start, goal, res)
	}
	return res, nil
}

func search(g Graph, start, goal string, h Heuristic) (Result, error) {
	startNode, err := g.Node(start)
	if err != nil {
		return Result{}, fmt.Errorf("start: %w", err)
	}
	goalNode, err := g.Node(goal)
	if err != nil {
		return Result{}, fmt.Errorf("goal: %w", err)
	}

	if start == goal {
		return Result{Found: true, Cost: 0, Path: []string{start}}, nil
	}

	var seq uint64
	open := &priorityQueue{}
	first := &searchNode{
		name: start,
		h:    h(startNode.Pos, goalNode.Pos),
	}
	first.f = first.h
	heap.Push(open, first)

	// Every node ever reached. Closed nodes stay here with index -1.
	seen := map[string]*searchNode{start: first}
	expanded := 0

	for open.Len() > 0 {
		current := heap.Pop(open).(*searchNode)
		expanded++

		if current.name == goal {
			return Result{
				Found:    true,
				Cost:     current.g,
				Path:     reconstruct(current),
				Expanded: expanded,
			}, nil
		}

		for _, edge := range g.Neighbors(current.name) {
			tentativeG := current.g + edge.Weight

			neighbor, exists := seen[edge.Node]
			switch {
			case !exists:
				pos, err := g.Node(edge.Node)
				if err != nil {
					return Result{}, fmt.Errorf("neighbor of %q: %w", current.name, err)
				}
				seq++
				neighbor = &searchNode{
					name:   edge.Node,
					g:      tentativeG,
					h:      h(pos.Pos, goalNode.Pos),
					seq:    seq,
					parent: current,
				}
				neighbor.f = neighbor.g + neighbor.h
				heap.Push(open, neighbor)
				seen[edge.Node] = neighbor

			case tentativeG < neighbor.g:
				// Found a better path to this neighbor
				seq++
				neighbor.g = tentativeG
				neighbor.f = neighbor.g + neighbor.h
				neighbor.seq = seq
				neighbor.parent = current
				if neighbor.index >= 0 {
					heap.Fix(open, neighbor.index)
				} else {
					// Reopen a closed node; only happens with an inconsistent heuristic.
					heap.Push(open, neighbor)
				}
			}
		}
	}

	res := NotFound()
	res.Expanded = expanded
	return res, nil
}

// reconstruct follows parent pointers back to the start.
func reconstruct(n *searchNode) []string {
	depth := 0
	for cur := n; cur != nil; cur = cur.parent {
		depth++
	}
	path := make([]string, depth)
	for cur := n; cur != nil; cur = cur.parent {
		depth--
		path[depth] = cur.name
	}
	return path
}

// Hops is the number of edges on the path.
func (r Result) Hops() int {
	if len(r.Path) == 0 {
		return 0
	}
	return len(r.Path) - 1
}
