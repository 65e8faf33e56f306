package pathfind

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floor-planner/internal/layout"
)

func buildGraph(t *testing.T, nodes []layout.NodeSpec, edges []layout.EdgeSpec) *layout.Graph {
	t.Helper()
	g, err := layout.Build(nodes, edges)
	require.NoError(t, err)
	return g
}

// sampleGraph is the warehouse corner of the shop floor.
func sampleGraph(t *testing.T) *layout.Graph {
	return buildGraph(t,
		[]layout.NodeSpec{
			{Name: "W", X: 0, Y: 34},
			{Name: "node5", X: 28, Y: 34},
			{Name: "node3", X: 91, Y: 17},
		},
		[]layout.EdgeSpec{
			{Name: "W-node5", From: "W", To: "node5", Weight: 7},
			{Name: "node5-node3", From: "node5", To: "node3", Weight: 72},
		},
	)
}

func TestFindSampleGraph(t *testing.T) {
	g := sampleGraph(t)

	res, err := Find(g, "W", "node3")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 79.0, res.Cost)
	assert.Equal(t, []string{"W", "node5", "node3"}, res.Path)
	assert.Equal(t, 2, res.Hops())

	back, err := Find(g, "node3", "W")
	require.NoError(t, err)
	assert.Equal(t, 79.0, back.Cost)
	assert.Equal(t, []string{"node3", "node5", "W"}, back.Path)
}

func TestFindStartIsGoal(t *testing.T) {
	g := sampleGraph(t)

	res, err := Find(g, "node5", "node5")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Zero(t, res.Cost)
	assert.Equal(t, []string{"node5"}, res.Path)
	assert.Zero(t, res.Hops())
}

func TestFindDisconnected(t *testing.T) {
	g := buildGraph(t,
		[]layout.NodeSpec{{Name: "a"}, {Name: "b", X: 1}, {Name: "c", X: 5}, {Name: "d", X: 6}},
		[]layout.EdgeSpec{{From: "a", To: "b", Weight: 1}, {From: "c", To: "d", Weight: 1}},
	)

	res, err := Find(g, "a", "d")
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.True(t, math.IsInf(res.Cost, 1))
	assert.Nil(t, res.Path)
	assert.Equal(t, 2, res.Expanded)
}

func TestFindIsolatedNode(t *testing.T) {
	g := buildGraph(t,
		[]layout.NodeSpec{{Name: "a"}, {Name: "lonely", X: 3}},
		nil,
	)
	res, err := Find(g, "lonely", "a")
	require.NoError(t, err)
	assert.False(t, res.Found)
}

func TestFindUnknownNode(t *testing.T) {
	g := sampleGraph(t)

	_, err := Find(g, "nowhere", "W")
	require.ErrorIs(t, err, layout.ErrUnknownNode)

	_, err = Find(g, "W", "nowhere")
	require.ErrorIs(t, err, layout.ErrUnknownNode)
}

func TestFindPrefersCheaperLongerPath(t *testing.T) {
	// a--d direct is 10, a-b-c-d is 3.
	g := buildGraph(t,
		[]layout.NodeSpec{{Name: "a"}, {Name: "b", X: 1}, {Name: "c", X: 2}, {Name: "d", X: 3}},
		[]layout.EdgeSpec{
			{From: "a", To: "d", Weight: 10},
			{From: "a", To: "b", Weight: 1},
			{From: "b", To: "c", Weight: 1},
			{From: "c", To: "d", Weight: 1},
		},
	)
	res, err := Find(g, "a", "d")
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Cost)
	assert.Equal(t, []string{"a", "b", "c", "d"}, res.Path)
}

func TestFindTieBreakIsDeterministic(t *testing.T) {
	// Two equal-cost routes around a square.
	g := buildGraph(t,
		[]layout.NodeSpec{{Name: "s"}, {Name: "up", Y: 1}, {Name: "right", X: 1}, {Name: "t", X: 1, Y: 1}},
		[]layout.EdgeSpec{
			{From: "s", To: "up", Weight: 1},
			{From: "s", To: "right", Weight: 1},
			{From: "up", To: "t", Weight: 1},
			{From: "right", To: "t", Weight: 1},
		},
	)
	first, err := Find(g, "s", "t")
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Find(g, "s", "t")
		require.NoError(t, err)
		assert.Equal(t, first.Path, again.Path)
	}
	assert.Equal(t, 2.0, first.Cost)
}

func TestFindObserver(t *testing.T) {
	g := sampleGraph(t)

	var got []string
	_, err := Find(g, "W", "node3", WithHeuristic(Zero), WithObserver(func(start, goal string, r Result) {
		got = append(got, fmt.Sprintf("%s->%s found=%v", start, goal, r.Found))
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"W->node3 found=true"}, got)
}

func TestFindReopensWithInconsistentHeuristic(t *testing.T) {
	// h is admissible but not consistent: it rates "b" no closer to the goal
	// than its true cost, so "c" is first closed through the expensive route via "a".
	g := buildGraph(t,
		[]layout.NodeSpec{{Name: "s"}, {Name: "a", X: 1}, {Name: "b", X: 2}, {Name: "c", X: 3}, {Name: "t", X: 4}},
		[]layout.EdgeSpec{
			{From: "s", To: "a", Weight: 1},
			{From: "s", To: "b", Weight: 1},
			{From: "a", To: "c", Weight: 3},
			{From: "b", To: "c", Weight: 1},
			{From: "c", To: "t", Weight: 3},
		},
	)
	h := func(p, _ orb.Point) float64 {
		if p[0] == 2 { // b
			return 4
		}
		return 0
	}
	res, err := Find(g, "s", "t", WithHeuristic(h))
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Cost)
	assert.Equal(t, []string{"s", "b", "c", "t"}, res.Path)
}

// randomGraph places nodes on a grid and gives every edge a weight of at
// least the Manhattan distance of its endpoints, keeping all heuristics
// admissible.
func randomGraph(t *testing.T, rng *rand.Rand, n, m int) *layout.Graph {
	t.Helper()
	nodes := make([]layout.NodeSpec, n)
	for i := range nodes {
		nodes[i] = layout.NodeSpec{
			Name: fmt.Sprintf("n%d", i),
			X:    float64(rng.Intn(50)),
			Y:    float64(rng.Intn(50)),
		}
	}
	edges := make([]layout.EdgeSpec, 0, m)
	for len(edges) < m {
		a, b := rng.Intn(n), rng.Intn(n)
		if a == b {
			continue
		}
		base := math.Abs(nodes[a].X-nodes[b].X) + math.Abs(nodes[a].Y-nodes[b].Y)
		edges = append(edges, layout.EdgeSpec{
			From:   nodes[a].Name,
			To:     nodes[b].Name,
			Weight: base + float64(rng.Intn(20)),
		})
	}
	return buildGraph(t, nodes, edges)
}

// dijkstra is an independent reference: dense O(V^2) Dijkstra over the
// edge list.
func dijkstra(g *layout.Graph, start string) map[string]float64 {
	dist := make(map[string]float64, g.Len())
	done := make(map[string]bool, g.Len())
	for _, n := range g.Nodes() {
		dist[n.Name] = math.Inf(1)
	}
	dist[start] = 0
	for {
		u, best := "", math.Inf(1)
		for name, d := range dist {
			if !done[name] && (d < best || (d == best && name < u)) {
				u, best = name, d
			}
		}
		if u == "" {
			return dist
		}
		done[u] = true
		for _, e := range g.Edges() {
			var v string
			switch u {
			case e.From:
				v = e.To
			case e.To:
				v = e.From
			default:
				continue
			}
			if alt := dist[u] + e.Weight; alt < dist[v] {
				dist[v] = alt
			}
		}
	}
}

func assertWellFormed(t *testing.T, g *layout.Graph, start, goal string, res Result) {
	t.Helper()
	require.NotEmpty(t, res.Path)
	assert.Equal(t, start, res.Path[0])
	assert.Equal(t, goal, res.Path[len(res.Path)-1])
	var sum float64
	for i := 0; i+1 < len(res.Path); i++ {
		w, ok := g.HasEdge(res.Path[i], res.Path[i+1])
		require.Truef(t, ok, "no edge %s-%s", res.Path[i], res.Path[i+1])
		sum += w
	}
	assert.InDelta(t, res.Cost, sum, 1e-9)
}

func TestFindMatchesDijkstra(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	heuristics := map[string]Heuristic{"manhattan": Manhattan, "euclidean": Euclidean, "zero": Zero}

	for trial := 0; trial < 25; trial++ {
		g := randomGraph(t, rng, 12+rng.Intn(10), 15+rng.Intn(30))
		nodes := g.Nodes()

		for _, from := range nodes {
			want := dijkstra(g, from.Name)
			for _, to := range nodes {
				for hName, h := range heuristics {
					res, err := Find(g, from.Name, to.Name, WithHeuristic(h))
					require.NoError(t, err)

					if math.IsInf(want[to.Name], 1) {
						assert.Falsef(t, res.Found, "%s %s->%s", hName, from.Name, to.Name)
						continue
					}
					require.Truef(t, res.Found, "%s %s->%s", hName, from.Name, to.Name)
					assert.InDeltaf(t, want[to.Name], res.Cost, 1e-9, "%s %s->%s", hName, from.Name, to.Name)
					assertWellFormed(t, g, from.Name, to.Name, res)
				}
			}
		}
	}
}

func TestFindConcurrentQueries(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	g := randomGraph(t, rng, 30, 80)
	nodes := g.Nodes()

	want := make([]Result, len(nodes))
	for i, n := range nodes {
		res, err := Find(g, nodes[0].Name, n.Name)
		require.NoError(t, err)
		want[i] = res
	}

	var wg sync.WaitGroup
	got := make([]Result, len(nodes))
	for i, n := range nodes {
		i, n := i, n
		wg.Add(1)
		go func() {
			defer wg.Done()
			got[i], _ = Find(g, nodes[0].Name, n.Name)
		}()
	}
	wg.Wait()

	for i := range nodes {
		assert.Equal(t, want[i].Cost, got[i].Cost)
		assert.Equal(t, want[i].Path, got[i].Path)
	}
}

func TestHeuristics(t *testing.T) {
	a, b := orb.Point{0, 34}, orb.Point{91, 17}
	assert.Equal(t, 108.0, Manhattan(a, b))
	assert.InDelta(t, math.Hypot(91, 17), Euclidean(a, b), 1e-9)
	assert.Zero(t, Zero(a, b))

	for _, name := range []string{"", "manhattan", "euclidean", "zero", "dijkstra"} {
		h, err := HeuristicByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, h)
	}
	_, err := HeuristicByName("chebyshev")
	assert.Error(t, err)
}
