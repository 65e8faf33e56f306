package layout

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	g, err := Build(
		[]NodeSpec{{Name: "W", X: 0, Y: 34}, {Name: "node5", X: 28, Y: 34}, {Name: "node3", X: 91, Y: 17}},
		[]EdgeSpec{
			{Name: "W-node5", From: "W", To: "node5", Weight: 7},
			{From: "node5", To: "node3", Weight: 72},
		},
	)
	require.NoError(t, err)

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, []Neighbor{{Node: "node5", Weight: 7}}, g.Neighbors("W"))
	assert.ElementsMatch(t, []Neighbor{{Node: "W", Weight: 7}, {Node: "node3", Weight: 72}}, g.Neighbors("node5"))
	assert.Empty(t, g.Neighbors("missing"))

	edges := g.Edges()
	require.Len(t, edges, 2)
	assert.Equal(t, "node5-node3", edges[1].Name)

	n, err := g.Node("node3")
	require.NoError(t, err)
	assert.Equal(t, orb.Point{91, 17}, n.Pos)

	_, err = g.Node("nope")
	assert.ErrorIs(t, err, ErrUnknownNode)

	w, ok := g.HasEdge("node3", "node5")
	assert.True(t, ok)
	assert.Equal(t, 72.0, w)
	_, ok = g.HasEdge("W", "node3")
	assert.False(t, ok)

	assert.Equal(t, orb.Bound{Min: orb.Point{0, 17}, Max: orb.Point{91, 34}}, g.Bound())
	assert.Equal(t, []orb.LineString{{{0, 34}, {28, 34}}, {{28, 34}, {91, 17}}}, g.Segments())
}

func TestBuildParallelEdges(t *testing.T) {
	g, err := Build(
		[]NodeSpec{{Name: "a"}, {Name: "b", X: 1}},
		[]EdgeSpec{{From: "a", To: "b", Weight: 5}, {From: "b", To: "a", Weight: 2}},
	)
	require.NoError(t, err)
	w, ok := g.HasEdge("a", "b")
	assert.True(t, ok)
	assert.Equal(t, 2.0, w)
	assert.Len(t, g.Neighbors("a"), 2)
}

func TestBuildRejectsMalformedInput(t *testing.T) {
	for _, tc := range []struct {
		name string
		spec Spec
		want error
	}{
		{
			name: "DuplicateNode",
			spec: Spec{Nodes: []NodeSpec{{Name: "a"}, {Name: "a", X: 1}}},
			want: ErrDuplicateNode,
		},
		{
			name: "EmptyName",
			spec: Spec{Nodes: []NodeSpec{{Name: ""}}},
			want: ErrInvalidNode,
		},
		{
			name: "NaNCoordinate",
			spec: Spec{Nodes: []NodeSpec{{Name: "a", X: math.NaN()}}},
			want: ErrInvalidNode,
		},
		{
			name: "UnknownStart",
			spec: Spec{Nodes: []NodeSpec{{Name: "a"}}, Edges: []EdgeSpec{{From: "x", To: "a", Weight: 1}}},
			want: ErrUnknownNode,
		},
		{
			name: "UnknownEnd",
			spec: Spec{Nodes: []NodeSpec{{Name: "a"}}, Edges: []EdgeSpec{{From: "a", To: "x", Weight: 1}}},
			want: ErrUnknownNode,
		},
		{
			name: "NegativeWeight",
			spec: Spec{Nodes: []NodeSpec{{Name: "a"}, {Name: "b"}}, Edges: []EdgeSpec{{From: "a", To: "b", Weight: -1}}},
			want: ErrInvalidWeight,
		},
		{
			name: "InfiniteWeight",
			spec: Spec{Nodes: []NodeSpec{{Name: "a"}, {Name: "b"}}, Edges: []EdgeSpec{{From: "a", To: "b", Weight: math.Inf(1)}}},
			want: ErrInvalidWeight,
		},
		{
			name: "AliasToUnknownNode",
			spec: Spec{Nodes: []NodeSpec{{Name: "a"}}, Aliases: map[string]string{"W": "warehouse"}},
			want: ErrUnknownNode,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.spec)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestObstacles(t *testing.T) {
	square := ObstacleSpec{Name: "machine", Points: [][2]float64{{2, 2}, {4, 2}, {4, 4}, {2, 4}}}
	nodes := []NodeSpec{
		{Name: "west", X: 0, Y: 3},
		{Name: "east", X: 6, Y: 3},
		{Name: "sw", X: 2, Y: 0},
		{Name: "corner", X: 2, Y: 2},
		{Name: "corner2", X: 4, Y: 2},
		{Name: "opposite", X: 4, Y: 4},
		{Name: "farSW", X: 1, Y: 1},
		{Name: "farNE", X: 7, Y: 7},
		{Name: "nw", X: 0, Y: 4},
		{Name: "se", X: 4, Y: 0},
	}

	t.Run("CrossingRejected", func(t *testing.T) {
		_, err := New(Spec{
			Nodes:     nodes,
			Edges:     []EdgeSpec{{Name: "through", From: "west", To: "east", Weight: 6}},
			Obstacles: []ObstacleSpec{square},
		})
		require.ErrorIs(t, err, ErrObstructed)
		assert.Contains(t, err.Error(), "machine")
	})

	t.Run("DiagonalThroughInteriorRejected", func(t *testing.T) {
		_, err := New(Spec{
			Nodes:     nodes,
			Edges:     []EdgeSpec{{From: "corner", To: "opposite", Weight: 4}},
			Obstacles: []ObstacleSpec{square},
		})
		require.ErrorIs(t, err, ErrObstructed)
	})

	t.Run("DiagonalCornerToCornerRejected", func(t *testing.T) {
		// Both ends and the midpoint (4,4) lie outside or on the wall; the
		// run between the two corners is inside.
		_, err := New(Spec{
			Nodes:     nodes,
			Edges:     []EdgeSpec{{From: "farSW", To: "farNE", Weight: 12}},
			Obstacles: []ObstacleSpec{square},
		})
		require.ErrorIs(t, err, ErrObstructed)
	})

	t.Run("GrazingCornerAllowed", func(t *testing.T) {
		_, err := New(Spec{
			Nodes:     nodes,
			Edges:     []EdgeSpec{{From: "nw", To: "se", Weight: 8}},
			Obstacles: []ObstacleSpec{square},
		})
		require.NoError(t, err)
	})

	t.Run("AlongWallAndToCornerAllowed", func(t *testing.T) {
		g, err := New(Spec{
			Nodes: nodes,
			Edges: []EdgeSpec{
				{From: "corner", To: "corner2", Weight: 2},
				{From: "sw", To: "corner", Weight: 2},
				{From: "west", To: "sw", Weight: 5},
			},
			Obstacles: []ObstacleSpec{square},
		})
		require.NoError(t, err)
		obs := g.Obstacles()
		require.Len(t, obs, 1)
		assert.True(t, obs[0].Ring.Closed())
	})

	t.Run("TooFewPoints", func(t *testing.T) {
		_, err := New(Spec{Nodes: nodes, Obstacles: []ObstacleSpec{{Points: [][2]float64{{0, 0}, {1, 1}}}}})
		require.Error(t, err)
	})
}

func TestNearest(t *testing.T) {
	g, err := Build([]NodeSpec{{Name: "a"}, {Name: "b", X: 10}, {Name: "c", X: 10, Y: 10}}, nil)
	require.NoError(t, err)

	n, d, err := g.Nearest(orb.Point{9, 2})
	require.NoError(t, err)
	assert.Equal(t, "b", n.Name)
	assert.InDelta(t, math.Hypot(1, 2), d, 1e-9)

	n, _, err = g.Nearest(orb.Point{9, 9})
	require.NoError(t, err)
	assert.Equal(t, "c", n.Name)

	empty, err := Build(nil, nil)
	require.NoError(t, err)
	_, _, err = empty.Nearest(orb.Point{0, 0})
	assert.ErrorIs(t, err, ErrUnknownNode)
}

func TestResolve(t *testing.T) {
	g, err := New(Spec{
		Nodes:   []NodeSpec{{Name: "nodeW"}, {Name: "nodeD", X: 1}},
		Aliases: map[string]string{"W": "nodeW", "D": "nodeD"},
	})
	require.NoError(t, err)

	name, err := g.Resolve("W")
	require.NoError(t, err)
	assert.Equal(t, "nodeW", name)

	name, err = g.Resolve("nodeD")
	require.NoError(t, err)
	assert.Equal(t, "nodeD", name)

	_, err = g.Resolve("X")
	assert.ErrorIs(t, err, ErrUnknownNode)

	assert.Equal(t, map[string]string{"W": "nodeW", "D": "nodeD"}, g.Aliases())
}
