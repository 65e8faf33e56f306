package layout

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// pointTolerance gives zero-area entries a non-degenerate rectangle.
const pointTolerance = 1e-9

// nodeEntry wraps a node index for R-tree storage
type nodeEntry struct {
	idx  int
	bbox rtreego.Rect
}

func (e *nodeEntry) Bounds() rtreego.Rect { return e.bbox }

// obstacleEntry wraps an obstacle for R-tree storage
type obstacleEntry struct {
	obstacle Obstacle
	bbox     rtreego.Rect
}

func (e *obstacleEntry) Bounds() rtreego.Rect { return e.bbox }

// SpatialIndex answers nearest-node and obstacle queries over a layout.
type SpatialIndex struct {
	nodes     *rtreego.Rtree
	positions []orb.Point
	obstacles *rtreego.Rtree
}

// NewSpatialIndex indexes node positions and obstacle bounding boxes.
func NewSpatialIndex(nodes []Node, obstacles []Obstacle) *SpatialIndex {
	si := &SpatialIndex{
		nodes:     rtreego.NewTree(2, 25, 50), // 2D, min 25, max 50 entries per node
		positions: make([]orb.Point, len(nodes)),
		obstacles: rtreego.NewTree(2, 25, 50),
	}

	for i, n := range nodes {
		si.positions[i] = n.Pos
		si.nodes.Insert(&nodeEntry{
			idx:  i,
			bbox: rtreego.Point{n.Pos[0], n.Pos[1]}.ToRect(pointTolerance),
		})
	}

	for _, o := range obstacles {
		bbox, err := boundToRect(o.Ring.Bound())
		if err != nil {
			continue
		}
		si.obstacles.Insert(&obstacleEntry{obstacle: o, bbox: bbox})
	}

	return si
}

// NearestNode returns the index of the node closest to p and its distance.
func (si *SpatialIndex) NearestNode(p orb.Point) (int, float64, bool) {
	if si.nodes.Size() == 0 {
		return -1, math.Inf(1), false
	}
	hit := si.nodes.NearestNeighbor(rtreego.Point{p[0], p[1]})
	if hit == nil {
		return -1, math.Inf(1), false
	}
	idx := hit.(*nodeEntry).idx
	return idx, planar.Distance(p, si.positions[idx]), true
}

// Obstruction reports the first obstacle the segment a-b passes through.
func (si *SpatialIndex) Obstruction(a, b orb.Point) (Obstacle, bool) {
	if si.obstacles.Size() == 0 {
		return Obstacle{}, false
	}
	bbox, err := boundToRect(orb.MultiPoint{a, b}.Bound())
	if err != nil {
		return Obstacle{}, false
	}
	for _, item := range si.obstacles.SearchIntersect(bbox) {
		o := item.(*obstacleEntry).obstacle
		if segmentCrossesRing(a, b, o.Ring) {
			return o, true
		}
	}
	return Obstacle{}, false
}

// boundToRect converts an orb bound to an R-tree rectangle, padding
// degenerate (zero width or height) bounds.
func boundToRect(b orb.Bound) (rtreego.Rect, error) {
	b = b.Pad(pointTolerance)
	return rtreego.NewRect(
		rtreego.Point{b.Min[0], b.Min[1]},
		[]float64{b.Max[0] - b.Min[0], b.Max[1] - b.Min[1]},
	)
}
