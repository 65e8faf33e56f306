package layout

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// segmentCrossesRing reports whether the segment a-b passes through the
// interior of ring. Touching a corner or running along the boundary is
// allowed: corridors may hug a wall.
func segmentCrossesRing(a, b orb.Point, ring orb.Ring) bool {
	for i := 0; i+1 < len(ring); i++ {
		if segmentsCross(a, b, ring[i], ring[i+1]) {
			return true
		}
	}

	// With no proper crossing, a-b can only enter or leave the ring at a
	// ring vertex or at its own endpoints. Between two consecutive contact
	// points it is wholly inside or wholly outside, so one sample each
	// decides it.
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return interior(a, ring)
	}

	ts := []float64{0, 1}
	for _, v := range ring {
		if direction(a, b, v) == 0 && onSegment(a, b, v) {
			ts = append(ts, ((v[0]-a[0])*dx+(v[1]-a[1])*dy)/l2)
		}
	}
	sort.Float64s(ts)

	for i := 0; i+1 < len(ts); i++ {
		if ts[i+1]-ts[i] <= 0 {
			continue
		}
		t := (ts[i] + ts[i+1]) / 2
		if interior(orb.Point{a[0] + t*dx, a[1] + t*dy}, ring) {
			return true
		}
	}
	return false
}

func interior(p orb.Point, ring orb.Ring) bool {
	return planar.RingContains(ring, p) && !onRingBoundary(p, ring)
}

// segmentsCross checks if two segments properly intersect, i.e. cross at a
// single point interior to both.
func segmentsCross(p1, p2, p3, p4 orb.Point) bool {
	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 orb.Point) float64 {
	return (p3[0]-p1[0])*(p2[1]-p1[1]) - (p2[0]-p1[0])*(p3[1]-p1[1])
}

// onSegment checks if collinear point q lies within the bounding box of pr
func onSegment(p, r, q orb.Point) bool {
	return q[0] <= math.Max(p[0], r[0]) && q[0] >= math.Min(p[0], r[0]) &&
		q[1] <= math.Max(p[1], r[1]) && q[1] >= math.Min(p[1], r[1])
}

func onRingBoundary(q orb.Point, ring orb.Ring) bool {
	for i := 0; i+1 < len(ring); i++ {
		if direction(ring[i], ring[i+1], q) == 0 && onSegment(ring[i], ring[i+1], q) {
			return true
		}
	}
	return false
}
