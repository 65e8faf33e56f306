package layout

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/simplify"
)

// Polyline returns the geometry of a node path reduced with Douglas-Peucker
// at tolerance epsilon. With epsilon 0 only points lying exactly on a
// straight run are dropped, leaving the turns.
func (g *Graph) Polyline(path []string, epsilon float64) (orb.LineString, error) {
	if epsilon < 0 {
		return nil, fmt.Errorf("negative tolerance %v", epsilon)
	}

	ls := make(orb.LineString, 0, len(path))
	for _, name := range path {
		n, err := g.Node(name)
		if err != nil {
			return nil, err
		}
		ls = append(ls, n.Pos)
	}
	if len(ls) < 3 {
		return ls, nil
	}
	return simplify.DouglasPeucker(epsilon).Simplify(ls).(orb.LineString), nil
}
