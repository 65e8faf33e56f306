package layout

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"gopkg.in/yaml.v3"
)

// yamlEdge allows the weight to be omitted, in which case the Manhattan
// distance between the endpoints is used.
type yamlEdge struct {
	Name   string   `yaml:"name"`
	From   string   `yaml:"from"`
	To     string   `yaml:"to"`
	Weight *float64 `yaml:"weight"`
}

type yamlLayout struct {
	Nodes     []NodeSpec        `yaml:"nodes"`
	Edges     []yamlEdge        `yaml:"edges"`
	Obstacles []ObstacleSpec    `yaml:"obstacles"`
	Aliases   map[string]string `yaml:"aliases"`
}

// Load reads a layout file, choosing the decoder from the file extension:
// .yaml/.yml, .geojson, or .json (a snapshot written by Save).
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout: %w", err)
	}

	var g *Graph
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		g, err = ParseYAML(data)
	case ".geojson":
		g, err = ParseGeoJSON(data)
	case ".json":
		g, err = ParseSnapshot(data)
	default:
		return nil, fmt.Errorf("layout %s: unsupported extension %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}

	slog.Info("layout loaded", "path", path, "nodes", g.Len(), "edges", len(g.edges), "obstacles", len(g.obstacles))
	return g, nil
}

// ParseYAML decodes a YAML layout document.
func ParseYAML(data []byte) (*Graph, error) {
	var doc yamlLayout
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	pos := make(map[string]orb.Point, len(doc.Nodes))
	for _, n := range doc.Nodes {
		pos[n.Name] = orb.Point{n.X, n.Y}
	}

	spec := Spec{
		Nodes:     doc.Nodes,
		Edges:     make([]EdgeSpec, 0, len(doc.Edges)),
		Obstacles: doc.Obstacles,
		Aliases:   doc.Aliases,
	}
	for _, e := range doc.Edges {
		es := EdgeSpec{Name: e.Name, From: e.From, To: e.To}
		if e.Weight != nil {
			es.Weight = *e.Weight
		} else {
			// Unknown endpoints are reported by New.
			a, okA := pos[e.From]
			b, okB := pos[e.To]
			if okA && okB {
				es.Weight = manhattan(a, b)
			}
		}
		spec.Edges = append(spec.Edges, es)
	}
	return New(spec)
}

// ParseGeoJSON decodes a feature collection: Point features named by their
// "name" property are nodes (an optional "alias" property registers an
// alias), LineString features with "from"/"to" properties are edges, and
// Polygon or MultiPolygon features are obstacles.
func ParseGeoJSON(data []byte) (*Graph, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal geojson: %w", err)
	}

	var spec Spec
	for i, f := range fc.Features {
		switch geom := f.Geometry.(type) {
		case orb.Point:
			name := f.Properties.MustString("name", "")
			spec.Nodes = append(spec.Nodes, NodeSpec{Name: name, X: geom[0], Y: geom[1]})
			if alias := f.Properties.MustString("alias", ""); alias != "" {
				if spec.Aliases == nil {
					spec.Aliases = make(map[string]string)
				}
				spec.Aliases[alias] = name
			}

		case orb.LineString:
			from := f.Properties.MustString("from", "")
			to := f.Properties.MustString("to", "")
			if from == "" || to == "" {
				return nil, fmt.Errorf("feature %d: line string needs from and to properties", i)
			}
			es := EdgeSpec{Name: f.Properties.MustString("name", ""), From: from, To: to}
			if w, ok := f.Properties["weight"].(float64); ok {
				es.Weight = w
			} else {
				es.Weight = polylineManhattan(geom)
			}
			spec.Edges = append(spec.Edges, es)

		case orb.Polygon:
			if len(geom) > 0 {
				spec.Obstacles = append(spec.Obstacles, ringSpec(f.Properties.MustString("name", ""), geom[0]))
			}

		case orb.MultiPolygon:
			name := f.Properties.MustString("name", "")
			for _, poly := range geom {
				// First ring is the outer boundary
				if len(poly) > 0 {
					spec.Obstacles = append(spec.Obstacles, ringSpec(name, poly[0]))
				}
			}

		case nil:
			slog.Warn("ignoring geojson feature without geometry", "index", i)

		default:
			slog.Warn("ignoring geojson feature", "index", i, "type", geom.GeoJSONType())
		}
	}
	return New(spec)
}

// ParseSnapshot decodes a JSON snapshot written by Save.
func ParseSnapshot(data []byte) (*Graph, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal graph: %w", err)
	}
	return New(spec)
}

// Save serializes the graph to a JSON snapshot file.
func Save(g *Graph, filename string) error {
	data, err := json.MarshalIndent(g.Spec(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	slog.Info("layout saved", "path", filename, "bytes", len(data))
	return nil
}

// FeatureCollection renders the graph as GeoJSON, the inverse of
// ParseGeoJSON.
func (g *Graph) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	alias := make(map[string]string, len(g.aliases))
	for a, target := range g.aliases {
		if prev, ok := alias[target]; !ok || a < prev {
			alias[target] = a
		}
	}

	for _, n := range g.nodes {
		f := geojson.NewFeature(n.Pos)
		f.Properties["name"] = n.Name
		if a, ok := alias[n.Name]; ok {
			f.Properties["alias"] = a
		}
		fc.Append(f)
	}
	segments := g.Segments()
	for i, e := range g.edges {
		f := geojson.NewFeature(segments[i])
		f.Properties["name"] = e.Name
		f.Properties["from"] = e.From
		f.Properties["to"] = e.To
		f.Properties["weight"] = e.Weight
		fc.Append(f)
	}
	for _, o := range g.obstacles {
		f := geojson.NewFeature(orb.Polygon{o.Ring})
		f.Properties["name"] = o.Name
		fc.Append(f)
	}
	return fc
}

func ringSpec(name string, ring orb.Ring) ObstacleSpec {
	pts := make([][2]float64, 0, len(ring))
	for _, p := range ring {
		pts = append(pts, [2]float64{p[0], p[1]})
	}
	return ObstacleSpec{Name: name, Points: pts}
}

func manhattan(a, b orb.Point) float64 {
	return math.Abs(a[0]-b[0]) + math.Abs(a[1]-b[1])
}

func polylineManhattan(ls orb.LineString) float64 {
	var total float64
	for i := 0; i+1 < len(ls); i++ {
		total += manhattan(ls[i], ls[i+1])
	}
	return total
}
