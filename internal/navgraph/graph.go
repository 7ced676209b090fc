// Package navgraph finds shortest walking paths over a prebuilt waypoint
// graph. The graph is loaded from JSON; building it from scene geometry
// happens elsewhere.
package navgraph

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/fsutil"
	"github.com/banshee-data/walkthrough.report/internal/geom"
	"github.com/banshee-data/walkthrough.report/internal/summary"
)

// maxGraphFileSize bounds waypoint files read from disk.
const maxGraphFileSize = 16 << 20

// Node is a waypoint on the navigable surface.
type Node struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
}

// Edge is a walkable connection between two waypoints. Edges are
// undirected and weighted by Euclidean length.
type Edge struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Document is the on-disk graph format.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Graph is a weighted undirected waypoint graph.
type Graph struct {
	g   *simple.WeightedUndirectedGraph
	pos map[int64]r3.Vec
	ids []int64
}

var _ summary.ShortestPathProvider = (*Graph)(nil)

// New builds a graph. Node IDs must be unique and every edge must join two
// distinct known nodes.
func New(doc Document) (*Graph, error) {
	g := &Graph{
		g:   simple.NewWeightedUndirectedGraph(0, math.Inf(1)),
		pos: make(map[int64]r3.Vec, len(doc.Nodes)),
	}
	for _, n := range doc.Nodes {
		if _, dup := g.pos[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node id %d", n.ID)
		}
		g.pos[n.ID] = r3.Vec{X: n.X, Y: n.Y, Z: n.Z}
		g.ids = append(g.ids, n.ID)
		g.g.AddNode(simple.Node(n.ID))
	}
	sort.Slice(g.ids, func(i, j int) bool { return g.ids[i] < g.ids[j] })

	for i, e := range doc.Edges {
		a, okA := g.pos[e.From]
		b, okB := g.pos[e.To]
		switch {
		case !okA || !okB:
			return nil, fmt.Errorf("edge %d: unknown node in %d-%d", i, e.From, e.To)
		case e.From == e.To:
			return nil, fmt.Errorf("edge %d: self loop on node %d", i, e.From)
		}
		g.g.SetWeightedEdge(g.g.NewWeightedEdge(simple.Node(e.From), simple.Node(e.To), geom.Distance(a, b)))
	}
	return g, nil
}

// Load decodes a JSON Document and builds its graph.
func Load(r io.Reader) (*Graph, error) {
	var doc Document
	dec := json.NewDecoder(io.LimitReader(r, maxGraphFileSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse waypoint graph: %w", err)
	}
	return New(doc)
}

// LoadFile reads a waypoint graph from path.
func LoadFile(fsys fsutil.FileSystem, path string) (*Graph, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open waypoint graph %s: %w", path, err)
	}
	defer f.Close()
	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// Len returns the number of waypoints.
func (g *Graph) Len() int { return len(g.ids) }

// Snap returns the waypoint nearest to p if it lies within tolerance.
// Ties go to the lower ID.
func (g *Graph) Snap(p r3.Vec, tolerance float64) (id int64, pos r3.Vec, ok bool) {
	best := math.Inf(1)
	for _, candidate := range g.ids {
		d := geom.Distance(p, g.pos[candidate])
		if d < best {
			best, id = d, candidate
		}
	}
	if len(g.ids) == 0 || best > tolerance {
		return 0, r3.Vec{}, false
	}
	return id, g.pos[id], true
}

// FindPath snaps start and end to their nearest waypoints and returns the
// waypoint positions along the shortest route between them.
func (g *Graph) FindPath(start, end r3.Vec, snapTolerance float64) ([]r3.Vec, error) {
	from, _, ok := g.Snap(start, snapTolerance)
	if !ok {
		return nil, fmt.Errorf("start %v: no waypoint within %v: %w", start, snapTolerance, summary.ErrPathNotFound)
	}
	to, _, ok := g.Snap(end, snapTolerance)
	if !ok {
		return nil, fmt.Errorf("end %v: no waypoint within %v: %w", end, snapTolerance, summary.ErrPathNotFound)
	}

	shortest := path.DijkstraFrom(g.g.Node(from), g.g)
	nodes, _ := shortest.To(to)
	if len(nodes) == 0 {
		return nil, fmt.Errorf("waypoints %d and %d are not connected: %w", from, to, summary.ErrPathNotFound)
	}
	out := make([]r3.Vec, len(nodes))
	for i, n := range nodes {
		out[i] = g.pos[n.ID()]
	}
	return out, nil
}
