package navgraph

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/walkthrough.report/internal/fsutil"
	"github.com/banshee-data/walkthrough.report/internal/geom"
	"github.com/banshee-data/walkthrough.report/internal/summary"
)

// corridor is an L-shaped corridor with a detour and an unreachable island.
const corridor = `{
  "nodes": [
    {"id": 1, "x": 0, "y": 0, "z": 0},
    {"id": 2, "x": 10, "y": 0, "z": 0},
    {"id": 3, "x": 10, "y": 0, "z": 10},
    {"id": 4, "x": 0, "y": 0, "z": 30},
    {"id": 9, "x": 50, "y": 0, "z": 50}
  ],
  "edges": [
    {"from": 1, "to": 2},
    {"from": 2, "to": 3},
    {"from": 1, "to": 4},
    {"from": 4, "to": 3}
  ]
}`

func loadCorridor(t *testing.T) *Graph {
	t.Helper()
	g, err := Load(strings.NewReader(corridor))
	require.NoError(t, err)
	return g
}

func TestFindPathShortestRoute(t *testing.T) {
	g := loadCorridor(t)
	assert.Equal(t, 5, g.Len())

	got, err := g.FindPath(r3.Vec{X: 0.5}, r3.Vec{X: 10, Z: 9}, 5)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{}, {X: 10}, {X: 10, Z: 10}}, got)
	assert.InDelta(t, 20, geom.PathLength(got), 1e-12)
}

func TestFindPathSameWaypoint(t *testing.T) {
	g := loadCorridor(t)
	got, err := g.FindPath(r3.Vec{X: 1}, r3.Vec{Z: 1}, 5)
	require.NoError(t, err)
	assert.Equal(t, []r3.Vec{{}}, got)
}

func TestFindPathNotFound(t *testing.T) {
	g := loadCorridor(t)

	tests := []struct {
		name       string
		start, end r3.Vec
		tolerance  float64
	}{
		{"start too far", r3.Vec{X: -100}, r3.Vec{X: 10}, 5},
		{"end too far", r3.Vec{}, r3.Vec{Y: 40}, 5},
		{"disconnected", r3.Vec{}, r3.Vec{X: 50, Z: 50}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.FindPath(tt.start, tt.end, tt.tolerance)
			assert.True(t, errors.Is(err, summary.ErrPathNotFound), "got %v", err)
		})
	}
}

func TestSnapPrefersLowerIDOnTie(t *testing.T) {
	g, err := New(Document{Nodes: []Node{{ID: 7, X: 1}, {ID: 3, X: -1}}})
	require.NoError(t, err)
	id, pos, ok := g.Snap(r3.Vec{}, 1)
	require.True(t, ok)
	assert.Equal(t, int64(3), id)
	assert.Equal(t, r3.Vec{X: -1}, pos)

	_, _, ok = g.Snap(r3.Vec{}, 0.5)
	assert.False(t, ok)
}

func TestNewRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"duplicate node", Document{Nodes: []Node{{ID: 1}, {ID: 1}}}},
		{"unknown node", Document{Nodes: []Node{{ID: 1}}, Edges: []Edge{{From: 1, To: 2}}}},
		{"self loop", Document{Nodes: []Node{{ID: 1}}, Edges: []Edge{{From: 1, To: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.doc)
			assert.Error(t, err)
		})
	}
}

func TestLoadFileWithSummary(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	fs.WriteFile("scene/graph.json", []byte(corridor))
	g, err := LoadFile(fs, "scene/graph.json")
	require.NoError(t, err)

	_, err = LoadFile(fs, "scene/missing.json")
	assert.Error(t, err)

	fs.WriteFile("scene/bad.json", []byte(`{"nodes": [], "vertices": []}`))
	_, err = LoadFile(fs, "scene/bad.json")
	assert.Error(t, err)

	var p summary.ShortestPathProvider = g
	poly, err := p.FindPath(r3.Vec{}, r3.Vec{Z: 30}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 30, geom.PathLength(poly), 1e-12)
}
