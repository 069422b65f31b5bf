package mesh

import (
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Shared fixtures. All windings are consistent (every directed edge
// appears at most once).

func buildIndexed(t *testing.T, positions []v3.Vec, faces [][3]int) *Mesh {
	t.Helper()
	m, err := FromIndexedTriangles(positions, faces, DefaultOptions())
	if err != nil {
		t.Fatalf("FromIndexedTriangles: %v", err)
	}
	return m
}

// tetrahedron: 4 vertices, 4 faces, closed.
func tetrahedron(t *testing.T) *Mesh {
	return buildIndexed(t,
		[]v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
		[][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 1}, {1, 3, 2}},
	)
}

// singleTriangle: one face, one boundary loop of length 3.
func singleTriangle(t *testing.T) *Mesh {
	return buildIndexed(t,
		[]v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
		},
		[][3]int{{0, 1, 2}},
	)
}

// bipyramid: equator 0,1,2 and poles 3 (top), 4 (bottom); 6 faces, closed.
// Every equator edge has both poles as common neighbors of its endpoints,
// so collapsing one must fail the link condition.
func bipyramid(t *testing.T) *Mesh {
	return buildIndexed(t,
		[]v3.Vec{
			{X: 1, Y: 0, Z: 0},
			{X: -0.5, Y: 0.8, Z: 0},
			{X: -0.5, Y: -0.8, Z: 0},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: -1},
		},
		[][3]int{
			{0, 1, 3}, {1, 2, 3}, {2, 0, 3},
			{1, 0, 4}, {2, 1, 4}, {0, 2, 4},
		},
	)
}

// twoTriangleStrip: faces (0,1,2) and (1,0,3) sharing edge 0-1; boundary
// loop of length 4.
func twoTriangleStrip(t *testing.T) *Mesh {
	return buildIndexed(t,
		[]v3.Vec{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0.5, Y: 1, Z: 0},
			{X: 0.5, Y: -1, Z: 0},
		},
		[][3]int{{0, 1, 2}, {1, 0, 3}},
	)
}

func mustValidate(t *testing.T, m *Mesh) {
	t.Helper()
	if errs := Validate(m); len(errs) != 0 {
		for _, e := range errs {
			t.Errorf("validation: %v", e)
		}
		t.Fatalf("mesh failed validation with %d findings", len(errs))
	}
}

// vertexAt returns the live vertex at an exact position. Fixture positions
// are distinct so the lookup is unambiguous.
func vertexAt(t *testing.T, m *Mesh, p v3.Vec) VertexID {
	t.Helper()
	for _, id := range m.VertexIDs() {
		if m.positions[id] == p {
			return id
		}
	}
	t.Fatalf("no vertex at %v", p)
	return VertexID{}
}

func mustHalfedgeFromTo(t *testing.T, m *Mesh, from, to VertexID) HalfedgeID {
	t.Helper()
	h, err := m.HalfedgeFromTo(from, to)
	if err != nil {
		t.Fatalf("HalfedgeFromTo: %v", err)
	}
	if h.IsNil() {
		t.Fatalf("vertices %s and %s are not adjacent", from, to)
	}
	return h
}
