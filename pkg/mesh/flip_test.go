package mesh

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestFlipInteriorEdge(t *testing.T) {
	m := twoTriangleStrip(t)
	a := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	c := vertexAt(t, m, v3.Vec{X: 0.5, Y: 1, Z: 0})
	d := vertexAt(t, m, v3.Vec{X: 0.5, Y: -1, Z: 0})
	h := mustHalfedgeFromTo(t, m, a, b)
	v0, h0, f0 := m.VertexCount(), m.HalfedgeCount(), m.FaceCount()

	if err := m.FlipEdge(h); err != nil {
		t.Fatalf("FlipEdge: %v", err)
	}

	if m.VertexCount() != v0 || m.HalfedgeCount() != h0 || m.FaceCount() != f0 {
		t.Errorf("counts changed: %d/%d/%d, want %d/%d/%d",
			m.VertexCount(), m.HalfedgeCount(), m.FaceCount(), v0, h0, f0)
	}

	ab, err := m.HalfedgeFromTo(a, b)
	if err != nil {
		t.Fatalf("HalfedgeFromTo: %v", err)
	}
	if !ab.IsNil() {
		t.Error("old diagonal still present after flip")
	}
	mustHalfedgeFromTo(t, m, c, d)
	mustHalfedgeFromTo(t, m, d, c)
	mustValidate(t, m)
}

func TestFlipTwiceRestoresDiagonal(t *testing.T) {
	m := twoTriangleStrip(t)
	a := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	h := mustHalfedgeFromTo(t, m, a, b)

	if err := m.FlipEdge(h); err != nil {
		t.Fatalf("first FlipEdge: %v", err)
	}
	// h survives a flip and now runs the new diagonal.
	if err := m.FlipEdge(h); err != nil {
		t.Fatalf("second FlipEdge: %v", err)
	}

	mustHalfedgeFromTo(t, m, a, b)
	mustValidate(t, m)
}

func TestFlipBoundaryEdgeRejected(t *testing.T) {
	m := singleTriangle(t)
	a := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	h := mustHalfedgeFromTo(t, m, a, b)

	if err := m.FlipEdge(h); !errors.Is(err, ErrNotATriangle) {
		t.Errorf("FlipEdge error = %v, want ErrNotATriangle", err)
	}
	mustValidate(t, m)
}

// On a tetrahedron the opposite corners of every quad are already joined,
// so any flip would double an existing edge.
func TestFlipRejectedWhenDiagonalExists(t *testing.T) {
	m := tetrahedron(t)
	h0 := m.HalfedgeCount()

	for _, h := range m.HalfedgeIDs() {
		if err := m.FlipEdge(h); !errors.Is(err, ErrWouldCreateNonManifoldEdge) {
			t.Errorf("FlipEdge(%s) error = %v, want ErrWouldCreateNonManifoldEdge", h, err)
		}
	}
	if m.HalfedgeCount() != h0 {
		t.Errorf("halfedge count changed to %d", m.HalfedgeCount())
	}
	mustValidate(t, m)
}

func TestFlipStaleHandle(t *testing.T) {
	m := twoTriangleStrip(t)
	a := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	h := mustHalfedgeFromTo(t, m, a, b)

	if _, err := m.CollapseEdge(h); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	if err := m.FlipEdge(h); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("FlipEdge error = %v, want ErrStaleHandle", err)
	}
}
