package mesh

import (
	"errors"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

func TestCollapseMovesSurvivorToMidpoint(t *testing.T) {
	m := twoTriangleStrip(t)
	a := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	h := mustHalfedgeFromTo(t, m, a, b)

	if _, err := m.CollapseEdge(h); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}

	pos, err := m.Position(a)
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	want := v3.Vec{X: 0.5, Y: 0, Z: 0}
	if pos != want {
		t.Errorf("survivor at %v, want midpoint %v", pos, want)
	}
	if m.vertices.Contains(b.Handle) {
		t.Error("merged vertex still alive")
	}
	mustValidate(t, m)
}

func TestCollapseReportMatchesCounts(t *testing.T) {
	m := bipyramid(t)
	v0, h0, f0 := m.VertexCount(), m.HalfedgeCount(), m.FaceCount()

	a := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	top := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 1})
	h := mustHalfedgeFromTo(t, m, a, top)

	rep, err := m.CollapseEdge(h)
	if err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}

	if got := v0 - len(rep.Vertices); got != m.VertexCount() {
		t.Errorf("vertex count = %d, report implies %d", m.VertexCount(), got)
	}
	if got := h0 - len(rep.Halfedges); got != m.HalfedgeCount() {
		t.Errorf("halfedge count = %d, report implies %d", m.HalfedgeCount(), got)
	}
	if got := f0 - len(rep.Faces); got != m.FaceCount() {
		t.Errorf("face count = %d, report implies %d", m.FaceCount(), got)
	}
	mustValidate(t, m)
}

func TestCollapsePoleEdgeYieldsTetrahedron(t *testing.T) {
	m := bipyramid(t)
	a := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	top := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 1})
	h := mustHalfedgeFromTo(t, m, a, top)

	rep, err := m.CollapseEdge(h)
	if err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}

	if m.VertexCount() != 4 || m.FaceCount() != 4 || m.HalfedgeCount() != 12 {
		t.Errorf("counts = %d/%d/%d, want tetrahedron 4/4/12",
			m.VertexCount(), m.FaceCount(), m.HalfedgeCount())
	}
	if len(rep.Vertices) != 1 || len(rep.Faces) != 2 || len(rep.Halfedges) != 6 {
		t.Errorf("report = %d/%d/%d vertices/faces/halfedges, want 1/2/6",
			len(rep.Vertices), len(rep.Faces), len(rep.Halfedges))
	}
	mustValidate(t, m)
}

func TestCollapseEquatorEdgeRejected(t *testing.T) {
	m := bipyramid(t)
	a := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: -0.5, Y: 0.8, Z: 0})
	h := mustHalfedgeFromTo(t, m, a, b)

	v0, h0, f0 := m.VertexCount(), m.HalfedgeCount(), m.FaceCount()
	_, err := m.CollapseEdge(h)
	if !errors.Is(err, ErrWouldCreateNonManifoldEdge) {
		t.Fatalf("err = %v, want ErrWouldCreateNonManifoldEdge", err)
	}

	// Rejection leaves the mesh untouched.
	if m.VertexCount() != v0 || m.HalfedgeCount() != h0 || m.FaceCount() != f0 {
		t.Errorf("counts changed after rejected collapse: %d/%d/%d, want %d/%d/%d",
			m.VertexCount(), m.HalfedgeCount(), m.FaceCount(), v0, h0, f0)
	}
	mustValidate(t, m)
}

func TestCollapseBoundaryEdge(t *testing.T) {
	m := twoTriangleStrip(t)
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	c := vertexAt(t, m, v3.Vec{X: 0.5, Y: 1, Z: 0})
	h := mustHalfedgeFromTo(t, m, b, c)

	rep, err := m.CollapseEdge(h)
	if err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	if m.FaceCount() != 1 {
		t.Errorf("face count = %d, want 1", m.FaceCount())
	}
	if len(rep.Vertices) != 1 {
		t.Errorf("report vertices = %d, want 1", len(rep.Vertices))
	}
	loops, err := m.BoundaryLoops()
	if err != nil {
		t.Fatalf("BoundaryLoops: %v", err)
	}
	if len(loops) != 1 {
		t.Errorf("boundary loops = %d, want 1", len(loops))
	}
	mustValidate(t, m)
}

// Same contraction as TestCollapseBoundaryEdge, but entered through the
// face-less halfedge, so the boundary-bridging branch of the surgery runs
// for h itself rather than its twin.
func TestCollapseBoundaryEdgeFromOuterSide(t *testing.T) {
	m := twoTriangleStrip(t)
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	c := vertexAt(t, m, v3.Vec{X: 0.5, Y: 1, Z: 0})
	h := mustHalfedgeFromTo(t, m, c, b)

	rec, err := m.Halfedge(h)
	if err != nil {
		t.Fatalf("Halfedge: %v", err)
	}
	if !rec.IsBoundary() {
		t.Fatal("expected the face-less side of the rim edge")
	}

	rep, err := m.CollapseEdge(h)
	if err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	if m.FaceCount() != 1 {
		t.Errorf("face count = %d, want 1", m.FaceCount())
	}
	if m.vertices.Contains(b.Handle) {
		t.Error("merged vertex still alive")
	}
	if len(rep.Vertices) != 1 || len(rep.Halfedges) != 4 || len(rep.Faces) != 1 {
		t.Errorf("report = %d/%d/%d vertices/halfedges/faces, want 1/4/1",
			len(rep.Vertices), len(rep.Halfedges), len(rep.Faces))
	}

	pos, err := m.Position(c)
	if err != nil {
		t.Fatalf("Position: %v", err)
	}
	want := v3.Vec{X: 0.75, Y: 0.5, Z: 0}
	if pos != want {
		t.Errorf("survivor at %v, want midpoint %v", pos, want)
	}

	loops, err := m.BoundaryLoops()
	if err != nil {
		t.Fatalf("BoundaryLoops: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("boundary loops = %d, want 1", len(loops))
	}
	loop, err := m.Loop(loops[0])
	if err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if len(loop) != 3 {
		t.Errorf("boundary loop length = %d, want 3", len(loop))
	}
	mustValidate(t, m)
}

func TestPrevInLoopPanicsWhenLoopBroken(t *testing.T) {
	m := twoTriangleStrip(t)
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	c := vertexAt(t, m, v3.Vec{X: 0.5, Y: 1, Z: 0})
	d := vertexAt(t, m, v3.Vec{X: 0.5, Y: -1, Z: 0})
	cb := mustHalfedgeFromTo(t, m, c, b)
	bd := mustHalfedgeFromTo(t, m, b, d)

	// Short-circuit the boundary loop so a walk from cb never returns.
	m.he(bd).Next = bd

	defer func() {
		if r := recover(); r == nil {
			t.Error("walk around a broken loop should panic instead of spinning")
		}
	}()
	m.prevInLoop(cb)
}

func TestCollapseTetrahedronEdgeDissolvesFlap(t *testing.T) {
	// Contracting a tetrahedron edge leaves two faces glued back to back
	// over the same three vertices; cleanup removes the pair.
	m := tetrahedron(t)
	a := m.VertexIDs()[0]
	ns, err := m.Neighbors(a)
	if err != nil {
		t.Fatalf("Neighbors: %v", err)
	}
	h := mustHalfedgeFromTo(t, m, a, ns[0])

	rep, err := m.CollapseEdge(h)
	if err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	if m.FaceCount() != 0 || m.HalfedgeCount() != 0 {
		t.Errorf("counts = %d faces, %d halfedges, want 0/0", m.FaceCount(), m.HalfedgeCount())
	}
	if m.VertexCount() != 3 {
		t.Errorf("vertex count = %d, want 3 isolated survivors", m.VertexCount())
	}
	if len(rep.Faces) != 4 || len(rep.Halfedges) != 12 || len(rep.Vertices) != 1 {
		t.Errorf("report = %d/%d/%d faces/halfedges/vertices, want 4/12/1",
			len(rep.Faces), len(rep.Halfedges), len(rep.Vertices))
	}
	mustValidate(t, m)
}

func TestCollapseCleanupIsIdempotent(t *testing.T) {
	m := bipyramid(t)
	a := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	top := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 1})
	if _, err := m.CollapseEdge(mustHalfedgeFromTo(t, m, a, top)); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}

	rep, err := m.RemoveDegenerateFaces()
	if err != nil {
		t.Fatalf("RemoveDegenerateFaces: %v", err)
	}
	if !rep.Empty() {
		t.Errorf("second cleanup removed %d/%d/%d vertices/halfedges/faces, want none",
			len(rep.Vertices), len(rep.Halfedges), len(rep.Faces))
	}
}

func TestCollapseStaleHandle(t *testing.T) {
	m := tetrahedron(t)
	a := m.VertexIDs()[0]
	ns, _ := m.Neighbors(a)
	h := mustHalfedgeFromTo(t, m, a, ns[0])
	if _, err := m.CollapseEdge(h); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	if _, err := m.CollapseEdge(h); !errors.Is(err, ErrStaleHandle) {
		t.Fatalf("err = %v, want ErrStaleHandle", err)
	}
}

func TestCollapseEvictsNormalOfMergedVertex(t *testing.T) {
	m := twoTriangleStrip(t)
	m.ComputeVertexNormals()
	a := vertexAt(t, m, v3.Vec{X: 0, Y: 0, Z: 0})
	b := vertexAt(t, m, v3.Vec{X: 1, Y: 0, Z: 0})
	if _, err := m.CollapseEdge(mustHalfedgeFromTo(t, m, a, b)); err != nil {
		t.Fatalf("CollapseEdge: %v", err)
	}
	if _, err := m.VertexNormal(b); !errors.Is(err, ErrStaleHandle) {
		t.Errorf("VertexNormal on merged vertex: err = %v, want ErrStaleHandle", err)
	}
	mustValidate(t, m)
}
