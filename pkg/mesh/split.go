package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// SplitEdge inserts a vertex at the midpoint of h's undirected edge and
// re-triangulates the incident faces. An interior edge gains one vertex,
// two faces, and six halfedges; a boundary edge gains one vertex, one
// face, and four halfedges. The returned id is the new vertex.
//
// The split fails with ErrStaleHandle if h is dead and with
// ErrNotATriangle if an incident face is not a 3-cycle or the edge has no
// face at all (an isolated edge cannot be split into triangles). On
// failure the mesh is unchanged.
func (m *Mesh) SplitEdge(h HalfedgeID) (VertexID, error) {
	hrec, ok := m.halfedges.Get(h.Handle)
	if !ok {
		return VertexID{}, fmt.Errorf("split %s: %w", h, ErrStaleHandle)
	}
	hp := *hrec // copy; inserts below may grow the arena
	t := hp.Twin
	f1 := hp.Face
	f2 := m.he(t).Face

	if f1.IsNil() && f2.IsNil() {
		return VertexID{}, fmt.Errorf("split %s: edge has no incident face: %w", h, ErrNotATriangle)
	}
	if !f1.IsNil() && m.he(m.he(hp.Next).Next).Next != h {
		return VertexID{}, fmt.Errorf("split %s: face %s: %w", h, f1, ErrNotATriangle)
	}
	if !f2.IsNil() && m.he(m.he(m.he(t).Next).Next).Next != t {
		return VertexID{}, fmt.Errorf("split %s: face %s: %w", h, f2, ErrNotATriangle)
	}

	u := hp.Origin
	v := m.he(t).Origin

	// Capture the surrounding cycle before rewiring.
	var n, p, n2, p2 HalfedgeID
	var yBound, zBound HalfedgeID
	if !f1.IsNil() {
		n = hp.Next
		p = m.he(n).Next
	} else {
		yBound = hp.Next
	}
	if !f2.IsNil() {
		n2 = m.he(t).Next
		p2 = m.he(n2).Next
	} else {
		zBound = m.he(t).Next
	}

	mid := m.positions[u].Add(m.positions[v]).MulScalar(0.5)
	w := m.insertVertex(mid)

	// The edge u->v becomes u->w (reusing h and t's storage) plus w->v.
	h2 := m.insertHalfedge(w) // w->v, same side as h
	t2 := m.insertHalfedge(w) // w->u, same side as t
	m.he(h).Twin = t2
	m.he(t2).Twin = h
	m.he(h2).Twin = t
	m.he(t).Twin = h2

	if !f1.IsNil() {
		a := m.he(p).Origin
		e1 := m.insertHalfedge(w) // w->a
		e2 := m.insertHalfedge(a) // a->w
		m.he(e1).Twin = e2
		m.he(e2).Twin = e1

		// Triangle u,w,a reuses f1.
		m.he(h).Next = e1
		m.he(e1).Next = p
		m.he(p).Next = h
		m.he(e1).Face = f1
		m.f(f1).Halfedge = h

		// Triangle w,v,a is new.
		m.he(h2).Next = n
		m.he(n).Next = e2
		m.he(e2).Next = h2
		m.insertFace(h2, n, e2)
	} else {
		m.he(h).Next = h2
		m.he(h2).Next = yBound
		m.he(h2).Face = FaceID{}
	}

	if !f2.IsNil() {
		b := m.he(p2).Origin
		e3 := m.insertHalfedge(w) // w->b
		e4 := m.insertHalfedge(b) // b->w
		m.he(e3).Twin = e4
		m.he(e4).Twin = e3

		// Triangle v,w,b reuses f2.
		m.he(t).Next = e3
		m.he(e3).Next = p2
		m.he(p2).Next = t
		m.he(e3).Face = f2
		m.f(f2).Halfedge = t

		// Triangle w,u,b is new.
		m.he(t2).Next = n2
		m.he(n2).Next = e4
		m.he(e4).Next = t2
		m.insertFace(t2, n2, e4)
	} else {
		m.he(t).Next = t2
		m.he(t2).Next = zBound
		m.he(t2).Face = FaceID{}
	}

	m.v(w).Outgoing = h2

	if m.normals != nil {
		m.normals[w] = interpolateNormal(m.normals[u], m.normals[v])
	}
	return w, nil
}

// interpolateNormal averages two unit normals, falling back to the raw sum
// when they cancel.
func interpolateNormal(a, b v3.Vec) v3.Vec {
	n := a.Add(b)
	if n.Length() == 0 {
		return n
	}
	return n.Normalize()
}
