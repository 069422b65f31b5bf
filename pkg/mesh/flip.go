package mesh

import "fmt"

// FlipEdge replaces h's undirected edge with the opposite diagonal of the
// quad formed by its two incident triangles: faces (u,v,a) and (v,u,b)
// become (b,a,u) and (a,b,v). Nothing is created or removed; h and its
// twin are reused for the new diagonal, so both handles stay valid.
//
// The flip fails with ErrStaleHandle if h is dead, ErrNotATriangle if a
// side has no face (a boundary edge spans no quad) or an incident face is
// not a 3-cycle, and ErrWouldCreateNonManifoldEdge if the opposite corners
// already share an edge. On failure the mesh is unchanged.
func (m *Mesh) FlipEdge(h HalfedgeID) error {
	hrec, ok := m.halfedges.Get(h.Handle)
	if !ok {
		return fmt.Errorf("flip %s: %w", h, ErrStaleHandle)
	}
	t := hrec.Twin
	f1 := hrec.Face
	f2 := m.he(t).Face

	if f1.IsNil() || f2.IsNil() {
		return fmt.Errorf("flip %s: boundary edge: %w", h, ErrNotATriangle)
	}
	if m.he(m.he(hrec.Next).Next).Next != h {
		return fmt.Errorf("flip %s: face %s: %w", h, f1, ErrNotATriangle)
	}
	if m.he(m.he(m.he(t).Next).Next).Next != t {
		return fmt.Errorf("flip %s: face %s: %w", h, f2, ErrNotATriangle)
	}

	u := hrec.Origin
	v := m.he(t).Origin
	n1 := hrec.Next     // v->a
	p1 := m.he(n1).Next // a->u
	n2 := m.he(t).Next  // u->b
	p2 := m.he(n2).Next // b->v
	a := m.he(p1).Origin
	b := m.he(p2).Origin

	if a == b {
		return fmt.Errorf("flip %s: faces share apex %s: %w", h, a, ErrWouldCreateNonManifoldEdge)
	}
	ab, err := m.HalfedgeFromTo(a, b)
	if err != nil {
		return fmt.Errorf("flip %s: %w", h, err)
	}
	if !ab.IsNil() {
		return fmt.Errorf("flip %s: corners %s and %s already share an edge: %w",
			h, a, b, ErrWouldCreateNonManifoldEdge)
	}

	// h becomes b->a inside f1, t becomes a->b inside f2, and each face
	// trades its Next-adjacent rim halfedge for the other's.
	m.he(h).Origin = b
	m.he(t).Origin = a

	m.he(h).Next = p1
	m.he(p1).Next = n2
	m.he(n2).Next = h
	m.he(n2).Face = f1
	m.f(f1).Halfedge = h

	m.he(t).Next = p2
	m.he(p2).Next = n1
	m.he(n1).Next = t
	m.he(n1).Face = f2
	m.f(f2).Halfedge = t

	// u and v may have pointed at the reused diagonal halfedges.
	if m.v(u).Outgoing == h {
		m.v(u).Outgoing = n2
	}
	if m.v(v).Outgoing == t {
		m.v(v).Outgoing = n1
	}
	return nil
}
