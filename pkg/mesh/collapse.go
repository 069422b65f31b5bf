package mesh

import "fmt"

// CollapseEdge contracts h's undirected edge: the destination vertex is
// merged into the origin, the origin moves to the edge midpoint, and the
// one or two incident faces disappear. Faces made degenerate by the
// contraction are removed by the same cleanup pass as
// RemoveDegenerateFaces, and the report covers everything removed.
//
// The collapse fails with ErrStaleHandle if h is dead, ErrNotATriangle if
// an incident face is not a 3-cycle, and ErrWouldCreateNonManifoldEdge if
// the link condition fails (the endpoints share a neighbor that is not an
// apex of an incident face, so contraction would fuse two distinct edges).
// On failure the mesh is unchanged.
func (m *Mesh) CollapseEdge(h HalfedgeID) (RemovalReport, error) {
	var rep RemovalReport

	hrec, ok := m.halfedges.Get(h.Handle)
	if !ok {
		return rep, fmt.Errorf("collapse %s: %w", h, ErrStaleHandle)
	}
	t := hrec.Twin
	f1 := hrec.Face
	f2 := m.he(t).Face
	u := hrec.Origin
	v := m.he(t).Origin

	if !f1.IsNil() && m.he(m.he(hrec.Next).Next).Next != h {
		return rep, fmt.Errorf("collapse %s: face %s: %w", h, f1, ErrNotATriangle)
	}
	if !f2.IsNil() && m.he(m.he(m.he(t).Next).Next).Next != t {
		return rep, fmt.Errorf("collapse %s: face %s: %w", h, f2, ErrNotATriangle)
	}

	// Apexes of the incident faces. These are the only vertices allowed to
	// neighbor both endpoints.
	var apex1, apex2 VertexID
	if !f1.IsNil() {
		apex1 = m.he(m.he(hrec.Next).Twin).Origin // dest of h.Next
	}
	if !f2.IsNil() {
		apex2 = m.he(m.he(m.he(t).Next).Twin).Origin
	}

	uNbrs, err := m.Neighbors(u)
	if err != nil {
		return rep, fmt.Errorf("collapse %s: %w", h, err)
	}
	vNbrs, err := m.Neighbors(v)
	if err != nil {
		return rep, fmt.Errorf("collapse %s: %w", h, err)
	}
	uSet := make(map[VertexID]bool, len(uNbrs))
	for _, n := range uNbrs {
		uSet[n] = true
	}
	for _, n := range vNbrs {
		if n == u || !uSet[n] {
			continue
		}
		if n != apex1 && n != apex2 {
			return rep, fmt.Errorf("collapse %s: endpoints share neighbor %s outside incident faces: %w",
				h, n, ErrWouldCreateNonManifoldEdge)
		}
	}

	mid := m.positions[u].Add(m.positions[v]).MulScalar(0.5)
	m.collapseCore(h, &rep)
	m.positions[u] = mid

	cleaned, err := m.RemoveDegenerateFaces()
	if err != nil {
		return rep, fmt.Errorf("collapse %s: cleanup: %w", h, err)
	}
	rep.merge(&cleaned)
	return rep, nil
}

// collapseCore does the contraction surgery without precondition checks.
// The degenerate-face cleanup also calls it on zero-length edges it
// discovers, where the link condition is deliberately skipped.
func (m *Mesh) collapseCore(h HalfedgeID, rep *RemovalReport) {
	hrec := *m.he(h)
	t := hrec.Twin
	u := hrec.Origin
	v := m.he(t).Origin

	// Outgoing rings before surgery, for Outgoing repair afterwards.
	uOut := m.outgoingOrNil(u)
	vOut := m.outgoingOrNil(v)
	var apex1, apex2 VertexID
	var a1Out, a2Out []HalfedgeID
	if !hrec.Face.IsNil() {
		apex1 = m.he(m.he(hrec.Next).Twin).Origin
		a1Out = m.outgoingOrNil(apex1)
	}
	if !m.he(t).Face.IsNil() {
		apex2 = m.he(m.he(m.he(t).Next).Twin).Origin
		a2Out = m.outgoingOrNil(apex2)
	}

	if !hrec.Face.IsNil() {
		m.removeFaceRewire(h, rep)
	} else {
		// h lies on a boundary loop; bridge over it.
		if prev := m.prevInLoop(h); prev != t && prev != h {
			m.he(prev).Next = m.he(h).Next
		}
	}
	if !m.he(t).Face.IsNil() {
		m.removeFaceRewire(t, rep)
	} else {
		if prev := m.prevInLoop(t); prev != h && prev != t {
			m.he(prev).Next = m.he(t).Next
		}
	}

	m.halfedges.Remove(h.Handle)
	m.halfedges.Remove(t.Handle)
	rep.Halfedges = append(rep.Halfedges, h, t)

	if v != u {
		for _, out := range vOut {
			if out == h || out == t || !m.halfedges.Contains(out.Handle) {
				continue
			}
			m.he(out).Origin = u
		}
		m.removeVertex(v)
		rep.Vertices = append(rep.Vertices, v)
	}

	m.repairOutgoing(u, uOut)
	m.repairOutgoing(u, vOut)
	if !apex1.IsNil() {
		m.repairOutgoing(apex1, a1Out)
	}
	if !apex2.IsNil() {
		m.repairOutgoing(apex2, a2Out)
	}
}

// removeFaceRewire dissolves the triangle on side's face: the two other
// edges of the triangle are fused into one by stitching their outer twins
// together, and the face with its two inner halfedges is deleted. side
// itself is left for the caller.
func (m *Mesh) removeFaceRewire(side HalfedgeID, rep *RemovalReport) {
	f := m.he(side).Face
	n := m.he(side).Next
	p := m.he(n).Next
	nt := m.he(n).Twin
	pt := m.he(p).Twin

	m.he(nt).Twin = pt
	m.he(pt).Twin = nt

	m.halfedges.Remove(n.Handle)
	m.halfedges.Remove(p.Handle)
	m.faces.Remove(f.Handle)
	rep.Halfedges = append(rep.Halfedges, n, p)
	rep.Faces = append(rep.Faces, f)
}

// prevInLoop walks Next around h's loop until it comes back to h,
// returning the predecessor. Boundary loops only; interior faces use
// prevInFace. Public entry points validate connectivity before surgery,
// so a walk that outlasts the halfedge count is a bug in this package
// and panics like the must-style accessors do.
func (m *Mesh) prevInLoop(h HalfedgeID) HalfedgeID {
	cur := h
	for steps := 0; steps <= m.halfedges.Len(); steps++ {
		next := m.he(cur).Next
		if next == h {
			return cur
		}
		cur = next
	}
	panic(fmt.Sprintf("mesh: next cycle through %s does not close", h))
}

// outgoingOrNil snapshots a vertex's outgoing ring, tolerating vertices
// whose ring is already inconsistent mid-surgery by returning what it has.
func (m *Mesh) outgoingOrNil(id VertexID) []HalfedgeID {
	out, err := m.OutgoingHalfedges(id)
	if err != nil {
		return nil
	}
	return out
}

// repairOutgoing points id's Outgoing at the first candidate that is still
// alive and still originates at id, or clears it if none survive.
func (m *Mesh) repairOutgoing(id VertexID, candidates []HalfedgeID) {
	if !m.vertices.Contains(id.Handle) {
		return
	}
	cur := m.v(id).Outgoing
	if !cur.IsNil() && m.halfedges.Contains(cur.Handle) && m.he(cur).Origin == id {
		return
	}
	for _, c := range candidates {
		if m.halfedges.Contains(c.Handle) && m.he(c).Origin == id {
			m.v(id).Outgoing = c
			return
		}
	}
	m.v(id).Outgoing = HalfedgeID{}
}
