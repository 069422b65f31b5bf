package mesh

import "fmt"

// OutgoingHalfedges returns every halfedge with origin id, starting at the
// vertex's stored outgoing halfedge and rotating until the walk closes. The
// rotation crosses boundary gaps because boundary halfedges carry twins and
// a threaded Next like any other. An empty slice means the vertex is
// isolated.
func (m *Mesh) OutgoingHalfedges(id VertexID) ([]HalfedgeID, error) {
	vtx, ok := m.vertices.Get(id.Handle)
	if !ok {
		return nil, fmt.Errorf("outgoing halfedges of %s: %w", id, ErrStaleHandle)
	}
	if vtx.Outgoing.IsNil() {
		return nil, nil
	}
	return m.rotateOutgoing(vtx.Outgoing)
}

// rotateOutgoing collects the outgoing ring starting at start, which must
// be live. Ring walk: the next outgoing halfedge counter-clockwise is the
// Next of the current one's twin.
func (m *Mesh) rotateOutgoing(start HalfedgeID) ([]HalfedgeID, error) {
	out := []HalfedgeID{start}
	cur := m.he(m.he(start).Twin).Next
	for cur != start {
		if len(out) > m.opts.DegreeBound {
			return nil, fmt.Errorf("vertex %s exceeds degree bound %d: %w",
				m.he(start).Origin, m.opts.DegreeBound, ErrNonManifoldVertex)
		}
		out = append(out, cur)
		cur = m.he(m.he(cur).Twin).Next
	}
	return out, nil
}

// VertexDegree returns the number of undirected edges incident to a vertex.
func (m *Mesh) VertexDegree(id VertexID) (int, error) {
	out, err := m.OutgoingHalfedges(id)
	if err != nil {
		return 0, err
	}
	return len(out), nil
}

// Neighbors returns the vertices adjacent to id, in rotation order.
func (m *Mesh) Neighbors(id VertexID) ([]VertexID, error) {
	out, err := m.OutgoingHalfedges(id)
	if err != nil {
		return nil, err
	}
	ns := make([]VertexID, len(out))
	for i, h := range out {
		ns[i] = m.dest(h)
	}
	return ns, nil
}

// IsBoundaryVertex reports whether any incident halfedge lies on a
// boundary loop. Isolated vertices count as boundary.
func (m *Mesh) IsBoundaryVertex(id VertexID) (bool, error) {
	out, err := m.OutgoingHalfedges(id)
	if err != nil {
		return false, err
	}
	if len(out) == 0 {
		return true, nil
	}
	for _, h := range out {
		if m.he(h).IsBoundary() || m.he(m.he(h).Twin).IsBoundary() {
			return true, nil
		}
	}
	return false, nil
}

// IsBoundaryEdge reports whether the undirected edge of h has a boundary
// halfedge on either side.
func (m *Mesh) IsBoundaryEdge(h HalfedgeID) (bool, error) {
	e, ok := m.halfedges.Get(h.Handle)
	if !ok {
		return false, fmt.Errorf("boundary test of %s: %w", h, ErrStaleHandle)
	}
	return e.IsBoundary() || m.he(e.Twin).IsBoundary(), nil
}

// FaceHalfedges returns the three halfedges of a face in cycle order.
func (m *Mesh) FaceHalfedges(id FaceID) ([3]HalfedgeID, error) {
	f, ok := m.faces.Get(id.Handle)
	if !ok {
		return [3]HalfedgeID{}, fmt.Errorf("face halfedges of %s: %w", id, ErrStaleHandle)
	}
	h1 := f.Halfedge
	h2 := m.he(h1).Next
	h3 := m.he(h2).Next
	return [3]HalfedgeID{h1, h2, h3}, nil
}

// Loop follows Next from h until it returns, yielding a face cycle or a
// boundary loop depending on where h sits. The walk is capped so corrupted
// connectivity surfaces as an error instead of an unbounded loop.
func (m *Mesh) Loop(h HalfedgeID) ([]HalfedgeID, error) {
	if !m.halfedges.Contains(h.Handle) {
		return nil, fmt.Errorf("loop of %s: %w", h, ErrStaleHandle)
	}
	limit := m.halfedges.Len()
	loop := []HalfedgeID{h}
	cur := m.he(h).Next
	for cur != h {
		if len(loop) > limit {
			return nil, fmt.Errorf("next cycle through %s does not close", h)
		}
		loop = append(loop, cur)
		cur = m.he(cur).Next
	}
	return loop, nil
}

// HalfedgeFromTo returns the halfedge with the given origin and
// destination, or a zero id if the vertices are not adjacent.
func (m *Mesh) HalfedgeFromTo(from, to VertexID) (HalfedgeID, error) {
	out, err := m.OutgoingHalfedges(from)
	if err != nil {
		return HalfedgeID{}, err
	}
	if !m.vertices.Contains(to.Handle) {
		return HalfedgeID{}, fmt.Errorf("halfedge to %s: %w", to, ErrStaleHandle)
	}
	for _, h := range out {
		if m.dest(h) == to {
			return h, nil
		}
	}
	return HalfedgeID{}, nil
}

// BoundaryLoops returns one representative boundary halfedge per boundary
// loop.
func (m *Mesh) BoundaryLoops() ([]HalfedgeID, error) {
	seen := make(map[HalfedgeID]bool)
	var reps []HalfedgeID
	for _, h := range m.HalfedgeIDs() {
		if !m.he(h).IsBoundary() || seen[h] {
			continue
		}
		loop, err := m.Loop(h)
		if err != nil {
			return nil, err
		}
		for _, e := range loop {
			seen[e] = true
		}
		reps = append(reps, h)
	}
	return reps, nil
}
