package mesh

import (
	"fmt"

	"github.com/meshkit/meshgraph/pkg/arena"
)

// RemoveDegenerateFaces removes faces with repeated corners, faces with a
// zero-length edge (corners within Options.DegenerateEpsilon), and flap
// pairs (two faces over the same three vertices glued back to back), then
// repeats until no new degeneracies appear. Construction and CollapseEdge
// run the same pass. It returns everything removed.
//
// One removal can expose another, so the pass iterates to a fixed point;
// the iteration count is bounded by the face count since every productive
// pass deletes at least one face.
func (m *Mesh) RemoveDegenerateFaces() (RemovalReport, error) {
	var rep RemovalReport

	limit := m.faces.Len() + 1
	for pass := 0; ; pass++ {
		if pass > limit {
			return rep, fmt.Errorf("degenerate face cleanup did not converge after %d passes", pass)
		}
		removed := m.cleanupPass(&rep)
		if !removed {
			return rep, nil
		}
	}
}

// cleanupPass scans all faces once and removes the first kind of
// degeneracy found on each. It reports whether anything was removed.
func (m *Mesh) cleanupPass(rep *RemovalReport) bool {
	ids := make([]FaceID, 0, m.faces.Len())
	m.faces.ForEach(func(h arena.Handle, _ *Face) bool {
		ids = append(ids, FaceID{h})
		return true
	})

	removed := false
	for _, f := range ids {
		if !m.faces.Contains(f.Handle) {
			continue // removed while handling an earlier face this pass
		}
		if m.dissolveRepeatedCorner(f, rep) {
			removed = true
			continue
		}
		if m.collapseZeroEdge(f, rep) {
			removed = true
			continue
		}
		if m.removeFlap(f, rep) {
			removed = true
		}
	}
	return removed
}

// dissolveRepeatedCorner removes a face whose 3-cycle visits a vertex
// twice. Such a face has a halfedge from a vertex to itself; the face is
// dissolved around that edge and the self-edge pair deleted.
func (m *Mesh) dissolveRepeatedCorner(f FaceID, rep *RemovalReport) bool {
	hs, err := m.FaceHalfedges(f)
	if err != nil {
		return false
	}
	var self HalfedgeID
	for _, h := range hs {
		if m.he(h).Origin == m.dest(h) {
			self = h
			break
		}
	}
	if self.IsNil() {
		return false
	}

	origin := m.he(self).Origin
	originOut := m.outgoingOrNil(origin)
	t := m.he(self).Twin

	m.removeFaceRewire(self, rep)
	// The twin may share the 3-cycle that was just dissolved.
	if m.halfedges.Contains(t.Handle) {
		if !m.he(t).Face.IsNil() {
			m.removeFaceRewire(t, rep)
		} else if prev := m.prevInLoop(t); prev != self && prev != t {
			m.he(prev).Next = m.he(t).Next
		}
		m.halfedges.Remove(t.Handle)
		rep.Halfedges = append(rep.Halfedges, t)
	}
	m.halfedges.Remove(self.Handle)
	rep.Halfedges = append(rep.Halfedges, self)

	m.repairOutgoing(origin, originOut)
	return true
}

// collapseZeroEdge contracts the first face edge whose endpoint positions
// coincide within the epsilon. The contraction reuses the collapse surgery
// but skips the link condition: geometric degeneracy outranks the
// manifold guard here, and the surrounding fixed-point pass mops up any
// faces it degenerates in turn.
func (m *Mesh) collapseZeroEdge(f FaceID, rep *RemovalReport) bool {
	hs, err := m.FaceHalfedges(f)
	if err != nil {
		return false
	}
	eps := m.opts.DegenerateEpsilon
	for _, h := range hs {
		u := m.he(h).Origin
		v := m.dest(h)
		if u == v {
			continue
		}
		if m.positions[u].Sub(m.positions[v]).Length() <= eps {
			m.collapseCore(h, rep)
			return true
		}
	}
	return false
}

// removeFlap removes f and its back-to-back partner when some neighboring
// face spans the same three vertices. Both faces and their interior edges
// go away; any edge of the pair whose twin lies outside the pair is
// re-twinned with its counterpart, keeping the surrounding surface sewn.
func (m *Mesh) removeFlap(f FaceID, rep *RemovalReport) bool {
	hs, err := m.FaceHalfedges(f)
	if err != nil {
		return false
	}
	fSet := m.faceVertexSet(f)

	var g FaceID
	for _, h := range hs {
		tf := m.he(m.he(h).Twin).Face
		if tf.IsNil() || tf == f {
			continue
		}
		if m.faceVertexSet(tf) == fSet {
			g = tf
			break
		}
	}
	if g.IsNil() {
		return false
	}

	ghs, err := m.FaceHalfedges(g)
	if err != nil {
		return false
	}

	inPair := make(map[HalfedgeID]bool, 6)
	for _, h := range hs {
		inPair[h] = true
	}
	for _, h := range ghs {
		inPair[h] = true
	}

	corners := [3]VertexID{m.he(hs[0]).Origin, m.he(hs[1]).Origin, m.he(hs[2]).Origin}
	var cornerOut [3][]HalfedgeID
	for i, c := range corners {
		cornerOut[i] = m.outgoingOrNil(c)
	}

	// Halfedges outside the pair whose twin lies inside it lose that twin;
	// resew them to each other by matching directed endpoints. A closed
	// pillow has none.
	type seam struct {
		id       HalfedgeID
		from, to VertexID
	}
	var outer []seam
	for h := range inPair {
		t := m.he(h).Twin
		if !inPair[t] {
			outer = append(outer, seam{t, m.he(t).Origin, m.dest(t)})
		}
	}
	for i := range outer {
		for j := range outer {
			if i != j && outer[i].from == outer[j].to && outer[i].to == outer[j].from {
				m.he(outer[i].id).Twin = outer[j].id
			}
		}
	}

	for h := range inPair {
		m.halfedges.Remove(h.Handle)
		rep.Halfedges = append(rep.Halfedges, h)
	}
	m.faces.Remove(f.Handle)
	m.faces.Remove(g.Handle)
	rep.Faces = append(rep.Faces, f, g)

	for i, c := range corners {
		m.repairOutgoing(c, cornerOut[i])
	}
	return true
}

// faceVertexSet returns the face's corner handles in a canonical order for
// set comparison.
func (m *Mesh) faceVertexSet(f FaceID) [3]VertexID {
	hs, _ := m.FaceHalfedges(f)
	s := [3]VertexID{m.he(hs[0]).Origin, m.he(hs[1]).Origin, m.he(hs[2]).Origin}
	if cmpVertexID(s[0], s[1]) > 0 {
		s[0], s[1] = s[1], s[0]
	}
	if cmpVertexID(s[1], s[2]) > 0 {
		s[1], s[2] = s[2], s[1]
	}
	if cmpVertexID(s[0], s[1]) > 0 {
		s[0], s[1] = s[1], s[0]
	}
	return s
}

func cmpVertexID(a, b VertexID) int {
	switch {
	case a.Index != b.Index:
		return int(a.Index) - int(b.Index)
	case a.Gen != b.Gen:
		return int(a.Gen) - int(b.Gen)
	}
	return 0
}
