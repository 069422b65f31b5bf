package mesh

import (
	"fmt"

	"github.com/meshkit/meshgraph/pkg/arena"
)

// ValidationError describes a single connectivity or attribute finding.
type ValidationError struct {
	Entity  string // which element has the problem, e.g. "halfedge 3@1"
	Message string
}

func (e ValidationError) Error() string {
	if e.Entity == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Entity, e.Message)
}

// Validate runs every structural check over the whole mesh and returns the
// findings. An empty slice means the mesh is a consistent manifold
// triangle mesh. This function is read-only and never mutates the mesh.
func Validate(m *Mesh) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateTwins(m)...)
	errs = append(errs, validateDirectedEdges(m)...)
	errs = append(errs, validateFaceCycles(m)...)
	errs = append(errs, validateBoundaryLoops(m)...)
	errs = append(errs, validateOutgoing(m)...)
	errs = append(errs, validateAttributes(m)...)
	return errs
}

func heEntity(id HalfedgeID) string { return fmt.Sprintf("halfedge %s", id) }
func vEntity(id VertexID) string    { return fmt.Sprintf("vertex %s", id) }
func fEntity(id FaceID) string      { return fmt.Sprintf("face %s", id) }

// validateTwins checks that Twin is a live involution with no fixed points
// and that twins traverse the same edge in opposite directions.
func validateTwins(m *Mesh) []ValidationError {
	var errs []ValidationError

	m.halfedges.ForEach(func(h arena.Handle, e *Halfedge) bool {
		id := HalfedgeID{h}
		t, ok := m.halfedges.Get(e.Twin.Handle)
		if !ok {
			errs = append(errs, ValidationError{heEntity(id), fmt.Sprintf("twin %s is dead", e.Twin)})
			return true
		}
		if e.Twin == id {
			errs = append(errs, ValidationError{heEntity(id), "halfedge is its own twin"})
			return true
		}
		if t.Twin != id {
			errs = append(errs, ValidationError{heEntity(id), fmt.Sprintf("twin %s points back at %s", e.Twin, t.Twin)})
		}
		if !m.vertices.Contains(e.Origin.Handle) {
			errs = append(errs, ValidationError{heEntity(id), fmt.Sprintf("origin %s is dead", e.Origin)})
		}
		return true
	})

	return errs
}

// validateDirectedEdges checks that every directed origin->destination
// pair is traversed by at most one live halfedge. Twins run the same edge
// in opposite directions, so a well-formed mesh never repeats a pair; a
// duplicate means two distinct edges join the same two vertices in the
// same direction.
func validateDirectedEdges(m *Mesh) []ValidationError {
	var errs []ValidationError
	seen := make(map[directedEdge]HalfedgeID, m.halfedges.Len())

	m.halfedges.ForEach(func(h arena.Handle, e *Halfedge) bool {
		id := HalfedgeID{h}
		if !m.halfedges.Contains(e.Twin.Handle) {
			return true // destination unknowable; validateTwins reports it
		}
		key := directedEdge{e.Origin, m.dest(id)}
		if prev, ok := seen[key]; ok {
			errs = append(errs, ValidationError{heEntity(id),
				fmt.Sprintf("duplicate directed edge %s->%s, already traversed by %s", key.from, key.to, prev)})
			return true
		}
		seen[key] = id
		return true
	})

	return errs
}

// validateFaceCycles checks that every face points at a live halfedge,
// that following Next from it closes in exactly three steps, and that all
// three halfedges carry the face pointer.
func validateFaceCycles(m *Mesh) []ValidationError {
	var errs []ValidationError

	m.faces.ForEach(func(h arena.Handle, f *Face) bool {
		id := FaceID{h}
		if !m.halfedges.Contains(f.Halfedge.Handle) {
			errs = append(errs, ValidationError{fEntity(id), fmt.Sprintf("anchor halfedge %s is dead", f.Halfedge)})
			return true
		}
		cur := f.Halfedge
		for i := 0; i < 3; i++ {
			e, ok := m.halfedges.Get(cur.Handle)
			if !ok {
				errs = append(errs, ValidationError{fEntity(id), fmt.Sprintf("cycle passes dead halfedge %s", cur)})
				return true
			}
			if e.Face != id {
				errs = append(errs, ValidationError{fEntity(id), fmt.Sprintf("cycle halfedge %s belongs to %s", cur, e.Face)})
			}
			if !m.vertices.Contains(e.Origin.Handle) {
				errs = append(errs, ValidationError{heEntity(cur), fmt.Sprintf("origin %s is dead", e.Origin)})
			}
			cur = e.Next
		}
		if cur != f.Halfedge {
			errs = append(errs, ValidationError{fEntity(id), "next cycle does not close in three steps"})
		}
		return true
	})

	return errs
}

// validateBoundaryLoops checks that every boundary halfedge's Next is a
// live boundary halfedge continuing from its destination, and that every
// boundary loop closes.
func validateBoundaryLoops(m *Mesh) []ValidationError {
	var errs []ValidationError
	visited := make(map[HalfedgeID]bool)

	m.halfedges.ForEach(func(h arena.Handle, e *Halfedge) bool {
		id := HalfedgeID{h}
		if !e.IsBoundary() || visited[id] {
			return true
		}
		cur := id
		for steps := 0; ; steps++ {
			if steps > m.halfedges.Len() {
				errs = append(errs, ValidationError{heEntity(id), "boundary loop does not close"})
				return true
			}
			visited[cur] = true
			ce, ok := m.halfedges.Get(cur.Handle)
			if !ok {
				errs = append(errs, ValidationError{heEntity(id), fmt.Sprintf("boundary loop passes dead halfedge %s", cur)})
				return true
			}
			next, ok := m.halfedges.Get(ce.Next.Handle)
			if !ok {
				errs = append(errs, ValidationError{heEntity(cur), fmt.Sprintf("boundary next %s is dead", ce.Next)})
				return true
			}
			if !next.Face.IsNil() {
				errs = append(errs, ValidationError{heEntity(cur), fmt.Sprintf("boundary next %s has a face", ce.Next)})
			}
			if next.Origin != m.dest(cur) {
				errs = append(errs, ValidationError{heEntity(cur), fmt.Sprintf("boundary next %s does not start at destination", ce.Next)})
			}
			if ce.Next == id {
				return true
			}
			cur = ce.Next
		}
	})

	return errs
}

// validateOutgoing checks that every non-isolated vertex points at a live
// outgoing halfedge originating there and that the rotation around it
// closes within the degree bound, visiting each incident halfedge once.
func validateOutgoing(m *Mesh) []ValidationError {
	var errs []ValidationError

	m.vertices.ForEach(func(h arena.Handle, vtx *Vertex) bool {
		id := VertexID{h}
		if vtx.Outgoing.IsNil() {
			return true // isolated
		}
		e, ok := m.halfedges.Get(vtx.Outgoing.Handle)
		if !ok {
			errs = append(errs, ValidationError{vEntity(id), fmt.Sprintf("outgoing halfedge %s is dead", vtx.Outgoing)})
			return true
		}
		if e.Origin != id {
			errs = append(errs, ValidationError{vEntity(id), fmt.Sprintf("outgoing halfedge %s originates at %s", vtx.Outgoing, e.Origin)})
			return true
		}
		out, err := m.rotateOutgoing(vtx.Outgoing)
		if err != nil {
			errs = append(errs, ValidationError{vEntity(id), err.Error()})
			return true
		}
		seen := make(map[HalfedgeID]bool, len(out))
		for _, o := range out {
			if m.he(o).Origin != id {
				errs = append(errs, ValidationError{vEntity(id), fmt.Sprintf("rotation reaches %s with origin %s", o, m.he(o).Origin)})
			}
			if seen[o] {
				errs = append(errs, ValidationError{vEntity(id), fmt.Sprintf("rotation revisits %s before closing", o)})
				break
			}
			seen[o] = true
		}
		return true
	})

	return errs
}

// validateAttributes checks that the position map (and the normal map when
// present) covers exactly the live vertices.
func validateAttributes(m *Mesh) []ValidationError {
	var errs []ValidationError

	m.vertices.ForEach(func(h arena.Handle, _ *Vertex) bool {
		id := VertexID{h}
		if _, ok := m.positions[id]; !ok {
			errs = append(errs, ValidationError{vEntity(id), "no position entry"})
		}
		return true
	})
	for id := range m.positions {
		if !m.vertices.Contains(id.Handle) {
			errs = append(errs, ValidationError{vEntity(id), "position entry for dead vertex"})
		}
	}
	if m.normals != nil {
		for id := range m.normals {
			if !m.vertices.Contains(id.Handle) {
				errs = append(errs, ValidationError{vEntity(id), "normal entry for dead vertex"})
			}
		}
	}

	return errs
}
