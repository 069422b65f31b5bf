package mesh

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/meshkit/meshgraph/pkg/arena"
)

// Mesh is the halfedge connectivity graph together with its attribute
// store. It is built by FromTriangles / FromIndexedTriangles and mutated
// only by SplitEdge, CollapseEdge, RemoveDegenerateFaces, and SetPosition.
//
// A Mesh is safe for any number of concurrent readers between mutations;
// a mutating call requires exclusive access (caller-enforced).
type Mesh struct {
	vertices  *arena.Arena[Vertex]
	halfedges *arena.Arena[Halfedge]
	faces     *arena.Arena[Face]

	positions map[VertexID]v3.Vec
	normals   map[VertexID]v3.Vec // nil until ComputeVertexNormals

	opts Options
}

// New returns an empty mesh with the given options.
func New(opts Options) *Mesh {
	return &Mesh{
		vertices:  arena.New[Vertex](),
		halfedges: arena.New[Halfedge](),
		faces:     arena.New[Face](),
		positions: make(map[VertexID]v3.Vec),
		opts:      opts.withDefaults(),
	}
}

// Options returns the policy values the mesh was built with.
func (m *Mesh) Options() Options {
	return m.opts
}

// VertexCount returns the number of live vertices.
func (m *Mesh) VertexCount() int { return m.vertices.Len() }

// HalfedgeCount returns the number of live halfedges (boundary halfedges
// included).
func (m *Mesh) HalfedgeCount() int { return m.halfedges.Len() }

// FaceCount returns the number of live faces.
func (m *Mesh) FaceCount() int { return m.faces.Len() }

// EdgeCount returns the number of undirected edges.
func (m *Mesh) EdgeCount() int { return m.halfedges.Len() / 2 }

// VertexIDs returns the handles of all live vertices.
func (m *Mesh) VertexIDs() []VertexID {
	ids := make([]VertexID, 0, m.vertices.Len())
	m.vertices.ForEach(func(h arena.Handle, _ *Vertex) bool {
		ids = append(ids, VertexID{h})
		return true
	})
	return ids
}

// HalfedgeIDs returns the handles of all live halfedges.
func (m *Mesh) HalfedgeIDs() []HalfedgeID {
	ids := make([]HalfedgeID, 0, m.halfedges.Len())
	m.halfedges.ForEach(func(h arena.Handle, _ *Halfedge) bool {
		ids = append(ids, HalfedgeID{h})
		return true
	})
	return ids
}

// FaceIDs returns the handles of all live faces.
func (m *Mesh) FaceIDs() []FaceID {
	ids := make([]FaceID, 0, m.faces.Len())
	m.faces.ForEach(func(h arena.Handle, _ *Face) bool {
		ids = append(ids, FaceID{h})
		return true
	})
	return ids
}

// Vertex returns a copy of the vertex record for id.
func (m *Mesh) Vertex(id VertexID) (Vertex, error) {
	p, ok := m.vertices.Get(id.Handle)
	if !ok {
		return Vertex{}, fmt.Errorf("vertex %s: %w", id, ErrStaleHandle)
	}
	return *p, nil
}

// Halfedge returns a copy of the halfedge record for id.
func (m *Mesh) Halfedge(id HalfedgeID) (Halfedge, error) {
	p, ok := m.halfedges.Get(id.Handle)
	if !ok {
		return Halfedge{}, fmt.Errorf("halfedge %s: %w", id, ErrStaleHandle)
	}
	return *p, nil
}

// Face returns a copy of the face record for id.
func (m *Mesh) Face(id FaceID) (Face, error) {
	p, ok := m.faces.Get(id.Handle)
	if !ok {
		return Face{}, fmt.Errorf("face %s: %w", id, ErrStaleHandle)
	}
	return *p, nil
}

// Internal must-style accessors. A miss here is a bug in this package
// (public entry points validate handles before surgery), so they panic
// rather than thread errors through every rewiring step.

func (m *Mesh) v(id VertexID) *Vertex {
	p, ok := m.vertices.Get(id.Handle)
	if !ok {
		panic(fmt.Sprintf("mesh: dead vertex %s dereferenced", id))
	}
	return p
}

func (m *Mesh) he(id HalfedgeID) *Halfedge {
	p, ok := m.halfedges.Get(id.Handle)
	if !ok {
		panic(fmt.Sprintf("mesh: dead halfedge %s dereferenced", id))
	}
	return p
}

func (m *Mesh) f(id FaceID) *Face {
	p, ok := m.faces.Get(id.Handle)
	if !ok {
		panic(fmt.Sprintf("mesh: dead face %s dereferenced", id))
	}
	return p
}

// dest returns the destination vertex of a halfedge (the origin of its
// twin).
func (m *Mesh) dest(id HalfedgeID) VertexID {
	return m.he(m.he(id).Twin).Origin
}

// insertVertex creates an unconnected vertex with a position entry.
func (m *Mesh) insertVertex(pos v3.Vec) VertexID {
	id := VertexID{m.vertices.Insert(Vertex{})}
	m.positions[id] = pos
	return id
}

// insertHalfedge creates a halfedge with only its origin set.
func (m *Mesh) insertHalfedge(origin VertexID) HalfedgeID {
	return HalfedgeID{m.halfedges.Insert(Halfedge{Origin: origin})}
}

// insertFace creates a face over an existing halfedge 3-cycle, pointing
// the halfedges at the face and the face at the first halfedge.
func (m *Mesh) insertFace(h1, h2, h3 HalfedgeID) FaceID {
	id := FaceID{m.faces.Insert(Face{Halfedge: h1})}
	m.he(h1).Face = id
	m.he(h2).Face = id
	m.he(h3).Face = id
	return id
}

// removeVertex deletes a vertex and its attribute entries.
func (m *Mesh) removeVertex(id VertexID) {
	m.vertices.Remove(id.Handle)
	delete(m.positions, id)
	if m.normals != nil {
		delete(m.normals, id)
	}
}

// --- Attribute store -------------------------------------------------------

// Position returns the position of a vertex.
func (m *Mesh) Position(id VertexID) (v3.Vec, error) {
	if !m.vertices.Contains(id.Handle) {
		return v3.Vec{}, fmt.Errorf("position of %s: %w", id, ErrStaleHandle)
	}
	return m.positions[id], nil
}

// SetPosition moves a vertex. Connectivity is untouched; external spatial
// indices over faces touching this vertex must be refreshed by the caller.
func (m *Mesh) SetPosition(id VertexID, pos v3.Vec) error {
	if !m.vertices.Contains(id.Handle) {
		return fmt.Errorf("set position of %s: %w", id, ErrStaleHandle)
	}
	m.positions[id] = pos
	return nil
}

// VertexNormal returns the stored normal of a vertex. It fails until
// ComputeVertexNormals has been called.
func (m *Mesh) VertexNormal(id VertexID) (v3.Vec, error) {
	if !m.vertices.Contains(id.Handle) {
		return v3.Vec{}, fmt.Errorf("normal of %s: %w", id, ErrStaleHandle)
	}
	if m.normals == nil {
		return v3.Vec{}, fmt.Errorf("normal of %s: vertex normals not computed", id)
	}
	return m.normals[id], nil
}

// HasVertexNormals reports whether ComputeVertexNormals has produced a
// normals map that edits are keeping in step.
func (m *Mesh) HasVertexNormals() bool {
	return m.normals != nil
}

// ComputeVertexNormals accumulates face normals (area-weighted, via the
// unnormalized cross product) onto each corner vertex and normalizes the
// sums. Subsequent splits interpolate new-vertex normals and collapses
// evict removed entries.
func (m *Mesh) ComputeVertexNormals() {
	normals := make(map[VertexID]v3.Vec, m.vertices.Len())

	m.faces.ForEach(func(h arena.Handle, f *Face) bool {
		a, b, c := m.faceCorners(f.Halfedge)
		pa, pb, pc := m.positions[a], m.positions[b], m.positions[c]
		n := pb.Sub(pa).Cross(pc.Sub(pa))
		normals[a] = normals[a].Add(n)
		normals[b] = normals[b].Add(n)
		normals[c] = normals[c].Add(n)
		return true
	})

	for id, n := range normals {
		if n.Length() > 0 {
			normals[id] = n.Normalize()
		}
	}
	m.normals = normals
}

// --- Face geometry ---------------------------------------------------------

// faceCorners returns the three corner vertices of the triangle containing
// h, starting at h's origin.
func (m *Mesh) faceCorners(h HalfedgeID) (VertexID, VertexID, VertexID) {
	e1 := m.he(h)
	e2 := m.he(e1.Next)
	e3 := m.he(e2.Next)
	return e1.Origin, e2.Origin, e3.Origin
}

// FaceVertices returns the three corner vertices of a face in cycle order.
func (m *Mesh) FaceVertices(id FaceID) ([3]VertexID, error) {
	f, ok := m.faces.Get(id.Handle)
	if !ok {
		return [3]VertexID{}, fmt.Errorf("face vertices of %s: %w", id, ErrStaleHandle)
	}
	a, b, c := m.faceCorners(f.Halfedge)
	return [3]VertexID{a, b, c}, nil
}

// FacePositions returns the three corner positions of a face in cycle order.
func (m *Mesh) FacePositions(id FaceID) ([3]v3.Vec, error) {
	vs, err := m.FaceVertices(id)
	if err != nil {
		return [3]v3.Vec{}, err
	}
	return [3]v3.Vec{m.positions[vs[0]], m.positions[vs[1]], m.positions[vs[2]]}, nil
}

// FaceNormal returns the unit normal of a face following its winding.
func (m *Mesh) FaceNormal(id FaceID) (v3.Vec, error) {
	ps, err := m.FacePositions(id)
	if err != nil {
		return v3.Vec{}, err
	}
	n := ps[1].Sub(ps[0]).Cross(ps[2].Sub(ps[0]))
	if n.Length() == 0 {
		return v3.Vec{}, fmt.Errorf("face %s has zero area", id)
	}
	return n.Normalize(), nil
}

// FaceCentroid returns the arithmetic mean of a face's corner positions.
func (m *Mesh) FaceCentroid(id FaceID) (v3.Vec, error) {
	ps, err := m.FacePositions(id)
	if err != nil {
		return v3.Vec{}, err
	}
	return ps[0].Add(ps[1]).Add(ps[2]).DivScalar(3), nil
}

// FaceBounds returns the axis-aligned bounding box of a face.
func (m *Mesh) FaceBounds(id FaceID) (min, max v3.Vec, err error) {
	ps, err := m.FacePositions(id)
	if err != nil {
		return v3.Vec{}, v3.Vec{}, err
	}
	min = ps[0].Min(ps[1]).Min(ps[2])
	max = ps[0].Max(ps[1]).Max(ps[2])
	return min, max, nil
}
