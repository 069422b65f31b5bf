package mesh

import (
	"github.com/meshkit/meshgraph/pkg/arena"
)

// VertexID identifies a vertex. The zero value means "no vertex".
type VertexID struct{ arena.Handle }

// HalfedgeID identifies a halfedge. The zero value means "no halfedge".
type HalfedgeID struct{ arena.Handle }

// FaceID identifies a face. The zero value means "no face"; a halfedge
// whose Face is the zero FaceID is a boundary halfedge.
type FaceID struct{ arena.Handle }

// Vertex is a corner point of the mesh. It stores one outgoing halfedge
// (a halfedge whose origin is this vertex); the reference is the zero
// HalfedgeID if the vertex is isolated. Position lives in the mesh's
// attribute store, keyed by VertexID, not on the vertex itself.
type Vertex struct {
	Outgoing HalfedgeID
}

// Halfedge is one directed half of an undirected mesh edge.
//
// Every halfedge has a twin (the oppositely directed half of the same
// edge). Next points to the following halfedge around the incident face,
// or — for a boundary halfedge — the following halfedge around the
// boundary loop of the hole.
type Halfedge struct {
	Origin VertexID
	Twin   HalfedgeID
	Next   HalfedgeID
	Face   FaceID // zero for a boundary halfedge
}

// IsBoundary reports whether the halfedge has no incident face.
func (h Halfedge) IsBoundary() bool {
	return h.Face.IsNil()
}

// Face is a triangle. It stores one halfedge of its boundary cycle; the
// other two are reached by following Next.
type Face struct {
	Halfedge HalfedgeID
}

// DefaultDegreeBound caps the rotation walk around a vertex. A manifold
// vertex closes its walk in exactly its degree steps; exceeding the bound
// means the graph is corrupt (or genuinely outlandish — raise it via
// Options for meshes with extreme fans).
const DefaultDegreeBound = 256

// DefaultDegenerateEpsilon is the distance below which two corner
// positions of one face count as coincident during degenerate-face
// checks.
const DefaultDegenerateEpsilon = 1e-12

// Options are the construction-time policy knobs of a mesh. The zero value
// is not useful; start from DefaultOptions.
type Options struct {
	// WeldTolerance is the distance within which construction merges
	// vertex positions into a single vertex. Zero means exact equality.
	WeldTolerance float64

	// DegreeBound guards vertex rotation walks against corrupted
	// connectivity.
	DegreeBound int

	// DegenerateEpsilon is the corner-coincidence distance for treating
	// a face edge as zero-length.
	DegenerateEpsilon float64
}

// DefaultOptions returns the options used when callers have no opinion:
// exact-equality welding and the package default bounds.
func DefaultOptions() Options {
	return Options{
		WeldTolerance:     0,
		DegreeBound:       DefaultDegreeBound,
		DegenerateEpsilon: DefaultDegenerateEpsilon,
	}
}

func (o Options) withDefaults() Options {
	if o.DegreeBound <= 0 {
		o.DegreeBound = DefaultDegreeBound
	}
	if o.DegenerateEpsilon <= 0 {
		o.DegenerateEpsilon = DefaultDegenerateEpsilon
	}
	return o
}

// RemovalReport lists every handle an edit operator removed. External
// collaborators (attribute maps, spatial indices, selection sets) use it
// to evict their own entries for those handles.
type RemovalReport struct {
	Vertices  []VertexID
	Halfedges []HalfedgeID
	Faces     []FaceID
}

// Empty reports whether the report contains no removals.
func (r *RemovalReport) Empty() bool {
	return len(r.Vertices) == 0 && len(r.Halfedges) == 0 && len(r.Faces) == 0
}

func (r *RemovalReport) merge(other *RemovalReport) {
	r.Vertices = append(r.Vertices, other.Vertices...)
	r.Halfedges = append(r.Halfedges, other.Halfedges...)
	r.Faces = append(r.Faces, other.Faces...)
}
