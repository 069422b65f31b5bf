package mesh

import "errors"

// Sentinel errors returned by mesh operations. All are matchable with
// errors.Is; callers should treat ErrStaleHandle as recoverable (discard
// the handle) and the rest as terminal for the failing call. Mutating
// operators never leave a half-applied edit behind a returned error.
var (
	// ErrStaleHandle reports a lookup against a removed or never-issued
	// handle.
	ErrStaleHandle = errors.New("stale handle")

	// ErrNonManifoldEdge reports input (or a live graph) in which a
	// directed edge is shared by more than one face.
	ErrNonManifoldEdge = errors.New("non-manifold edge")

	// ErrNonManifoldVertex reports a vertex whose rotation walk does not
	// close within the configured degree bound.
	ErrNonManifoldVertex = errors.New("non-manifold vertex")

	// ErrNotATriangle reports a split on an edge whose incident face is
	// not a 3-cycle.
	ErrNotATriangle = errors.New("face is not a triangle")

	// ErrWouldCreateNonManifoldEdge reports a rejected collapse whose
	// result would contain a duplicate edge.
	ErrWouldCreateNonManifoldEdge = errors.New("collapse would create non-manifold edge")
)
