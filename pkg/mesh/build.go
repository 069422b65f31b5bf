package mesh

import (
	"fmt"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Triangle is a corner triple in counter-clockwise winding (normal by the
// right-hand rule).
type Triangle [3]v3.Vec

// directedEdge keys the per-direction edge map used during twin pairing.
type directedEdge struct {
	from, to VertexID
}

// FromTriangles builds a mesh from a triangle soup. Corners within
// Options.WeldTolerance of each other are welded to a single vertex
// (exact comparison when the tolerance is zero). Triangles that weld to
// fewer than three distinct vertices are dropped. The build fails with
// ErrNonManifoldEdge if more than two triangles share an undirected edge
// or two triangles traverse an edge in the same direction.
func FromTriangles(tris []Triangle, opts Options) (*Mesh, error) {
	opts = opts.withDefaults()
	m := New(opts)

	weld := newWelder(m, opts.WeldTolerance)
	corners := make([]VertexID, 0, 3*len(tris))
	for _, t := range tris {
		corners = append(corners, weld.vertex(t[0]), weld.vertex(t[1]), weld.vertex(t[2]))
	}

	idx := make([][3]int, len(tris))
	lookup := make(map[VertexID]int, m.VertexCount())
	order := make([]VertexID, 0, m.VertexCount())
	for i := range tris {
		for c := 0; c < 3; c++ {
			id := corners[3*i+c]
			j, ok := lookup[id]
			if !ok {
				j = len(order)
				lookup[id] = j
				order = append(order, id)
			}
			idx[i][c] = j
		}
	}

	if err := m.addFaces(order, idx); err != nil {
		return nil, err
	}
	if _, err := m.RemoveDegenerateFaces(); err != nil {
		return nil, err
	}
	return m, nil
}

// FromIndexedTriangles builds a mesh from shared vertex positions and
// per-face corner index triples. Indices must be in range; degenerate
// triples (repeated indices) are dropped. Positions are taken as-is, no
// welding is applied.
func FromIndexedTriangles(positions []v3.Vec, faces [][3]int, opts Options) (*Mesh, error) {
	opts = opts.withDefaults()
	m := New(opts)

	order := make([]VertexID, len(positions))
	for i, p := range positions {
		order[i] = m.insertVertex(p)
	}
	for _, f := range faces {
		for _, c := range f {
			if c < 0 || c >= len(positions) {
				return nil, fmt.Errorf("face corner index %d out of range [0,%d)", c, len(positions))
			}
		}
	}

	if err := m.addFaces(order, faces); err != nil {
		return nil, err
	}
	if _, err := m.RemoveDegenerateFaces(); err != nil {
		return nil, err
	}
	return m, nil
}

// addFaces creates the interior halfedges and faces for the given index
// triples, then materializes boundary twins and threads boundary loops.
// order maps indices to already-inserted vertices.
func (m *Mesh) addFaces(order []VertexID, faces [][3]int) error {
	byEdge := make(map[directedEdge]HalfedgeID, 3*len(faces))

	for _, f := range faces {
		a, b, c := order[f[0]], order[f[1]], order[f[2]]
		if a == b || b == c || c == a {
			continue
		}
		for _, e := range [3]directedEdge{{a, b}, {b, c}, {c, a}} {
			if _, dup := byEdge[e]; dup {
				return fmt.Errorf("edge %s->%s traversed twice in the same direction: %w",
					e.from, e.to, ErrNonManifoldEdge)
			}
		}

		h1 := m.insertHalfedge(a)
		h2 := m.insertHalfedge(b)
		h3 := m.insertHalfedge(c)
		m.he(h1).Next = h2
		m.he(h2).Next = h3
		m.he(h3).Next = h1
		m.insertFace(h1, h2, h3)

		byEdge[directedEdge{a, b}] = h1
		byEdge[directedEdge{b, c}] = h2
		byEdge[directedEdge{c, a}] = h3

		m.v(a).Outgoing = h1
		m.v(b).Outgoing = h2
		m.v(c).Outgoing = h3
	}

	// Twin pairing. Unpaired directed edges get a boundary twin with no
	// face; its Next is threaded afterwards.
	var boundary []HalfedgeID
	for e, h := range byEdge {
		if !m.he(h).Twin.IsNil() {
			continue
		}
		if t, ok := byEdge[directedEdge{e.to, e.from}]; ok {
			m.he(h).Twin = t
			m.he(t).Twin = h
			continue
		}
		b := m.insertHalfedge(e.to)
		m.he(h).Twin = b
		m.he(b).Twin = h
		boundary = append(boundary, b)
	}

	// Boundary Next: from a boundary halfedge ending at u, rotate clockwise
	// around u through interior faces until the next boundary halfedge out
	// of u is found. A manifold vertex has exactly one boundary gap, so the
	// walk terminates well inside the degree bound.
	for _, b := range boundary {
		e := m.he(b).Twin
		steps := 0
		for !m.he(e).Face.IsNil() {
			e = m.he(m.prevInFace(e)).Twin
			steps++
			if steps > m.opts.DegreeBound {
				return fmt.Errorf("vertex %s exceeds degree bound %d while threading boundary: %w",
					m.he(e).Origin, m.opts.DegreeBound, ErrNonManifoldVertex)
			}
		}
		m.he(b).Next = e
	}

	return nil
}

// prevInFace returns the halfedge preceding h in its 3-cycle.
func (m *Mesh) prevInFace(h HalfedgeID) HalfedgeID {
	return m.he(m.he(h).Next).Next
}

// welder deduplicates soup corners into mesh vertices. With a zero
// tolerance it keys on exact positions; otherwise it buckets positions on
// a grid of the tolerance width and scans the 27 surrounding cells, which
// finds every vertex within the tolerance radius.
type welder struct {
	m    *Mesh
	tol  float64
	byPt map[v3.Vec]VertexID
	grid map[[3]int64][]VertexID
}

func newWelder(m *Mesh, tol float64) *welder {
	w := &welder{m: m, tol: tol}
	if tol == 0 {
		w.byPt = make(map[v3.Vec]VertexID)
	} else {
		w.grid = make(map[[3]int64][]VertexID)
	}
	return w
}

func (w *welder) vertex(p v3.Vec) VertexID {
	if w.tol == 0 {
		if id, ok := w.byPt[p]; ok {
			return id
		}
		id := w.m.insertVertex(p)
		w.byPt[p] = id
		return id
	}

	cell := w.cellOf(p)
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for dz := int64(-1); dz <= 1; dz++ {
				key := [3]int64{cell[0] + dx, cell[1] + dy, cell[2] + dz}
				for _, id := range w.grid[key] {
					if w.m.positions[id].Sub(p).Length() <= w.tol {
						return id
					}
				}
			}
		}
	}
	id := w.m.insertVertex(p)
	w.grid[cell] = append(w.grid[cell], id)
	return id
}

func (w *welder) cellOf(p v3.Vec) [3]int64 {
	return [3]int64{
		int64(math.Floor(p.X / w.tol)),
		int64(math.Floor(p.Y / w.tol)),
		int64(math.Floor(p.Z / w.tol)),
	}
}
