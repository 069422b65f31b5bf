// Package spatial maintains an R-tree over mesh faces for box and
// nearest-neighbor queries. The index is a sidecar: connectivity edits do
// not update it automatically, the caller feeds removal reports and
// touched faces back in.
package spatial

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"
	"github.com/dhconnelly/rtreego"

	"github.com/meshkit/meshgraph/pkg/mesh"
)

// minLength pads degenerate extents so axis-aligned faces still get a
// valid R-tree rectangle.
const minLength = 1e-9

// faceEntry is the Spatial stored in the tree. Delete matches on pointer
// identity, so each face keeps exactly one entry for its lifetime in the
// index.
type faceEntry struct {
	id   mesh.FaceID
	rect rtreego.Rect
}

func (e *faceEntry) Bounds() rtreego.Rect { return e.rect }

// FaceIndex is an R-tree over the faces of one mesh.
type FaceIndex struct {
	m       *mesh.Mesh
	tree    *rtreego.Rtree
	entries map[mesh.FaceID]*faceEntry
}

// NewFaceIndex builds an index over every live face of m.
func NewFaceIndex(m *mesh.Mesh) (*FaceIndex, error) {
	idx := &FaceIndex{
		m:       m,
		tree:    rtreego.NewTree(3, 25, 50),
		entries: make(map[mesh.FaceID]*faceEntry, m.FaceCount()),
	}
	for _, f := range m.FaceIDs() {
		if err := idx.Insert(f); err != nil {
			return nil, err
		}
	}
	return idx, nil
}

// Len returns the number of indexed faces.
func (idx *FaceIndex) Len() int { return idx.tree.Size() }

// Insert adds a face to the index. Inserting a face that is already
// indexed refreshes its rectangle.
func (idx *FaceIndex) Insert(f mesh.FaceID) error {
	if _, ok := idx.entries[f]; ok {
		return idx.Update(f)
	}
	rect, err := idx.faceRect(f)
	if err != nil {
		return err
	}
	e := &faceEntry{id: f, rect: rect}
	idx.entries[f] = e
	idx.tree.Insert(e)
	return nil
}

// Update re-seats a face whose corner positions moved.
func (idx *FaceIndex) Update(f mesh.FaceID) error {
	e, ok := idx.entries[f]
	if !ok {
		return idx.Insert(f)
	}
	rect, err := idx.faceRect(f)
	if err != nil {
		return err
	}
	idx.tree.Delete(e)
	e.rect = rect
	idx.tree.Insert(e)
	return nil
}

// Remove drops a face from the index. Removing an unindexed face is a
// no-op.
func (idx *FaceIndex) Remove(f mesh.FaceID) {
	e, ok := idx.entries[f]
	if !ok {
		return
	}
	idx.tree.Delete(e)
	delete(idx.entries, f)
}

// ApplyRemovals drops every face named in a report, keeping the index in
// step after a collapse or cleanup.
func (idx *FaceIndex) ApplyRemovals(rep mesh.RemovalReport) {
	for _, f := range rep.Faces {
		idx.Remove(f)
	}
}

// SearchBox returns the faces whose bounding boxes intersect the given
// axis-aligned box.
func (idx *FaceIndex) SearchBox(min, max v3.Vec) ([]mesh.FaceID, error) {
	rect, err := boxRect(min, max)
	if err != nil {
		return nil, err
	}
	hits := idx.tree.SearchIntersect(rect)
	out := make([]mesh.FaceID, len(hits))
	for i, h := range hits {
		out[i] = h.(*faceEntry).id
	}
	return out, nil
}

// Nearest returns the face whose bounding box is closest to p, or a zero
// id when the index is empty.
func (idx *FaceIndex) Nearest(p v3.Vec) mesh.FaceID {
	hit := idx.tree.NearestNeighbor(rtreego.Point{p.X, p.Y, p.Z})
	if hit == nil {
		return mesh.FaceID{}
	}
	return hit.(*faceEntry).id
}

func (idx *FaceIndex) faceRect(f mesh.FaceID) (rtreego.Rect, error) {
	min, max, err := idx.m.FaceBounds(f)
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("index face %s: %w", f, err)
	}
	return boxRect(min, max)
}

func boxRect(min, max v3.Vec) (rtreego.Rect, error) {
	lengths := []float64{
		clampLength(max.X - min.X),
		clampLength(max.Y - min.Y),
		clampLength(max.Z - min.Z),
	}
	rect, err := rtreego.NewRect(rtreego.Point{min.X, min.Y, min.Z}, lengths)
	if err != nil {
		return rtreego.Rect{}, fmt.Errorf("bounding rect: %w", err)
	}
	return rect, nil
}

func clampLength(l float64) float64 {
	if l < minLength {
		return minLength
	}
	return l
}
