package mesh

import (
	"errors"
	"fmt"
	"math"
)

// edgeLength returns the length of h's undirected edge.
func (m *Mesh) edgeLength(h HalfedgeID) float64 {
	return m.positions[m.dest(h)].Sub(m.positions[m.he(h).Origin]).Length()
}

// SplitEdgesLongerThan splits edges at their midpoint until none is longer
// than maxLength, longest first. Edges created by a split join the
// worklist when they still exceed the limit, so the result does not depend
// on the initial edge order. Returns the number of splits performed.
func (m *Mesh) SplitEdgesLongerThan(maxLength float64) (int, error) {
	if maxLength <= 0 {
		return 0, fmt.Errorf("split edges longer than %v: limit must be positive", maxLength)
	}

	// One worklist entry per undirected edge.
	work := make(map[HalfedgeID]float64)
	for _, h := range m.HalfedgeIDs() {
		if _, ok := work[m.he(h).Twin]; ok {
			continue
		}
		if l := m.edgeLength(h); l > maxLength {
			work[h] = l
		}
	}

	splits := 0
	for len(work) > 0 {
		var longest HalfedgeID
		max := 0.0
		for h, l := range work {
			if l > max {
				longest, max = h, l
			}
		}
		delete(work, longest)

		w, err := m.SplitEdge(longest)
		if err != nil {
			if errors.Is(err, ErrNotATriangle) {
				continue // no incident face to re-triangulate
			}
			return splits, fmt.Errorf("split edges longer than %v: %w", maxLength, err)
		}
		splits++

		// The split halved the edge and added spokes around the new
		// vertex; requeue whichever of those still exceeds the limit.
		ring, err := m.OutgoingHalfedges(w)
		if err != nil {
			return splits, fmt.Errorf("split edges longer than %v: %w", maxLength, err)
		}
		for _, o := range ring {
			if _, ok := work[o]; ok {
				continue
			}
			if _, ok := work[m.he(o).Twin]; ok {
				continue
			}
			if l := m.edgeLength(o); l > maxLength {
				work[o] = l
			}
		}
	}
	return splits, nil
}

// CollapseEdgesShorterThan contracts edges until none is shorter than
// minLength, shortest first. Contractions the link condition rejects are
// skipped rather than reported, so pinched regions are left as they are.
// Returns the combined removal report and the number of collapses.
func (m *Mesh) CollapseEdgesShorterThan(minLength float64) (RemovalReport, int, error) {
	var rep RemovalReport
	if minLength <= 0 {
		return rep, 0, fmt.Errorf("collapse edges shorter than %v: limit must be positive", minLength)
	}

	work := make(map[HalfedgeID]float64)
	for _, h := range m.HalfedgeIDs() {
		if _, ok := work[m.he(h).Twin]; ok {
			continue
		}
		if l := m.edgeLength(h); l < minLength {
			work[h] = l
		}
	}

	collapses := 0
	for len(work) > 0 {
		var shortest HalfedgeID
		min := math.MaxFloat64
		for h, l := range work {
			if l < min {
				shortest, min = h, l
			}
		}
		delete(work, shortest)
		if !m.halfedges.Contains(shortest.Handle) {
			continue // removed by an earlier collapse's cleanup
		}

		u := m.he(shortest).Origin
		one, err := m.CollapseEdge(shortest)
		if errors.Is(err, ErrWouldCreateNonManifoldEdge) {
			continue
		}
		if err != nil {
			return rep, collapses, fmt.Errorf("collapse edges shorter than %v: %w", minLength, err)
		}
		collapses++
		rep.merge(&one)
		for _, gone := range one.Halfedges {
			delete(work, gone)
		}

		// Every edge whose length the contraction changed touches the
		// survivor; rescan its ring.
		if !m.vertices.Contains(u.Handle) {
			continue // the survivor itself fell to the cleanup pass
		}
		ring, err := m.OutgoingHalfedges(u)
		if err != nil {
			return rep, collapses, fmt.Errorf("collapse edges shorter than %v: %w", minLength, err)
		}
		for _, o := range ring {
			twin := m.he(o).Twin
			if l := m.edgeLength(o); l < minLength {
				if _, ok := work[twin]; ok {
					work[twin] = l
				} else {
					work[o] = l
				}
			} else {
				delete(work, o)
				delete(work, twin)
			}
		}
	}
	return rep, collapses, nil
}
