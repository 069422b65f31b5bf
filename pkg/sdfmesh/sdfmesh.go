// Package sdfmesh bridges signed distance fields into connectivity
// meshes: an sdf.SDF3 is tessellated with marching cubes and the
// resulting soup is welded into a mesh.Mesh.
package sdfmesh

import (
	"fmt"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"

	"github.com/meshkit/meshgraph/pkg/mesh"
)

// defaultWeldScale sizes the weld tolerance relative to the marching
// cubes cell width. Soup corners from adjacent cells land within float
// rounding of each other, so a small fraction of a cell is plenty.
const defaultWeldScale = 1e-6

// FromSDF3 tessellates s with a uniform marching cubes grid of the given
// resolution (cells across the longest bounding box axis) and welds the
// triangle soup into a connectivity mesh. A zero WeldTolerance in opts is
// replaced with one scaled to the cell width; set it explicitly to
// override.
func FromSDF3(s sdf.SDF3, cells int, opts mesh.Options) (*mesh.Mesh, error) {
	if cells <= 0 {
		return nil, fmt.Errorf("sdfmesh: cells = %d, want > 0", cells)
	}

	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)
	if len(triangles) == 0 {
		return nil, fmt.Errorf("sdfmesh: marching cubes produced no triangles")
	}

	if opts.WeldTolerance == 0 {
		bb := s.BoundingBox()
		size := bb.Max.Sub(bb.Min)
		cell := size.MaxComponent() / float64(cells)
		opts.WeldTolerance = cell * defaultWeldScale
	}

	soup := make([]mesh.Triangle, len(triangles))
	for i, t := range triangles {
		soup[i] = mesh.Triangle{t[0], t[1], t[2]}
	}

	m, err := mesh.FromTriangles(soup, opts)
	if err != nil {
		return nil, fmt.Errorf("sdfmesh: %w", err)
	}
	return m, nil
}
