/*
Copyright © 2018 the Flume authors.
This file is part of Flume.

Flume is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Flume is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Flume.  If not, see <http://www.gnu.org/licenses/>.
*/

package flume

import (
	"fmt"

	"github.com/ctessum/geom"
)

// Mesh describes an unstructured polygonal mesh with edge-based
// connectivity, plus the vertical extent of the water column at each
// edge. All arrays are read-only once the mesh has been built.
//
// The per-cell edge lists are stored flattened: the edges bounding cell c
// and their orientation signs are
// CellEdges[CellEdgeOffset[c]:CellEdgeOffset[c+1]] and the corresponding
// entries of CellEdgeSign. A sign of -1 means the edge's normal vector
// points out of the cell, and +1 means it points into the cell, so for an
// interior edge the two bounding cells always carry opposite signs and
// their flux contributions cancel exactly.
type Mesh struct {
	NCells      int // number of horizontal cells
	NEdges      int // number of edges
	NVertLevels int // maximum number of vertical layers

	// AreaCell is the horizontal area of each cell [nCells; m²].
	AreaCell []float64

	// DvEdge is the length of each edge, used as the width that flux
	// crosses [nEdges; m].
	DvEdge []float64

	// CellEdgeOffset [nCells+1] bounds the flattened per-cell entries
	// of CellEdges and CellEdgeSign.
	CellEdgeOffset []int
	// CellEdges [CellEdgeOffset[nCells]] holds edge indices.
	CellEdges []int
	// CellEdgeSign [CellEdgeOffset[nCells]] holds orientation signs
	// (±1) matching CellEdges.
	CellEdgeSign []float64

	// MaxLevelEdge is the number of vertically active layers at each
	// edge [nEdges], accounting for bottom topography and partial
	// cells. Layers k >= MaxLevelEdge[e] carry no flux across edge e.
	MaxLevelEdge []int

	// CellOutline optionally holds the horizontal outline of each cell
	// [nCells]. It is informational; the tendency calculation only uses
	// AreaCell and DvEdge.
	CellOutline []geom.Polygon
}

// EdgesOfCell returns the indices of the edges bounding cell c.
func (m *Mesh) EdgesOfCell(c int) []int {
	return m.CellEdges[m.CellEdgeOffset[c]:m.CellEdgeOffset[c+1]]
}

// EdgeSignsOfCell returns the orientation signs matching EdgesOfCell(c).
func (m *Mesh) EdgeSignsOfCell(c int) []float64 {
	return m.CellEdgeSign[m.CellEdgeOffset[c]:m.CellEdgeOffset[c+1]]
}

// CellGeometry returns the outline of cell c, or nil if the mesh does not
// carry cell outlines.
func (m *Mesh) CellGeometry(c int) geom.Polygonal {
	if m.CellOutline == nil {
		return nil
	}
	return m.CellOutline[c]
}

// MeshError describes an inconsistency in mesh geometry or connectivity.
// It is distinct from other error types so that callers can tell a
// malformed mesh apart from I/O problems.
type MeshError struct {
	msg string
}

func (e *MeshError) Error() string { return e.msg }

func meshErrorf(format string, a ...interface{}) *MeshError {
	return &MeshError{msg: "flume: " + fmt.Sprintf(format, a...)}
}

// Check validates the internal consistency of the mesh. It is meant to be
// run once when a mesh is built or read; the tendency calculation itself
// performs no checking. All checks run before any simulation writes
// happen, so a failure here never leaves partially updated state behind.
func (m *Mesh) Check() error {
	if m.NCells <= 0 || m.NEdges <= 0 || m.NVertLevels <= 0 {
		return meshErrorf("mesh extents must be positive; got %d cells, %d edges, %d levels",
			m.NCells, m.NEdges, m.NVertLevels)
	}
	if len(m.AreaCell) != m.NCells {
		return meshErrorf("areaCell has %d entries for %d cells", len(m.AreaCell), m.NCells)
	}
	if len(m.DvEdge) != m.NEdges {
		return meshErrorf("dvEdge has %d entries for %d edges", len(m.DvEdge), m.NEdges)
	}
	if len(m.MaxLevelEdge) != m.NEdges {
		return meshErrorf("maxLevelEdge has %d entries for %d edges", len(m.MaxLevelEdge), m.NEdges)
	}
	if len(m.CellEdgeOffset) != m.NCells+1 {
		return meshErrorf("cellEdgeOffset has %d entries for %d cells", len(m.CellEdgeOffset), m.NCells)
	}
	if m.CellEdgeOffset[0] != 0 {
		return meshErrorf("cellEdgeOffset must start at 0; got %d", m.CellEdgeOffset[0])
	}
	for c := 0; c < m.NCells; c++ {
		if m.CellEdgeOffset[c+1] < m.CellEdgeOffset[c] {
			return meshErrorf("cellEdgeOffset decreases at cell %d", c)
		}
		if m.AreaCell[c] <= 0 {
			return meshErrorf("cell %d has non-positive area %g", c, m.AreaCell[c])
		}
	}
	n := m.CellEdgeOffset[m.NCells]
	if len(m.CellEdges) != n || len(m.CellEdgeSign) != n {
		return meshErrorf("cell-edge adjacency has %d edges and %d signs; offsets imply %d",
			len(m.CellEdges), len(m.CellEdgeSign), n)
	}
	for i, e := range m.CellEdges {
		if e < 0 || e >= m.NEdges {
			return meshErrorf("cell-edge entry %d references edge %d of %d", i, e, m.NEdges)
		}
		if s := m.CellEdgeSign[i]; s != 1 && s != -1 {
			return meshErrorf("cell-edge entry %d has sign %g; must be ±1", i, s)
		}
	}
	for e := 0; e < m.NEdges; e++ {
		if m.DvEdge[e] <= 0 {
			return meshErrorf("edge %d has non-positive length %g", e, m.DvEdge[e])
		}
		if m.MaxLevelEdge[e] < 0 || m.MaxLevelEdge[e] > m.NVertLevels {
			return meshErrorf("edge %d has %d active levels; must be within [0, %d]",
				e, m.MaxLevelEdge[e], m.NVertLevels)
		}
	}
	if m.CellOutline != nil && len(m.CellOutline) != m.NCells {
		return meshErrorf("cell outlines have %d entries for %d cells", len(m.CellOutline), m.NCells)
	}
	// Interior edges must appear exactly twice with canceling signs;
	// boundary edges appear once.
	signSum := make([]float64, m.NEdges)
	count := make([]int, m.NEdges)
	for i, e := range m.CellEdges {
		signSum[e] += m.CellEdgeSign[i]
		count[e]++
	}
	for e := 0; e < m.NEdges; e++ {
		switch count[e] {
		case 0, 1:
		case 2:
			if signSum[e] != 0 {
				return meshErrorf("interior edge %d has non-canceling signs; "+
					"mass would not be conserved across it", e)
			}
		default:
			return meshErrorf("edge %d is claimed by %d cells", e, count[e])
		}
	}
	return nil
}
