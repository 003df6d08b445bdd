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
	"math"

	"github.com/ctessum/geom"
)

// HexMesh creates a doubly periodic planar mesh of nx × ny regular
// hexagonal cells with the given center-to-center spacing [m] and
// nVertLevels vertical layers, all fully active. Every edge is interior
// and shared by exactly two cells with opposite orientation signs, which
// makes the mesh closed: the area-weighted tendency contribution of any
// conservative flux term sums to zero over it.
//
// Cells are laid out on a skewed periodic lattice: cell (i, j) has index
// j*nx + i and neighbors at (i±1, j), (i, j±1) and (i±1, j∓1), wrapping
// in both directions. Each cell owns the three edges toward its (i+1, j),
// (i, j+1) and (i+1, j-1) neighbors, so edge indices are 3*cell + 0..2.
func HexMesh(nx, ny, nVertLevels int, spacing float64) (*Mesh, error) {
	if nx < 2 || ny < 2 {
		return nil, fmt.Errorf("flume: hex mesh must be at least 2×2; got %d×%d", nx, ny)
	}
	if nVertLevels < 1 {
		return nil, fmt.Errorf("flume: hex mesh must have at least 1 vertical level; got %d", nVertLevels)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("flume: hex mesh spacing must be positive; got %g", spacing)
	}

	nCells := nx * ny
	m := &Mesh{
		NCells:         nCells,
		NEdges:         3 * nCells,
		NVertLevels:    nVertLevels,
		AreaCell:       make([]float64, nCells),
		DvEdge:         make([]float64, 3*nCells),
		CellEdgeOffset: make([]int, nCells+1),
		CellEdges:      make([]int, 0, 6*nCells),
		CellEdgeSign:   make([]float64, 0, 6*nCells),
		MaxLevelEdge:   make([]int, 3*nCells),
		CellOutline:    make([]geom.Polygon, nCells),
	}

	// For a triangular lattice with spacing a, the dual (Voronoi) cells
	// are regular hexagons whose side length and circumradius are both
	// a/√3.
	side := spacing / math.Sqrt(3)
	for e := range m.DvEdge {
		m.DvEdge[e] = side
		m.MaxLevelEdge[e] = nVertLevels
	}

	cell := func(i, j int) int {
		i = ((i % nx) + nx) % nx
		j = ((j % ny) + ny) % ny
		return j*nx + i
	}

	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			c := cell(i, j)

			// Owned edges first (normal pointing out of this cell),
			// then the neighbors' edges pointing in.
			m.CellEdges = append(m.CellEdges,
				3*c+0,              // toward (i+1, j)
				3*c+1,              // toward (i, j+1)
				3*c+2,              // toward (i+1, j-1)
				3*cell(i-1, j)+0,   // from (i-1, j)
				3*cell(i, j-1)+1,   // from (i, j-1)
				3*cell(i-1, j+1)+2, // from (i-1, j+1)
			)
			m.CellEdgeSign = append(m.CellEdgeSign, -1, -1, -1, 1, 1, 1)
			m.CellEdgeOffset[c+1] = m.CellEdgeOffset[c] + 6

			xc := spacing * (float64(i) + float64(j)/2)
			yc := spacing * float64(j) * math.Sqrt(3) / 2
			ring := make([]geom.Point, 7)
			for v := 0; v < 6; v++ {
				θ := math.Pi / 6 * float64(2*v+1)
				ring[v] = geom.Point{
					X: xc + side*math.Cos(θ),
					Y: yc + side*math.Sin(θ),
				}
			}
			ring[6] = ring[0]
			m.CellOutline[c] = geom.Polygon{ring}
			m.AreaCell[c] = m.CellOutline[c].Area()
		}
	}

	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}
