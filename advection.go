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

import "github.com/ctessum/sparse"

// ThicknessAdvection calculates the horizontal-advection contribution to
// the time tendency of layer thickness: the divergence of the
// thickness flux across each cell's edges.
type ThicknessAdvection struct {
	enabled bool
}

// NewThicknessAdvection creates a thickness advection term. The disable
// flag comes from configuration; when it is set, every evaluation is a
// successful no-op that leaves the tendency accumulator untouched.
// The flag is fixed for the lifetime of the term.
func NewThicknessAdvection(disable bool) *ThicknessAdvection {
	return &ThicknessAdvection{enabled: !disable}
}

// Enabled reports whether this term contributes to the tendency.
func (adv *ThicknessAdvection) Enabled() bool { return adv.enabled }

// AddFluxDivergence adds the horizontal thickness-flux divergence to the
// tendency accumulator tend [nVertLevels, nCells; m/s], in place. Prior
// contents of tend are preserved; nothing is zeroed or overwritten.
//
// normalVelocity and thicknessEdge must be dimensioned
// [nVertLevels, nEdges]; the caller is responsible for their shapes and
// for the internal consistency of m (see Mesh.Check). Cells are visited
// in index order, then local edges, then levels, so results are
// bit-reproducible for identical inputs.
func (adv *ThicknessAdvection) AddFluxDivergence(m *Mesh, normalVelocity, thicknessEdge, tend *sparse.DenseArray) error {
	if !adv.enabled {
		return nil
	}
	for c := 0; c < m.NCells; c++ {
		adv.cellFluxDivergence(m, normalVelocity, thicknessEdge, tend, c)
	}
	return nil
}

// cellFluxDivergence accumulates the flux divergence for a single cell.
// It only writes to cell c's row of tend.
func (adv *ThicknessAdvection) cellFluxDivergence(m *Mesh, normalVelocity, thicknessEdge, tend *sparse.DenseArray, c int) {
	invArea := 1 / m.AreaCell[c]
	for i := m.CellEdgeOffset[c]; i < m.CellEdgeOffset[c+1]; i++ {
		e := m.CellEdges[i]
		s := m.CellEdgeSign[i]
		// Levels at and below the local seafloor carry no flux.
		for k := 0; k < m.MaxLevelEdge[e]; k++ {
			flux := normalVelocity.Elements[k*m.NEdges+e] * m.DvEdge[e] *
				thicknessEdge.Elements[k*m.NEdges+e]
			tend.Elements[k*m.NCells+c] += s * flux * invArea
		}
	}
}

// Tendency returns the per-cell form of this term for use with
// Tendencies. The gate is consulted on every call, so a disabled term can
// be left wired into the run sequence at no cost beyond the check.
func (adv *ThicknessAdvection) Tendency() TendencyTerm {
	return func(d *Flume, c int) {
		if !adv.enabled {
			return
		}
		adv.cellFluxDivergence(d.Mesh, d.State.NormalVelocity, d.State.ThicknessEdge,
			d.State.ThicknessTend, c)
	}
}
