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

// Package flume is a finite-volume core for layered ocean models on
// unstructured, edge-based polygonal meshes. It computes the
// horizontal-advection contribution to the time tendency of layer
// thickness: for every cell and vertical level, the net mass flux
// crossing the cell boundary divided by cell area, accumulated into a
// caller-owned tendency array.
package flume

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// Version gives the version number.
const Version = "0.1.0"

// Flume holds the current state of the model.
type Flume struct {
	// InitFuncs are functions to be called in the given order
	// at the beginning of the simulation.
	InitFuncs []DomainManipulator

	// RunFuncs are functions to be called in the given order repeatedly
	// until "Done" is true.
	RunFuncs []DomainManipulator

	// CleanupFuncs are functions to be run in the given order after the
	// simulation has completed.
	CleanupFuncs []DomainManipulator

	// Mesh describes the horizontal and vertical discretization of the
	// model domain. It is set during initialization and treated as
	// read-only afterward.
	Mesh *Mesh

	// State holds the per-evaluation field state: the velocity and
	// edge-thickness inputs and the thickness-tendency accumulator.
	State *State

	// Done specifies whether the simulation is finished.
	Done bool

	// evaluations counts completed tendency-evaluation passes.
	evaluations int
}

// DomainManipulator is a class of functions that operate on the entire
// model domain.
type DomainManipulator func(d *Flume) error

// TendencyTerm is a class of functions that add one process term's
// contribution for cell c into the tendency accumulator. Implementations
// must only write to cell c's row of the accumulator, so that terms can
// be evaluated for different cells concurrently.
type TendencyTerm func(d *Flume, c int)

// Init initializes the model with the functions specified in the
// InitFuncs field.
func (d *Flume) Init() error {
	for _, f := range d.InitFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Run carries out the simulation by running the functions specified in
// the RunFuncs field repeatedly until the Done flag has been set to true.
func (d *Flume) Run() error {
	for !d.Done {
		for _, f := range d.RunFuncs {
			if err := f(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Cleanup finishes the simulation by running the functions specified in
// the CleanupFuncs field.
func (d *Flume) Cleanup() error {
	for _, f := range d.CleanupFuncs {
		if err := f(d); err != nil {
			return err
		}
	}
	return nil
}

// Evaluations returns the number of tendency-evaluation passes that have
// been completed so far.
func (d *Flume) Evaluations() int {
	return d.evaluations
}

// State holds the field state for one tendency evaluation. The velocity
// and edge-thickness arrays are inputs; ThicknessTend is an in/out
// accumulator that may already hold contributions from other process
// terms. All arrays are dimensioned level-major.
type State struct {
	// NormalVelocity is the velocity component normal to each edge
	// [nVertLevels, nEdges; m/s], positive in the direction of the
	// mesh's edge-normal convention.
	NormalVelocity *sparse.DenseArray

	// ThicknessEdge is the layer thickness interpolated to each edge
	// [nVertLevels, nEdges; m]. The interpolation itself happens
	// upstream of this package.
	ThicknessEdge *sparse.DenseArray

	// ThicknessTend is the layer thickness tendency accumulator
	// [nVertLevels, nCells; m/s]. Process terms only ever add to it;
	// zeroing it between evaluations is the caller's responsibility
	// (see ResetTendency).
	ThicknessTend *sparse.DenseArray
}

// NewState allocates zeroed field arrays shaped to match m.
func NewState(m *Mesh) *State {
	return &State{
		NormalVelocity: sparse.ZerosDense(m.NVertLevels, m.NEdges),
		ThicknessEdge:  sparse.ZerosDense(m.NVertLevels, m.NEdges),
		ThicknessTend:  sparse.ZerosDense(m.NVertLevels, m.NCells),
	}
}

// checkShapes verifies that the state arrays match the mesh extents.
func (s *State) checkShapes(m *Mesh) error {
	for _, a := range []struct {
		name string
		arr  *sparse.DenseArray
		n    int
	}{
		{"NormalVelocity", s.NormalVelocity, m.NEdges},
		{"ThicknessEdge", s.ThicknessEdge, m.NEdges},
		{"ThicknessTend", s.ThicknessTend, m.NCells},
	} {
		if a.arr == nil {
			return fmt.Errorf("flume: state array %s is not allocated", a.name)
		}
		if len(a.arr.Shape) != 2 || a.arr.Shape[0] != m.NVertLevels || a.arr.Shape[1] != a.n {
			return fmt.Errorf("flume: state array %s has shape %v; expected [%d %d]",
				a.name, a.arr.Shape, m.NVertLevels, a.n)
		}
	}
	return nil
}
