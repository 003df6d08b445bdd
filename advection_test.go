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
	"math"
	"testing"
)

const testTolerance = 1.e-8

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b float64) bool {
	if math.Abs(a-b) > testTolerance {
		return true
	}
	return false
}

// twoCellTestMesh is the smallest possible domain: cells 0 and 1 sharing
// a single interior edge, with the edge normal pointing from cell 1 into
// cell 0.
func twoCellTestMesh() *Mesh {
	return &Mesh{
		NCells:         2,
		NEdges:         1,
		NVertLevels:    1,
		AreaCell:       []float64{10, 10},
		DvEdge:         []float64{2},
		CellEdgeOffset: []int{0, 1, 2},
		CellEdges:      []int{0, 0},
		CellEdgeSign:   []float64{1, -1},
		MaxLevelEdge:   []int{1},
	}
}

// testDomain builds a model on a closed hexagonal mesh with smoothly
// varying velocity and edge-thickness fields.
func testDomain(t *testing.T) *Flume {
	m, err := HexMesh(4, 4, 3, 1000)
	if err != nil {
		t.Fatal(err)
	}
	d := &Flume{Mesh: m, State: NewState(m)}
	for k := 0; k < m.NVertLevels; k++ {
		for e := 0; e < m.NEdges; e++ {
			d.State.NormalVelocity.Set(math.Sin(float64(e))+0.1*float64(k+1), k, e)
			d.State.ThicknessEdge.Set(50+10*math.Cos(float64(e)*0.7)-float64(k), k, e)
		}
	}
	return d
}

func TestFluxDivergence(t *testing.T) {
	m := twoCellTestMesh()
	if err := m.Check(); err != nil {
		t.Fatal(err)
	}
	s := NewState(m)
	s.NormalVelocity.Set(3, 0, 0)
	s.ThicknessEdge.Set(5, 0, 0)
	// Prior contributions from other terms must be preserved.
	s.ThicknessTend.Set(1.5, 0, 0)
	s.ThicknessTend.Set(-0.5, 0, 1)

	adv := NewThicknessAdvection(false)
	if !adv.Enabled() {
		t.Fatal("advection should be enabled")
	}
	if err := adv.AddFluxDivergence(m, s.NormalVelocity, s.ThicknessEdge, s.ThicknessTend); err != nil {
		t.Fatal(err)
	}

	// flux = 3 m/s × 2 m × 5 m = 30 m³/s; divided by 10 m² of cell area.
	if v := s.ThicknessTend.Get(0, 0); absDifferent(v, 1.5+3) {
		t.Errorf("cell 0 tendency = %g; want %g", v, 1.5+3.0)
	}
	if v := s.ThicknessTend.Get(0, 1); absDifferent(v, -0.5-3) {
		t.Errorf("cell 1 tendency = %g; want %g", v, -0.5-3.0)
	}
}

func TestAdvectionDisabled(t *testing.T) {
	d := testDomain(t)
	for i := range d.State.ThicknessTend.Elements {
		d.State.ThicknessTend.Elements[i] = float64(i) * 0.25
	}
	before := d.State.ThicknessTend.Copy()

	adv := NewThicknessAdvection(true)
	if adv.Enabled() {
		t.Fatal("advection should be disabled")
	}
	if err := adv.AddFluxDivergence(d.Mesh, d.State.NormalVelocity,
		d.State.ThicknessEdge, d.State.ThicknessTend); err != nil {
		t.Fatal(err)
	}
	for i, v := range d.State.ThicknessTend.Elements {
		if v != before.Elements[i] {
			t.Fatalf("disabled advection changed tendency element %d: %g -> %g",
				i, before.Elements[i], v)
		}
	}
}

// Test whether mass is conserved on a closed mesh: the area-weighted
// tendency must sum to zero for every level because each interior edge
// contributes antisymmetrically to its two cells.
func TestAdvectionConservation(t *testing.T) {
	d := testDomain(t)
	adv := NewThicknessAdvection(false)
	if err := adv.AddFluxDivergence(d.Mesh, d.State.NormalVelocity,
		d.State.ThicknessEdge, d.State.ThicknessTend); err != nil {
		t.Fatal(err)
	}
	for k, b := range d.MassBalance() {
		if err := b.Check(cubicMetersPerSecond); err != nil {
			t.Fatal(err)
		}
		if math.Abs(b.Value()) > testTolerance*d.Mesh.AreaCell[0] {
			t.Errorf("level %d: area-integrated tendency = %g m³/s; want 0", k, b.Value())
		}
	}
}

func TestAdvectionVerticalBound(t *testing.T) {
	d := testDomain(t)
	// Deactivate all levels at one edge and put an enormous flux on it.
	// Zero everything else so any contribution would show. The zeroing
	// writes Elements directly because DenseArray.Set skips zero values.
	const e = 7
	d.Mesh.MaxLevelEdge[e] = 0
	for i := range d.State.NormalVelocity.Elements {
		d.State.NormalVelocity.Elements[i] = 0
		d.State.ThicknessEdge.Elements[i] = 0
	}
	for k := 0; k < d.Mesh.NVertLevels; k++ {
		d.State.NormalVelocity.Set(1e10, k, e)
		d.State.ThicknessEdge.Set(1e10, k, e)
	}
	adv := NewThicknessAdvection(false)
	if err := adv.AddFluxDivergence(d.Mesh, d.State.NormalVelocity,
		d.State.ThicknessEdge, d.State.ThicknessTend); err != nil {
		t.Fatal(err)
	}
	for i, v := range d.State.ThicknessTend.Elements {
		if v != 0 {
			t.Fatalf("inactive edge contributed %g to tendency element %d", v, i)
		}
	}
}

// Partially deactivated columns must only accumulate flux in the active
// levels.
func TestAdvectionPartialColumn(t *testing.T) {
	m := twoCellTestMesh()
	m.NVertLevels = 3
	m.MaxLevelEdge[0] = 2
	s := NewState(m)
	for k := 0; k < 3; k++ {
		s.NormalVelocity.Set(3, k, 0)
		s.ThicknessEdge.Set(5, k, 0)
	}
	adv := NewThicknessAdvection(false)
	if err := adv.AddFluxDivergence(m, s.NormalVelocity, s.ThicknessEdge, s.ThicknessTend); err != nil {
		t.Fatal(err)
	}
	for k := 0; k < 3; k++ {
		want := 3.0
		if k >= m.MaxLevelEdge[0] {
			want = 0
		}
		if v := s.ThicknessTend.Get(k, 0); absDifferent(v, want) {
			t.Errorf("level %d cell 0 tendency = %g; want %g", k, v, want)
		}
		if v := s.ThicknessTend.Get(k, 1); absDifferent(v, -want) {
			t.Errorf("level %d cell 1 tendency = %g; want %g", k, v, -want)
		}
	}
}

func TestAdvectionLinearity(t *testing.T) {
	const α = 2.5

	d := testDomain(t)
	adv := NewThicknessAdvection(false)
	if err := adv.AddFluxDivergence(d.Mesh, d.State.NormalVelocity,
		d.State.ThicknessEdge, d.State.ThicknessTend); err != nil {
		t.Fatal(err)
	}
	base := d.State.ThicknessTend.Copy()

	d2 := testDomain(t)
	for i := range d2.State.NormalVelocity.Elements {
		d2.State.NormalVelocity.Elements[i] *= α
	}
	if err := adv.AddFluxDivergence(d2.Mesh, d2.State.NormalVelocity,
		d2.State.ThicknessEdge, d2.State.ThicknessTend); err != nil {
		t.Fatal(err)
	}
	for i, v := range d2.State.ThicknessTend.Elements {
		want := α * base.Elements[i]
		if want == 0 {
			if absDifferent(v, 0) {
				t.Fatalf("element %d: got %g; want 0", i, v)
			}
			continue
		}
		if different(v, want, testTolerance) {
			t.Fatalf("element %d: got %g; want %g", i, v, want)
		}
	}
}

func TestAdvectionZeroFields(t *testing.T) {
	for _, zero := range []string{"velocity", "thickness"} {
		d := testDomain(t)
		switch zero {
		case "velocity":
			for i := range d.State.NormalVelocity.Elements {
				d.State.NormalVelocity.Elements[i] = 0
			}
		case "thickness":
			for i := range d.State.ThicknessEdge.Elements {
				d.State.ThicknessEdge.Elements[i] = 0
			}
		}
		adv := NewThicknessAdvection(false)
		if err := adv.AddFluxDivergence(d.Mesh, d.State.NormalVelocity,
			d.State.ThicknessEdge, d.State.ThicknessTend); err != nil {
			t.Fatal(err)
		}
		for i, v := range d.State.ThicknessTend.Elements {
			if v != 0 {
				t.Fatalf("zero %s: tendency element %d = %g; want 0", zero, i, v)
			}
		}
	}
}

// Repeated evaluation with a fixed iteration order must be
// bit-reproducible.
func TestAdvectionDeterminism(t *testing.T) {
	d1 := testDomain(t)
	d2 := testDomain(t)
	adv := NewThicknessAdvection(false)
	for _, d := range []*Flume{d1, d2} {
		if err := adv.AddFluxDivergence(d.Mesh, d.State.NormalVelocity,
			d.State.ThicknessEdge, d.State.ThicknessTend); err != nil {
			t.Fatal(err)
		}
	}
	for i, v := range d1.State.ThicknessTend.Elements {
		if v != d2.State.ThicknessTend.Elements[i] {
			t.Fatalf("element %d differs between identical evaluations: %g != %g",
				i, v, d2.State.ThicknessTend.Elements[i])
		}
	}
}
