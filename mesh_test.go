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

import "testing"

func TestMeshCheck(t *testing.T) {
	if err := twoCellTestMesh().Check(); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name   string
		mutate func(m *Mesh)
	}{
		{"edge out of range", func(m *Mesh) { m.CellEdges[0] = 5 }},
		{"negative edge", func(m *Mesh) { m.CellEdges[1] = -1 }},
		{"zero sign", func(m *Mesh) { m.CellEdgeSign[0] = 0 }},
		{"fractional sign", func(m *Mesh) { m.CellEdgeSign[1] = 0.5 }},
		{"non-canceling signs", func(m *Mesh) { m.CellEdgeSign[1] = 1 }},
		{"non-positive area", func(m *Mesh) { m.AreaCell[0] = 0 }},
		{"non-positive edge length", func(m *Mesh) { m.DvEdge[0] = -2 }},
		{"too many active levels", func(m *Mesh) { m.MaxLevelEdge[0] = 2 }},
		{"negative active levels", func(m *Mesh) { m.MaxLevelEdge[0] = -1 }},
		{"decreasing offsets", func(m *Mesh) { m.CellEdgeOffset[1] = 2; m.CellEdgeOffset[2] = 1 }},
		{"offsets not starting at zero", func(m *Mesh) { m.CellEdgeOffset[0] = 1 }},
		{"wrong area count", func(m *Mesh) { m.AreaCell = m.AreaCell[:1] }},
		{"no cells", func(m *Mesh) { m.NCells = 0 }},
	}
	for _, c := range cases {
		m := twoCellTestMesh()
		c.mutate(m)
		err := m.Check()
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		if _, ok := err.(*MeshError); !ok {
			t.Errorf("%s: got %T (%v); want *MeshError", c.name, err, err)
		}
	}
}

func TestMeshAccessors(t *testing.T) {
	m, err := HexMesh(3, 2, 1, 250)
	if err != nil {
		t.Fatal(err)
	}
	for c := 0; c < m.NCells; c++ {
		edges := m.EdgesOfCell(c)
		signs := m.EdgeSignsOfCell(c)
		if len(edges) != 6 || len(signs) != 6 {
			t.Fatalf("cell %d has %d edges and %d signs; want 6 of each",
				c, len(edges), len(signs))
		}
		g := m.CellGeometry(c)
		if g == nil {
			t.Fatalf("cell %d is missing its outline", c)
		}
		if different(g.Area(), m.AreaCell[c], testTolerance) {
			t.Errorf("cell %d outline area %g does not match areaCell %g",
				c, g.Area(), m.AreaCell[c])
		}
	}

	m.CellOutline = nil
	if g := m.CellGeometry(0); g != nil {
		t.Error("mesh without outlines should return nil geometry")
	}
}
