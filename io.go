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

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// Mesh files use MPAS-style variable names: areaCell, dvEdge,
// nEdgesOnCell, edgesOnCell, cellsOnEdge and maxLevelEdgeBot, with
// one-based cell and edge indices and zero padding. Orientation signs are
// not stored; they are derived from cellsOnEdge, whose convention is that
// the edge normal points from the first adjacent cell toward the second.

// ReadMesh reads an unstructured mesh description from a NetCDF file.
// The returned mesh has been validated with Check.
func ReadMesh(r cdf.ReaderWriterAt) (*Mesh, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("flume: opening mesh file: %v", err)
	}

	areaCell, err := readFloat64Var(f, "areaCell")
	if err != nil {
		return nil, err
	}
	dvEdge, err := readFloat64Var(f, "dvEdge")
	if err != nil {
		return nil, err
	}
	nEdgesOnCell, err := readInt32Var(f, "nEdgesOnCell")
	if err != nil {
		return nil, err
	}
	edgesOnCell, err := readInt32Var(f, "edgesOnCell")
	if err != nil {
		return nil, err
	}
	cellsOnEdge, err := readInt32Var(f, "cellsOnEdge")
	if err != nil {
		return nil, err
	}
	maxLevelEdgeBot, err := readInt32Var(f, "maxLevelEdgeBot")
	if err != nil {
		return nil, err
	}

	nCells := len(areaCell)
	nEdges := len(dvEdge)
	if len(nEdgesOnCell) != nCells {
		return nil, meshErrorf("mesh file: nEdgesOnCell has %d entries for %d cells",
			len(nEdgesOnCell), nCells)
	}
	if nCells == 0 || len(edgesOnCell)%nCells != 0 {
		return nil, meshErrorf("mesh file: edgesOnCell has %d entries for %d cells",
			len(edgesOnCell), nCells)
	}
	if len(cellsOnEdge) != 2*nEdges {
		return nil, meshErrorf("mesh file: cellsOnEdge has %d entries for %d edges",
			len(cellsOnEdge), nEdges)
	}
	maxEdges := len(edgesOnCell) / nCells

	m := &Mesh{
		NCells:         nCells,
		NEdges:         nEdges,
		AreaCell:       areaCell,
		DvEdge:         dvEdge,
		CellEdgeOffset: make([]int, nCells+1),
		MaxLevelEdge:   make([]int, nEdges),
	}
	for e, lv := range maxLevelEdgeBot {
		m.MaxLevelEdge[e] = int(lv)
		if m.NVertLevels < int(lv) {
			m.NVertLevels = int(lv)
		}
	}
	// The vertical extent of the mesh may exceed the deepest column;
	// take it from the vertLevels coordinate when the file has one.
	if dims := f.Header.Lengths("vertLevels"); len(dims) == 1 && dims[0] > m.NVertLevels {
		m.NVertLevels = dims[0]
	}

	for c := 0; c < nCells; c++ {
		ne := int(nEdgesOnCell[c])
		if ne < 0 || ne > maxEdges {
			return nil, meshErrorf("mesh file: cell %d claims %d edges; at most %d fit",
				c, ne, maxEdges)
		}
		m.CellEdgeOffset[c+1] = m.CellEdgeOffset[c] + ne
		for i := 0; i < ne; i++ {
			e := int(edgesOnCell[c*maxEdges+i]) - 1
			if e < 0 || e >= nEdges {
				return nil, meshErrorf("mesh file: cell %d references edge %d of %d",
					c, e+1, nEdges)
			}
			var s float64
			switch int32(c + 1) {
			case cellsOnEdge[2*e]:
				s = -1 // edge normal points out of this cell
			case cellsOnEdge[2*e+1]:
				s = 1
			default:
				return nil, meshErrorf("mesh file: edge %d is listed for cell %d "+
					"but cellsOnEdge disagrees", e+1, c+1)
			}
			m.CellEdges = append(m.CellEdges, e)
			m.CellEdgeSign = append(m.CellEdgeSign, s)
		}
	}

	if err := m.Check(); err != nil {
		return nil, err
	}
	return m, nil
}

// ReadState reads the normal velocity and edge thickness fields from a
// NetCDF file and returns them in a new State with a zeroed tendency
// accumulator. The field extents must match m.
func ReadState(r cdf.ReaderWriterAt, m *Mesh) (*State, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("flume: opening state file: %v", err)
	}
	s := NewState(m)
	for _, v := range []struct {
		name string
		arr  *sparse.DenseArray
	}{
		{"normalVelocity", s.NormalVelocity},
		{"layerThicknessEdge", s.ThicknessEdge},
	} {
		dims := f.Header.Lengths(v.name)
		if len(dims) != 2 || dims[0] != m.NVertLevels || dims[1] != m.NEdges {
			return nil, fmt.Errorf("flume: state file: %s has dimensions %v; "+
				"mesh requires [%d %d]", v.name, dims, m.NVertLevels, m.NEdges)
		}
		data, err := readFloat64Var(f, v.name)
		if err != nil {
			return nil, err
		}
		copy(v.arr.Elements, data)
	}
	return s, nil
}

// WriteMesh writes m to a NetCDF file in the format read by ReadMesh.
func WriteMesh(w cdf.ReaderWriterAt, m *Mesh) error {
	maxEdges := 0
	for c := 0; c < m.NCells; c++ {
		if n := m.CellEdgeOffset[c+1] - m.CellEdgeOffset[c]; n > maxEdges {
			maxEdges = n
		}
	}

	h := cdf.NewHeader(
		[]string{"nCells", "nEdges", "maxEdges", "TWO", "nVertLevels"},
		[]int{m.NCells, m.NEdges, maxEdges, 2, m.NVertLevels})
	h.AddVariable("areaCell", []string{"nCells"}, []float64{0})
	h.AddAttribute("areaCell", "units", "m2")
	h.AddVariable("dvEdge", []string{"nEdges"}, []float64{0})
	h.AddAttribute("dvEdge", "units", "m")
	h.AddVariable("nEdgesOnCell", []string{"nCells"}, []int32{0})
	h.AddVariable("edgesOnCell", []string{"nCells", "maxEdges"}, []int32{0})
	h.AddVariable("cellsOnEdge", []string{"nEdges", "TWO"}, []int32{0})
	h.AddVariable("maxLevelEdgeBot", []string{"nEdges"}, []int32{0})
	h.AddVariable("vertLevels", []string{"nVertLevels"}, []int32{0})
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("flume: creating mesh file header: %v", err)
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("flume: creating mesh file: %v", err)
	}

	nEdgesOnCell := make([]int32, m.NCells)
	edgesOnCell := make([]int32, m.NCells*maxEdges)
	cellsOnEdge := make([]int32, 2*m.NEdges)
	for c := 0; c < m.NCells; c++ {
		begin := m.CellEdgeOffset[c]
		nEdgesOnCell[c] = int32(m.CellEdgeOffset[c+1] - begin)
		for i, e := range m.EdgesOfCell(c) {
			edgesOnCell[c*maxEdges+i] = int32(e + 1)
			if m.CellEdgeSign[begin+i] < 0 {
				cellsOnEdge[2*e] = int32(c + 1)
			} else {
				cellsOnEdge[2*e+1] = int32(c + 1)
			}
		}
	}
	maxLevelEdgeBot := make([]int32, m.NEdges)
	for e, lv := range m.MaxLevelEdge {
		maxLevelEdgeBot[e] = int32(lv)
	}
	vertLevels := make([]int32, m.NVertLevels)
	for k := range vertLevels {
		vertLevels[k] = int32(k + 1)
	}

	for _, v := range []struct {
		name  string
		begin []int
		end   []int
		data  interface{}
	}{
		{"areaCell", []int{0}, []int{m.NCells}, m.AreaCell},
		{"dvEdge", []int{0}, []int{m.NEdges}, m.DvEdge},
		{"nEdgesOnCell", []int{0}, []int{m.NCells}, nEdgesOnCell},
		{"edgesOnCell", []int{0, 0}, []int{m.NCells, maxEdges}, edgesOnCell},
		{"cellsOnEdge", []int{0, 0}, []int{m.NEdges, 2}, cellsOnEdge},
		{"maxLevelEdgeBot", []int{0}, []int{m.NEdges}, maxLevelEdgeBot},
		{"vertLevels", []int{0}, []int{m.NVertLevels}, vertLevels},
	} {
		ww := f.Writer(v.name, v.begin, v.end)
		if _, err := ww.Write(v.data); err != nil {
			return fmt.Errorf("flume: writing mesh variable %s: %v", v.name, err)
		}
	}
	return nil
}

// WriteState writes the velocity and edge-thickness fields of s to a
// NetCDF file in the format read by ReadState.
func WriteState(w cdf.ReaderWriterAt, m *Mesh, s *State) error {
	h := cdf.NewHeader([]string{"nVertLevels", "nEdges"}, []int{m.NVertLevels, m.NEdges})
	h.AddVariable("normalVelocity", []string{"nVertLevels", "nEdges"}, []float64{0})
	h.AddAttribute("normalVelocity", "units", "m s-1")
	h.AddVariable("layerThicknessEdge", []string{"nVertLevels", "nEdges"}, []float64{0})
	h.AddAttribute("layerThicknessEdge", "units", "m")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("flume: creating state file header: %v", err)
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("flume: creating state file: %v", err)
	}
	for _, v := range []struct {
		name string
		arr  *sparse.DenseArray
	}{
		{"normalVelocity", s.NormalVelocity},
		{"layerThicknessEdge", s.ThicknessEdge},
	} {
		ww := f.Writer(v.name, []int{0, 0}, []int{m.NVertLevels, m.NEdges})
		if _, err := ww.Write(v.arr.Elements); err != nil {
			return fmt.Errorf("flume: writing state variable %s: %v", v.name, err)
		}
	}
	return nil
}

// WriteTendency writes the thickness-tendency accumulator to a NetCDF
// file.
func WriteTendency(w cdf.ReaderWriterAt, m *Mesh, tend *sparse.DenseArray) error {
	h := cdf.NewHeader([]string{"nVertLevels", "nCells"}, []int{m.NVertLevels, m.NCells})
	h.AddVariable("tendLayerThickness", []string{"nVertLevels", "nCells"}, []float64{0})
	h.AddAttribute("tendLayerThickness", "description",
		"time tendency of layer thickness from horizontal advection")
	h.AddAttribute("tendLayerThickness", "units", "m s-1")
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("flume: creating tendency file header: %v", err)
	}

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("flume: creating tendency file: %v", err)
	}
	ww := f.Writer("tendLayerThickness", []int{0, 0}, []int{m.NVertLevels, m.NCells})
	if _, err := ww.Write(tend.Elements); err != nil {
		return fmt.Errorf("flume: writing tendency: %v", err)
	}
	return nil
}

// ReadTendency reads a tendency array previously written by
// WriteTendency.
func ReadTendency(r cdf.ReaderWriterAt, m *Mesh) (*sparse.DenseArray, error) {
	f, err := cdf.Open(r)
	if err != nil {
		return nil, fmt.Errorf("flume: opening tendency file: %v", err)
	}
	dims := f.Header.Lengths("tendLayerThickness")
	if len(dims) != 2 || dims[0] != m.NVertLevels || dims[1] != m.NCells {
		return nil, fmt.Errorf("flume: tendency file has dimensions %v; "+
			"mesh requires [%d %d]", dims, m.NVertLevels, m.NCells)
	}
	data, err := readFloat64Var(f, "tendLayerThickness")
	if err != nil {
		return nil, err
	}
	tend := sparse.ZerosDense(m.NVertLevels, m.NCells)
	copy(tend.Elements, data)
	return tend, nil
}

// readFloat64Var reads an entire floating-point variable from a NetCDF
// file.
func readFloat64Var(f *cdf.File, name string) ([]float64, error) {
	if len(f.Header.Lengths(name)) == 0 {
		return nil, fmt.Errorf("flume: variable %s is not in file", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("flume: reading variable %s: %v", name, err)
	}
	switch b := buf.(type) {
	case []float64:
		return b, nil
	case []float32:
		out := make([]float64, len(b))
		for i, v := range b {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("flume: variable %s is not floating point", name)
	}
}

// readInt32Var reads an entire integer variable from a NetCDF file.
func readInt32Var(f *cdf.File, name string) ([]int32, error) {
	if len(f.Header.Lengths(name)) == 0 {
		return nil, fmt.Errorf("flume: variable %s is not in file", name)
	}
	r := f.Reader(name, nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("flume: reading variable %s: %v", name, err)
	}
	b, ok := buf.([]int32)
	if !ok {
		return nil, fmt.Errorf("flume: variable %s is not integer", name)
	}
	return b, nil
}
