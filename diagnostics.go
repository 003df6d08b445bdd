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
	"github.com/ctessum/unit"
	"gonum.org/v1/gonum/floats"
)

// cubicMetersPerSecond is the dimension of an area-integrated thickness
// tendency.
var cubicMetersPerSecond = unit.Dimensions{
	unit.LengthDim: 3,
	unit.TimeDim:   -1,
}

// MassBalance returns the area-integrated thickness tendency for each
// vertical level [m³/s]. On a closed mesh a conservative flux term
// contributes zero to every level because the two signed contributions of
// each interior edge cancel; a persistent nonzero balance on a closed
// mesh therefore indicates a broken sign array.
func (d *Flume) MassBalance() []*unit.Unit {
	out := make([]*unit.Unit, d.Mesh.NVertLevels)
	nc := d.Mesh.NCells
	for k := 0; k < d.Mesh.NVertLevels; k++ {
		row := d.State.ThicknessTend.Elements[k*nc : (k+1)*nc]
		out[k] = unit.New(floats.Dot(d.Mesh.AreaCell, row), cubicMetersPerSecond)
	}
	return out
}

// TendencyRange returns the smallest and largest thickness-tendency
// values over all cells and levels [m/s].
func (d *Flume) TendencyRange() (min, max float64) {
	e := d.State.ThicknessTend.Elements
	return floats.Min(e), floats.Max(e)
}
