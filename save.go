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
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

func init() {
	gob.Register(geom.Polygon{})
}

// snapshot is the gob wire form of a model domain.
type snapshot struct {
	Mesh  *Mesh
	State *State
}

// Save returns a function that saves the mesh and field state in d to a
// gob file (format description at https://golang.org/pkg/encoding/gob/).
func Save(w io.Writer) DomainManipulator {
	return func(d *Flume) error {
		e := gob.NewEncoder(w)
		if err := e.Encode(snapshot{Mesh: d.Mesh, State: d.State}); err != nil {
			return fmt.Errorf("flume.Flume.Save: %v", err)
		}
		return nil
	}
}

// rebuildDense copies a into a freshly allocated array. Gob only
// transfers the exported Elements and Shape fields of a DenseArray, so
// decoded arrays are missing the internal index state that Set and Get
// rely on; rebuilding restores it.
func rebuildDense(a *sparse.DenseArray) *sparse.DenseArray {
	b := sparse.ZerosDense(a.Shape...)
	copy(b.Elements, a.Elements)
	return b
}

// Load returns a function that loads the data from a previously Saved
// file into a Flume object.
func Load(r io.Reader) DomainManipulator {
	return func(d *Flume) error {
		dec := gob.NewDecoder(r)
		var s snapshot
		if err := dec.Decode(&s); err != nil {
			return fmt.Errorf("flume.Flume.Load: %v", err)
		}
		if err := s.Mesh.Check(); err != nil {
			return err
		}
		if err := s.State.checkShapes(s.Mesh); err != nil {
			return err
		}
		s.State.NormalVelocity = rebuildDense(s.State.NormalVelocity)
		s.State.ThicknessEdge = rebuildDense(s.State.ThicknessEdge)
		s.State.ThicknessTend = rebuildDense(s.State.ThicknessTend)
		d.Mesh = s.Mesh
		d.State = s.State
		return nil
	}
}
