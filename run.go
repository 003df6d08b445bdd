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
	"runtime"
	"sync"
)

// Tendencies returns a function that concurrently evaluates a series of
// tendency terms on all of the mesh cells. Cells are strided across
// GOMAXPROCS workers; because each term only writes to the row of the
// accumulator belonging to the cell it was called for, and each cell is
// owned by exactly one worker, no locking is needed and the result is
// identical to a sequential evaluation.
func Tendencies(terms ...TendencyTerm) DomainManipulator {
	nprocs := runtime.GOMAXPROCS(0) // number of processors
	var wg sync.WaitGroup

	return func(d *Flume) error {
		if err := d.State.checkShapes(d.Mesh); err != nil {
			return err
		}
		wg.Add(nprocs)
		for pp := 0; pp < nprocs; pp++ {
			go func(pp int) {
				for c := pp; c < d.Mesh.NCells; c += nprocs {
					for _, f := range terms {
						f(d, c)
					}
				}
				wg.Done()
			}(pp)
		}
		wg.Wait()
		d.evaluations++
		return nil
	}
}

// ResetTendency returns a function that zeroes the thickness-tendency
// accumulator. Tendency terms never clear the accumulator themselves, so
// this needs to run before the first term of each evaluation cycle.
func ResetTendency() DomainManipulator {
	return func(d *Flume) error {
		for i := range d.State.ThicknessTend.Elements {
			d.State.ThicknessTend.Elements[i] = 0
		}
		return nil
	}
}

// EvaluationLimit returns a function that sets the Done flag after n
// tendency-evaluation passes have completed. If msgChan is not nil, a
// progress message is sent to it after each pass.
func EvaluationLimit(n int, msgChan chan string) DomainManipulator {
	return func(d *Flume) error {
		if msgChan != nil {
			msgChan <- fmt.Sprintf("Completed tendency evaluation %d of %d", d.evaluations, n)
		}
		if d.evaluations >= n {
			d.Done = true
		}
		return nil
	}
}
