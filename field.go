/*
Copyright © 2025 the SLUG authors.
This file is part of SLUG.

SLUG is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SLUG is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SLUG.  If not, see <http://www.gnu.org/licenses/>.
*/

package slug

import (
	"github.com/ctessum/sparse"
)

// Field evaluates the concentration field c(t, x) [kg/m³] on the
// grid spanned by the given times [day] and positions [m]. The result
// has shape (len(ts), len(xs)); row i is the plume profile at ts[i].
// The numeric policies of Concentration apply to every element, and
// the first evaluation error (including any t ≤ 0) aborts the whole
// field.
func (r *Release) Field(ts, xs []float64) (*sparse.DenseArray, error) {
	f := sparse.ZerosDense(len(ts), len(xs))
	for i, t := range ts {
		p, err := r.Profile(xs, t)
		if err != nil {
			return nil, err
		}
		for j, s := range p {
			f.Set(s.C, i, j)
		}
	}
	return f, nil
}

// FieldProfile returns row i of a Field created for the given
// positions as a Profile.
func FieldProfile(f *sparse.DenseArray, xs []float64, i int) Profile {
	p := make(Profile, len(xs))
	for j, x := range xs {
		p[j] = Sample{X: x, C: f.Get(i, j)}
	}
	return p
}
