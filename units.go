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
	"fmt"

	"github.com/ctessum/unit"
)

// The model's internal unit system is kg, m, day. Concentrations are
// kg/m³ internally and are usually reported as mg/L: 1 kg/m³ =
// 1000 mg/L.
const mgPerLPerKgPerM3 = 1000

// SecondsPerDay converts the model's day-based rates to SI seconds.
const SecondsPerDay = 24 * 60 * 60

// concDims is mass per volume.
var concDims = unit.Dimensions{unit.MassDim: 1, unit.LengthDim: -3}

// Conc wraps a concentration value [kg/m³] in its dimensions.
func Conc(c float64) *unit.Unit {
	return unit.New(c, concDims)
}

// MgPerL converts a dimensioned concentration to mg/L. It returns an
// error if u is not a concentration.
func MgPerL(u *unit.Unit) (float64, error) {
	if err := u.Check(concDims); err != nil {
		return 0, fmt.Errorf("slug: converting to mg/L: %v", err)
	}
	return u.Value() * mgPerLPerKgPerM3, nil
}

// FromMgPerL converts a concentration in mg/L to the model's internal
// kg/m³.
func FromMgPerL(c float64) *unit.Unit {
	return unit.New(c/mgPerLPerKgPerM3, concDims)
}

// Velocity wraps a seepage velocity [m/day] in SI dimensions [m/s].
func Velocity(u float64) *unit.Unit {
	return unit.New(u/SecondsPerDay, unit.Dimensions{unit.LengthDim: 1, unit.TimeDim: -1})
}

// Dispersion wraps a dispersion coefficient [m²/day] in SI dimensions
// [m²/s].
func Dispersion(dL float64) *unit.Unit {
	return unit.New(dL/SecondsPerDay, unit.Dimensions{unit.LengthDim: 2, unit.TimeDim: -1})
}

// Mass wraps a released mass [kg] in its dimensions.
func Mass(m float64) *unit.Unit {
	return unit.New(m, unit.Kilogram)
}
