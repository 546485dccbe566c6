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

	"github.com/ctessum/sparse"
)

// Default parameter spreads for one-at-a-time screening sweeps.
// Velocity and dispersion are swept multiplicatively around the base
// value; decay is swept over absolute rates because screening releases
// typically start from λ = 0.
var (
	VelocityFactors   = []float64{0.5, 0.8, 1, 1.5, 2}
	DispersionFactors = []float64{0.2, 0.5, 1, 2, 5}
	DecayFactors      = []float64{0, 0.5, 1, 2, 4}
	DecayRates        = []float64{0, 0.001, 0.005, 0.01, 0.02} // day⁻¹
)

// A SensitivityResult is one variant of a parameter sweep.
type SensitivityResult struct {
	Param   string   // swept parameter: "U", "DL", or "Lambda"
	Value   float64  // the parameter value in this variant
	Release *Release // the varied release
	Peak    *Sample  // peak over the evaluated positions; nil if none
}

// Sensitivity performs a one-at-a-time sweep: the named parameter
// ("U", "DL", or "Lambda") is multiplied by each factor in turn and
// the plume profile at time t [day] is re-evaluated over positions xs
// [m]. It returns one result per factor together with the profile
// matrix, shape (len(factors), len(xs)), whose row i belongs to
// factors[i].
//
// Each variant is re-validated; a factor that drives a parameter out
// of its physical range (for example a non-positive dispersion
// multiplier) returns a ParameterError.
func (r *Release) Sensitivity(param string, factors []float64, xs []float64, t float64) ([]SensitivityResult, *sparse.DenseArray, error) {
	values := make([]float64, len(factors))
	base, err := r.sweepBase(param)
	if err != nil {
		return nil, nil, err
	}
	for i, f := range factors {
		values[i] = base * f
	}
	return r.sweep(param, values, xs, t)
}

// DecaySweep re-evaluates the plume profile at time t [day] over
// positions xs [m] for each of the given absolute decay rates
// [1/day]. It is the decay analogue of Sensitivity for releases whose
// base decay rate is zero, where a multiplicative sweep would be
// degenerate.
func (r *Release) DecaySweep(rates []float64, xs []float64, t float64) ([]SensitivityResult, *sparse.DenseArray, error) {
	return r.sweep("Lambda", rates, xs, t)
}

// sweepBase returns the current value of the named swept parameter.
func (r *Release) sweepBase(param string) (float64, error) {
	switch param {
	case "U":
		return r.U, nil
	case "DL":
		return r.DL, nil
	case "Lambda":
		return r.Lambda, nil
	}
	return 0, fmt.Errorf(`slug: unknown sweep parameter "%s"; must be "U", "DL", or "Lambda"`, param)
}

func (r *Release) sweep(param string, values, xs []float64, t float64) ([]SensitivityResult, *sparse.DenseArray, error) {
	results := make([]SensitivityResult, len(values))
	m := sparse.ZerosDense(len(values), len(xs))
	for i, v := range values {
		variant := *r
		switch param {
		case "U":
			variant.U = v
		case "DL":
			variant.DL = v
		case "Lambda":
			variant.Lambda = v
		default:
			return nil, nil, fmt.Errorf(`slug: unknown sweep parameter "%s"; must be "U", "DL", or "Lambda"`, param)
		}
		if err := variant.validate(); err != nil {
			return nil, nil, err
		}
		p, err := variant.Profile(xs, t)
		if err != nil {
			return nil, nil, err
		}
		for j, s := range p {
			m.Set(s.C, i, j)
		}
		results[i] = SensitivityResult{
			Param:   param,
			Value:   v,
			Release: &variant,
			Peak:    p.peak(),
		}
	}
	return results, m, nil
}
