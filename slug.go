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

// Package slug is a screening-level model of solute transport in
// groundwater. It evaluates the closed-form solution of the
// one-dimensional advection-dispersion-reaction equation for an
// instantaneous point ("slug") release into a homogeneous, isotropic
// aquifer with uniform flow:
//
//	c(x,t) = m / (2·n·W·√(π·DL·t)) · exp(−λ·t − (x−u·t)² / (4·DL·t))
//
// following the solutions given in Baetslé (1969) and Bear (1979,
// Hydraulics of Groundwater). It is meant for screening-level risk
// assessment, not for heterogeneous or numerically discretized
// transport simulation.
package slug

import (
	"fmt"
	"math"
)

// Version gives the model version number.
const Version = "0.3.1"

// ExpUnderflow is the exponent below which the exponential term of the
// solution is taken to be exactly zero without calling math.Exp.
// exp() of large-magnitude negative arguments underflows through the
// subnormal range in a platform-dependent way; short-circuiting here
// keeps far-field concentrations deterministically zero.
const ExpUnderflow = -700

// A Release describes an instantaneous point release of a solute into
// an aquifer, together with the transport properties of the aquifer.
// The internal unit system is kg, m, and day; concentrations are
// kg/m³.
//
// Create Releases with NewRelease, which validates the parameters;
// evaluation methods assume a validated receiver. A Release is
// immutable after creation and may be shared freely among concurrent
// readers.
type Release struct {
	M      float64 `desc:"Released solute mass" units:"kg"`
	W      float64 `desc:"Cross-sectional flow area" units:"m²"`
	N      float64 `desc:"Effective porosity" units:"fraction"`
	U      float64 `desc:"Seepage velocity" units:"m day⁻¹"`
	DL     float64 `desc:"Longitudinal dispersion coefficient" units:"m² day⁻¹"`
	Lambda float64 `desc:"First-order decay rate" units:"day⁻¹"`
}

// A ParameterError is returned when a physical parameter is outside
// its allowable range.
type ParameterError struct {
	Param  string  // name of the offending parameter
	Value  float64 // the rejected value
	Reason string  // allowable range
}

func (err *ParameterError) Error() string {
	return fmt.Sprintf("slug: %s=%g but %s", err.Param, err.Value, err.Reason)
}

// A DomainError is returned when a concentration is requested at a
// time where the solution is undefined.
type DomainError struct {
	T float64 // the rejected evaluation time [day]
}

func (err *DomainError) Error() string {
	return fmt.Sprintf("slug: time %g day is outside the solution domain; t must be > 0", err.T)
}

// An OverflowError is returned when the leading coefficient of the
// solution is not finite, which can happen when near-zero porosity,
// area, and dispersion values combine degenerately.
type OverflowError struct {
	Coeff float64 // the non-finite coefficient
	X     float64 // evaluation position [m]
	T     float64 // evaluation time [day]
}

func (err *OverflowError) Error() string {
	return fmt.Sprintf("slug: concentration coefficient is %g at x=%g m, t=%g day; "+
		"porosity, area, or dispersion is degenerately small", err.Coeff, err.X, err.T)
}

// NewRelease creates a new solute release from the released mass m
// [kg], the cross-sectional flow area w [m²], the effective porosity n
// [fraction], the seepage velocity u [m/day], the longitudinal
// dispersion coefficient dL [m²/day], and the first-order decay rate
// lambda [1/day]. The velocity may be zero or negative to represent a
// stagnant or reversed hydraulic gradient; all other parameters are
// validated against their physical ranges.
func NewRelease(m, w, n, u, dL, lambda float64) (*Release, error) {
	r := &Release{M: m, W: w, N: n, U: u, DL: dL, Lambda: lambda}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// validate checks the receiver's parameters against their physical
// ranges so that the evaluation methods never have to.
func (r *Release) validate() error {
	checks := []struct {
		param  string
		value  float64
		ok     bool
		reason string
	}{
		{"releaseMass", r.M, r.M > 0, "the released mass must be positive"},
		{"crossSectionArea", r.W, r.W > 0, "the cross-sectional area must be positive"},
		{"porosity", r.N, r.N > 0 && r.N <= 1, "the porosity must be in (0, 1]"},
		{"seepageVelocity", r.U, true, "the seepage velocity must be finite"},
		{"longitudinalDispersion", r.DL, r.DL > 0, "the dispersion coefficient must be positive"},
		{"decayRate", r.Lambda, r.Lambda >= 0, "the decay rate must be ≥ 0"},
	}
	for _, c := range checks {
		// Every parameter must additionally be finite; NaN also fails
		// the ordered comparisons above.
		if !c.ok || math.IsNaN(c.value) || math.IsInf(c.value, 0) {
			return &ParameterError{Param: c.param, Value: c.value, Reason: c.reason}
		}
	}
	return nil
}

// Concentration returns the solute concentration [kg/m³] at distance x
// [m] downgradient of the release point, t [day] after the release.
//
// The solution is undefined at t ≤ 0 and a DomainError is returned
// there. When the evaluation point is far enough outside the plume
// that the exponent falls below ExpUnderflow, the result is exactly
// zero. A non-finite leading coefficient returns an OverflowError.
// Results are never negative, NaN, or infinite.
func (r *Release) Concentration(x, t float64) (float64, error) {
	if t <= 0 {
		return 0, &DomainError{T: t}
	}
	coeff := r.M / (2 * r.N * r.W * math.Sqrt(math.Pi*r.DL*t))
	if math.IsInf(coeff, 0) || math.IsNaN(coeff) {
		return 0, &OverflowError{Coeff: coeff, X: x, T: t}
	}
	xr := x - r.U*t // distance from the advective front
	exponent := -r.Lambda*t - xr*xr/(4*r.DL*t)
	if exponent < ExpUnderflow {
		return 0, nil
	}
	c := coeff * math.Exp(exponent)
	if c < 0 { // rounding can leave a tiny negative residue
		c = 0
	}
	return c, nil
}

// Front returns the position of the advective front x = u·t [m] at
// time t [day]. For a decay-free release this is also the position of
// the concentration peak.
func (r *Release) Front(t float64) float64 {
	return r.U * t
}
