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

func TestNewRelease(t *testing.T) {
	var tests = []struct {
		m, w, n, u, dL, lambda float64
		err                    string
	}{
		{m: 100, w: 2, n: 0.3, u: 0.1, dL: 0.5},
		{m: 100, w: 2, n: 1, u: -0.5, dL: 0.5, lambda: 0.01},
		{m: 0, w: 2, n: 0.3, u: 0.1, dL: 0.5,
			err: "slug: releaseMass=0 but the released mass must be positive"},
		{m: -1, w: 2, n: 0.3, u: 0.1, dL: 0.5,
			err: "slug: releaseMass=-1 but the released mass must be positive"},
		{m: math.NaN(), w: 2, n: 0.3, u: 0.1, dL: 0.5,
			err: "slug: releaseMass=NaN but the released mass must be positive"},
		{m: 100, w: 0, n: 0.3, u: 0.1, dL: 0.5,
			err: "slug: crossSectionArea=0 but the cross-sectional area must be positive"},
		{m: 100, w: 2, n: 0, u: 0.1, dL: 0.5,
			err: "slug: porosity=0 but the porosity must be in (0, 1]"},
		{m: 100, w: 2, n: 1.5, u: 0.1, dL: 0.5,
			err: "slug: porosity=1.5 but the porosity must be in (0, 1]"},
		{m: 100, w: 2, n: 0.3, u: math.NaN(), dL: 0.5,
			err: "slug: seepageVelocity=NaN but the seepage velocity must be finite"},
		{m: 100, w: 2, n: 0.3, u: math.Inf(1), dL: 0.5,
			err: "slug: seepageVelocity=+Inf but the seepage velocity must be finite"},
		{m: 100, w: 2, n: 0.3, u: 0.1, dL: 0,
			err: "slug: longitudinalDispersion=0 but the dispersion coefficient must be positive"},
		{m: 100, w: 2, n: 0.3, u: 0.1, dL: 0.5, lambda: -0.001,
			err: "slug: decayRate=-0.001 but the decay rate must be ≥ 0"},
	}

	for i, test := range tests {
		r, err := NewRelease(test.m, test.w, test.n, test.u, test.dL, test.lambda)
		if test.err == "" {
			if err != nil {
				t.Errorf("test %d: unexpected error %v", i, err)
			} else if r == nil {
				t.Errorf("test %d: nil release without an error", i)
			}
			continue
		}
		if err == nil {
			t.Errorf("test %d: want error %q", i, test.err)
			continue
		}
		if err.Error() != test.err {
			t.Errorf("test %d: error %q != %q", i, err.Error(), test.err)
		}
		if _, ok := err.(*ParameterError); !ok {
			t.Errorf("test %d: error has type %T, want *ParameterError", i, err)
		}
	}
}

func TestConcentration(t *testing.T) {
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}

	// At the advective front the exponential term is one, so the
	// concentration equals the leading coefficient
	// m/(2·n·W·√(π·DL·t)).
	c, err := r.Concentration(10, 100)
	if err != nil {
		t.Fatal(err)
	}
	if different(c, 6.649038007, testTolerance) {
		t.Errorf("c(10, 100) = %g, want %g", c, 6.649038007)
	}

	// Ten meters off the front the exponent is -0.5.
	c, err = r.Concentration(20, 100)
	if err != nil {
		t.Fatal(err)
	}
	if different(c, 4.032845409, testTolerance) {
		t.Errorf("c(20, 100) = %g, want %g", c, 4.032845409)
	}

	// Far outside the plume the exponential term underflows and the
	// result must be exactly zero, not merely small.
	c, err = r.Concentration(10000, 100)
	if err != nil {
		t.Fatal(err)
	}
	if c != 0 {
		t.Errorf("c(10000, 100) = %g, want exactly 0", c)
	}
}

func TestConcentrationRange(t *testing.T) {
	// The closed form is nonnegative and finite at any position and
	// positive time, including far outside the plume.
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{-1e6, -50, 0, 10, 1e6} {
		for _, tEval := range []float64{1e-6, 1, 100, 1e6} {
			c, err := r.Concentration(x, tEval)
			if err != nil {
				t.Fatalf("x=%g, t=%g: %v", x, tEval, err)
			}
			if c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
				t.Errorf("c(%g, %g) = %g", x, tEval, c)
			}
		}
	}
}

func TestConcentrationDomain(t *testing.T) {
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, bad := range []float64{0, -5} {
		for _, x := range []float64{-5, 0, 10} {
			c, err := r.Concentration(x, bad)
			if err == nil {
				t.Errorf("x=%g, t=%g: want an error, got c=%g", x, bad, c)
				continue
			}
			if _, ok := err.(*DomainError); !ok {
				t.Errorf("t=%g: error has type %T, want *DomainError", bad, err)
			}
		}
	}
	_, err = r.Concentration(10, -5)
	want := "slug: time -5 day is outside the solution domain; t must be > 0"
	if err.Error() != want {
		t.Errorf("error %q != %q", err.Error(), want)
	}
}

func TestConcentrationOverflow(t *testing.T) {
	// Individually valid but degenerately small parameters underflow
	// the denominator of the leading coefficient.
	r, err := NewRelease(100, 1e-300, 1e-300, 0.1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	c, err := r.Concentration(0, 1)
	if err == nil {
		t.Fatalf("want an overflow error, got c=%g", c)
	}
	oerr, ok := err.(*OverflowError)
	if !ok {
		t.Fatalf("error has type %T, want *OverflowError", err)
	}
	if !math.IsInf(oerr.Coeff, 1) {
		t.Errorf("overflow coefficient = %g, want +Inf", oerr.Coeff)
	}
}

func TestConcentrationSymmetry(t *testing.T) {
	// Without decay the plume is a Gaussian centered on the advective
	// front, so concentrations equidistant from the front are equal.
	r, err := NewRelease(50, 2, 0.25, 0.5, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	front := r.Front(40)
	if front != 20 {
		t.Fatalf("front = %g, want 20", front)
	}
	for _, d := range []float64{0.25, 7.5, 12.25} {
		up, err := r.Concentration(front+d, 40)
		if err != nil {
			t.Fatal(err)
		}
		down, err := r.Concentration(front-d, 40)
		if err != nil {
			t.Fatal(err)
		}
		if up != down {
			t.Errorf("c(front+%g) = %g but c(front-%g) = %g", d, up, d, down)
		}
	}
}

func TestConcentrationDecay(t *testing.T) {
	// First-order decay scales the whole plume by exp(-λt).
	conservative, err := NewRelease(50, 2, 0.25, 0.5, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	decaying, err := NewRelease(50, 2, 0.25, 0.5, 1, 0.01)
	if err != nil {
		t.Fatal(err)
	}
	tEval := 40.0
	x := conservative.Front(tEval)
	c0, err := conservative.Concentration(x, tEval)
	if err != nil {
		t.Fatal(err)
	}
	cDecay, err := decaying.Concentration(x, tEval)
	if err != nil {
		t.Fatal(err)
	}
	if cDecay != c0*math.Exp(-0.01*tEval) {
		t.Errorf("decayed peak = %g, want %g", cDecay, c0*math.Exp(-0.01*tEval))
	}
	if !(cDecay < c0) {
		t.Errorf("decayed peak %g is not below conservative peak %g", cDecay, c0)
	}
}

// This example screens an accidental solvent release against a
// regulatory standard and a detection limit.
func Example() {
	// 100 kg of solute released instantaneously across a 2 m² flow
	// cross-section into an aquifer with porosity 0.3, seepage
	// velocity 0.1 m/day, and longitudinal dispersion 0.5 m²/day.
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0)
	if err != nil {
		fmt.Println(err)
		return
	}

	// The plume 100 days after the release, sampled every meter from
	// 50 m upgradient to 100 m downgradient.
	p, err := r.Profile(Positions(-50, 100, 151), 100)
	if err != nil {
		fmt.Println(err)
		return
	}

	// Compare against a 0.5 kg/m³ standard and a 0.05 kg/m³
	// detection limit.
	s := p.Stats(0.5, 0.05)
	mgL, err := MgPerL(Conc(s.Peak.C))
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Printf("peak: %.0f mg/L at x=%g m\n", mgL, s.Peak.X)
	fmt.Printf("above the standard: %g m to %g m\n", s.Exceedance.Min, s.Exceedance.Max)
	fmt.Printf("detectable: %g m to %g m\n", s.Detection.Min, s.Detection.Max)

	// Output:
	// peak: 6649 mg/L at x=10 m
	// above the standard: -12 m to 32 m
	// detectable: -21 m to 41 m
}
