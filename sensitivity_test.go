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
	"math"
	"testing"
)

func TestSensitivity(t *testing.T) {
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	xs := Positions(-50, 100, 151)
	results, m, err := r.Sensitivity("U", VelocityFactors, xs, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(VelocityFactors) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(VelocityFactors))
	}
	if m.Shape[0] != len(VelocityFactors) || m.Shape[1] != len(xs) {
		t.Fatalf("matrix shape %v, want [%d %d]", m.Shape, len(VelocityFactors), len(xs))
	}

	// Scaling the velocity moves the advective front, and with it the
	// profile peak.
	wantPeakX := []float64{5, 8, 10, 15, 20}
	for i, res := range results {
		if res.Param != "U" {
			t.Errorf("variant %d: param %q, want U", i, res.Param)
		}
		if res.Value != 0.1*VelocityFactors[i] {
			t.Errorf("variant %d: value %g, want %g", i, res.Value, 0.1*VelocityFactors[i])
		}
		if res.Release.U != res.Value {
			t.Errorf("variant %d: release has U=%g, want %g", i, res.Release.U, res.Value)
		}
		if res.Peak == nil {
			t.Fatalf("variant %d: nil peak", i)
		}
		if res.Peak.X != wantPeakX[i] {
			t.Errorf("variant %d: peak at x=%g, want %g", i, res.Peak.X, wantPeakX[i])
		}
	}

	// The factor-1 variant reproduces the base release.
	if different(m.Get(2, 60), 6.649038007, testTolerance) {
		t.Errorf("base variant peak = %g, want %g", m.Get(2, 60), 6.649038007)
	}
}

func TestSensitivityErrors(t *testing.T) {
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	xs := Positions(-50, 100, 151)

	_, _, err = r.Sensitivity("M", VelocityFactors, xs, 100)
	want := `slug: unknown sweep parameter "M"; must be "U", "DL", or "Lambda"`
	if err == nil || err.Error() != want {
		t.Errorf("error %v, want %q", err, want)
	}

	// A zero factor drives the dispersion coefficient out of its
	// physical range.
	_, _, err = r.Sensitivity("DL", []float64{0}, xs, 100)
	if err == nil {
		t.Fatal("want an error for a zero dispersion multiplier")
	}
	if _, ok := err.(*ParameterError); !ok {
		t.Errorf("error has type %T, want *ParameterError", err)
	}
}

func TestDecaySweep(t *testing.T) {
	r, err := NewRelease(100, 2, 0.3, 0.1, 0.5, 0)
	if err != nil {
		t.Fatal(err)
	}
	xs := Positions(-50, 100, 151)
	results, m, err := r.DecaySweep(DecayRates, xs, 100)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(DecayRates) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(DecayRates))
	}
	if m.Shape[0] != len(DecayRates) {
		t.Fatalf("matrix shape %v, want %d rows", m.Shape, len(DecayRates))
	}

	// The zero-decay variant reproduces the base release, and each
	// successive rate lowers the peak.
	if different(results[0].Peak.C, 6.649038007, testTolerance) {
		t.Errorf("conservative peak = %g, want %g", results[0].Peak.C, 6.649038007)
	}
	for i := 1; i < len(results); i++ {
		if !(results[i].Peak.C < results[i-1].Peak.C) {
			t.Errorf("peak does not decrease from rate %g (%g) to rate %g (%g)",
				results[i-1].Value, results[i-1].Peak.C, results[i].Value, results[i].Peak.C)
		}
	}
	ratio := results[1].Peak.C / results[0].Peak.C
	if different(ratio, math.Exp(-0.1), 1.e-12) {
		t.Errorf("peak ratio for λ=0.001 is %g, want %g", ratio, math.Exp(-0.1))
	}
}
