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

package risk

import (
	"fmt"
	"testing"
)

func TestDefaultCDI(t *testing.T) {
	var tests = []struct {
		in, out float64
	}{
		{
			in:  0,
			out: 0,
		},
		{
			in:  0.5,
			out: 0.0136986301369863,
		},
		{
			in:  1,
			out: 0.0273972602739726,
		},
		{
			in:  73,
			out: 2,
		},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.in), func(t *testing.T) {
			have := Default.CDI(test.in)
			if have != test.out {
				t.Errorf("%g = %g, want %g", test.in, have, test.out)
			}
		})
	}
}

func TestLifetimeCDI(t *testing.T) {
	a := Lifetime.CDI(1)
	aWant := 0.011741682974559686
	if a != aWant {
		t.Errorf("for c=%g: %g != %g", 1.0, a, aWant)
	}
	b := Lifetime.CDI(0)
	bWant := 0.0
	if b != bWant {
		t.Errorf("for c=%g: %g != %g", 0.0, b, bWant)
	}
}

func TestHQ(t *testing.T) {
	a := HQ(0.002, 0.004)
	aWant := 0.5
	if a != aWant {
		t.Errorf("HQ(0.002, 0.004) = %g, want %g", a, aWant)
	}
	b := HQ(0, 0.004)
	bWant := 0.0
	if b != bWant {
		t.Errorf("HQ(0, 0.004) = %g, want %g", b, bWant)
	}
}

func TestIELCR(t *testing.T) {
	a := IELCR(0.25, 0.2)
	aWant := 0.05
	if a != aWant {
		t.Errorf("IELCR(0.25, 0.2) = %g, want %g", a, aWant)
	}
}

func TestHQLevel(t *testing.T) {
	var tests = []struct {
		in  float64
		out string
	}{
		{
			in:  0.5,
			out: "adverse noncancer effects unlikely",
		},
		{
			in:  1,
			out: "adverse noncancer effects unlikely",
		},
		{
			in:  2,
			out: "potential for adverse noncancer effects",
		},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.in), func(t *testing.T) {
			have := HQLevel(test.in)
			if have != test.out {
				t.Errorf("%g = %s, want %s", test.in, have, test.out)
			}
		})
	}
}

func TestRiskLevel(t *testing.T) {
	var tests = []struct {
		in  float64
		out string
	}{
		{
			in:  1e-7,
			out: "de minimis",
		},
		{
			in:  1e-6,
			out: "within the acceptable risk range",
		},
		{
			in:  1e-4,
			out: "within the acceptable risk range",
		},
		{
			in:  2e-4,
			out: "above the acceptable risk range",
		},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.in), func(t *testing.T) {
			have := RiskLevel(test.in)
			if have != test.out {
				t.Errorf("%g = %s, want %s", test.in, have, test.out)
			}
		})
	}
}

// This example screens a benzene concentration in drinking water
// against noncancer and cancer benchmarks.
func Example() {
	const (
		// c is the benzene concentration in well water [mg/L],
		// ten times the federal maximum contaminant level.
		c = 0.05

		// rfd is the oral reference dose for benzene [mg/(kg·day)].
		rfd = 0.004

		// slope is the oral slope factor for benzene
		// [(mg/(kg·day))⁻¹].
		slope = 0.055
	)

	// For noncancer effects the dose is averaged over the exposure
	// duration.
	hq := HQ(Default.CDI(c), rfd)
	fmt.Printf("hazard quotient: %.2f (%s)\n", hq, HQLevel(hq))

	// For carcinogens the dose is averaged over a 70-year lifetime.
	r := IELCR(Lifetime.CDI(c), slope)
	fmt.Printf("cancer risk: %.1e (%s)\n", r, RiskLevel(r))

	// Output:
	// hazard quotient: 0.34 (adverse noncancer effects unlikely)
	// cancer risk: 3.2e-05 (within the acceptable risk range)
}
