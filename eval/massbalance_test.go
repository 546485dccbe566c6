package eval

import (
	"math"
	"testing"

	"github.com/spatialmodel/slug"
)

// TestMassBalance checks that the mass recovered by integrating a
// concentration profile over the aquifer cross-section matches the
// released mass, allowing for first-order decay. The transect covers
// ten standard deviations on either side of the plume center, so the
// truncation error is negligible compared to the tolerance.
func TestMassBalance(t *testing.T) {
	const (
		m  = 100.0
		w  = 20.0
		n  = 0.3
		u  = 0.5
		dL = 1.0
		dx = 0.2
	)
	for _, lambda := range []float64{0, 0.01} {
		r, err := slug.NewRelease(m, w, n, u, dL, lambda)
		if err != nil {
			t.Fatal(err)
		}
		for _, tt := range []float64{10, 100, 400} {
			center := u * tt
			sigma := math.Sqrt(2 * dL * tt)
			nx := int(20*sigma/dx) + 1
			xs := slug.Positions(center-10*sigma, center+10*sigma, nx)
			p, err := r.Profile(xs, tt)
			if err != nil {
				t.Fatal(err)
			}
			var mass float64
			for i := 1; i < len(p); i++ {
				mass += 0.5 * (p[i].C + p[i-1].C) * (p[i].X - p[i-1].X)
			}
			mass *= n * w
			want := m * math.Exp(-lambda*tt)
			if rel := math.Abs(mass-want) / want; rel > 1e-3 {
				t.Errorf("lambda=%g, t=%g: recovered mass %g, want %g (relative error %g)",
					lambda, tt, mass, want, rel)
			}
		}
	}
}

// TestDecayScaling checks that first-order decay scales the whole
// solution by exp(-lambda*t) without changing its shape.
func TestDecayScaling(t *testing.T) {
	r0, err := slug.NewRelease(100, 20, 0.3, 0.5, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	const lambda = 0.02
	r1, err := slug.NewRelease(100, 20, 0.3, 0.5, 1, lambda)
	if err != nil {
		t.Fatal(err)
	}
	for _, x := range []float64{-10, 0, 25, 50, 80} {
		for _, tt := range []float64{5, 50, 150} {
			c0, err := r0.Concentration(x, tt)
			if err != nil {
				t.Fatal(err)
			}
			c1, err := r1.Concentration(x, tt)
			if err != nil {
				t.Fatal(err)
			}
			want := c0 * math.Exp(-lambda*tt)
			if math.Abs(c1-want) > 1e-12*want {
				t.Errorf("x=%g, t=%g: concentration with decay %g, want %g", x, tt, c1, want)
			}
		}
	}
}
