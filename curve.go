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

// A CurvePoint is a single point of a breakthrough curve.
type CurvePoint struct {
	T float64 `desc:"Time since release" units:"day"`
	C float64 `desc:"Solute concentration" units:"kg m⁻³"`
}

// A Curve is a breakthrough curve: the concentration history at a
// fixed monitoring position (e.g. a downgradient well), ordered by
// ascending time.
type Curve []CurvePoint

// Curve evaluates the concentration history at position x [m] for the
// given times [day], which must be ascending and strictly positive.
// The numeric policies of Concentration apply to every point; the
// first evaluation error (including any t ≤ 0) aborts the batch.
func (r *Release) Curve(x float64, ts []float64) (Curve, error) {
	c := make(Curve, len(ts))
	for i, t := range ts {
		v, err := r.Concentration(x, t)
		if err != nil {
			return nil, err
		}
		c[i] = CurvePoint{T: t, C: v}
	}
	return c, nil
}

// Times returns the curve times [day].
func (c Curve) Times() []float64 {
	ts := make([]float64, len(c))
	for i, p := range c {
		ts[i] = p.T
	}
	return ts
}

// Concentrations returns the curve concentrations [kg/m³].
func (c Curve) Concentrations() []float64 {
	cs := make([]float64, len(c))
	for i, p := range c {
		cs[i] = p.C
	}
	return cs
}

// CurveStats summarizes a breakthrough curve against a regulatory
// standard and a detection limit. Fields are nil when the event never
// occurs within the sampled times; an empty curve yields all-nil
// statistics.
type CurveStats struct {
	// Peak is the point with the highest concentration, ties broken
	// by earliest time.
	Peak *CurvePoint

	// FirstDetection is the first sampled time [day] at which the
	// concentration strictly exceeds the detection limit.
	FirstDetection *float64

	// FirstExceedance is the first sampled time [day] at which the
	// concentration strictly exceeds the regulatory standard.
	FirstExceedance *float64

	// Clearance is the first sampled time [day] at or after the peak
	// at which a curve that has exceeded the standard has fallen back
	// to or below it. It is nil if the standard is never exceeded or
	// if the curve is still above the standard at its last sample.
	Clearance *float64
}

// Stats summarizes the curve against a regulatory standard and a
// detection limit, both in kg/m³. An empty curve is a valid no-data
// result, not an error.
func (c Curve) Stats(standard, detection float64) *CurveStats {
	s := new(CurveStats)
	peakIdx := -1
	for i := range c {
		if s.Peak == nil || c[i].C > s.Peak.C {
			peak := c[i]
			s.Peak = &peak
			peakIdx = i
		}
		if s.FirstDetection == nil && c[i].C > detection {
			t := c[i].T
			s.FirstDetection = &t
		}
		if s.FirstExceedance == nil && c[i].C > standard {
			t := c[i].T
			s.FirstExceedance = &t
		}
	}
	if s.FirstExceedance != nil {
		for i := peakIdx; i < len(c); i++ {
			if c[i].C <= standard {
				t := c[i].T
				s.Clearance = &t
				break
			}
		}
	}
	return s
}

// Times returns n evenly spaced times covering [t0, t1], inclusive of
// both endpoints, for use with Curve and Field. It returns nil if
// n < 2, t0 ≤ 0, or t1 ≤ t0.
func Times(t0, t1 float64, n int) []float64 {
	if n < 2 || t0 <= 0 || t1 <= t0 {
		return nil
	}
	ts := make([]float64, n)
	d := (t1 - t0) / float64(n-1)
	for i := range ts {
		ts[i] = t0 + float64(i)*d
	}
	ts[n-1] = t1
	return ts
}
