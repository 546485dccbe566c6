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

// A Sample is a single point of a concentration profile.
type Sample struct {
	X float64 `desc:"Distance downgradient of the release" units:"m"`
	C float64 `desc:"Solute concentration" units:"kg m⁻³"`
}

// A Profile is the plume at a fixed time: concentration samples
// ordered by ascending position. The order is the caller's spatial
// order; it is assumed, not re-checked, by the statistics methods.
type Profile []Sample

// Profile evaluates the plume at time t [day] for the given positions
// [m], which must be supplied in ascending order for the statistics
// methods to be meaningful. The numeric policies of Concentration
// apply to every sample; the first evaluation error aborts the batch.
func (r *Release) Profile(xs []float64, t float64) (Profile, error) {
	p := make(Profile, len(xs))
	for i, x := range xs {
		c, err := r.Concentration(x, t)
		if err != nil {
			return nil, err
		}
		p[i] = Sample{X: x, C: c}
	}
	return p, nil
}

// Positions returns the sample positions [m].
func (p Profile) Positions() []float64 {
	xs := make([]float64, len(p))
	for i, s := range p {
		xs[i] = s.X
	}
	return xs
}

// Concentrations returns the sample concentrations [kg/m³].
func (p Profile) Concentrations() []float64 {
	cs := make([]float64, len(p))
	for i, s := range p {
		cs[i] = s.C
	}
	return cs
}

// An Interval is a range of positions [m]. It is an envelope: the
// minimum and maximum position satisfying some predicate. If the
// region satisfying the predicate is disjoint, the gaps are not
// reported.
type Interval struct {
	Min, Max float64
}

// Width returns the extent of the interval [m].
func (iv *Interval) Width() float64 {
	return iv.Max - iv.Min
}

// PlumeStats summarizes a Profile against a regulatory standard and a
// detection limit. Fields are nil when the quantity does not exist in
// the profile; an empty profile yields all-nil statistics.
// PlumeStats is derived data, recomputed on demand and never stored by
// the model.
type PlumeStats struct {
	// Peak is the sample with the highest concentration. When several
	// samples tie exactly, the one earliest in profile order is
	// reported.
	Peak *Sample

	// Exceedance spans the samples whose concentration strictly
	// exceeds the regulatory standard.
	Exceedance *Interval

	// Detection spans the samples whose concentration strictly
	// exceeds the detection limit.
	Detection *Interval
}

// Stats summarizes the profile against a regulatory standard and a
// detection limit, both in kg/m³. A detection limit below the standard
// is expected but not required. An empty profile is a valid no-data
// result, not an error.
func (p Profile) Stats(standard, detection float64) *PlumeStats {
	return &PlumeStats{
		Peak:       p.peak(),
		Exceedance: p.envelope(standard),
		Detection:  p.envelope(detection),
	}
}

// peak returns the sample with the highest concentration, ties broken
// by profile order, or nil for an empty profile.
func (p Profile) peak() *Sample {
	var peak *Sample
	for i := range p {
		if peak == nil || p[i].C > peak.C {
			s := p[i]
			peak = &s
		}
	}
	return peak
}

// envelope returns the minimum-to-maximum position among samples whose
// concentration strictly exceeds limit, or nil if there are none. A
// profile with disjoint regions above the limit yields their combined
// envelope, never a zero-width interval at an arbitrary position.
func (p Profile) envelope(limit float64) *Interval {
	var iv *Interval
	for _, s := range p {
		if !(s.C > limit) {
			continue
		}
		if iv == nil {
			iv = &Interval{Min: s.X, Max: s.X}
			continue
		}
		if s.X < iv.Min {
			iv.Min = s.X
		}
		if s.X > iv.Max {
			iv.Max = s.X
		}
	}
	return iv
}

// Positions returns n evenly spaced positions covering [x0, x1],
// inclusive of both endpoints, for use with Profile. It returns nil
// if n < 2 or x1 ≤ x0.
func Positions(x0, x1 float64, n int) []float64 {
	if n < 2 || x1 <= x0 {
		return nil
	}
	xs := make([]float64, n)
	d := (x1 - x0) / float64(n-1)
	for i := range xs {
		xs[i] = x0 + float64(i)*d
	}
	xs[n-1] = x1
	return xs
}
