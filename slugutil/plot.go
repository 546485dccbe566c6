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

package slugutil

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"sort"

	"github.com/ctessum/plotextra"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/slug"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// lineColors is the cycle of colors used to distinguish plotted series.
var lineColors = []color.NRGBA{
	{0, 0, 0, 255},
	{230, 97, 1, 255},
	{94, 60, 153, 255},
	{27, 158, 119, 255},
	{166, 30, 60, 255},
}

// profileXYs rearranges a profile for plotting.
func profileXYs(p slug.Profile) plotter.XYs {
	out := make(plotter.XYs, len(p))
	for i, s := range p {
		out[i].X = s.X
		out[i].Y = s.C
	}
	return out
}

// curveXYs rearranges a breakthrough curve for plotting.
func curveXYs(c slug.Curve) plotter.XYs {
	out := make(plotter.XYs, len(c))
	for i, pt := range c {
		out[i].X = pt.T
		out[i].Y = pt.C
	}
	return out
}

// addThresholds draws the regulatory standard and the detection limit
// as dashed horizontal lines spanning [a0, a1] on the horizontal axis.
func addThresholds(p *plot.Plot, a0, a1, standard, detection float64) error {
	std, err := plotter.NewLine(plotter.XYs{{a0, standard}, {a1, standard}})
	if err != nil {
		return err
	}
	std.Color = color.NRGBA{255, 0, 0, 255}
	std.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	det, err := plotter.NewLine(plotter.XYs{{a0, detection}, {a1, detection}})
	if err != nil {
		return err
	}
	det.Color = color.NRGBA{127, 127, 127, 255}
	det.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
	p.Add(std, det)
	p.Legend.Add("standard", std)
	p.Legend.Add("detection", det)
	return nil
}

// ProfilePlot renders the concentration profile of the release along
// positions xs [m], one line per evaluation time in ts [day], with the
// screening thresholds drawn as horizontal lines.
func ProfilePlot(r *slug.Release, ts, xs []float64, standard, detection float64) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = "Slug release concentration profile"
	p.X.Label.Text = "Distance from release (m)"
	p.Y.Label.Text = "Concentration (kg/m³)"
	p.Legend.Top = true
	for i, t := range ts {
		prof, err := r.Profile(xs, t)
		if err != nil {
			return nil, err
		}
		l, err := plotter.NewLine(profileXYs(prof))
		if err != nil {
			return nil, err
		}
		l.Color = lineColors[i%len(lineColors)]
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("t=%g d", t), l)
	}
	if err := addThresholds(p, xs[0], xs[len(xs)-1], standard, detection); err != nil {
		return nil, err
	}
	return p, nil
}

// CurvePlot renders the breakthrough curve at monitoring position x [m]
// over times ts [day], with the screening thresholds drawn as
// horizontal lines.
func CurvePlot(r *slug.Release, x float64, ts []float64, standard, detection float64) (*plot.Plot, error) {
	c, err := r.Curve(x, ts)
	if err != nil {
		return nil, err
	}
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = fmt.Sprintf("Breakthrough at x=%g m", x)
	p.X.Label.Text = "Time since release (day)"
	p.Y.Label.Text = "Concentration (kg/m³)"
	p.Legend.Top = true
	l, err := plotter.NewLine(curveXYs(c))
	if err != nil {
		return nil, err
	}
	l.Color = lineColors[0]
	p.Add(l)
	p.Legend.Add("concentration", l)
	if err := addThresholds(p, ts[0], ts[len(ts)-1], standard, detection); err != nil {
		return nil, err
	}
	return p, nil
}

// SensitivityPlot renders the profiles of a parameter sweep, one line
// per variant. m is the profile matrix returned by the sweep, with one
// row per result.
func SensitivityPlot(results []slug.SensitivityResult, m *sparse.DenseArray, xs []float64) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = "Parameter sweep"
	p.X.Label.Text = "Distance from release (m)"
	p.Y.Label.Text = "Concentration (kg/m³)"
	p.Legend.Top = true
	for i, res := range results {
		xys := make(plotter.XYs, len(xs))
		for j := range xs {
			xys[j].X = xs[j]
			xys[j].Y = m.Get(i, j)
		}
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, err
		}
		l.Color = lineColors[i%len(lineColors)]
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%s=%g", res.Param, res.Value), l)
	}
	return p, nil
}

// A fieldGrid adapts a concentration field to the heatmap grid
// interface: columns are positions and rows are times.
type fieldGrid struct {
	f      *sparse.DenseArray
	ts, xs []float64
}

func (g fieldGrid) Dims() (c, r int)   { return len(g.xs), len(g.ts) }
func (g fieldGrid) Z(c, r int) float64 { return g.f.Get(r, c) }
func (g fieldGrid) X(c int) float64    { return g.xs[c] }
func (g fieldGrid) Y(r int) float64    { return g.ts[r] }

// FieldPlot renders the time × position concentration field of the
// release as a heatmap. Concentration fields are heavily skewed toward
// the early-time peak, so the color scale is broken at the 99.9th
// percentile to keep the rest of the plume visible next to it.
func FieldPlot(r *slug.Release, ts, xs []float64) (*plot.Plot, error) {
	f, err := r.Field(ts, xs)
	if err != nil {
		return nil, err
	}
	max := floats.Max(f.Elements)
	if max <= 0 {
		return nil, fmt.Errorf("slug: cannot plot a field with no positive concentrations")
	}
	cm1 := moreland.ExtendedBlackBody()
	cm2, err := moreland.NewLuminance([]color.Color{
		color.NRGBA{G: 176, A: 255},
		color.NRGBA{G: 255, A: 255},
	})
	if err != nil {
		return nil, err
	}
	cm := &plotextra.BrokenColorMap{
		Base:     cm1,
		OverFlow: palette.Reverse(cm2),
	}
	cm.SetMin(0)
	cm.SetMax(max)
	cut := percentile(f.Elements, 0.999)
	if cut <= 0 || cut >= max {
		// Small fields can put the percentile at either extreme.
		cut = max * 0.9
	}
	cm.SetHighCut(cut)
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Title.Text = "Concentration field (kg/m³)"
	p.X.Label.Text = "Distance from release (m)"
	p.Y.Label.Text = "Time since release (day)"
	p.Add(plotter.NewHeatMap(fieldGrid{f: f, ts: ts, xs: xs}, cm.Palette(255)))
	return p, nil
}

// percentile returns percentile p (range [0,1]) of the given data.
func percentile(data []float64, p float64) float64 {
	tmp := make([]float64, len(data))
	copy(tmp, data)
	sort.Float64s(tmp)
	return tmp[roundInt(p*float64(len(tmp)))-1]
}

// roundInt rounds a float to an integer
func roundInt(x float64) int {
	return int(x + 0.5)
}

// renderPNG draws the plot to w as a PNG image.
func renderPNG(p *plot.Plot, w io.Writer, width, height vg.Length) error {
	img := vgimg.New(width, height)
	dc := draw.New(img)
	p.Draw(dc)
	png := vgimg.PngCanvas{Canvas: img}
	_, err := png.WriteTo(w)
	return err
}

// WritePlot writes the plot to fileName as a PNG image.
func WritePlot(fileName string, p *plot.Plot) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("slug: creating plot file: %v", err)
	}
	if err := renderPNG(p, f, 6*vg.Inch, 4*vg.Inch); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
