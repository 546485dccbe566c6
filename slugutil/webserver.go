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
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/slug"
	"github.com/spatialmodel/slug/internal/hash"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// webLog receives log messages from the web interface handlers.
var webLog = logrus.StandardLogger()

var (
	plotCache     *requestcache.Cache
	plotCacheOnce sync.Once
)

// A plotRequest holds everything needed to render one preview image
// for the web interface. The fields are exported so that the request
// can be hashed into a cache key.
type plotRequest struct {
	Kind      string // "profile", "curve", or "field"
	Release   slug.Release
	Standard  float64 // regulatory standard [kg/m³]
	Detection float64 // detection limit [kg/m³]
	T         float64 // profile snapshot time [day]
	Well      float64 // breakthrough position [m]
	T0, T1    float64
	Nt        int
	X0, X1    float64
	Nx        int
}

// RegisterPlotHandlers registers the preview image handlers used by
// the web interface on mux.
func RegisterPlotHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/profile.png", servePlot("profile"))
	mux.HandleFunc("/curve.png", servePlot("curve"))
	mux.HandleFunc("/field.png", servePlot("field"))
}

// servePlot returns a handler that renders the named preview plot from
// the current configuration. Query parameters override individual
// configuration values so that the preview can be explored without
// rerunning the model.
func servePlot(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		webLog.WithFields(logrus.Fields{
			"url":  req.URL.String(),
			"addr": req.RemoteAddr,
		}).Info("slug plot request")
		pr, err := plotRequestFromCfg(kind, req.URL.Query())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		plotCacheOnce.Do(func() {
			plotCache = requestcache.NewCache(renderPlotRequest, runtime.GOMAXPROCS(-1),
				requestcache.Deduplicate(), requestcache.Memory(100))
		})
		key := fmt.Sprintf("plot_%s", hash.Hash(pr))
		r := plotCache.NewRequest(req.Context(), pr, key)
		iface, err := r.Result()
		if err != nil {
			webLog.WithError(err).Errorf("rendering %s preview", kind)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(iface.([]byte))
	}
}

// plotRequestFromCfg assembles a plot request for the named plot kind
// from the current configuration, applies any query parameter
// overrides, and re-validates the resulting parameters.
func plotRequestFromCfg(kind string, q url.Values) (plotRequest, error) {
	r, err := releaseFromCfg(Cfg, outChan())
	if err != nil {
		return plotRequest{}, err
	}
	pr := plotRequest{
		Kind:      kind,
		Release:   *r,
		Standard:  Cfg.GetFloat64("Standard"),
		Detection: Cfg.GetFloat64("Detection"),
		T:         Cfg.GetFloat64("T"),
		Well:      Cfg.GetFloat64("Well"),
		T0:        Cfg.GetFloat64("T0"),
		T1:        Cfg.GetFloat64("T1"),
		Nt:        Cfg.GetInt("Nt"),
		X0:        Cfg.GetFloat64("X0"),
		X1:        Cfg.GetFloat64("X1"),
		Nx:        Cfg.GetInt("Nx"),
	}
	for _, f := range []struct {
		name string
		dst  *float64
	}{
		{"m", &pr.Release.M},
		{"w", &pr.Release.W},
		{"n", &pr.Release.N},
		{"u", &pr.Release.U},
		{"dl", &pr.Release.DL},
		{"lambda", &pr.Release.Lambda},
		{"standard", &pr.Standard},
		{"detection", &pr.Detection},
		{"t", &pr.T},
		{"well", &pr.Well},
		{"t0", &pr.T0},
		{"t1", &pr.T1},
		{"x0", &pr.X0},
		{"x1", &pr.X1},
	} {
		s := q.Get(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return plotRequest{}, fmt.Errorf("slug: parsing query parameter %s=%q: %v", f.name, s, err)
		}
		*f.dst = v
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{
		{"nt", &pr.Nt},
		{"nx", &pr.Nx},
	} {
		s := q.Get(f.name)
		if s == "" {
			continue
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return plotRequest{}, fmt.Errorf("slug: parsing query parameter %s=%q: %v", f.name, s, err)
		}
		*f.dst = v
	}
	// Overrides may have moved parameters out of their physical
	// ranges, so validate again.
	rr, err := slug.NewRelease(pr.Release.M, pr.Release.W, pr.Release.N,
		pr.Release.U, pr.Release.DL, pr.Release.Lambda)
	if err != nil {
		return plotRequest{}, err
	}
	pr.Release = *rr
	if _, _, err := checkThresholds(pr.Standard, pr.Detection); err != nil {
		return plotRequest{}, err
	}
	switch kind {
	case "profile":
		_, err = checkPositions(pr.X0, pr.X1, pr.Nx)
	case "curve":
		_, err = checkTimes(pr.T0, pr.T1, pr.Nt)
	case "field":
		if _, err = checkTimes(pr.T0, pr.T1, pr.Nt); err == nil {
			_, err = checkPositions(pr.X0, pr.X1, pr.Nx)
		}
	}
	if err != nil {
		return plotRequest{}, err
	}
	return pr, nil
}

// renderPlotRequest renders the requested preview plot to PNG bytes.
// The request has already been validated, so the transect and time
// range are known to be well formed.
func renderPlotRequest(ctx context.Context, request interface{}) (interface{}, error) {
	pr := request.(plotRequest)
	r := &pr.Release
	var p *plot.Plot
	var err error
	switch pr.Kind {
	case "profile":
		p, err = ProfilePlot(r, []float64{pr.T}, slug.Positions(pr.X0, pr.X1, pr.Nx),
			pr.Standard, pr.Detection)
	case "curve":
		p, err = CurvePlot(r, pr.Well, slug.Times(pr.T0, pr.T1, pr.Nt),
			pr.Standard, pr.Detection)
	case "field":
		p, err = FieldPlot(r, slug.Times(pr.T0, pr.T1, pr.Nt),
			slug.Positions(pr.X0, pr.X1, pr.Nx))
	default:
		return nil, fmt.Errorf("slug: unknown plot kind %q", pr.Kind)
	}
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := renderPNG(p, &buf, 6*vg.Inch, 4*vg.Inch); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
