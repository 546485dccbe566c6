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
	"io"
	"os"
	"time"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/slug"
	"github.com/spf13/cobra"
)

// newLogger creates a logger that writes both to the command output
// and to the log file at path logFile, and returns the logger together
// with the open file, which the caller must close.
func newLogger(cmd *cobra.Command, logFile string) (*logrus.Logger, *os.File, error) {
	logfile, err := os.Create(logFile)
	if err != nil {
		return nil, nil, fmt.Errorf("slug: problem creating log file: %v", err)
	}
	l := logrus.New()
	l.Out = io.MultiWriter(cmd.OutOrStdout(), logfile)
	return l, logfile, nil
}

// releaseFields returns the release parameters as structured log
// fields.
func releaseFields(r *slug.Release) logrus.Fields {
	return logrus.Fields{
		"M":      r.M,
		"W":      r.W,
		"N":      r.N,
		"U":      r.U,
		"DL":     r.DL,
		"Lambda": r.Lambda,
	}
}

// fmtInterval formats a plume interval for logging.
func fmtInterval(iv *slug.Interval) string {
	if iv == nil {
		return "none"
	}
	return fmt.Sprintf("%g m to %g m", iv.Min, iv.Max)
}

// fmtEvent formats a breakthrough event time for logging.
func fmtEvent(t *float64) string {
	if t == nil {
		return "never"
	}
	return fmt.Sprintf("%g d", *t)
}

// RunProfile evaluates a plume concentration profile at time t [day]
// over the positions xs [m] and writes the result to OutputFile.
//
// CobraCommand is the cobra.Command instance where RunProfile is
// called from. It is needed to print certain outputs to the web
// interface.
//
// LogFile is the path to the desired logfile location.
//
// OutputFile is the path to the desired output file location; the file
// format is chosen by its extension.
//
// PlotFile, if non-empty, is the path where a PNG plot of the profile
// should be written.
//
// OutputVariables specifies which model variables should be included
// in the output file.
//
// standard and detection are the regulatory standard and the detection
// limit [kg/m³] used for the plume statistics.
func RunProfile(CobraCommand *cobra.Command, LogFile, OutputFile, PlotFile string,
	OutputVariables map[string]string, r *slug.Release,
	standard, detection, t float64, xs []float64) error {

	startTime := time.Now()

	l, logfile, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return err
	}
	defer logfile.Close()

	o, err := slug.NewOutputter(OutputFile, OutputVariables, nil)
	if err != nil {
		return err
	}

	l.WithFields(releaseFields(r)).Infof("slug evaluating profile at t=%g d over %d positions", t, len(xs))

	p, err := r.Profile(xs, t)
	if err != nil {
		return err
	}
	stats := p.Stats(standard, detection)
	if stats.Peak == nil {
		l.Info("slug profile contains no samples")
	} else {
		l.WithFields(logrus.Fields{
			"peakX":      stats.Peak.X,
			"peakC":      stats.Peak.C,
			"exceedance": fmtInterval(stats.Exceedance),
			"detectable": fmtInterval(stats.Detection),
		}).Info("slug profile summary")
	}

	if err := o.Output(r, p.Records(t), standard, detection); err != nil {
		return err
	}
	l.Infof("slug wrote output to %s", OutputFile)

	if PlotFile != "" {
		pl, err := ProfilePlot(r, []float64{t}, xs, standard, detection)
		if err != nil {
			return err
		}
		if err := WritePlot(PlotFile, pl); err != nil {
			return err
		}
		l.Infof("slug wrote plot to %s", PlotFile)
	}

	elapsedTime := time.Since(startTime)
	l.Infof("Elapsed time: %f seconds", elapsedTime.Seconds())
	return nil
}

// RunCurve evaluates a breakthrough curve at monitoring position x [m]
// over the times ts [day] and writes the result to OutputFile. The
// remaining arguments are as in RunProfile.
func RunCurve(CobraCommand *cobra.Command, LogFile, OutputFile, PlotFile string,
	OutputVariables map[string]string, r *slug.Release,
	standard, detection, x float64, ts []float64) error {

	startTime := time.Now()

	l, logfile, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return err
	}
	defer logfile.Close()

	o, err := slug.NewOutputter(OutputFile, OutputVariables, nil)
	if err != nil {
		return err
	}

	l.WithFields(releaseFields(r)).Infof("slug evaluating breakthrough at x=%g m over %d times", x, len(ts))

	c, err := r.Curve(x, ts)
	if err != nil {
		return err
	}
	stats := c.Stats(standard, detection)
	if stats.Peak == nil {
		l.Info("slug curve contains no samples")
	} else {
		l.WithFields(logrus.Fields{
			"peakT":           stats.Peak.T,
			"peakC":           stats.Peak.C,
			"firstDetection":  fmtEvent(stats.FirstDetection),
			"firstExceedance": fmtEvent(stats.FirstExceedance),
			"clearance":       fmtEvent(stats.Clearance),
		}).Info("slug breakthrough summary")
	}

	if err := o.Output(r, c.Records(x), standard, detection); err != nil {
		return err
	}
	l.Infof("slug wrote output to %s", OutputFile)

	if PlotFile != "" {
		pl, err := CurvePlot(r, x, ts, standard, detection)
		if err != nil {
			return err
		}
		if err := WritePlot(PlotFile, pl); err != nil {
			return err
		}
		l.Infof("slug wrote plot to %s", PlotFile)
	}

	elapsedTime := time.Since(startTime)
	l.Infof("Elapsed time: %f seconds", elapsedTime.Seconds())
	return nil
}

// RunField evaluates the space-time concentration field over the times
// ts [day] and positions xs [m] and writes the result to OutputFile.
// The remaining arguments are as in RunProfile.
func RunField(CobraCommand *cobra.Command, LogFile, OutputFile, PlotFile string,
	OutputVariables map[string]string, r *slug.Release,
	standard, detection float64, ts, xs []float64) error {

	startTime := time.Now()

	l, logfile, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return err
	}
	defer logfile.Close()

	o, err := slug.NewOutputter(OutputFile, OutputVariables, nil)
	if err != nil {
		return err
	}

	l.WithFields(releaseFields(r)).Infof("slug evaluating field over %d times and %d positions", len(ts), len(xs))

	f, err := r.Field(ts, xs)
	if err != nil {
		return err
	}

	var peak slug.Record
	for i, t := range ts {
		if s := slug.FieldProfile(f, xs, i).Stats(standard, detection); s.Peak != nil && s.Peak.C > peak.C {
			peak = slug.Record{X: s.Peak.X, T: t, C: s.Peak.C}
		}
	}
	l.WithFields(logrus.Fields{
		"peakX": peak.X,
		"peakT": peak.T,
		"peakC": peak.C,
	}).Info("slug field summary")

	if err := o.Output(r, slug.FieldRecords(f, ts, xs), standard, detection); err != nil {
		return err
	}
	l.Infof("slug wrote output to %s", OutputFile)

	if PlotFile != "" {
		pl, err := FieldPlot(r, ts, xs)
		if err != nil {
			return err
		}
		if err := WritePlot(PlotFile, pl); err != nil {
			return err
		}
		l.Infof("slug wrote plot to %s", PlotFile)
	}

	elapsedTime := time.Since(startTime)
	l.Infof("Elapsed time: %f seconds", elapsedTime.Seconds())
	return nil
}

// RunSensitivity sweeps the release parameter named param ("U", "DL",
// or "Lambda") over multiplicative factors, re-evaluates the plume
// profile at time t [day] over the positions xs [m] for each variant,
// and writes the combined results to OutputFile. If factors is nil a
// default sweep for the parameter is used; a nil sweep of Lambda on a
// non-decaying release falls back to absolute decay rates, because
// multiplying zero cannot move it. The remaining arguments are as in
// RunProfile.
func RunSensitivity(CobraCommand *cobra.Command, LogFile, OutputFile, PlotFile string,
	OutputVariables map[string]string, r *slug.Release,
	standard, detection float64, param string, factors, xs []float64, t float64) error {

	startTime := time.Now()

	l, logfile, err := newLogger(CobraCommand, LogFile)
	if err != nil {
		return err
	}
	defer logfile.Close()

	o, err := slug.NewOutputter(OutputFile, OutputVariables, nil)
	if err != nil {
		return err
	}

	var results []slug.SensitivityResult
	var m *sparse.DenseArray
	if param == "Lambda" && r.Lambda == 0 && factors == nil {
		l.WithFields(releaseFields(r)).Infof("slug sweeping Lambda over %d absolute rates", len(slug.DecayRates))
		results, m, err = r.DecaySweep(slug.DecayRates, xs, t)
	} else {
		if factors == nil {
			switch param {
			case "U":
				factors = slug.VelocityFactors
			case "DL":
				factors = slug.DispersionFactors
			case "Lambda":
				factors = slug.DecayFactors
			}
		}
		l.WithFields(releaseFields(r)).Infof("slug sweeping %s over factors %v", param, factors)
		results, m, err = r.Sensitivity(param, factors, xs, t)
	}
	if err != nil {
		return err
	}

	all := make(map[string][]float64)
	for i, res := range results {
		if res.Peak != nil {
			l.WithFields(logrus.Fields{
				"param": res.Param,
				"value": res.Value,
				"peakX": res.Peak.X,
				"peakC": res.Peak.C,
			}).Info("slug sweep variant")
		}
		vals, err := o.Results(res.Release, slug.FieldProfile(m, xs, i).Records(t), standard, detection)
		if err != nil {
			return err
		}
		for k, v := range vals {
			all[k] = append(all[k], v...)
		}
	}
	if err := o.Write(all); err != nil {
		return err
	}
	l.Infof("slug wrote output to %s", OutputFile)

	if PlotFile != "" {
		pl, err := SensitivityPlot(results, m, xs)
		if err != nil {
			return err
		}
		if err := WritePlot(PlotFile, pl); err != nil {
			return err
		}
		l.Infof("slug wrote plot to %s", PlotFile)
	}

	elapsedTime := time.Since(startTime)
	l.Infof("Elapsed time: %f seconds", elapsedTime.Seconds())
	return nil
}
