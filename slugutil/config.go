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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/slug"
	"github.com/spf13/cast"
)

// checkOutputVars removes end lines and expands environment
// variables in the output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		vars[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return vars, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.csv"`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("slug: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// checkThresholds ensures that the screening thresholds are usable.
func checkThresholds(standard, detection float64) (float64, float64, error) {
	vars := []float64{standard, detection}
	varNames := []string{"Standard", "Detection"}
	for i, v := range vars {
		if !(v > 0) {
			return 0, 0, fmt.Errorf("parsing threshold configuration: %s=%g but should be >0", varNames[i], v)
		}
	}
	return standard, detection, nil
}

// releaseFromCfg unmarshals a viper configuration for a slug release.
// If the Preset configuration variable is set, the named aquifer preset
// overrides the porosity, seepage velocity, and dispersion coefficient.
// c is a channel across which download progress messages will be sent.
func releaseFromCfg(cfg *viper.Viper, c chan string) (*slug.Release, error) {
	n := cfg.GetFloat64("Release.N")
	u := cfg.GetFloat64("Release.U")
	dL := cfg.GetFloat64("Release.DL")
	if name := cfg.GetString("Preset"); name != "" {
		presets, err := loadPresets(context.TODO(), os.ExpandEnv(cfg.GetString("PresetFile")), c)
		if err != nil {
			return nil, err
		}
		p, err := lookupPreset(name, presets)
		if err != nil {
			return nil, err
		}
		n, u, dL = p.N, p.U, p.DL
	}
	return slug.NewRelease(
		cfg.GetFloat64("Release.M"),
		cfg.GetFloat64("Release.W"),
		n, u, dL,
		cfg.GetFloat64("Release.Lambda"))
}

// checkPositions builds the evaluated transect from its endpoints and
// sample count.
func checkPositions(x0, x1 float64, nx int) ([]float64, error) {
	xs := slug.Positions(x0, x1, nx)
	if xs == nil {
		return nil, fmt.Errorf("parsing transect configuration: X0=%g, X1=%g, Nx=%d; X1 must be greater than X0 and Nx must be at least 2", x0, x1, nx)
	}
	return xs, nil
}

// positionsFromCfg unmarshals a viper configuration for the evaluated
// transect.
func positionsFromCfg(cfg *viper.Viper) ([]float64, error) {
	return checkPositions(cfg.GetFloat64("X0"), cfg.GetFloat64("X1"), cfg.GetInt("Nx"))
}

// checkTimes builds the evaluated time range from its endpoints and
// sample count.
func checkTimes(t0, t1 float64, nt int) ([]float64, error) {
	ts := slug.Times(t0, t1, nt)
	if ts == nil {
		return nil, fmt.Errorf("parsing time range configuration: T0=%g, T1=%g, Nt=%d; T0 must be positive, T1 greater than T0, and Nt at least 2", t0, t1, nt)
	}
	return ts, nil
}

// timesFromCfg unmarshals a viper configuration for the evaluated time
// range.
func timesFromCfg(cfg *viper.Viper) ([]float64, error) {
	return checkTimes(cfg.GetFloat64("T0"), cfg.GetFloat64("T1"), cfg.GetInt("Nt"))
}

// factorsFromCfg parses the sensitivity sweep factors. An empty list is
// returned as nil, which selects the built-in spread for the swept
// parameter.
func factorsFromCfg(cfg *viper.Viper) ([]float64, error) {
	ss := cfg.GetStringSlice("Factors")
	if len(ss) == 0 {
		return nil, nil
	}
	factors := make([]float64, len(ss))
	for i, s := range ss {
		f, err := cast.ToFloat64E(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("slug: parsing sweep factor %q: %v", s, err)
		}
		factors[i] = f
	}
	return factors, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i))
	}
}
