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
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/floats"

	"github.com/spatialmodel/slug/risk"
)

// A Record is one row of an output table: a concentration together
// with its space and time coordinates.
type Record struct {
	X float64 // position [m]
	T float64 // time [day]
	C float64 // concentration [kg/m³]
}

// Records converts the profile, evaluated at time t [day], to output
// records.
func (p Profile) Records(t float64) []Record {
	recs := make([]Record, len(p))
	for i, s := range p {
		recs[i] = Record{X: s.X, T: t, C: s.C}
	}
	return recs
}

// Records converts the breakthrough curve, evaluated at position x
// [m], to output records.
func (c Curve) Records(x float64) []Record {
	recs := make([]Record, len(c))
	for i, p := range c {
		recs[i] = Record{X: x, T: p.T, C: p.C}
	}
	return recs
}

// FieldRecords converts a concentration field created by Field for
// the given times and positions to output records, in row-major
// (time, position) order.
func FieldRecords(f *sparse.DenseArray, ts, xs []float64) []Record {
	recs := make([]Record, 0, len(ts)*len(xs))
	for i, t := range ts {
		for j, x := range xs {
			recs = append(recs, Record{X: x, T: t, C: f.Get(i, j)})
		}
	}
	return recs
}

// DefaultOutputVariables is the set of output variables used when the
// caller does not specify any.
var DefaultOutputVariables = map[string]string{
	"x":    "x",
	"t":    "t",
	"conc": "conc",
	"mgL":  "mgL",
}

// An Outputter evaluates user-defined output variables over model
// results and writes them to a file.
//
// fileName contains the path where the output will be saved; its
// extension selects the format (.csv or .xlsx).
//
// outputVariables maps the names of the variables for which data
// should be written to expressions that define how the requested data
// should be calculated. The expressions can use the variables built
// into the model, other user-defined variables, and functions.
//
// modelVariables is automatically generated based on the model
// variables that are required to calculate the requested output
// variables.
//
// Functions are defined in the outputFunctions variable.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	modelVariables  []string
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter initializes a new Outputter and adds a set of default
// output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'mgPerL(conc)' which converts a concentration from the model's
// internal kg/m³ to mg/L.
//
// 'hq(mgL, rfd)' which calculates the noncancer hazard quotient for a
// drinking-water concentration [mg/L] against an oral reference dose
// [mg/(kg·day)], using default residential exposure assumptions.
//
// 'max(a, b)' which returns the larger of two values.
//
// If outputVariables is empty, DefaultOutputVariables is used.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("slug: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"mgPerL": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("slug: got %d arguments for function 'mgPerL', but needs 1", len(arg))
			}
			v, err := MgPerL(Conc(arg[0].(float64)))
			return (float64)(v), err
		},
		"hq": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("slug: got %d arguments for function 'hq', but needs 2", len(args))
			}
			cdi := risk.Default.CDI(args[0].(float64))
			return (float64)(risk.HQ(cdi, args[1].(float64))), nil
		},
		"max": func(args ...interface{}) (interface{}, error) {
			if len(args) != 2 {
				return nil, fmt.Errorf("slug: got %d arguments for function 'max', but needs 2", len(args))
			}
			return (float64)(math.Max(args[0].(float64), args[1].(float64))), nil
		},
	}

	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	if len(outputVariables) == 0 {
		outputVariables = DefaultOutputVariables
	}
	// Copy so derivative substitution doesn't edit the caller's map.
	vars := make(map[string]string, len(outputVariables))
	for k, v := range outputVariables {
		vars[k] = strings.Replace(strings.Replace(v, "\r\n", " ", -1), "\n", " ", -1)
	}

	o := Outputter{
		fileName:        fileName,
		outputVariables: vars,
		outputFunctions: defaultOutputFuncs,
	}

	if err := checkOutputNames(o.outputVariables); err != nil {
		return nil, err
	}
	if err := o.checkForDerivatives(); err != nil {
		return nil, err
	}
	if err := checkModelVars(o.modelVariables...); err != nil {
		return nil, err
	}
	return &o, nil
}

// OutputOptions returns the names of the model variables that can be
// used in output variable expressions, along with their descriptions
// and units. The first six entries are per-record coordinates and
// thresholds; the rest are the parameters of the Release, taken from
// its field tags.
func OutputOptions() (names, descriptions, units []string) {
	names = []string{"x", "t", "conc", "mgL", "standard", "detection"}
	descriptions = []string{
		"Distance downgradient of the release",
		"Time since release",
		"Solute concentration",
		"Solute concentration",
		"Regulatory standard",
		"Detection limit",
	}
	units = []string{"m", "day", "kg m⁻³", "mg L⁻¹", "kg m⁻³", "kg m⁻³"}

	t := reflect.TypeOf(Release{})
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		names = append(names, f.Name)
		descriptions = append(descriptions, f.Tag.Get("desc"))
		units = append(units, f.Tag.Get("units"))
	}
	return names, descriptions, units
}

// checkModelVars checks that the given variables are all available as
// model variables.
func checkModelVars(g ...string) error {
	names, _, _ := OutputOptions()
	ok := make(map[string]struct{})
	for _, n := range names {
		ok[n] = struct{}{}
	}
	for _, v := range g {
		if _, found := ok[v]; !found {
			return fmt.Errorf("slug: undefined variable name '%s'", v)
		}
	}
	return nil
}

// checkOutputNames checks that the output variable names are valid
// expression identifiers.
func checkOutputNames(o map[string]string) error {
	for key := range o {
		okChars, err := regexp.MatchString("^[A-Za-z]\\w*$", key)
		if err != nil {
			panic(err)
		}
		if !okChars {
			return fmt.Errorf("slug: output variable name '%s' must begin with a letter and "+
				"contain only letters, digits, and underscores", key)
		}
	}
	return nil
}

// removeDuplicates removes all duplicated strings from a slice,
// returning a slice that contains only unique strings.
func removeDuplicates(s []string) []string {
	result := make([]string, 0, len(s))
	seen := make(map[string]struct{})
	for _, val := range s {
		if _, ok := seen[val]; !ok {
			result = append(result, val)
			seen[val] = struct{}{}
		}
	}
	return result
}

// checkForDerivatives identifies the unique model variables that are
// required to calculate the requested output variables. Any
// user-defined output variable showing up in another variable's
// expression is replaced by its own (parenthesized) expression until
// only model variables remain. Circular definitions are an error
// rather than an endless substitution.
func (o *Outputter) checkForDerivatives() error {
	// Each substitution round eliminates at least one inter-variable
	// reference; more rounds than variables means a cycle.
	for round := 0; ; round++ {
		if round > len(o.outputVariables) {
			return fmt.Errorf("slug: circular definition among output variables %v", sortedKeys(o.outputVariables))
		}
		substituted, err := o.substituteDerivatives()
		if err != nil {
			return err
		}
		if !substituted {
			break
		}
	}
	o.modelVariables = nil
	for key := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(o.outputVariables[key], o.outputFunctions)
		if err != nil {
			return fmt.Errorf("slug: output variable '%s': %v", key, err)
		}
		o.modelVariables = append(o.modelVariables, expression.Vars()...)
	}
	o.modelVariables = removeDuplicates(o.modelVariables)
	sort.Strings(o.modelVariables)
	return nil
}

// substituteDerivatives performs one round of derivative substitution,
// reporting whether anything was replaced.
func (o *Outputter) substituteDerivatives() (bool, error) {
	substituted := false
	for key, val := range o.outputVariables {
		expression, err := govaluate.NewEvaluableExpressionWithFunctions(val, o.outputFunctions)
		if err != nil {
			return false, fmt.Errorf("slug: output variable '%s': %v", key, err)
		}
		for _, v := range removeDuplicates(expression.Vars()) {
			def, ok := o.outputVariables[v]
			if !ok || v == key || def == v {
				continue
			}
			// Only whole-word occurrences; 'U' must not match the
			// 'U' inside another variable's name.
			re, err := regexp.Compile(`\b` + regexp.QuoteMeta(v) + `\b`)
			if err != nil {
				return false, err
			}
			o.outputVariables[key] = re.ReplaceAllString(o.outputVariables[key], "("+def+")")
			substituted = true
		}
	}
	return substituted, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Results evaluates the output variables for every record, using the
// release parameters and the given thresholds [kg/m³] as additional
// expression variables. The returned map contains one column per
// output variable.
func (o *Outputter) Results(r *Release, recs []Record, standard, detection float64) (map[string][]float64, error) {
	expressions := make(map[string]*govaluate.EvaluableExpression, len(o.outputVariables))
	for name, expr := range o.outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("slug: output variable '%s': %v", name, err)
		}
		expressions[name] = e
	}

	params := map[string]interface{}{
		"standard":  standard,
		"detection": detection,
		"M":         r.M,
		"W":         r.W,
		"N":         r.N,
		"U":         r.U,
		"DL":        r.DL,
		"Lambda":    r.Lambda,
	}

	results := make(map[string][]float64, len(expressions))
	for name := range expressions {
		results[name] = make([]float64, len(recs))
	}
	for i, rec := range recs {
		params["x"] = rec.X
		params["t"] = rec.T
		params["conc"] = rec.C
		mgL, err := MgPerL(Conc(rec.C))
		if err != nil {
			return nil, err
		}
		params["mgL"] = mgL
		for name, e := range expressions {
			v, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("slug: evaluating output variable '%s': %v", name, err)
			}
			vv, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("slug: output variable '%s' yielded %v (type %T); all output variables must be numeric", name, v, v)
			}
			results[name][i] = vv
		}
	}
	return results, nil
}

// Output evaluates the output variables for the given records and
// writes them to the output file.
func (o *Outputter) Output(r *Release, recs []Record, standard, detection float64) error {
	results, err := o.Results(r, recs, standard, detection)
	if err != nil {
		return err
	}
	return o.Write(results)
}

// Write writes evaluated output variable columns to the output file.
// The format is chosen by the file extension: .csv writes a delimited
// table and .xlsx writes a workbook with a data sheet and a summary
// sheet.
func (o *Outputter) Write(results map[string][]float64) error {
	vars := make([]string, 0, len(results))
	for v := range results {
		vars = append(vars, v)
	}
	sort.Strings(vars)

	switch ext := filepath.Ext(o.fileName); ext {
	case ".csv":
		return writeCSV(o.fileName, vars, results)
	case ".xlsx":
		return writeXLSX(o.fileName, vars, results)
	default:
		return fmt.Errorf("slug: unsupported output file extension '%s'; use .csv or .xlsx", ext)
	}
}

func writeCSV(fileName string, vars []string, results map[string][]float64) error {
	f, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("slug: creating output file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(vars); err != nil {
		return err
	}
	if len(vars) == 0 {
		w.Flush()
		return w.Error()
	}
	n := len(results[vars[0]])
	row := make([]string, len(vars))
	for i := 0; i < n; i++ {
		for j, v := range vars {
			row[j] = strconv.FormatFloat(results[v][i], 'g', -1, 64)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeXLSX(fileName string, vars []string, results map[string][]float64) error {
	f := xlsx.NewFile()
	data, err := f.AddSheet("Data")
	if err != nil {
		return fmt.Errorf("slug: creating output workbook: %v", err)
	}
	header := data.AddRow()
	for _, v := range vars {
		header.AddCell().Value = v
	}
	if len(vars) > 0 {
		n := len(results[vars[0]])
		for i := 0; i < n; i++ {
			row := data.AddRow()
			for _, v := range vars {
				row.AddCell().SetFloat(results[v][i])
			}
		}
	}

	summary, err := f.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("slug: creating output workbook: %v", err)
	}
	header = summary.AddRow()
	for _, v := range []string{"variable", "min", "max", "mean"} {
		header.AddCell().Value = v
	}
	for _, v := range vars {
		col := results[v]
		row := summary.AddRow()
		row.AddCell().Value = v
		if len(col) == 0 {
			continue
		}
		row.AddCell().SetFloat(floats.Min(col))
		row.AddCell().SetFloat(floats.Max(col))
		row.AddCell().SetFloat(floats.Sum(col) / float64(len(col)))
	}
	return f.Save(fileName)
}
