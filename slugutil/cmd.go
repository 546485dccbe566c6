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

// Package slugutil holds utility functions for the SLUG command-line
// and web interfaces.
package slugutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"

	"github.com/ctessum/gobra"
	"github.com/lnashier/viper"
	"github.com/skratchdot/open-golang/open"
	"github.com/spatialmodel/slug"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to SLUG.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Release.M",
			usage: `
              Release.M specifies the contaminant mass released by the slug [kg].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Release.W",
			usage: `
              Release.W specifies the aquifer cross-sectional area perpendicular
              to the direction of groundwater flow [m²].`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Release.N",
			usage: `
              Release.N specifies the effective porosity of the aquifer
              material [dimensionless, in (0, 1]].`,
			defaultVal: 0.3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Release.U",
			usage: `
              Release.U specifies the seepage velocity [m/day]. Zero and
              negative values represent stagnant and reversed hydraulic
              gradients, respectively.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Release.DL",
			usage: `
              Release.DL specifies the longitudinal dispersion
              coefficient [m²/day].`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Release.Lambda",
			usage: `
              Release.Lambda specifies the first-order decay rate of the
              contaminant [1/day].`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Preset",
			usage: `
              Preset specifies a named aquifer material preset. When set, the
              preset overrides Release.N, Release.U, and Release.DL. Run
              'slug preset' to list the available presets.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "PresetFile",
			usage: `
              PresetFile specifies the location of a TOML aquifer preset
              catalog. It can be a local path or an http(s) URL, in which
              case the catalog is downloaded. If empty, the built-in catalog
              is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags(), presetCmd.Flags()},
		},
		{
			name: "Standard",
			usage: `
              Standard specifies the regulatory concentration standard that
              the plume is screened against [kg/m³].`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Detection",
			usage: `
              Detection specifies the analytical detection limit [kg/m³].`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "T",
			usage: `
              T specifies the time after the release at which the plume is
              evaluated [day].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "T0",
			usage: `
              T0 specifies the first evaluation time [day]. It must be
              positive; the transport solution is undefined at the instant
              of the release.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{curveCmd.Flags(), fieldCmd.Flags()},
		},
		{
			name: "T1",
			usage: `
              T1 specifies the last evaluation time [day].`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{curveCmd.Flags(), fieldCmd.Flags()},
		},
		{
			name: "Nt",
			usage: `
              Nt specifies the number of evaluation times spaced evenly
              between T0 and T1.`,
			defaultVal: 1000,
			flagsets:   []*pflag.FlagSet{curveCmd.Flags(), fieldCmd.Flags()},
		},
		{
			name: "X0",
			usage: `
              X0 specifies the upgradient end of the evaluated transect,
              as a distance from the release point [m].`,
			defaultVal: -50.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "X1",
			usage: `
              X1 specifies the downgradient end of the evaluated transect [m].`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Nx",
			usage: `
              Nx specifies the number of evaluation positions spaced evenly
              between X0 and X1.`,
			defaultVal: 151,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Well",
			usage: `
              Well specifies the position of the monitoring well for
              breakthrough curves, as a distance from the release point [m].`,
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{curveCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the output file. The file
              extension selects the format: .csv or .xlsx.`,
			defaultVal: "slug_output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be
              included in the output file, as a mapping from output names to
              expressions over the model variables (for example
              {"x":"x","haz":"hq(mgL, 0.004)"}).`,
			defaultVal: slug.DefaultOutputVariables,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the log file location. If empty,
              the name of the output file with the extension replaced by
              '.log' is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile specifies the path to a PNG rendering of the result.
              If empty, no plot is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), curveCmd.Flags(), fieldCmd.Flags(), sensCmd.Flags()},
		},
		{
			name: "Param",
			usage: `
              Param specifies the parameter varied by the sensitivity sweep:
              "U", "DL", or "Lambda".`,
			defaultVal: "U",
			flagsets:   []*pflag.FlagSet{sensCmd.Flags()},
		},
		{
			name: "Factors",
			usage: `
              Factors specifies the multiplicative factors applied to the
              swept parameter. If empty, the built-in spread for the chosen
              parameter is used; sweeping Lambda from a zero base uses the
              built-in list of absolute decay rates instead.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{sensCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SLUG")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(curveCmd)
	Root.AddCommand(fieldCmd)
	Root.AddCommand(sensCmd)
	Root.AddCommand(presetCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Printf(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("slug: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "slug",
	Short: "A screening-level groundwater solute transport model.",
	Long: `SLUG is a screening-level model of solute transport in groundwater.
It evaluates the closed-form solution of the one-dimensional
advection-dispersion-reaction equation for an instantaneous point ("slug")
release into a homogeneous aquifer, and summarizes the resulting plume
against a regulatory standard and a detection limit.
Use the subcommands specified below to access the model functionality.
Additional information is available at https://github.com/spatialmodel/slug.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'SLUG_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of SLUG.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SLUG v%s\n", slug.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd is a command that evaluates the plume at a fixed time.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Evaluate the plume at a fixed time.",
	Long: `run evaluates the concentration profile along the transect
[X0, X1] at time T, summarizes it against the regulatory standard and
the detection limit, and writes one output row per position to
OutputFile. If PlotFile is set, a rendering of the profile is also
written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		r, err := releaseFromCfg(Cfg, outChan)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		standard, detection, err := checkThresholds(Cfg.GetFloat64("Standard"), Cfg.GetFloat64("Detection"))
		if err != nil {
			return err
		}
		xs, err := positionsFromCfg(Cfg)
		if err != nil {
			return err
		}
		return RunProfile(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			os.ExpandEnv(Cfg.GetString("PlotFile")),
			outputVars,
			r, standard, detection,
			Cfg.GetFloat64("T"),
			xs)
	},
	DisableAutoGenTag: true,
}

// curveCmd is a command that computes a breakthrough curve at a
// monitoring well.
var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Compute a breakthrough curve at a monitoring well.",
	Long: `curve evaluates the concentration history at the monitoring
position Well over the time range [T0, T1], reports when the plume
becomes detectable, exceeds the standard, peaks, and clears, and writes
one output row per time to OutputFile. If PlotFile is set, a rendering
of the curve is also written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		r, err := releaseFromCfg(Cfg, outChan)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		standard, detection, err := checkThresholds(Cfg.GetFloat64("Standard"), Cfg.GetFloat64("Detection"))
		if err != nil {
			return err
		}
		ts, err := timesFromCfg(Cfg)
		if err != nil {
			return err
		}
		return RunCurve(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			os.ExpandEnv(Cfg.GetString("PlotFile")),
			outputVars,
			r, standard, detection,
			Cfg.GetFloat64("Well"),
			ts)
	},
	DisableAutoGenTag: true,
}

// fieldCmd is a command that evaluates a time × position
// concentration field.
var fieldCmd = &cobra.Command{
	Use:   "field",
	Short: "Evaluate a time × position concentration field.",
	Long: `field evaluates the concentration field over the time range
[T0, T1] and the transect [X0, X1] and writes one output row per
(time, position) pair to OutputFile. If PlotFile is set, a heatmap of
the field is also written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		r, err := releaseFromCfg(Cfg, outChan)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		standard, detection, err := checkThresholds(Cfg.GetFloat64("Standard"), Cfg.GetFloat64("Detection"))
		if err != nil {
			return err
		}
		ts, err := timesFromCfg(Cfg)
		if err != nil {
			return err
		}
		xs, err := positionsFromCfg(Cfg)
		if err != nil {
			return err
		}
		return RunField(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			os.ExpandEnv(Cfg.GetString("PlotFile")),
			outputVars,
			r, standard, detection,
			ts, xs)
	},
	DisableAutoGenTag: true,
}

// sensCmd is a command that runs a one-at-a-time parameter sweep.
var sensCmd = &cobra.Command{
	Use:   "sens",
	Short: "Run a one-at-a-time parameter sweep.",
	Long: `sens varies one model parameter (Param, one of "U", "DL", or
"Lambda") over the multiplicative Factors, re-evaluates the plume
profile at time T for each variant, and reports the variant peaks.
Rows of the output file hold the profile of one variant each. If
PlotFile is set, a rendering with one profile line per variant is also
written.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		r, err := releaseFromCfg(Cfg, outChan)
		if err != nil {
			return err
		}
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		standard, detection, err := checkThresholds(Cfg.GetFloat64("Standard"), Cfg.GetFloat64("Detection"))
		if err != nil {
			return err
		}
		xs, err := positionsFromCfg(Cfg)
		if err != nil {
			return err
		}
		factors, err := factorsFromCfg(Cfg)
		if err != nil {
			return err
		}
		return RunSensitivity(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			os.ExpandEnv(Cfg.GetString("PlotFile")),
			outputVars,
			r, standard, detection,
			Cfg.GetString("Param"),
			factors,
			xs,
			Cfg.GetFloat64("T"))
	},
	DisableAutoGenTag: true,
}

// presetCmd is a command that lists the available aquifer presets.
var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "List the available aquifer presets.",
	Long: `preset lists the aquifer material presets that the Preset
configuration variable accepts, together with the porosity, seepage
velocity, and dispersion coefficient each one sets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outChan := outChan()

		presets, err := loadPresets(context.Background(), os.ExpandEnv(Cfg.GetString("PresetFile")), outChan)
		if err != nil {
			return err
		}
		for _, name := range presetNames(presets) {
			p := presets[name]
			cmd.Printf("%-10s n=%-5g u=%-5g dl=%-5g %s\n", name, p.N, p.U, p.DL, p.Description)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

// StartWebServer starts the web server.
func StartWebServer() {
	setConfig() // Ignore any errors for now.

	http.HandleFunc("/setConfig", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		configFile := r.Form["config"][0]
		Root.Flags().Set("config", configFile)
		err := setConfig()
		if err != nil {
			http.Error(w, err.Error(), 204)
			return
		}
		config := make(map[string]interface{})
		for _, option := range options {
			config[option.name] = Cfg.Get(option.name)
		}
		e := json.NewEncoder(w)
		if err := e.Encode(config); err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
	})

	RegisterPlotHandlers(http.DefaultServeMux)

	log.Println("Loading front-end...")

	for _, cmd := range []*cobra.Command{Root, versionCmd, runCmd, curveCmd,
		fieldCmd, sensCmd, presetCmd} {
		cmd.SilenceUsage = true // We don't want the usage messages in the GUI.
	}

	const address = "localhost:7272"
	const tmpl = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>SLUG</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
		.red-border{ border: 1px solid #c35; }
		.green-border{ border: 1px solid #3c5; }
		.blue-border{ border: 1px solid #35c; }
		img.plume { max-width: 100%; margin-top: 5px; }
	</style>
</head>
<body>
<div class="container">
	<h1>SLUG</h1>
	<p>Configure the screening scenario below.</p>
	<p>
		Color key: black=default;
		<font color="red">red</font>=error;
		<font color="green">green</font>=value from config file;
		<font color="blue">blue</font>=user entered
	</p>
	<div>
		{{.}}
	</div>
	<div>
		<h2>Plume preview</h2>
		<p>Rendered from the current configuration.
		<button id="refresh-plots">Refresh</button></p>
		<img class="plume" id="profile-img" src="/profile.png" alt="concentration profile">
		<img class="plume" id="curve-img" src="/curve.png" alt="breakthrough curve">
		<img class="plume" id="field-img" src="/field.png" alt="concentration field">
	</div>
	<footer>
		© 2025 SLUG Authors
	</footer>
</div>

<script>
// If the configuration file is changed, send the new file path
// to the server and update fields

let allFlags = [...document.querySelectorAll('[data-name]')];
allFlags.forEach(x => {
	let inputField = x.children[0];
	inputField.addEventListener("input", e => {
		inputField.classList.remove("green-border");
		inputField.classList.add("blue-border");
	})
})

let configInput = allFlags.filter(x => x.dataset.name == "config")[0].children[0];
configInput.addEventListener("input", e => {
	fetch("http://` + address + `/setConfig?config="+configInput.value)
		.then( res => {
			if (res.status !== 200) {
				if (res.status == 204) {
					configInput.classList.remove("blue-border");
					configInput.classList.remove("green-border");
					configInput.classList.add("red-border");
				} else {
					console.log("Error fetching /setConfig: ", response.text());
				}
			} else {
				res.json().then( data => {
					configInput.classList.remove("red-border");
					for (let key in data)
						for(let f of allFlags)
							if (f.dataset.name == key) {
								let input = f.children[0];
								var newValue = JSON.stringify(data[key]).replace(/^"+|"+$/g,'');
								if (input.value != newValue) {
									input.value = newValue
									input.classList.remove("blue-border");
									input.classList.add("green-border");
								}
							}
				})
			}
		})
		.catch( err => {
			console.log("Error fetching /setConfig", err)
		})
})

document.getElementById("refresh-plots").addEventListener("click", e => {
	for (let id of ["profile-img", "curve-img", "field-img"]) {
		let img = document.getElementById(id);
		img.src = img.src.split("?")[0] + "?" + Date.now();
	}
})
</script>
</body>
</html>`

	output := template.Must(template.New("").Parse(tmpl))
	server := gobra.Server{Root: Root, ServerAddress: address, AllowCORS: false, HTML: output}
	log.Println("Server starting... ")
	open.Run("http://" + address)
	fmt.Println("If not opened automatically, please visit http://" + address)
	server.Start()
}
