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
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
)

func TestVersionCommand(t *testing.T) {
	Root.SetArgs([]string{"version"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestRunCommand(t *testing.T) {
	dir, err := ioutil.TempDir("", "slugcmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "profile.csv")
	Cfg.Set("OutputFile", out)
	Root.SetArgs([]string{"run"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := readCSVLines(t, out)
	if len(lines) != 152 { // header plus the default 151-point transect
		t.Errorf("output has %d lines, want 152", len(lines))
	}
	if want := "conc,mgL,t,x"; lines[0] != want {
		t.Errorf("header %q, want %q", lines[0], want)
	}
	if _, err := os.Stat(filepath.Join(dir, "profile.log")); err != nil {
		t.Error(err)
	}
}

func TestCurveCommand(t *testing.T) {
	dir, err := ioutil.TempDir("", "slugcmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "curve.csv")
	Cfg.Set("OutputFile", out)
	Root.SetArgs([]string{"curve"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := readCSVLines(t, out)
	if len(lines) != 1001 { // header plus the default 1000-sample time range
		t.Errorf("output has %d lines, want 1001", len(lines))
	}
}

func TestSensCommand(t *testing.T) {
	dir, err := ioutil.TempDir("", "slugcmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	out := filepath.Join(dir, "sens.csv")
	Cfg.Set("OutputFile", out)
	Root.SetArgs([]string{"sens"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
	lines := readCSVLines(t, out)
	if want := 1 + 5*151; len(lines) != want { // five velocity variants
		t.Errorf("output has %d lines, want %d", len(lines), want)
	}
}

func TestPresetCommand(t *testing.T) {
	Root.SetArgs([]string{"preset"})
	if err := Root.Execute(); err != nil {
		t.Fatal(err)
	}
}

func TestConfigFile(t *testing.T) {
	dir, err := ioutil.TempDir("", "slugcmd")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	cfgFile := filepath.Join(dir, "slug.toml")
	if err := ioutil.WriteFile(cfgFile, []byte("[Release]\nM = 250.0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	Cfg.Set("config", cfgFile)
	defer func() {
		// Later tests expect the default configuration.
		Cfg.Set("config", "")
		Cfg.Set("Release.M", 100.0)
	}()
	if err := Root.PersistentPreRunE(Root, nil); err != nil {
		t.Fatal(err)
	}
	if m := Cfg.GetFloat64("Release.M"); m != 250 {
		t.Errorf("Release.M = %g, want 250 from the configuration file", m)
	}

	Cfg.Set("config", filepath.Join(dir, "nosuchfile.toml"))
	if err := Root.PersistentPreRunE(Root, nil); err == nil {
		t.Error("a missing configuration file should be an error")
	}
}
