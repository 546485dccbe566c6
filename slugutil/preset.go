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
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spatialmodel/slug"
)

// A Preset holds the aquifer material properties that a named preset
// applies to a release.
type Preset struct {
	Description string  `toml:"description"`
	N           float64 `toml:"n"`  // effective porosity
	U           float64 `toml:"u"`  // seepage velocity [m/day]
	DL          float64 `toml:"dl"` // longitudinal dispersion coefficient [m²/day]
}

// presetCatalog is the TOML layout of an aquifer preset catalog: one
// [aquifer.<name>] table per preset.
type presetCatalog struct {
	Aquifer map[string]Preset `toml:"aquifer"`
}

// builtinPresets holds screening values for common aquifer materials.
// Porosities and velocities are typical literature values for the
// material classes; they are starting points for screening, not
// site-specific data.
const builtinPresets = `
[aquifer.sandy]
description = "sand and gravel aquifer"
n = 0.25
u = 0.5
dl = 1.0

[aquifer.clay]
description = "silt and clay aquitard"
n = 0.15
u = 0.01
dl = 0.1

[aquifer.fractured]
description = "fractured rock"
n = 0.05
u = 1.0
dl = 5.0

[aquifer.highperm]
description = "highly permeable alluvium"
n = 0.35
u = 2.0
dl = 10.0
`

// loadPresets returns the aquifer preset catalog at path, which can be
// a local path or an http(s) URL. If path is empty, the built-in
// catalog is returned. c is a channel across which download progress
// messages will be sent.
func loadPresets(ctx context.Context, path string, c chan string) (map[string]Preset, error) {
	var catalog presetCatalog
	if path == "" {
		if _, err := toml.Decode(builtinPresets, &catalog); err != nil {
			panic(fmt.Errorf("slug: parsing built-in preset catalog: %v", err))
		}
	} else {
		path = maybeDownload(ctx, path, c)
		if _, err := toml.DecodeFile(path, &catalog); err != nil {
			return nil, fmt.Errorf("slug: parsing preset catalog %s: %v", path, err)
		}
	}
	if len(catalog.Aquifer) == 0 {
		return nil, fmt.Errorf("slug: preset catalog %s contains no [aquifer] tables", path)
	}
	for name, p := range catalog.Aquifer {
		// The physical parameter ranges are enforced by release
		// validation, with placeholder mass and area.
		if _, err := slug.NewRelease(1, 1, p.N, p.U, p.DL, 0); err != nil {
			return nil, fmt.Errorf("slug: preset %q: %v", name, err)
		}
	}
	return catalog.Aquifer, nil
}

// lookupPreset returns the named preset from the catalog.
func lookupPreset(name string, presets map[string]Preset) (Preset, error) {
	p, ok := presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("slug: unknown aquifer preset %q; available presets: %s",
			name, strings.Join(presetNames(presets), ", "))
	}
	return p, nil
}

// presetNames returns the catalog's preset names in sorted order.
func presetNames(presets map[string]Preset) []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
