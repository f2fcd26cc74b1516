// Package scenario loads planning scenarios from TOML or YAML files.
//
// A scenario stands in for the host game: it describes the deposits under
// a selection (as a glyph map and/or rectangles), the obstacles standing on
// the map and the settings of the run. [Scenario.Build] turns it into the
// world, deposit field and options the pipeline consumes.
//
//	name = "iron patch"
//
//	[selection]
//	min_x = 0
//	min_y = 0
//	max_x = 10
//	max_y = 10
//
//	[settings]
//	unit = "electric-mining-drill"
//	transporter = "transport-belt"
//
//	[map]
//	rows = ["iiii", "iTii"]
//	[map.obstacles]
//	T = "tree"
package scenario

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/errors"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/pipeline"
	"github.com/matzehuels/patchplan/pkg/world"
)

// Format is a scenario file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Scenario is one planning problem.
type Scenario struct {
	Name string `json:"name,omitempty" toml:"name" yaml:"name"`

	// Selection overrides settings.selection. When both are empty the
	// bounds of all deposits are used.
	Selection geom.Area `json:"selection" toml:"selection" yaml:"selection"`

	Settings pipeline.Options `json:"settings" toml:"settings" yaml:"settings"`

	Map       Map           `json:"map" toml:"map" yaml:"map"`
	Deposits  []DepositArea `json:"deposits,omitempty" toml:"deposit" yaml:"deposits"`
	Obstacles []Obstacle    `json:"obstacles,omitempty" toml:"obstacle" yaml:"obstacles"`
}

// Map is a glyph map of deposits and single-tile obstacles.
type Map struct {
	Origin geom.Tile `json:"origin" toml:"origin" yaml:"origin"`
	Rows   []string  `json:"rows,omitempty" toml:"rows" yaml:"rows"`

	// Legend maps glyphs to deposit types. Empty means the catalog glyphs.
	Legend map[string]string `json:"legend,omitempty" toml:"legend" yaml:"legend"`

	// Obstacles maps glyphs to obstacle classes (or aliases such as "tree").
	Obstacles map[string]string `json:"obstacles,omitempty" toml:"obstacles" yaml:"obstacles"`
}

// DepositArea fills a rectangle with one deposit type.
type DepositArea struct {
	Type string    `json:"type,omitempty" toml:"type" yaml:"type"`
	Area geom.Area `json:"area" toml:"area" yaml:"area"`
}

// Obstacle is an entity standing on the map.
type Obstacle struct {
	Name  string    `json:"name,omitempty" toml:"name" yaml:"name"`
	Class string    `json:"class,omitempty" toml:"class" yaml:"class"`
	Area  geom.Area `json:"area" toml:"area" yaml:"area"`
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidScenario, "unsupported scenario file %q (want .toml, .yaml or .yml)", filepath.Base(path))
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "scenario %s not found", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "read %s", path)
	}
	sc, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if sc.Name == "" {
		sc.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return sc, nil
}

// Parse decodes a scenario.
func Parse(data []byte, format Format) (*Scenario, error) {
	var sc Scenario
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&sc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&sc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScenario, err, "decode yaml")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidScenario, "unknown format %q", format)
	}
	return &sc, nil
}

// Build creates the world, the deposit field and the run options. The
// catalog provides the default map legend.
func (s *Scenario) Build(cat *catalog.Catalog) (*world.Grid, *deposit.Field, pipeline.Options, error) {
	opts := s.Settings
	grid := world.NewGrid()

	legend := s.Map.Legend
	if len(legend) == 0 {
		legend = make(map[string]string, len(cat.Deposits))
		for _, d := range cat.Deposits {
			if d.Glyph != "" {
				legend[d.Glyph] = d.Name
			}
		}
	}

	// Obstacle glyphs are resolved before deposits so ParseMap can skip them.
	glyphs := make([]string, 0, len(s.Map.Obstacles))
	classes := make(map[rune]world.Class, len(s.Map.Obstacles))
	for g, name := range s.Map.Obstacles {
		r := []rune(g)
		if len(r) != 1 {
			return nil, nil, opts, errors.New(errors.ErrCodeInvalidScenario, "obstacle glyph %q must be one character", g)
		}
		c, err := world.ParseClass(name)
		if err != nil {
			return nil, nil, opts, errors.Wrap(errors.ErrCodeInvalidScenario, err, "map obstacle %q", g)
		}
		classes[r[0]] = c
		glyphs = append(glyphs, g)
	}
	sort.Strings(glyphs)

	field, err := deposit.ParseMap(s.Map.Rows, s.Map.Origin, legend, strings.Join(glyphs, ""))
	if err != nil {
		return nil, nil, opts, errors.Wrap(errors.ErrCodeInvalidScenario, err, "map")
	}
	for i, row := range s.Map.Rows {
		for j, r := range []rune(row) {
			c, ok := classes[r]
			if !ok {
				continue
			}
			t := geom.Tile{X: s.Map.Origin.X + j, Y: s.Map.Origin.Y + i}
			grid.AddObstacle(s.Map.Obstacles[string(r)], c, geom.BoxAround(t.Center(), 1, 1))
		}
	}

	for _, d := range s.Deposits {
		if d.Type == "" || d.Area.Empty() {
			return nil, nil, opts, errors.New(errors.ErrCodeInvalidScenario, "deposit %q needs a type and a non-empty area", d.Type)
		}
		field.AddArea(d.Type, d.Area)
	}

	for _, o := range s.Obstacles {
		c, err := world.ParseClass(o.Class)
		if err != nil {
			return nil, nil, opts, errors.Wrap(errors.ErrCodeInvalidScenario, err, "obstacle %q", o.Name)
		}
		if o.Area.Empty() {
			return nil, nil, opts, errors.New(errors.ErrCodeInvalidScenario, "obstacle %q has an empty area", o.Name)
		}
		name := o.Name
		if name == "" {
			name = c.String()
		}
		grid.AddObstacle(name, c, o.Area.Box())
	}

	switch {
	case !s.Selection.Empty():
		opts.Selection = s.Selection
	case opts.Selection.Empty():
		opts.Selection = bounds(field)
	}
	return grid, field, opts, nil
}

// bounds returns the smallest area holding every deposit tile.
func bounds(f *deposit.Field) geom.Area {
	all := geom.NewTileSet()
	for _, kind := range f.Types() {
		all.Union(f.Tiles(kind))
	}
	return all.Bounds()
}
