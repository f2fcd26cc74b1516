// Package pipeline runs a complete planning pass: validate options, compute
// (or load) the plan, then place units, transporters, relays and boosters
// into a world.
//
// This package is the single entry point used by the CLI and the HTTP API,
// so defaults, validation and caching behave the same everywhere.
//
// # Stages
//
//  1. Plan: the spacing/grid calculator turns the deposit field inside the
//     selection into unit placements and transport lines. Plans are cached
//     by a hash of the clipped field and every setting they depend on.
//  2. Units, transporters, relays, boosters: each stage routes its markers
//     through a conflict resolver and reports placed/skipped counts.
//
// The stage order is fixed. Later stages avoid the tiles taken by earlier
// ones.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, catalog.Default(), logger)
//	opts := pipeline.Options{
//	    Selection:   geom.Area{MaxX: 32, MaxY: 32},
//	    Unit:        "electric-mining-drill",
//	    Transporter: "transport-belt",
//	    Relay:       "medium-electric-pole",
//	}
//	result, err := runner.Execute(ctx, grid, field, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Stage(pipeline.StageUnits).Placed)
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchplan/pkg/cache"
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/conflict"
	"github.com/matzehuels/patchplan/pkg/errors"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/layout"
	"github.com/matzehuels/patchplan/pkg/placer"
	"github.com/matzehuels/patchplan/pkg/world"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultDensity packs units edge to edge.
	DefaultDensity = "dense"

	// DefaultFlow moves items toward +y.
	DefaultFlow = "south"

	// DefaultQuality is the quality tier stamped on markers.
	DefaultQuality = catalog.DefaultQuality

	// DefaultBoosterQuota is the number of boosters each unit should get.
	DefaultBoosterQuota = placer.DefaultQuota

	// MaxSelectionTiles bounds the selection area.
	MaxSelectionTiles = 512 * 512
)

// Stage names, in execution order.
const (
	StageUnits        = "units"
	StageTransporters = "transporters"
	StageRelays       = "relays"
	StageBoosters     = "boosters"
)

// Stages lists the stage names in execution order.
var Stages = []string{StageUnits, StageTransporters, StageRelays, StageBoosters}

// Format constants for output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatText: true,
	FormatJSON: true,
	FormatSVG:  true,
}

// =============================================================================
// Options - Run Configuration
// =============================================================================

// Options is the settings record of one run. Prototype fields name catalog
// entries; an empty transporter, relay or booster disables that stage.
// This struct supports JSON, TOML and YAML serialization for API requests
// and scenario files.
type Options struct {
	Selection geom.Area `json:"selection" toml:"selection" yaml:"selection"`

	Unit          string `json:"unit,omitempty" toml:"unit" yaml:"unit"`
	Transporter   string `json:"transporter,omitempty" toml:"transporter" yaml:"transporter"`
	Relay         string `json:"relay,omitempty" toml:"relay" yaml:"relay"`
	Booster       string `json:"booster,omitempty" toml:"booster" yaml:"booster"`
	BoosterModule string `json:"booster_module,omitempty" toml:"booster_module" yaml:"booster_module"`
	BoosterQuota  int    `json:"booster_quota,omitempty" toml:"booster_quota" yaml:"booster_quota"`

	Density      string `json:"density,omitempty" toml:"density" yaml:"density"`
	Flow         string `json:"flow,omitempty" toml:"flow" yaml:"flow"`
	Quality      string `json:"quality,omitempty" toml:"quality" yaml:"quality"`
	Conservative bool   `json:"conservative,omitempty" toml:"conservative" yaml:"conservative"`

	// Deposits restricts the run to these deposit types. Empty means every
	// type found in the selection.
	Deposits []string `json:"deposits,omitempty" toml:"deposits" yaml:"deposits"`

	// AllowForeign disables the foreign-deposit filter so units may work
	// mixed patches (default: false = avoid foreign deposits).
	AllowForeign bool `json:"allow_foreign,omitempty" toml:"allow_foreign" yaml:"allow_foreign"`

	// TailExit closes every underground chain with an extra exit past the
	// last entrance.
	TailExit bool `json:"tail_exit,omitempty" toml:"tail_exit" yaml:"tail_exit"`

	// Refresh bypasses the plan cache for this run.
	Refresh bool `json:"refresh,omitempty" toml:"-" yaml:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-" toml:"-" yaml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Settings are Options resolved against a catalog.
type Settings struct {
	Unit        catalog.Unit        `json:"unit"`
	Transporter catalog.Transporter `json:"transporter"`
	Relay       catalog.Relay       `json:"relay"`
	Booster     catalog.Booster     `json:"booster"`
	Module      string              `json:"booster_module,omitempty"`
	Quota       int                 `json:"booster_quota"`
	Density     layout.Density      `json:"density"`
	Flow        geom.Direction      `json:"flow"`
	Mode        conflict.Mode       `json:"-"`
	Quality     string              `json:"quality"`
	TailExit    bool                `json:"tail_exit,omitempty"`
}

// Result contains the outputs of a run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string `json:"run_id"`

	Selection geom.Area   `json:"selection"`
	Settings  Settings    `json:"settings"`
	Plan      layout.Plan `json:"plan"`

	// Markers holds every marker the sink accepted, in emission order.
	Markers []world.Marker `json:"markers"`

	// Stages holds one report per stage, in execution order.
	Stages []StageReport `json:"stages"`

	Stats     Stats     `json:"stats"`
	CacheInfo CacheInfo `json:"cache"`
}

// StageReport is the outcome of one stage.
type StageReport struct {
	Stage    string        `json:"stage"`
	Placed   int           `json:"placed"`
	Skipped  int           `json:"skipped"`
	Duration time.Duration `json:"duration_ns"`
}

// Stats contains run statistics.
type Stats struct {
	Units     int           `json:"units"`
	Lines     int           `json:"lines"`
	Placed    int           `json:"placed"`
	Skipped   int           `json:"skipped"`
	PlanTime  time.Duration `json:"plan_time_ns"`
	PlaceTime time.Duration `json:"place_time_ns"`
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	PlanHit bool `json:"plan_hit"`
}

// Stage returns the report of the named stage.
func (r *Result) Stage(name string) StageReport {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s
		}
	}
	return StageReport{Stage: name}
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: text, json, svg)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDensity checks that a density mode is valid.
func ValidateDensity(density string) error {
	_, err := layout.ParseDensity(density)
	return err
}

// ValidateFlow checks that a flow direction is valid.
func ValidateFlow(flow string) error {
	_, err := geom.ParseDirection(flow)
	return err
}

// ValidateSelection checks that a selection is not too large. An empty
// selection is valid and plans nothing.
func ValidateSelection(a geom.Area) error {
	if a.Width()*a.Height() > MaxSelectionTiles {
		return errors.New(errors.ErrCodeInvalidSelection, "selection %v exceeds %d tiles", a, MaxSelectionTiles)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the catalog-independent fields and applies
// defaults. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	o.SetDefaults()
	if err := ValidateSelection(o.Selection); err != nil {
		return err
	}
	if err := ValidateDensity(o.Density); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "density")
	}
	if err := ValidateFlow(o.Flow); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "flow")
	}
	if o.BoosterQuota < 0 {
		return errors.New(errors.ErrCodeInvalidSettings, "booster_quota must not be negative")
	}
	o.validated = true
	return nil
}

// SetDefaults fills empty fields with their defaults.
func (o *Options) SetDefaults() {
	if o.Density == "" {
		o.Density = DefaultDensity
	}
	if o.Flow == "" {
		o.Flow = DefaultFlow
	}
	if o.Quality == "" {
		o.Quality = DefaultQuality
	}
	if o.BoosterQuota == 0 {
		o.BoosterQuota = DefaultBoosterQuota
	}
}

// ShouldAvoidForeign returns whether candidates touching other deposit
// types are dropped.
func (o *Options) ShouldAvoidForeign() bool {
	return !o.AllowForeign
}

// Resolve looks up every named prototype in cat. present lists the deposit
// types found in the selection; it picks the default unit and is checked
// for compatibility when Deposits is empty.
func (o *Options) Resolve(cat *catalog.Catalog, present []string) (Settings, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return Settings{}, err
	}
	density, _ := layout.ParseDensity(o.Density)
	flow, _ := geom.ParseDirection(o.Flow)
	s := Settings{
		Density:  density,
		Flow:     flow,
		Quality:  o.Quality,
		Quota:    o.BoosterQuota,
		Module:   o.BoosterModule,
		TailExit: o.TailExit,
	}
	if o.Conservative {
		s.Mode = conflict.Conservative
	}

	if !cat.HasQuality(o.Quality) {
		return s, errors.New(errors.ErrCodeInvalidSettings, "unknown quality %q", o.Quality)
	}
	for _, d := range o.Deposits {
		if _, ok := cat.Deposit(d); !ok {
			return s, errors.New(errors.ErrCodeUnknownPrototype, "unknown deposit type %q", d)
		}
	}

	deposits := o.Deposits
	if len(deposits) == 0 {
		deposits = present
	}
	if o.Unit == "" {
		units := cat.CompatibleUnits(deposits)
		if len(units) == 0 {
			return s, errors.New(errors.ErrCodeIncompatibleUnit, "no unit can work %v", deposits)
		}
		s.Unit = units[0]
	} else {
		u, ok := cat.Unit(o.Unit)
		if !ok {
			return s, errors.New(errors.ErrCodeUnknownPrototype, "unknown unit %q", o.Unit)
		}
		if i := slices.IndexFunc(deposits, func(d string) bool { return !cat.Compatible(u, d) }); i >= 0 {
			return s, errors.New(errors.ErrCodeIncompatibleUnit, "unit %q cannot work %s", u.Name, deposits[i])
		}
		s.Unit = u
	}

	var ok bool
	if o.Transporter != "" {
		if s.Transporter, ok = cat.Transporter(o.Transporter); !ok {
			return s, errors.New(errors.ErrCodeUnknownPrototype, "unknown transporter %q", o.Transporter)
		}
	}
	if o.Relay != "" {
		if s.Relay, ok = cat.Relay(o.Relay); !ok {
			return s, errors.New(errors.ErrCodeUnknownPrototype, "unknown relay %q", o.Relay)
		}
	}
	if o.Booster != "" {
		if s.Booster, ok = cat.Booster(o.Booster); !ok {
			return s, errors.New(errors.ErrCodeUnknownPrototype, "unknown booster %q", o.Booster)
		}
	}
	if o.BoosterModule != "" {
		if _, ok := cat.Module(o.BoosterModule); !ok {
			return s, errors.New(errors.ErrCodeUnknownPrototype, "unknown module %q", o.BoosterModule)
		}
	}
	return s, nil
}

// PlanKeyOpts returns cache key options for plan computation.
func (o *Options) PlanKeyOpts(s Settings) cache.PlanKeyOpts {
	deposits := slices.Clone(o.Deposits)
	slices.Sort(deposits)
	return cache.PlanKeyOpts{
		Unit:         s.Unit.Name,
		Bounds:       [4]int{o.Selection.MinX, o.Selection.MinY, o.Selection.MaxX, o.Selection.MaxY},
		Density:      s.Density.String(),
		Flow:         s.Flow.String(),
		Deposits:     deposits,
		AvoidForeign: o.ShouldAvoidForeign(),
		BoosterWidth: s.Booster.Size,
		RelayWidth:   s.relayWidth(),
	}
}

// relayWidth is the corridor relay lane width for small units.
func (s Settings) relayWidth() int {
	return max(1, s.Relay.Size)
}
