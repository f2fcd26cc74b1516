// Package catalog holds the static prototypes the planner places: extraction
// units, transporters, relays, boosters, modules and deposit types.
//
// A catalog is read once from TOML and treated as immutable afterwards. The
// built-in catalog is embedded and returned by [Default]; [Load] reads a
// replacement from disk.
package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/patchplan/pkg/errors"
)

//go:embed default.toml
var defaultTOML []byte

// DefaultQuality is used when a run does not request a quality tier.
const DefaultQuality = "normal"

// Unit is an extraction unit prototype.
type Unit struct {
	Name        string  `toml:"name" json:"name"`
	Width       int     `toml:"width" json:"width"`
	Height      int     `toml:"height" json:"height"`
	Radius      float64 `toml:"radius" json:"radius"`
	FluidInput  bool    `toml:"fluid_input" json:"fluid_input,omitempty"`
	ModuleSlots int     `toml:"module_slots" json:"module_slots,omitempty"`
}

// Footprint returns the larger side length.
func (u Unit) Footprint() int { return max(u.Width, u.Height) }

// Across returns the side length perpendicular to the transporter lane once
// the unit faces the lane.
func (u Unit) Across() int { return u.Height }

// Along returns the side length parallel to the transporter lane.
func (u Unit) Along() int { return u.Width }

// Transporter is a conveyance tier. Underground names the paired
// entrance/exit variant; it is empty when the tier has none.
type Transporter struct {
	Name           string `toml:"name" json:"name"`
	Underground    string `toml:"underground" json:"underground,omitempty"`
	MaxUnderground int    `toml:"max_underground" json:"max_underground,omitempty"`
}

// Relay is a power relay prototype.
type Relay struct {
	Name           string  `toml:"name" json:"name"`
	Size           int     `toml:"size" json:"size"`
	SupplyDistance float64 `toml:"supply_distance" json:"supply_distance"`
	WireReach      float64 `toml:"wire_reach" json:"wire_reach"`
}

// Booster is a range-boosting prototype.
type Booster struct {
	Name           string  `toml:"name" json:"name"`
	Size           int     `toml:"size" json:"size"`
	SupplyDistance float64 `toml:"supply_distance" json:"supply_distance"`
	ModuleSlots    int     `toml:"module_slots" json:"module_slots"`
}

// Module is an insertable module prototype.
type Module struct {
	Name string `toml:"name" json:"name"`
}

// Deposit describes a deposit type.
type Deposit struct {
	Name          string `toml:"name" json:"name"`
	Glyph         string `toml:"glyph" json:"glyph,omitempty"`
	RequiresFluid bool   `toml:"requires_fluid" json:"requires_fluid,omitempty"`
}

// Catalog is the full prototype set.
type Catalog struct {
	Qualities    []string      `toml:"qualities" json:"qualities"`
	Units        []Unit        `toml:"unit" json:"units"`
	Transporters []Transporter `toml:"transporter" json:"transporters"`
	Relays       []Relay       `toml:"relay" json:"relays"`
	Boosters     []Booster     `toml:"booster" json:"boosters"`
	Modules      []Module      `toml:"module" json:"modules"`
	Deposits     []Deposit     `toml:"deposit" json:"deposits"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(defaultTOML)
})

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which is a build defect.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default is invalid: %v", err))
	}
	return c
}

// Load reads a catalog from a TOML file.
func Load(path string) (*Catalog, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "catalog %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a TOML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidCatalog, "unknown catalog key %q", undecoded[0].String())
	}
	if len(c.Qualities) == 0 {
		c.Qualities = []string{DefaultQuality}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks names and sizes and rejects duplicate names.
func (c *Catalog) Validate() error {
	seen := make(map[string]string)
	check := func(kind, name string) error {
		if err := errors.ValidatePrototypeName(name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidCatalog, err, "%s", kind)
		}
		if prev, ok := seen[name]; ok {
			return errors.New(errors.ErrCodeInvalidCatalog, "duplicate prototype %q (%s and %s)", name, prev, kind)
		}
		seen[name] = kind
		return nil
	}

	for _, u := range c.Units {
		if err := check("unit", u.Name); err != nil {
			return err
		}
		if u.Width <= 0 || u.Height <= 0 {
			return errors.New(errors.ErrCodeInvalidCatalog, "unit %q: size must be positive", u.Name)
		}
		if u.Radius <= 0 {
			return errors.New(errors.ErrCodeInvalidCatalog, "unit %q: radius must be positive", u.Name)
		}
	}
	for _, t := range c.Transporters {
		if err := check("transporter", t.Name); err != nil {
			return err
		}
		if t.Underground != "" {
			if err := check("underground transporter", t.Underground); err != nil {
				return err
			}
		}
	}
	for _, r := range c.Relays {
		if err := check("relay", r.Name); err != nil {
			return err
		}
		if r.Size <= 0 {
			return errors.New(errors.ErrCodeInvalidCatalog, "relay %q: size must be positive", r.Name)
		}
	}
	for _, b := range c.Boosters {
		if err := check("booster", b.Name); err != nil {
			return err
		}
		if b.Size <= 0 {
			return errors.New(errors.ErrCodeInvalidCatalog, "booster %q: size must be positive", b.Name)
		}
	}
	for _, m := range c.Modules {
		if err := check("module", m.Name); err != nil {
			return err
		}
	}
	for _, d := range c.Deposits {
		if err := check("deposit", d.Name); err != nil {
			return err
		}
	}
	return nil
}

// Unit looks up a unit prototype.
func (c *Catalog) Unit(name string) (Unit, bool) { return find(c.Units, name, func(u Unit) string { return u.Name }) }

// Transporter looks up a transporter tier.
func (c *Catalog) Transporter(name string) (Transporter, bool) {
	return find(c.Transporters, name, func(t Transporter) string { return t.Name })
}

// Relay looks up a relay prototype.
func (c *Catalog) Relay(name string) (Relay, bool) { return find(c.Relays, name, func(r Relay) string { return r.Name }) }

// Booster looks up a booster prototype.
func (c *Catalog) Booster(name string) (Booster, bool) {
	return find(c.Boosters, name, func(b Booster) string { return b.Name })
}

// Module looks up a module prototype.
func (c *Catalog) Module(name string) (Module, bool) { return find(c.Modules, name, func(m Module) string { return m.Name }) }

// Deposit looks up a deposit type.
func (c *Catalog) Deposit(name string) (Deposit, bool) {
	return find(c.Deposits, name, func(d Deposit) string { return d.Name })
}

// HasQuality reports whether q is a known quality tier.
func (c *Catalog) HasQuality(q string) bool { return slices.Contains(c.Qualities, q) }

// Compatible reports whether u can work deposits of the named type. Unknown
// deposit types place no restriction.
func (c *Catalog) Compatible(u Unit, deposit string) bool {
	d, ok := c.Deposit(deposit)
	if !ok {
		return true
	}
	return !d.RequiresFluid || u.FluidInput
}

// CompatibleUnits returns the units able to work every named deposit type.
func (c *Catalog) CompatibleUnits(deposits []string) []Unit {
	var out []Unit
	for _, u := range c.Units {
		ok := true
		for _, d := range deposits {
			if !c.Compatible(u, d) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, u)
		}
	}
	return out
}

func find[T any](items []T, name string, key func(T) string) (T, bool) {
	for _, it := range items {
		if key(it) == name {
			return it, true
		}
	}
	var zero T
	return zero, false
}
