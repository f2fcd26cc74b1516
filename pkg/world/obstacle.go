package world

import (
	"fmt"
	"strings"

	"github.com/matzehuels/patchplan/pkg/geom"
)

// Class is the closed set of obstacle kinds the conflict resolver reasons about.
type Class uint8

const (
	// Structure is any built entity not covered by another class.
	Structure Class = iota
	// Vegetation is naturally occurring growth such as trees.
	Vegetation
	// Debris is loose natural clutter such as rocks and cliffs remnants.
	Debris
	// GroundTransit is ground-level transit infrastructure such as rails.
	GroundTransit
	// Elevated is overhead infrastructure with no ground footprint.
	Elevated
	// Actor is a character or vehicle.
	Actor
	// Deposit is a resource deposit entity.
	Deposit
	// Placeholder is a pending construction marker.
	Placeholder
)

var classNames = [...]string{
	Structure:     "structure",
	Vegetation:    "vegetation",
	Debris:        "debris",
	GroundTransit: "ground-transit",
	Elevated:      "elevated",
	Actor:         "actor",
	Deposit:       "deposit",
	Placeholder:   "placeholder",
}

func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return fmt.Sprintf("class(%d)", c)
}

// ParseClass resolves a class name. Common host type names are accepted as
// aliases ("tree", "rock", "rail", "character", "resource", "ghost").
func ParseClass(s string) (Class, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "structure", "building", "entity":
		return Structure, nil
	case "vegetation", "tree", "plant":
		return Vegetation, nil
	case "debris", "rock", "simple-entity":
		return Debris, nil
	case "ground-transit", "rail", "straight-rail", "curved-rail":
		return GroundTransit, nil
	case "elevated", "elevated-rail", "rail-ramp-top":
		return Elevated, nil
	case "actor", "character", "car", "vehicle":
		return Actor, nil
	case "deposit", "resource":
		return Deposit, nil
	case "placeholder", "ghost", "entity-ghost":
		return Placeholder, nil
	}
	return Structure, fmt.Errorf("unknown obstacle class: %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Class) UnmarshalText(b []byte) error {
	v, err := ParseClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Natural reports whether the class is naturally occurring clutter.
func (c Class) Natural() bool { return c == Vegetation || c == Debris }

// Obstacle is an entity occupying part of the map.
type Obstacle struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Class Class    `json:"class"`
	Box   geom.Box `json:"box"`
}
