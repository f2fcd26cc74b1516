package world

import (
	"fmt"

	"github.com/matzehuels/patchplan/pkg/geom"
)

// Kind identifies the planner stage a marker belongs to.
type Kind uint8

const (
	KindUnit Kind = iota
	KindTransporter
	KindRelay
	KindBooster
)

var kindNames = [...]string{"unit", "transporter", "relay", "booster"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Underground distinguishes the two halves of an underground transporter.
type Underground uint8

const (
	// Surface is a regular transporter segment.
	Surface Underground = iota
	// Entrance takes items underground.
	Entrance
	// Exit brings items back to the surface.
	Exit
)

func (u Underground) String() string {
	switch u {
	case Entrance:
		return "entrance"
	case Exit:
		return "exit"
	}
	return "surface"
}

// MarshalText implements encoding.TextMarshaler.
func (u Underground) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

// ModuleRequest asks the host to insert Count modules of Name.
type ModuleRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Marker is a placeholder construction record handed to the sink.
type Marker struct {
	Name        string          `json:"name"`
	Kind        Kind            `json:"kind"`
	Position    geom.Vec        `json:"position"`
	Direction   geom.Direction  `json:"direction"`
	Quality     string          `json:"quality"`
	Underground Underground     `json:"underground,omitempty"`
	Modules     []ModuleRequest `json:"modules,omitempty"`
	Width       int             `json:"width"`
	Height      int             `json:"height"`
}

// Footprint returns the box the marker occupies.
func (m Marker) Footprint() geom.Box {
	return geom.Footprint(m.Position, m.Width, m.Height, m.Direction)
}

func (m Marker) String() string {
	return fmt.Sprintf("%s@%v/%v", m.Name, m.Position, m.Direction)
}

// World is the host collaborator: obstacle queries, removal and the sink.
type World interface {
	// FindObstacles returns every obstacle whose box intersects area.
	FindObstacles(area geom.Box) []Obstacle
	// Remove marks an obstacle for removal. Removed obstacles no longer
	// appear in queries.
	Remove(o Obstacle) error
	// Place hands a marker to the sink. An error means the sink refused it.
	Place(m Marker) error
}
