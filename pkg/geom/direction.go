package geom

import (
	"fmt"
	"strings"
)

// Direction is one of the four cardinal directions.
type Direction uint8

const (
	North Direction = iota
	East
	South
	West
)

var directionNames = [...]string{"north", "east", "south", "west"}

func (d Direction) String() string {
	if int(d) < len(directionNames) {
		return directionNames[d]
	}
	return fmt.Sprintf("direction(%d)", d)
}

// ParseDirection accepts full names ("south") and initials ("S"), case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "n", "north":
		return North, nil
	case "e", "east":
		return East, nil
	case "s", "south":
		return South, nil
	case "w", "west":
		return West, nil
	}
	return North, fmt.Errorf("invalid direction: %q (must be one of: north, east, south, west)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction { return (d + 2) % 4 }

// Rotates reports whether an entity facing d has its width and height swapped.
func (d Direction) Rotates() bool { return d == East || d == West }

// TowardOrigin reports whether moving in d decreases the coordinate.
func (d Direction) TowardOrigin() bool { return d == North || d == West }

// Axis identifies a map axis.
type Axis uint8

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisX {
		return "x"
	}
	return "y"
}

// Axis returns the axis d moves along.
func (d Direction) Axis() Axis {
	if d == North || d == South {
		return AxisY
	}
	return AxisX
}

// Frame maps between world coordinates and a flow-relative frame.
type Frame struct {
	Flow Direction
}

// NewFrame returns the frame for a flow direction.
func NewFrame(flow Direction) Frame { return Frame{Flow: flow} }

// Along returns the world axis parallel to the flow.
func (f Frame) Along() Axis { return f.Flow.Axis() }

// Across returns the world axis perpendicular to the flow.
func (f Frame) Across() Axis {
	if f.Along() == AxisX {
		return AxisY
	}
	return AxisX
}

// ToWorld converts a frame position to a world position.
func (f Frame) ToWorld(across, along float64) Vec {
	if f.Along() == AxisY {
		return Vec{X: across, Y: along}
	}
	return Vec{X: along, Y: across}
}

// FromWorld converts a world position to (across, along).
func (f Frame) FromWorld(v Vec) (across, along float64) {
	if f.Along() == AxisY {
		return v.X, v.Y
	}
	return v.Y, v.X
}

// TileAt converts an integer frame position to a world tile.
func (f Frame) TileAt(across, along int) Tile {
	if f.Along() == AxisY {
		return Tile{X: across, Y: along}
	}
	return Tile{X: along, Y: across}
}

// Span returns the area's bounds as (acrossMin, acrossMax, alongMin, alongMax).
func (f Frame) Span(a Area) (acrossMin, acrossMax, alongMin, alongMax int) {
	if f.Along() == AxisY {
		return a.MinX, a.MaxX, a.MinY, a.MaxY
	}
	return a.MinY, a.MaxY, a.MinX, a.MaxX
}

// Step returns +1 if the flow moves away from the origin and -1 otherwise.
func (f Frame) Step() int {
	if f.Flow.TowardOrigin() {
		return -1
	}
	return 1
}

// Facing returns the direction a unit on the given side of a lane faces so
// that it points at the lane. The low side has the smaller across coordinate.
func (f Frame) Facing(low bool) Direction {
	if f.Along() == AxisY {
		if low {
			return East
		}
		return West
	}
	if low {
		return South
	}
	return North
}
