package world

import (
	"errors"
	"fmt"

	"github.com/matzehuels/patchplan/pkg/geom"
)

// Sentinel errors returned by Grid.
var (
	// ErrOccupied is returned by Place when the footprint collides with an
	// obstacle that still stands.
	ErrOccupied = errors.New("position occupied")

	// ErrUnknownObstacle is returned by Remove for obstacles the grid does
	// not hold (or already removed).
	ErrUnknownObstacle = errors.New("unknown obstacle")
)

// Grid is an in-memory World. It is not safe for concurrent use; give every
// planning run its own Grid.
type Grid struct {
	obstacles []Obstacle
	removed   map[int]bool
	markers   []Marker
	nextID    int
}

// NewGrid returns an empty grid.
func NewGrid() *Grid {
	return &Grid{removed: make(map[int]bool), nextID: 1}
}

// AddObstacle inserts an obstacle and returns it with its assigned ID.
func (g *Grid) AddObstacle(name string, class Class, box geom.Box) Obstacle {
	o := Obstacle{ID: g.nextID, Name: name, Class: class, Box: box}
	g.nextID++
	g.obstacles = append(g.obstacles, o)
	return o
}

// FindObstacles implements World.
func (g *Grid) FindObstacles(area geom.Box) []Obstacle {
	var out []Obstacle
	for _, o := range g.obstacles {
		if g.removed[o.ID] {
			continue
		}
		if o.Box.Intersects(area) {
			out = append(out, o)
		}
	}
	return out
}

// Remove implements World.
func (g *Grid) Remove(o Obstacle) error {
	for _, cur := range g.obstacles {
		if cur.ID == o.ID && !g.removed[o.ID] {
			g.removed[o.ID] = true
			return nil
		}
	}
	return fmt.Errorf("remove %s #%d: %w", o.Name, o.ID, ErrUnknownObstacle)
}

// Place implements World. The marker becomes a Placeholder obstacle.
func (g *Grid) Place(m Marker) error {
	fp := m.Footprint()
	for _, o := range g.FindObstacles(fp) {
		if blocksSink(o.Class) {
			return fmt.Errorf("place %s: %s #%d: %w", m, o.Name, o.ID, ErrOccupied)
		}
	}
	g.markers = append(g.markers, m)
	g.AddObstacle(m.Name, Placeholder, fp)
	return nil
}

// blocksSink reports whether an obstacle of class c prevents the sink from
// accepting a marker on top of it. Ground transit only blocks when the
// resolver says so; markers over it are built as crossings.
func blocksSink(c Class) bool {
	switch c {
	case Deposit, Actor, Elevated, GroundTransit:
		return false
	}
	return true
}

// Markers returns the markers accepted so far, in placement order.
func (g *Grid) Markers() []Marker {
	return append([]Marker(nil), g.markers...)
}

// Removed returns the obstacles marked for removal, in insertion order.
func (g *Grid) Removed() []Obstacle {
	var out []Obstacle
	for _, o := range g.obstacles {
		if g.removed[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

// Obstacles returns the obstacles still standing, placeholders included.
func (g *Grid) Obstacles() []Obstacle {
	var out []Obstacle
	for _, o := range g.obstacles {
		if !g.removed[o.ID] {
			out = append(out, o)
		}
	}
	return out
}

var _ World = (*Grid)(nil)
