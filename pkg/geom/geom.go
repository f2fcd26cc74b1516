package geom

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// eps absorbs floating point noise when converting boxes to tiles.
const eps = 1e-6

// Tile is an integer tile coordinate.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Center returns the center of the tile.
func (t Tile) Center() Vec { return Vec{X: float64(t.X) + 0.5, Y: float64(t.Y) + 0.5} }

func (t Tile) String() string { return fmt.Sprintf("[%d,%d]", t.X, t.Y) }

// Vec is a fractional map position.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (v Vec) String() string { return fmt.Sprintf("(%g,%g)", v.X, v.Y) }

// TileOf returns the tile containing v.
func TileOf(v Vec) Tile {
	return Tile{X: int(math.Floor(v.X + eps)), Y: int(math.Floor(v.Y + eps))}
}

// Box is a continuous axis-aligned rectangle.
type Box struct {
	Min Vec `json:"min"`
	Max Vec `json:"max"`
}

// BoxAround returns the box of the given size centered on c.
func BoxAround(c Vec, w, h float64) Box {
	return Box{
		Min: Vec{X: c.X - w/2, Y: c.Y - h/2},
		Max: Vec{X: c.X + w/2, Y: c.Y + h/2},
	}
}

// Footprint returns the box occupied by an entity of width x height tiles
// centered on c and facing d. East and west facings swap the two sides.
func Footprint(c Vec, width, height int, d Direction) Box {
	w, h := width, height
	if d.Rotates() {
		w, h = h, w
	}
	return BoxAround(c, float64(w), float64(h))
}

// Width returns the x extent of the box.
func (b Box) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the y extent of the box.
func (b Box) Height() float64 { return b.Max.Y - b.Min.Y }

// Center returns the midpoint of the box.
func (b Box) Center() Vec {
	return Vec{X: (b.Min.X + b.Max.X) / 2, Y: (b.Min.Y + b.Max.Y) / 2}
}

// Shrink moves every edge inward by m.
func (b Box) Shrink(m float64) Box {
	return Box{
		Min: Vec{X: b.Min.X + m, Y: b.Min.Y + m},
		Max: Vec{X: b.Max.X - m, Y: b.Max.Y - m},
	}
}

// Expand grows the box by dx on the left and right and dy on top and bottom.
func (b Box) Expand(dx, dy float64) Box {
	return Box{
		Min: Vec{X: b.Min.X - dx, Y: b.Min.Y - dy},
		Max: Vec{X: b.Max.X + dx, Y: b.Max.Y + dy},
	}
}

// Intersects reports whether the interiors of b and o overlap.
// Boxes that only share an edge do not intersect.
func (b Box) Intersects(o Box) bool {
	return b.Min.X < o.Max.X-eps && o.Min.X < b.Max.X-eps &&
		b.Min.Y < o.Max.Y-eps && o.Min.Y < b.Max.Y-eps
}

// Tiles returns every tile whose square overlaps the interior of b, in
// row-major order.
func (b Box) Tiles() []Tile {
	x0 := int(math.Floor(b.Min.X + eps))
	y0 := int(math.Floor(b.Min.Y + eps))
	x1 := int(math.Ceil(b.Max.X-eps)) - 1
	y1 := int(math.Ceil(b.Max.Y-eps)) - 1
	if x1 < x0 || y1 < y0 {
		return nil
	}
	tiles := make([]Tile, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			tiles = append(tiles, Tile{X: x, Y: y})
		}
	}
	return tiles
}

// Area is a half-open rectangle of tiles: [MinX, MaxX) x [MinY, MaxY).
type Area struct {
	MinX int `json:"min_x" toml:"min_x" yaml:"min_x"`
	MinY int `json:"min_y" toml:"min_y" yaml:"min_y"`
	MaxX int `json:"max_x" toml:"max_x" yaml:"max_x"`
	MaxY int `json:"max_y" toml:"max_y" yaml:"max_y"`
}

// Width returns the number of tile columns.
func (a Area) Width() int { return max(0, a.MaxX-a.MinX) }

// Height returns the number of tile rows.
func (a Area) Height() int { return max(0, a.MaxY-a.MinY) }

// Empty reports whether the area contains no tiles.
func (a Area) Empty() bool { return a.Width() == 0 || a.Height() == 0 }

// Contains reports whether t lies inside the area.
func (a Area) Contains(t Tile) bool {
	return t.X >= a.MinX && t.X < a.MaxX && t.Y >= a.MinY && t.Y < a.MaxY
}

// Grow returns the area extended by n tiles on every side. An empty area
// stays empty.
func (a Area) Grow(n int) Area {
	if a.Empty() {
		return a
	}
	return Area{MinX: a.MinX - n, MinY: a.MinY - n, MaxX: a.MaxX + n, MaxY: a.MaxY + n}
}

// Box returns the continuous box covered by the area.
func (a Area) Box() Box {
	return Box{
		Min: Vec{X: float64(a.MinX), Y: float64(a.MinY)},
		Max: Vec{X: float64(a.MaxX), Y: float64(a.MaxY)},
	}
}

func (a Area) String() string {
	return fmt.Sprintf("[%d,%d]-[%d,%d]", a.MinX, a.MinY, a.MaxX, a.MaxY)
}

// Snap selects how a coordinate is aligned for an entity side length.
type Snap uint8

const (
	// SnapCenter aligns to tile centers (odd side lengths).
	SnapCenter Snap = iota
	// SnapEdge aligns to tile boundaries (even side lengths).
	SnapEdge
)

// SnapFor returns the snapping mode for an entity side length.
func SnapFor(size int) Snap {
	if size%2 == 0 {
		return SnapEdge
	}
	return SnapCenter
}

// Align moves c onto the nearest valid center coordinate. For SnapCenter
// this is the center of the tile containing c; for SnapEdge it is the
// nearest tile boundary, rounding halves up.
func (s Snap) Align(c float64) float64 {
	if s == SnapEdge {
		return math.Floor(c + 0.5 + eps)
	}
	return math.Floor(c+eps) + 0.5
}

// TileSet is a set of tiles.
type TileSet map[Tile]struct{}

// NewTileSet creates a set holding the given tiles.
func NewTileSet(tiles ...Tile) TileSet {
	s := make(TileSet, len(tiles))
	for _, t := range tiles {
		s[t] = struct{}{}
	}
	return s
}

// Add inserts t.
func (s TileSet) Add(t Tile) { s[t] = struct{}{} }

// Has reports whether t is in the set.
func (s TileSet) Has(t Tile) bool {
	_, ok := s[t]
	return ok
}

// Within returns the tiles of s inside a.
func (s TileSet) Within(a Area) TileSet {
	out := make(TileSet)
	for t := range s {
		if a.Contains(t) {
			out.Add(t)
		}
	}
	return out
}

// Len returns the number of tiles in the set.
func (s TileSet) Len() int { return len(s) }

// AddBox inserts every tile overlapped by b.
func (s TileSet) AddBox(b Box) {
	for _, t := range b.Tiles() {
		s[t] = struct{}{}
	}
}

// CountIn returns how many tiles overlapped by b are in the set.
func (s TileSet) CountIn(b Box) int {
	if len(s) == 0 {
		return 0
	}
	n := 0
	for _, t := range b.Tiles() {
		if s.Has(t) {
			n++
		}
	}
	return n
}

// Overlaps reports whether any tile overlapped by b is in the set.
func (s TileSet) Overlaps(b Box) bool {
	if len(s) == 0 {
		return false
	}
	for _, t := range b.Tiles() {
		if s.Has(t) {
			return true
		}
	}
	return false
}

// Union adds every tile of o to s.
func (s TileSet) Union(o TileSet) {
	for t := range o {
		s[t] = struct{}{}
	}
}

// Clone returns a copy of the set.
func (s TileSet) Clone() TileSet {
	c := make(TileSet, len(s))
	for t := range s {
		c[t] = struct{}{}
	}
	return c
}

// Sorted returns the tiles in row-major order.
func (s TileSet) Sorted() []Tile {
	tiles := make([]Tile, 0, len(s))
	for t := range s {
		tiles = append(tiles, t)
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Y != tiles[j].Y {
			return tiles[i].Y < tiles[j].Y
		}
		return tiles[i].X < tiles[j].X
	})
	return tiles
}

// Bounds returns the smallest area containing every tile of the set.
func (s TileSet) Bounds() Area {
	if len(s) == 0 {
		return Area{}
	}
	first := true
	var a Area
	for t := range s {
		if first {
			a = Area{MinX: t.X, MinY: t.Y, MaxX: t.X + 1, MaxY: t.Y + 1}
			first = false
			continue
		}
		a.MinX = min(a.MinX, t.X)
		a.MinY = min(a.MinY, t.Y)
		a.MaxX = max(a.MaxX, t.X+1)
		a.MaxY = max(a.MaxY, t.Y+1)
	}
	return a
}

// FormatTiles renders tiles as a compact list for log output.
func FormatTiles(tiles []Tile) string {
	parts := make([]string, len(tiles))
	for i, t := range tiles {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
