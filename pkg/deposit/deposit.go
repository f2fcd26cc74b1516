// Package deposit holds scanned resource deposits: for every deposit type,
// the set of tiles it occupies.
//
// A [Field] is built once per planning run and is read-only afterwards. The
// planner splits it into the primary set (the deposit types the player chose)
// and the foreign set (everything else), see [Field.Split].
package deposit

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/geom"
)

// Empty is the map glyph for a tile without deposits.
const Empty = '.'

// Field maps deposit types to their tiles.
type Field struct {
	tiles map[string]geom.TileSet
}

// NewField returns an empty field.
func NewField() *Field {
	return &Field{tiles: make(map[string]geom.TileSet)}
}

// Add records that tile t holds deposit kind.
func (f *Field) Add(kind string, t geom.Tile) {
	s, ok := f.tiles[kind]
	if !ok {
		s = make(geom.TileSet)
		f.tiles[kind] = s
	}
	s.Add(t)
}

// AddArea records every tile of a as deposit kind.
func (f *Field) AddArea(kind string, a geom.Area) {
	for y := a.MinY; y < a.MaxY; y++ {
		for x := a.MinX; x < a.MaxX; x++ {
			f.Add(kind, geom.Tile{X: x, Y: y})
		}
	}
}

// Types returns the deposit types present, sorted.
func (f *Field) Types() []string {
	types := make([]string, 0, len(f.tiles))
	for k, s := range f.tiles {
		if s.Len() > 0 {
			types = append(types, k)
		}
	}
	sort.Strings(types)
	return types
}

// Tiles returns the tiles of one deposit type. The result must not be modified.
func (f *Field) Tiles(kind string) geom.TileSet {
	return f.tiles[kind]
}

// Count returns the number of deposit tiles over all types.
func (f *Field) Count() int {
	n := 0
	for _, s := range f.tiles {
		n += s.Len()
	}
	return n
}

// Clip returns a field restricted to the tiles inside a.
func (f *Field) Clip(a geom.Area) *Field {
	out := NewField()
	for kind, s := range f.tiles {
		for t := range s {
			if a.Contains(t) {
				out.Add(kind, t)
			}
		}
	}
	return out
}

// Split partitions the field into the tiles of the selected types and the
// tiles of every other type. With no selection every type is primary and
// the foreign set is nil.
func (f *Field) Split(selected []string) (primary, foreign geom.TileSet) {
	primary = make(geom.TileSet)
	if len(selected) == 0 {
		for _, s := range f.tiles {
			primary.Union(s)
		}
		return primary, nil
	}

	want := make(map[string]bool, len(selected))
	for _, k := range selected {
		want[k] = true
	}
	foreign = make(geom.TileSet)
	for kind, s := range f.tiles {
		if want[kind] {
			primary.Union(s)
		} else {
			foreign.Union(s)
		}
	}
	return primary, foreign
}

// CompatibleUnits returns the units of c able to work every deposit type in
// the field.
func (f *Field) CompatibleUnits(c *catalog.Catalog) []catalog.Unit {
	return c.CompatibleUnits(f.Types())
}

// Canonical returns a deterministic encoding of the field, suitable for
// hashing into cache keys.
func (f *Field) Canonical() []byte {
	var buf bytes.Buffer
	for _, kind := range f.Types() {
		buf.WriteString(kind)
		buf.WriteByte(':')
		for _, t := range f.tiles[kind].Sorted() {
			fmt.Fprintf(&buf, "%d,%d;", t.X, t.Y)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// ParseMap builds a field from glyph rows. Row i describes tiles at
// y = origin.Y + i; column j describes x = origin.X + j. The legend maps
// glyphs to deposit types; [Empty] and glyphs outside the legend that are
// listed in ignore produce no deposit.
func ParseMap(rows []string, origin geom.Tile, legend map[string]string, ignore string) (*Field, error) {
	f := NewField()
	for i, row := range rows {
		for j, r := range []rune(row) {
			if r == Empty || strings.ContainsRune(ignore, r) {
				continue
			}
			kind, ok := legend[string(r)]
			if !ok {
				return nil, fmt.Errorf("row %d, column %d: glyph %q not in legend", i, j, r)
			}
			f.Add(kind, geom.Tile{X: origin.X + j, Y: origin.Y + i})
		}
	}
	return f, nil
}
