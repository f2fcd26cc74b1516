package render

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/matzehuels/patchplan/pkg/geom"
)

// Text draws the scene as one line of glyphs per tile row, top row first.
func Text(s Scene) []byte {
	w, h := s.Bounds.Width(), s.Bounds.Height()
	if w == 0 || h == 0 {
		return nil
	}
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(string(GlyphEmpty), w))
	}
	set := func(t geom.Tile, r rune) {
		if s.Bounds.Contains(t) {
			grid[t.Y-s.Bounds.MinY][t.X-s.Bounds.MinX] = r
		}
	}

	if s.Field != nil {
		for _, kind := range s.Field.Types() {
			g, ok := s.Glyphs[kind]
			if !ok {
				g = GlyphUnknown
			}
			for t := range s.Field.Tiles(kind) {
				set(t, g)
			}
		}
	}
	for _, o := range s.Obstacles {
		if g := ObstacleGlyph(o.Class); g != 0 {
			for _, t := range o.Box.Tiles() {
				set(t, g)
			}
		}
	}
	for _, m := range s.Markers {
		g := MarkerGlyph(m)
		for _, t := range m.Footprint().Tiles() {
			set(t, g)
		}
	}

	var buf bytes.Buffer
	for _, row := range grid {
		buf.WriteString(string(row))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Legend returns "glyph name" lines for the deposit types and marker
// names present in the scene, sorted by glyph.
func Legend(s Scene) []string {
	seen := make(map[rune]string)
	if s.Field != nil {
		for _, kind := range s.Field.Types() {
			if g, ok := s.Glyphs[kind]; ok {
				seen[g] = kind
			}
		}
	}
	for _, m := range s.Markers {
		g := MarkerGlyph(m)
		if _, ok := seen[g]; !ok {
			seen[g] = m.Name
		}
	}
	lines := make([]string, 0, len(seen))
	for g, name := range seen {
		lines = append(lines, fmt.Sprintf("%c %s", g, name))
	}
	sort.Strings(lines)
	return lines
}
