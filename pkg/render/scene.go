package render

import (
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/world"
)

// Scene is everything a renderer draws.
type Scene struct {
	Bounds geom.Area

	// Field holds the deposits; only tiles inside Bounds are drawn.
	Field *deposit.Field

	// Glyphs maps deposit types to their map glyph. Types without a glyph
	// are drawn as '~'.
	Glyphs map[string]rune

	// Obstacles are drawn beneath markers. Placeholders are skipped since
	// the markers they stand for are drawn instead.
	Obstacles []world.Obstacle

	Markers []world.Marker
}

// GlyphsFrom returns the deposit glyphs of a catalog.
func GlyphsFrom(c *catalog.Catalog) map[string]rune {
	glyphs := make(map[string]rune, len(c.Deposits))
	for _, d := range c.Deposits {
		if r := []rune(d.Glyph); len(r) > 0 {
			glyphs[d.Name] = r[0]
		}
	}
	return glyphs
}

// Glyphs used by the text renderer.
const (
	GlyphEmpty       = deposit.Empty
	GlyphUnknown     = '~'
	GlyphUnit        = 'U'
	GlyphEntrance    = 'E'
	GlyphExit        = 'X'
	GlyphRelay       = 'P'
	GlyphBooster     = 'B'
	GlyphStructure   = '#'
	GlyphVegetation  = 'T'
	GlyphDebris      = '*'
	GlyphTransit     = '='
	GlyphActor       = '@'
	GlyphUnknownMark = '?'
)

var arrows = map[geom.Direction]rune{
	geom.North: '^',
	geom.East:  '>',
	geom.South: 'v',
	geom.West:  '<',
}

// MarkerGlyph returns the glyph of a marker.
func MarkerGlyph(m world.Marker) rune {
	switch m.Kind {
	case world.KindUnit:
		return GlyphUnit
	case world.KindTransporter:
		switch m.Underground {
		case world.Entrance:
			return GlyphEntrance
		case world.Exit:
			return GlyphExit
		}
		return arrows[m.Direction]
	case world.KindRelay:
		return GlyphRelay
	case world.KindBooster:
		return GlyphBooster
	}
	return GlyphUnknownMark
}

// ObstacleGlyph returns the glyph of an obstacle class, or 0 for classes
// that are not drawn.
func ObstacleGlyph(c world.Class) rune {
	switch c {
	case world.Structure:
		return GlyphStructure
	case world.Vegetation:
		return GlyphVegetation
	case world.Debris:
		return GlyphDebris
	case world.GroundTransit:
		return GlyphTransit
	case world.Actor:
		return GlyphActor
	}
	return 0
}
