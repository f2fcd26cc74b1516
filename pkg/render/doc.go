// Package render draws planning results.
//
// # Overview
//
// A [Scene] collects what is on the map after a run: the selection, the
// deposits inside it, the obstacles still standing and the markers the
// sink accepted. Two renderers read it:
//
//   - [Text] draws a character grid, one glyph per tile, for terminals and
//     golden tests.
//   - [ToDOT] and [RenderSVG] build a Graphviz diagram with every marker
//     pinned at its map position.
//
// # Text Grid
//
// Markers take precedence over obstacles, which take precedence over
// deposits. [Legend] lists the glyphs in use.
//
//	scene := render.Scene{Bounds: sel, Field: field, Markers: grid.Markers()}
//	fmt.Print(string(render.Text(scene)))
//
// # SVG
//
// The diagram uses the neato engine with pinned node positions, so Graphviz
// only draws: it never moves anything.
//
//	svg, err := render.RenderSVG(render.ToDOT(scene))
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process; no system installation is required.
package render
