package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/patchplan/pkg/world"
)

// TileInches is the diagram size of one map tile.
const TileInches = 0.25

var kindColors = map[world.Kind]string{
	world.KindUnit:        "#4e79a7",
	world.KindTransporter: "#f28e2b",
	world.KindRelay:       "#e15759",
	world.KindBooster:     "#59a14f",
}

// ToDOT converts the scene to Graphviz DOT. Every marker becomes a box node
// of its footprint size, pinned at its map position; y grows downward like
// the map. The selection is drawn as a dashed frame.
func ToDOT(s Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=filled, fixedsize=true, fontsize=8, penwidth=0.5];\n")
	buf.WriteString("\n")

	b := s.Bounds
	fmt.Fprintf(&buf, "  selection [label=\"\", style=dashed, fillcolor=none, width=%.3f, height=%.3f, pos=%q];\n",
		float64(b.Width())*TileInches, float64(b.Height())*TileInches,
		pos(float64(b.MinX+b.MaxX)/2, float64(b.MinY+b.MaxY)/2))

	for _, o := range s.Obstacles {
		if ObstacleGlyph(o.Class) == 0 {
			continue
		}
		c := o.Box.Center()
		fmt.Fprintf(&buf, "  o%d [label=\"\", fillcolor=\"#bab0ac\", width=%.3f, height=%.3f, pos=%q, tooltip=%q];\n",
			o.ID, o.Box.Width()*TileInches, o.Box.Height()*TileInches, pos(c.X, c.Y), o.Name)
	}

	for i, m := range s.Markers {
		fp := m.Footprint()
		fmt.Fprintf(&buf, "  m%d [label=%q, fillcolor=%q, width=%.3f, height=%.3f, pos=%q, tooltip=%q];\n",
			i, string(MarkerGlyph(m)), kindColors[m.Kind],
			fp.Width()*TileInches, fp.Height()*TileInches, pos(m.Position.X, m.Position.Y), m.String())
	}

	buf.WriteString("}\n")
	return buf.String()
}

// pos formats a pinned neato position. Graphviz y grows upward, so map y is
// negated.
func pos(x, y float64) string {
	return fmt.Sprintf("%.3f,%.3f!", x*TileInches, -y*TileInches)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG with the neato engine.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
