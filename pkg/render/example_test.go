package render_test

import (
	"fmt"

	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/render"
	"github.com/matzehuels/patchplan/pkg/world"
)

func ExampleText() {
	field := deposit.NewField()
	field.AddArea("iron-ore", geom.Area{MaxX: 4, MaxY: 2})

	scene := render.Scene{
		Bounds: geom.Area{MaxX: 4, MaxY: 2},
		Field:  field,
		Glyphs: map[string]rune{"iron-ore": 'i'},
		Markers: []world.Marker{
			{Name: "burner-mining-drill", Kind: world.KindUnit, Position: geom.Vec{X: 1, Y: 1}, Width: 2, Height: 2},
			{Name: "transport-belt", Kind: world.KindTransporter, Position: geom.Vec{X: 2.5, Y: 0.5}, Direction: geom.South, Width: 1, Height: 1},
			{Name: "transport-belt", Kind: world.KindTransporter, Position: geom.Vec{X: 2.5, Y: 1.5}, Direction: geom.South, Width: 1, Height: 1},
		},
	}

	fmt.Print(string(render.Text(scene)))
	for _, line := range render.Legend(scene) {
		fmt.Println(line)
	}
	// Output:
	// UUvi
	// UUvi
	// U burner-mining-drill
	// i iron-ore
	// v transport-belt
}
