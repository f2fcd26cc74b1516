package deposit_test

import (
	"fmt"

	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/geom"
)

func ExampleParseMap() {
	legend := map[string]string{"i": "iron-ore", "c": "copper-ore"}
	field, err := deposit.ParseMap([]string{
		"iic",
		"iT.",
	}, geom.Tile{X: 10, Y: 0}, legend, "T")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	for _, kind := range field.Types() {
		fmt.Println(kind, geom.FormatTiles(field.Tiles(kind).Sorted()))
	}
	primary, foreign := field.Split([]string{"iron-ore"})
	fmt.Println(primary.Len(), foreign.Len())
	// Output:
	// copper-ore [12,0]
	// iron-ore [10,0] [11,0] [10,1]
	// 3 1
}
