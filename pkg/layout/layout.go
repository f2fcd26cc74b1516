package layout

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/geom"
)

// SmallFootprint is the largest unit footprint that uses simple-fill
// transporters and corridor relays.
const SmallFootprint = 2

// Density selects how tightly units are packed.
type Density uint8

const (
	Dense Density = iota
	Sparse
)

func (d Density) String() string {
	if d == Sparse {
		return "sparse"
	}
	return "dense"
}

// ParseDensity resolves "dense" or "sparse".
func ParseDensity(s string) (Density, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dense":
		return Dense, nil
	case "sparse":
		return Sparse, nil
	}
	return Dense, fmt.Errorf("invalid density: %q (must be one of: dense, sparse)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (d Density) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Density) UnmarshalText(b []byte) error {
	v, err := ParseDensity(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// Side identifies one column of a pair.
type Side uint8

const (
	// Low is the column with the smaller across coordinate.
	Low Side = iota
	// High is the column with the larger across coordinate.
	High
)

func (s Side) String() string {
	if s == High {
		return "high"
	}
	return "low"
}

// MarshalText implements encoding.TextMarshaler.
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Side) UnmarshalText(b []byte) error {
	switch string(b) {
	case "low":
		*s = Low
	case "high":
		*s = High
	default:
		return fmt.Errorf("invalid side: %q", b)
	}
	return nil
}

// Placement is one unit position.
type Placement struct {
	Center    geom.Vec       `json:"center"`
	Direction geom.Direction `json:"direction"`
	Side      Side           `json:"side"`
	Line      int            `json:"line"`
}

// Line is the transporter lane between the two columns of a pair.
type Line struct {
	Axis geom.Axis `json:"axis"`

	// LaneTile is the across tile index of the lane; Lane is its center.
	LaneTile int     `json:"lane_tile"`
	Lane     float64 `json:"lane"`

	// Min and Max bound the lane along the flow axis: the near edge of the
	// first unit to the far edge of the last one.
	Min int `json:"min"`
	Max int `json:"max"`

	// Low, High and All hold unit center coordinates along the flow axis,
	// ascending. All is the deduplicated union of both sides.
	Low  []float64 `json:"low,omitempty"`
	High []float64 `json:"high,omitempty"`
	All  []float64 `json:"all"`

	// LowEdge and HighEdge are the outer across edges of the pair.
	LowEdge  int `json:"low_edge"`
	HighEdge int `json:"high_edge"`
}

// Corridor is the across-axis space before, between or after pairs.
type Corridor struct {
	Min int `json:"min"`
	Max int `json:"max"`

	// Lines lists the indices of the adjacent lines (one or two).
	Lines []int `json:"lines"`

	// AlongMin and AlongMax bound the adjacent lines along the flow axis.
	AlongMin int `json:"along_min"`
	AlongMax int `json:"along_max"`

	// RelayMin is the first across tile of the relay lane; RelayWidth is
	// zero when the corridor carries none.
	RelayMin   int `json:"relay_min"`
	RelayWidth int `json:"relay_width,omitempty"`

	// BoosterMin and BoosterMax bound the booster region across.
	BoosterMin int `json:"booster_min"`
	BoosterMax int `json:"booster_max"`
}

// Plan is the calculator output. It is immutable once returned.
type Plan struct {
	Unit       catalog.Unit   `json:"unit"`
	Flow       geom.Direction `json:"flow"`
	Density    Density        `json:"density"`
	Spacing    int            `json:"spacing"`
	Stride     int            `json:"stride"`
	Placements []Placement    `json:"placements"`
	Lines      []Line         `json:"lines"`
	Corridors  []Corridor     `json:"corridors"`
}

// Frame returns the flow-relative frame of the plan.
func (p *Plan) Frame() geom.Frame { return geom.NewFrame(p.Flow) }

// Footprint returns the box occupied by a placed unit.
func (p *Plan) Footprint(pl Placement) geom.Box {
	return geom.Footprint(pl.Center, p.Unit.Width, p.Unit.Height, pl.Direction)
}

// Empty reports whether no unit was placed.
func (p *Plan) Empty() bool { return len(p.Placements) == 0 }

// Input holds everything the calculator reads.
type Input struct {
	Unit    catalog.Unit
	Bounds  geom.Area
	Density Density
	Flow    geom.Direction

	// Primary holds the tiles of the selected deposit types.
	Primary geom.TileSet

	// Foreign holds the tiles of every other deposit type. Nil disables
	// foreign filtering.
	Foreign geom.TileSet

	// BoosterWidth reserves a booster region of this width in every corridor.
	BoosterWidth int

	// RelayWidth is the relay lane reserved in corridors for small units.
	// Zero means one tile.
	RelayWidth int
}

// Spacing returns the along-axis distance between consecutive unit origins.
func Spacing(u catalog.Unit, d Density) int {
	if d == Sparse {
		return max(u.Along(), areaSide(u))
	}
	return u.Along()
}

// PairGap returns the across-axis gap between the outer edge of one pair and
// the inner edge of the next, excluding any booster region.
func PairGap(u catalog.Unit, d Density, relayWidth int) int {
	gap := 0
	if d == Sparse {
		gap = max(0, areaSide(u)-u.Across())
	}
	if u.Footprint() <= SmallFootprint {
		gap += max(1, relayWidth)
	}
	return gap
}

// Stagger returns the along offset applied to every second pair.
func Stagger(u catalog.Unit, d Density) int {
	if d == Sparse {
		return Spacing(u, d) / 2
	}
	return 0
}

// areaSide is the operating diameter in whole tiles.
func areaSide(u catalog.Unit) int {
	return 2*int(math.Floor(u.Radius)) + 1
}

// Reach returns how many whole tiles an operating area can extend past the
// selection edge.
func Reach(u catalog.Unit) int {
	return int(math.Ceil(u.Radius))
}

// OperatingArea returns the box a unit centered on c works.
func OperatingArea(u catalog.Unit, c geom.Vec) geom.Box {
	return geom.BoxAround(c, 2*u.Radius, 2*u.Radius)
}

// fit returns how many items of size n spaced by stride fit in length and
// the offset that centers them.
func fit(length, n, stride int) (count, lead int) {
	if length < n || n <= 0 {
		return 0, 0
	}
	count = 1 + (length-n)/stride
	used := (count-1)*stride + n
	return count, (length - used) / 2
}

// Compute runs the calculator.
func Compute(in Input) Plan {
	u := in.Unit
	plan := Plan{
		Unit:       u,
		Flow:       in.Flow,
		Density:    in.Density,
		Spacing:    Spacing(u, in.Density),
		Placements: []Placement{},
		Lines:      []Line{},
		Corridors:  []Corridor{},
	}
	if in.Bounds.Empty() || u.Width <= 0 || u.Height <= 0 {
		return plan
	}

	frame := geom.NewFrame(in.Flow)
	a, b := u.Across(), u.Along()
	pairWidth := 2*a + 1
	gap := PairGap(u, in.Density, in.RelayWidth)
	boosterWidth := max(0, in.BoosterWidth)
	plan.Stride = pairWidth + gap + boosterWidth

	acrossMin, acrossMax, alongMin, alongMax := frame.Span(in.Bounds)
	pairs, acrossLead := fit(acrossMax-acrossMin, pairWidth, plan.Stride)
	rows, alongLead := fit(alongMax-alongMin, b, plan.Spacing)
	if pairs == 0 || rows == 0 {
		return plan
	}

	start := acrossMin + acrossLead
	stagger := Stagger(u, in.Density)
	lineOf := make(map[int]int, pairs)

	for p := 0; p < pairs; p++ {
		u0 := start + p*plan.Stride
		offset := 0
		if p%2 == 1 {
			offset = stagger
		}

		line := Line{
			Axis:     frame.Along(),
			LaneTile: u0 + a,
			Lane:     float64(u0+a) + 0.5,
			LowEdge:  u0,
			HighEdge: u0 + pairWidth,
		}
		var placed []Placement
		for v0 := alongMin + alongLead + offset; v0+b <= alongMax; v0 += plan.Spacing {
			along := float64(v0) + float64(b)/2
			for _, side := range []Side{Low, High} {
				colStart := u0
				if side == High {
					colStart = u0 + a + 1
				}
				center := frame.ToWorld(float64(colStart)+float64(a)/2, along)
				if !accept(in, center) {
					continue
				}
				placed = append(placed, Placement{
					Center:    center,
					Direction: frame.Facing(side == Low),
					Side:      side,
				})
				if side == Low {
					line.Low = append(line.Low, along)
				} else {
					line.High = append(line.High, along)
				}
			}
		}
		if len(placed) == 0 {
			continue
		}

		idx := len(plan.Lines)
		for i := range placed {
			placed[i].Line = idx
		}
		line.All = union(line.Low, line.High)
		line.Min = int(math.Floor(line.All[0] - float64(b)/2))
		line.Max = int(math.Ceil(line.All[len(line.All)-1] + float64(b)/2))
		plan.Lines = append(plan.Lines, line)
		plan.Placements = append(plan.Placements, placed...)
		lineOf[p] = idx
	}

	plan.Corridors = corridors(in, &plan, lineOf, pairs, start, pairWidth, boosterWidth)
	return plan
}

// accept applies the deposit filters to a candidate center.
func accept(in Input, center geom.Vec) bool {
	area := OperatingArea(in.Unit, center)
	if !in.Primary.Overlaps(area) {
		return false
	}
	return in.Foreign == nil || !in.Foreign.Overlaps(area)
}

func union(a, b []float64) []float64 {
	all := make([]float64, 0, len(a)+len(b))
	all = append(all, a...)
	all = append(all, b...)
	slices.Sort(all)
	return slices.Compact(all)
}

// corridors builds the space before every pair slot and after the last one.
// Outer corridors sit outside the pair block and are exactly wide enough for
// the relay lane and booster region.
func corridors(in Input, plan *Plan, lineOf map[int]int, pairs, start, pairWidth, boosterWidth int) []Corridor {
	relayWidth := 0
	if in.Unit.Footprint() <= SmallFootprint {
		relayWidth = max(1, in.RelayWidth)
	}

	out := []Corridor{}
	for slot := 0; slot <= pairs; slot++ {
		var adjacent []int
		if idx, ok := lineOf[slot-1]; ok {
			adjacent = append(adjacent, idx)
		}
		if idx, ok := lineOf[slot]; ok {
			adjacent = append(adjacent, idx)
		}
		if len(adjacent) == 0 {
			continue
		}

		var c Corridor
		switch slot {
		case 0:
			// Outside the first pair: booster region, then the relay lane
			// against the pair.
			edge := start
			c = Corridor{
				Min:        edge - relayWidth - boosterWidth,
				Max:        edge,
				RelayMin:   edge - relayWidth,
				BoosterMin: edge - relayWidth - boosterWidth,
				BoosterMax: edge - relayWidth,
			}
		case pairs:
			edge := start + (pairs-1)*plan.Stride + pairWidth
			c = Corridor{
				Min:        edge,
				Max:        edge + relayWidth + boosterWidth,
				RelayMin:   edge,
				BoosterMin: edge + relayWidth,
				BoosterMax: edge + relayWidth + boosterWidth,
			}
		default:
			prev := start + (slot-1)*plan.Stride + pairWidth
			next := start + slot*plan.Stride
			c = Corridor{
				Min:        prev,
				Max:        next,
				RelayMin:   prev,
				BoosterMin: prev + relayWidth,
				BoosterMax: next,
			}
		}
		c.RelayWidth = relayWidth
		c.Lines = adjacent
		c.AlongMin, c.AlongMax = plan.Lines[adjacent[0]].Min, plan.Lines[adjacent[0]].Max
		for _, idx := range adjacent[1:] {
			c.AlongMin = min(c.AlongMin, plan.Lines[idx].Min)
			c.AlongMax = max(c.AlongMax, plan.Lines[idx].Max)
		}
		out = append(out, c)
	}
	return out
}
