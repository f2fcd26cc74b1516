package placer

import (
	"io"
	"math"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchplan/pkg/conflict"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/layout"
	"github.com/matzehuels/patchplan/pkg/world"
)

// Env is shared by every stage of one run.
type Env struct {
	Resolver *conflict.Resolver
	Quality  string
	Logger   *log.Logger
}

// Report is the outcome of one stage.
type Report struct {
	conflict.Tally
	// Markers holds the markers the sink accepted, in emission order.
	Markers []world.Marker `json:"-"`
}

// Merge adds the counts and markers of o to r.
func (r *Report) Merge(o Report) {
	r.Placed += o.Placed
	r.Skipped += o.Skipped
	r.Markers = append(r.Markers, o.Markers...)
}

func (e Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.NewWithOptions(io.Discard, log.Options{})
	}
	return e.Logger
}

// emit stamps the run quality on m and routes it through the resolver.
func (e Env) emit(r *Report, m world.Marker) conflict.Outcome {
	m.Quality = e.Quality
	o := e.Resolver.Place(m)
	r.Add(o)
	if o == conflict.Placed {
		r.Markers = append(r.Markers, m)
	}
	return o
}

// Units places one unit marker per plan placement.
func Units(env Env, plan *layout.Plan) Report {
	var r Report
	for _, pl := range plan.Placements {
		env.emit(&r, world.Marker{
			Name:      plan.Unit.Name,
			Kind:      world.KindUnit,
			Position:  pl.Center,
			Direction: pl.Direction,
			Width:     plan.Unit.Width,
			Height:    plan.Unit.Height,
		})
	}
	return r
}

// Blocked returns the tiles covered by the given markers.
func Blocked(reports ...Report) geom.TileSet {
	s := geom.NewTileSet()
	for _, r := range reports {
		for _, m := range r.Markers {
			s.AddBox(m.Footprint())
		}
	}
	return s
}

// inFlowOrder returns along coordinates sorted so that the first element is
// the first one items pass.
func inFlowOrder(along []float64, f geom.Frame) []float64 {
	out := slices.Clone(along)
	slices.Sort(out)
	if f.Step() < 0 {
		slices.Reverse(out)
	}
	return out
}

// outputTile returns the along center of the tile a unit centered at c
// outputs onto.
func outputTile(c float64) float64 {
	return math.Floor(c) + 0.5
}
