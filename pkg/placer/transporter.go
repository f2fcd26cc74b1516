package placer

import (
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/layout"
	"github.com/matzehuels/patchplan/pkg/world"
)

// TailOffset is how far downstream of the last entrance a closing exit
// surfaces. The tile in between is left for the relay.
const TailOffset = 2

// Transporters lays the output lane of every line.
//
// Small units (footprint <= [layout.SmallFootprint]) get a surface segment
// on every lane tile. Larger units get an underground chain: an entrance on
// the output tile of every unit row and an exit one tile upstream of every
// entrance but the first in flow. A line of n rows gets 2n-1 segments.
func Transporters(env Env, plan *layout.Plan, tr catalog.Transporter) Report {
	if tr.Name == "" {
		env.logger().Warn("no transporter prototype, skipping lanes")
		return Report{}
	}
	if plan.Unit.Footprint() <= layout.SmallFootprint {
		return fill(env, plan, tr)
	}
	if tr.Underground == "" {
		env.logger().Warn("transporter has no underground variant, skipping lanes", "transporter", tr.Name)
		return Report{}
	}
	return chain(env, plan, tr)
}

func fill(env Env, plan *layout.Plan, tr catalog.Transporter) Report {
	var r Report
	f := plan.Frame()
	for _, line := range plan.Lines {
		tiles := make([]float64, 0, line.Max-line.Min)
		for v := line.Min; v < line.Max; v++ {
			tiles = append(tiles, float64(v)+0.5)
		}
		for _, along := range inFlowOrder(tiles, f) {
			env.emit(&r, segment(tr.Name, f.ToWorld(line.Lane, along), plan.Flow, world.Surface))
		}
	}
	return r
}

func chain(env Env, plan *layout.Plan, tr catalog.Transporter) Report {
	var r Report
	f := plan.Frame()
	step := float64(f.Step())
	for _, line := range plan.Lines {
		rows := inFlowOrder(line.All, f)
		prev := 0.0
		for i, c := range rows {
			entrance := outputTile(c)
			if i > 0 {
				exit := entrance - step
				if gap := int((exit-prev)*step) - 1; tr.MaxUnderground > 0 && gap > tr.MaxUnderground {
					env.logger().Warn("underground span exceeds reach", "transporter", tr.Underground, "span", gap, "max", tr.MaxUnderground)
				}
				env.emit(&r, segment(tr.Underground, f.ToWorld(line.Lane, exit), plan.Flow, world.Exit))
			}
			env.emit(&r, segment(tr.Underground, f.ToWorld(line.Lane, entrance), plan.Flow, world.Entrance))
			prev = entrance
		}
	}
	return r
}

// TailExits surfaces every underground chain with a closing exit
// [TailOffset] tiles past its last entrance in flow. It is a no-op when
// [Transporters] lays surface segments or has no underground variant.
func TailExits(env Env, plan *layout.Plan, tr catalog.Transporter) Report {
	var r Report
	if tr.Name == "" || tr.Underground == "" || plan.Unit.Footprint() <= layout.SmallFootprint {
		return r
	}
	f := plan.Frame()
	step := float64(f.Step())
	for _, line := range plan.Lines {
		rows := inFlowOrder(line.All, f)
		if len(rows) == 0 {
			continue
		}
		tail := outputTile(rows[len(rows)-1]) + TailOffset*step
		env.emit(&r, segment(tr.Underground, f.ToWorld(line.Lane, tail), plan.Flow, world.Exit))
	}
	return r
}

func segment(name string, pos geom.Vec, d geom.Direction, u world.Underground) world.Marker {
	return world.Marker{
		Name:        name,
		Kind:        world.KindTransporter,
		Position:    pos,
		Direction:   d,
		Underground: u,
		Width:       1,
		Height:      1,
	}
}
