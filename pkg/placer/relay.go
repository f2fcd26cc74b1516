package placer

import (
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/layout"
	"github.com/matzehuels/patchplan/pkg/world"
)

// Relays powers the units of a plan.
//
// For large units one relay sits on the lane one tile downstream of every
// entrance, where the underground chain leaves the surface free. Small
// units have no free lane tiles, so relays go into the corridor relay lanes
// at intervals of one unit length.
func Relays(env Env, plan *layout.Plan, relay catalog.Relay) Report {
	if relay.Name == "" {
		env.logger().Warn("no relay prototype, skipping relays")
		return Report{}
	}
	if plan.Unit.Footprint() <= layout.SmallFootprint {
		return corridorRelays(env, plan, relay)
	}

	var r Report
	f := plan.Frame()
	snap := geom.SnapFor(relay.Size)
	step := float64(f.Step())
	for _, line := range plan.Lines {
		for _, c := range inFlowOrder(line.All, f) {
			along := outputTile(c) + step
			env.emit(&r, relayMarker(relay, f.ToWorld(snap.Align(line.Lane), snap.Align(along))))
		}
	}
	return r
}

func corridorRelays(env Env, plan *layout.Plan, relay catalog.Relay) Report {
	var r Report
	f := plan.Frame()
	snap := geom.SnapFor(relay.Size)
	interval := plan.Unit.Along()
	half := float64(relay.Size) / 2
	for _, c := range plan.Corridors {
		if c.RelayWidth == 0 {
			continue
		}
		across := snap.Align(float64(c.RelayMin) + float64(c.RelayWidth)/2)
		var rows []float64
		for v := c.AlongMin; v < c.AlongMax; v += interval {
			rows = append(rows, snap.Align(float64(v)+half))
		}
		for _, along := range inFlowOrder(rows, f) {
			env.emit(&r, relayMarker(relay, f.ToWorld(across, along)))
		}
	}
	return r
}

func relayMarker(relay catalog.Relay, pos geom.Vec) world.Marker {
	return world.Marker{
		Name:      relay.Name,
		Kind:      world.KindRelay,
		Position:  pos,
		Direction: geom.North,
		Width:     relay.Size,
		Height:    relay.Size,
	}
}
