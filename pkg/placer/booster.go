package placer

import (
	"math"
	"slices"

	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/conflict"
	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/layout"
	"github.com/matzehuels/patchplan/pkg/world"
)

// DefaultQuota is the number of boosters every unit should be covered by.
const DefaultQuota = 2

// FillFactor caps the fill pass: a candidate is skipped once every unit it
// reaches holds FillFactor*quota boosters.
const FillFactor = 2

// BoosterSpec configures the booster stage.
type BoosterSpec struct {
	Booster catalog.Booster
	// Module is inserted into every module slot of each booster. Empty
	// means no module requests.
	Module string
	// Quota is the target number of boosters per unit. Zero means
	// DefaultQuota.
	Quota int
}

// Candidate is a possible booster position.
type Candidate struct {
	Center geom.Vec
	Box    geom.Box
	// Units holds the indices of the units within reach.
	Units []int
}

// BoosterReach returns, per axis, the largest center distance at which a
// booster still affects a unit occupying unit. The comparison is strict.
//
// Reach is the booster half size plus its supply distance plus the unit half
// size, so a booster affects a unit as soon as its supply area touches any
// part of the unit footprint.
func BoosterReach(b catalog.Booster, unit geom.Box) geom.Vec {
	base := float64(b.Size)/2 + b.SupplyDistance
	return geom.Vec{X: base + unit.Width()/2, Y: base + unit.Height()/2}
}

// Affects reports whether a booster centered on c affects unit.
func Affects(b catalog.Booster, c geom.Vec, unit geom.Box) bool {
	reach := BoosterReach(b, unit)
	uc := unit.Center()
	return math.Abs(c.X-uc.X) < reach.X && math.Abs(c.Y-uc.Y) < reach.Y
}

// Candidates lists booster positions: one column per corridor at the middle
// of its booster region, stepped at booster size over the along extent of
// the adjacent lines. Corridors whose booster region is narrower than the
// booster yield nothing. units are the footprints used to fill
// Candidate.Units.
func Candidates(plan *layout.Plan, b catalog.Booster, units []geom.Box) []Candidate {
	if b.Size <= 0 {
		return nil
	}
	f := plan.Frame()
	snap := geom.SnapFor(b.Size)
	size := float64(b.Size)

	var out []Candidate
	for _, c := range plan.Corridors {
		if c.BoosterMax-c.BoosterMin < b.Size {
			continue
		}
		across := snap.Align(float64(c.BoosterMin+c.BoosterMax) / 2)
		for v := c.AlongMin; v < c.AlongMax; v += b.Size {
			center := f.ToWorld(across, snap.Align(float64(v)+size/2))
			cand := Candidate{Center: center, Box: geom.BoxAround(center, size, size)}
			for i, u := range units {
				if Affects(b, center, u) {
					cand.Units = append(cand.Units, i)
				}
			}
			out = append(out, cand)
		}
	}
	return out
}

// FilterCandidates drops candidates whose footprint overlaps a blocked tile.
// The input slice is not modified.
func FilterCandidates(cands []Candidate, blocked geom.TileSet) []Candidate {
	out := make([]Candidate, 0, len(cands))
	for _, c := range cands {
		if !blocked.Overlaps(c.Box) {
			out = append(out, c)
		}
	}
	return out
}

// Boosters covers the units in units with boosters.
//
// A greedy pass repeatedly places the candidate reaching the most units that
// are still under quota, taking the first on ties, until no candidate helps.
// A fill pass then places every remaining free candidate unless all the units
// it reaches are already saturated. blocked holds the tiles taken by earlier
// stages and grows as boosters are placed. Boosters of the same prototype
// already standing in the world count toward the quotas, so a second run
// over the same world and blocked set places nothing.
func Boosters(env Env, plan *layout.Plan, spec BoosterSpec, units []world.Marker, blocked geom.TileSet) Report {
	b := spec.Booster
	if b.Name == "" || b.Size <= 0 {
		env.logger().Warn("no booster prototype, skipping boosters")
		return Report{}
	}
	quota := spec.Quota
	if quota <= 0 {
		quota = DefaultQuota
	}
	if blocked == nil {
		blocked = geom.NewTileSet()
	}

	boxes := make([]geom.Box, len(units))
	for i, u := range units {
		boxes[i] = u.Footprint()
	}
	cands := FilterCandidates(Candidates(plan, b, boxes), blocked)
	counts := standing(env, b, boxes)

	var modules []world.ModuleRequest
	if spec.Module != "" && b.ModuleSlots > 0 {
		modules = []world.ModuleRequest{{Name: spec.Module, Count: b.ModuleSlots}}
	}

	var r Report
	place := func(c Candidate) bool {
		ok := env.emit(&r, world.Marker{
			Name:      b.Name,
			Kind:      world.KindBooster,
			Position:  c.Center,
			Direction: geom.North,
			Modules:   modules,
			Width:     b.Size,
			Height:    b.Size,
		}) == conflict.Placed
		if ok {
			for _, i := range c.Units {
				counts[i]++
			}
			blocked.AddBox(c.Box)
		}
		return ok
	}

	for {
		best, bestScore := -1, 0
		for i, c := range cands {
			score := 0
			for _, u := range c.Units {
				if counts[u] < quota {
					score++
				}
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			break
		}

		c := cands[best]
		cands = slices.Delete(cands, best, best+1)
		if place(c) {
			cands = FilterCandidates(cands, blocked)
		}
	}

	ceiling := FillFactor * quota
	for _, c := range cands {
		if blocked.Overlaps(c.Box) || saturated(c, counts, ceiling) {
			continue
		}
		place(c)
	}
	return r
}

// standing counts, per unit, the boosters named like b that the world
// already holds within reach.
func standing(env Env, b catalog.Booster, units []geom.Box) []int {
	counts := make([]int, len(units))
	if len(units) == 0 || env.Resolver == nil || env.Resolver.World == nil {
		return counts
	}
	area := units[0]
	for _, u := range units[1:] {
		area.Min.X, area.Min.Y = min(area.Min.X, u.Min.X), min(area.Min.Y, u.Min.Y)
		area.Max.X, area.Max.Y = max(area.Max.X, u.Max.X), max(area.Max.Y, u.Max.Y)
	}
	pad := float64(b.Size) + b.SupplyDistance
	for _, o := range env.Resolver.World.FindObstacles(area.Expand(pad, pad)) {
		if o.Name != b.Name {
			continue
		}
		c := o.Box.Center()
		for i, u := range units {
			if Affects(b, c, u) {
				counts[i]++
			}
		}
	}
	return counts
}

// saturated reports whether every unit c reaches holds at least ceiling
// boosters. Candidates reaching no unit count as saturated.
func saturated(c Candidate, counts []int, ceiling int) bool {
	for _, u := range c.Units {
		if counts[u] < ceiling {
			return false
		}
	}
	return true
}
