package conflict

import (
	"testing"

	"github.com/matzehuels/patchplan/pkg/geom"
	"github.com/matzehuels/patchplan/pkg/world"
)

func drill(x, y float64) world.Marker {
	return world.Marker{
		Name:      "electric-mining-drill",
		Kind:      world.KindUnit,
		Position:  geom.Vec{X: x, Y: y},
		Direction: geom.East,
		Width:     3,
		Height:    3,
	}
}

func TestJudge(t *testing.T) {
	tests := []struct {
		class        world.Class
		forced       Verdict
		conservative Verdict
	}{
		{world.Vegetation, Clear, Clear},
		{world.Debris, Clear, Clear},
		{world.Structure, Clear, Block},
		{world.GroundTransit, Ignore, Block},
		{world.Elevated, Ignore, Ignore},
		{world.Actor, Ignore, Ignore},
		{world.Deposit, Ignore, Ignore},
		{world.Placeholder, Ignore, Block},
	}
	for _, tt := range tests {
		if got := Judge(Forced, tt.class); got != tt.forced {
			t.Errorf("Judge(forced, %v) = %v, want %v", tt.class, got, tt.forced)
		}
		if got := Judge(Conservative, tt.class); got != tt.conservative {
			t.Errorf("Judge(conservative, %v) = %v, want %v", tt.class, got, tt.conservative)
		}
	}
}

func TestForcedClearsStructures(t *testing.T) {
	g := world.NewGrid()
	chest := g.AddObstacle("wooden-chest", world.Structure, geom.BoxAround(geom.Vec{X: 1.5, Y: 1.5}, 1, 1))
	g.AddObstacle("tree", world.Vegetation, geom.BoxAround(geom.Vec{X: 0.5, Y: 0.5}, 1, 1))

	r := New(g, Forced, nil)
	if got := r.Place(drill(1.5, 1.5)); got != Placed {
		t.Fatalf("forced Place = %v, want placed", got)
	}

	removed := g.Removed()
	if len(removed) != 2 || removed[0].ID != chest.ID {
		t.Errorf("removed = %v, want chest and tree", removed)
	}
}

func TestConservativeBlocksWithoutSideEffects(t *testing.T) {
	g := world.NewGrid()
	g.AddObstacle("tree", world.Vegetation, geom.BoxAround(geom.Vec{X: 0.5, Y: 0.5}, 1, 1))
	g.AddObstacle("assembling-machine", world.Structure, geom.BoxAround(geom.Vec{X: 2.5, Y: 2.5}, 3, 3))

	r := New(g, Conservative, nil)
	if got := r.Place(drill(1.5, 1.5)); got != Blocked {
		t.Fatalf("conservative Place = %v, want blocked", got)
	}
	if len(g.Removed()) != 0 {
		t.Error("blocked placement must not remove anything")
	}
	if len(g.Markers()) != 0 {
		t.Error("blocked placement must not reach the sink")
	}
}

func TestConservativeClearsVegetation(t *testing.T) {
	g := world.NewGrid()
	g.AddObstacle("tree", world.Vegetation, geom.BoxAround(geom.Vec{X: 0.5, Y: 0.5}, 1, 1))
	g.AddObstacle("big-rock", world.Debris, geom.BoxAround(geom.Vec{X: 2, Y: 2}, 2, 2))

	r := New(g, Conservative, nil)
	if got := r.Place(drill(1.5, 1.5)); got != Placed {
		t.Fatalf("Place = %v, want placed", got)
	}
	if len(g.Removed()) != 2 {
		t.Errorf("removed %d obstacles, want 2", len(g.Removed()))
	}
}

func TestGroundTransitNeverRemoved(t *testing.T) {
	for _, mode := range []Mode{Forced, Conservative} {
		g := world.NewGrid()
		g.AddObstacle("straight-rail", world.GroundTransit, geom.BoxAround(geom.Vec{X: 1, Y: 1}, 2, 2))

		r := New(g, mode, nil)
		got := r.Place(drill(1.5, 1.5))
		if len(g.Removed()) != 0 {
			t.Errorf("%v: rail was removed", mode)
		}
		want := Placed
		if mode == Conservative {
			want = Blocked
		}
		if got != want {
			t.Errorf("%v: Place = %v, want %v", mode, got, want)
		}
	}
}

func TestElevatedIgnoredAndEdgeMargin(t *testing.T) {
	g := world.NewGrid()
	g.AddObstacle("elevated-rail", world.Elevated, geom.BoxAround(geom.Vec{X: 1.5, Y: 1.5}, 4, 4))
	g.AddObstacle("stone-wall", world.Structure, geom.BoxAround(geom.Vec{X: 3.5, Y: 1.5}, 1, 1))

	r := New(g, Conservative, nil)
	if got := r.Place(drill(1.5, 1.5)); got != Placed {
		t.Errorf("Place = %v, want placed (wall only touches the edge)", got)
	}
}

func TestTally(t *testing.T) {
	var tally Tally
	for _, o := range []Outcome{Placed, Blocked, Failed, Placed} {
		tally.Add(o)
	}
	if tally.Placed != 2 || tally.Skipped != 2 {
		t.Errorf("tally = %+v", tally)
	}
}
