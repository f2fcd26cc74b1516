// Package conflict turns "placement blocked" into "clear the obstacle, then
// place". Every planner stage routes each marker through a [Resolver].
//
// Two policies exist. [Forced] removes every obstacle except deposits,
// other placeholders, actors and ground-level transit, then places the
// marker unconditionally. [Conservative] only removes natural clutter
// (vegetation, debris); any other standing obstacle aborts the placement and
// nothing is removed. Elevated structures never collide with a ground
// footprint and are ignored by both policies.
package conflict

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/patchplan/pkg/world"
)

// Margin shrinks footprints before querying so that neighbours that only
// touch an edge are not reported as overlapping.
const Margin = 0.05

// Mode is the obstacle-handling policy.
type Mode uint8

const (
	Forced Mode = iota
	Conservative
)

func (m Mode) String() string {
	if m == Conservative {
		return "conservative"
	}
	return "forced"
}

// ParseMode resolves "forced" or "conservative".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forced", "force", "":
		return Forced, nil
	case "conservative":
		return Conservative, nil
	}
	return Forced, fmt.Errorf("invalid conflict mode: %q (must be one of: forced, conservative)", s)
}

// Verdict is what the resolver does with one obstacle.
type Verdict uint8

const (
	Ignore Verdict = iota
	Clear
	Block
)

// Judge returns the verdict for an obstacle class under mode.
func Judge(mode Mode, c world.Class) Verdict {
	switch c {
	case world.Elevated, world.Deposit, world.Actor:
		return Ignore
	case world.Vegetation, world.Debris:
		return Clear
	case world.GroundTransit:
		if mode == Conservative {
			return Block
		}
		return Ignore
	case world.Placeholder:
		if mode == Conservative {
			return Block
		}
		return Ignore
	}
	if mode == Conservative {
		return Block
	}
	return Clear
}

// Outcome is the result of one placement attempt.
type Outcome uint8

const (
	// Placed means the sink accepted the marker.
	Placed Outcome = iota
	// Blocked means a non-removable obstacle stood in the way.
	Blocked
	// Failed means the sink refused the marker after clearing.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Blocked:
		return "blocked"
	case Failed:
		return "failed"
	}
	return "placed"
}

// Resolver clears footprints and places markers in a World.
type Resolver struct {
	World  world.World
	Mode   Mode
	Logger *log.Logger
}

// New creates a resolver. A nil logger discards output.
func New(w world.World, mode Mode, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Resolver{World: w, Mode: mode, Logger: logger}
}

// Survey lists the obstacles that would be cleared for m, or the first
// obstacle that blocks it. It has no side effects.
func (r *Resolver) Survey(m world.Marker) (clear []world.Obstacle, blocker *world.Obstacle) {
	for _, o := range r.World.FindObstacles(m.Footprint().Shrink(Margin)) {
		switch Judge(r.Mode, o.Class) {
		case Block:
			o := o
			return nil, &o
		case Clear:
			clear = append(clear, o)
		}
	}
	return clear, nil
}

// Place clears m's footprint according to the mode and hands m to the sink.
func (r *Resolver) Place(m world.Marker) Outcome {
	clear, blocker := r.Survey(m)
	if blocker != nil {
		r.Logger.Debug("placement blocked", "marker", m, "obstacle", blocker.Name, "class", blocker.Class)
		return Blocked
	}
	for _, o := range clear {
		if err := r.World.Remove(o); err != nil {
			r.Logger.Debug("remove failed", "obstacle", o.Name, "err", err)
		}
	}
	if err := r.World.Place(m); err != nil {
		r.Logger.Debug("sink refused marker", "marker", m, "err", err)
		return Failed
	}
	return Placed
}

// Tally accumulates placement outcomes for one stage.
type Tally struct {
	Placed  int `json:"placed"`
	Skipped int `json:"skipped"`
}

// Add records an outcome.
func (t *Tally) Add(o Outcome) {
	if o == Placed {
		t.Placed++
	} else {
		t.Skipped++
	}
}
