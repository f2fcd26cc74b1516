package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/layout"
)

// =============================================================================
// Plan Computation
// =============================================================================

// ComputePlan runs the spacing/grid calculator over field.
//
// With an explicit deposit selection, tiles of every other type form the
// foreign set; candidates touching them are dropped unless AllowForeign is
// set. Without a selection every deposit type is primary. Primary tiles are
// limited to the selection, foreign tiles are not: an operating area that
// reaches past the edge must still avoid them.
func ComputePlan(field *deposit.Field, s Settings, opts Options) layout.Plan {
	primary, foreign := field.Split(opts.Deposits)
	primary = primary.Within(opts.Selection)
	if !opts.ShouldAvoidForeign() {
		foreign = nil
	}
	return layout.Compute(layout.Input{
		Unit:         s.Unit,
		Bounds:       opts.Selection,
		Density:      s.Density,
		Flow:         s.Flow,
		Primary:      primary,
		Foreign:      foreign,
		BoosterWidth: s.Booster.Size,
		RelayWidth:   s.relayWidth(),
	})
}

// MarshalPlan serializes a plan for caching.
func MarshalPlan(p layout.Plan) ([]byte, error) {
	return json.Marshal(p)
}

// UnmarshalPlan deserializes a cached plan.
func UnmarshalPlan(data []byte) (layout.Plan, error) {
	var p layout.Plan
	if err := json.Unmarshal(data, &p); err != nil {
		return layout.Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	return p, nil
}
