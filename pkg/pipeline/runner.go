package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/patchplan/pkg/cache"
	"github.com/matzehuels/patchplan/pkg/catalog"
	"github.com/matzehuels/patchplan/pkg/conflict"
	"github.com/matzehuels/patchplan/pkg/deposit"
	"github.com/matzehuels/patchplan/pkg/layout"
	"github.com/matzehuels/patchplan/pkg/observability"
	"github.com/matzehuels/patchplan/pkg/placer"
	"github.com/matzehuels/patchplan/pkg/world"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store run results. Multiple goroutines can safely use the same Runner
// as long as each run gets its own world.
type Runner struct {
	Cache   cache.Cache
	Keyer   cache.Keyer
	Catalog *catalog.Catalog
	Logger  *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and catalog.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
// If cat is nil, the embedded default catalog is used.
func NewRunner(c cache.Cache, keyer cache.Keyer, cat *catalog.Catalog, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:   c,
		Keyer:   keyer,
		Catalog: cat,
		Logger:  logger,
	}
}

// Execute runs the complete plan -> units -> transporters -> relays ->
// boosters pipeline against w. field holds every known deposit. Primary
// tiles are clipped to the selection; foreign tiles are kept as far as a
// unit's operating area can reach past its edge.
//
// Only invalid options fail a run. Blocked or refused placements are
// counted as skipped, and a stage whose prototype is missing places nothing.
func (r *Runner) Execute(ctx context.Context, w world.World, field *deposit.Field, opts Options) (result *Result, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	clipped := field.Clip(opts.Selection)
	settings, err := opts.Resolve(r.Catalog, clipped.Types())
	if err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	runID := uuid.NewString()
	logger := opts.Logger.With("run", runID[:8])
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRunStart(ctx, runID, settings.Unit.Name)
	defer func() {
		var placed, skipped int
		if result != nil {
			placed, skipped = result.Stats.Placed, result.Stats.Skipped
		}
		hooks.OnRunComplete(ctx, runID, placed, skipped, time.Since(start), err)
	}()

	result = &Result{RunID: runID, Selection: opts.Selection, Settings: settings}

	// Stage 1: Plan
	planStart := time.Now()
	nearby := field.Clip(opts.Selection.Grow(layout.Reach(settings.Unit)))
	plan, planHit, err := r.ComputePlanWithCacheInfo(ctx, nearby, settings, opts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Plan = plan
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.Units = len(plan.Placements)
	result.Stats.Lines = len(plan.Lines)
	result.CacheInfo.PlanHit = planHit
	hooks.OnPlanComputed(ctx, result.Stats.Units, result.Stats.Lines, planHit, result.Stats.PlanTime)

	logger.Info("computed plan",
		"unit", settings.Unit.Name,
		"units", result.Stats.Units,
		"lines", result.Stats.Lines,
		"cached", planHit,
		"duration", result.Stats.PlanTime)
	if plan.Empty() {
		logger.Warn("no unit position covers the selected deposits", "selection", opts.Selection)
	}

	// Stages 2-5: placement
	env := placer.Env{
		Resolver: conflict.New(w, settings.Mode, logger),
		Quality:  settings.Quality,
		Logger:   logger,
	}
	spec := placer.BoosterSpec{
		Booster: settings.Booster,
		Module:  settings.Module,
		Quota:   settings.Quota,
	}

	var done []placer.Report
	stages := []struct {
		name string
		run  func() placer.Report
	}{
		{StageUnits, func() placer.Report { return placer.Units(env, &plan) }},
		{StageTransporters, func() placer.Report {
			r := placer.Transporters(env, &plan, settings.Transporter)
			if settings.TailExit {
				r.Merge(placer.TailExits(env, &plan, settings.Transporter))
			}
			return r
		}},
		{StageRelays, func() placer.Report { return placer.Relays(env, &plan, settings.Relay) }},
		{StageBoosters, func() placer.Report {
			return placer.Boosters(env, &plan, spec, done[0].Markers, placer.Blocked(done...))
		}},
	}

	placeStart := time.Now()
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stageStart := time.Now()
		report := stage.run()
		duration := time.Since(stageStart)
		done = append(done, report)

		result.Stages = append(result.Stages, StageReport{
			Stage:    stage.name,
			Placed:   report.Placed,
			Skipped:  report.Skipped,
			Duration: duration,
		})
		result.Markers = append(result.Markers, report.Markers...)
		result.Stats.Placed += report.Placed
		result.Stats.Skipped += report.Skipped
		hooks.OnStageComplete(ctx, stage.name, report.Placed, report.Skipped, duration)

		logger.Info("placed "+stage.name,
			"placed", report.Placed,
			"skipped", report.Skipped,
			"duration", duration)
	}
	result.Stats.PlaceTime = time.Since(placeStart)

	return result, nil
}

// ComputePlanWithCacheInfo computes the plan with caching and returns cache hit info.
// field must cover opts.Selection grown by the unit's reach.
func (r *Runner) ComputePlanWithCacheInfo(ctx context.Context, field *deposit.Field, s Settings, opts Options) (layout.Plan, bool, error) {
	r.applyLogger(&opts)

	// Compute cache key
	fieldHash := cache.Hash(field.Canonical())
	cacheKey := r.Keyer.PlanKey(fieldHash, opts.PlanKeyOpts(s))
	hooks := observability.Cache()

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil {
			opts.Logger.Debug("plan cache read failed", "err", err)
		}
		if err == nil && hit {
			cached, err := UnmarshalPlan(data)
			if err == nil {
				hooks.OnCacheHit(ctx, "plan")
				return cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
			opts.Logger.Debug("discarding unreadable cached plan", "key", cacheKey, "err", err)
		}
		hooks.OnCacheMiss(ctx, "plan")
	}

	if err := ctx.Err(); err != nil {
		return layout.Plan{}, false, err
	}
	plan := ComputePlan(field, s, opts)

	// Cache the result
	if data, err := MarshalPlan(plan); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLPlan); err != nil {
			opts.Logger.Debug("plan cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "plan", len(data))
		}
	}

	return plan, false, nil // Cache miss
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
