// Package pkg provides the core libraries of Patchplan, a mining outpost
// planner.
//
// # Overview
//
// Given a selected rectangle of a tile map, the deposit tiles inside it and a
// catalog of prototypes, Patchplan lays out extraction units in paired
// columns facing shared transport lanes, then places transporters, power
// relays and range boosters. Every placement goes through a conflict
// resolver that either clears what stands in the way or skips the position.
//
// # Architecture
//
// The typical data flow through Patchplan:
//
//	scenario file / API request
//	         ↓
//	    [scenario] package (world, deposit field, options)
//	         ↓
//	    [layout] package (unit placements, lanes, corridors; cached)
//	         ↓
//	    [placer] package (units → transporters → relays → boosters)
//	         ↓
//	    [render] package (text grid, JSON, SVG)
//
// [pipeline] orchestrates these steps, validates options and caches the
// layout keyed by a hash of the deposit tiles and layout settings.
//
// # Quick Start
//
//	sc, _ := scenario.Load("examples/iron.toml")
//	grid, field, opts, _ := sc.Build(catalog.Default())
//
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	result, _ := runner.Execute(ctx, grid, field, opts)
//	fmt.Println(result.Stats.Placed, "markers placed")
//
// # Main Packages
//
// ## Planning
//
// [geom] - Tiles, fractional positions, boxes, directions and snapping.
//
// [catalog] - Unit, transporter, relay, booster and module prototypes read
// from TOML. A default catalog is embedded.
//
// [deposit] - Deposit tiles keyed by type, glyph maps, primary/foreign split.
//
// [world] - The host collaborator: obstacle queries, removal and the marker
// sink, with an in-memory [world.Grid].
//
// [conflict] - Judges obstacles and clears or blocks positions.
//
// [layout] - The spacing/grid calculator, the single source of geometry.
//
// [placer] - The four placement stages.
//
// ## Orchestration and Infrastructure
//
// [pipeline] - Options, validation, the Runner and output rendering.
//
// [cache] - Plan cache backends: file (zstd), Redis and MongoDB.
//
// [observability] - Metrics hooks with a Prometheus implementation.
//
// [api] - HTTP API built on chi.
//
// [errors] - Code-tagged errors and input validators.
//
// [buildinfo] - Version information set via ldflags.
package pkg
