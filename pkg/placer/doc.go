// Package placer turns a [layout.Plan] into placeholder markers.
//
// There is one function per stage and the stages run in a fixed order:
//
//  1. [Units] places the extraction units.
//  2. [Transporters] lays the output lane of every line.
//  3. [Relays] powers the units.
//  4. [Boosters] covers the units with range boosters.
//
// Every marker goes through the [conflict.Resolver] held by [Env]; a stage
// never talks to the world directly. Each stage returns a [Report] with its
// placed/skipped tally and the markers the sink accepted, which later stages
// use to avoid overlapping earlier output.
//
// A stage whose prototype is missing (no underground variant, no relay, no
// booster) is a no-op: it returns an empty report and logs a warning.
package placer
