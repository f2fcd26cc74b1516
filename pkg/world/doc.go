// Package world defines the host-side collaborator the planner talks to: an
// obstacle query, an obstacle removal command and the placement sink that
// receives placeholder markers.
//
// The planner never reaches into global state. Every stage receives a
// [World] value and observes the side effects of earlier stages through
// fresh [World.FindObstacles] queries, which is why stage order matters.
//
// [Grid] is an in-memory World used by the CLI, the HTTP API and tests. It
// treats every placed marker as a [Placeholder] obstacle so that later
// queries see it.
package world
