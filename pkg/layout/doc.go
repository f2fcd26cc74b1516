// Package layout is the spacing/grid calculator: it turns a unit prototype,
// a density mode and the deposit geometry inside a selection into unit
// placements and transport-line metadata.
//
// # Geometry
//
// Units are laid out in pairs of opposing columns (rows, for east/west flow)
// with a one-tile transporter lane between them:
//
//	| corridor | low column | lane | high column | corridor | low column | ...
//
// Corridors separate neighbouring pairs. They carry the relay lane for small
// units and the booster region shared by the two pairs next to them.
//
// Density controls spacing:
//
//   - [Dense]: units touch edge to edge along the lane and pairs touch
//     across it.
//   - [Sparse]: units are spaced by their full operating diameter
//     (2*floor(radius)+1) and every second pair is shifted along the lane by
//     half that spacing so the operating areas interleave.
//
// Pairs and unit rows must fit inside the selection; leftover tiles are
// split evenly on both ends.
//
// # Filtering
//
// A candidate is kept only if its operating area (center +- radius) covers at
// least one primary deposit tile. When a foreign set is given, candidates
// whose operating area reaches any foreign tile are dropped so units never
// mix deposit types.
//
// [Compute] is pure: the same [Input] always yields the same [Plan], which is
// what makes plans cacheable.
package layout
