// Package geom provides the tile-grid geometry used by the layout engine.
//
// The grid follows the usual map convention: x grows to the east, y grows to
// the south, and tile (x, y) covers the continuous square [x, x+1) x [y, y+1).
// Entities are positioned by their fractional center. An entity with an odd
// side length is centered on a tile center (x.5), one with an even side length
// on a tile boundary (x.0); [Snap] makes that conversion explicit instead of
// leaving it to ad-hoc floor() calls.
//
// # Frames
//
// Layouts are computed in a flow-relative [Frame]: the "along" axis runs
// parallel to the transporter flow and the "across" axis perpendicular to it.
// For north/south flow the along axis is y; for east/west flow it is x.
//
//	f := geom.NewFrame(geom.South)
//	v := f.ToWorld(3.5, 10.5) // across=3.5 (x), along=10.5 (y)
package geom
