// Package shadow implements the byte-per-granule side table that
// backs the tagged-pointer heap: one shadow byte per granule of the
// tracked heap region, indexed by address rather than by a lookup
// structure.
//
// Unlike a general-purpose side table keyed by arbitrary addresses,
// the tracked heap is a single contiguous region declared once at
// Init, so the shadow store is a dense slice sized size/Granularity
// rather than a map.
package shadow
