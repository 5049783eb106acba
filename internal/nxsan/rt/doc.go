// Package rt is the process-wide global state object spec §9 calls
// for: it owns the shadow store, backing arena, allocator, and
// reporter, and exposes the ABI-level operations (init/terminate,
// malloc/free, and the eight report hooks) that the nxsan public
// package and the instrumentation contract consume.
//
// A single package-level State is process-wide by design (spec §5:
// "the runtime keeps process-wide mutable state"); nothing here is
// safe for concurrent use, matching the Non-goal that cross-mutator
// thread-safety is out of scope.
package rt
