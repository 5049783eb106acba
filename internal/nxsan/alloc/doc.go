// Package alloc implements the tagged allocator (C3): malloc/free over
// a backing arena, maintaining shadow tags and short granules per
// spec §4.3.
//
// Every failure mode here is fatal by design (spec §7): Malloc and
// Free report through a Reporter rather than returning an error,
// matching the runtime's fail-fast diagnostic posture. Reporter is an
// interface so tests can observe reported failures without invoking a
// real process abort.
package alloc
