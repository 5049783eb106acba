// Package tag implements the pointer-tagging primitives shared by the
// whole runtime — extracting, emplacing, and stripping the tag carried
// in the top Bits bits of a tracked pointer — plus the tag
// generator (C2) that draws collision-avoiding tags for new
// allocations.
package tag
