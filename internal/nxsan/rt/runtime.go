package rt

import (
	"os"

	"github.com/c272/nxsan/internal/nxsan/alloc"
	"github.com/c272/nxsan/internal/nxsan/arena"
	"github.com/c272/nxsan/internal/nxsan/report"
	"github.com/c272/nxsan/internal/nxsan/shadow"
	"github.com/c272/nxsan/internal/nxsan/verify"
)

// state is the single globally-scoped runtime object (spec §9): the
// shadow store, the backing heap arena, the allocator wired to both,
// and the error reporter. There is exactly one process-wide instance;
// no caller holds or passes around a handle to it.
type state struct {
	shadow    *shadow.Store
	arena     *arena.Arena
	allocator *alloc.Allocator
	reporter  alloc.Reporter
}

var global = newState()

func newState() *state {
	s := &state{
		shadow:   shadow.New(),
		reporter: report.New(os.Stderr),
	}
	s.allocator = alloc.New(nil, s.shadow, s.reporter)
	return s
}

// Init reserves a size-byte tracked heap and initialises the shadow
// store over it (spec §4.1, §6). Go programs have no ambient
// embedder-owned address range to hand in the way a native caller
// would, so the heap region is reserved here via internal/nxsan/arena
// rather than supplied by the caller; this is the practical reading
// of "the tracked heap is a contiguous region... chosen by the
// embedder" (spec §3) for a process with no OS memory-mapper
// integration point (spec §1 Non-goals).
//
// Returns false if already initialised; aborts through the reporter
// on a bad size or tag-region overlap.
func Init(size uintptr) bool {
	if global.shadow.Initialised() {
		return false
	}
	a := arena.New(size, shadow.Granularity)
	if err := global.shadow.Init(a.Base(), a.Size()); err != nil {
		global.reporter.ReportError(initErrorCode(err))
		return false
	}
	global.arena = a
	global.allocator = alloc.New(a, global.shadow, global.reporter)
	return true
}

// initErrorCode maps a shadow.Init failure onto the error taxonomy
// codes spec §7 names for initialisation errors.
func initErrorCode(err error) string {
	switch err {
	case shadow.ErrBadHeapSize:
		return "bad-heap-size"
	case shadow.ErrHeapInTagRegion:
		return "heap-in-tag-region"
	case shadow.ErrShadowAllocFailed:
		return "shadow-alloc-failed"
	default:
		return err.Error()
	}
}

// Terminate releases the shadow store and tracked heap. It does not
// scan for leaked allocations (spec §4.1, §9 — "an implementation may
// add it by scanning the shadow for any non-zero byte"; nxsan leaves
// this out of scope, matching the spec's own framing).
func Terminate() bool {
	if err := global.shadow.Terminate(); err != nil {
		return false
	}
	global.arena = nil
	global.allocator = alloc.New(nil, global.shadow, global.reporter)
	return true
}

// Malloc and Free delegate to the process-wide allocator (C3).
func Malloc(size uintptr) uintptr { return global.allocator.Malloc(size) }
func Free(p uintptr)              { global.allocator.Free(p) }

// handleAccess implements the Report Hooks dispatch table (C5, spec
// §4.5): verify the access and, for any fatal outcome, delegate to the
// reporter. Pre-init accesses are unobservable by design.
func handleAccess(p uintptr, size int) {
	if !global.shadow.Initialised() {
		return
	}
	switch verify.Verify(global.shadow, p, size) {
	case verify.OK, verify.NOTAG:
	case verify.BADTAG:
		global.reporter.ReportAccessError("tag-mismatch", p)
	case verify.FREED:
		global.reporter.ReportAccessError("use-after-free", p)
	case verify.OUT_OF_HEAP:
		global.reporter.ReportAccessError("not-in-heap", p)
	case verify.OVERRUN, verify.NULLPAGE:
		global.reporter.ReportAccessError("heap-buffer-overflow", p)
	}
}

// ReportLoad8 is the hook the instrumentation pass inserts before an
// 8-bit load (spec §4.5, §4.7).
func ReportLoad8(p uintptr) { handleAccess(p, 1) }

// ReportLoad16 is the hook inserted before a 16-bit load.
func ReportLoad16(p uintptr) { handleAccess(p, 2) }

// ReportLoad32 is the hook inserted before a 32-bit load.
func ReportLoad32(p uintptr) { handleAccess(p, 4) }

// ReportLoad64 is the hook inserted before a 64-bit load.
func ReportLoad64(p uintptr) { handleAccess(p, 8) }

// ReportStore8 is the hook inserted before an 8-bit store.
func ReportStore8(p uintptr) { handleAccess(p, 1) }

// ReportStore16 is the hook inserted before a 16-bit store.
func ReportStore16(p uintptr) { handleAccess(p, 2) }

// ReportStore32 is the hook inserted before a 32-bit store.
func ReportStore32(p uintptr) { handleAccess(p, 4) }

// ReportStore64 is the hook inserted before a 64-bit store.
func ReportStore64(p uintptr) { handleAccess(p, 8) }
