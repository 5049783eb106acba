package nxsan

import (
	"github.com/c272/nxsan/internal/nxsan/rt"
	"github.com/c272/nxsan/internal/nxsan/tag"
)

// Init reserves a size-byte tracked heap and initialises the shadow
// store over it.
//
// Init must be called before Malloc, Free, or any ReportLoad/ReportStore
// hook. The nxsan-instrument tool does not insert this call; the
// program calls Init itself.
//
// Returns false if the runtime is already initialised. Aborts the
// process (via a framed report) on a bad size or if the reserved
// region would overlap the pointer-tag bit range.
func Init(size uintptr) bool {
	return rt.Init(size)
}

// Terminate releases the shadow store and tracked heap.
//
// Terminate does not scan for leaked allocations; it simply frees the
// runtime's own bookkeeping. Call it at program exit:
//
//	func main() {
//		nxsan.Init(64 << 20)
//		defer nxsan.Terminate()
//		// ...
//	}
//
// Returns false if the runtime was not initialised.
func Terminate() bool {
	return rt.Terminate()
}

// Malloc requests a size-byte allocation from the tracked heap and
// returns a tagged pointer to it, or aborts on failure (zero size, an
// exhausted heap, or use before Init).
//
// The nxsan-instrument tool does not rewrite allocation calls; the
// program calls Malloc directly.
func Malloc(size uintptr) uintptr {
	return rt.Malloc(size)
}

// Free releases the allocation at the tagged pointer p, or aborts on
// misuse: an unaligned or out-of-bounds pointer, a pointer with no
// tag, a mismatched tag, or a double free.
//
// The nxsan-instrument tool does not rewrite deallocation calls; the
// program calls Free directly.
func Free(p uintptr) {
	rt.Free(p)
}

// ReportLoad8 verifies an 8-bit load through the tagged pointer p and
// aborts the process if the access is invalid.
//
// This function is automatically inserted by the nxsan-instrument tool
// before each qualifying 8-bit load. Manual calls are typically not
// needed.
//
// Example (manual instrumentation):
//
//	// Original code:
//	c := *(*byte)(unsafe.Pointer(nxsan.Untag(p)))
//
//	// Instrumented code:
//	nxsan.ReportLoad8(p)
//	c := *(*byte)(unsafe.Pointer(nxsan.Untag(p)))
func ReportLoad8(p uintptr) { rt.ReportLoad8(p) }

// ReportLoad16 verifies a 16-bit load through the tagged pointer p, as
// [ReportLoad8] does for 8-bit loads.
func ReportLoad16(p uintptr) { rt.ReportLoad16(p) }

// ReportLoad32 verifies a 32-bit load through the tagged pointer p, as
// [ReportLoad8] does for 8-bit loads.
func ReportLoad32(p uintptr) { rt.ReportLoad32(p) }

// ReportLoad64 verifies a 64-bit load through the tagged pointer p, as
// [ReportLoad8] does for 8-bit loads.
func ReportLoad64(p uintptr) { rt.ReportLoad64(p) }

// ReportStore8 verifies an 8-bit store through the tagged pointer p and
// aborts the process if the access is invalid.
//
// This function is automatically inserted by the nxsan-instrument tool
// before each qualifying 8-bit store.
//
// Example (manual instrumentation):
//
//	// Original code:
//	*(*byte)(unsafe.Pointer(nxsan.Untag(p))) = 7
//
//	// Instrumented code:
//	nxsan.ReportStore8(p)
//	*(*byte)(unsafe.Pointer(nxsan.Untag(p))) = 7
func ReportStore8(p uintptr) { rt.ReportStore8(p) }

// ReportStore16 verifies a 16-bit store through the tagged pointer p,
// as [ReportStore8] does for 8-bit stores.
func ReportStore16(p uintptr) { rt.ReportStore16(p) }

// ReportStore32 verifies a 32-bit store through the tagged pointer p,
// as [ReportStore8] does for 8-bit stores.
func ReportStore32(p uintptr) { rt.ReportStore32(p) }

// ReportStore64 verifies a 64-bit store through the tagged pointer p,
// as [ReportStore8] does for 8-bit stores.
func ReportStore64(p uintptr) { rt.ReportStore64(p) }

// Untag returns the real, dereferenceable address underlying a tagged
// pointer p.
//
// Hardware HWASan implementations rely on a CPU's top-byte-ignore mode
// so the tagged pointer itself is a valid load/store address; nxsan
// runs on hardware with no such mode, so a caller must strip the tag
// before performing the actual memory access that a ReportLoad/
// ReportStore hook has just verified:
//
//	nxsan.ReportStore8(p)
//	*(*byte)(unsafe.Pointer(nxsan.Untag(p))) = 7
func Untag(p uintptr) uintptr {
	return tag.Strip(p)
}
