package alloc

import (
	"unsafe"

	"github.com/c272/nxsan/internal/nxsan/arena"
	"github.com/c272/nxsan/internal/nxsan/shadow"
	"github.com/c272/nxsan/internal/nxsan/tag"
	"github.com/c272/nxsan/internal/nxsan/verify"
)

// Error codes surfaced through Reporter, matching spec §7's allocator
// and free error taxonomies verbatim.
const (
	ErrNoInitAlloc = "noinit-alloc"
	ErrAllocZero   = "alloc-zero"
	ErrAllocFail   = "alloc-fail"
	ErrAllocOOB    = "alloc-oob"

	ErrNoInitFree    = "noinit-free"
	ErrOOBFree       = "oob-free"
	ErrUnalignedFree = "unaligned-free"
	ErrShadowFree    = "shadow-free"
	ErrNoTagFree     = "notag-free"
	ErrBadTagFree    = "badtag-free"
	ErrDoubleFree    = "double-free"
	ErrNullPageFree  = "nullpage-free"
)

// Reporter is the C6 Error Reporter surface the allocator delegates
// to. ReportError formats a generic diagnostic with no pointer;
// ReportAccessError additionally carries the offending pointer.
// Implementations abort the process after reporting (spec §7); the
// allocator does not itself call os.Exit so that tests can observe
// reported failures.
type Reporter interface {
	ReportError(code string)
	ReportAccessError(code string, p uintptr)
}

// Allocator implements malloc/free (C3) over a backing arena and
// shadow store.
type Allocator struct {
	arena    *arena.Arena
	shadow   *shadow.Store
	reporter Reporter
}

// New returns an Allocator wired to the given backing arena, shadow
// store, and error reporter.
func New(a *arena.Arena, s *shadow.Store, r Reporter) *Allocator {
	return &Allocator{arena: a, shadow: s, reporter: r}
}

// alignedSize returns the smallest multiple of Granularity that is
// ≥ size (spec §4.3 step 1).
func alignedSize(size uintptr) uintptr {
	if size%shadow.Granularity == 0 {
		return size
	}
	return (size/shadow.Granularity + 1) * shadow.Granularity
}

// Malloc allocates size bytes and returns a tagged pointer, per spec
// §4.3. On any fatal precondition or resource failure it reports
// through Reporter and returns 0.
func (a *Allocator) Malloc(size uintptr) uintptr {
	if !a.shadow.Initialised() {
		a.reporter.ReportError(ErrNoInitAlloc)
		return 0
	}
	if size == 0 {
		a.reporter.ReportError(ErrAllocZero)
		return 0
	}

	aligned := alignedSize(size)
	p, ok := a.arena.Alloc(aligned)
	if !ok {
		a.reporter.ReportError(ErrAllocFail)
		return 0
	}
	if !a.shadow.AllocInHeap(p, size) {
		a.reporter.ReportAccessError(ErrAllocOOB, p)
		return 0
	}

	t := a.drawTag(p, aligned, size)
	a.setShadow(p, aligned, size, t)
	return tag.Emplace(p, t)
}

// drawTag draws a tag for the candidate region [p, p+aligned), per
// spec §4.2, consulting the shadow bytes of the region's immediate
// neighbours.
func (a *Allocator) drawTag(p, aligned, size uintptr) uint8 {
	prevShadow, prevOK := a.shadow.ShadowAt(p - 1)
	nextShadow, nextOK := a.shadow.ShadowAt(p + aligned)
	return tag.Generate(prevShadow, prevOK, nextShadow, nextOK, int(size), shadow.SmallTagThreshold, shadow.Granularity)
}

// setShadow writes the shadow bytes for a freshly allocated region,
// per spec §4.3 step 6.
func (a *Allocator) setShadow(p, aligned, size uintptr, t uint8) {
	nShadow := aligned / shadow.Granularity
	if nShadow == 0 {
		nShadow = 1
	}
	for i := uintptr(0); i < nShadow-1; i++ {
		*a.shadow.ShadowOf(p+i*shadow.Granularity) = t
	}
	lastGranule := p + (nShadow-1)*shadow.Granularity
	if rem := size % shadow.Granularity; rem > 0 {
		*a.shadow.ShadowOf(lastGranule) = byte(rem)
		writeHeapByte(lastGranule+shadow.Granularity-1, t)
	} else {
		*a.shadow.ShadowOf(lastGranule) = t
	}
}

// writeHeapByte writes v to the real heap byte at address addr. addr
// must lie within the arena's backing memory.
func writeHeapByte(addr uintptr, v byte) {
	*(*byte)(unsafe.Pointer(addr)) = v
}

// Free releases a tagged pointer previously returned by Malloc, per
// spec §4.3. Every precondition violation is fatal and reported
// through Reporter.
func (a *Allocator) Free(p uintptr) {
	if !a.shadow.Initialised() {
		a.reporter.ReportError(ErrNoInitFree)
		return
	}

	pRaw := tag.Strip(p)
	if !a.shadow.PtrInHeap(pRaw) {
		a.reporter.ReportAccessError(ErrOOBFree, p)
		return
	}
	if pRaw%shadow.Granularity != 0 {
		a.reporter.ReportAccessError(ErrUnalignedFree, p)
		return
	}
	if pRaw == a.shadow.Base() || pRaw == a.shadow.ShadowBase() {
		a.reporter.ReportAccessError(ErrShadowFree, p)
		return
	}

	switch verify.Verify(a.shadow, p, 1) {
	case verify.OK:
	case verify.NOTAG:
		a.reporter.ReportAccessError(ErrNoTagFree, p)
		return
	case verify.BADTAG:
		a.reporter.ReportAccessError(ErrBadTagFree, p)
		return
	case verify.FREED:
		a.reporter.ReportAccessError(ErrDoubleFree, p)
		return
	case verify.NULLPAGE:
		a.reporter.ReportAccessError(ErrNullPageFree, p)
		return
	default:
		// OUT_OF_HEAP/OVERRUN are unreachable here (pre-checked above);
		// hitting either indicates an invariant bug upstream.
		a.reporter.ReportAccessError(ErrOOBFree, p)
		return
	}

	a.arena.Free(pRaw)
	a.clearShadow(p)
}

// clearShadow implements spec §4.3 free step 6.
func (a *Allocator) clearShadow(p uintptr) {
	t := tag.Extract(p)
	pRaw := tag.Strip(p)

	shadowPtr := a.shadow.ShadowOf(pRaw)
	original := *shadowPtr
	*shadowPtr = 0
	if original != t {
		return // sub-granule (short) allocation: nothing more to clear.
	}
	if t < shadow.Granularity {
		return // ambiguous with short-granule values; stop at one granule.
	}
	for offset := uintptr(shadow.Granularity); ; offset += shadow.Granularity {
		next := pRaw + offset
		if !a.shadow.PtrInHeap(next) {
			return
		}
		sp := a.shadow.ShadowOf(next)
		if *sp != t {
			return
		}
		*sp = 0
	}
}
