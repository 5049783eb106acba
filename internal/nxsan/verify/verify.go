package verify

import (
	"unsafe"

	"github.com/c272/nxsan/internal/nxsan/shadow"
	"github.com/c272/nxsan/internal/nxsan/tag"
)

// Outcome is the sum type produced by Verify.
type Outcome int

const (
	OK Outcome = iota
	NOTAG
	BADTAG
	OUT_OF_HEAP
	OVERRUN
	NULLPAGE
	FREED
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "OK"
	case NOTAG:
		return "NOTAG"
	case BADTAG:
		return "BADTAG"
	case OUT_OF_HEAP:
		return "OUT_OF_HEAP"
	case OVERRUN:
		return "OVERRUN"
	case NULLPAGE:
		return "NULLPAGE"
	case FREED:
		return "FREED"
	default:
		return "UNKNOWN"
	}
}

// Verify classifies an access of length bytes through tagged pointer p
// against store, per spec §4.4. It never allocates and never mutates
// shadow state.
func Verify(store *shadow.Store, p uintptr, length int) Outcome {
	t := tag.Extract(p)
	pRaw := tag.Strip(p)

	if pRaw < shadow.PageSize {
		return NULLPAGE
	}
	if t == 0 {
		return NOTAG
	}
	if !store.PtrInHeap(pRaw) {
		return OUT_OF_HEAP
	}

	sh := *store.ShadowOf(pRaw)
	switch {
	case sh == t:
		// Fully covered granule; any access ≤ G - (pRaw % G) is safe by
		// construction. Multi-granule overruns are only caught if they
		// land on a granule with differing shadow (spec §4.4 note).
		return OK
	case sh == 0:
		return FREED
	case sh >= shadow.Granularity:
		return BADTAG
	}

	// sh is a short-granule byte count in 1..G-1; the real tag is
	// stashed in the last real byte of the enclosing granule.
	granuleStart := pRaw - pRaw%shadow.Granularity
	shortTag := *(*byte)(unsafe.Pointer(granuleStart + shadow.Granularity - 1))
	if shortTag != t {
		return BADTAG
	}
	if length <= 1 {
		return OK
	}
	inGranuleOff := pRaw % shadow.Granularity
	if inGranuleOff+uintptr(length) <= uintptr(sh) {
		return OK
	}
	return OVERRUN
}
