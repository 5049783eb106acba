package shadow

import (
	"errors"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/c272/nxsan/internal/nxsan/tag"
)

// Granularity is the fixed granule size G, in bytes: the unit of
// tracked heap that maps to a single shadow byte. Must be at least
// the alignment of the largest scalar type the instrumented program
// can access.
const Granularity = 16

// PageSize is the size, in bytes, of the null page: any tag-stripped
// address below this is treated as invalid regardless of tag. It
// defaults to the platform's real page size rather than a hardcoded
// 4096, since a null-page access is only guaranteed to fault at that
// granularity.
var PageSize = platformPageSize()

func platformPageSize() uintptr {
	if n := unix.Getpagesize(); n > 0 {
		return uintptr(n)
	}
	return 4096
}

// SmallTagThreshold is the allocation size, in bytes, at or above
// which the tag generator refuses tags below Granularity (see
// tag.Generate and spec §4.2).
const SmallTagThreshold = 256

var (
	ErrBadHeapSize       = errors.New("nxsan: bad heap size")
	ErrHeapInTagRegion   = errors.New("nxsan: heap region overlaps tag bits")
	ErrShadowAllocFailed = errors.New("nxsan: shadow allocation failed")
	ErrDoubleInit        = errors.New("nxsan: already initialised")
	ErrNotInitialised    = errors.New("nxsan: not initialised")
)

// Store is the byte-per-granule side table over a tracked heap region.
// A zero Store is valid and uninitialised; call Init before use.
type Store struct {
	base    uintptr
	size    uintptr
	shadow  []byte
	granule uintptr
}

// New returns an uninitialised Store.
func New() *Store {
	return &Store{}
}

// Init allocates a zero-initialised shadow array covering [base, base+size).
// size is rounded down to a multiple of Granularity. Returns
// ErrDoubleInit if already initialised, ErrBadHeapSize if size rounds
// to zero, ErrHeapInTagRegion if the top tag.Bits bits of base or
// base+size-1 are set.
func (s *Store) Init(base, size uintptr) error {
	if s.shadow != nil {
		return ErrDoubleInit
	}
	rounded := (size / Granularity) * Granularity
	if rounded == 0 {
		return ErrBadHeapSize
	}
	if tag.InTagRegion(base) || tag.InTagRegion(base+rounded-1) {
		return ErrHeapInTagRegion
	}
	n := rounded / Granularity
	shadow := make([]byte, n)
	if shadow == nil {
		return ErrShadowAllocFailed
	}
	s.base = base
	s.size = rounded
	s.shadow = shadow
	return nil
}

// Terminate releases the shadow array and marks the store uninitialised.
// It does not scan for leaked allocations (see spec §4.1 and §9).
func (s *Store) Terminate() error {
	if s.shadow == nil {
		return ErrNotInitialised
	}
	s.shadow = nil
	s.base = 0
	s.size = 0
	return nil
}

// Initialised reports whether Init has succeeded without a matching Terminate.
func (s *Store) Initialised() bool {
	return s.shadow != nil
}

// Base returns the heap base address passed to Init.
func (s *Store) Base() uintptr { return s.base }

// Size returns the (rounded) heap size passed to Init.
func (s *Store) Size() uintptr { return s.size }

// PtrInHeap reports whether the tag-stripped address p lies within
// [base, base+size).
func (s *Store) PtrInHeap(p uintptr) bool {
	return p >= s.base && p < s.base+s.size
}

// AllocInHeap reports whether both p and p+n lie within the tracked heap.
func (s *Store) AllocInHeap(p uintptr, n uintptr) bool {
	return s.PtrInHeap(p) && s.PtrInHeap(p+n)
}

// index converts a tag-stripped, in-heap address into a granule index.
func (s *Store) index(p uintptr) int {
	return int((p - s.base) / Granularity)
}

// ShadowOf returns a pointer to the shadow byte for the granule
// containing tag-stripped address p. Behaviour is undefined if p is
// not in heap bounds; callers must pre-check with PtrInHeap.
func (s *Store) ShadowOf(p uintptr) *byte {
	return &s.shadow[s.index(p)]
}

// ShadowBase returns the address of the shadow array's own backing
// storage. free uses this for a sanity trap against freeing the
// shadow store itself (spec §4.3 step 3).
func (s *Store) ShadowBase() uintptr {
	if len(s.shadow) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&s.shadow[0]))
}

// ShadowAt returns the shadow byte for tag-stripped address p, and
// whether p is within the tracked heap. Used by the tag generator to
// inspect neighbouring granules without exposing raw indices.
func (s *Store) ShadowAt(p uintptr) (byte, bool) {
	if !s.PtrInHeap(p) {
		return 0, false
	}
	return s.shadow[s.index(p)], true
}
