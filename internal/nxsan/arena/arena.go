package arena

import "unsafe"

// block describes one free region of the arena, identified by its
// offset from Arena.base and its length in bytes.
type block struct {
	offset uintptr
	size   uintptr
	next   *block
}

// Arena is a free-list allocator over a single Go-owned byte buffer.
// Every address it hands out via Alloc lies within [Base, Base+Size)
// and, given callers only ever request Granularity-multiple sizes
// (as internal/nxsan/alloc does), remains Granularity-aligned for the
// lifetime of the arena.
type Arena struct {
	mem       []byte
	base      uintptr
	size      uintptr
	free      *block
	allocated map[uintptr]uintptr // addr -> size, this allocator's own chunk bookkeeping
}

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}

// New allocates a backing buffer of at least size bytes and returns an
// Arena whose usable region [Base, Base+size) is align-aligned. align
// must be a power of two.
//
// The leading align-byte header of the region is never handed out by
// Alloc, matching the convention of a real allocator reserving its own
// bookkeeping space at the front of a fresh pool: it keeps the pool's
// nominal base address itself from ever being returned as a live
// allocation, which would otherwise be indistinguishable from a wild
// pointer that happens to alias the pool's own base sentinel.
func New(size, align uintptr) *Arena {
	mem := make([]byte, size+align)
	rawBase := uintptr(unsafe.Pointer(&mem[0]))
	base := alignUp(rawBase, align)
	a := &Arena{
		mem:       mem,
		base:      base,
		size:      size,
		allocated: make(map[uintptr]uintptr),
	}
	if size > align {
		a.free = &block{offset: align, size: size - align}
	}
	return a
}

// Base returns the address of the first usable byte of the arena.
func (a *Arena) Base() uintptr { return a.base }

// Size returns the usable size of the arena, in bytes.
func (a *Arena) Size() uintptr { return a.size }

// Alloc reserves the first free block of at least size bytes,
// splitting it if it is larger than needed, and returns its address.
// Returns (0, false) if no free block is large enough.
func (a *Arena) Alloc(size uintptr) (uintptr, bool) {
	var prev *block
	for b := a.free; b != nil; b = b.next {
		if b.size < size {
			prev = b
			continue
		}
		addr := a.base + b.offset
		if b.size == size {
			if prev == nil {
				a.free = b.next
			} else {
				prev.next = b.next
			}
		} else {
			b.offset += size
			b.size -= size
		}
		a.allocated[addr] = size
		return addr, true
	}
	return 0, false
}

// Free returns the block at addr to the free list. Like a real malloc
// implementation, the arena tracks each outstanding block's size
// itself (unrelated to, and not exposed through, the shadow store's
// own per-granule bookkeeping) so callers need not carry it. Free is a
// no-op if addr is not a live block returned by Alloc.
//
// It does not coalesce with neighbouring free blocks: this workload
// frees and reallocates similarly-sized blocks (spec §4.3's fixed
// granule classes), so fragmentation from skipped coalescing is not a
// concern this allocator needs to solve.
func (a *Arena) Free(addr uintptr) {
	size, ok := a.allocated[addr]
	if !ok {
		return
	}
	delete(a.allocated, addr)
	a.free = &block{offset: addr - a.base, size: size, next: a.free}
}

// Utilization returns the fraction of the arena not on the free list,
// in [0, 1]. The reserved leading header counts as in use, so a fresh
// arena reports align/size rather than 0.
func (a *Arena) Utilization() float64 {
	if a.size == 0 {
		return 0
	}
	var free uintptr
	for b := a.free; b != nil; b = b.next {
		free += b.size
	}
	return 1 - float64(free)/float64(a.size)
}
