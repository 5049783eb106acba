package alloc

import (
	"testing"

	"github.com/c272/nxsan/internal/nxsan/arena"
	"github.com/c272/nxsan/internal/nxsan/shadow"
	"github.com/c272/nxsan/internal/nxsan/tag"
)

type accessReport struct {
	code string
	p    uintptr
}

type mockReporter struct {
	errs   []string
	access []accessReport
}

func (m *mockReporter) ReportError(code string) { m.errs = append(m.errs, code) }
func (m *mockReporter) ReportAccessError(code string, p uintptr) {
	m.access = append(m.access, accessReport{code, p})
}

func newAllocator(t *testing.T, heapSize uintptr) (*Allocator, *mockReporter, *shadow.Store, *arena.Arena) {
	t.Helper()
	a := arena.New(heapSize, shadow.Granularity)
	s := shadow.New()
	if err := s.Init(a.Base(), a.Size()); err != nil {
		t.Fatalf("shadow Init: %v", err)
	}
	r := &mockReporter{}
	return New(a, s, r), r, s, a
}

func TestMallocSingleGranule(t *testing.T) {
	al, r, s, _ := newAllocator(t, shadow.Granularity*64)
	p := al.Malloc(6)
	if len(r.errs) != 0 || len(r.access) != 0 {
		t.Fatalf("unexpected reports: errs=%v access=%v", r.errs, r.access)
	}
	tg := tag.Extract(p)
	if tg == 0 {
		t.Fatalf("expected non-zero tag")
	}
	pRaw := tag.Strip(p)
	if got, _ := s.ShadowAt(pRaw); got != 6 {
		t.Fatalf("shadow byte = %d, want 6", got)
	}
}

func TestMallocMultiGranule(t *testing.T) {
	al, r, s, _ := newAllocator(t, shadow.Granularity*300)
	p := al.Malloc(shadow.Granularity * 2) // exact multiple of G: full-tag both granules
	if len(r.errs) != 0 || len(r.access) != 0 {
		t.Fatalf("unexpected reports: errs=%v access=%v", r.errs, r.access)
	}
	tg := tag.Extract(p)
	pRaw := tag.Strip(p)
	b0, _ := s.ShadowAt(pRaw)
	b1, _ := s.ShadowAt(pRaw + shadow.Granularity)
	if b0 != tg || b1 != tg {
		t.Fatalf("shadow bytes = (%d, %d), want both %d", b0, b1, tg)
	}
}

func TestFreeClearsShadowSingleGranule(t *testing.T) {
	al, r, s, _ := newAllocator(t, shadow.Granularity*64)
	p := al.Malloc(6)
	al.Free(p)
	if len(r.access) != 0 {
		t.Fatalf("unexpected access reports on clean free: %v", r.access)
	}
	pRaw := tag.Strip(p)
	if got, _ := s.ShadowAt(pRaw); got != 0 {
		t.Fatalf("shadow byte after free = %d, want 0", got)
	}
}

func TestFreeClearsShadowMultiGranule(t *testing.T) {
	al, r, s, _ := newAllocator(t, shadow.Granularity*300)
	p := al.Malloc(shadow.Granularity * 2)
	al.Free(p)
	if len(r.access) != 0 {
		t.Fatalf("unexpected access reports on clean free: %v", r.access)
	}
	pRaw := tag.Strip(p)
	b0, _ := s.ShadowAt(pRaw)
	b1, _ := s.ShadowAt(pRaw + shadow.Granularity)
	if b0 != 0 || b1 != 0 {
		t.Fatalf("shadow bytes after free = (%d, %d), want (0, 0)", b0, b1)
	}
}

func TestDoubleFree(t *testing.T) {
	al, r, _, _ := newAllocator(t, shadow.Granularity*64)
	p := al.Malloc(shadow.Granularity - 1)
	al.Free(p)
	al.Free(p)
	if len(r.access) != 1 || r.access[0].code != ErrDoubleFree {
		t.Fatalf("second Free reported %v, want one %s", r.access, ErrDoubleFree)
	}
}

func TestBadTagFree(t *testing.T) {
	al, r, _, _ := newAllocator(t, shadow.Granularity*64)
	p := al.Malloc(16)
	badTag := tag.Extract(p) ^ 1
	if badTag == 0 {
		badTag = tag.Extract(p) ^ 2
	}
	bad := tag.Emplace(tag.Strip(p), badTag)
	al.Free(bad)
	if len(r.access) != 1 || r.access[0].code != ErrBadTagFree {
		t.Fatalf("Free(bad tag) reported %v, want one %s", r.access, ErrBadTagFree)
	}
}

func TestMallocZero(t *testing.T) {
	al, r, _, _ := newAllocator(t, shadow.Granularity*64)
	if got := al.Malloc(0); got != 0 {
		t.Fatalf("Malloc(0) = %#x, want 0", got)
	}
	if len(r.errs) != 1 || r.errs[0] != ErrAllocZero {
		t.Fatalf("Malloc(0) reported %v, want one %s", r.errs, ErrAllocZero)
	}
}

func TestMallocNoInit(t *testing.T) {
	a := arena.New(shadow.Granularity*64, shadow.Granularity)
	s := shadow.New() // never Init'd
	r := &mockReporter{}
	al := New(a, s, r)
	if got := al.Malloc(8); got != 0 {
		t.Fatalf("Malloc on uninitialised store = %#x, want 0", got)
	}
	if len(r.errs) != 1 || r.errs[0] != ErrNoInitAlloc {
		t.Fatalf("Malloc uninitialised reported %v, want one %s", r.errs, ErrNoInitAlloc)
	}
}

func TestMallocAllocFailWhenArenaExhausted(t *testing.T) {
	al, r, _, _ := newAllocator(t, shadow.Granularity) // one granule, all of it the arena's reserved header
	if got := al.Malloc(shadow.Granularity * 2); got != 0 {
		t.Fatalf("Malloc past arena capacity = %#x, want 0", got)
	}
	if len(r.errs) != 1 || r.errs[0] != ErrAllocFail {
		t.Fatalf("Malloc past arena capacity reported %v, want one %s", r.errs, ErrAllocFail)
	}
}

func TestMallocAllocOOBAtExactHeapEnd(t *testing.T) {
	al, r, _, a := newAllocator(t, shadow.Granularity*3)
	// The arena reserves one leading granule as a header, so the usable
	// capacity is a.Size() - Granularity; requesting exactly that much
	// lands the allocation's end precisely on the heap boundary, which
	// fails AllocInHeap's strict upper-bound check (spec §4.1, §4.3 step 4).
	usable := a.Size() - shadow.Granularity
	if got := al.Malloc(usable); got != 0 {
		t.Fatalf("Malloc filling the heap exactly = %#x, want 0", got)
	}
	if len(r.access) != 1 || r.access[0].code != ErrAllocOOB {
		t.Fatalf("Malloc at exact heap end reported %v, want one %s", r.access, ErrAllocOOB)
	}
}

func TestFreeShadowTrap(t *testing.T) {
	al, r, _, a := newAllocator(t, shadow.Granularity*64)
	al.Free(tag.Emplace(a.Base(), 5))
	if len(r.access) != 1 || r.access[0].code != ErrShadowFree {
		t.Fatalf("Free(heap base) reported %v, want one %s", r.access, ErrShadowFree)
	}
}

func TestFreeNullPage(t *testing.T) {
	s := shadow.New()
	if err := s.Init(0, shadow.Granularity*1024); err != nil {
		t.Fatalf("Init: %v", err)
	}
	a := arena.New(shadow.Granularity*1024, shadow.Granularity)
	r := &mockReporter{}
	al := New(a, s, r)
	al.Free(tag.Emplace(shadow.Granularity, 5))
	if len(r.access) != 1 || r.access[0].code != ErrNullPageFree {
		t.Fatalf("Free(nullpage) reported %v, want one %s", r.access, ErrNullPageFree)
	}
}

func TestFreeUnaligned(t *testing.T) {
	al, r, _, a := newAllocator(t, shadow.Granularity*64)
	al.Free(tag.Emplace(a.Base()+shadow.Granularity+1, 5))
	if len(r.access) != 1 || r.access[0].code != ErrUnalignedFree {
		t.Fatalf("Free(unaligned) reported %v, want one %s", r.access, ErrUnalignedFree)
	}
}

func TestFreeOutOfBounds(t *testing.T) {
	al, r, _, a := newAllocator(t, shadow.Granularity*64)
	al.Free(tag.Emplace(a.Base()+shadow.Granularity*1000, 5))
	if len(r.access) != 1 || r.access[0].code != ErrOOBFree {
		t.Fatalf("Free(out of bounds) reported %v, want one %s", r.access, ErrOOBFree)
	}
}

func TestFreeNoTag(t *testing.T) {
	al, r, _, _ := newAllocator(t, shadow.Granularity*64)
	al.Malloc(8) // the arena never hands out its base, so p below is not the shadow-free trap address
	p := al.Malloc(8)
	al.Free(tag.Strip(p)) // tag 0, but not the heap base
	if len(r.access) != 1 || r.access[0].code != ErrNoTagFree {
		t.Fatalf("Free(untagged) reported %v, want one %s", r.access, ErrNoTagFree)
	}
}

func TestUniqueTagsAcrossAllocations(t *testing.T) {
	al, r, _, _ := newAllocator(t, shadow.Granularity*64)
	seen := map[uint8]bool{}
	for i := 0; i < 5; i++ {
		p := al.Malloc(8)
		seen[tag.Extract(p)] = true
	}
	if len(r.errs) != 0 || len(r.access) != 0 {
		t.Fatalf("unexpected reports during allocation: errs=%v access=%v", r.errs, r.access)
	}
	if len(seen) < 2 {
		t.Fatalf("expected at least two distinct tags across 5 allocations, got %d", len(seen))
	}
}
