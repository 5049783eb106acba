// Package nxsan provides a tagged-pointer heap sanitizer runtime API.
//
// nxsan detects invalid heap accesses — out-of-bounds reads/writes and
// use-after-free — using a HWASan-style scheme: every heap pointer
// carries an 8-bit tag in its top byte, and a byte-per-16-byte-granule
// shadow table records the tag each live allocation was issued. A
// tag mismatch, a freed granule, or an in-granule overrun aborts the
// process with a diagnostic report.
//
// # Quick Start
//
// The nxsan-instrument tool automatically inserts a report hook call
// before every qualifying load/store in an LLIR file:
//
//	$ nxsan-instrument --out '{}_nxsan.ll' program.ll
//
// For manual instrumentation in advanced scenarios:
//
//	package main
//
//	import (
//		"github.com/c272/nxsan/nxsan"
//		"unsafe"
//	)
//
//	func main() {
//		nxsan.Init(64 << 20) // reserve a 64MiB tracked heap
//		defer nxsan.Terminate()
//
//		p := nxsan.Malloc(32)
//		defer nxsan.Free(p)
//
//		// Manual instrumentation (normally done by nxsan-instrument):
//		nxsan.ReportStore64(p)
//		*(*uint64)(unsafe.Pointer(nxsan.Untag(p))) = 42
//	}
//
// # API Overview
//
// The package provides functions for:
//   - Initialization and finalization: [Init], [Terminate]
//   - Allocation: [Malloc], [Free]
//   - Access verification: [ReportLoad8], [ReportLoad16], [ReportLoad32],
//     [ReportLoad64], [ReportStore8], [ReportStore16], [ReportStore32],
//     [ReportStore64]
//
// # How It Works
//
// Every allocation is issued a random tag stashed in the top byte of
// its returned pointer and recorded in the shadow table. Every
// instrumented access strips the tag, looks up the shadow byte for
// the accessed granule, and compares it against the tag the pointer
// carries. A mismatch, a zeroed (freed) shadow byte, or an access past
// a short allocation's recorded length aborts the process with a
// framed report naming the violation kind, the offending address, and
// a best-effort backtrace.
//
// # Non-goals
//
// No thread-safety across concurrent mutators, no stack or global
// variable sanitization, no OS memory-mapper integration — the tracked
// heap is a single contiguous region reserved by [Init].
package nxsan
