// Package instrument implements the instrumentation contract (spec
// component C7): parsing a textual LLIR module, inserting a report
// hook call before every load/store of a scalar size the runtime
// tracks, and printing the mutated module back out.
//
// nxsan treats "LLIR" as a small, line-oriented textual format loosely
// modelled on LLVM's own textual IR, rather than parsing real LLVM
// bitcode or building a full instruction-level AST — that fidelity is
// explicitly out of the runtime's core scope; this package gives the
// contract a concrete, testable shape without it.
package instrument
