// Package report implements the Error Reporter (C6): formatting a
// diagnostic banner, capturing a best-effort backtrace, and aborting
// the process, per spec §4.6.
//
// Backtracing is a replaceable capability (spec §9 "Backtrace as
// capability"): Go's runtime.Callers/CallersFrames stand in for the
// platform execinfo family the reference implementation uses on
// Linux, and failing to produce frames degrades gracefully to a
// placeholder line rather than erroring.
package report
