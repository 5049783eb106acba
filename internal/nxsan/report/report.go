package report

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/c272/nxsan/internal/nxsan/tag"
)

const (
	header        = "\n================================================="
	footer        = "=== ABORTING ==="
	maxStackDepth = 32
)

// Reporter formats diagnostics and aborts the process, per spec §4.6.
// It implements the two entry points named there (access-error,
// generic-error) and satisfies alloc.Reporter.
type Reporter struct {
	out   io.Writer
	abort func()
}

// New returns a Reporter that writes framed diagnostics to out and
// aborts via SIGABRT, matching the platform abort mechanism the
// reference implementation uses (spec §7 "terminates via the platform
// abort mechanism, producing a signal suitable for a debugger to
// intercept").
func New(out io.Writer) *Reporter {
	r := &Reporter{out: out}
	r.abort = r.defaultAbort
	return r
}

func (r *Reporter) defaultAbort() {
	_ = unix.Kill(os.Getpid(), unix.SIGABRT)
	// SIGABRT's default disposition dumps core and terminates; if a
	// handler intercepts it and returns instead, fall back to a hard
	// exit so the process does not continue running past a detected
	// violation.
	os.Exit(134)
}

// ReportAccessError formats an access-error diagnostic naming the
// tag-stripped pointer p and the violation code, then aborts.
func (r *Reporter) ReportAccessError(code string, p uintptr) {
	raw := tag.Strip(p)
	fmt.Fprintln(r.out, header)
	fmt.Fprintf(r.out, "ERROR: NxSanitizer(%#x): %s\n", raw, code)
	fmt.Fprint(r.out, formatStackTrace(captureStackTrace(3)))
	fmt.Fprintln(r.out, footer)
	r.abort()
}

// ReportError formats a generic diagnostic with no associated pointer,
// then aborts.
func (r *Reporter) ReportError(code string) {
	fmt.Fprintln(r.out, header)
	fmt.Fprintf(r.out, "ERROR: NxSanitizer: %s\n", code)
	fmt.Fprint(r.out, formatStackTrace(captureStackTrace(3)))
	fmt.Fprintln(r.out, footer)
	r.abort()
}

func captureStackTrace(skip int) []uintptr {
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip, pcs)
	return pcs[:n]
}

// formatStackTrace renders program counters into a backtrace, skipping
// frames internal to this package. Best-effort: an empty or entirely
// filtered trace still produces readable output rather than an error
// (spec §9 "Backtrace as capability... failing gracefully is
// acceptable").
func formatStackTrace(pcs []uintptr) string {
	if len(pcs) == 0 {
		return "  (no stack trace available)\n"
	}

	frames := runtime.CallersFrames(pcs)
	var buf strings.Builder
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") ||
			strings.Contains(frame.Function, "/nxsan/internal/nxsan/report.") {
			if !more {
				break
			}
			continue
		}
		fmt.Fprintf(&buf, "  %s()\n      %s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	if buf.Len() == 0 {
		return "  (no stack trace available)\n"
	}
	return buf.String()
}
