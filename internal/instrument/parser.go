package instrument

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"
)

var (
	loadPattern  = regexp.MustCompile(`^(\s*)%[\w.]+\s*=\s*load\s+i(\d+),\s*ptr\s+([%@][\w.]+)`)
	storePattern = regexp.MustCompile(`^(\s*)store\s+i(\d+)\s+[^,]+,\s*ptr\s+([%@][\w.]+)`)
)

// Parse splits LLIR module text into lines, classifying each as a
// load, a store, or passthrough. It never returns an error for
// malformed instruction lines — those simply classify as Other, per
// the instrumentation contract's "other instruction shapes... are
// ignored silently" (spec §4.7). The only failure mode is the
// underlying scan itself (a line too long for the buffer).
func Parse(text string) (*Module, error) {
	m := &Module{}
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		m.Lines = append(m.Lines, classify(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

func classify(text string) Line {
	if match := loadPattern.FindStringSubmatch(text); match != nil {
		bits, _ := strconv.Atoi(match[2])
		return Line{Text: text, Kind: Load, Pointer: match[3], Bits: bits}
	}
	if match := storePattern.FindStringSubmatch(text); match != nil {
		bits, _ := strconv.Atoi(match[2])
		return Line{Text: text, Kind: Store, Pointer: match[3], Bits: bits}
	}
	return Line{Text: text, Kind: Other}
}
