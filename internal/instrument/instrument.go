package instrument

import "fmt"

// Result is the outcome of instrumenting one LLIR module.
type Result struct {
	Code  string
	Stats Stats
}

// File parses text as an LLIR module, instruments it, and serializes
// the result. filename is used only for error messages.
func File(filename, text string) (*Result, error) {
	m, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}
	stats := Run(m)
	return &Result{Code: Print(m), Stats: stats}, nil
}
