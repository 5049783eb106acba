package instrument

import "strings"

// declarations is the fixed set of external hook symbol declarations
// the pass emits once per module: "the pass declares the eight hook
// symbols as external with signature void(pointer)" (spec §4.7).
var declarations = []string{
	"declare void @__nxsan_report_load8(ptr)",
	"declare void @__nxsan_report_load16(ptr)",
	"declare void @__nxsan_report_load32(ptr)",
	"declare void @__nxsan_report_load64(ptr)",
	"declare void @__nxsan_report_store8(ptr)",
	"declare void @__nxsan_report_store16(ptr)",
	"declare void @__nxsan_report_store32(ptr)",
	"declare void @__nxsan_report_store64(ptr)",
}

// Print serializes m back to LLIR text, prefixed with the hook
// declaration block.
func Print(m *Module) string {
	var b strings.Builder
	for _, d := range declarations {
		b.WriteString(d)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	for _, line := range m.Lines {
		b.WriteString(line.Text)
		b.WriteByte('\n')
	}
	return b.String()
}
