package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestStem(t *testing.T) {
	if got := stem("/a/b/program.ll"); got != "program" {
		t.Fatalf("got %q", got)
	}
	if got := stem("noext"); got != "noext" {
		t.Fatalf("got %q", got)
	}
}

func TestOutFileNameSubstitutesAllOccurrences(t *testing.T) {
	got := outFileName("{}_{}_nxsan.ll", "prog")
	if got != "prog_prog_nxsan.ll" {
		t.Fatalf("got %q", got)
	}
}

func TestOutFileNameDefaultPattern(t *testing.T) {
	got := outFileName(defaultOutPattern, "prog")
	if got != "prog_nxsan.ll" {
		t.Fatalf("got %q", got)
	}
}

func TestProcessFileWritesInstrumentedOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "program.ll")
	src := "  %v = load i32, ptr %p\n"
	if err := os.WriteFile(in, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	processFile(zap.NewNop(), in, defaultOutPattern)

	outPath := filepath.Join(dir, "program_nxsan.ll")
	got, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("expected output file to be written: %v", err)
	}
	if !strings.Contains(string(got), "__nxsan_report_load32") {
		t.Fatalf("output missing instrumentation call:\n%s", got)
	}
}

func TestProcessFileMissingInputDoesNotPanic(t *testing.T) {
	processFile(zap.NewNop(), filepath.Join(t.TempDir(), "missing.ll"), defaultOutPattern)
}

func TestRunNoInputFiles(t *testing.T) {
	if err := run(rootCmd, nil); err == nil {
		t.Fatalf("expected an error for zero input files")
	}
}
