package logs_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"seoflow/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func TestTailReturnsLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seoflow.log")
	writeLog(t, path, "one\ntwo\nthree\nfour\n")

	lines, offset, err := logs.Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 2 || lines[0] != "three" || lines[1] != "four" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if offset == 0 {
		t.Fatal("expected a non-zero offset")
	}
}

func TestTailMissingFile(t *testing.T) {
	lines, offset, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(lines) != 0 || offset != 0 {
		t.Fatalf("expected empty result, got %v at %d", lines, offset)
	}
}

func TestReadFromContinuesAtOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seoflow.log")
	writeLog(t, path, "one\ntwo\n")

	_, offset, err := logs.Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := file.WriteString("three\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	file.Close()

	lines, newOffset, err := logs.ReadFrom(path, offset)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(lines) != 1 || lines[0] != "three" {
		t.Fatalf("unexpected lines: %v", lines)
	}
	if newOffset <= offset {
		t.Fatalf("offset did not advance: %d -> %d", offset, newOffset)
	}
}

func TestReadFromRestartsAfterTruncation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seoflow.log")
	writeLog(t, path, "a long first generation of log lines\n")

	_, offset, err := logs.Tail(path, 10)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	writeLog(t, path, "fresh\n")

	lines, _, err := logs.ReadFrom(path, offset)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(lines) != 1 || lines[0] != "fresh" {
		t.Fatalf("unexpected lines after truncation: %v", lines)
	}
}

func TestCleanupOldRemovesStaleFiles(t *testing.T) {
	dir := t.TempDir()
	stale := filepath.Join(dir, "old.log")
	fresh := filepath.Join(dir, "seoflow.log")
	other := filepath.Join(dir, "notes.txt")
	writeLog(t, stale, "stale\n")
	writeLog(t, fresh, "fresh\n")
	writeLog(t, other, "keep\n")

	past := time.Now().AddDate(0, 0, -30)
	if err := os.Chtimes(stale, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	if err := os.Chtimes(other, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	logs.CleanupOld(nil, dir, 7)

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Fatal("expected stale log file to be removed")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Fatalf("fresh log file should remain: %v", err)
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatalf("non-log file should remain: %v", err)
	}
}
