package survey

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const smallLog = `Time,Leq A,L90 A,Lmax A
2024-03-01 10:00:00,60.0,50.0,70.0
2024-03-01 10:05:00,70.0,52.0,80.0
2024-03-01 10:10:00,65.0,54.0,75.0
`

func TestNewLogParsesHeaderAndCells(t *testing.T) {
	path := writeLog(t, "pos1.csv", smallLog)
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	if len(log.Times) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(log.Times))
	}
	if got := log.Columns[0]; got.Outer != "Leq" || got.Inner != "A" {
		t.Fatalf("unexpected first column: %+v", got)
	}
	if log.Interval != 5*time.Minute {
		t.Fatalf("expected 5min interval, got %s", log.Interval)
	}
	if log.Cells[1][2] != 80.0 {
		t.Fatalf("unexpected cell: %v", log.Cells[1][2])
	}
}

func TestNewLogNonNumericCellBecomesNaN(t *testing.T) {
	path := writeLog(t, "pos1.csv", "Time,Leq A\n2024-03-01 10:00:00,--\n2024-03-01 10:05:00,61.2\n")
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	if !math.IsNaN(log.Cells[0][0]) {
		t.Fatalf("expected NaN for non-numeric cell, got %v", log.Cells[0][0])
	}
}

func TestNewLogStripsBOM(t *testing.T) {
	path := writeLog(t, "pos1.csv", "\ufeffTime,Leq A\n2024-03-01 10:00:00,60\n2024-03-01 10:05:00,61\n")
	if _, err := NewLog(path); err != nil {
		t.Fatalf("NewLog failed on BOM header: %v", err)
	}
}

func TestNewLogRejectsBadTimestamp(t *testing.T) {
	path := writeLog(t, "pos1.csv", "Time,Leq A\nnot-a-time,60\n")
	if _, err := NewLog(path); err == nil {
		t.Fatalf("expected error for unparseable timestamp")
	}
}

func TestMasterRenamesNothingAndKeepsShape(t *testing.T) {
	path := writeLog(t, "pos1.csv", smallLog)
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	m := log.Master()
	if m.IndexName != "Time" {
		t.Fatalf("expected Time index, got %q", m.IndexName)
	}
	if len(m.Index) != 3 || len(m.Columns) != 3 {
		t.Fatalf("unexpected master shape: %dx%d", len(m.Index), len(m.Columns))
	}
	if m.TwoLevel() != true {
		t.Fatalf("expected two-level master columns")
	}
	if got := m.FlatLabels()[1]; got != "L90 A" {
		t.Fatalf("unexpected flat label: %q", got)
	}
}
