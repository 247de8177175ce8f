package survey

import (
	"math"
	"testing"
	"time"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func TestParsePeriod(t *testing.T) {
	cases := map[string]time.Duration{
		"15min": 15 * time.Minute,
		"30s":   30 * time.Second,
		"1h":    time.Hour,
	}
	for in, want := range cases {
		got, err := ParsePeriod(in)
		if err != nil {
			t.Fatalf("ParsePeriod(%q) failed: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePeriod(%q) = %s, want %s", in, got, want)
		}
	}
	for _, bad := range []string{"", "min", "0min", "-5s", "15 minutes", "fifteenmin"} {
		if _, err := ParsePeriod(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestAsIntervalAggregatesPerFamily(t *testing.T) {
	path := writeLog(t, "pos1.csv", smallLog)
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	agg, err := log.AsInterval("15min")
	if err != nil {
		t.Fatalf("AsInterval failed: %v", err)
	}
	if len(agg.Index) != 1 {
		t.Fatalf("expected one 15min bin, got %d", len(agg.Index))
	}
	row := agg.Cells[0]
	// Leq is energy-averaged: 10*log10(mean(10^(v/10))) of 60, 70, 65.
	wantLeq := 10 * math.Log10((math.Pow(10, 6)+math.Pow(10, 7)+math.Pow(10, 6.5))/3)
	if !almostEqual(row[0], wantLeq) {
		t.Fatalf("Leq: got %v, want %v", row[0], wantLeq)
	}
	// L90 is the arithmetic mean of 50, 52, 54.
	if !almostEqual(row[1], 52.0) {
		t.Fatalf("L90: got %v, want 52", row[1])
	}
	// Lmax is the block maximum of 70, 80, 75.
	if !almostEqual(row[2], 80.0) {
		t.Fatalf("Lmax: got %v, want 80", row[2])
	}
}

func TestAsIntervalRejectsFinerPeriod(t *testing.T) {
	path := writeLog(t, "pos1.csv", smallLog)
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	if _, err := log.AsInterval("30s"); err == nil {
		t.Fatalf("expected error for period finer than source interval")
	}
	if _, err := log.AsInterval("bogus"); err == nil {
		t.Fatalf("expected error for malformed period")
	}
}

func TestAsIntervalSkipsNaN(t *testing.T) {
	path := writeLog(t, "pos1.csv", "Time,L90 A\n2024-03-01 10:00:00,--\n2024-03-01 10:05:00,50\n2024-03-01 10:10:00,52\n")
	log, err := NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	agg, err := log.AsInterval("15min")
	if err != nil {
		t.Fatalf("AsInterval failed: %v", err)
	}
	if !almostEqual(agg.Cells[0][0], 51.0) {
		t.Fatalf("expected NaN-skipping mean 51, got %v", agg.Cells[0][0])
	}
}
