package view

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/verte-zerg/noisetui/internal/model"
	"github.com/verte-zerg/noisetui/internal/survey"
)

const fixtureLog = `Time,Leq A,L90 A,Lmax A
2024-03-01 10:00:00,60.0,50.2,70.0
2024-03-01 10:05:00,62.0,50.4,72.0
2024-03-01 10:10:00,64.0,51.6,74.0
2024-03-01 10:15:00,63.0,52.1,76.0
`

func loadLog(t *testing.T, content string) *survey.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "log.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	log, err := survey.NewLog(path)
	if err != nil {
		t.Fatalf("NewLog failed: %v", err)
	}
	return log
}

func TestBuildRawState(t *testing.T) {
	log := loadLog(t, fixtureLog)
	v := Build(log, model.ViewState{LastPeriod: "15min"})
	if v.Label != RawLabel {
		t.Fatalf("expected raw label, got %q", v.Label)
	}
	if v.ErrMsg != "" {
		t.Fatalf("unexpected error: %s", v.ErrMsg)
	}
	if v.Table.IndexName != "Timestamp" {
		t.Fatalf("time column must be renamed to Timestamp, got %q", v.Table.IndexName)
	}
	if len(v.Table.Index) != 4 {
		t.Fatalf("raw table must keep the native resolution, got %d rows", len(v.Table.Index))
	}
	if v.History == nil || v.L90Dist == nil {
		t.Fatalf("expected both chart inputs for a complete log")
	}
}

func TestBuildAggregatedState(t *testing.T) {
	log := loadLog(t, fixtureLog)
	v := Build(log, model.ViewState{ApplyAggregation: true, LastPeriod: "15min"})
	if v.Label != IntegratedLabel {
		t.Fatalf("expected integrated label, got %q", v.Label)
	}
	if v.ErrMsg != "" {
		t.Fatalf("unexpected error: %s", v.ErrMsg)
	}
	if len(v.Table.Index) != 2 {
		t.Fatalf("expected two 15min bins, got %d rows", len(v.Table.Index))
	}
	if v.History == nil || v.L90Dist == nil {
		t.Fatalf("expected charts for the aggregated table")
	}
}

func TestBuildAggregationFailureIsTabScoped(t *testing.T) {
	log := loadLog(t, fixtureLog)
	// 1min is finer than the 5min source interval.
	v := Build(log, model.ViewState{ApplyAggregation: true, LastPeriod: "1min"})
	if v.ErrMsg == "" {
		t.Fatalf("expected an aggregation error")
	}
	if v.Label != IntegratedLabel {
		t.Fatalf("a failed aggregation must not silently fall back to raw")
	}
	if v.Table != nil || v.History != nil || v.L90Dist != nil {
		t.Fatalf("failed aggregation must produce no table or charts")
	}
}

func TestBuildMissingColumnsSkipsChartsKeepsTable(t *testing.T) {
	log := loadLog(t, "Time,Leq A,L90 A\n2024-03-01 10:00:00,60.0,50.0\n2024-03-01 10:05:00,61.0,51.0\n")
	v := Build(log, model.ViewState{LastPeriod: "15min"})
	if len(v.MissingCols) != 1 || v.MissingCols[0] != "Lmax A" {
		t.Fatalf("expected Lmax A reported missing, got %v", v.MissingCols)
	}
	if v.Table == nil {
		t.Fatalf("the table must still render when charts are skipped")
	}
	if v.History != nil || v.L90Dist != nil {
		t.Fatalf("charts must be absent when a required column is missing")
	}
}

func TestDistributionCumulativeEndsAtHundred(t *testing.T) {
	d := buildDistribution([]float64{50.2, 50.4, 51.6, 52.1, math.NaN()})
	if d == nil {
		t.Fatalf("expected a distribution")
	}
	// 50.2 and 50.4 round to 50; 51.6 to 52; 52.1 to 52.
	if len(d.Bins) != 2 || d.Bins[0] != 50 || d.Bins[1] != 52 {
		t.Fatalf("unexpected bins: %v", d.Bins)
	}
	if d.Counts[0] != 2 || d.Counts[1] != 2 {
		t.Fatalf("unexpected counts: %v", d.Counts)
	}
	last := d.Cumulative[len(d.Cumulative)-1]
	if last != 100 {
		t.Fatalf("cumulative curve must end at exactly 100, got %v", last)
	}
	if d.Cumulative[0] >= last {
		t.Fatalf("cumulative curve must ascend: %v", d.Cumulative)
	}
}

func TestDistributionEmptySeries(t *testing.T) {
	if d := buildDistribution([]float64{math.NaN()}); d != nil {
		t.Fatalf("expected nil distribution for all-NaN input")
	}
}

func TestRenderChartsOutputs(t *testing.T) {
	log := loadLog(t, fixtureLog)
	v := Build(log, model.ViewState{LastPeriod: "15min"})
	var buf bytes.Buffer
	if err := RenderCharts(&buf, v, 80, 6, false); err != nil {
		t.Fatalf("RenderCharts failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{RawLabel, "Time History", "L90 Distribution", "Leq A", "Cumulative %"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderChartsMissingColumnWarning(t *testing.T) {
	log := loadLog(t, "Time,Leq A\n2024-03-01 10:00:00,60.0\n2024-03-01 10:05:00,61.0\n")
	v := Build(log, model.ViewState{LastPeriod: "15min"})
	var buf bytes.Buffer
	if err := RenderCharts(&buf, v, 80, 6, false); err != nil {
		t.Fatalf("RenderCharts failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "missing columns L90 A, Lmax A") {
		t.Fatalf("expected missing-column warning, got:\n%s", out)
	}
	if strings.Contains(out, "Time History") {
		t.Fatalf("charts must be skipped when columns are missing")
	}
}
