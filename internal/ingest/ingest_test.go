package ingest

import (
	"strings"
	"testing"
)

const goodLog = `Time,Leq A,L90 A,Lmax A
2024-03-01 10:00:00,60.0,50.0,70.0
2024-03-01 10:05:00,62.0,51.0,72.0
`

func TestLoadAllContinuesPastParseFailure(t *testing.T) {
	res := LoadAll([]UploadedFile{
		{Name: "good.csv", Data: []byte(goodLog)},
		{Name: "bad.csv", Data: []byte("not,a\nlog")},
		{Name: "also-good.csv", Data: []byte(goodLog)},
	})
	if len(res.Order) != 2 {
		t.Fatalf("expected 2 parsed logs, got %d", len(res.Order))
	}
	if res.Order[0] != "good.csv" || res.Order[1] != "also-good.csv" {
		t.Fatalf("expected upload order preserved, got %v", res.Order)
	}
	if len(res.Errors) != 1 || !strings.HasPrefix(res.Errors[0], "bad.csv:") {
		t.Fatalf("expected one file-scoped error, got %v", res.Errors)
	}
	if _, ok := res.Logs["bad.csv"]; ok {
		t.Fatalf("failed file must not appear in the log map")
	}
}

func TestLoadAllEmptyInput(t *testing.T) {
	res := LoadAll(nil)
	if len(res.Logs) != 0 || len(res.Order) != 0 || len(res.Errors) != 0 {
		t.Fatalf("expected empty result, got %+v", res)
	}
}

func TestBuildSummaryNoValidLogs(t *testing.T) {
	sum := BuildSummary(Result{})
	if sum.ErrMsg != NoValidLogsMsg {
		t.Fatalf("expected %q, got %q", NoValidLogsMsg, sum.ErrMsg)
	}
	if sum.Resi != nil || sum.TypicalLeq != nil || sum.Lmax != nil {
		t.Fatalf("expected nil tables for empty survey")
	}
}

func TestBuildSummaryPositionsInUploadOrder(t *testing.T) {
	res := LoadAll([]UploadedFile{
		{Name: "b.csv", Data: []byte(goodLog)},
		{Name: "a.csv", Data: []byte(goodLog)},
	})
	sum := BuildSummary(res)
	if sum.ErrMsg != "" {
		t.Fatalf("unexpected summary error: %s", sum.ErrMsg)
	}
	if len(sum.Positions) != 2 || sum.Positions[0] != "b.csv" || sum.Positions[1] != "a.csv" {
		t.Fatalf("expected positions in upload order, got %v", sum.Positions)
	}
	if sum.Resi == nil {
		t.Fatalf("expected residential summary table")
	}
	// These logs carry no octave-band columns, so spectra stay absent.
	if sum.TypicalLeq != nil || sum.Lmax != nil {
		t.Fatalf("expected absent spectra without band columns")
	}
}
