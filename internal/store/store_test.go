package store

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/noisetui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "noisetui.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return st
}

func TestInsertAndListRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	loaded := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []model.SurveyRecord{
		{
			LoadedAt:    loaded,
			FileName:    "/surveys/pos1.csv",
			Position:    "pos1.csv",
			FirstSample: loaded.Add(-time.Hour),
			LastSample:  loaded,
			Samples:     720,
			Leq:         61.2,
			L90:         50.4,
			Lmax:        80.1,
		},
		{
			LoadedAt:    loaded.Add(time.Minute),
			FileName:    "/surveys/pos2.csv",
			Position:    "pos2.csv",
			FirstSample: loaded,
			LastSample:  loaded.Add(time.Hour),
			Samples:     720,
			Leq:         math.NaN(),
			L90:         49.0,
			Lmax:        77.3,
		},
	}
	if err := st.InsertRecords(ctx, records); err != nil {
		t.Fatalf("InsertRecords failed: %v", err)
	}

	got, err := st.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	// Newest first.
	if got[0].Position != "pos2.csv" || got[1].Position != "pos1.csv" {
		t.Fatalf("expected newest-first order, got %v %v", got[0].Position, got[1].Position)
	}
	if !math.IsNaN(got[0].Leq) {
		t.Fatalf("NULL Leq must round-trip as NaN, got %v", got[0].Leq)
	}
	if got[1].Lmax != 80.1 || got[1].Samples != 720 {
		t.Fatalf("unexpected record: %+v", got[1])
	}
	if !got[1].FirstSample.Equal(loaded.Add(-time.Hour)) {
		t.Fatalf("unexpected first sample: %v", got[1].FirstSample)
	}
}

func TestListRecentLimit(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := model.SurveyRecord{
			LoadedAt:    base.Add(time.Duration(i) * time.Minute),
			FileName:    "f.csv",
			Position:    "f.csv",
			FirstSample: base,
			LastSample:  base,
			Samples:     1,
		}
		if err := st.InsertRecords(ctx, []model.SurveyRecord{rec}); err != nil {
			t.Fatalf("InsertRecords failed: %v", err)
		}
	}
	got, err := st.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(got))
	}
}

func TestInsertEmptyIsNoop(t *testing.T) {
	st := openTestStore(t)
	if err := st.InsertRecords(context.Background(), nil); err != nil {
		t.Fatalf("InsertRecords failed on empty input: %v", err)
	}
}
