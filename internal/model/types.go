// Package model defines shared data structures.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Options defines dashboard settings.
type Options struct {
	Period  int
	Unit    string
	History bool
}

// ViewState is the per-session aggregation state. It survives across
// renders but never across program runs.
type ViewState struct {
	ApplyAggregation bool
	LastPeriod       string
}

// SetPeriod records a new period string. Any change snaps the view back
// to raw data until the user explicitly re-applies.
func (v *ViewState) SetPeriod(period string) {
	if period == v.LastPeriod {
		return
	}
	v.ApplyAggregation = false
	v.LastPeriod = period
}

// Apply commits the last-set period for aggregation.
func (v *ViewState) Apply() {
	v.ApplyAggregation = true
}

// NormalizeUnit maps a unit spelling to its short code (s, min, h).
func NormalizeUnit(unit string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "s", "sec", "second", "seconds", "second(s)":
		return "s", nil
	case "min", "minute", "minutes", "minute(s)":
		return "min", nil
	case "h", "hour", "hours", "hour(s)":
		return "h", nil
	default:
		return "", fmt.Errorf("unknown unit %q (use s, min, or h)", unit)
	}
}

// PeriodString builds the period string passed to the aggregation call,
// e.g. 15 + "min" -> "15min".
func PeriodString(value int, unit string) string {
	return fmt.Sprintf("%d%s", value, unit)
}

// SurveyRecord summarizes one loaded position for the history store.
type SurveyRecord struct {
	ID          int64
	LoadedAt    time.Time
	FileName    string
	Position    string
	FirstSample time.Time
	LastSample  time.Time
	Samples     int
	Leq         float64
	L90         float64
	Lmax        float64
}
