package survey

import (
	"fmt"
	"math"
	"time"
)

// BS8233 assessment windows: daytime 07:00-23:00, night-time 23:00-07:00.
const (
	dayStartHour = 7
	dayEndHour   = 23
)

// Survey aggregates the logs of one noise survey, one per monitoring
// position, and derives the summary and spectra tables from them.
type Survey struct {
	names []string
	logs  []*Log
}

// NewSurvey returns an empty survey.
func NewSurvey() *Survey {
	return &Survey{}
}

// AddLog appends a position's log under its display name. Position order
// is the order of AddLog calls.
func (s *Survey) AddLog(l *Log, name string) {
	s.names = append(s.names, name)
	s.logs = append(s.logs, l)
}

// Positions returns the position names in add order.
func (s *Survey) Positions() []string {
	return append([]string(nil), s.names...)
}

// ResiSummary computes the BS8233 residential summary: per position, the
// energy-averaged daytime and night-time Leq and the median of the
// nightly maximum Lmax (a typical night-time Lmax).
func (s *Survey) ResiSummary() (*Table, error) {
	if len(s.logs) == 0 {
		return nil, fmt.Errorf("survey has no logs")
	}
	columns := []Column{
		{Outer: "Daytime Leq"},
		{Outer: "Night-time Leq"},
		{Outer: "Typical Night Lmax"},
	}
	cells := make([][]float64, len(s.logs))
	for i, l := range s.logs {
		leq := l.columnByLabel("Leq A")
		lmax := l.columnByLabel("Lmax A")
		cells[i] = []float64{
			energyAverage(selectWindow(l.Times, leq, true)),
			energyAverage(selectWindow(l.Times, leq, false)),
			typicalNightMax(l.Times, lmax),
		}
	}
	return &Table{
		IndexName: "Position",
		Index:     s.Positions(),
		Columns:   columns,
		Cells:     cells,
	}, nil
}

// TypicalLeqSpectra computes the typical (energy-averaged) octave-band
// Leq spectrum per position for the daytime and night-time windows. A
// survey whose logs carry no Leq band columns yields a nil table.
func (s *Survey) TypicalLeqSpectra() (*Table, error) {
	return s.spectra("Leq", energyAverage)
}

// LmaxSpectra computes the typical octave-band Lmax spectrum (median of
// window samples) per position and window. Nil when no Lmax band
// columns exist.
func (s *Survey) LmaxSpectra() (*Table, error) {
	return s.spectra("Lmax", median)
}

func (s *Survey) spectra(metric string, agg func([]float64) float64) (*Table, error) {
	if len(s.logs) == 0 {
		return nil, fmt.Errorf("survey has no logs")
	}
	bands := bandLabels(s.logs[0], metric)
	if len(bands) == 0 {
		return nil, nil
	}

	index := []string{"Daytime", "Night-time"}
	columns := make([]Column, 0, len(s.logs)*len(bands))
	cells := [][]float64{{}, {}}
	for i, l := range s.logs {
		for _, band := range bands {
			if len(s.logs) == 1 {
				columns = append(columns, Column{Outer: band})
			} else {
				columns = append(columns, Column{Outer: s.names[i], Inner: band})
			}
			values := l.columnByLabel(metric + " " + band)
			cells[0] = append(cells[0], agg(selectWindow(l.Times, values, true)))
			cells[1] = append(cells[1], agg(selectWindow(l.Times, values, false)))
		}
	}
	return &Table{
		IndexName: "Period",
		Index:     index,
		Columns:   columns,
		Cells:     cells,
	}, nil
}

func bandLabels(l *Log, metric string) []string {
	var bands []string
	for _, c := range l.Columns {
		if c.Outer != metric || c.Inner == "" {
			continue
		}
		if !isNumeric(c.Inner) {
			continue
		}
		bands = append(bands, c.Inner)
	}
	return bands
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			if r != '.' && r != 'k' {
				return false
			}
		}
	}
	return true
}

func isDaytime(ts time.Time) bool {
	h := ts.Hour()
	return h >= dayStartHour && h < dayEndHour
}

func selectWindow(times []time.Time, values []float64, daytime bool) []float64 {
	if len(values) != len(times) {
		return nil
	}
	out := make([]float64, 0, len(values))
	for i, ts := range times {
		if isDaytime(ts) == daytime {
			out = append(out, values[i])
		}
	}
	return out
}

// typicalNightMax takes the maximum Lmax per night (23:00 through 07:00
// the next morning, keyed by the evening's date) and returns the median
// across nights.
func typicalNightMax(times []time.Time, values []float64) float64 {
	if len(values) != len(times) {
		return math.NaN()
	}
	nights := map[string][]float64{}
	order := []string{}
	for i, ts := range times {
		if isDaytime(ts) {
			continue
		}
		nightOf := ts
		if ts.Hour() < dayStartHour {
			nightOf = ts.AddDate(0, 0, -1)
		}
		key := nightOf.Format("2006-01-02")
		if _, ok := nights[key]; !ok {
			order = append(order, key)
		}
		nights[key] = append(nights[key], values[i])
	}
	maxima := make([]float64, 0, len(order))
	for _, key := range order {
		maxima = append(maxima, maximum(nights[key]))
	}
	return median(maxima)
}
