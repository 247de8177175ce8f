// Package view builds the per-position display table and chart inputs.
package view

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/noisetui/internal/model"
	"github.com/verte-zerg/noisetui/internal/render"
	"github.com/verte-zerg/noisetui/internal/survey"
)

// RequiredColumns are the flattened labels both charts need.
var RequiredColumns = []string{"Leq A", "L90 A", "Lmax A"}

const (
	// RawLabel heads a tab showing the logger's native resolution.
	RawLabel = "Raw Survey Data"
	// IntegratedLabel heads a tab showing re-aggregated data.
	IntegratedLabel = "Integrated Survey Data"
)

// TimeHistory is the chart input for the Leq/L90/Lmax time series.
type TimeHistory struct {
	Timestamps []string
	Leq        []float64
	L90        []float64
	Lmax       []float64
}

// Distribution is the chart input for the L90 histogram: integer-rounded
// bins in ascending order with counts and a cumulative percentage that
// ends at exactly 100.
type Distribution struct {
	Bins       []int
	Counts     []int
	Cumulative []float64
}

// View is one position's tab content. ErrMsg is set and everything else
// left empty when aggregation fails; MissingCols is set and the charts
// left nil when the table lacks a required column (the table still
// renders).
type View struct {
	Label       string
	Table       *survey.Table
	ErrMsg      string
	MissingCols []string
	History     *TimeHistory
	L90Dist     *Distribution
}

// Build derives a position's display table and chart inputs from its log
// and the session's aggregation state. An aggregation failure is
// tab-scoped; there is no silent fallback to raw data.
func Build(log *survey.Log, state model.ViewState) View {
	var table *survey.Table
	label := RawLabel
	if state.ApplyAggregation {
		label = IntegratedLabel
		aggregated, err := log.AsInterval(state.LastPeriod)
		if err != nil {
			return View{Label: label, ErrMsg: fmt.Sprintf("failed to aggregate to %s: %v", state.LastPeriod, err)}
		}
		table = aggregated
	} else {
		table = log.Master()
	}
	table.IndexName = "Timestamp"

	v := View{Label: label, Table: table}
	cols := make(map[string]int, len(RequiredColumns))
	for _, name := range RequiredColumns {
		idx := table.ColumnIndex(name)
		if idx < 0 {
			v.MissingCols = append(v.MissingCols, name)
			continue
		}
		cols[name] = idx
	}
	if len(v.MissingCols) > 0 {
		return v
	}

	v.History = &TimeHistory{
		Timestamps: table.Index,
		Leq:        table.ColumnValues(cols["Leq A"]),
		L90:        table.ColumnValues(cols["L90 A"]),
		Lmax:       table.ColumnValues(cols["Lmax A"]),
	}
	v.L90Dist = buildDistribution(v.History.L90)
	return v
}

func buildDistribution(values []float64) *Distribution {
	counts := map[int]int{}
	total := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		counts[int(math.Round(v))]++
		total++
	}
	if total == 0 {
		return nil
	}
	bins := make([]int, 0, len(counts))
	for bin := range counts {
		bins = append(bins, bin)
	}
	sort.Ints(bins)

	d := &Distribution{Bins: bins}
	running := 0
	for _, bin := range bins {
		running += counts[bin]
		d.Counts = append(d.Counts, counts[bin])
		d.Cumulative = append(d.Cumulative, float64(running)/float64(total)*100)
	}
	// Pin the endpoint so rounding noise never leaves it shy of 100.
	d.Cumulative[len(d.Cumulative)-1] = 100
	return d
}

// RenderCharts writes a position's label and both charts. totalWidth is
// the full terminal width; the plot width is derived from it.
func RenderCharts(w io.Writer, v View, totalWidth, plotHeight int, useColor bool) error {
	if _, err := fmt.Fprintf(w, "%s\n\n", v.Label); err != nil {
		return err
	}
	if v.ErrMsg != "" {
		_, err := fmt.Fprintln(w, v.ErrMsg)
		return err
	}
	if len(v.MissingCols) > 0 {
		_, err := fmt.Fprintf(w, "Charts skipped: missing columns %s\n", strings.Join(v.MissingCols, ", "))
		return err
	}

	width := render.PlotWidthFor(totalWidth)
	note := ""
	if n := len(v.History.Timestamps); n > 0 {
		note = fmt.Sprintf("Timestamp: %s .. %s", v.History.Timestamps[0], v.History.Timestamps[n-1])
	}
	err := render.Lines(w, "Time History (dB)", note, []render.Series{
		{Name: "Leq A", Values: v.History.Leq},
		{Name: "L90 A", Values: v.History.L90},
		{Name: "Lmax A", Values: v.History.Lmax, Markers: true},
	}, width, plotHeight, useColor)
	if err != nil {
		return err
	}

	if v.L90Dist == nil {
		_, err := fmt.Fprintln(w, "No L90 values to plot.")
		return err
	}
	labels := make([]string, len(v.L90Dist.Bins))
	for i, bin := range v.L90Dist.Bins {
		labels[i] = strconv.Itoa(bin)
	}
	return render.Distribution(w, "L90 Distribution", labels, v.L90Dist.Counts, v.L90Dist.Cumulative, width, plotHeight, useColor)
}
