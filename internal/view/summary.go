package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/noisetui/internal/ingest"
	"github.com/verte-zerg/noisetui/internal/render"
	"github.com/verte-zerg/noisetui/internal/spectra"
	"github.com/verte-zerg/noisetui/internal/survey"
)

// RenderSummary writes the Summary tab: the residential summary table and
// the typical Leq / Lmax spectra charts. A summary-level failure degrades
// to its message; absent spectra are skipped without comment.
func RenderSummary(w io.Writer, sum ingest.Summary, totalWidth, plotHeight int, useColor bool) error {
	if sum.ErrMsg != "" {
		_, err := fmt.Fprintln(w, sum.ErrMsg)
		return err
	}
	if err := render.Table(w, "BS8233 Residential Summary (dB)", sum.Resi); err != nil {
		return err
	}
	if err := renderSpectra(w, "Typical Leq Spectra (dB)", sum.TypicalLeq, sum.Positions, totalWidth, plotHeight, useColor); err != nil {
		return err
	}
	return renderSpectra(w, "Lmax Spectra (dB)", sum.Lmax, sum.Positions, totalWidth, plotHeight, useColor)
}

// renderSpectra plots one spectra table as a line per (position, period)
// pair over the octave bands.
func renderSpectra(w io.Writer, title string, table *survey.Table, positions []string, totalWidth, plotHeight int, useColor bool) error {
	tidy := spectra.Reshape(table, positions)
	if tidy == nil || len(tidy.Rows) == 0 {
		return nil
	}
	if tidy.Note != "" {
		if _, err := fmt.Fprintln(w, tidy.Note); err != nil {
			return err
		}
	}
	series := make([]render.Series, 0, len(tidy.Rows))
	for _, row := range tidy.Rows {
		series = append(series, render.Series{
			Name:   fmt.Sprintf("%s %s", row.Position, row.Period),
			Values: row.Values,
		})
	}
	note := fmt.Sprintf("Bands (Hz): %s", strings.Join(tidy.Bands, " "))
	return render.Lines(w, title, note, series, render.PlotWidthFor(totalWidth), plotHeight, useColor)
}
