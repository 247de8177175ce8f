// Package spectra reshapes survey spectra tables into long-format rows
// for charting.
package spectra

import (
	"fmt"

	"github.com/verte-zerg/noisetui/internal/survey"
)

// Shape tags the layout of a spectra table, decided once at the
// boundary where the engine's result is received.
type Shape int

const (
	// ShapeFlat is one position's data: band columns, period rows.
	ShapeFlat Shape = iota
	// ShapeGrouped pairs (position, band) in two-level columns.
	ShapeGrouped
)

// Classify tags the table shape and, for grouped tables, extracts the
// distinct inner band labels in order of first appearance.
func Classify(t *survey.Table) (Shape, []string) {
	if !t.TwoLevel() {
		return ShapeFlat, nil
	}
	seen := map[string]bool{}
	var bands []string
	for _, c := range t.Columns {
		if seen[c.Inner] {
			continue
		}
		seen[c.Inner] = true
		bands = append(bands, c.Inner)
	}
	return ShapeGrouped, bands
}

// Row is one position's spectrum for one period.
type Row struct {
	Position string
	Period   string
	Values   []float64
}

// TidyTable is the long-format result: one row per (position, period)
// with plain band columns. Note carries a layout-mismatch warning when
// the grouped table's width does not cover every known position.
type TidyTable struct {
	Bands []string
	Rows  []Row
	Note  string
}

// Reshape converts a spectra table into long format. A nil input yields
// a nil output. Grouped tables are sliced into contiguous band-width
// blocks in position order; a partial trailing block is dropped and
// reported via Note rather than padded.
func Reshape(t *survey.Table, positions []string) *TidyTable {
	if t == nil {
		return nil
	}
	shape, bands := Classify(t)
	if shape == ShapeFlat {
		return reshapeFlat(t, positions)
	}
	return reshapeGrouped(t, positions, bands)
}

func reshapeFlat(t *survey.Table, positions []string) *TidyTable {
	position := "Position 1"
	if len(positions) > 0 {
		position = positions[0]
	}
	out := &TidyTable{Bands: t.FlatLabels()}
	for i, period := range t.Index {
		out.Rows = append(out.Rows, Row{
			Position: position,
			Period:   period,
			Values:   append([]float64(nil), t.Cells[i]...),
		})
	}
	return out
}

func reshapeGrouped(t *survey.Table, positions []string, bands []string) *TidyTable {
	width := len(bands)
	out := &TidyTable{Bands: bands}
	if width == 0 {
		return out
	}
	if expected := len(positions) * width; expected != len(t.Columns) {
		out.Note = fmt.Sprintf("spectra table has %d columns, expected %d (%d positions x %d bands)",
			len(t.Columns), expected, len(positions), width)
	}
	for pi, position := range positions {
		start := pi * width
		if start+width > len(t.Columns) {
			break
		}
		for ri, period := range t.Index {
			out.Rows = append(out.Rows, Row{
				Position: position,
				Period:   period,
				Values:   append([]float64(nil), t.Cells[ri][start:start+width]...),
			})
		}
	}
	return out
}
