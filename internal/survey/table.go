// Package survey parses noise logger CSVs and computes survey statistics.
package survey

import "strings"

// Column is one measurement column. Outer and Inner together form a
// two-level header; a flat column leaves Inner empty.
type Column struct {
	Outer string
	Inner string
}

// Label joins the two header levels with a space, trimming the trailing
// space when the inner level is empty.
func (c Column) Label() string {
	return strings.TrimSpace(c.Outer + " " + c.Inner)
}

// Table is the one tabular shape shared by master data, resampled data,
// summaries, and spectra: a named row index plus float cells under
// possibly two-level column headers.
type Table struct {
	IndexName string
	Index     []string
	Columns   []Column
	Cells     [][]float64
}

// TwoLevel reports whether any column carries a non-empty inner label.
func (t *Table) TwoLevel() bool {
	for _, c := range t.Columns {
		if c.Inner != "" {
			return true
		}
	}
	return false
}

// FlatLabels returns the single-level chart labels for all columns.
func (t *Table) FlatLabels() []string {
	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label()
	}
	return labels
}

// ColumnIndex returns the position of a flattened label, or -1.
func (t *Table) ColumnIndex(label string) int {
	for i, c := range t.Columns {
		if c.Label() == label {
			return i
		}
	}
	return -1
}

// ColumnValues copies out one column; indexes outside the table yield nil.
func (t *Table) ColumnValues(col int) []float64 {
	if col < 0 || col >= len(t.Columns) {
		return nil
	}
	out := make([]float64, len(t.Cells))
	for i, row := range t.Cells {
		out[i] = row[col]
	}
	return out
}
