package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/noisetui/internal/survey"
)

// FormatTable aligns rows under headers using terminal display widths.
func FormatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}

	widths := make([]int, colCount)
	for i, header := range headers {
		widths[i] = runewidth.StringWidth(header)
	}
	for _, row := range rows {
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	var b strings.Builder
	for i := 0; i < len(widths); i++ {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(padCell(cell, widths[i], rightAlignCols[i]))
	}
	return b.String()
}

func padCell(value string, width int, rightAlign bool) string {
	valueWidth := runewidth.StringWidth(value)
	if valueWidth >= width {
		return value
	}
	padding := width - valueWidth
	if rightAlign {
		return strings.Repeat(" ", padding) + value
	}
	return value + strings.Repeat(" ", padding)
}

// Table writes a survey table as aligned text. Two-level columns keep
// both header rows; the index becomes the first column.
func Table(w io.Writer, title string, t *survey.Table) error {
	if t == nil {
		return nil
	}
	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	rightAlign := map[int]bool{}
	for i := range t.Columns {
		rightAlign[i+1] = true
	}
	rows := make([][]string, 0, len(t.Index))
	for i, label := range t.Index {
		row := make([]string, 0, len(t.Columns)+1)
		row = append(row, label)
		for _, v := range t.Cells[i] {
			row = append(row, FormatCell(v))
		}
		rows = append(rows, row)
	}

	var lines []string
	if t.TwoLevel() {
		outer := make([]string, 0, len(t.Columns)+1)
		inner := make([]string, 0, len(t.Columns)+1)
		outer = append(outer, "")
		inner = append(inner, t.IndexName)
		for _, c := range t.Columns {
			outer = append(outer, c.Outer)
			inner = append(inner, c.Inner)
		}
		lines = FormatTable(outer, append([][]string{inner}, rows...), rightAlign)
	} else {
		headers := make([]string, 0, len(t.Columns)+1)
		headers = append(headers, t.IndexName)
		for _, c := range t.Columns {
			headers = append(headers, c.Outer)
		}
		lines = FormatTable(headers, rows, rightAlign)
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// FormatCell renders one measurement value; NaN shows as a dash.
func FormatCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return fmt.Sprintf("%.1f", v)
}
