// Package render draws terminal charts and tables for survey data.
package render

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

// Series represents a named data series for plotting. A marker series is
// drawn as isolated dots instead of a connected line.
type Series struct {
	Name    string
	Values  []float64
	Markers bool
}

type lineStyle struct {
	name   string
	period int
	on     int
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 10
	minPlotWidth        = 10
	axisLabelWidth      = 6
	axisSeparator       = " │ "
	markerStep          = 3
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var lineStyles = []lineStyle{
	{name: "solid", period: 1, on: 1},
	{name: "dashed", period: 6, on: 3},
	{name: "dotted", period: 4, on: 1},
	{name: "dashdot", period: 8, on: 3},
}

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// Lines renders a multi-series plot on a shared decibel scale. The note
// line describes the x axis (e.g. the timestamp range or band labels).
func Lines(w io.Writer, title, note string, series []Series, width, height int, forceColor bool) error {
	series = filterSeries(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	width = clampPlotWidth(width)

	minVal, maxVal := seriesMinMax(series)
	if math.Abs(maxVal-minVal) < 1e-9 {
		minVal--
		maxVal++
	}

	scaled := make([]Series, 0, len(series))
	for _, s := range series {
		scaled = append(scaled, Series{
			Name:    s.Name,
			Values:  resampleSeries(s.Values, width),
			Markers: s.Markers,
		})
	}

	seriesCells := make([][][]uint8, len(scaled))
	for i := range scaled {
		seriesCells[i] = makeCells(height, width)
	}
	for si, s := range scaled {
		style := lineStyles[si%len(lineStyles)]
		prevX, prevY := -1, -1
		for x, v := range s.Values {
			if math.IsNaN(v) {
				prevX, prevY = -1, -1
				continue
			}
			px := x * 2
			py := clampRow(valueToRow(v, minVal, maxVal, height*4), height*4)
			if s.Markers {
				if px%markerStep == 0 {
					setBrailleDot(seriesCells[si], px, py)
				}
				continue
			}
			if prevX >= 0 {
				drawLine(prevX, prevY, px, py, func(dx, dy int) {
					if style.shouldPlot(dx) {
						setBrailleDot(seriesCells[si], dx, dy)
					}
				})
			} else if style.shouldPlot(px) {
				setBrailleDot(seriesCells[si], px, py)
			}
			prevX, prevY = px, py
		}
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := decibelAxisLabels(minVal, maxVal, height)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if note != "" {
		if _, err := fmt.Fprintln(w, note); err != nil {
			return err
		}
	}
	if err := writeGrid(w, seriesCells, axisLabels, width, height, useColor); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(scaled, useColor)); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// Distribution renders a count histogram over categorical bins with a
// cumulative-percentage curve overlaid on a 0-100 scale. labels, counts,
// and cumulative must share one length; the last cumulative value is the
// 100% point.
func Distribution(w io.Writer, title string, labels []string, counts []int, cumulative []float64, width, height int, forceColor bool) error {
	if len(labels) == 0 || len(labels) != len(counts) || len(labels) != len(cumulative) {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	width = clampPlotWidth(width)

	maxCount := 0
	for _, c := range counts {
		if c > maxCount {
			maxCount = c
		}
	}
	if maxCount == 0 {
		return nil
	}

	bars := makeCells(height, width)
	curve := makeCells(height, width)
	dotWidth := width * 2
	prevX, prevY := -1, -1
	for i := range labels {
		start := i * dotWidth / len(labels)
		end := (i + 1) * dotWidth / len(labels)
		if end <= start {
			end = start + 1
		}
		top := clampRow(valueToRow(float64(counts[i]), 0, float64(maxCount), height*4), height*4)
		for x := start; x < end && x < dotWidth; x++ {
			for y := top; y < height*4; y++ {
				setBrailleDot(bars, x, y)
			}
		}
		cx := (start + end) / 2
		cy := clampRow(valueToRow(cumulative[i], 0, 100, height*4), height*4)
		if prevX >= 0 {
			drawLine(prevX, prevY, cx, cy, func(dx, dy int) {
				setBrailleDot(curve, dx, dy)
			})
		} else {
			setBrailleDot(curve, cx, cy)
		}
		prevX, prevY = cx, cy
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := countAxisLabels(maxCount, height)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "Bins: %s\n", strings.Join(labels, " ")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Curve: cumulative % on a 0-100 scale"); err != nil {
		return err
	}
	if err := writeGrid(w, [][][]uint8{bars, curve}, axisLabels, width, height, useColor); err != nil {
		return err
	}
	legend := renderLegend([]Series{{Name: "Count"}, {Name: "Cumulative %"}}, useColor)
	if _, err := fmt.Fprintln(w, legend); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

func writeGrid(w io.Writer, seriesCells [][][]uint8, axisLabels []string, width, height int, useColor bool) error {
	for y := 0; y < height; y++ {
		prefix := fmt.Sprintf("%*s%s", axisLabelWidth, axisLabels[y], axisSeparator)
		var row strings.Builder
		row.WriteString(prefix)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(seriesCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				color := colorPalette[colorIdx%len(colorPalette)].code
				row.WriteString(color)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	return nil
}

func filterSeries(series []Series) []Series {
	out := make([]Series, 0, len(series))
	for _, s := range series {
		if !hasFinite(s.Values) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func hasFinite(values []float64) bool {
	for _, v := range values {
		if !math.IsNaN(v) {
			return true
		}
	}
	return false
}

func clampPlotWidth(width int) int {
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}
	return width
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - utf8.RuneCountInString(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func decibelAxisLabels(minVal, maxVal float64, height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%.0f", maxVal)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%.0f", (minVal+maxVal)/2)
	}
	if height > 1 {
		labels[height-1] = fmt.Sprintf("%.0f", minVal)
	}
	return labels
}

func countAxisLabels(maxCount, height int) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = fmt.Sprintf("%d", maxCount)
	if height > 2 {
		labels[height/2] = fmt.Sprintf("%d", maxCount/2)
	}
	if height > 1 {
		labels[height-1] = "0"
	}
	return labels
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) {
			continue
		}
		if x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func (ls lineStyle) shouldPlot(x int) bool {
	if ls.period <= 1 {
		return true
	}
	if x < 0 {
		x = -x
	}
	return x%ls.period < ls.on
}

// resampleSeries fits the values to the plot width, averaging or
// interpolating while keeping gaps (NaN runs) as gaps.
func resampleSeries(values []float64, width int) []float64 {
	if len(values) == 0 || width <= 0 {
		return nil
	}
	if len(values) == width {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, width)
	if len(values) > width {
		for i := 0; i < width; i++ {
			start := int(float64(i) * float64(len(values)) / float64(width))
			end := int(float64(i+1) * float64(len(values)) / float64(width))
			if end <= start {
				end = start + 1
			}
			if end > len(values) {
				end = len(values)
			}
			out[i] = meanIgnoringNaN(values[start:end])
		}
		return out
	}
	if width == 1 || len(values) == 1 {
		for i := range out {
			out[i] = values[0]
		}
		return out
	}
	for i := 0; i < width; i++ {
		pos := float64(i) * float64(len(values)-1) / float64(width-1)
		idx := int(math.Floor(pos))
		if idx >= len(values)-1 {
			out[i] = values[len(values)-1]
			continue
		}
		frac := pos - float64(idx)
		a, b := values[idx], values[idx+1]
		if math.IsNaN(a) || math.IsNaN(b) {
			out[i] = math.NaN()
			continue
		}
		out[i] = a*(1-frac) + b*frac
	}
	return out
}

func meanIgnoringNaN(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func seriesMinMax(series []Series) (float64, float64) {
	minVal := math.Inf(1)
	maxVal := math.Inf(-1)
	for _, s := range series {
		for _, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if minVal == math.Inf(1) {
		minVal = 0
	}
	if maxVal == math.Inf(-1) {
		maxVal = 0
	}
	return minVal, maxVal
}

func valueToRow(v, minVal, maxVal float64, height int) int {
	if height <= 1 {
		return 0
	}
	pos := (v - minVal) / (maxVal - minVal)
	return int(math.Round((1 - pos) * float64(height-1)))
}

func clampRow(row, height int) int {
	if row < 0 {
		return 0
	}
	if row >= height {
		return height - 1
	}
	return row
}

func renderLegend(series []Series, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x01)
	for i, s := range series {
		styleName := lineStyles[i%len(lineStyles)].name
		if s.Markers {
			styleName = "markers"
		}
		label := fmt.Sprintf("%c %s (%s)", marker, s.Name, styleName)
		if useColor {
			color := colorPalette[i%len(colorPalette)].code
			label = color + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func drawLine(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := int(math.Abs(float64(x1 - x0)))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	dy := -int(math.Abs(float64(y1 - y0)))
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx + dy
	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			if x0 == x1 {
				break
			}
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			if y0 == y1 {
				break
			}
			err += dx
			y0 += sy
		}
	}
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY < 0 || cellY >= len(cells) {
		return
	}
	if cellX < 0 || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
