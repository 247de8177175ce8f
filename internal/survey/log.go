package survey

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// Log is one parsed logger CSV: a time-indexed series of measurement
// columns at the logger's native sample interval.
type Log struct {
	Path     string
	Times    []time.Time
	Columns  []Column
	Cells    [][]float64
	Interval time.Duration
}

const timeFormat = "2006-01-02 15:04:05"

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006 15:04:05",
	"2006-01-02 15:04",
	"02/01/2006 15:04",
}

// NewLog parses a logger CSV. The first column must hold timestamps;
// remaining headers are split into (metric, weighting/band) pairs, e.g.
// "Leq A" or "Lmax 63". Non-numeric cells become NaN.
func NewLog(path string) (*Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only log.
			_ = cerr
		}
	}()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("log has no data rows")
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("log needs a time column and at least one measurement column")
	}
	// A UTF-8 BOM on the first header cell is common in logger exports.
	header[0] = strings.TrimPrefix(header[0], "\ufeff")

	columns := make([]Column, 0, len(header)-1)
	for _, h := range header[1:] {
		columns = append(columns, splitHeader(h))
	}

	log := &Log{Path: path, Columns: columns}
	for i, record := range records[1:] {
		if len(record) != len(header) {
			return nil, fmt.Errorf("row %d has %d cells, expected %d", i+2, len(record), len(header))
		}
		ts, err := parseTime(record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		row := make([]float64, len(columns))
		for j, cell := range record[1:] {
			v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				v = math.NaN()
			}
			row[j] = v
		}
		log.Times = append(log.Times, ts)
		log.Cells = append(log.Cells, row)
	}
	if len(log.Times) >= 2 {
		log.Interval = log.Times[1].Sub(log.Times[0])
	}
	return log, nil
}

func splitHeader(h string) Column {
	fields := strings.Fields(h)
	if len(fields) < 2 {
		return Column{Outer: strings.TrimSpace(h)}
	}
	return Column{Outer: fields[0], Inner: strings.Join(fields[1:], " ")}
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// Master returns the raw time-indexed table.
func (l *Log) Master() *Table {
	index := make([]string, len(l.Times))
	for i, ts := range l.Times {
		index[i] = ts.Format(timeFormat)
	}
	cells := make([][]float64, len(l.Cells))
	for i, row := range l.Cells {
		cells[i] = append([]float64(nil), row...)
	}
	return &Table{
		IndexName: "Time",
		Index:     index,
		Columns:   append([]Column(nil), l.Columns...),
		Cells:     cells,
	}
}

// OverallStats reports the whole-log Leq A (energy average), L90 A
// (arithmetic mean), and Lmax A (maximum). Missing columns yield NaN.
func (l *Log) OverallStats() (leq, l90, lmax float64) {
	leq = energyAverage(l.columnByLabel("Leq A"))
	l90 = arithmeticMean(l.columnByLabel("L90 A"))
	lmax = maximum(l.columnByLabel("Lmax A"))
	return leq, l90, lmax
}

func (l *Log) columnByLabel(label string) []float64 {
	for j, c := range l.Columns {
		if c.Label() == label {
			out := make([]float64, len(l.Cells))
			for i, row := range l.Cells {
				out[i] = row[j]
			}
			return out
		}
	}
	return nil
}
