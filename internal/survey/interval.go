package survey

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ParsePeriod parses an integration-period string of the form
// "<n>s", "<n>min", or "<n>h".
func ParsePeriod(period string) (time.Duration, error) {
	period = strings.TrimSpace(period)
	var unit time.Duration
	var digits string
	switch {
	case strings.HasSuffix(period, "min"):
		unit, digits = time.Minute, strings.TrimSuffix(period, "min")
	case strings.HasSuffix(period, "h"):
		unit, digits = time.Hour, strings.TrimSuffix(period, "h")
	case strings.HasSuffix(period, "s"):
		unit, digits = time.Second, strings.TrimSuffix(period, "s")
	default:
		return 0, fmt.Errorf("malformed period %q (expected <n>s, <n>min, or <n>h)", period)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("malformed period %q (expected <n>s, <n>min, or <n>h)", period)
	}
	return time.Duration(n) * unit, nil
}

// AsInterval re-aggregates the log to the given integration period.
// Leq-family columns are energy-averaged, Lmax-family columns take the
// block maximum, and Ln percentile columns take the arithmetic mean.
func (l *Log) AsInterval(period string) (*Table, error) {
	d, err := ParsePeriod(period)
	if err != nil {
		return nil, err
	}
	if l.Interval > 0 && d <= l.Interval {
		return nil, fmt.Errorf("period %s is not coarser than the source interval %s", period, l.Interval)
	}
	if len(l.Times) == 0 {
		return nil, fmt.Errorf("log has no samples")
	}

	bins := map[time.Time][]int{}
	order := []time.Time{}
	for i, ts := range l.Times {
		bin := ts.Truncate(d)
		if _, ok := bins[bin]; !ok {
			order = append(order, bin)
		}
		bins[bin] = append(bins[bin], i)
	}
	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	index := make([]string, len(order))
	cells := make([][]float64, len(order))
	for bi, bin := range order {
		index[bi] = bin.Format(timeFormat)
		row := make([]float64, len(l.Columns))
		for j, col := range l.Columns {
			values := make([]float64, 0, len(bins[bin]))
			for _, ri := range bins[bin] {
				values = append(values, l.Cells[ri][j])
			}
			row[j] = aggregate(col.Outer, values)
		}
		cells[bi] = row
	}
	return &Table{
		IndexName: "Time",
		Index:     index,
		Columns:   append([]Column(nil), l.Columns...),
		Cells:     cells,
	}, nil
}

func aggregate(metric string, values []float64) float64 {
	switch metricFamily(metric) {
	case familyLeq:
		return energyAverage(values)
	case familyLmax:
		return maximum(values)
	default:
		return arithmeticMean(values)
	}
}

type family int

const (
	familyLn family = iota
	familyLeq
	familyLmax
)

func metricFamily(metric string) family {
	m := strings.ToLower(metric)
	switch {
	case strings.Contains(m, "eq"):
		return familyLeq
	case strings.Contains(m, "max"):
		return familyLmax
	default:
		return familyLn
	}
}

func energyAverage(values []float64) float64 {
	var sum float64
	var n int
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += math.Pow(10, v/10)
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return 10 * math.Log10(sum/float64(n))
}

func arithmeticMean(values []float64) float64 {
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

func maximum(values []float64) float64 {
	best := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(best) || v > best {
			best = v
		}
	}
	return best
}

func median(values []float64) float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	mid := len(clean) / 2
	if len(clean)%2 == 1 {
		return clean[mid]
	}
	return (clean[mid-1] + clean[mid]) / 2
}
