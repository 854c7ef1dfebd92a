package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/series"

	apperrors "kpistats/internal/errors"
	"kpistats/pkg/contracts/domain"
)

// ComputeStats summarizes every column of t in column order.
// A table without rows yields empty results.
func ComputeStats(t *Table) (domain.Results, error) {
	results := domain.Results{}
	if t == nil || t.Len() == 0 {
		return results, nil
	}

	for _, name := range t.names {
		values, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		rec, err := SummarizeColumn(values)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", name, err)
		}
		results = append(results, domain.ColumnStats{Name: name, Stats: rec})
	}
	return results, nil
}

// SummarizeColumn computes the statistics of one column.
// Missing values (NaN) are ignored by lowest, highest, mode, average and median.
func SummarizeColumn(values []float64) (domain.StatsRecord, error) {
	if len(values) == 0 {
		return domain.StatsRecord{}, apperrors.NewAppValidationError("cannot summarize an empty column")
	}

	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			present = append(present, v)
		}
	}

	rec := domain.StatsRecord{
		PercentChange: PercentChange(values),
		FirstValue:    values[0],
		LastValue:     values[len(values)-1],
		Lowest:        math.NaN(),
		Highest:       math.NaN(),
		Mode:          Mode(present),
		Average:       math.NaN(),
		Median:        math.NaN(),
	}

	if len(present) > 0 {
		s := series.Floats(present)
		rec.Lowest = s.Min()
		rec.Highest = s.Max()
		rec.Average = s.Mean()
		rec.Median = s.Median()
	}
	return rec, nil
}

// PercentChange returns last / first * 100, with a zero first value replaced
// by 1. An empty series has a percent change of 0.
func PercentChange(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	first := values[0]
	if first == 0 {
		first = 1
	}
	return values[len(values)-1] / first * 100
}

// Mode returns the smallest of the most frequent values, but only when there
// are several of them. A single most frequent value, or a series where no value
// repeats, yields nil.
func Mode(values []float64) *float64 {
	counts := make(map[float64]int, len(values))
	best := 0
	for _, v := range values {
		counts[v]++
		if counts[v] > best {
			best = counts[v]
		}
	}
	if best < 2 {
		return nil
	}

	modes := make([]float64, 0, 2)
	for v, c := range counts {
		if c == best {
			modes = append(modes, v)
		}
	}
	if len(modes) < 2 {
		return nil
	}

	sort.Float64s(modes)
	m := modes[0]
	return &m
}
