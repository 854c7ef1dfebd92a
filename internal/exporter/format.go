package exporter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"kpistats/pkg/contracts/domain"
)

// Format is an output format
type Format string

const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// Formats lists the supported formats
var Formats = []Format{FormatJSON, FormatTable, FormatCSV, FormatXLSX}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want json, table, csv or xlsx)", s)
}

// Binary reports whether the format must not be written to a terminal
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// ContentType is the media type served for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatTable:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Headers are the column names of the tabular formats
var Headers = []string{
	"kpi",
	"percent_change",
	"first_value",
	"last_value",
	"lowest",
	"highest",
	"mode",
	"average",
	"median",
}

// statValues returns the statistics of rec in Headers order, without the kpi name
func statValues(rec domain.StatsRecord) []*float64 {
	v := func(f float64) *float64 {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return &f
	}
	return []*float64{
		v(rec.PercentChange),
		v(rec.FirstValue),
		v(rec.LastValue),
		v(rec.Lowest),
		v(rec.Highest),
		rec.Mode,
		v(rec.Average),
		v(rec.Median),
	}
}

// formatFloat formats a value for the table output with exactly 2 decimal places
func formatFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *f)
}

// formatExact formats a value for CSV output without losing precision.
// Missing values are left empty.
func formatExact(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
